package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// JSONHandler implements IOHandler over JSON Lines.
// Each output Message is one line; input lines may be JSON strings or raw text.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

// Output encodes msg as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, msg Message) error {
	return h.Encoder.Encode(msg)
}

// Input reads one line. A JSON string is unquoted; anything else is returned as-is.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if json.Unmarshal([]byte(text), &val) == nil {
		text = val
	}
	if err := CheckInput(text); err != nil {
		return "", err
	}
	return text, nil
}
