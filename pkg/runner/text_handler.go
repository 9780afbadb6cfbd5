package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/ticketflow/pkg/domain"
)

// ContentRenderer transforms informational text before it is printed
// (e.g. Markdown to ANSI).
type ContentRenderer func(string) (string, error)

// Highlighter decorates a state name, e.g. with terminal colours.
type Highlighter func(state domain.State, accepted bool) string

// TextHandler implements the prompt-based terminal interface.
type TextHandler struct {
	Reader    *bufio.Reader
	Writer    io.Writer
	Prompt    string
	Renderer  ContentRenderer
	Highlight Highlighter

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerHighlighter configures how states are decorated.
func WithTextHandlerHighlighter(hl Highlighter) TextHandlerOption {
	return func(h *TextHandler) {
		h.Highlight = hl
	}
}

// WithTextHandlerPrompt replaces the default "> " prompt. Empty disables it.
func WithTextHandlerPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// NewTextHandler creates a handler for standard text IO.
// Nil arguments default to Stdin and Stdout.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		Prompt: "> ",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// pump moves lines to a channel so that Input can honour ctx while blocked on read.
func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				h.inputChan <- inputResult{err: err}
			}
			return
		}
	}
}

// Input prompts and reads the next line that passes CheckInput.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if h.Prompt != "" {
			fmt.Fprint(h.Writer, h.Prompt)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			line := strings.TrimSpace(res.text)
			if err := CheckInput(line); err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return line, nil
		}
	}
}

// Output prints a message.
func (h *TextHandler) Output(ctx context.Context, msg Message) error {
	var out string
	switch msg.Kind {
	case KindStep:
		s := msg.Step
		out = fmt.Sprintf("%s: %s -> %s", s.Symbol, h.state(s.Previous, false), h.state(s.Current, s.Accepted))
		if s.Accepted {
			out += " (accepted)"
		}
	case KindRun, KindReset:
		r := msg.Run
		out = fmt.Sprintf("%s (%s)\ntrace: %s", h.state(r.Current, r.Accepted), domain.VerdictOf(r.Accepted), FormatTrace(r.Trace))
	case KindTrail:
		out = fmt.Sprintf("trail: %s [expected %s]", msg.Trail.Seq, msg.Trail.Expected)
	case KindError:
		out = "Error: " + msg.Text
	default:
		out = msg.Text
		if h.Renderer != nil {
			if rendered, err := h.Renderer(out); err == nil {
				out = rendered
			}
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimRight(out, "\n"))
	return err
}

func (h *TextHandler) state(s domain.State, accepted bool) string {
	if h.Highlight != nil {
		return h.Highlight(s, accepted)
	}
	return string(s)
}
