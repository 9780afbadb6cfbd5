package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 4KB, far above any symbol sequence of the booking flow.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default.
	EnvMaxInputSize = "TICKETFLOW_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// CheckInput enforces the size limit and UTF-8 validity of a line read from
// the terminal. The line is not rewritten: control characters reach the engine
// and fail closed there.
func CheckInput(input string) error {
	limit := getMaxInputSize()
	if len(input) > limit {
		return fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return ErrInvalidUTF8
	}
	return nil
}

func getMaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
