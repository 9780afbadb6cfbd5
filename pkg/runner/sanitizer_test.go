package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckInput_SizeLimit(t *testing.T) {
	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", DefaultMaxInputSize - 1, false},
		{"Exact Limit", DefaultMaxInputSize, false},
		{"Over Limit", DefaultMaxInputSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckInput(strings.Repeat("a", tt.inputSize))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckInput_KeepsControlChars(t *testing.T) {
	for _, input := range []string{"auth select", "auth\tselect", "\x1b[31mauth", "au\x00th"} {
		assert.NoError(t, CheckInput(input), "%q", input)
	}
}

func TestCheckInput_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")

	assert.ErrorIs(t, CheckInput("12345678901"), ErrInputTooLarge)
	assert.NoError(t, CheckInput("12345"))
}

func TestCheckInput_InvalidUTF8(t *testing.T) {
	assert.ErrorIs(t, CheckInput("\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98"), ErrInvalidUTF8)
}
