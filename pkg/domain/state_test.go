package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbol_Printable(t *testing.T) {
	tests := []struct {
		name string
		in   Symbol
		want Symbol
	}{
		{"Plain", "auth", "auth"},
		{"Control Characters", "au\x00th\x07", "auth"},
		{"Escape Sequence", "\x1b[31mauth", "[31mauth"},
		{"Invalid UTF-8", "a\xffb", "a�b"},
		{"Exact Cap", Symbol(strings.Repeat("é", 64)), Symbol(strings.Repeat("é", 64))},
		{"Too Long", Symbol(strings.Repeat("a", 65)), Symbol(strings.Repeat("a", 64) + "...")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Printable())
		})
	}
}
