package tui

import (
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/muesli/termenv"
)

// NewHighlighter colours state names: green when accepting, red for the
// error state, bold otherwise. Colours follow the terminal profile, so the
// output stays plain when stdout is not a TTY.
func NewHighlighter(errorState domain.State) func(domain.State, bool) string {
	return newHighlighter(termenv.EnvColorProfile(), errorState)
}

func newHighlighter(p termenv.Profile, errorState domain.State) func(domain.State, bool) string {
	return func(s domain.State, accepted bool) string {
		out := p.String(string(s))
		switch {
		case accepted:
			out = out.Foreground(p.Color("#22c55e")).Bold()
		case s == errorState:
			out = out.Foreground(p.Color("#ef4444"))
		default:
			out = out.Bold()
		}
		return out.String()
	}
}
