package domain

import (
	"strings"
	"time"
	"unicode"
)

type (
	// Symbol is an input token. Symbols outside the alphabet are legal input:
	// they drive the automaton into its error state.
	Symbol string

	// State identifies a node of the automaton.
	State string
)

// maxPrintable caps the length of a symbol rendered by Printable, in runes.
const maxPrintable = 64

// Printable renders s for logs and echoes. Invalid UTF-8 is replaced, control
// characters are dropped and long symbols are cut. The automaton always sees
// the raw symbol.
func (s Symbol) Printable() Symbol {
	var b strings.Builder
	n := 0
	for _, r := range strings.ToValidUTF8(string(s), "\uFFFD") {
		if unicode.IsControl(r) {
			continue
		}
		if n == maxPrintable {
			b.WriteString("...")
			break
		}
		b.WriteRune(r)
		n++
	}
	return Symbol(b.String())
}

// StepResult is returned after a single symbol has been consumed.
type StepResult struct {
	// Previous is the state the automaton was in before the step.
	Previous State `json:"previous"`
	// Current is the state after the step.
	Current State `json:"current"`
	// Accepted reports whether Current belongs to the accept set.
	Accepted bool `json:"accepted"`
	// Trace is the full list of visited states since the last reset.
	Trace []State `json:"trace"`
	// Symbol echoes the consumed input.
	Symbol Symbol `json:"used_symbol"`
}

// RunResult is returned by Run and Reset.
type RunResult struct {
	Current  State   `json:"current"`
	Accepted bool    `json:"accepted"`
	Trace    []State `json:"trace"`
}

// Snapshot is the persisted form of one session's automaton.
type Snapshot struct {
	SessionID string    `json:"session_id"`
	Current   State     `json:"current"`
	Trace     []State   `json:"trace"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSnapshot creates a clean snapshot positioned at the start state.
func NewSnapshot(sessionID string, start State) *Snapshot {
	return &Snapshot{
		SessionID: sessionID,
		Current:   start,
		Trace:     []State{start},
		UpdatedAt: time.Now().UTC(),
	}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Trace = append([]State(nil), s.Trace...)
	return &c
}

// Symbols converts raw tokens into Symbols, dropping empty ones.
func Symbols(tokens []string) []Symbol {
	out := make([]Symbol, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		out = append(out, Symbol(t))
	}
	return out
}

// Description is the static, read-only view of an automaton.
type Description struct {
	States   []State           `json:"states"`
	Alphabet []Symbol          `json:"alphabet"`
	Start    State             `json:"start"`
	Accept   []State           `json:"accept"`
	Sinks    []State           `json:"sinks"`
	Error    State             `json:"error"`
	Legend   map[Symbol]string `json:"legend"`
}
