package domain

import (
	"fmt"
	"strings"
)

// Verdict is the expected outcome of a trail.
type Verdict string

const (
	VerdictAccept Verdict = "accept"
	VerdictReject Verdict = "reject"
)

// VerdictOf maps an acceptance flag to its Verdict.
func VerdictOf(accepted bool) Verdict {
	if accepted {
		return VerdictAccept
	}
	return VerdictReject
}

// ParseVerdict validates a textual verdict.
func ParseVerdict(s string) (Verdict, error) {
	switch v := Verdict(strings.ToLower(strings.TrimSpace(s))); v {
	case VerdictAccept, VerdictReject:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVerdict, s)
	}
}

// Trail is an example input sequence paired with its expected verdict.
// Seq is space separated, matching the wire format.
type Trail struct {
	Seq      string  `json:"seq" yaml:"seq" mapstructure:"seq"`
	Expected Verdict `json:"expected" yaml:"expected" mapstructure:"expected"`
}

// Symbols splits the trail sequence into symbols.
func (t Trail) Symbols() []Symbol {
	return Symbols(strings.Fields(t.Seq))
}
