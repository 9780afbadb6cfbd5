package automaton

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/ticketflow/pkg/domain"
)

var (
	// ErrInvalidDefinition is matched by every DefinitionError.
	ErrInvalidDefinition = errors.New("invalid automaton definition")

	// ErrUnknownState is returned when a snapshot mentions a state the table does not declare.
	ErrUnknownState = errors.New("unknown state")

	// ErrInconsistentSnapshot is returned when a snapshot trace could not have been
	// produced by the table.
	ErrInconsistentSnapshot = errors.New("inconsistent snapshot")
)

// Problem is a single construction-time inconsistency.
type Problem struct {
	State  domain.State
	Symbol domain.Symbol
	Reason string
}

func (p Problem) String() string {
	switch {
	case p.State != "" && p.Symbol != "":
		return fmt.Sprintf("state %q, symbol %q: %s", p.State, p.Symbol, p.Reason)
	case p.State != "":
		return fmt.Sprintf("state %q: %s", p.State, p.Reason)
	case p.Symbol != "":
		return fmt.Sprintf("symbol %q: %s", p.Symbol, p.Reason)
	}
	return p.Reason
}

// DefinitionError aggregates every problem found while validating a Definition.
type DefinitionError struct {
	Problems []Problem
}

func (e *DefinitionError) Error() string {
	if len(e.Problems) == 1 {
		return "automaton: " + e.Problems[0].String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "automaton: %d definition problems:\n", len(e.Problems))
	for i, p := range e.Problems {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, p)
	}
	return sb.String()
}

// Is lets errors.Is(err, ErrInvalidDefinition) match.
func (e *DefinitionError) Is(target error) bool {
	return target == ErrInvalidDefinition
}
