package ports

import (
	"context"

	"github.com/aretw0/ticketflow/pkg/automaton"
	"github.com/aretw0/ticketflow/pkg/domain"
)

// Engine is the driving port used by the presentation adapters (HTTP, MCP, CLI).
// Every operation is scoped to a session; sessions never share an automaton.
type Engine interface {
	// Step consumes one symbol. An empty symbol yields domain.ErrNoSymbol.
	Step(ctx context.Context, sessionID, symbol string) (*domain.StepResult, error)

	// Run resets the session and consumes the whole sequence.
	Run(ctx context.Context, sessionID string, sequence []string) (*domain.RunResult, error)

	// Reset returns the session to the start state.
	Reset(ctx context.Context, sessionID string) (*domain.RunResult, error)

	// Snapshot returns the current position of the session without changing it.
	Snapshot(ctx context.Context, sessionID string) (*domain.Snapshot, error)

	// Watch registers fn for every committed change; the returned function
	// unregisters it. Changes of one session arrive in commit order.
	Watch(fn domain.ChangeFunc) func()

	// PickRandomTrail returns an example trail from the catalog.
	PickRandomTrail() domain.Trail

	// Describe returns the static description of the automaton.
	Describe() domain.Description

	// Table exposes the shared transition table for introspection.
	Table() *automaton.Table
}
