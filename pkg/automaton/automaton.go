package automaton

import (
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/ticketflow/pkg/domain"
)

// Automaton is a single-owner DFA instance over a shared Table.
//
// Invariants, maintained by every method:
//
//	trace[0] == table.Start()
//	trace[i+1] == table.Next(trace[i], symbol_i)
//	current == trace[len(trace)-1]
type Automaton struct {
	table   *Table
	current domain.State
	trace   []domain.State
}

// New creates an automaton positioned at the table's start state.
func New(table *Table) *Automaton {
	a := &Automaton{table: table}
	a.Reset()
	return a
}

// Table returns the transition table backing this automaton.
func (a *Automaton) Table() *Table { return a.table }

// Current returns the current state.
func (a *Automaton) Current() domain.State { return a.current }

// Trace returns a copy of the visited states since the last reset.
func (a *Automaton) Trace() []domain.State { return slices.Clone(a.trace) }

// Accepted reports whether the current state is accepting.
func (a *Automaton) Accepted() bool { return a.table.IsAccepting(a.current) }

// Reset discards the trace and returns to the start state.
func (a *Automaton) Reset() domain.RunResult {
	a.current = a.table.Start()
	a.trace = []domain.State{a.current}
	return a.result()
}

// Step consumes one symbol. It never fails: invalid input lands in the error state.
func (a *Automaton) Step(symbol domain.Symbol) domain.StepResult {
	prev := a.current
	a.current = a.table.Next(prev, symbol)
	a.trace = append(a.trace, a.current)
	return domain.StepResult{
		Previous: prev,
		Current:  a.current,
		Accepted: a.Accepted(),
		Trace:    a.Trace(),
		Symbol:   symbol,
	}
}

// Run resets the automaton and consumes seq in order.
// The returned trace has len(seq)+1 entries.
func (a *Automaton) Run(seq []domain.Symbol) domain.RunResult {
	a.Reset()
	for _, s := range seq {
		a.current = a.table.Next(a.current, s)
		a.trace = append(a.trace, a.current)
	}
	return a.result()
}

func (a *Automaton) result() domain.RunResult {
	return domain.RunResult{
		Current:  a.current,
		Accepted: a.Accepted(),
		Trace:    a.Trace(),
	}
}

// Snapshot captures the automaton for persistence.
func (a *Automaton) Snapshot(sessionID string) *domain.Snapshot {
	return &domain.Snapshot{
		SessionID: sessionID,
		Current:   a.current,
		Trace:     a.Trace(),
		UpdatedAt: time.Now().UTC(),
	}
}

// Restore replaces the automaton position with snap after checking that the
// trace could have been produced by this table.
func (a *Automaton) Restore(snap *domain.Snapshot) error {
	if snap == nil || len(snap.Trace) == 0 {
		return fmt.Errorf("%w: empty trace", ErrInconsistentSnapshot)
	}
	for _, s := range snap.Trace {
		if !a.table.HasState(s) {
			return fmt.Errorf("%w: %q", ErrUnknownState, s)
		}
	}
	if snap.Trace[0] != a.table.Start() {
		return fmt.Errorf("%w: trace starts at %q, want %q", ErrInconsistentSnapshot, snap.Trace[0], a.table.Start())
	}
	if last := snap.Trace[len(snap.Trace)-1]; last != snap.Current {
		return fmt.Errorf("%w: current %q does not end trace (%q)", ErrInconsistentSnapshot, snap.Current, last)
	}
	for i := 1; i < len(snap.Trace); i++ {
		if !a.reachable(snap.Trace[i-1], snap.Trace[i]) {
			return fmt.Errorf("%w: no symbol moves %q to %q", ErrInconsistentSnapshot, snap.Trace[i-1], snap.Trace[i])
		}
	}

	a.current = snap.Current
	a.trace = slices.Clone(snap.Trace)
	return nil
}

// reachable reports whether some input (in the alphabet or not) moves from to to.
func (a *Automaton) reachable(from, to domain.State) bool {
	if to == a.table.ErrorState() {
		// Any symbol outside the alphabet.
		return true
	}
	for _, sym := range a.table.symbols {
		if a.table.Next(from, sym) == to {
			return true
		}
	}
	return false
}

// Evaluate runs seq from the start state without an instance.
func Evaluate(table *Table, seq []domain.Symbol) (domain.State, bool) {
	cur := table.Start()
	for _, s := range seq {
		cur = table.Next(cur, s)
	}
	return cur, table.IsAccepting(cur)
}
