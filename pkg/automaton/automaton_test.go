package automaton_test

import (
	"testing"

	"github.com/aretw0/ticketflow/pkg/automaton"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutomaton_StartsReset(t *testing.T) {
	a := automaton.New(mustTable(t, turnstile()))

	assert.Equal(t, domain.State("locked"), a.Current())
	assert.Equal(t, []domain.State{"locked"}, a.Trace())
	assert.False(t, a.Accepted())
}

func TestAutomaton_Step(t *testing.T) {
	a := automaton.New(mustTable(t, turnstile()))

	res := a.Step("coin")
	assert.Equal(t, domain.StepResult{
		Previous: "locked",
		Current:  "open",
		Accepted: false,
		Trace:    []domain.State{"locked", "open"},
		Symbol:   "coin",
	}, res)

	res = a.Step("push")
	assert.Equal(t, domain.State("open"), res.Previous)
	assert.Equal(t, domain.State("done"), res.Current)
	assert.True(t, res.Accepted)
	assert.Equal(t, []domain.State{"locked", "open", "done"}, res.Trace)
}

func TestAutomaton_StepNeverFails(t *testing.T) {
	a := automaton.New(mustTable(t, turnstile()))

	res := a.Step("kick")
	assert.Equal(t, domain.State("broken"), res.Current)
	assert.False(t, res.Accepted)

	// The error state absorbs everything afterwards.
	res = a.Step("coin")
	assert.Equal(t, domain.State("broken"), res.Current)
	assert.Len(t, res.Trace, 3)
}

func TestAutomaton_TraceConsistency(t *testing.T) {
	table := mustTable(t, turnstile())
	a := automaton.New(table)
	symbols := []domain.Symbol{"wait", "coin", "wait", "kick", "push", "coin"}

	a.Reset()
	for _, sym := range symbols {
		a.Step(sym)
	}

	trace := a.Trace()
	require.Len(t, trace, len(symbols)+1)
	assert.Equal(t, table.Start(), trace[0])
	for i, sym := range symbols {
		assert.Equal(t, table.Next(trace[i], sym), trace[i+1], "step %d (%s)", i, sym)
	}
	assert.Equal(t, trace[len(trace)-1], a.Current())
}

func TestAutomaton_TraceIsCopied(t *testing.T) {
	a := automaton.New(mustTable(t, turnstile()))
	res := a.Step("coin")

	res.Trace[0] = "tampered"
	trace := a.Trace()
	trace[1] = "tampered"

	assert.Equal(t, []domain.State{"locked", "open"}, a.Trace())
}

func TestAutomaton_Run(t *testing.T) {
	a := automaton.New(mustTable(t, turnstile()))
	a.Step("kick") // leftovers must not leak into Run

	res := a.Run([]domain.Symbol{"coin", "push"})
	assert.Equal(t, domain.RunResult{
		Current:  "done",
		Accepted: true,
		Trace:    []domain.State{"locked", "open", "done"},
	}, res)
	assert.Equal(t, res.Trace, a.Trace())
}

func TestAutomaton_RunEmpty(t *testing.T) {
	a := automaton.New(mustTable(t, turnstile()))
	a.Step("coin")

	res := a.Run(nil)
	assert.Equal(t, domain.State("locked"), res.Current)
	assert.False(t, res.Accepted)
	assert.Equal(t, []domain.State{"locked"}, res.Trace)
}

func TestAutomaton_ResetIdempotent(t *testing.T) {
	a := automaton.New(mustTable(t, turnstile()))
	a.Run([]domain.Symbol{"coin", "push"})

	first := a.Reset()
	second := a.Reset()

	assert.Equal(t, first, second)
	assert.Equal(t, domain.State("locked"), a.Current())
	assert.Equal(t, []domain.State{"locked"}, a.Trace())
}

func TestAutomaton_SnapshotRestore(t *testing.T) {
	table := mustTable(t, turnstile())
	src := automaton.New(table)
	src.Run([]domain.Symbol{"wait", "coin"})

	snap := src.Snapshot("sess-1")
	assert.Equal(t, "sess-1", snap.SessionID)
	assert.False(t, snap.UpdatedAt.IsZero())

	dst := automaton.New(table)
	require.NoError(t, dst.Restore(snap))
	assert.Equal(t, src.Current(), dst.Current())
	assert.Equal(t, src.Trace(), dst.Trace())

	// Restored instances keep stepping from where they left off.
	res := dst.Step("push")
	assert.True(t, res.Accepted)
	assert.Equal(t, []domain.State{"locked", "locked", "open", "done"}, res.Trace)
}

func TestAutomaton_RestoreRejects(t *testing.T) {
	table := mustTable(t, turnstile())

	tests := []struct {
		name    string
		snap    *domain.Snapshot
		wantErr error
	}{
		{"Nil", nil, automaton.ErrInconsistentSnapshot},
		{"Empty Trace", &domain.Snapshot{Current: "locked"}, automaton.ErrInconsistentSnapshot},
		{"Unknown State", &domain.Snapshot{Current: "limbo", Trace: []domain.State{"locked", "limbo"}}, automaton.ErrUnknownState},
		{"Wrong Start", &domain.Snapshot{Current: "open", Trace: []domain.State{"open"}}, automaton.ErrInconsistentSnapshot},
		{"Current Mismatch", &domain.Snapshot{Current: "open", Trace: []domain.State{"locked"}}, automaton.ErrInconsistentSnapshot},
		{"Impossible Move", &domain.Snapshot{Current: "done", Trace: []domain.State{"locked", "done"}}, automaton.ErrInconsistentSnapshot},
		{"Sink Escape", &domain.Snapshot{Current: "open", Trace: []domain.State{"locked", "broken", "open"}}, automaton.ErrInconsistentSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := automaton.New(table)
			a.Step("coin")

			err := a.Restore(tt.snap)
			assert.ErrorIs(t, err, tt.wantErr)
			// A rejected snapshot leaves the automaton untouched.
			assert.Equal(t, []domain.State{"locked", "open"}, a.Trace())
		})
	}
}

func TestEvaluate(t *testing.T) {
	table := mustTable(t, turnstile())

	final, ok := automaton.Evaluate(table, []domain.Symbol{"coin", "push"})
	assert.Equal(t, domain.State("done"), final)
	assert.True(t, ok)

	final, ok = automaton.Evaluate(table, nil)
	assert.Equal(t, table.Start(), final)
	assert.False(t, ok)

	final, ok = automaton.Evaluate(table, []domain.Symbol{"push"})
	assert.Equal(t, table.ErrorState(), final)
	assert.False(t, ok)
}
