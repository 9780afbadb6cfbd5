package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStep  EventType = "step"
	EventRun   EventType = "run"
	EventReset EventType = "reset"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent is emitted after a symbol has been consumed.
type StepEvent struct {
	EventBase
	Symbol   Symbol `json:"symbol"`
	From     State  `json:"from"`
	To       State  `json:"to"`
	Accepted bool   `json:"accepted"`
}

// RunEvent is emitted after a full sequence evaluation or a reset.
type RunEvent struct {
	EventBase
	Length   int   `json:"length"`
	Final    State `json:"final"`
	Accepted bool  `json:"accepted"`
}

// ChangeEvent carries a session's position before and after a committed mutation.
type ChangeEvent struct {
	EventBase
	Before *Snapshot `json:"before"`
	After  *Snapshot `json:"after"`
}

// ChangeFunc observes committed changes. It runs while the session is locked,
// so changes of one session arrive in commit order. It must not block or call
// back into the engine.
type ChangeFunc func(context.Context, *ChangeEvent)

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStep  func(context.Context, *StepEvent)
	OnRun   func(context.Context, *RunEvent)
	OnReset func(context.Context, *RunEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStep:  chain(h.OnStep, other.OnStep),
		OnRun:   chain(h.OnRun, other.OnRun),
		OnReset: chain(h.OnReset, other.OnReset),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
