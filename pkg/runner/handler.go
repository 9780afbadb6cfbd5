package runner

import (
	"context"

	"github.com/aretw0/ticketflow/pkg/domain"
)

// MessageKind classifies runner output.
type MessageKind string

const (
	KindStep  MessageKind = "step"
	KindRun   MessageKind = "run"
	KindReset MessageKind = "reset"
	KindTrail MessageKind = "trail"
	KindInfo  MessageKind = "info"
	KindError MessageKind = "error"
)

// Message is one unit of runner output. Exactly one payload field is set,
// matching Kind.
type Message struct {
	Kind  MessageKind        `json:"kind"`
	Step  *domain.StepResult `json:"step,omitempty"`
	Run   *domain.RunResult  `json:"run,omitempty"`
	Trail *domain.Trail      `json:"trail,omitempty"`
	Text  string             `json:"text,omitempty"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (terminal) and JSON (scripted) modes.
type IOHandler interface {
	// Input reads the next line. io.EOF ends the loop.
	Input(ctx context.Context) (string, error)

	// Output presents a message to the user.
	Output(ctx context.Context, msg Message) error
}
