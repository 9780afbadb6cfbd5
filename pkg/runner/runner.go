package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/ports"
)

// DefaultSessionID is used when no session is configured.
const DefaultSessionID = "play"

// Runner drives one session of an engine from an IOHandler.
type Runner struct {
	Engine    ports.Engine
	Handler   IOHandler
	SessionID string
	Logger    *slog.Logger
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithSessionID sets the session the runner operates on.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// New creates a Runner. Without a handler it uses a TextHandler on Stdin/Stdout.
func New(engine ports.Engine, opts ...Option) *Runner {
	r := &Runner{
		Engine:    engine,
		SessionID: DefaultSessionID,
		Logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	return r
}

// Run loops until the input ends, ctx is done or the user quits.
func (r *Runner) Run(ctx context.Context) error {
	for {
		line, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		quit, err := r.Exec(ctx, line)
		if err != nil {
			r.Logger.Error("Command failed", "session_id", r.SessionID, "err", err)
			if outErr := r.Handler.Output(ctx, Message{Kind: KindError, Text: err.Error()}); outErr != nil {
				return fmt.Errorf("output error: %w", outErr)
			}
		}
		if quit {
			return nil
		}
	}
}

// Exec interprets one input line. It reports whether the user asked to quit.
func (r *Runner) Exec(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, ":") {
		return false, r.step(ctx, strings.Fields(line))
	}

	cmd, args, _ := strings.Cut(line[1:], " ")
	switch cmd {
	case "q", "quit", "exit":
		return true, nil
	case "reset":
		res, err := r.Engine.Reset(ctx, r.SessionID)
		if err != nil {
			return false, err
		}
		return false, r.Handler.Output(ctx, Message{Kind: KindReset, Run: res})
	case "run":
		return false, r.run(ctx, args)
	case "random":
		trail := r.Engine.PickRandomTrail()
		if err := r.Handler.Output(ctx, Message{Kind: KindTrail, Trail: &trail}); err != nil {
			return false, err
		}
		return false, r.run(ctx, trail.Seq)
	case "trace":
		snap, err := r.Engine.Snapshot(ctx, r.SessionID)
		if err != nil {
			return false, err
		}
		return false, r.Handler.Output(ctx, Message{Kind: KindInfo, Text: FormatTrace(snap.Trace)})
	case "help", "h", "?":
		return false, r.Handler.Output(ctx, Message{Kind: KindInfo, Text: Help(r.Engine.Describe())})
	default:
		return false, fmt.Errorf("unknown command %q (try :help)", cmd)
	}
}

func (r *Runner) step(ctx context.Context, symbols []string) error {
	for _, sym := range symbols {
		res, err := r.Engine.Step(ctx, r.SessionID, sym)
		if err != nil {
			return err
		}
		if err := r.Handler.Output(ctx, Message{Kind: KindStep, Step: res}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) run(ctx context.Context, seq string) error {
	res, err := r.Engine.Run(ctx, r.SessionID, []string{seq})
	if err != nil {
		return err
	}
	return r.Handler.Output(ctx, Message{Kind: KindRun, Run: res})
}

// FormatTrace renders a trace as "a -> b -> c".
func FormatTrace(trace []domain.State) string {
	parts := make([]string, len(trace))
	for i, s := range trace {
		parts[i] = string(s)
	}
	return strings.Join(parts, " -> ")
}

// Help renders the alphabet and commands as Markdown.
func Help(d domain.Description) string {
	var sb strings.Builder
	sb.WriteString("# Symbols\n\n")
	for _, sym := range d.Alphabet {
		if text, ok := d.Legend[sym]; ok {
			fmt.Fprintf(&sb, "- `%s`: %s\n", sym, text)
		} else {
			fmt.Fprintf(&sb, "- `%s`\n", sym)
		}
	}
	fmt.Fprintf(&sb, "\nStart at `%s`, accept in %s.\n", d.Start, quoteStates(d.Accept))
	sb.WriteString("\n# Commands\n\n")
	sb.WriteString("- `:run <symbols...>` evaluate a sequence from the start\n")
	sb.WriteString("- `:reset` return to the start state\n")
	sb.WriteString("- `:random` evaluate a random example trail\n")
	sb.WriteString("- `:trace` show the visited states\n")
	sb.WriteString("- `:quit` leave\n")
	return sb.String()
}

func quoteStates(states []domain.State) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = "`" + string(s) + "`"
	}
	return strings.Join(parts, ", ")
}
