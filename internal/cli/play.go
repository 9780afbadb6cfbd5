package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/ticketflow"
	"github.com/aretw0/ticketflow/internal/presentation/tui"
	"github.com/aretw0/ticketflow/pkg/runner"
	"golang.org/x/term"
)

// PlayOptions configures an interactive session.
type PlayOptions struct {
	SessionID string
	// JSON switches to JSON Lines input and output.
	JSON bool
	// Fresh discards the stored session before starting.
	Fresh bool
	In    io.Reader
	Out   io.Writer
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Play runs the interactive REPL on one session until the input ends or ctx
// is cancelled. Terminal output gets a banner, colours and rendered markdown.
func Play(ctx context.Context, rt *Runtime, opts PlayOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.SessionID == "" {
		opts.SessionID = runner.DefaultSessionID
	}

	if opts.Fresh {
		if err := rt.Engine.DeleteSession(ctx, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	var handler runner.IOHandler
	switch {
	case opts.JSON:
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	case isTTY(opts.Out):
		tui.PrintBanner(opts.Out)
		handler = runner.NewTextHandler(opts.In, opts.Out,
			runner.WithTextHandlerRenderer(tui.NewRenderer()),
			runner.WithTextHandlerHighlighter(tui.NewHighlighter(rt.Engine.Table().ErrorState())),
		)
	default:
		handler = runner.NewTextHandler(opts.In, opts.Out)
	}

	snap, err := rt.Engine.Snapshot(ctx, opts.SessionID)
	if err != nil {
		return err
	}
	if !opts.JSON {
		printSystemMessage(opts.Out, "ticketflow %s, session '%s' at '%s'. Type :help for commands.",
			strings.TrimSpace(ticketflow.Version), opts.SessionID, snap.Current)
	}
	rt.Logger.Info("Session active", "session_id", opts.SessionID, "state", snap.Current)

	r := runner.New(rt.Engine,
		runner.WithInputHandler(handler),
		runner.WithSessionID(opts.SessionID),
		runner.WithLogger(rt.Logger),
	)
	return handleExecutionError(r.Run(ctx))
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && IsTerminal(f)
}
