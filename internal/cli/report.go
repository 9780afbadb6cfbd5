package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/aretw0/ticketflow"
	"github.com/aretw0/ticketflow/pkg/automaton"
	"github.com/aretw0/ticketflow/pkg/booking"
	"github.com/aretw0/ticketflow/pkg/catalog"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/runner"
)

// ErrRejected is returned by RunSequence when the sequence is not accepted,
// so that the process can exit non-zero.
var ErrRejected = errors.New("sequence rejected")

// RunSequence evaluates symbols in a session and prints the outcome.
func RunSequence(ctx context.Context, w io.Writer, eng *ticketflow.Engine, sessionID string, symbols []string, asJSON bool) error {
	res, err := eng.Run(ctx, sessionID, symbols)
	if err != nil {
		return err
	}
	if asJSON {
		if err := writeJSON(w, res); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "final: %s (%s)\n", res.Current, domain.VerdictOf(res.Accepted))
		fmt.Fprintf(w, "trace: %s\n", runner.FormatTrace(res.Trace))
	}
	if !res.Accepted {
		return ErrRejected
	}
	return nil
}

// PrintTrails lists the catalog.
func PrintTrails(w io.Writer, trails []domain.Trail, asJSON bool) error {
	if asJSON {
		return writeJSON(w, trails)
	}
	for i, t := range trails {
		fmt.Fprintf(w, "%2d  %-6s  %s\n", i, t.Expected, t.Seq)
	}
	return nil
}

// VerifyTrails runs every trail through the table and prints a line per trail.
// It returns a *catalog.MismatchError when any verdict disagrees.
func VerifyTrails(w io.Writer, table *automaton.Table, c *catalog.Catalog) error {
	err := c.Verify(table)
	var mismatchErr *catalog.MismatchError
	if err != nil && !errors.As(err, &mismatchErr) {
		return err
	}
	failed := make(map[int]catalog.Mismatch)
	if mismatchErr != nil {
		for _, m := range mismatchErr.Mismatches {
			failed[m.Index] = m
		}
	}

	for i, t := range c.All() {
		if m, ok := failed[i]; ok {
			fmt.Fprintf(w, "FAIL  %s: expected %s, got %s at %s\n", t.Seq, m.Expected, m.Actual, m.Final)
			continue
		}
		fmt.Fprintf(w, "ok    %s: %s\n", t.Seq, t.Expected)
	}
	fmt.Fprintf(w, "%d trails, %d failed\n", c.Len(), len(failed))
	return err
}

// LoadCatalog reads the trail catalog at path, or returns the built-in trails
// when path is empty.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.New(booking.Trails()...), nil
	}
	return catalog.Load(path)
}

// VerifyCatalog checks the catalog at catalogPath against the booking table
// and prints a line per trail. Unlike building an engine, it reports every
// mismatching trail instead of refusing the catalog as a whole.
func VerifyCatalog(w io.Writer, catalogPath string) error {
	table, err := booking.NewTable()
	if err != nil {
		return err
	}
	c, err := LoadCatalog(catalogPath)
	if err != nil {
		return err
	}
	return VerifyTrails(w, table, c)
}

// Validate builds the booking table and checks the catalog at catalogPath
// (the built-in trails when empty) against it.
func Validate(w io.Writer, catalogPath string) error {
	table, err := booking.NewTable()
	if err != nil {
		return err
	}
	c, err := LoadCatalog(catalogPath)
	if err != nil {
		return err
	}
	if err := c.Verify(table); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d states, %d symbols, %d transitions, %d trails: consistent\n",
		len(table.States()), len(table.Alphabet()), len(table.Edges()), c.Len())
	return nil
}

// LegendMarkdown renders the symbol legend as a Markdown table.
func LegendMarkdown(d domain.Description) string {
	var sb strings.Builder
	sb.WriteString("| symbol | meaning |\n|---|---|\n")
	for _, sym := range d.Alphabet {
		text, ok := d.Legend[sym]
		if !ok {
			text = string(sym)
		}
		fmt.Fprintf(&sb, "| `%s` | %s |\n", sym, text)
	}
	return sb.String()
}

// ListSessions prints the stored session IDs.
func ListSessions(ctx context.Context, w io.Writer, eng *ticketflow.Engine) error {
	ids, err := eng.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}
	fmt.Fprintln(w, "Active Sessions:")
	for _, id := range ids {
		fmt.Fprintln(w, "- "+id)
	}
	return nil
}

// InspectSession prints the stored snapshot of a session as indented JSON.
func InspectSession(ctx context.Context, w io.Writer, eng *ticketflow.Engine, sessionID string) error {
	snap, err := eng.LoadSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", sessionID, err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// RemoveSessions deletes every session in ids and reports each one.
func RemoveSessions(ctx context.Context, w io.Writer, eng *ticketflow.Engine, ids []string, all bool) error {
	if all {
		stored, err := eng.Sessions(ctx)
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}
		ids = slices.Concat(ids, stored)
		slices.Sort(ids)
		ids = slices.Compact(ids)
	}

	var errs []error
	for _, id := range ids {
		if err := eng.DeleteSession(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("error removing '%s': %w", id, err))
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
