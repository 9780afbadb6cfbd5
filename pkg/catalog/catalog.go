// Package catalog holds example trails and checks them against a transition table.
package catalog

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/aretw0/ticketflow/pkg/automaton"
	"github.com/aretw0/ticketflow/pkg/domain"
)

// Catalog is an immutable list of example trails.
type Catalog struct {
	trails []domain.Trail
}

// New creates a catalog holding trails in the given order.
func New(trails ...domain.Trail) *Catalog {
	return &Catalog{trails: append([]domain.Trail(nil), trails...)}
}

// All returns a copy of every trail.
func (c *Catalog) All() []domain.Trail {
	return append([]domain.Trail(nil), c.trails...)
}

// Len returns the number of trails.
func (c *Catalog) Len() int { return len(c.trails) }

// PickRandom returns a uniformly chosen trail. Repeats are allowed.
// An empty catalog yields the zero Trail.
func (c *Catalog) PickRandom() domain.Trail {
	if len(c.trails) == 0 {
		return domain.Trail{}
	}
	return c.trails[rand.IntN(len(c.trails))]
}

// Mismatch describes a trail whose verdict disagrees with the table.
type Mismatch struct {
	Index    int
	Trail    domain.Trail
	Final    domain.State
	Actual   domain.Verdict
	Expected domain.Verdict
}

func (m Mismatch) String() string {
	return fmt.Sprintf("trail %d %q: expected %s, got %s (final state %s)", m.Index, m.Trail.Seq, m.Expected, m.Actual, m.Final)
}

// MismatchError aggregates every inconsistent trail found by Verify.
type MismatchError struct {
	Mismatches []Mismatch
}

func (e *MismatchError) Error() string {
	if len(e.Mismatches) == 1 {
		return "catalog: " + e.Mismatches[0].String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "catalog: %d inconsistent trails:", len(e.Mismatches))
	for _, m := range e.Mismatches {
		sb.WriteString("\n  - ")
		sb.WriteString(m.String())
	}
	return sb.String()
}

// Verify runs every trail through table and reports the ones whose
// expected verdict differs from the actual run.
func (c *Catalog) Verify(table *automaton.Table) error {
	var mismatches []Mismatch
	for i, tr := range c.trails {
		final, ok := automaton.Evaluate(table, tr.Symbols())
		if got := domain.VerdictOf(ok); got != tr.Expected {
			mismatches = append(mismatches, Mismatch{
				Index:    i,
				Trail:    tr,
				Final:    final,
				Actual:   got,
				Expected: tr.Expected,
			})
		}
	}
	if len(mismatches) > 0 {
		return &MismatchError{Mismatches: mismatches}
	}
	return nil
}
