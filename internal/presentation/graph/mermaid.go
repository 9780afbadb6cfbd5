// Package graph renders automata as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/ticketflow/pkg/automaton"
	"github.com/aretw0/ticketflow/pkg/domain"
)

// GraphOverlay contains session data to highlight on the graph.
type GraphOverlay struct {
	Visited []domain.State
	Current domain.State
}

// OverlayFromTrace builds an overlay from a session trace.
func OverlayFromTrace(trace []domain.State) *GraphOverlay {
	if len(trace) == 0 {
		return nil
	}
	return &GraphOverlay{Visited: trace, Current: trace[len(trace)-1]}
}

type config struct {
	errorEdges bool
}

// Option configures GenerateMermaid.
type Option func(*config)

// WithErrorEdges draws the moves into the error state, hidden by default.
func WithErrorEdges() Option {
	return func(c *config) { c.errorEdges = true }
}

// GenerateMermaid produces a Mermaid flowchart of the table.
// Shapes:
//   - start: ((circle))
//   - accepting: (((double circle)))
//   - error: {{hexagon}}
//   - default: [rectangle]
//
// Parallel edges are merged into one arrow labelled with every symbol.
// Overlay styles (visited/current) are applied when overlay is not nil.
func GenerateMermaid(table *automaton.Table, overlay *GraphOverlay, opts ...Option) string {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, s := range table.States() {
		if s == table.ErrorState() && !cfg.errorEdges && !onOverlay(overlay, s) {
			continue
		}
		opener, closer := "[", "]"
		switch {
		case s == table.Start():
			opener, closer = "((", "))"
		case table.IsAccepting(s):
			opener, closer = "(((", ")))"
		case s == table.ErrorState():
			opener, closer = "{{", "}}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(string(s)), opener, s, closer)
	}

	type pair struct{ from, to domain.State }
	var order []pair
	labels := make(map[pair][]string)
	for _, e := range table.Edges() {
		if e.To == table.ErrorState() && !cfg.errorEdges {
			continue
		}
		p := pair{e.From, e.To}
		if _, seen := labels[p]; !seen {
			order = append(order, p)
		}
		labels[p] = append(labels[p], string(e.Symbol))
	}
	for _, p := range order {
		arrow := "-->"
		if p.to == table.ErrorState() {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s|\"%s\"| %s\n",
			sanitizeMermaidID(string(p.from)), arrow, strings.Join(labels[p], ", "), sanitizeMermaidID(string(p.to)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.State]bool)
		for _, s := range overlay.Visited {
			if seen[s] || !table.HasState(s) || s == overlay.Current {
				continue
			}
			seen[s] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", sanitizeMermaidID(string(s)))
		}
		if table.HasState(overlay.Current) {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(overlay.Current)))
		}
	}

	return sb.String()
}

func onOverlay(o *GraphOverlay, s domain.State) bool {
	if o == nil {
		return false
	}
	if o.Current == s {
		return true
	}
	for _, v := range o.Visited {
		if v == s {
			return true
		}
	}
	return false
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
