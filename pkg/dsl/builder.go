package dsl

import (
	"fmt"

	"github.com/aretw0/ticketflow/pkg/automaton"
	"github.com/aretw0/ticketflow/pkg/domain"
)

// Builder manages the automaton construction.
type Builder struct {
	alphabet []domain.Symbol
	start    domain.State
	errState domain.State
	order    []domain.State
	states   map[domain.State]*StateBuilder
}

// New creates a new automaton builder.
func New() *Builder {
	return &Builder{
		states: make(map[domain.State]*StateBuilder),
	}
}

// Alphabet appends input symbols.
func (b *Builder) Alphabet(symbols ...domain.Symbol) *Builder {
	b.alphabet = append(b.alphabet, symbols...)
	return b
}

// Start sets the initial state, declaring it if needed.
func (b *Builder) Start(id domain.State) *Builder {
	b.Add(id)
	b.start = id
	return b
}

// Error sets the fail-closed state. It is declared as a sink.
func (b *Builder) Error(id domain.State) *Builder {
	b.Add(id).Sink()
	b.errState = id
	return b
}

// Add declares a state.
// If the state already exists, it returns the existing builder.
func (b *Builder) Add(id domain.State) *StateBuilder {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	sb := &StateBuilder{
		id:    id,
		moves: make(map[domain.Symbol]domain.State),
	}
	b.states[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Definition expands the builder into a raw automaton.Definition.
// Otherwise targets are filled in for every symbol not set explicitly.
// Moves declared on sinks are passed through unchanged.
func (b *Builder) Definition() automaton.Definition {
	def := automaton.Definition{
		States:      append([]domain.State(nil), b.order...),
		Alphabet:    append([]domain.Symbol(nil), b.alphabet...),
		Start:       b.start,
		Error:       b.errState,
		Transitions: make(map[domain.State]map[domain.Symbol]domain.State),
	}

	for _, id := range b.order {
		sb := b.states[id]
		if sb.accept {
			def.Accept = append(def.Accept, id)
		}
		if sb.sink {
			def.Sinks = append(def.Sinks, id)
		}
		row := make(map[domain.Symbol]domain.State, len(b.alphabet))
		for sym, to := range sb.moves {
			row[sym] = to
		}
		if sb.otherwise != "" {
			for _, sym := range b.alphabet {
				if _, ok := row[sym]; !ok {
					row[sym] = sb.otherwise
				}
			}
		}
		// A sink without declared moves needs no row; declared ones are kept so
		// that NewTable can reject moves leaving it.
		if sb.sink && len(row) == 0 {
			continue
		}
		def.Transitions[id] = row
	}
	return def
}

// Build validates the declared automaton and freezes it.
func (b *Builder) Build() (*automaton.Table, error) {
	table, err := automaton.NewTable(b.Definition())
	if err != nil {
		return nil, fmt.Errorf("failed to build automaton: %w", err)
	}
	return table, nil
}
