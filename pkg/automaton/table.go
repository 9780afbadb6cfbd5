package automaton

import (
	"cmp"
	"maps"
	"slices"

	"github.com/aretw0/ticketflow/pkg/domain"
)

// Definition is the raw description of an automaton.
// It is validated and frozen by NewTable.
type Definition struct {
	// States lists every state in display order.
	States []domain.State
	// Alphabet lists every input symbol.
	Alphabet []domain.Symbol
	// Start is the initial state.
	Start domain.State
	// Accept is the accepting subset of States.
	Accept []domain.State
	// Error is the fail-closed destination for invalid input. It must be a sink.
	Error domain.State
	// Sinks are absorbing states: every symbol maps back to the same state.
	Sinks []domain.State
	// Transitions enumerates the moves of every non-sink state.
	Transitions map[domain.State]map[domain.Symbol]domain.State
}

// Edge is one enumerated transition.
type Edge struct {
	From   domain.State
	Symbol domain.Symbol
	To     domain.State
}

// Table is a validated, immutable transition function.
type Table struct {
	states   []domain.State
	symbols  []domain.Symbol // sorted
	start    domain.State
	errState domain.State

	stateSet map[domain.State]struct{}
	alphabet map[domain.Symbol]struct{}
	accept   map[domain.State]struct{}
	sinks    map[domain.State]struct{}
	delta    map[domain.State]map[domain.Symbol]domain.State
}

// NewTable validates def and returns the frozen Table.
// Every problem found is reported in a single *DefinitionError.
func NewTable(def Definition) (*Table, error) {
	t := &Table{
		states:   slices.Clone(def.States),
		start:    def.Start,
		errState: def.Error,
		stateSet: make(map[domain.State]struct{}, len(def.States)),
		alphabet: make(map[domain.Symbol]struct{}, len(def.Alphabet)),
		accept:   make(map[domain.State]struct{}, len(def.Accept)),
		sinks:    make(map[domain.State]struct{}, len(def.Sinks)),
		delta:    make(map[domain.State]map[domain.Symbol]domain.State, len(def.Transitions)),
	}

	var problems []Problem
	report := func(s domain.State, sym domain.Symbol, reason string) {
		problems = append(problems, Problem{State: s, Symbol: sym, Reason: reason})
	}

	if len(def.States) == 0 {
		report("", "", "no states declared")
	}
	if len(def.Alphabet) == 0 {
		report("", "", "empty alphabet")
	}

	for _, s := range def.States {
		if s == "" {
			report("", "", "empty state name")
			continue
		}
		if _, dup := t.stateSet[s]; dup {
			report(s, "", "declared twice")
		}
		t.stateSet[s] = struct{}{}
	}
	for _, a := range def.Alphabet {
		if a == "" {
			report("", "", "empty symbol")
			continue
		}
		if _, dup := t.alphabet[a]; dup {
			report("", a, "declared twice")
		}
		t.alphabet[a] = struct{}{}
	}
	t.symbols = sortedKeys(t.alphabet)

	if !t.declared(def.Start) {
		report(def.Start, "", "start state is not declared")
	}
	if !t.declared(def.Error) {
		report(def.Error, "", "error state is not declared")
	}
	for _, s := range def.Accept {
		if !t.declared(s) {
			report(s, "", "accepting state is not declared")
		}
		t.accept[s] = struct{}{}
	}
	for _, s := range def.Sinks {
		if !t.declared(s) {
			report(s, "", "sink state is not declared")
		}
		t.sinks[s] = struct{}{}
	}
	if _, ok := t.sinks[def.Error]; !ok && def.Error != "" {
		report(def.Error, "", "error state must be a sink")
	}

	for _, from := range sortedKeys(def.Transitions) {
		moves := def.Transitions[from]
		if !t.declared(from) {
			report(from, "", "transitions from an undeclared state")
			continue
		}
		_, sink := t.sinks[from]
		row := make(map[domain.Symbol]domain.State, len(moves))
		for _, sym := range sortedKeys(moves) {
			to := moves[sym]
			if _, ok := t.alphabet[sym]; !ok {
				report(from, sym, "symbol is not in the alphabet")
				continue
			}
			if !t.declared(to) {
				report(from, sym, "target "+string(to)+" is not declared")
				continue
			}
			if sink && to != from {
				report(from, sym, "sink state leaves to "+string(to))
				continue
			}
			row[sym] = to
		}
		if !sink {
			t.delta[from] = row
		}
	}

	// Totality: every non-sink state must enumerate the whole alphabet.
	for _, s := range def.States {
		if _, sink := t.sinks[s]; sink {
			continue
		}
		row := t.delta[s]
		for _, a := range t.symbols {
			if _, ok := row[a]; !ok {
				report(s, a, "no transition")
			}
		}
	}

	if len(problems) > 0 {
		return nil, &DefinitionError{Problems: problems}
	}
	return t, nil
}

func (t *Table) declared(s domain.State) bool {
	if s == "" {
		return false
	}
	_, ok := t.stateSet[s]
	return ok
}

// Next returns δ(state, symbol). It never fails: symbols outside the alphabet,
// undeclared states and missing moves all resolve to the error state, and sinks
// absorb every symbol.
func (t *Table) Next(state domain.State, symbol domain.Symbol) domain.State {
	if _, ok := t.alphabet[symbol]; !ok {
		return t.errState
	}
	if _, sink := t.sinks[state]; sink {
		return state
	}
	if next, ok := t.delta[state][symbol]; ok {
		return next
	}
	return t.errState
}

// Start returns the initial state.
func (t *Table) Start() domain.State { return t.start }

// ErrorState returns the fail-closed sink.
func (t *Table) ErrorState() domain.State { return t.errState }

// States returns the declared states in declaration order.
func (t *Table) States() []domain.State { return slices.Clone(t.states) }

// Alphabet returns the input symbols, sorted.
func (t *Table) Alphabet() []domain.Symbol { return slices.Clone(t.symbols) }

// Accepting returns the accept set in declaration order.
func (t *Table) Accepting() []domain.State { return t.filter(t.accept) }

// Sinks returns the absorbing states in declaration order.
func (t *Table) Sinks() []domain.State { return t.filter(t.sinks) }

// IsAccepting reports whether s belongs to the accept set.
func (t *Table) IsAccepting(s domain.State) bool {
	_, ok := t.accept[s]
	return ok
}

// IsSink reports whether s is absorbing.
func (t *Table) IsSink(s domain.State) bool {
	_, ok := t.sinks[s]
	return ok
}

// HasState reports whether s is declared.
func (t *Table) HasState(s domain.State) bool { return t.declared(s) }

// HasSymbol reports whether a is part of the alphabet.
func (t *Table) HasSymbol(a domain.Symbol) bool {
	_, ok := t.alphabet[a]
	return ok
}

// Edges lists the enumerated transitions of non-sink states, ordered by
// state declaration and then symbol. Sink self-loops are implicit and omitted.
func (t *Table) Edges() []Edge {
	var edges []Edge
	for _, s := range t.states {
		row, ok := t.delta[s]
		if !ok {
			continue
		}
		for _, a := range t.symbols {
			edges = append(edges, Edge{From: s, Symbol: a, To: row[a]})
		}
	}
	return edges
}

func (t *Table) filter(set map[domain.State]struct{}) []domain.State {
	out := make([]domain.State, 0, len(set))
	for _, s := range t.states {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
