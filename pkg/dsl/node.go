package dsl

import "github.com/aretw0/ticketflow/pkg/domain"

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	id        domain.State
	accept    bool
	sink      bool
	otherwise domain.State
	moves     map[domain.Symbol]domain.State
}

// ID returns the state being configured.
func (s *StateBuilder) ID() domain.State { return s.id }

// On adds a transition on symbol to target.
func (s *StateBuilder) On(symbol domain.Symbol, target domain.State) *StateBuilder {
	s.moves[symbol] = target
	return s
}

// Loop keeps the automaton in this state for each of the given symbols.
func (s *StateBuilder) Loop(symbols ...domain.Symbol) *StateBuilder {
	for _, sym := range symbols {
		s.moves[sym] = s.id
	}
	return s
}

// Otherwise routes every symbol without an explicit move to target.
func (s *StateBuilder) Otherwise(target domain.State) *StateBuilder {
	s.otherwise = target
	return s
}

// Accepting marks the state as part of the accept set.
func (s *StateBuilder) Accepting() *StateBuilder {
	s.accept = true
	return s
}

// Sink marks the state as absorbing. Build rejects any move declared on a
// sink that leaves it; loops are allowed.
func (s *StateBuilder) Sink() *StateBuilder {
	s.sink = true
	return s
}
