package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoSymbol is returned at the boundary when a step request carries no symbol.
// The automaton is never invoked in that case.
var ErrNoSymbol = errors.New("no symbol provided")

// ErrUnknownVerdict is returned when a trail verdict is neither accept nor reject.
var ErrUnknownVerdict = errors.New("unknown verdict")
