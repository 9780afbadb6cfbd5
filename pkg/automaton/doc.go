/*
Package automaton implements the deterministic finite automaton at the heart of ticketflow.

A Table is a total, deterministic transition function built once from a Definition and
validated eagerly: a table that is not total, references undeclared states, or lets a
sink escape is refused at construction time. An Automaton is a mutable, single-owner
instance over a shared read-only Table; it tracks the current state and the trace of
visited states since the last reset.

Invalid input is never an error here. A symbol outside the alphabet, or a symbol with
no enumerated move, drives the automaton into the designated error state, which is
itself a sink. The error state is the error channel of the workflow.

Automaton is not safe for concurrent use. Give each caller its own instance; Tables
are immutable and may be shared freely.
*/
package automaton
