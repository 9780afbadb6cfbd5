/*
Package domain contains the core vocabulary of the ticketflow automaton.

It defines the fundamental entities shared by every layer: input Symbols, automaton
States, the results produced by stepping and running, persisted session Snapshots
and example Trails. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Symbol: An input token drawn from a fixed alphabet.
  - State: A node of the automaton. Acceptance is a property of the table, not of the state.
  - StepResult / RunResult: What the engine reports after consuming input.
  - Snapshot: The runtime picture of one session (Current state and Trace).
  - Trail: An example input sequence paired with its expected Verdict.
*/
package domain
