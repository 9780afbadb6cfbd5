/*
Package runner implements the interactive loop used by `ticketflow play`.

A Runner reads lines from an IOHandler, turns them into engine operations on a
single session and writes the outcome back through the same handler. Plain
tokens are stepped one by one; lines starting with ':' are commands.

# Commands

	:run <symbols...>   reset and evaluate a whole sequence
	:reset              return to the start state
	:random             evaluate a random example trail
	:trace              show the current trace
	:help               list the alphabet
	:quit               leave

# Handlers

  - TextHandler: prompt-based terminal interaction.
  - JSONHandler: one JSON message per line, for scripting.
*/
package runner
