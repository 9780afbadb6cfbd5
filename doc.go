/*
Package ticketflow models an airline/train ticket-booking workflow as a
deterministic finite automaton and serves it to interactive callers.

The automaton is total and fail-closed: every (state, symbol) pair has exactly
one successor, unknown input lands in the error state, and the terminal states
(ticket issued, error, no availability) absorb every further symbol.

# Concept

The transition table and the example trail catalog are built once, validated at
construction and shared read-only. Each session owns its own automaton, restored
from a snapshot store for every operation, so concurrent users never observe each
other's position.

# Usage

	eng, err := ticketflow.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	res, err := eng.Run(ctx, "session-123", []string{"auth select avail_ok choose details pay_ok"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Current, res.Accepted) // ticket_issued true

# Adapters

  - pkg/adapters/http: JSON API and HTML playground (chi).
  - pkg/adapters/mcp: Model Context Protocol tools (mcp-go).
  - pkg/adapters/{memory,file,redis,sqlite}: snapshot stores.
  - cmd/ticketflow: the command line (cobra).
*/
package ticketflow
