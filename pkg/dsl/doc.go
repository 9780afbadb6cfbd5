/*
Package dsl provides a fluent builder for declaring deterministic automata in Go.

Instead of writing the transition table as nested map literals, callers describe
each state and its moves, and let Build validate the result into an immutable
automaton.Table.

Example usage:

	b := dsl.New().
		Alphabet("coin", "push").
		Start("locked").
		Error("broken")

	b.Add("locked").On("coin", "open").Otherwise("broken")
	b.Add("open").On("push", "done").Loop("coin")
	b.Add("done").Accepting().Sink()

	table, err := b.Build()
	if err != nil {
		// err wraps automaton.ErrInvalidDefinition and lists every problem.
	}
*/
package dsl
