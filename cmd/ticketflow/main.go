// Command ticketflow explores the ticket booking automaton from the terminal,
// over HTTP or as an MCP tool server.
package main

func main() {
	Execute()
}
