// Package booking declares the ticket-booking workflow: its states, input
// alphabet, transition table, symbol legend and the built-in example trails.
package booking
