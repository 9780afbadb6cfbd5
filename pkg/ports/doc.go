/*
Package ports defines the interfaces between the booking automaton and the outside world.

# Key Interfaces

  - Engine: the driving port used by HTTP, MCP and CLI adapters.
  - SnapshotStore: persists and loads the automaton position of a session.
  - DistributedLocker: serialises access to a session across replicas.
*/
package ports
