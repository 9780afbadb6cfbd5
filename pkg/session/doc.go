/*
Package session gives every caller its own automaton instance.

A Manager restores the session's snapshot from a ports.SnapshotStore, applies one
operation to a fresh automaton over the shared transition table and persists the
result. Operations on the same session are serialised with reference-counted
in-process locks and, optionally, a ports.DistributedLocker shared by replicas.
*/
package session
