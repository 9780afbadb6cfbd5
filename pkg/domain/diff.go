package domain

// SnapshotDiff represents the changes between two snapshots of a session.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// Current is set when the current state changed.
	Current *State `json:"current,omitempty"`

	// Appended holds states added to the end of the trace.
	Appended []State `json:"appended,omitempty"`

	// Reset is true when the trace was rewritten (reset or run) rather than
	// extended. Trace then carries the whole new trace.
	Reset bool    `json:"reset,omitempty"`
	Trace []State `json:"trace,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{SessionID: newSnap.SessionID}

	if oldSnap == nil || oldSnap.Current != newSnap.Current {
		current := newSnap.Current
		diff.Current = &current
	}

	switch {
	case oldSnap == nil || !hasPrefix(newSnap.Trace, oldSnap.Trace):
		diff.Reset = true
		diff.Trace = append([]State(nil), newSnap.Trace...)
	case len(newSnap.Trace) > len(oldSnap.Trace):
		diff.Appended = append([]State(nil), newSnap.Trace[len(oldSnap.Trace):]...)
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func hasPrefix(trace, prefix []State) bool {
	if len(prefix) > len(trace) {
		return false
	}
	for i := range prefix {
		if trace[i] != prefix[i] {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.Current == nil && len(d.Appended) == 0 && !d.Reset
}
