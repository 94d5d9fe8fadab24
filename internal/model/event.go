package model

// EventKind names a call outcome recorded against a message.
type EventKind string

const (
	EventCalled    EventKind = "called"
	EventNoConsent EventKind = "noConsent"
	EventAttempted EventKind = "attempted"
)

// Valid reports whether k is one of the known outcome kinds.
func (k EventKind) Valid() bool {
	switch k {
	case EventCalled, EventNoConsent, EventAttempted:
		return true
	}
	return false
}

// Event is an entry of the append-only outcome stream.
type Event struct {
	Kind     EventKind `json:"event"`
	RecordID string    `json:"record_id"`
}
