package messages

// StreamEventType represents the type of streaming event
type StreamEventType string

const (
	// EventTypeSnapshot carries the accumulated message after one received chunk
	EventTypeSnapshot StreamEventType = "snapshot"
	// EventTypeError terminates the stream after a read failure
	EventTypeError StreamEventType = "error"
)

// StreamEvent represents a single event in the stream
type StreamEvent struct {
	Type     StreamEventType
	Snapshot *Snapshot // For snapshot events
	Error    error     // For error events
}

// NewSnapshotEvent wraps a snapshot in an event.
func NewSnapshotEvent(s Snapshot) *StreamEvent {
	return &StreamEvent{Type: EventTypeSnapshot, Snapshot: &s}
}

// NewErrorEvent wraps a terminal error in an event.
func NewErrorEvent(err error) *StreamEvent {
	return &StreamEvent{Type: EventTypeError, Error: err}
}
