package messages

import (
	"context"
	"errors"
)

// EventProcessor defines an interface for consuming snapshot streams.
// Implementations can render snapshots differently based on the context
// (e.g., terminal output vs JSON lines).
type EventProcessor interface {
	// OnSnapshot is called for every snapshot with the one that preceded it
	OnSnapshot(prev, cur Snapshot)

	// OnComplete is called once the stream ends normally
	OnComplete(final Snapshot)

	// OnError is called when the stream fails or the request could not be set up
	OnError(err error)
}

// ProcessEventStream drains eventChan into processor and returns the last snapshot.
// Cancellation of ctx stops processing and is not reported as an error.
func ProcessEventStream(ctx context.Context, eventChan <-chan *StreamEvent, processor EventProcessor) (Snapshot, error) {
	var last Snapshot

	for {
		var event *StreamEvent
		var ok bool
		select {
		case <-ctx.Done():
			return last, nil
		case event, ok = <-eventChan:
		}
		if !ok {
			processor.OnComplete(last)
			return last, nil
		}

		switch event.Type {
		case EventTypeSnapshot:
			if event.Snapshot == nil {
				continue
			}
			cur := *event.Snapshot
			if cur.HasError() {
				err := errors.New(cur.Error)
				processor.OnError(err)
				return cur, err
			}
			processor.OnSnapshot(last, cur)
			last = cur

		case EventTypeError:
			processor.OnError(event.Error)
			return last, event.Error
		}
	}
}
