package messages

import (
	"context"
	"strings"
)

// TextDelta returns the text cur adds on top of prev. Snapshots of one session
// only grow, so this is normally a suffix; if cur does not extend prev the whole
// text of cur is returned.
func TextDelta(prev, cur Snapshot) string {
	before, after := prev.Text(), cur.Text()
	if rest, ok := strings.CutPrefix(after, before); ok {
		return rest
	}
	return after
}

// Collect drains a stream and returns the final snapshot.
func Collect(ctx context.Context, eventChan <-chan *StreamEvent) (Snapshot, error) {
	return ProcessEventStream(ctx, eventChan, discardProcessor{})
}

type discardProcessor struct{}

func (discardProcessor) OnSnapshot(prev, cur Snapshot) {}
func (discardProcessor) OnComplete(final Snapshot)     {}
func (discardProcessor) OnError(err error)             {}
