package streaming

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alexschlessinger/vanillachat/messages"
	"go.uber.org/zap"
)

// DefaultReadSize is the buffer size for one physical read of the response body.
const DefaultReadSize = 32 * 1024

// Decoder turns a chat completion byte stream into snapshots.
// It holds no per-session state; every Decode call owns its own StreamState.
type Decoder struct {
	adapter  ChunkAdapter
	readSize int
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithReadSize sets the maximum number of bytes consumed per physical chunk.
func WithReadSize(n int) DecoderOption {
	return func(d *Decoder) {
		if n > 0 {
			d.readSize = n
		}
	}
}

// NewDecoder creates a decoder that maps chunk objects through adapter.
func NewDecoder(adapter ChunkAdapter, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		adapter:  adapter,
		readSize: DefaultReadSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode reads body until EOF and emits one snapshot per non-empty read.
//
// The returned channel is closed when the stream ends. A read failure is
// reported as a single EventTypeError after body has been closed. Cancelling
// ctx closes body, stops emission and is not reported. body is closed exactly
// once on every path and must not be read by anyone else meanwhile.
func (d *Decoder) Decode(ctx context.Context, body io.ReadCloser) <-chan *messages.StreamEvent {
	events := make(chan *messages.StreamEvent)

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := body.Close(); err != nil {
				zap.S().Debugw("stream_release_failed", "error", err)
			}
		})
	}

	go func() {
		defer close(events)
		defer release()

		// A blocked Read only returns once the body is closed.
		stop := context.AfterFunc(ctx, release)
		defer stop()

		session := &decodeSession{
			decoder: d,
			state:   NewStreamState(),
		}
		buf := make([]byte, d.readSize)

		for {
			n, err := body.Read(buf)
			if ctx.Err() != nil {
				zap.S().Debugw("stream_cancelled", "chunks", session.chunks)
				return
			}

			if n > 0 {
				snapshot := session.consume(buf[:n])
				select {
				case <-ctx.Done():
					return
				case events <- messages.NewSnapshotEvent(snapshot):
				}
			}

			if err != nil {
				if errors.Is(err, io.EOF) {
					session.logCompletion()
					return
				}
				release()
				zap.S().Debugw("stream_read_failed", "error", err, "chunks", session.chunks)
				select {
				case <-ctx.Done():
				case events <- messages.NewErrorEvent(fmt.Errorf("error reading stream: %w", err)):
				}
				return
			}
		}
	}()

	return events
}

// decodeSession is the per-call state of Decode.
type decodeSession struct {
	decoder *Decoder
	state   *StreamState
	chunks  int
	skipped int
}

// consume applies every frame found in one physical chunk and returns the
// resulting snapshot.
func (s *decodeSession) consume(chunk []byte) messages.Snapshot {
	s.chunks++
	text := strings.ToValidUTF8(string(chunk), "�")

	for _, frame := range SplitFrames(text) {
		fragments, err := s.decoder.adapter.Fragments([]byte(frame))
		if err != nil {
			s.skipped++
			zap.S().Debugw("stream_frame_skipped", "error", err, "frame_length", len(frame))
			continue
		}
		s.state.Apply(fragments...)
	}
	return s.state.Snapshot()
}

func (s *decodeSession) logCompletion() {
	text := s.state.Text()
	preview := text
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	zap.S().Debugw("stream_completed",
		"chunks", s.chunks,
		"skipped_frames", s.skipped,
		"content_preview", preview,
		"content_length", len(text),
		"tool_call_count", s.state.ToolCallCount(),
	)
}
