package streaming

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/alexschlessinger/vanillachat/messages"
)

// ToolCallBuilder accumulates one tool call across fragments.
type ToolCallBuilder struct {
	ID        string // Set by the first fragment that carries one, never overwritten
	Name      string // Last non-empty name wins
	Arguments strings.Builder
}

// ParsedArguments is a best-effort parse of the arguments received so far.
// Partial or non-object JSON yields an empty map.
func (b *ToolCallBuilder) ParsedArguments() map[string]any {
	args := map[string]any{}
	text := b.Arguments.String()
	if strings.TrimSpace(text) == "" {
		return args
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil || parsed == nil {
		return args
	}
	return parsed
}

// StreamState holds the incremental assistant message of one decode session.
// Text only grows, tool calls are only added, and their arguments only grow.
type StreamState struct {
	text      strings.Builder
	toolCalls []*ToolCallBuilder // first-seen order
	byIndex   map[int]int        // upstream index -> position in toolCalls

	mu sync.Mutex
}

// NewStreamState creates a new StreamState with initialized fields
func NewStreamState() *StreamState {
	return &StreamState{
		byIndex: make(map[int]int),
	}
}

// Apply folds fragments into the state in order.
func (s *StreamState) Apply(fragments ...Fragment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range fragments {
		switch f.Kind {
		case FragmentContent:
			s.text.WriteString(f.Text)
		case FragmentToolCall:
			s.applyToolCall(f)
		}
	}
}

func (s *StreamState) applyToolCall(f Fragment) {
	pos, ok := s.byIndex[f.Index]
	if !ok {
		pos = len(s.toolCalls)
		s.byIndex[f.Index] = pos
		s.toolCalls = append(s.toolCalls, &ToolCallBuilder{})
	}
	tc := s.toolCalls[pos]

	if tc.ID == "" && f.ID != "" {
		tc.ID = f.ID
	}
	if f.Name != "" {
		tc.Name = f.Name
	}
	if f.ArgsDelta != "" {
		tc.Arguments.WriteString(f.ArgsDelta)
	}
}

// Text returns the accumulated reply text.
func (s *StreamState) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text.String()
}

// ToolCallCount returns the number of distinct tool calls seen.
func (s *StreamState) ToolCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.toolCalls)
}

// Snapshot renders the state as an independent Snapshot.
func (s *StreamState) Snapshot() messages.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	content := make([]messages.Segment, 0, len(s.toolCalls)+1)
	if s.text.Len() > 0 {
		content = append(content, messages.TextSegment(s.text.String()))
	}
	for _, tc := range s.toolCalls {
		content = append(content, messages.ToolCallSegment(
			tc.ID,
			tc.Name,
			tc.ParsedArguments(),
			tc.Arguments.String(),
		))
	}
	return messages.Snapshot{Content: content}
}
