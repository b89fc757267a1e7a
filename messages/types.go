package messages

import "encoding/json"

// Standard role constants
const (
	MessageRoleSystem    = "system"
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleTool      = "tool"
)

// ChatMessage is one entry of the conversation history sent upstream.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SegmentType discriminates the segments of a Snapshot.
type SegmentType string

const (
	SegmentText     SegmentType = "text"
	SegmentToolCall SegmentType = "tool-call"
)

// Segment is one piece of assistant output. Text segments use Text only;
// tool-call segments use the ToolCall* and Args fields.
type Segment struct {
	Type       SegmentType    `json:"type"`
	Text       string         `json:"text,omitempty"`
	ToolCallID string         `json:"toolCallId,omitempty"`
	ToolName   string         `json:"toolName,omitempty"`
	Args       map[string]any `json:"args,omitempty"`
	ArgsText   string         `json:"argsText,omitempty"`
}

type textJSON struct {
	Type SegmentType `json:"type"`
	Text string      `json:"text"`
}

type toolCallJSON struct {
	Type       SegmentType    `json:"type"`
	ToolCallID string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	Args       map[string]any `json:"args"`
	ArgsText   string         `json:"argsText"`
}

// MarshalJSON writes only the fields of the segment's type. Tool calls always
// carry all four fields, with args as {} until the arguments parse.
func (s Segment) MarshalJSON() ([]byte, error) {
	if s.Type != SegmentToolCall {
		return json.Marshal(textJSON{Type: s.Type, Text: s.Text})
	}
	args := s.Args
	if args == nil {
		args = map[string]any{}
	}
	return json.Marshal(toolCallJSON{
		Type:       s.Type,
		ToolCallID: s.ToolCallID,
		ToolName:   s.ToolName,
		Args:       args,
		ArgsText:   s.ArgsText,
	})
}

// TextSegment builds a text segment.
func TextSegment(text string) Segment {
	return Segment{Type: SegmentText, Text: text}
}

// ToolCallSegment builds a tool-call segment. A nil args map is replaced by an empty one.
func ToolCallSegment(id, name string, args map[string]any, argsText string) Segment {
	if args == nil {
		args = map[string]any{}
	}
	return Segment{
		Type:       SegmentToolCall,
		ToolCallID: id,
		ToolName:   name,
		Args:       args,
		ArgsText:   argsText,
	}
}

// Snapshot is the full assistant message as known after one physical chunk.
// Every snapshot of a session supersedes the previous one.
type Snapshot struct {
	Content []Segment `json:"content"`
	Error   string    `json:"error,omitempty"`
}

// ErrorSnapshot builds the snapshot emitted when a request could not be set up.
func ErrorSnapshot(err error) Snapshot {
	return Snapshot{Content: []Segment{}, Error: err.Error()}
}

// Text returns the text segment's content, or "" if there is none.
func (s Snapshot) Text() string {
	for _, seg := range s.Content {
		if seg.Type == SegmentText {
			return seg.Text
		}
	}
	return ""
}

// ToolCalls returns the tool-call segments in first-seen order.
func (s Snapshot) ToolCalls() []Segment {
	var calls []Segment
	for _, seg := range s.Content {
		if seg.Type == SegmentToolCall {
			calls = append(calls, seg)
		}
	}
	return calls
}

// HasError reports whether this is a setup-failure snapshot.
func (s Snapshot) HasError() bool {
	return s.Error != ""
}
