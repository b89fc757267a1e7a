package streaming

// FragmentKind discriminates Fragment values.
type FragmentKind int

const (
	// FragmentContent appends Text to the assistant reply
	FragmentContent FragmentKind = iota
	// FragmentToolCall introduces or extends the tool call at Index
	FragmentToolCall
)

func (k FragmentKind) String() string {
	switch k {
	case FragmentContent:
		return "content"
	case FragmentToolCall:
		return "tool_call"
	default:
		return "unknown"
	}
}

// Fragment is one normalized unit of upstream output, independent of wire shape.
type Fragment struct {
	Kind FragmentKind

	// FragmentContent
	Text string

	// FragmentToolCall
	Index     int
	ID        string
	Name      string
	ArgsDelta string
}

// ContentFragment builds a text fragment.
func ContentFragment(text string) Fragment {
	return Fragment{Kind: FragmentContent, Text: text}
}

// ToolCallFragment builds a tool-call fragment. Empty id, name or args mean "not supplied".
func ToolCallFragment(index int, id, name, argsDelta string) Fragment {
	return Fragment{
		Kind:      FragmentToolCall,
		Index:     index,
		ID:        id,
		Name:      name,
		ArgsDelta: argsDelta,
	}
}

// ChunkAdapter maps one framed JSON chunk object to fragments.
// Implementations live in the llm/adapters package.
type ChunkAdapter interface {
	Fragments(frame []byte) ([]Fragment, error)
}

// ChunkAdapterFunc adapts a function to ChunkAdapter.
type ChunkAdapterFunc func(frame []byte) ([]Fragment, error)

// Fragments calls f.
func (f ChunkAdapterFunc) Fragments(frame []byte) ([]Fragment, error) {
	return f(frame)
}
