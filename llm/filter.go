package llm

import "strings"

const (
	thinkOpenTag  = "<think>"
	thinkCloseTag = "</think>"
)

// ThinkSplitter separates <think>...</think> blocks from streamed text.
// Tags split across chunks are held back until they can be recognized.
type ThinkSplitter struct {
	inThinkBlock bool
	pending      string
}

// ProcessChunk splits chunk into the visible text and the thinking text it contains.
func (f *ThinkSplitter) ProcessChunk(chunk string) (visible, thinking string) {
	var out, think strings.Builder
	buf := f.pending + chunk
	f.pending = ""

	for buf != "" {
		tag := thinkOpenTag
		dst := &out
		if f.inThinkBlock {
			tag = thinkCloseTag
			dst = &think
		}

		if idx := strings.Index(buf, tag); idx >= 0 {
			dst.WriteString(buf[:idx])
			buf = buf[idx+len(tag):]
			f.inThinkBlock = !f.inThinkBlock
			continue
		}

		keep := partialTagSuffix(buf, tag)
		dst.WriteString(buf[:len(buf)-keep])
		f.pending = buf[len(buf)-keep:]
		break
	}

	return out.String(), think.String()
}

// InThinkBlock reports whether the stream is currently inside a think block.
func (f *ThinkSplitter) InThinkBlock() bool {
	return f.inThinkBlock
}

// Flush returns text held back as a possible partial tag.
func (f *ThinkSplitter) Flush() (visible, thinking string) {
	rest := f.pending
	f.pending = ""
	if f.inThinkBlock {
		return "", rest
	}
	return rest, ""
}

// partialTagSuffix returns the length of the longest suffix of s that is a proper prefix of tag.
func partialTagSuffix(s, tag string) int {
	maxLen := min(len(s), len(tag)-1)
	for n := maxLen; n > 0; n-- {
		if strings.HasSuffix(s, tag[:n]) {
			return n
		}
	}
	return 0
}
