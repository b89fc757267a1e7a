package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/alexschlessinger/vanillachat/llm/streaming"
	ai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

var _ streaming.ChunkAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter handles OpenAI-style chat completion chunks.
// Only choices[0].delta is read; tool calls are keyed by their index.
type OpenAIAdapter struct{}

// NewOpenAIAdapter creates a new OpenAI chunk adapter
func NewOpenAIAdapter() *OpenAIAdapter {
	return &OpenAIAdapter{}
}

// Fragments decodes one chunk object. A chunk without choices yields no
// fragments and no error.
func (a *OpenAIAdapter) Fragments(frame []byte) ([]streaming.Fragment, error) {
	var response ai.ChatCompletionStreamResponse
	if err := json.Unmarshal(frame, &response); err != nil {
		return nil, fmt.Errorf("decode chunk: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, nil
	}

	choice := response.Choices[0]
	delta := choice.Delta

	if choice.FinishReason != "" {
		zap.S().Debugw("openai_chunk_finished", "finish_reason", choice.FinishReason)
	}

	var fragments []streaming.Fragment
	if delta.Content != "" {
		fragments = append(fragments, streaming.ContentFragment(delta.Content))
	}
	for _, tc := range delta.ToolCalls {
		fragments = append(fragments, a.toolCallFragment(tc))
	}
	return fragments, nil
}

// toolCallFragment maps one tool_calls entry. A missing index means index 0,
// which is what single-call backends omit.
func (a *OpenAIAdapter) toolCallFragment(tc ai.ToolCall) streaming.Fragment {
	index := 0
	if tc.Index != nil {
		index = *tc.Index
	}
	return streaming.ToolCallFragment(index, tc.ID, tc.Function.Name, tc.Function.Arguments)
}
