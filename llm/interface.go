package llm

import (
	"context"

	"github.com/alexschlessinger/vanillachat/messages"
)

// LLM interface defines the contract for streaming chat backends
type LLM interface {
	// ChatCompletionStream sends the conversation and streams snapshots of the reply.
	// Setup failures arrive as a single error snapshot; transport failures are returned.
	ChatCompletionStream(context.Context, *CompletionRequest) (<-chan *messages.StreamEvent, error)
}

// CompletionRequest contains all parameters for a completion request
type CompletionRequest struct {
	Messages []messages.ChatMessage // Message history
}

// chatBody is the JSON body posted to chat routes.
type chatBody struct {
	Messages []messages.ChatMessage `json:"messages"`
}
