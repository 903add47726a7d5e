// Package llm talks to OpenAI-compatible chat completion endpoints.
package llm

import "context"

// LLMClient is the model backend of the launchpad agent. The agent loop
// streams; ListModels backs the models command.
type LLMClient interface {
	// CreateChatCompletionStream calls callback once per SSE chunk and returns
	// the usage totals when the provider reports them.
	CreateChatCompletionStream(ctx context.Context, req *ChatCompletionRequest, callback StreamCallback) (*Usage, error)

	ListModels(ctx context.Context) ([]Model, error)
}

var _ LLMClient = (*Client)(nil)
