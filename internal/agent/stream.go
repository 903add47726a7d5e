package agent

import (
	"context"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/adapter/llm"
)

// ChatStreamer is the model side of the loop.
type ChatStreamer interface {
	CreateChatCompletionStream(ctx context.Context, req *llm.ChatCompletionRequest, callback llm.StreamCallback) (*llm.Usage, error)
}

// streamEvent is one message from the model producer. The final event has
// done set, or err on failure.
type streamEvent struct {
	fragment Fragment
	usage    *llm.Usage
	err      error
	done     bool
}

// produce streams one completion in its own goroutine and pushes fragments
// to the returned channel. Cancelling ctx stops the producer; the channel is
// always closed.
func produce(ctx context.Context, model ChatStreamer, req *llm.ChatCompletionRequest) <-chan streamEvent {
	ch := make(chan streamEvent, 16)

	go func() {
		defer close(ch)

		send := func(ev streamEvent) bool {
			select {
			case ch <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		usage, err := model.CreateChatCompletionStream(ctx, req, func(chunk *llm.StreamChunk) error {
			for _, f := range fragmentsOf(chunk) {
				if !send(streamEvent{fragment: f}) {
					return ctx.Err()
				}
			}
			return nil
		})
		if err != nil {
			send(streamEvent{err: err})
			return
		}
		send(streamEvent{done: true, usage: usage})
	}()

	return ch
}

// fragmentsOf splits a stream chunk into fragments, tool-call deltas first.
// Only the first choice is used.
func fragmentsOf(chunk *llm.StreamChunk) []Fragment {
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
		return nil
	}
	delta := chunk.Choices[0].Delta

	frags := make([]Fragment, 0, len(delta.ToolCalls)+1)
	for _, tc := range delta.ToolCalls {
		frags = append(frags, Fragment{ToolCall: &ToolCallFragment{
			Index:     tc.Index,
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}})
	}
	if delta.Content != "" {
		frags = append(frags, Fragment{Text: delta.Content})
	}
	return frags
}
