package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/adapter/llm"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

// State is the loop state of a turn.
type State string

const (
	StateAwaitingModel State = "AWAITING_MODEL"
	StateStreaming     State = "STREAMING"
	StateDispatching   State = "DISPATCHING"
	StateDone          State = "DONE"
	StateError         State = "ERROR"
)

// ChunkKind classifies the chunks of a turn.
type ChunkKind string

const (
	// ChunkText is model output shown to the user as it streams.
	ChunkText ChunkKind = "text"
	// ChunkProgress names a tool about to run.
	ChunkProgress ChunkKind = "progress"
	// ChunkNotice is a system message, such as mock mode or the round cap.
	ChunkNotice ChunkKind = "notice"
	// ChunkError is the single diagnostic of a failed turn.
	ChunkError ChunkKind = "error"
)

// Chunk is one piece of a turn's output.
type Chunk struct {
	Kind ChunkKind
	Text string
}

var errConsumerGone = errors.New("chunk consumer stopped")

// Turn is one run of the loop for a single user message. Its chunk sequence
// can be iterated once; the accessors report the outcome afterwards.
type Turn struct {
	RunID string

	loop    *Loop
	ctx     context.Context
	input   string
	history []domain.Message

	once       sync.Once
	mu         sync.Mutex
	state      State
	err        error
	exhausted  bool
	iterations int
	messages   []domain.Message
}

// Chunks returns the turn's output. The sequence is lazy and finite; only
// the first iteration runs the loop, later ones yield nothing. Breaking out
// early cancels the in-flight model call.
func (t *Turn) Chunks() iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		t.once.Do(func() {
			ctx, cancel := context.WithCancel(t.ctx)
			defer cancel()
			t.run(ctx, yield)
		})
	}
}

// Text returns the chunk texts of the turn, formatted for plain-text output.
func (t *Turn) Text() iter.Seq[string] {
	return func(yield func(string) bool) {
		for c := range t.Chunks() {
			if !yield(c.Render()) {
				return
			}
		}
	}
}

// Render formats a chunk for a plain-text stream.
func (c Chunk) Render() string {
	switch c.Kind {
	case ChunkProgress:
		return fmt.Sprintf("\n\n⚙️ *Executing tool `%s`...*\n", c.Text)
	case ChunkNotice, ChunkError:
		return "\n" + c.Text + "\n"
	default:
		return c.Text
	}
}

// State returns the current loop state.
func (t *Turn) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the failure of a turn in StateError.
func (t *Turn) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Exhausted reports whether the turn stopped at the round cap while the
// model still wanted tools.
func (t *Turn) Exhausted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exhausted
}

// Iterations returns the number of model rounds started.
func (t *Turn) Iterations() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.iterations
}

// Messages returns the conversation after the turn: the prior history, the
// user message and everything the turn appended. The system prompt is not
// included.
func (t *Turn) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.messages == nil {
		return append(append([]domain.Message(nil), t.history...), domain.UserMessage(t.input))
	}
	return append([]domain.Message(nil), t.messages...)
}

func (t *Turn) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

func (t *Turn) run(ctx context.Context, yield func(Chunk) bool) {
	stopped := false
	emit := func(c Chunk) bool {
		if stopped {
			return false
		}
		if !yield(c) {
			stopped = true
		}
		return !stopped
	}

	t.recordStart(ctx, len(t.history))
	log := slog.With("run_id", t.RunID)

	messages := make([]domain.Message, 0, len(t.history)+4)
	messages = append(messages, domain.SystemMessage(t.loop.systemPrompt(ctx)))
	messages = append(messages, t.history...)
	messages = append(messages, domain.UserMessage(t.input))

	finish := func(state State, err error) {
		t.mu.Lock()
		t.state = state
		t.err = err
		t.messages = messages[1:]
		t.mu.Unlock()

		if err != nil {
			log.Error("turn failed", "iterations", t.iterations, "err", err)
			emit(Chunk{Kind: ChunkError, Text: diagnostic(err)})
		} else {
			log.Info("turn done", "iterations", t.iterations, "exhausted", t.exhausted)
		}
		t.recordEnd(ctx)
	}

	if t.loop.notice != "" && !emit(Chunk{Kind: ChunkNotice, Text: t.loop.notice}) {
		finish(StateError, errConsumerGone)
		return
	}

	for t.Iterations() < t.loop.maxIterations {
		t.mu.Lock()
		t.iterations++
		t.state = StateAwaitingModel
		t.mu.Unlock()

		asm, err := t.streamRound(ctx, messages, emit)
		if err != nil {
			finish(StateError, err)
			return
		}

		if !asm.HasToolCalls {
			messages = append(messages, domain.AssistantMessage(asm.Text, nil))
			finish(StateDone, nil)
			return
		}

		t.setState(StateDispatching)
		messages = append(messages, domain.AssistantMessage(asm.Text, asm.ToolCalls))

		for _, call := range asm.ToolCalls {
			if !emit(Chunk{Kind: ChunkProgress, Text: call.Function.Name}) {
				finish(StateError, errConsumerGone)
				return
			}

			t.recordEvent(ctx, domain.EventTypeToolDispatched, domain.ToolDispatchedPayload{
				ToolCallID: call.ID,
				ToolName:   call.Function.Name,
				Args:       rawArgs(call.Function.Arguments),
			})

			res, err := t.loop.tools.Dispatch(ctx, call)
			if err != nil {
				finish(StateError, err)
				return
			}

			t.recordEvent(ctx, domain.EventTypeToolResult, domain.ToolResultPayload{
				ToolCallID: call.ID,
				ToolName:   call.Function.Name,
				Result:     res.Payload,
				Blocked:    res.Blocked,
			})
			messages = append(messages, domain.ToolMessage(call.ID, call.Function.Name, res.Payload))
		}
	}

	t.mu.Lock()
	t.exhausted = true
	t.mu.Unlock()
	log.Warn("round cap reached", "max_iterations", t.loop.maxIterations)

	if !emit(Chunk{Kind: ChunkNotice, Text: capNotice(t.loop.maxIterations)}) {
		finish(StateError, errConsumerGone)
		return
	}
	finish(StateDone, nil)
}

// streamRound runs one model round, yielding live text as it arrives.
func (t *Turn) streamRound(ctx context.Context, messages []domain.Message, emit func(Chunk) bool) (Assembly, error) {
	req := &llm.ChatCompletionRequest{
		Model:       t.loop.modelName,
		Messages:    messages,
		Tools:       t.loop.tools.Definitions(),
		Temperature: t.loop.temperature,
	}

	requestID := "llm_" + uuid.New().String()[:8]
	startTime := time.Now()
	t.recordEvent(ctx, domain.EventTypeLLMCallStarted, domain.LLMCallStartedPayload{
		RequestID: requestID,
		Model:     req.Model,
		Iteration: t.Iterations(),
	})

	roundCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	asm := NewAssembler()
	var usage *llm.Usage
	var streamErr error
	done := false

	for ev := range produce(roundCtx, t.loop.model, req) {
		if ev.err != nil {
			streamErr = fmt.Errorf("model stream: %w", ev.err)
			break
		}
		if ev.done {
			usage, done = ev.usage, true
			break
		}
		t.setState(StateStreaming)
		if text := asm.Add(ev.fragment); text != "" {
			if !emit(Chunk{Kind: ChunkText, Text: text}) {
				streamErr = errConsumerGone
				break
			}
		}
	}
	if streamErr == nil && !done {
		if err := ctx.Err(); err != nil {
			streamErr = fmt.Errorf("model stream: %w", err)
		} else {
			streamErr = errors.New("model stream ended unexpectedly")
		}
	}

	result := asm.Result()
	payload := domain.LLMCallDonePayload{
		RequestID: requestID,
		Model:     req.Model,
		LatencyMs: time.Since(startTime).Milliseconds(),
		ToolCalls: len(result.ToolCalls),
	}
	if usage != nil {
		payload.PromptTokens = usage.PromptTokens
		payload.CompletionTokens = usage.CompletionTokens
		payload.TotalTokens = usage.TotalTokens
	}
	if streamErr != nil {
		payload.Error = streamErr.Error()
	}
	t.recordEvent(ctx, domain.EventTypeLLMCallDone, payload)

	return result, streamErr
}

func diagnostic(err error) string {
	var parseErr *domain.ParseError
	if errors.As(err, &parseErr) {
		return "Oops! I could not understand a tool request from the model. Please try again."
	}
	return "Oops! The launchpad agent ran into an error: " + err.Error()
}

func capNotice(n int) string {
	return fmt.Sprintf("I stopped after %d tool rounds without a final answer. Send another message to continue.", n)
}

func rawArgs(s string) json.RawMessage {
	if strings.TrimSpace(s) == "" || !json.Valid([]byte(s)) {
		return nil
	}
	return json.RawMessage(s)
}
