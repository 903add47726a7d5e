// Package agent runs the launchpad conversation: it streams model rounds,
// assembles tool calls and dispatches them until the model answers in text.
package agent

import (
	"context"

	"github.com/google/uuid"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

// DefaultMaxIterations bounds the model rounds of one turn.
const DefaultMaxIterations = 3

// ToolDispatcher executes tool calls requested by the model.
type ToolDispatcher interface {
	Definitions() []domain.ToolDefinition
	Dispatch(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error)
}

// Loop is the orchestration loop. It holds no per-conversation state and is
// safe for concurrent use; every Run gets its own Turn.
type Loop struct {
	model         ChatStreamer
	tools         ToolDispatcher
	systemPrompt  func(context.Context) string
	recorder      Recorder
	modelName     string
	maxIterations int
	temperature   *float64
	notice        string
}

// Option configures a Loop.
type Option func(*Loop)

// WithSystemPrompt sets the system prompt builder, called once per turn.
func WithSystemPrompt(fn func(context.Context) string) Option {
	return func(l *Loop) { l.systemPrompt = fn }
}

// WithRecorder records every turn as a run with trace events.
func WithRecorder(r Recorder) Option {
	return func(l *Loop) { l.recorder = r }
}

// WithModel sets the model name sent with each completion request.
func WithModel(name string) Option {
	return func(l *Loop) { l.modelName = name }
}

// WithMaxIterations sets the round cap. Values below 1 are ignored.
func WithMaxIterations(n int) Option {
	return func(l *Loop) {
		if n >= 1 {
			l.maxIterations = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(l *Loop) { l.temperature = &t }
}

// WithNotice yields text as a notice chunk at the start of every turn.
func WithNotice(text string) Option {
	return func(l *Loop) { l.notice = text }
}

// NewLoop creates an orchestration loop.
func NewLoop(model ChatStreamer, tools ToolDispatcher, opts ...Option) *Loop {
	l := &Loop{
		model:         model,
		tools:         tools,
		systemPrompt:  func(context.Context) string { return "" },
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MaxIterations returns the configured round cap.
func (l *Loop) MaxIterations() int { return l.maxIterations }

// Run prepares one conversation turn. Nothing happens until the turn's
// Chunks sequence is iterated; history is not modified.
func (l *Loop) Run(ctx context.Context, input string, history []domain.Message) *Turn {
	return &Turn{
		RunID:   "run_" + uuid.New().String()[:8],
		loop:    l,
		ctx:     ctx,
		input:   input,
		history: append([]domain.Message(nil), history...),
		state:   StateAwaitingModel,
	}
}
