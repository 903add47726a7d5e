package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/policy"
)

// PolicyEvaluator decides whether a tool call may run.
type PolicyEvaluator interface {
	Evaluate(ctx context.Context, toolName string, args map[string]interface{}) (policy.Decision, error)
}

// Dispatcher parses, gates and executes tool calls.
type Dispatcher struct {
	registry *Registry
	policy   PolicyEvaluator
}

// NewDispatcher creates a dispatcher. policy may be nil.
func NewDispatcher(registry *Registry, policy PolicyEvaluator) *Dispatcher {
	return &Dispatcher{registry: registry, policy: policy}
}

// Definitions returns the schemas of every dispatchable tool.
func (d *Dispatcher) Definitions() []domain.ToolDefinition {
	return d.registry.Definitions()
}

// ParseArguments validates accumulated argument text. Empty text is an empty
// argument set; anything other than a JSON object is a *domain.ParseError.
func ParseArguments(toolName, raw string) (json.RawMessage, map[string]interface{}, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 {
		return json.RawMessage("{}"), map[string]interface{}{}, nil
	}

	var args map[string]interface{}
	if err := json.Unmarshal(trimmed, &args); err != nil {
		return nil, nil, &domain.ParseError{ToolName: toolName, Raw: raw, Err: err}
	}
	if args == nil {
		return nil, nil, &domain.ParseError{ToolName: toolName, Raw: raw, Err: errors.New("arguments must be a JSON object")}
	}
	return json.RawMessage(trimmed), args, nil
}

// Dispatch runs one tool call. Unknown tools and policy blocks become error
// payloads. A returned error aborts the conversation turn: malformed
// arguments, policy evaluation failures and broken tools.
func (d *Dispatcher) Dispatch(ctx context.Context, call domain.ToolCall) (result domain.ToolResult, err error) {
	name := call.Function.Name
	result = domain.ToolResult{ToolCallID: call.ID, ToolName: name}

	raw, args, err := ParseArguments(name, call.Function.Arguments)
	if err != nil {
		return result, err
	}

	tool, ok := d.registry.Lookup(name)
	if !ok {
		slog.Warn("model requested unknown tool", "tool", name)
		result.Payload = string(errorPayload(fmt.Sprintf("unknown tool: %s", name), nil))
		return result, nil
	}

	if d.policy != nil {
		decision, err := d.policy.Evaluate(ctx, name, args)
		if err != nil {
			return result, fmt.Errorf("policy check for %s: %w", name, err)
		}
		if !decision.Allow {
			slog.Info("tool call blocked by policy", "tool", name, "reason", decision.Reason)
			result.Blocked = true
			result.Payload = string(errorPayload("blocked by policy: "+decision.Reason, nil))
			return result, nil
		}
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("tool panicked", "tool", name, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("tool %s panicked: %v", name, r)
		}
	}()

	out, err := tool.Exec(ctx, raw)
	if err != nil {
		return result, fmt.Errorf("tool %s: %w", name, err)
	}
	result.Payload = string(out)
	return result, nil
}
