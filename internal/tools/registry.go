package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

// ExecutorFunc runs a tool. Expected failures are encoded in the returned
// payload; a returned error means the tool itself broke.
type ExecutorFunc func(ctx context.Context, args json.RawMessage) (json.RawMessage, error)

// Tool is a registered tool: its schema and executor.
type Tool struct {
	Name        ToolName
	Description string
	Parameters  json.RawMessage
	Exec        ExecutorFunc
}

// Definition returns the schema sent to the model.
func (t Tool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Type: "function",
		Function: domain.ToolFunction{
			Name:        string(t.Name),
			Description: t.Description,
			Parameters:  t.Parameters,
		},
	}
}

// Registry stores tools keyed by name, keeping registration order.
type Registry struct {
	mu    sync.RWMutex
	tools map[ToolName]Tool
	order []ToolName
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[ToolName]Tool),
	}
}

// Register adds a new tool.
func (r *Registry) Register(tool Tool) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if tool.Exec == nil {
		return fmt.Errorf("executor is required")
	}
	if len(tool.Parameters) == 0 {
		tool.Parameters = json.RawMessage(`{"type":"object","properties":{},"required":[]}`)
	}
	if !json.Valid(tool.Parameters) {
		return fmt.Errorf("parameters for %s are not valid JSON", tool.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool already registered: %s", tool.Name)
	}
	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)
	return nil
}

// MustRegister adds a tool or panics.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		panic(err)
	}
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[ToolName(name)]
	return t, ok
}

// Definitions returns every tool schema in registration order.
func (r *Registry) Definitions() []domain.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]domain.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}
