package domain

import "encoding/json"

// Message is one entry of a conversation as exchanged with the model.
//
// Content is nil for assistant turns that only carry tool calls.
// ToolCalls is set on assistant messages, ToolCallID on tool results.
type Message struct {
	Role       Role       `json:"role"`
	Content    *string    `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Text returns the message content, or "" when absent.
func (m Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: &content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: &content}
}

// AssistantMessage builds an assistant turn. An empty content is sent as null,
// which strict providers require for tool-call-only turns.
func AssistantMessage(content string, toolCalls []ToolCall) Message {
	msg := Message{Role: RoleAssistant, ToolCalls: toolCalls}
	if content != "" {
		msg.Content = &content
	}
	return msg
}

func ToolMessage(toolCallID, toolName, result string) Message {
	return Message{Role: RoleTool, Content: &result, Name: toolName, ToolCallID: toolCallID}
}

// ToolCall is a complete tool invocation requested by the model.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction carries the function name and its raw JSON arguments.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition is the schema of one tool as transmitted to the model.
type ToolDefinition struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes a callable function and its JSON-schema parameters.
type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ToolResult is the outcome of dispatching one ToolCall.
type ToolResult struct {
	ToolCallID string
	ToolName   string
	Payload    string
	Blocked    bool
}
