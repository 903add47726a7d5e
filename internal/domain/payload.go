package domain

import "encoding/json"

// RunStartedPayload is the payload for run_started events.
type RunStartedPayload struct {
	Input        string `json:"input"`
	HistoryLen   int    `json:"history_len"`
	MaxIteration int    `json:"max_iterations"`
}

// LLMCallStartedPayload is the payload for llm_call_started events.
type LLMCallStartedPayload struct {
	RequestID string `json:"request_id"`
	Model     string `json:"model"`
	Iteration int    `json:"iteration"`
}

// LLMCallDonePayload is the payload for llm_call_done events.
type LLMCallDonePayload struct {
	RequestID        string `json:"request_id"`
	Model            string `json:"model"`
	LatencyMs        int64  `json:"latency_ms"`
	ToolCalls        int    `json:"tool_calls"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
	TotalTokens      int    `json:"total_tokens,omitempty"`
	Error            string `json:"error,omitempty"`
}

// ToolDispatchedPayload is the payload for tool_dispatched events.
type ToolDispatchedPayload struct {
	ToolCallID string          `json:"tool_call_id"`
	ToolName   string          `json:"tool_name"`
	Args       json.RawMessage `json:"args,omitempty"`
}

// ToolResultPayload is the payload for tool_result events.
type ToolResultPayload struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	Result     string `json:"result"`
	Blocked    bool   `json:"blocked,omitempty"`
}

// RunDonePayload is the payload for run_done events.
type RunDonePayload struct {
	Iterations int  `json:"iterations"`
	Exhausted  bool `json:"exhausted"`
}

// RunFailedPayload is the payload for run_failed events.
type RunFailedPayload struct {
	Iterations int    `json:"iterations"`
	Error      string `json:"error"`
}
