// Package domain defines the core domain models for the launchpad agent.
package domain

// Role is the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// RunStatus represents the status of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusDone      RunStatus = "DONE"
	RunStatusExhausted RunStatus = "EXHAUSTED"
	RunStatusFailed    RunStatus = "FAILED"
)

// EventType represents the type of a run trace event.
type EventType string

const (
	EventTypeRunStarted EventType = "run_started"
	EventTypeRunDone    EventType = "run_done"
	EventTypeRunFailed  EventType = "run_failed"
	// LLM call events
	EventTypeLLMCallStarted EventType = "llm_call_started"
	EventTypeLLMCallDone    EventType = "llm_call_done"

	// Tool events
	EventTypeToolDispatched EventType = "tool_dispatched"
	EventTypeToolResult     EventType = "tool_result"
)

// VerificationStatus is the verdict of an on-chain payment check.
type VerificationStatus string

const (
	VerificationSuccess           VerificationStatus = "success"
	VerificationInsufficientFunds VerificationStatus = "insufficient_funds"
	VerificationWrongRecipient    VerificationStatus = "wrong_recipient"
	VerificationNotConfirmed      VerificationStatus = "not_confirmed"
	VerificationRPCError          VerificationStatus = "rpc_error"
)
