// Package protocol defines the WebSocket frames exchanged between chat
// clients and the launchpad server.
package protocol

import (
	"time"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

// Frame types from client to server
const (
	TypeChat = "chat"
)

// Frame types from server to client
const (
	TypeRunStarted = "run_started"
	TypeDelta      = "delta"
	TypeProgress   = "progress"
	TypeNotice     = "notice"
	TypeDone       = "done"
	TypeError      = "error"
)

// Frame is one WebSocket message. A turn ends with exactly one done or
// error frame.
type Frame struct {
	Type  string `json:"type"`
	Ts    int64  `json:"ts"`
	RunID string `json:"run_id,omitempty"`

	// chat
	Message string           `json:"message,omitempty"`
	History []domain.Message `json:"history,omitempty"`

	// delta, progress, notice, error
	Text string `json:"text,omitempty"`

	// done
	Exhausted  bool `json:"exhausted,omitempty"`
	Iterations int  `json:"iterations,omitempty"`
}

// NewFrame stamps a frame of the given type with the current time.
func NewFrame(typ, runID string) Frame {
	return Frame{Type: typ, Ts: time.Now().UnixMilli(), RunID: runID}
}

// Terminal reports whether the frame ends a turn.
func (f Frame) Terminal() bool {
	return f.Type == TypeDone || f.Type == TypeError
}
