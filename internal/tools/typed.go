package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Typed adapts a handler taking a decoded argument struct. Arguments of the
// wrong shape produce an error payload rather than a failure.
func Typed[A any](fn func(ctx context.Context, args A) (any, error)) ExecutorFunc {
	return func(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
		var args A
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return errorPayload(fmt.Sprintf("invalid arguments: %v", err), nil), nil
			}
		}
		out, err := fn(ctx, args)
		if err != nil {
			return nil, err
		}
		if msg, ok := out.(json.RawMessage); ok {
			return msg, nil
		}
		data, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("encode tool result: %w", err)
		}
		return data, nil
	}
}

// ErrorResult is the payload of a tool call that did not succeed.
type ErrorResult struct {
	Error        string `json:"error"`
	Verification any    `json:"verification,omitempty"`
}

func errorPayload(msg string, verification any) json.RawMessage {
	data, _ := json.Marshal(ErrorResult{Error: msg, Verification: verification})
	return data
}
