// Package chatclient is a WebSocket client for the launchpad chat endpoint.
package chatclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/protocol"
)

// ErrTurnFailed wraps the error frame that ended a turn.
var ErrTurnFailed = errors.New("turn failed")

// Client represents a WebSocket chat client.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to the server, e.g. ws://localhost:5000/ws/chat.
func Dial(ctx context.Context, addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.conn.Close()
}

// Chat sends one message and calls onFrame for every frame of the turn. On
// success it returns the updated history from the done frame.
func (c *Client) Chat(ctx context.Context, message string, history []domain.Message, onFrame func(protocol.Frame)) ([]domain.Message, error) {
	req := protocol.NewFrame(protocol.TypeChat, "")
	req.Message = message
	req.History = history
	if err := c.conn.WriteJSON(req); err != nil {
		return history, fmt.Errorf("write chat: %w", err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		var f protocol.Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return history, ctx.Err()
			}
			return history, fmt.Errorf("read frame: %w", err)
		}
		if onFrame != nil {
			onFrame(f)
		}

		switch f.Type {
		case protocol.TypeDone:
			return f.History, nil
		case protocol.TypeError:
			return history, fmt.Errorf("%w: %s", ErrTurnFailed, f.Text)
		}
	}
}
