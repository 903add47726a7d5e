package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/agent"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 64
)

// WSServer serves chat turns over WebSocket. Each connection runs at most one
// turn at a time; closing the connection cancels the running turn.
type WSServer struct {
	chat     Chatter
	upgrader websocket.Upgrader
}

// NewWSServer creates a new WebSocket chat server.
func NewWSServer(chat Chatter) *WSServer {
	return &WSServer{
		chat: chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type connection struct {
	id     string
	ws     *websocket.Conn
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	busy   atomic.Bool
	turns  sync.WaitGroup
}

// HandleWebSocket upgrades the request and serves the connection until the
// client goes away.
// GET /ws/chat
func (s *WSServer) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return err
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	conn := &connection{
		id:     "conn_" + uuid.New().String()[:8],
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
	slog.Info("websocket connected", "conn_id", conn.id)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writePump(conn)
	}()

	s.readPump(conn)

	cancel()
	conn.turns.Wait()
	<-writerDone
	slog.Info("websocket disconnected", "conn_id", conn.id)
	return nil
}

// readPump reads client frames until the connection fails.
func (s *WSServer) readPump(conn *connection) {
	conn.ws.SetReadLimit(maxMessageSize)
	_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "conn_id", conn.id, "err", err)
			}
			return
		}
		_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
		s.handleFrame(conn, data)
	}
}

// writePump owns all writes to the socket. It closes the socket when the
// connection context ends.
func (s *WSServer) writePump(conn *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.cancel()
		conn.ws.Close()
	}()

	for {
		select {
		case data := <-conn.send:
			_ = conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Warn("websocket write failed", "conn_id", conn.id, "err", err)
				return
			}
		case <-ticker.C:
			_ = conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-conn.ctx.Done():
			_ = conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleFrame dispatches one client frame.
func (s *WSServer) handleFrame(conn *connection, data []byte) {
	var frame protocol.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.sendError(conn, "", "invalid JSON frame")
		return
	}

	switch frame.Type {
	case protocol.TypeChat:
		s.handleChat(conn, frame)
	default:
		s.sendError(conn, "", "unknown frame type: "+frame.Type)
	}
}

func (s *WSServer) handleChat(conn *connection, frame protocol.Frame) {
	if strings.TrimSpace(frame.Message) == "" {
		s.sendError(conn, "", "No message provided")
		return
	}
	if !conn.busy.CompareAndSwap(false, true) {
		s.sendError(conn, "", "a turn is already running on this connection")
		return
	}

	conn.turns.Add(1)
	go func() {
		defer conn.turns.Done()
		defer conn.busy.Store(false)
		s.runTurn(conn, frame)
	}()
}

// runTurn streams one turn as frames. A completed turn ends with a done frame
// carrying the updated history; a failed one ends with its error frame.
func (s *WSServer) runTurn(conn *connection, frame protocol.Frame) {
	turn := s.chat.Run(conn.ctx, frame.Message, frame.History)
	log := slog.With("conn_id", conn.id, "run_id", turn.RunID)

	if !conn.sendFrame(protocol.NewFrame(protocol.TypeRunStarted, turn.RunID)) {
		return
	}

	for chunk := range turn.Chunks() {
		if !conn.sendFrame(chunkFrame(turn.RunID, chunk)) {
			log.Info("client left during turn")
			break
		}
	}

	if turn.State() != agent.StateDone {
		return
	}
	done := protocol.NewFrame(protocol.TypeDone, turn.RunID)
	done.History = turn.Messages()
	done.Exhausted = turn.Exhausted()
	done.Iterations = turn.Iterations()
	conn.sendFrame(done)
}

func chunkFrame(runID string, c agent.Chunk) protocol.Frame {
	typ := protocol.TypeDelta
	switch c.Kind {
	case agent.ChunkProgress:
		typ = protocol.TypeProgress
	case agent.ChunkNotice:
		typ = protocol.TypeNotice
	case agent.ChunkError:
		typ = protocol.TypeError
	}
	f := protocol.NewFrame(typ, runID)
	f.Text = c.Text
	return f
}

func (s *WSServer) sendError(conn *connection, runID, msg string) {
	f := protocol.NewFrame(protocol.TypeError, runID)
	f.Text = msg
	conn.sendFrame(f)
}

// sendFrame queues a frame for the writer. It reports false once the
// connection is gone.
func (c *connection) sendFrame(f protocol.Frame) bool {
	data, err := json.Marshal(f)
	if err != nil {
		slog.Error("failed to marshal frame", "type", f.Type, "err", err)
		return false
	}
	select {
	case c.send <- data:
		return true
	case <-c.ctx.Done():
		return false
	}
}
