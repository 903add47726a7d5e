package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string           `json:"message"`
	History []domain.Message `json:"history"`
}

// PostChat streams one turn as plain text.
// POST /api/chat
func (h *Handler) PostChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return errorJSON(c, http.StatusBadRequest, "No message provided")
	}

	turn := h.chat.Run(c.Request().Context(), req.Message, req.History)

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	resp.Header().Set("X-Run-ID", turn.RunID)
	resp.Header().Set("Cache-Control", "no-cache")
	resp.WriteHeader(http.StatusOK)

	for text := range turn.Text() {
		if _, err := resp.Write([]byte(text)); err != nil {
			slog.Warn("chat client went away", "run_id", turn.RunID, "err", err)
			break
		}
		resp.Flush()
	}
	return nil
}
