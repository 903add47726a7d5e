package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/agent"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Chatter starts conversation turns.
type Chatter interface {
	Run(ctx context.Context, input string, history []domain.Message) *agent.Turn
}

// CollectionLister reads the collection directory.
type CollectionLister interface {
	List(ctx context.Context) ([]domain.Collection, error)
	Lookup(ctx context.Context, name string) (domain.Collection, error)
}

// RunReader reads recorded runs and their trace events.
type RunReader interface {
	GetRun(ctx context.Context, runID string) (*domain.Run, error)
	GetEvents(ctx context.Context, runID string, afterTs int64, types []string, limit int) ([]domain.Event, error)
}

// Handler handles HTTP requests.
type Handler struct {
	chat        Chatter
	collections CollectionLister
	runs        RunReader
	ws          *WSServer
	mock        bool
}

// NewHandler creates a new handler. runs may be nil when tracing is off.
func NewHandler(chat Chatter, collections CollectionLister, runs RunReader, mock bool) *Handler {
	return &Handler{
		chat:        chat,
		collections: collections,
		runs:        runs,
		ws:          NewWSServer(chat),
		mock:        mock,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/chat", h.PostChat)
	e.GET("/ws/chat", h.ws.HandleWebSocket)

	e.GET("/api/collections", h.ListCollections)
	e.GET("/api/collections/:name", h.GetCollection)

	e.GET("/v1/runs/:run_id", h.GetRun)
	e.GET("/v1/runs/:run_id/events", h.GetRunEvents)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": Version,
		"mock":    h.mock,
	})
}

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}
