package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// GetRun returns a recorded run.
// GET /v1/runs/:run_id
func (h *Handler) GetRun(c echo.Context) error {
	if h.runs == nil {
		return errorJSON(c, http.StatusNotFound, "run tracing is disabled")
	}
	run, err := h.runs.GetRun(c.Request().Context(), c.Param("run_id"))
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	if run == nil {
		return errorJSON(c, http.StatusNotFound, "run not found")
	}
	return c.JSON(http.StatusOK, run)
}

// GetRunEvents retrieves the trace events of a run.
// GET /v1/runs/:run_id/events
func (h *Handler) GetRunEvents(c echo.Context) error {
	if h.runs == nil {
		return errorJSON(c, http.StatusNotFound, "run tracing is disabled")
	}
	runID := c.Param("run_id")
	limit := 100
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}
	afterTs := int64(0)
	if t := c.QueryParam("after_ts"); t != "" {
		if val, err := strconv.ParseInt(t, 10, 64); err == nil {
			afterTs = val
		}
	}
	var types []string
	if raw := c.QueryParam("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}

	ctx := c.Request().Context()

	run, err := h.runs.GetRun(ctx, runID)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	if run == nil {
		return errorJSON(c, http.StatusNotFound, "run not found")
	}

	events, err := h.runs.GetEvents(ctx, runID, afterTs, types, limit)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"run_id": runID,
		"status": run.Status,
		"events": events,
	})
}
