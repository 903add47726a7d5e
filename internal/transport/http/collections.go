package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

// ListCollections returns every launchpad collection.
// GET /api/collections
func (h *Handler) ListCollections(c echo.Context) error {
	list, err := h.collections.List(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"collections": list,
	})
}

// GetCollection returns one collection by case-insensitive name.
// GET /api/collections/:name
func (h *Handler) GetCollection(c echo.Context) error {
	col, err := h.collections.Lookup(c.Request().Context(), c.Param("name"))
	if errors.Is(err, domain.ErrCollectionNotFound) {
		return errorJSON(c, http.StatusNotFound, "collection not found")
	}
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"collection": col,
		"total_eth":  col.TotalETH(),
	})
}
