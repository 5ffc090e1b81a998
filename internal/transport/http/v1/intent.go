package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nutriai/nutriai/internal/domain"
	"github.com/nutriai/nutriai/internal/service"
)

// InferIntent runs intent inference for a message on demand.
// POST /v1/intent/infer
func (h *Handler) InferIntent(c echo.Context) error {
	var req domain.IntentInferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp, err := h.service.InferIntent(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to infer intent"})
	}

	return c.JSON(http.StatusOK, resp)
}

// GetIntent returns the stored intent profile for a session.
// GET /v1/intent/:session_id
func (h *Handler) GetIntent(c echo.Context) error {
	intent, err := h.service.GetIntent(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		if errors.Is(err, service.ErrIntentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "No intent found for session"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve intent"})
	}
	return c.JSON(http.StatusOK, intent)
}
