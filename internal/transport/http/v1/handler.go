// Package v1 provides the versioned HTTP handlers for the backend.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nutriai/nutriai/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Conversation API
	e.POST("/v1/chat", h.Chat)
	e.POST("/v1/chat/stream", h.ChatStream)
	e.GET("/v1/sessions/:session_id/messages", h.GetSessionMessages)

	// Analysis API
	e.POST("/v1/analyze/text", h.AnalyzeText)
	e.POST("/v1/analyze/image", h.AnalyzeImage)

	// Intent API
	e.POST("/v1/intent/infer", h.InferIntent)
	e.GET("/v1/intent/:session_id", h.GetIntent)

	// Product lookup API
	e.GET("/v1/product/:barcode", h.GetProduct)
	e.GET("/v1/product/:barcode/ingredients", h.GetProductIngredients)

	// Knowledge base API
	e.GET("/v1/kb/search", h.SearchKB)
	e.GET("/v1/kb/lookup/:ingredient", h.LookupIngredient)
	e.POST("/v1/kb/bulk-lookup", h.BulkLookupIngredients)
	e.GET("/v1/kb/categories/:category", h.GetKBCategory)
	e.GET("/v1/kb/stats", h.GetKBStats)

	e.GET("/health", h.Health)
	e.GET("/health/llm", h.HealthLLM)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// HealthLLM reports whether the reasoning collaborator is configured.
// GET /health/llm
func (h *Handler) HealthLLM(c echo.Context) error {
	if err := h.service.CheckLLM(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
