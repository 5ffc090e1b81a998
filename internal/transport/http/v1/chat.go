package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nutriai/nutriai/internal/domain"
	"github.com/nutriai/nutriai/internal/service"
)

// Chat handles a conversational turn.
// POST /v1/chat
func (h *Handler) Chat(c echo.Context) error {
	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp, err := h.service.Chat(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}

	return c.JSON(http.StatusOK, resp)
}

// streamChunk is the SSE payload for one emitted text chunk.
type streamChunk struct {
	Choices []streamChoice `json:"choices"`
}

type streamChoice struct {
	Delta streamDelta `json:"delta"`
}

type streamDelta struct {
	Content string `json:"content"`
}

func newStreamChunk(content string) streamChunk {
	return streamChunk{Choices: []streamChoice{{Delta: streamDelta{Content: content}}}}
}

// ChatStream handles a conversational turn with SSE delivery. The full
// response is persisted to the session regardless of client disconnects.
// POST /v1/chat/stream
func (h *Handler) ChatStream(c echo.Context) error {
	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	// Reject invalid input before the SSE headers commit a 200.
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": service.ErrEmptyMessage.Error()})
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	_, err := h.service.ChatStream(c.Request().Context(), req, func(chunk string) error {
		data, err := json.Marshal(newStreamChunk(chunk))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Response().Writer, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	fmt.Fprintf(c.Response().Writer, "data: [DONE]\n\n")
	flusher.Flush()

	if err != nil {
		// Headers are already sent; nothing more to do than log via echo.
		c.Logger().Errorf("chat stream failed: %v", err)
	}
	return nil
}

// GetSessionMessages retrieves a session's conversation history.
// GET /v1/sessions/:session_id/messages
func (h *Handler) GetSessionMessages(c echo.Context) error {
	sessionID := c.Param("session_id")

	messages, err := h.service.GetMessages(c.Request().Context(), sessionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"messages":   messages,
	})
}
