package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nutriai/nutriai/internal/domain"
	"github.com/nutriai/nutriai/internal/service"
	"github.com/nutriai/nutriai/internal/textproc"
)

// maxImageBytes bounds uploaded product photos.
const maxImageBytes = 10 << 20

// AnalyzeText analyzes pasted label text.
// POST /v1/analyze/text
func (h *Handler) AnalyzeText(c echo.Context) error {
	var req domain.TextAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp, err := h.service.AnalyzeText(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, textproc.ErrEmptyInput) || errors.Is(err, textproc.ErrInputTooLong) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "I'm having trouble right now. Could you try again?"})
	}

	return c.JSON(http.StatusOK, resp)
}

// AnalyzeImage analyzes a multipart product photo upload.
// POST /v1/analyze/image
func (h *Handler) AnalyzeImage(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}
	if file.Size > maxImageBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "image too large"})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "could not read file"})
	}
	defer src.Close()

	image, err := io.ReadAll(io.LimitReader(src, maxImageBytes+1))
	if err != nil || len(image) > maxImageBytes {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "could not read file"})
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	sessionID := c.FormValue("session_id")

	resp, err := h.service.AnalyzeImage(c.Request().Context(), sessionID, image, mimeType)
	if err != nil {
		if errors.Is(err, service.ErrEmptyImage) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "I'm having trouble right now. Could you try again?"})
	}

	return c.JSON(http.StatusOK, resp)
}
