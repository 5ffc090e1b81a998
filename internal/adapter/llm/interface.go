// Package llm provides an abstraction for the reasoning collaborator.
package llm

import "context"

// StreamCallback is called for each text chunk in a streaming generation.
// Returning an error stops emission; generation already received is still
// returned to the caller.
type StreamCallback func(chunk string) error

// Client defines the interface for reasoning/generation operations.
type Client interface {
	// GenerateText sends a prompt and returns the full response text.
	GenerateText(ctx context.Context, prompt, systemInstruction string, temperature float32) (string, error)

	// GenerateStream streams a response chunk by chunk. It always returns
	// the accumulated text so far, even when the callback or the stream
	// aborts, so callers can persist what was produced.
	GenerateStream(ctx context.Context, prompt, systemInstruction string, temperature float32, callback StreamCallback) (string, error)

	// GenerateVision sends a prompt plus an image and returns the response
	// text. An empty response means nothing was recognized, not an error.
	GenerateVision(ctx context.Context, prompt, systemInstruction string, image []byte, mimeType string) (string, error)
}

// Ensure implementations satisfy the interface.
var (
	_ Client = (*GeminiClient)(nil)
	_ Client = (*MockClient)(nil)
)
