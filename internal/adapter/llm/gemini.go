package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient is the production reasoning client backed by the Gemini API.
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, apiKey, model string, maxTokens int) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{
		client:    client,
		model:     model,
		maxTokens: int32(maxTokens),
	}, nil
}

func (c *GeminiClient) generateConfig(systemInstruction string, temperature float32) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: c.maxTokens,
	}
	if systemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}
	return cfg
}

// GenerateText sends a prompt and returns the full response text.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt, systemInstruction string, temperature float32) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(prompt), c.generateConfig(systemInstruction, temperature))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return resp.Text(), nil
}

// GenerateStream streams a response, returning the accumulated text.
func (c *GeminiClient) GenerateStream(ctx context.Context, prompt, systemInstruction string, temperature float32, callback StreamCallback) (string, error) {
	var full strings.Builder

	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model,
		genai.Text(prompt), c.generateConfig(systemInstruction, temperature)) {
		if err != nil {
			return full.String(), fmt.Errorf("gemini stream failed: %w", err)
		}
		chunk := resp.Text()
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if cbErr := callback(chunk); cbErr != nil {
			return full.String(), cbErr
		}
	}
	return full.String(), nil
}

// GenerateVision sends a prompt plus image bytes.
func (c *GeminiClient) GenerateVision(ctx context.Context, prompt, systemInstruction string, image []byte, mimeType string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(image, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		contents, c.generateConfig(systemInstruction, 0.2))
	if err != nil {
		return "", fmt.Errorf("gemini vision generation failed: %w", err)
	}
	return resp.Text(), nil
}
