package llm

import (
	"context"
	"log"

	"github.com/nutriai/nutriai/internal/config"
)

// NewFromConfig creates a reasoning client based on configuration.
// NUTRIAI_MODE=MOCK selects the deterministic mock client.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Client, error) {
	if config.MockMode() {
		log.Println("NUTRIAI_MODE=MOCK detected, using mock reasoning client")
		return NewMockClient(), nil
	}
	return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMMaxTokens)
}
