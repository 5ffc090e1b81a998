package v1

import (
	"testing"

	"go.uber.org/zap"

	"github.com/nutriai/nutriai/internal/adapter/llm"
	"github.com/nutriai/nutriai/internal/adapter/openfoodfacts"
	"github.com/nutriai/nutriai/internal/config"
	"github.com/nutriai/nutriai/internal/kb"
	"github.com/nutriai/nutriai/internal/repository"
	"github.com/nutriai/nutriai/internal/service"
)

func newTestHandler(t *testing.T) (*Handler, repository.Store) {
	t.Helper()
	store := repository.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	knowledgeBase := kb.New([]kb.Entry{
		{Name: "Monosodium Glutamate", Aliases: []string{"MSG", "E621"}, Category: "flavor_enhancer", Confidence: "high", WhyItMatters: "flavor enhancer"},
		{Name: "Red 40", Aliases: []string{"red dye 40"}, Category: "color", Confidence: "medium", WhyItMatters: "synthetic dye"},
	})
	cfg := config.Load()
	off := openfoodfacts.NewClient(cfg.OFFBaseURL, cfg.OFFTimeout, cfg.OFFCacheTTL, zap.NewNop())
	svc := service.New(store, llm.NewMockClient(), off, knowledgeBase, cfg, zap.NewNop())
	return NewHandler(svc), store
}
