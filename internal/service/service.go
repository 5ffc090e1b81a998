// Package service implements the per-turn conversation orchestration: session
// resolution, follow-up detection, context and intent inference, and the
// calls out to the reasoning collaborator.
package service

import (
	"go.uber.org/zap"

	"github.com/nutriai/nutriai/internal/adapter/llm"
	"github.com/nutriai/nutriai/internal/adapter/openfoodfacts"
	"github.com/nutriai/nutriai/internal/config"
	"github.com/nutriai/nutriai/internal/inference"
	"github.com/nutriai/nutriai/internal/kb"
	"github.com/nutriai/nutriai/internal/repository"
)

type Service struct {
	store     repository.Store
	llmClient llm.Client
	offClient *openfoodfacts.Client
	kb        *kb.KB
	softInf   *inference.SoftInferencer
	intentInf *inference.IntentInferencer
	locks     *sessionLocks
	config    *config.Config
	logger    *zap.Logger
}

func New(store repository.Store, llmClient llm.Client, offClient *openfoodfacts.Client, knowledgeBase *kb.KB, cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		llmClient: llmClient,
		offClient: offClient,
		kb:        knowledgeBase,
		softInf:   inference.NewSoftInferencer(llmClient, logger),
		intentInf: inference.NewIntentInferencer(llmClient, logger),
		locks:     newSessionLocks(),
		config:    cfg,
		logger:    logger,
	}
}
