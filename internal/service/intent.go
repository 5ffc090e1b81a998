package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nutriai/nutriai/internal/domain"
	"github.com/nutriai/nutriai/internal/inference"
)

// ErrIntentNotFound is returned when a session has no stored intent profile.
var ErrIntentNotFound = errors.New("no intent stored for session")

// InferIntent runs intent inference on demand, merges the result with any
// stored profile, and persists it. Unlike the inference inside a chat or
// analysis turn this always runs, so callers can refresh a stale profile.
func (s *Service) InferIntent(ctx context.Context, req domain.IntentInferRequest) (*domain.IntentInferResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}
	sessionID, err := s.resolveSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	defer s.locks.lock(sessionID)()

	history, err := s.store.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	contextMap, err := s.store.GetContext(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get context: %w", err)
	}
	stored, _, err := s.store.GetIntent(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get intent: %w", err)
	}

	fresh := s.intentInf.Infer(ctx, req.Message, req.Ingredients, lastMessages(history, recentHistoryWindow), contextMap)
	if stored != nil {
		fresh = inference.MergeIntent(*stored, fresh)
	}
	if err := s.store.SetIntent(ctx, sessionID, &fresh, domain.IntentInferred); err != nil {
		return nil, fmt.Errorf("set intent: %w", err)
	}

	return &domain.IntentInferResponse{
		Success:   true,
		SessionID: sessionID,
		Intent:    fresh,
	}, nil
}

// GetIntent returns the stored intent profile for a session.
func (s *Service) GetIntent(ctx context.Context, sessionID string) (*domain.IntentProfile, error) {
	intent, _, err := s.store.GetIntent(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get intent: %w", err)
	}
	if intent == nil {
		return nil, ErrIntentNotFound
	}
	return intent, nil
}
