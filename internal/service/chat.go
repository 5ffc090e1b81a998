package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nutriai/nutriai/internal/domain"
	"github.com/nutriai/nutriai/internal/followup"
	"github.com/nutriai/nutriai/internal/inference"
)

// ErrEmptyMessage is returned for a blank chat message. This is the only
// chat failure surfaced as an error; collaborator failures degrade to
// fallback text instead.
var ErrEmptyMessage = errors.New("message cannot be empty")

// recentHistoryWindow is how many prior messages inference prompts see.
const recentHistoryWindow = 3

// turnState is the session state read at the top of a conversational turn.
type turnState struct {
	sessionID  string
	history    []domain.Message
	contextMap map[string]interface{}
	intent     *domain.IntentProfile
	food       *domain.FoodContext
	soft       domain.SoftContext
	useContext bool
}

// Chat runs one conversational turn and returns the full reply.
func (s *Service) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	state, err := s.beginTurn(ctx, req)
	if err != nil {
		return nil, err
	}
	defer s.locks.lock(state.sessionID)()

	state, err = s.prepareTurn(ctx, req, state)
	if err != nil {
		return nil, err
	}

	prompt := buildChatPrompt(req.Message, state.history, state.soft, state.intent, state.food, state.useContext)
	reply, err := s.llmClient.GenerateText(ctx, prompt, s.systemPrompt(req), float32(s.config.LLMTemperature))
	if err != nil {
		s.logger.Warn("chat generation failed, replying with fallback",
			zap.String("session_id", state.sessionID), zap.Error(err))
		reply = fallbackReply
	}

	if err := s.store.AppendMessage(ctx, state.sessionID, domain.RoleAssistant, reply); err != nil {
		return nil, fmt.Errorf("append assistant message: %w", err)
	}

	return &domain.ChatResponse{
		Success:   true,
		SessionID: state.sessionID,
		Response:  reply,
	}, nil
}

// ChatStream runs one conversational turn, emitting the reply in chunks.
// The complete reply is persisted to history even when emission is cut
// short by a client disconnect.
func (s *Service) ChatStream(ctx context.Context, req domain.ChatRequest, emit func(chunk string) error) (*domain.ChatResponse, error) {
	state, err := s.beginTurn(ctx, req)
	if err != nil {
		return nil, err
	}
	defer s.locks.lock(state.sessionID)()

	state, err = s.prepareTurn(ctx, req, state)
	if err != nil {
		return nil, err
	}

	prompt := buildChatPrompt(req.Message, state.history, state.soft, state.intent, state.food, state.useContext)
	full, streamErr := s.llmClient.GenerateStream(ctx, prompt, s.systemPrompt(req), float32(s.config.LLMTemperature), emit)
	if streamErr != nil && full == "" {
		s.logger.Warn("chat stream failed before any output, replying with fallback",
			zap.String("session_id", state.sessionID), zap.Error(streamErr))
		full = fallbackReply
		// Best effort; the client may already be gone.
		_ = emit(full)
	}

	// Persist whatever was generated, using the background context so a
	// cancelled request cannot drop the assistant turn.
	if err := s.store.AppendMessage(context.WithoutCancel(ctx), state.sessionID, domain.RoleAssistant, full); err != nil {
		return nil, fmt.Errorf("append assistant message: %w", err)
	}

	return &domain.ChatResponse{
		Success:   true,
		SessionID: state.sessionID,
		Response:  full,
	}, nil
}

// beginTurn validates the request and resolves the session id, creating a
// session when none was supplied.
func (s *Service) beginTurn(ctx context.Context, req domain.ChatRequest) (turnState, error) {
	if strings.TrimSpace(req.Message) == "" {
		return turnState{}, ErrEmptyMessage
	}

	if req.SessionID == "" {
		session, err := s.store.CreateSession(ctx)
		if err != nil {
			return turnState{}, fmt.Errorf("create session: %w", err)
		}
		return turnState{sessionID: session.ID}, nil
	}

	if _, err := s.store.GetOrCreateSession(ctx, req.SessionID); err != nil {
		return turnState{}, fmt.Errorf("resolve session: %w", err)
	}
	return turnState{sessionID: req.SessionID}, nil
}

// prepareTurn runs the pre-generation pipeline under the session lock:
// read state, classify follow-up, infer and merge soft context, run the
// once-per-session intent inference, and append the user message. The
// returned history excludes the message just appended.
func (s *Service) prepareTurn(ctx context.Context, req domain.ChatRequest, state turnState) (turnState, error) {
	var err error
	if state.history, err = s.store.GetMessages(ctx, state.sessionID); err != nil {
		return state, fmt.Errorf("get history: %w", err)
	}
	if state.contextMap, err = s.store.GetContext(ctx, state.sessionID); err != nil {
		return state, fmt.Errorf("get context: %w", err)
	}
	intent, intentState, err := s.store.GetIntent(ctx, state.sessionID)
	if err != nil {
		return state, fmt.Errorf("get intent: %w", err)
	}
	if state.food, err = s.store.GetFoodContext(ctx, state.sessionID); err != nil {
		return state, fmt.Errorf("get food context: %w", err)
	}

	state.useContext = followup.ShouldUseContext(req.Message, state.food != nil, false)
	if !state.useContext {
		state.food = nil
	}

	recent := lastMessages(state.history, recentHistoryWindow)

	fresh := s.softInf.Infer(ctx, req.Message, recent, state.contextMap)
	if prior, ok := inference.SoftFromContextMap(state.contextMap); ok {
		state.soft = inference.MergeSoft(prior, fresh)
	} else {
		state.soft = fresh
	}
	if err := s.store.MergeContext(ctx, state.sessionID, state.soft.AsContextMap()); err != nil {
		return state, fmt.Errorf("merge context: %w", err)
	}

	state.intent = intent
	if intentState != domain.IntentInferred {
		var ingredients []string
		if state.food != nil {
			ingredients = state.food.Ingredients
		}
		fresh := s.intentInf.Infer(ctx, req.Message, ingredients, recent, state.contextMap)
		if intent != nil {
			fresh = inference.MergeIntent(*intent, fresh)
		}
		state.intent = &fresh
		if err := s.store.SetIntent(ctx, state.sessionID, state.intent, domain.IntentInferred); err != nil {
			return state, fmt.Errorf("set intent: %w", err)
		}
	}

	if err := s.store.AppendMessage(ctx, state.sessionID, domain.RoleUser, req.Message); err != nil {
		return state, fmt.Errorf("append user message: %w", err)
	}
	return state, nil
}

func (s *Service) systemPrompt(req domain.ChatRequest) string {
	if req.Language == "" {
		return chatSystemPrompt
	}
	return fmt.Sprintf("%s The user prefers responses in %s.", chatSystemPrompt, req.Language)
}

func lastMessages(history []domain.Message, n int) []domain.Message {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// GetMessages returns a session's conversation history.
func (s *Service) GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	messages, err := s.store.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	return messages, nil
}
