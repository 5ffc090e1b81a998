package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nutriai/nutriai/internal/domain"
	"github.com/nutriai/nutriai/internal/inference"
	"github.com/nutriai/nutriai/internal/jsonguard"
	"github.com/nutriai/nutriai/internal/textproc"
)

// ErrEmptyImage is returned when an image analysis request carries no data.
var ErrEmptyImage = errors.New("image data cannot be empty")

const strictJSONSuffix = "\n\nIMPORTANT: Return ONLY valid JSON. No explanations or markdown."

// kbContextLimit caps how many extracted ingredients are grounded against
// the knowledge base for the analysis prompt.
const kbContextLimit = 5

// AnalyzeText runs a structured analysis of pasted label text: ingredient
// extraction, knowledge-base grounding, and an InsightCard from the
// reasoning collaborator. The analyzed product becomes the session's food
// context for follow-up questions.
func (s *Service) AnalyzeText(ctx context.Context, req domain.TextAnalysisRequest) (*domain.AnalysisResponse, error) {
	if err := textproc.Validate(req.Text); err != nil {
		return nil, err
	}

	sessionID, err := s.resolveSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	defer s.locks.lock(sessionID)()

	ingredients := textproc.ExtractIngredients(req.Text)
	kbMatches := s.kb.BulkLookup(firstN(ingredients, kbContextLimit))

	intent, err := s.inferTurnContext(ctx, sessionID, req.Text)
	if err != nil {
		return nil, err
	}

	prompt := buildInsightPrompt(req.Text, ingredients, kbMatches, intent)
	insight := s.generateInsight(ctx, prompt, insightSystemPrompt, ingredients)

	food := &domain.FoodContext{
		ProductName: insight.AIInsightTitle,
		Ingredients: ingredients,
		Summary:     insight.QuickVerdict,
	}
	if err := s.store.SetFoodContext(ctx, sessionID, food); err != nil {
		return nil, fmt.Errorf("set food context: %w", err)
	}

	analysis := renderInsight(insight)
	if err := s.appendExchange(ctx, sessionID, req.Text, analysis); err != nil {
		return nil, err
	}

	return &domain.AnalysisResponse{
		Success:   true,
		SessionID: sessionID,
		Analysis:  analysis,
		Insight:   insight,
	}, nil
}

// AnalyzeImage runs a vision analysis of a product photo. Any previously
// stored food context is cleared before anything else runs; a new image
// always starts a new product topic.
func (s *Service) AnalyzeImage(ctx context.Context, sessionID string, image []byte, mimeType string) (*domain.AnalysisResponse, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	sessionID, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer s.locks.lock(sessionID)()

	if err := s.store.ClearFoodContext(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("clear food context: %w", err)
	}

	const imageMessage = "Uploaded image of food product"
	if _, err := s.inferTurnContext(ctx, sessionID, imageMessage); err != nil {
		return nil, err
	}

	insight := s.generateVisionInsight(ctx, image, mimeType)

	food := &domain.FoodContext{
		ProductName: insight.AIInsightTitle,
		Barcode:     insight.Barcode,
		Summary:     insight.QuickVerdict,
	}
	if insight.Barcode != "" {
		if p := s.offClient.FetchByBarcode(ctx, insight.Barcode); p.Found {
			food.ProductName = p.ProductName
			food.Ingredients = p.Ingredients()
		}
	}
	if err := s.store.SetFoodContext(ctx, sessionID, food); err != nil {
		return nil, fmt.Errorf("set food context: %w", err)
	}

	analysis := renderInsight(insight)
	if err := s.appendExchange(ctx, sessionID, imageMessage, analysis); err != nil {
		return nil, err
	}

	return &domain.AnalysisResponse{
		Success:   true,
		SessionID: sessionID,
		Analysis:  analysis,
		Insight:   insight,
	}, nil
}

func (s *Service) resolveSession(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		session, err := s.store.CreateSession(ctx)
		if err != nil {
			return "", fmt.Errorf("create session: %w", err)
		}
		return session.ID, nil
	}
	if _, err := s.store.GetOrCreateSession(ctx, sessionID); err != nil {
		return "", fmt.Errorf("resolve session: %w", err)
	}
	return sessionID, nil
}

// inferTurnContext runs soft-context inference and the once-per-session
// intent inference for an analysis turn, persisting both. It returns the
// intent profile to ground the analysis prompt on.
func (s *Service) inferTurnContext(ctx context.Context, sessionID, message string) (*domain.IntentProfile, error) {
	history, err := s.store.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	contextMap, err := s.store.GetContext(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get context: %w", err)
	}
	recent := lastMessages(history, recentHistoryWindow)

	fresh := s.softInf.Infer(ctx, message, recent, contextMap)
	merged := fresh
	if prior, ok := inference.SoftFromContextMap(contextMap); ok {
		merged = inference.MergeSoft(prior, fresh)
	}
	if err := s.store.MergeContext(ctx, sessionID, merged.AsContextMap()); err != nil {
		return nil, fmt.Errorf("merge context: %w", err)
	}

	intent, intentState, err := s.store.GetIntent(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get intent: %w", err)
	}
	if intentState == domain.IntentInferred {
		return intent, nil
	}
	freshIntent := s.intentInf.Infer(ctx, message, nil, recent, contextMap)
	if intent != nil {
		freshIntent = inference.MergeIntent(*intent, freshIntent)
	}
	if err := s.store.SetIntent(ctx, sessionID, &freshIntent, domain.IntentInferred); err != nil {
		return nil, fmt.Errorf("set intent: %w", err)
	}
	return &freshIntent, nil
}

// generateInsight calls the reasoning collaborator for a structured card,
// retrying once with a stricter prompt before falling back. Total function.
func (s *Service) generateInsight(ctx context.Context, prompt, system string, ingredients []string) *domain.InsightCard {
	raw, err := s.llmClient.GenerateText(ctx, prompt, system, float32(s.config.LLMTemperature))
	if err != nil {
		s.logger.Warn("insight generation failed, using fallback", zap.Error(err))
		return fallbackInsight(ingredients)
	}

	var card domain.InsightCard
	if err := jsonguard.Extract(raw, &card); err == nil {
		return &card
	}

	s.logger.Warn("insight response unparsable, retrying with stricter prompt")
	raw, err = s.llmClient.GenerateText(ctx, prompt+strictJSONSuffix, system, 0.1)
	if err == nil {
		if err := jsonguard.Extract(raw, &card); err == nil {
			return &card
		}
	}
	return fallbackInsight(ingredients)
}

func (s *Service) generateVisionInsight(ctx context.Context, image []byte, mimeType string) *domain.InsightCard {
	raw, err := s.llmClient.GenerateVision(ctx, visionPrompt, insightSystemPrompt, image, mimeType)
	if err != nil {
		s.logger.Warn("vision analysis failed, using fallback", zap.Error(err))
		return fallbackInsight(nil)
	}
	// An empty extraction means the image showed nothing readable, which is
	// an answer rather than an error.
	if strings.TrimSpace(raw) == "" {
		card := fallbackInsight(nil)
		card.Uncertainty = "No readable ingredients were found in the image."
		return card
	}

	var card domain.InsightCard
	if err := jsonguard.Extract(raw, &card); err != nil {
		s.logger.Warn("vision response unparsable, using fallback", zap.Error(err))
		return fallbackInsight(nil)
	}
	return &card
}

func (s *Service) appendExchange(ctx context.Context, sessionID, userText, assistantText string) error {
	if err := s.store.AppendMessage(ctx, sessionID, domain.RoleUser, userText); err != nil {
		return fmt.Errorf("append user message: %w", err)
	}
	if err := s.store.AppendMessage(ctx, sessionID, domain.RoleAssistant, assistantText); err != nil {
		return fmt.Errorf("append assistant message: %w", err)
	}
	return nil
}

// fallbackInsight is the answer when the reasoning collaborator is
// unavailable or unparsable twice.
func fallbackInsight(ingredients []string) *domain.InsightCard {
	why := []string{"A detailed automatic analysis was not possible right now."}
	if len(ingredients) > 0 {
		why = append(why, fmt.Sprintf("Extracted ingredients: %s.", strings.Join(firstN(ingredients, 5), ", ")))
	}
	return &domain.InsightCard{
		AIInsightTitle: "Analysis unavailable",
		QuickVerdict:   "I couldn't fully analyze this product right now.",
		WhyThisMatters: why,
		TradeOffs: domain.TradeOffs{
			Positives: []string{"You can still check the label yourself"},
			Negatives: []string{"No automatic assessment available"},
		},
		Uncertainty: "Analysis system temporarily unavailable.",
		AIAdvice:    "Please try again in a moment.",
	}
}

// renderInsight turns a structured card into the conversational summary
// stored in history.
func renderInsight(card *domain.InsightCard) string {
	var parts []string
	if card.QuickVerdict != "" {
		parts = append(parts, card.QuickVerdict)
	}
	if card.AIAdvice != "" {
		parts = append(parts, card.AIAdvice)
	}
	if len(parts) == 0 {
		return fallbackReply
	}
	return strings.Join(parts, " ")
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
