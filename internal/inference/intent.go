package inference

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nutriai/nutriai/internal/adapter/llm"
	"github.com/nutriai/nutriai/internal/domain"
	"github.com/nutriai/nutriai/internal/jsonguard"
)

const intentSystemInstruction = "You are an expert at inferring user intent from nutrition conversations."

const intentPromptTemplate = `Infer the user's structured intent from this nutrition conversation.
Output ONLY valid JSON (no markdown, no code blocks):

{
  "user_goal": "weight_loss|health_check|allergy_safety|diabetic_management|child_nutrition|curiosity",
  "dietary_style": "vegetarian|vegan|keto|diabetic|none",
  "allergy_risks": ["allergen1"],
  "audience": "self|kid|elderly|pregnant|athlete",
  "top_concerns": ["sodium", "sugar"],
  "confidence": "low|medium|high",
  "clarifying_question": "One short question if more clarity is needed, else omit"
}

Current message: %q
Recent conversation: %s
Ingredients mentioned: %s
Existing context: %s

Rules:
- Only include allergy_risks you have actual evidence for
- Use "low" confidence freely; do not overclaim
- Output ONLY JSON, no explanations
`

const strictJSONSuffix = "\n\nIMPORTANT: Return ONLY valid JSON. No explanations or markdown."

// DefaultIntent is the fallback profile when intent inference fails: low
// confidence with a clarifying question, never an error.
func DefaultIntent() domain.IntentProfile {
	return domain.IntentProfile{
		Confidence:         domain.IntentConfidenceLow,
		ClarifyingQuestion: "Could you tell me more about what you're looking for?",
	}
}

// IntentInferencer produces structured intent profiles via the reasoning
// collaborator.
type IntentInferencer struct {
	llm    llm.Client
	logger *zap.Logger
}

// NewIntentInferencer creates an intent inferencer.
func NewIntentInferencer(client llm.Client, logger *zap.Logger) *IntentInferencer {
	return &IntentInferencer{llm: client, logger: logger}
}

// Infer produces an intent profile for the message. Total function: one
// retry with a stricter prompt on parse failure, then the default profile.
func (s *IntentInferencer) Infer(ctx context.Context, message string, ingredients []string, recentHistory []domain.Message, existing map[string]interface{}) domain.IntentProfile {
	ingredientsStr := "none"
	if len(ingredients) > 0 {
		ingredientsStr = strings.Join(ingredients, ", ")
	}
	prompt := fmt.Sprintf(intentPromptTemplate,
		message, formatHistory(recentHistory), ingredientsStr, formatContext(existing))

	raw, err := s.llm.GenerateText(ctx, prompt, intentSystemInstruction, 0.3)
	if err != nil {
		s.logger.Warn("intent inference failed, using default", zap.Error(err))
		return DefaultIntent()
	}

	var profile domain.IntentProfile
	if err := jsonguard.Extract(raw, &profile); err != nil {
		s.logger.Warn("intent response unparsable, retrying with stricter prompt", zap.Error(err))
		raw, err = s.llm.GenerateText(ctx, prompt+strictJSONSuffix, intentSystemInstruction, 0.1)
		if err != nil {
			return DefaultIntent()
		}
		if err := jsonguard.Extract(raw, &profile); err != nil {
			return DefaultIntent()
		}
	}
	return normalizeIntent(profile)
}

func normalizeIntent(p domain.IntentProfile) domain.IntentProfile {
	if p.Confidence.Rank() == 0 {
		p.Confidence = domain.IntentConfidenceLow
	}
	return p
}

// MergeIntent combines a stored intent profile with a newly inferred one.
//
// Settled fields (goal, dietary style) are only overwritten by a new read
// confident enough to earn it. Allergy risks and concerns accumulate and
// never shrink within a session. Audience follows the newest explicit
// signal. Confidence is sticky upward, and the clarifying question survives
// only while merged confidence stays low.
func MergeIntent(old, new domain.IntentProfile) domain.IntentProfile {
	old = normalizeIntent(old)
	new = normalizeIntent(new)

	merged := domain.IntentProfile{
		UserGoal:     old.UserGoal,
		DietaryStyle: old.DietaryStyle,
	}

	overwrite := new.Confidence == domain.IntentConfidenceHigh ||
		(new.Confidence == domain.IntentConfidenceMedium && old.Confidence == domain.IntentConfidenceLow)
	if overwrite {
		if new.UserGoal != "" {
			merged.UserGoal = new.UserGoal
		}
		if new.DietaryStyle != "" {
			merged.DietaryStyle = new.DietaryStyle
		}
	}

	merged.AllergyRisks = union(old.AllergyRisks, new.AllergyRisks)
	merged.TopConcerns = union(old.TopConcerns, new.TopConcerns)

	if new.Audience != "" {
		merged.Audience = new.Audience
	} else {
		merged.Audience = old.Audience
	}

	switch {
	case old.Confidence == domain.IntentConfidenceHigh || new.Confidence == domain.IntentConfidenceHigh:
		merged.Confidence = domain.IntentConfidenceHigh
	default:
		merged.Confidence = new.Confidence
	}

	if merged.Confidence == domain.IntentConfidenceLow {
		merged.ClarifyingQuestion = new.ClarifyingQuestion
	}

	return merged
}

// union merges two lists preserving first-seen order, no cap.
func union(a, b []string) []string {
	return unionCapped(a, b, len(a)+len(b)+1)
}
