// Package inference wraps the reasoning collaborator to produce uncertain
// "soft" context and structured intent profiles, and defines the merge
// policies that combine them across turns.
package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nutriai/nutriai/internal/adapter/llm"
	"github.com/nutriai/nutriai/internal/domain"
	"github.com/nutriai/nutriai/internal/jsonguard"
)

// GenericHedge is the fallback hedge phrase. Soft context is never presented
// unhedged, even when the model forgot to hedge.
const GenericHedge = "I'm not fully sure yet, but here's my best read on what you might need."

const softSystemInstruction = "You are an expert at softly inferring what users care about in nutrition conversations."

const softPromptTemplate = `Analyze this conversation to softly infer what the user might care about.
Detect the user's language preference from their messages.
Output ONLY valid JSON (no markdown, no code blocks):

{
  "likely_goal": "health_check|quick_decision|child_safety|dietary_concern|curiosity",
  "possible_context": "shopping|home|parent|health_conscious",
  "soft_concerns": ["concern1", "concern2"],
  "confidence_level": "uncertain|somewhat_sure|fairly_confident",
  "hedge_language": "Gentle guess about user's situation",
  "detected_language": "english|hindi|hinglish"
}

Current message: %q
Recent conversation: %s
Existing context: %s

Rules:
- Make soft guesses, don't be certain
- Use hedge language
- Keep concerns list short (max 3)
- Detect language from user's writing style
- Output ONLY JSON, no explanations
`

// DefaultSoftContext is the steady-state answer when inference fails.
// Uncertainty is an expected state here, not an error.
func DefaultSoftContext() domain.SoftContext {
	return domain.SoftContext{
		LikelyGoal:      "curiosity",
		SoftConcerns:    []string{},
		ConfidenceLevel: domain.ConfidenceUncertain,
		HedgeLanguage:   GenericHedge,
	}
}

// SoftInferencer produces soft context via the reasoning collaborator.
type SoftInferencer struct {
	llm    llm.Client
	logger *zap.Logger
}

// NewSoftInferencer creates a soft context inferencer.
func NewSoftInferencer(client llm.Client, logger *zap.Logger) *SoftInferencer {
	return &SoftInferencer{llm: client, logger: logger}
}

// Infer produces a soft context for the message. It is a total function:
// any collaborator failure or unparsable output yields the default context.
func (s *SoftInferencer) Infer(ctx context.Context, message string, recentHistory []domain.Message, existing map[string]interface{}) domain.SoftContext {
	prompt := fmt.Sprintf(softPromptTemplate,
		message, formatHistory(recentHistory), formatContext(existing))

	raw, err := s.llm.GenerateText(ctx, prompt, softSystemInstruction, 0.4)
	if err != nil {
		s.logger.Warn("soft context inference failed, using default", zap.Error(err))
		return DefaultSoftContext()
	}

	var sc domain.SoftContext
	if err := jsonguard.Extract(raw, &sc); err != nil {
		s.logger.Warn("soft context response unparsable, using default", zap.Error(err))
		return DefaultSoftContext()
	}
	return normalizeSoft(sc)
}

func normalizeSoft(sc domain.SoftContext) domain.SoftContext {
	if sc.ConfidenceLevel.Rank() == 0 {
		sc.ConfidenceLevel = domain.ConfidenceUncertain
	}
	if sc.LikelyGoal == "" {
		sc.LikelyGoal = "curiosity"
	}
	if sc.HedgeLanguage == "" {
		sc.HedgeLanguage = GenericHedge
	}
	if len(sc.SoftConcerns) > domain.MaxSoftConcerns {
		sc.SoftConcerns = sc.SoftConcerns[:domain.MaxSoftConcerns]
	}
	return sc
}

// MergeSoft combines a prior soft context with a freshly inferred one.
// A more confident new read replaces the old wholesale (with a hedge
// backfilled if missing); an equally or less confident one keeps the old
// read but accumulates its concerns. Confidence never goes down, so context
// cannot flap between turns.
func MergeSoft(old, new domain.SoftContext) domain.SoftContext {
	if new.ConfidenceLevel.Rank() > old.ConfidenceLevel.Rank() {
		merged := new
		if merged.HedgeLanguage == "" {
			merged.HedgeLanguage = GenericHedge
		}
		if len(merged.SoftConcerns) > domain.MaxSoftConcerns {
			merged.SoftConcerns = merged.SoftConcerns[:domain.MaxSoftConcerns]
		}
		return merged
	}

	merged := old
	merged.SoftConcerns = unionCapped(old.SoftConcerns, new.SoftConcerns, domain.MaxSoftConcerns)
	return merged
}

// SoftFromContextMap reconstructs the soft context previously flattened
// into a session's context mapping. ok is false when no soft context was
// ever stored.
func SoftFromContextMap(m map[string]interface{}) (domain.SoftContext, bool) {
	if len(m) == 0 {
		return domain.SoftContext{}, false
	}
	if _, present := m["confidence_level"]; !present {
		return domain.SoftContext{}, false
	}

	var sc domain.SoftContext
	sc.LikelyGoal, _ = m["likely_goal"].(string)
	sc.PossibleContext, _ = m["possible_context"].(string)
	sc.HedgeLanguage, _ = m["hedge_language"].(string)
	sc.DetectedLanguage, _ = m["detected_language"].(string)
	if lvl, ok := m["confidence_level"].(string); ok {
		sc.ConfidenceLevel = domain.ConfidenceLevel(lvl)
	}
	switch concerns := m["soft_concerns"].(type) {
	case []string:
		sc.SoftConcerns = append(sc.SoftConcerns, concerns...)
	case []interface{}:
		for _, c := range concerns {
			if s, ok := c.(string); ok {
				sc.SoftConcerns = append(sc.SoftConcerns, s)
			}
		}
	}
	if sc.ConfidenceLevel.Rank() == 0 {
		sc.ConfidenceLevel = domain.ConfidenceUncertain
	}
	return sc, true
}

func unionCapped(a, b []string, limit int) []string {
	out := make([]string, 0, limit)
	seen := map[string]bool{}
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

func formatHistory(history []domain.Message) string {
	if len(history) == 0 {
		return "none"
	}
	var b strings.Builder
	for i, m := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s", m.Role, m.Content)
	}
	return b.String()
}

func formatContext(existing map[string]interface{}) string {
	if len(existing) == 0 {
		return "none"
	}
	data, err := json.Marshal(existing)
	if err != nil {
		return "none"
	}
	return string(data)
}
