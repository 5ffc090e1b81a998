package domain

// ConfidenceLevel is the explicitly uncertain confidence scale used by soft
// context inference. It is deliberately distinct from IntentConfidence: soft
// context is always hedged.
type ConfidenceLevel string

const (
	ConfidenceUncertain       ConfidenceLevel = "uncertain"
	ConfidenceSomewhatSure    ConfidenceLevel = "somewhat_sure"
	ConfidenceFairlyConfident ConfidenceLevel = "fairly_confident"
)

// Rank defines the total order uncertain < somewhat_sure < fairly_confident.
// Unknown values rank below uncertain.
func (c ConfidenceLevel) Rank() int {
	switch c {
	case ConfidenceUncertain:
		return 1
	case ConfidenceSomewhatSure:
		return 2
	case ConfidenceFairlyConfident:
		return 3
	}
	return 0
}

// MaxSoftConcerns bounds soft-concern accumulation across turns.
const MaxSoftConcerns = 3

// SoftContext is an explicitly uncertain inference about what the user might
// care about, carried across turns and merged rather than replaced.
type SoftContext struct {
	LikelyGoal       string          `json:"likely_goal,omitempty"`
	PossibleContext  string          `json:"possible_context,omitempty"`
	SoftConcerns     []string        `json:"soft_concerns,omitempty"`
	ConfidenceLevel  ConfidenceLevel `json:"confidence_level"`
	HedgeLanguage    string          `json:"hedge_language,omitempty"`
	DetectedLanguage string          `json:"detected_language,omitempty"`
}

// AsContextMap flattens a soft context into the session's context mapping.
// Every key is emitted even when empty: the store merges shallowly, so an
// omitted key would leave a stale value from an earlier flattening in place.
func (s SoftContext) AsContextMap() map[string]interface{} {
	concerns := s.SoftConcerns
	if concerns == nil {
		concerns = []string{}
	}
	return map[string]interface{}{
		"likely_goal":       s.LikelyGoal,
		"possible_context":  s.PossibleContext,
		"soft_concerns":     concerns,
		"confidence_level":  string(s.ConfidenceLevel),
		"hedge_language":    s.HedgeLanguage,
		"detected_language": s.DetectedLanguage,
	}
}
