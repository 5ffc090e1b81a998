package domain

// IntentConfidence is the confidence attached to an intent profile.
type IntentConfidence string

const (
	IntentConfidenceLow    IntentConfidence = "low"
	IntentConfidenceMedium IntentConfidence = "medium"
	IntentConfidenceHigh   IntentConfidence = "high"
)

// Rank returns the ordering position of a confidence value. Unknown values
// rank lowest so a malformed profile can never outrank a real one.
func (c IntentConfidence) Rank() int {
	switch c {
	case IntentConfidenceLow:
		return 1
	case IntentConfidenceMedium:
		return 2
	case IntentConfidenceHigh:
		return 3
	}
	return 0
}

// IntentProfile is a structured (non-hedged) record of inferred user goal,
// dietary style, allergies, audience and confidence.
type IntentProfile struct {
	UserGoal           string           `json:"user_goal,omitempty"`
	DietaryStyle       string           `json:"dietary_style,omitempty"`
	AllergyRisks       []string         `json:"allergy_risks,omitempty"`
	Audience           string           `json:"audience,omitempty"`
	TopConcerns        []string         `json:"top_concerns,omitempty"`
	Confidence         IntentConfidence `json:"confidence"`
	ClarifyingQuestion string           `json:"clarifying_question,omitempty"`
}
