package inference

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/nutriai/nutriai/internal/adapter/llm"
	"github.com/nutriai/nutriai/internal/domain"
)

// scriptedClient returns canned responses in order, for retry-path tests.
type scriptedClient struct {
	responses []string
	calls     int
}

func (s *scriptedClient) GenerateText(ctx context.Context, prompt, systemInstruction string, temperature float32) (string, error) {
	if s.calls >= len(s.responses) {
		return "", fmt.Errorf("no scripted response for call %d", s.calls)
	}
	r := s.responses[s.calls]
	s.calls++
	return r, nil
}

func (s *scriptedClient) GenerateStream(ctx context.Context, prompt, systemInstruction string, temperature float32, callback llm.StreamCallback) (string, error) {
	text, err := s.GenerateText(ctx, prompt, systemInstruction, temperature)
	if err != nil {
		return "", err
	}
	return text, callback(text)
}

func (s *scriptedClient) GenerateVision(ctx context.Context, prompt, systemInstruction string, image []byte, mimeType string) (string, error) {
	return s.GenerateText(ctx, prompt, systemInstruction, 0.2)
}

func TestIntentInfer(t *testing.T) {
	inf := NewIntentInferencer(llm.NewMockClient(), zap.NewNop())

	profile := inf.Infer(context.Background(), "I want to lose weight", nil, nil, nil)
	if profile.UserGoal != "health_check" {
		t.Errorf("user_goal = %q, want health_check", profile.UserGoal)
	}
	if profile.Confidence != domain.IntentConfidenceMedium {
		t.Errorf("confidence = %q, want medium", profile.Confidence)
	}
}

func TestIntentInferFallsBackOnFailure(t *testing.T) {
	inf := NewIntentInferencer(&llm.MockClient{FailAll: true}, zap.NewNop())

	profile := inf.Infer(context.Background(), "hello", nil, nil, nil)
	if !reflect.DeepEqual(profile, DefaultIntent()) {
		t.Errorf("expected default intent, got %+v", profile)
	}
	if profile.ClarifyingQuestion == "" {
		t.Error("default intent should carry a clarifying question")
	}
}

func TestIntentInferRetriesOnGarbage(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"Sure! Let me think about that for you.",
		`{"user_goal": "allergy_safety", "allergy_risks": ["peanuts"], "confidence": "high"}`,
	}}
	inf := NewIntentInferencer(client, zap.NewNop())

	profile := inf.Infer(context.Background(), "is this safe with my peanut allergy?", nil, nil, nil)
	if client.calls != 2 {
		t.Fatalf("calls = %d, want retry", client.calls)
	}
	if profile.UserGoal != "allergy_safety" {
		t.Errorf("user_goal = %q, want allergy_safety", profile.UserGoal)
	}
	if profile.Confidence != domain.IntentConfidenceHigh {
		t.Errorf("confidence = %q, want high", profile.Confidence)
	}
}

func TestIntentInferGarbageTwiceYieldsDefault(t *testing.T) {
	client := &scriptedClient{responses: []string{"not json", "still not json"}}
	inf := NewIntentInferencer(client, zap.NewNop())

	profile := inf.Infer(context.Background(), "hmm", nil, nil, nil)
	if !reflect.DeepEqual(profile, DefaultIntent()) {
		t.Errorf("expected default intent, got %+v", profile)
	}
}

func TestMergeIntentMediumOverLow(t *testing.T) {
	old := domain.IntentProfile{
		UserGoal:           "curiosity",
		AllergyRisks:       []string{"peanuts"},
		Confidence:         domain.IntentConfidenceLow,
		ClarifyingQuestion: "What matters most to you here?",
	}
	new := domain.IntentProfile{
		UserGoal:     "allergy_safety",
		AllergyRisks: []string{"dairy"},
		Confidence:   domain.IntentConfidenceMedium,
	}

	merged := MergeIntent(old, new)
	if merged.UserGoal != "allergy_safety" {
		t.Errorf("user_goal = %q, want new goal (medium over low)", merged.UserGoal)
	}
	wantRisks := []string{"peanuts", "dairy"}
	if !reflect.DeepEqual(merged.AllergyRisks, wantRisks) {
		t.Errorf("allergy_risks = %v, want %v", merged.AllergyRisks, wantRisks)
	}
	if merged.Confidence != domain.IntentConfidenceMedium {
		t.Errorf("confidence = %q, want medium", merged.Confidence)
	}
	if merged.ClarifyingQuestion != "" {
		t.Errorf("clarifying question should be dropped once confidence rises, got %q", merged.ClarifyingQuestion)
	}
}

func TestMergeIntentMediumDoesNotOverwriteMedium(t *testing.T) {
	old := domain.IntentProfile{
		UserGoal:   "weight_loss",
		Confidence: domain.IntentConfidenceMedium,
	}
	new := domain.IntentProfile{
		UserGoal:   "curiosity",
		Confidence: domain.IntentConfidenceMedium,
	}

	merged := MergeIntent(old, new)
	if merged.UserGoal != "weight_loss" {
		t.Errorf("user_goal = %q, equal confidence must keep the settled goal", merged.UserGoal)
	}
}

func TestMergeIntentHighAlwaysOverwrites(t *testing.T) {
	old := domain.IntentProfile{
		UserGoal:     "curiosity",
		DietaryStyle: "none",
		Confidence:   domain.IntentConfidenceHigh,
	}
	new := domain.IntentProfile{
		UserGoal:     "diabetic_management",
		DietaryStyle: "diabetic",
		Confidence:   domain.IntentConfidenceHigh,
	}

	merged := MergeIntent(old, new)
	if merged.UserGoal != "diabetic_management" || merged.DietaryStyle != "diabetic" {
		t.Errorf("high confidence read must overwrite, got %+v", merged)
	}
	if merged.Confidence != domain.IntentConfidenceHigh {
		t.Errorf("confidence = %q, want high", merged.Confidence)
	}
}

func TestMergeIntentEmptyFieldsNeverErase(t *testing.T) {
	old := domain.IntentProfile{
		UserGoal:     "allergy_safety",
		DietaryStyle: "vegan",
		Audience:     "kid",
		Confidence:   domain.IntentConfidenceLow,
	}
	new := domain.IntentProfile{
		Confidence: domain.IntentConfidenceHigh,
	}

	merged := MergeIntent(old, new)
	if merged.UserGoal != "allergy_safety" || merged.DietaryStyle != "vegan" {
		t.Errorf("empty new fields must not erase settled ones, got %+v", merged)
	}
	if merged.Audience != "kid" {
		t.Errorf("audience = %q, want old audience kept", merged.Audience)
	}
}

func TestMergeIntentAllergyRisksNeverShrink(t *testing.T) {
	old := domain.IntentProfile{
		AllergyRisks: []string{"peanuts", "soy"},
		Confidence:   domain.IntentConfidenceHigh,
	}
	new := domain.IntentProfile{
		AllergyRisks: []string{"soy", "gluten"},
		Confidence:   domain.IntentConfidenceLow,
	}

	merged := MergeIntent(old, new)
	want := []string{"peanuts", "soy", "gluten"}
	if !reflect.DeepEqual(merged.AllergyRisks, want) {
		t.Errorf("allergy_risks = %v, want %v", merged.AllergyRisks, want)
	}
}

func TestMergeIntentConfidenceHighIsSticky(t *testing.T) {
	old := domain.IntentProfile{Confidence: domain.IntentConfidenceHigh}
	new := domain.IntentProfile{Confidence: domain.IntentConfidenceLow, ClarifyingQuestion: "q?"}

	merged := MergeIntent(old, new)
	if merged.Confidence != domain.IntentConfidenceHigh {
		t.Errorf("confidence = %q, high must be sticky", merged.Confidence)
	}
	if merged.ClarifyingQuestion != "" {
		t.Errorf("no clarifying question at high confidence, got %q", merged.ClarifyingQuestion)
	}
}
