package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockClient is a deterministic Client used in MOCK mode and in tests. It
// inspects the prompt and system instruction to decide which shape of
// answer the caller expects.
type MockClient struct {
	// FailAll makes every call return an error, for fallback-path tests.
	FailAll bool
}

// NewMockClient creates a new mock reasoning client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

const (
	mockSoftContextJSON = `{
  "likely_goal": "health_check",
  "possible_context": "home",
  "soft_concerns": ["sugar"],
  "confidence_level": "somewhat_sure",
  "hedge_language": "It sounds like you might be checking this for general health.",
  "detected_language": "english"
}`

	mockIntentJSON = `{
  "user_goal": "health_check",
  "dietary_style": "",
  "allergy_risks": [],
  "audience": "self",
  "top_concerns": ["sugar"],
  "confidence": "medium"
}`

	mockInsightJSON = `{
  "ai_insight_title": "Packaged snack, quick read",
  "quick_verdict": "Fine occasionally, not an everyday pick.",
  "why_this_matters": ["Refined flour and sugar are the first ingredients."],
  "trade_offs": {
    "positives": ["Convenient and shelf-stable"],
    "negatives": ["High in added sugar"]
  },
  "uncertainty": "Exact quantities are not visible from the label.",
  "ai_advice": "Enjoy it as a treat rather than a staple."
}`
)

// respond keys off the expected answer shape. The JSON schema the caller
// asked for may live in either the prompt or the system instruction.
func (m *MockClient) respond(prompt, systemInstruction string) string {
	full := prompt + "\n" + systemInstruction
	switch {
	// user_goal before likely_goal: an intent prompt can quote stored soft
	// context, which itself contains a likely_goal key.
	case strings.Contains(full, `"user_goal"`):
		return mockIntentJSON
	case strings.Contains(full, `"likely_goal"`):
		return mockSoftContextJSON
	case strings.Contains(full, `"ai_insight_title"`):
		return mockInsightJSON
	}
	return fmt.Sprintf("[MOCK] Here is a considered answer to: %s", truncate(prompt, 80))
}

func (m *MockClient) GenerateText(ctx context.Context, prompt, systemInstruction string, temperature float32) (string, error) {
	if m.FailAll {
		return "", fmt.Errorf("mock failure")
	}
	return m.respond(prompt, systemInstruction), nil
}

func (m *MockClient) GenerateStream(ctx context.Context, prompt, systemInstruction string, temperature float32, callback StreamCallback) (string, error) {
	if m.FailAll {
		return "", fmt.Errorf("mock failure")
	}
	text := m.respond(prompt, systemInstruction)
	var full strings.Builder
	for _, chunk := range splitIntoChunks(text, 10) {
		select {
		case <-ctx.Done():
			return full.String(), ctx.Err()
		default:
		}
		full.WriteString(chunk)
		if err := callback(chunk); err != nil {
			return full.String(), err
		}
	}
	return full.String(), nil
}

func (m *MockClient) GenerateVision(ctx context.Context, prompt, systemInstruction string, image []byte, mimeType string) (string, error) {
	if m.FailAll {
		return "", fmt.Errorf("mock failure")
	}
	if len(image) == 0 {
		return "", nil
	}
	return m.respond(prompt, systemInstruction), nil
}

func splitIntoChunks(s string, chunkSize int) []string {
	if len(s) == 0 {
		return []string{""}
	}
	var chunks []string
	for i := 0; i < len(s); i += chunkSize {
		end := i + chunkSize
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, s[i:end])
	}
	return chunks
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
