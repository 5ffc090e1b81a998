package service

import (
	"fmt"
	"strings"

	"github.com/nutriai/nutriai/internal/domain"
	"github.com/nutriai/nutriai/internal/kb"
)

const chatSystemPrompt = "You are NutriAI, a helpful nutrition assistant. Provide accurate, helpful information about food, nutrition, and healthy eating. Respond in the language the user writes in."

const insightSystemPrompt = `You are an AI-native food and health co-pilot.

Your role is NOT to summarize labels or sound neutral. Your role is to help
the user understand what a food product means for them at the moment of
decision. Reason, infer intent, and explain consequences.

If a specific ingredient or additive (for example MSG, palm oil, emulsifiers,
preservatives, artificial colors, high fructose corn syrup) directly explains
taste intensity, processing level, overeating risk, or a long-term health
concern, mention it explicitly by name. Do NOT replace it with vague terms
like "processed food".

Return ONLY valid JSON. Do NOT include explanations, markdown, or extra text.

{
  "ai_insight_title": "Brief phrase describing this product",
  "quick_verdict": "One clear, human sentence - calm and direct",
  "why_this_matters": [
    "Explain consequence 1 - mention specific ingredients when relevant",
    "Explain consequence 2 - focus on health impact"
  ],
  "trade_offs": {
    "positives": ["At least 1 positive aspect"],
    "negatives": ["At least 1 negative - be specific about ingredients"]
  },
  "uncertainty": "Be honest about what varies or is unclear",
  "ai_advice": "One calm, friendly sentence - help them decide"
}

Style: simple everyday language, no medical diagnosis, no fear-mongering,
no regulatory jargon. The user should read this in under 10 seconds and feel
more confident about their decision.`

const visionPrompt = `Analyze this food product image and provide a structured JSON response.

When you see the image:
1. Identify the product (name, brand, type)
2. Read visible ingredients if shown
3. Note any nutrition information visible
4. Look for health claims, warnings, or allergens
5. Detect barcode if visible (8-13 digits)

Then output ONLY this JSON format (no markdown, no extra text):
{
  "ai_insight_title": "Brief product description",
  "quick_verdict": "One sentence summary",
  "why_this_matters": ["Key health impact 1", "Key health impact 2"],
  "trade_offs": {
    "positives": ["Good aspect 1"],
    "negatives": ["Concern 1"]
  },
  "uncertainty": "What's unclear or variable",
  "ai_advice": "One friendly sentence of advice",
  "barcode": "Detected barcode number (optional)"
}

Focus on decision support, not data dumps. Be concise, honest, and helpful.`

// fallbackReply is the user-facing text when the reasoning collaborator is
// unavailable. The conversational channel never shows raw errors.
const fallbackReply = "I'm having trouble thinking that through right now. Could you try asking again in a moment?"

// confidenceQualifier phrases a KB confidence level for use in a prompt.
func confidenceQualifier(confidence string) string {
	switch strings.ToLower(confidence) {
	case "high":
		return "with high confidence"
	case "medium":
		return "with moderate confidence"
	case "low":
		return "with limited confidence"
	}
	return ""
}

// buildChatPrompt assembles the generation prompt for a conversational turn.
// history is the conversation *before* the current message; the current
// message is always the final "user:" line.
func buildChatPrompt(message string, history []domain.Message, sc domain.SoftContext, intent *domain.IntentProfile, food *domain.FoodContext, useFoodContext bool) string {
	var b strings.Builder

	if useFoodContext && food != nil {
		b.WriteString("Product under discussion: ")
		b.WriteString(food.ProductName)
		if food.Barcode != "" {
			fmt.Fprintf(&b, " (barcode %s)", food.Barcode)
		}
		b.WriteString("\n")
		if len(food.Ingredients) > 0 {
			fmt.Fprintf(&b, "Known ingredients: %s\n", strings.Join(food.Ingredients, ", "))
		}
		if food.Summary != "" {
			fmt.Fprintf(&b, "Earlier analysis: %s\n", food.Summary)
		}
		b.WriteString("\n")
	}

	if block := softContextBlock(sc); block != "" {
		b.WriteString(block)
		b.WriteString("\n")
	}

	if block := intentBlock(intent); block != "" {
		b.WriteString(block)
		b.WriteString("\n")
	}

	if len(history) > 0 {
		b.WriteString("Conversation history:\n")
		for _, msg := range history {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "user: %s", message)
	return b.String()
}

// softContextBlock phrases the soft context as an explicitly hedged hint.
// It is never presented as fact; the hedge travels with it.
func softContextBlock(sc domain.SoftContext) string {
	if sc.LikelyGoal == "" && len(sc.SoftConcerns) == 0 {
		return ""
	}
	var parts []string
	if sc.LikelyGoal != "" {
		parts = append(parts, fmt.Sprintf("likely goal: %s", sc.LikelyGoal))
	}
	if sc.PossibleContext != "" {
		parts = append(parts, fmt.Sprintf("possible situation: %s", sc.PossibleContext))
	}
	if len(sc.SoftConcerns) > 0 {
		parts = append(parts, fmt.Sprintf("possible concerns: %s", strings.Join(sc.SoftConcerns, ", ")))
	}
	if sc.DetectedLanguage != "" {
		parts = append(parts, fmt.Sprintf("detected language: %s", sc.DetectedLanguage))
	}
	return fmt.Sprintf("Soft read on the user (%s, %s): %s\n",
		sc.ConfidenceLevel, sc.HedgeLanguage, strings.Join(parts, "; "))
}

func intentBlock(intent *domain.IntentProfile) string {
	if intent == nil {
		return ""
	}
	var parts []string
	if intent.UserGoal != "" {
		parts = append(parts, fmt.Sprintf("Goal: %s", intent.UserGoal))
	}
	if intent.DietaryStyle != "" {
		parts = append(parts, fmt.Sprintf("Diet: %s", intent.DietaryStyle))
	}
	if len(intent.AllergyRisks) > 0 {
		parts = append(parts, fmt.Sprintf("Allergies: %s", strings.Join(intent.AllergyRisks, ", ")))
	}
	if intent.Audience != "" {
		parts = append(parts, fmt.Sprintf("For: %s", intent.Audience))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("User context: %s\n", strings.Join(parts, " | "))
}

// buildInsightPrompt assembles the structured-analysis prompt from extracted
// ingredients, KB matches and the stored intent.
func buildInsightPrompt(rawText string, ingredients []string, kbMatches []kb.Entry, intent *domain.IntentProfile) string {
	var b strings.Builder
	b.WriteString("Analyze this food product for the user.\n\n")

	if len(ingredients) > 0 {
		shown := ingredients
		if len(shown) > 10 {
			shown = shown[:10]
		}
		fmt.Fprintf(&b, "Ingredients (%d): %s\n", len(ingredients), strings.Join(shown, ", "))
		if len(ingredients) > 10 {
			fmt.Fprintf(&b, "... and %d more\n", len(ingredients)-10)
		}
	} else if rawText != "" {
		fmt.Fprintf(&b, "Label text: %s\n", rawText)
	}

	if len(kbMatches) > 0 {
		var info []string
		for _, m := range kbMatches {
			info = append(info, fmt.Sprintf("%s: %s (%s)", m.Name, m.WhyItMatters, confidenceQualifier(m.Confidence)))
		}
		fmt.Fprintf(&b, "KB knowledge: %s\n", strings.Join(info, " | "))
	}

	if block := intentBlock(intent); block != "" {
		b.WriteString(block)
	}

	return b.String()
}
