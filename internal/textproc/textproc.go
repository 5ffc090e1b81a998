// Package textproc normalizes pasted label text and extracts ingredient
// lists from it.
package textproc

import (
	"errors"
	"regexp"
	"strings"
)

// MaxInputLen bounds pasted label text.
const MaxInputLen = 5000

var (
	// ErrEmptyInput is returned for blank label text.
	ErrEmptyInput = errors.New("text input cannot be empty")
	// ErrInputTooLong is returned when label text exceeds MaxInputLen.
	ErrInputTooLong = errors.New("text input too long")
)

var (
	// \p{L}\p{N} rather than \w so Devanagari label text survives.
	specialChars      = regexp.MustCompile(`[^\p{L}\p{N}_\s,().-]`)
	ingredientSection = regexp.MustCompile(`(?is)(?:ingredients?|contains?):?\s*(.*?)(?:nutrition|allergen|$)`)
	parenPercent      = regexp.MustCompile(`\([^)]*%[^)]*\)`)
	leadingNumbers    = regexp.MustCompile(`^[\d.]+\s*`)
)

// Normalize collapses whitespace and strips special characters, keeping
// commas, parentheses, periods and hyphens.
func Normalize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = specialChars.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Validate checks label text against the empty and length limits.
func Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	if len(text) > MaxInputLen {
		return ErrInputTooLong
	}
	return nil
}

// ExtractIngredients pulls the ingredient list out of pasted label text.
// It looks for an "Ingredients:" or "Contains:" section, stopping at a
// nutrition or allergen section; with no marker the whole text is treated
// as the list. Items shorter than two characters are dropped.
func ExtractIngredients(text string) []string {
	normalized := Normalize(text)

	ingredientText := normalized
	if m := ingredientSection.FindStringSubmatch(normalized); m != nil {
		ingredientText = m[1]
	}

	var ingredients []string
	for _, part := range strings.Split(ingredientText, ",") {
		item := CleanIngredient(part)
		if len(item) > 1 {
			ingredients = append(ingredients, item)
		}
	}
	return ingredients
}

// CleanIngredient strips percentage parentheticals and leading numbers from
// a single ingredient.
func CleanIngredient(ingredient string) string {
	ingredient = parenPercent.ReplaceAllString(ingredient, "")
	ingredient = leadingNumbers.ReplaceAllString(ingredient, "")
	return strings.TrimSpace(strings.Join(strings.Fields(ingredient), " "))
}
