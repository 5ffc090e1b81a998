// Package jsonguard extracts JSON objects from LLM output, which routinely
// arrives wrapped in markdown fences, prose, or with trailing commas.
package jsonguard

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no parseable JSON object can be recovered.
var ErrNoJSON = errors.New("jsonguard: no valid JSON object in text")

var (
	fenceOpen     = regexp.MustCompile("```(?:json)?\\s*")
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// Extract recovers a JSON object from raw LLM text and unmarshals it into v.
// It tries, in order: direct parse, the first {...} window, trailing-comma
// repair. It never panics and always either fills v or returns an error.
func Extract(text string, v interface{}) error {
	cleaned := fenceOpen.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if json.Unmarshal([]byte(cleaned), v) == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return ErrNoJSON
	}
	window := cleaned[start : end+1]

	if json.Unmarshal([]byte(window), v) == nil {
		return nil
	}

	repaired := trailingComma.ReplaceAllString(window, "$1")
	if json.Unmarshal([]byte(repaired), v) == nil {
		return nil
	}

	return ErrNoJSON
}
