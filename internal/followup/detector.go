// Package followup classifies whether a message continues the discussion of
// a previously analyzed food product. The classifier is a pure, deterministic
// ordered rule list; the first matching rule wins.
package followup

import (
	"fmt"
	"regexp"
	"strings"
)

// UseContextThreshold is the minimum classification confidence for reusing
// stored food context. 0.6 deliberately biases toward aggressive reuse;
// the cost of over-applying a stale product is lower than dropping the
// thread of a genuine follow-up.
const UseContextThreshold = 0.6

// Result is a follow-up classification.
type Result struct {
	IsFollowup bool
	Confidence float64
	Reason     string
}

// features are the precomputed signals the rules read.
type features struct {
	raw         string
	lower       string
	words       []string
	wordCount   int
	hasNewImage bool
}

// rule is one ordered (predicate, result) entry. apply returns the result
// and whether the rule matched.
type rule struct {
	name  string
	apply func(f features) (Result, bool)
}

var productNamePattern = regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`)

// rules is evaluated top to bottom; order is part of the contract.
var rules = []rule{
	{
		name: "new-image-reset",
		apply: func(f features) (Result, bool) {
			if f.hasNewImage {
				return Result{false, 0, "New image uploaded"}, true
			}
			return Result{}, false
		},
	},
	{
		name: "short-message-pronoun",
		apply: func(f features) (Result, bool) {
			if f.wordCount > 10 {
				return Result{}, false
			}
			if p := firstPronoun(f); p != "" {
				return Result{true, 0.95, fmt.Sprintf("Reference pronoun %q detected", p)}, true
			}
			return Result{}, false
		},
	},
	{
		name: "consumption-query",
		apply: func(f features) (Result, bool) {
			q := firstPhrase(f.lower, allConsumptionQueries)
			if q == "" {
				return Result{}, false
			}
			if p := firstPronoun(f); p != "" {
				return Result{true, 0.98, fmt.Sprintf("Consumption query %q with pronoun", q)}, true
			}
			return Result{true, 0.85, fmt.Sprintf("Consumption query %q", q)}, true
		},
	},
	{
		name: "amount-query",
		apply: func(f features) (Result, bool) {
			if q := firstPhrase(f.lower, amountQueries); q != "" {
				return Result{true, 0.8, fmt.Sprintf("Amount query %q", q)}, true
			}
			return Result{}, false
		},
	},
	{
		name: "alternative-query",
		apply: func(f features) (Result, bool) {
			if q := firstPhrase(f.lower, alternativeQueries); q != "" {
				return Result{true, 0.9, fmt.Sprintf("Alternative query %q", q)}, true
			}
			return Result{}, false
		},
	},
	{
		name: "short-question",
		apply: func(f features) (Result, bool) {
			if f.wordCount > 8 || !strings.HasSuffix(f.lower, "?") {
				return Result{}, false
			}
			for _, q := range questionWords {
				if strings.HasPrefix(f.lower, q) {
					return Result{true, 0.75, fmt.Sprintf("Short question starting with %q", q)}, true
				}
			}
			return Result{}, false
		},
	},
	{
		name: "explicit-new-product",
		apply: func(f features) (Result, bool) {
			product := productNamePattern.FindString(f.raw)
			if product == "" {
				return Result{}, false
			}
			if firstPhrase(f.lower, askingAboutMarkers) != "" {
				return Result{}, false
			}
			return Result{false, 0, fmt.Sprintf("Different product mentioned: %s", product)}, true
		},
	},
	{
		name: "short-default",
		apply: func(f features) (Result, bool) {
			if f.wordCount <= 12 {
				return Result{true, 0.65, "Short message, likely follow-up"}, true
			}
			return Result{}, false
		},
	},
}

// Classify decides whether message is a follow-up about the previously
// analyzed food. It is deterministic: the same input always yields the same
// result.
func Classify(message string, hasNewImage bool) Result {
	f := features{
		raw:         message,
		lower:       strings.ToLower(strings.TrimSpace(message)),
		hasNewImage: hasNewImage,
	}
	f.words = tokenize(f.lower)
	f.wordCount = len(strings.Fields(message))

	for _, r := range rules {
		if res, ok := r.apply(f); ok {
			return res
		}
	}
	return Result{false, 0, "Long message without follow-up indicators"}
}

// ShouldUseContext gates injection of stored food context into the next
// reasoning call. True iff context exists, no new image resets the topic,
// and the classification clears the reuse threshold.
func ShouldUseContext(message string, hasFoodContext, hasNewImage bool) bool {
	if !hasFoodContext {
		return false
	}
	if hasNewImage {
		return false
	}
	r := Classify(message, hasNewImage)
	return r.IsFollowup && r.Confidence >= UseContextThreshold
}

// firstPronoun returns the first reference pronoun present as a whole token.
// Token matching matters here: substring matching would find "it" inside
// "fruit" and turn almost everything into a follow-up.
func firstPronoun(f features) string {
	for _, p := range allReferencePronouns {
		for _, w := range f.words {
			if w == p {
				return p
			}
		}
	}
	return ""
}

func firstPhrase(lower string, phrases []string) string {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return ""
}

func tokenize(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return false
		}
		return true
	})
}
