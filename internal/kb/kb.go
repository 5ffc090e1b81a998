// Package kb holds the curated ingredient knowledge base: a small JSON seed
// of additives and common ingredients with exact and partial lookup.
package kb

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry is one curated ingredient record.
type Entry struct {
	Name         string   `json:"name"`
	Aliases      []string `json:"aliases,omitempty"`
	Category     string   `json:"category"`
	Confidence   string   `json:"confidence"`
	WhyItMatters string   `json:"why_it_matters"`
}

// Stats summarizes the knowledge base contents.
type Stats struct {
	TotalIngredients int            `json:"total_ingredients"`
	Categories       map[string]int `json:"categories"`
	ConfidenceLevels map[string]int `json:"confidence_levels"`
}

// KB is an in-memory ingredient knowledge base with name and alias indexes.
// Indexes are built once at construction; lookups are read-only afterwards,
// so KB is safe for concurrent use.
type KB struct {
	entries    []Entry
	nameIndex  map[string]*Entry
	aliasIndex map[string]*Entry
}

// New builds a knowledge base from entries.
func New(entries []Entry) *KB {
	k := &KB{
		entries:    entries,
		nameIndex:  make(map[string]*Entry, len(entries)),
		aliasIndex: make(map[string]*Entry),
	}
	for i := range k.entries {
		e := &k.entries[i]
		k.nameIndex[normalize(e.Name)] = e
		for _, alias := range e.Aliases {
			k.aliasIndex[normalize(alias)] = e
		}
	}
	return k
}

// Load reads a knowledge base seed file.
func Load(path string) (*KB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read kb seed: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse kb seed: %w", err)
	}
	return New(entries), nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Len returns the number of entries.
func (k *KB) Len() int { return len(k.entries) }

// Lookup finds an ingredient by exact name or alias match, case and
// whitespace insensitive. Name matches win over alias matches.
func (k *KB) Lookup(query string) (Entry, bool) {
	q := normalize(query)
	if q == "" {
		return Entry{}, false
	}
	if e, ok := k.nameIndex[q]; ok {
		return *e, true
	}
	if e, ok := k.aliasIndex[q]; ok {
		return *e, true
	}
	return Entry{}, false
}

// Search finds entries whose name or any alias contains the query.
func (k *KB) Search(query string, limit int) []Entry {
	q := normalize(query)
	if q == "" || limit <= 0 {
		return nil
	}
	var matches []Entry
	for _, e := range k.entries {
		if strings.Contains(strings.ToLower(e.Name), q) {
			matches = append(matches, e)
		} else {
			for _, alias := range e.Aliases {
				if strings.Contains(strings.ToLower(alias), q) {
					matches = append(matches, e)
					break
				}
			}
		}
		if len(matches) == limit {
			break
		}
	}
	return matches
}

// BulkLookup resolves a list of ingredient names. Unknown names are simply
// skipped, so the result may be shorter than the input.
func (k *KB) BulkLookup(ingredients []string) []Entry {
	var results []Entry
	for _, name := range ingredients {
		if e, ok := k.Lookup(name); ok {
			results = append(results, e)
		}
	}
	return results
}

// ByCategory returns all entries in a category, case insensitive.
func (k *KB) ByCategory(category string) []Entry {
	c := normalize(category)
	var results []Entry
	for _, e := range k.entries {
		if strings.ToLower(e.Category) == c {
			results = append(results, e)
		}
	}
	return results
}

// GetStats counts entries per category and confidence level.
func (k *KB) GetStats() Stats {
	s := Stats{
		TotalIngredients: len(k.entries),
		Categories:       map[string]int{},
		ConfidenceLevels: map[string]int{},
	}
	for _, e := range k.entries {
		cat := e.Category
		if cat == "" {
			cat = "unknown"
		}
		s.Categories[cat]++
		conf := e.Confidence
		if conf == "" {
			conf = "unknown"
		}
		s.ConfidenceLevels[conf]++
	}
	return s
}
