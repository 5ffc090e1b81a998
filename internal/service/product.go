package service

import (
	"context"
	"errors"

	"github.com/nutriai/nutriai/internal/config"
	"github.com/nutriai/nutriai/internal/domain"
	"github.com/nutriai/nutriai/internal/kb"
)

// ErrNoAPIKey indicates the reasoning collaborator is not configured.
var ErrNoAPIKey = errors.New("gemini api key not configured")

// ProductByBarcode looks up a product in OpenFoodFacts. A missing product
// is a Found=false response, not an error.
func (s *Service) ProductByBarcode(ctx context.Context, barcode string) *domain.ProductResponse {
	p := s.offClient.FetchByBarcode(ctx, barcode)
	return &domain.ProductResponse{
		Found:       p.Found,
		Barcode:     p.Barcode,
		ProductName: p.ProductName,
		Brands:      p.Brands,
		Ingredients: p.Ingredients(),
		Allergens:   p.Allergens,
		Traces:      p.Traces,
		Nutriments:  p.Nutriments,
	}
}

// ProductIngredients returns the parsed ingredient list for a barcode,
// each entry annotated with knowledge-base info when available.
func (s *Service) ProductIngredients(ctx context.Context, barcode string) (found bool, ingredients []string, known []kb.Entry) {
	p := s.offClient.FetchByBarcode(ctx, barcode)
	if !p.Found {
		return false, nil, nil
	}
	ingredients = p.Ingredients()
	return true, ingredients, s.kb.BulkLookup(ingredients)
}

// Knowledge-base passthroughs.

func (s *Service) KBLookup(query string) (kb.Entry, bool) {
	return s.kb.Lookup(query)
}

func (s *Service) KBSearch(query string, limit int) []kb.Entry {
	return s.kb.Search(query, limit)
}

func (s *Service) KBBulkLookup(ingredients []string) []kb.Entry {
	return s.kb.BulkLookup(ingredients)
}

func (s *Service) KBByCategory(category string) []kb.Entry {
	return s.kb.ByCategory(category)
}

func (s *Service) KBStats() kb.Stats {
	return s.kb.GetStats()
}

// CheckLLM verifies the reasoning collaborator is usable: in mock mode it
// always is, otherwise an API key must be configured.
func (s *Service) CheckLLM() error {
	if config.MockMode() {
		return nil
	}
	if s.config.GeminiAPIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}
