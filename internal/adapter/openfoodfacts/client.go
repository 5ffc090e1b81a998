// Package openfoodfacts provides a client for the OpenFoodFacts public
// product database, with an in-process TTL cache and request coalescing.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/nutriai/nutriai/internal/textproc"
)

// Product is a barcode lookup result. Found is false when the barcode is
// unknown to OpenFoodFacts or the lookup failed; lookups never error out to
// callers, a missing product is an answer.
type Product struct {
	Found           bool                   `json:"found"`
	Barcode         string                 `json:"barcode"`
	ProductName     string                 `json:"product_name,omitempty"`
	Brands          string                 `json:"brands,omitempty"`
	IngredientsText string                 `json:"ingredients_text,omitempty"`
	Allergens       string                 `json:"allergens,omitempty"`
	Traces          string                 `json:"traces,omitempty"`
	Nutriments      map[string]interface{} `json:"nutriments,omitempty"`
	Error           string                 `json:"error,omitempty"`
}

// Ingredients parses the product's ingredient text into a list.
func (p Product) Ingredients() []string {
	if !p.Found || p.IngredientsText == "" {
		return nil
	}
	return textproc.ExtractIngredients(p.IngredientsText)
}

type apiResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName     string                 `json:"product_name"`
		Brands          string                 `json:"brands"`
		IngredientsText string                 `json:"ingredients_text"`
		Allergens       string                 `json:"allergens"`
		Traces          string                 `json:"traces"`
		Nutriments      map[string]interface{} `json:"nutriments"`
	} `json:"product"`
}

type cacheEntry struct {
	product Product
	expires time.Time
}

// Client fetches products from OpenFoodFacts. Successful lookups are cached
// for a TTL and concurrent lookups for the same barcode are coalesced.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cacheTTL   time.Duration
	logger     *zap.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
	group singleflight.Group
}

// NewClient creates an OpenFoodFacts client.
func NewClient(baseURL string, timeout, cacheTTL time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cacheTTL: cacheTTL,
		logger:   logger,
		cache:    make(map[string]cacheEntry),
	}
}

// FetchByBarcode looks up a product by barcode. Network failures, timeouts
// and non-200 statuses all produce Found=false with an error tag rather
// than an error return.
func (c *Client) FetchByBarcode(ctx context.Context, barcode string) Product {
	if cached, ok := c.cached(barcode); ok {
		return cached
	}

	v, _, _ := c.group.Do(barcode, func() (interface{}, error) {
		if cached, ok := c.cached(barcode); ok {
			return cached, nil
		}
		p := c.fetch(ctx, barcode)
		if p.Error == "" {
			c.store(barcode, p)
		}
		return p, nil
	})
	return v.(Product)
}

func (c *Client) fetch(ctx context.Context, barcode string) Product {
	url := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, barcode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Product{Barcode: barcode, Error: "bad_request"}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("product lookup failed", zap.String("barcode", barcode), zap.Error(err))
		return Product{Barcode: barcode, Error: "timeout"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("product lookup returned non-200",
			zap.String("barcode", barcode), zap.Int("status", resp.StatusCode))
		return Product{Barcode: barcode, Error: "http_error"}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Product{Barcode: barcode, Error: "http_error"}
	}

	var data apiResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Warn("product response unparsable", zap.String("barcode", barcode), zap.Error(err))
		return Product{Barcode: barcode, Error: "bad_response"}
	}

	if data.Status == 0 {
		c.logger.Info("product not found", zap.String("barcode", barcode))
		return Product{Barcode: barcode}
	}

	c.logger.Info("product found",
		zap.String("barcode", barcode), zap.String("name", data.Product.ProductName))
	return Product{
		Found:           true,
		Barcode:         barcode,
		ProductName:     data.Product.ProductName,
		Brands:          data.Product.Brands,
		IngredientsText: data.Product.IngredientsText,
		Allergens:       data.Product.Allergens,
		Traces:          data.Product.Traces,
		Nutriments:      data.Product.Nutriments,
	}
}

func (c *Client) cached(barcode string) (Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[barcode]
	if !ok || time.Now().After(entry.expires) {
		delete(c.cache, barcode)
		return Product{}, false
	}
	return entry.product, true
}

func (c *Client) store(barcode string, p Product) {
	if c.cacheTTL <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[barcode] = cacheEntry{product: p, expires: time.Now().Add(c.cacheTTL)}
}
