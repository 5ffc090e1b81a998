package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// GetProduct looks up a product by barcode.
// GET /v1/product/:barcode
func (h *Handler) GetProduct(c echo.Context) error {
	barcode := c.Param("barcode")
	resp := h.service.ProductByBarcode(c.Request().Context(), barcode)
	if !resp.Found {
		return c.JSON(http.StatusNotFound, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetProductIngredients returns a product's parsed ingredient list with
// knowledge-base annotations.
// GET /v1/product/:barcode/ingredients
func (h *Handler) GetProductIngredients(c echo.Context) error {
	barcode := c.Param("barcode")
	found, ingredients, known := h.service.ProductIngredients(c.Request().Context(), barcode)
	if !found {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"found":   false,
			"barcode": barcode,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"found":       true,
		"barcode":     barcode,
		"ingredients": ingredients,
		"known":       known,
	})
}

// SearchKB searches the ingredient knowledge base.
// GET /v1/kb/search?q=...&limit=...
func (h *Handler) SearchKB(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "q is required"})
	}
	limit := 10
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val >= 1 && val <= 50 {
			limit = val
		}
	}

	results := h.service.KBSearch(q, limit)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"query":   q,
		"results": results,
		"count":   len(results),
	})
}

// LookupIngredient looks up an ingredient by name or alias.
// GET /v1/kb/lookup/:ingredient
func (h *Handler) LookupIngredient(c echo.Context) error {
	name := c.Param("ingredient")
	entry, ok := h.service.KBLookup(name)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"success":    false,
			"ingredient": name,
			"message":    "Ingredient not found in KB",
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"ingredient": name,
		"result":     entry,
	})
}

// BulkLookupIngredients looks up multiple ingredients at once. Unmatched
// names are silently dropped.
// POST /v1/kb/bulk-lookup
func (h *Handler) BulkLookupIngredients(c echo.Context) error {
	var ingredients []string
	if err := c.Bind(&ingredients); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "expected a JSON array of ingredient names"})
	}

	results := h.service.KBBulkLookup(ingredients)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"input_count": len(ingredients),
		"found_count": len(results),
		"results":     results,
	})
}

// GetKBCategory returns all ingredients in a category.
// GET /v1/kb/categories/:category
func (h *Handler) GetKBCategory(c echo.Context) error {
	category := c.Param("category")
	results := h.service.KBByCategory(category)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"category": category,
		"results":  results,
		"count":    len(results),
	})
}

// GetKBStats returns knowledge base statistics.
// GET /v1/kb/stats
func (h *Handler) GetKBStats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   h.service.KBStats(),
	})
}
