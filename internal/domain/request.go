package domain

// ChatRequest is the conversational request body.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	Language  string `json:"language,omitempty"`
}

// ChatResponse is the conversational response body.
type ChatResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// TextAnalysisRequest carries free-form label text for analysis.
type TextAnalysisRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

// AnalysisResponse is the result of a text or image analysis.
type AnalysisResponse struct {
	Success   bool         `json:"success"`
	SessionID string       `json:"session_id"`
	Analysis  string       `json:"analysis"`
	Insight   *InsightCard `json:"insight,omitempty"`
}

// IntentInferRequest asks for an explicit intent inference run.
type IntentInferRequest struct {
	Message     string   `json:"message"`
	SessionID   string   `json:"session_id,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
}

// IntentInferResponse carries the merged intent profile after inference.
type IntentInferResponse struct {
	Success   bool          `json:"success"`
	SessionID string        `json:"session_id"`
	Intent    IntentProfile `json:"intent"`
}

// ProductResponse is the normalized product lookup result.
type ProductResponse struct {
	Found       bool                   `json:"found"`
	Barcode     string                 `json:"barcode"`
	ProductName string                 `json:"product_name,omitempty"`
	Brands      string                 `json:"brands,omitempty"`
	Ingredients []string               `json:"ingredients,omitempty"`
	Allergens   string                 `json:"allergens,omitempty"`
	Traces      string                 `json:"traces,omitempty"`
	Nutriments  map[string]interface{} `json:"nutriments,omitempty"`
}
