// Package domain defines the core domain models for the backend.
package domain

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IntentState tracks whether intent inference has run for a session.
type IntentState string

const (
	IntentNotInferred IntentState = "not_inferred"
	IntentInferred    IntentState = "inferred"
	// IntentStale is reserved for a future revalidation policy; nothing
	// marks intent stale yet, but the store round-trips the value.
	IntentStale IntentState = "stale"
)

// Message is a single entry in a session's conversation history.
// Messages are append-only and their order is the conversation order.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// FoodContext is the cached identity of the most recently analyzed food
// product in a session. At most one product is held at a time; a new image
// upload clears it.
type FoodContext struct {
	ProductName string            `json:"product_name"`
	Barcode     string            `json:"barcode,omitempty"`
	Ingredients []string          `json:"ingredients,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Session holds all per-conversation mutable state.
type Session struct {
	ID           string                 `json:"id"`
	CreatedAt    time.Time              `json:"created_at"`
	LastAccessed time.Time              `json:"last_accessed"`
	Messages     []Message              `json:"messages"`
	Context      map[string]interface{} `json:"context"`
	Intent       *IntentProfile         `json:"intent,omitempty"`
	IntentState  IntentState            `json:"intent_state"`
	FoodContext  *FoodContext           `json:"food_context,omitempty"`
}
