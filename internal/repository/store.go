// Package repository defines the session storage interface and its
// implementations. The store is the single owner of per-session mutable
// state; nothing else mutates a session directly.
package repository

import (
	"context"

	"github.com/nutriai/nutriai/internal/domain"
)

// Store is the session store contract.
//
// Missing-session semantics are deliberate and uniform: write paths
// (AppendMessage, MergeContext, SetIntent, SetFoodContext) auto-create the
// session, read paths (GetMessages, GetContext, GetIntent, GetFoodContext)
// return empty defaults. GetSession is the one strict read: it returns
// (nil, nil) for an unknown id so callers that need to distinguish can.
// Callers that want the implicit behavior use GetOrCreateSession.
type Store interface {
	// CreateSession creates a new session with a generated id.
	CreateSession(ctx context.Context) (*domain.Session, error)

	// GetSession returns a snapshot of the session, or nil if unknown.
	// Reading a session updates its last_accessed timestamp.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// GetOrCreateSession returns the session, creating it under the given
	// id if it does not exist.
	GetOrCreateSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// AppendMessage appends to the session's conversation history.
	// History is append-only; entries are never reordered or deduplicated.
	AppendMessage(ctx context.Context, sessionID string, role domain.Role, content string) error

	// GetMessages returns the full conversation history in insertion order.
	GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error)

	// MergeContext shallow-merges partial into the session context: later
	// keys overwrite, non-overlapping keys are unioned.
	MergeContext(ctx context.Context, sessionID string, partial map[string]interface{}) error

	// GetContext returns a copy of the accumulated soft context mapping.
	GetContext(ctx context.Context, sessionID string) (map[string]interface{}, error)

	GetIntent(ctx context.Context, sessionID string) (*domain.IntentProfile, domain.IntentState, error)
	SetIntent(ctx context.Context, sessionID string, profile *domain.IntentProfile, state domain.IntentState) error

	SetFoodContext(ctx context.Context, sessionID string, fc *domain.FoodContext) error
	GetFoodContext(ctx context.Context, sessionID string) (*domain.FoodContext, error)
	ClearFoodContext(ctx context.Context, sessionID string) error

	Close() error
}
