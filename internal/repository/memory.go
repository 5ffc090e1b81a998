package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nutriai/nutriai/internal/domain"
)

// MemoryStore is the in-process session store. Every method takes the store
// lock, so individual operations are atomic; multi-step read-modify-write
// sequences are serialized per session by the service layer.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*domain.Session)}
}

var _ Store = (*MemoryStore)(nil)

func newSession(id string) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:           id,
		CreatedAt:    now,
		LastAccessed: now,
		Messages:     []domain.Message{},
		Context:      map[string]interface{}{},
		IntentState:  domain.IntentNotInferred,
	}
}

// NewSessionID generates a session identifier.
func NewSessionID() string {
	return "session_" + uuid.New().String()[:8]
}

func (s *MemoryStore) CreateSession(ctx context.Context) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := newSession(NewSessionID())
	s.sessions[sess.ID] = sess
	return snapshot(sess), nil
}

func (s *MemoryStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	sess.LastAccessed = time.Now()
	return snapshot(sess), nil
}

func (s *MemoryStore) GetOrCreateSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(sessionID)
	sess.LastAccessed = time.Now()
	return snapshot(sess), nil
}

func (s *MemoryStore) getOrCreateLocked(sessionID string) *domain.Session {
	if sess, ok := s.sessions[sessionID]; ok {
		return sess
	}
	sess := newSession(sessionID)
	s.sessions[sessionID] = sess
	return sess
}

func (s *MemoryStore) AppendMessage(ctx context.Context, sessionID string, role domain.Role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(sessionID)
	sess.Messages = append(sess.Messages, domain.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	return nil
}

func (s *MemoryStore) GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return []domain.Message{}, nil
	}
	out := make([]domain.Message, len(sess.Messages))
	copy(out, sess.Messages)
	return out, nil
}

func (s *MemoryStore) MergeContext(ctx context.Context, sessionID string, partial map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(sessionID)
	for k, v := range partial {
		sess.Context[k] = v
	}
	return nil
}

func (s *MemoryStore) GetContext(ctx context.Context, sessionID string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return map[string]interface{}{}, nil
	}
	out := make(map[string]interface{}, len(sess.Context))
	for k, v := range sess.Context {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) GetIntent(ctx context.Context, sessionID string) (*domain.IntentProfile, domain.IntentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.IntentNotInferred, nil
	}
	if sess.Intent == nil {
		return nil, sess.IntentState, nil
	}
	cp := *sess.Intent
	return &cp, sess.IntentState, nil
}

func (s *MemoryStore) SetIntent(ctx context.Context, sessionID string, profile *domain.IntentProfile, state domain.IntentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(sessionID)
	if profile != nil {
		cp := *profile
		sess.Intent = &cp
	} else {
		sess.Intent = nil
	}
	sess.IntentState = state
	return nil
}

func (s *MemoryStore) SetFoodContext(ctx context.Context, sessionID string, fc *domain.FoodContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(sessionID)
	if fc != nil {
		cp := *fc
		sess.FoodContext = &cp
	} else {
		sess.FoodContext = nil
	}
	return nil
}

func (s *MemoryStore) GetFoodContext(ctx context.Context, sessionID string) (*domain.FoodContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.FoodContext == nil {
		return nil, nil
	}
	cp := *sess.FoodContext
	return &cp, nil
}

func (s *MemoryStore) ClearFoodContext(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		sess.FoodContext = nil
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// snapshot copies a session so callers never hold a reference into the store.
func snapshot(sess *domain.Session) *domain.Session {
	cp := *sess
	cp.Messages = make([]domain.Message, len(sess.Messages))
	copy(cp.Messages, sess.Messages)
	cp.Context = make(map[string]interface{}, len(sess.Context))
	for k, v := range sess.Context {
		cp.Context[k] = v
	}
	if sess.Intent != nil {
		ic := *sess.Intent
		cp.Intent = &ic
	}
	if sess.FoodContext != nil {
		fc := *sess.FoodContext
		cp.FoodContext = &fc
	}
	return &cp
}
