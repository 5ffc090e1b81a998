package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nutriai/nutriai/internal/domain"
)

// SQLiteStore implements Store on SQLite. Context, intent and food context
// are stored as JSON text columns; messages live in their own table ordered
// by insertion (rowid).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) a SQLite-backed session store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection so schema and data survive across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

var _ Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_accessed DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			context TEXT NOT NULL DEFAULT '{}',
			intent TEXT,
			intent_state TEXT NOT NULL DEFAULT 'not_inferred',
			food_context TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

func (s *SQLiteStore) CreateSession(ctx context.Context) (*domain.Session, error) {
	id := NewSessionID()
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, created_at, last_accessed) VALUES (?, ?, ?)`,
		id, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &domain.Session{
		ID:           id,
		CreatedAt:    now,
		LastAccessed: now,
		Messages:     []domain.Message{},
		Context:      map[string]interface{}{},
		IntentState:  domain.IntentNotInferred,
	}, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, created_at, last_accessed, context, intent, intent_state, food_context
		 FROM sessions WHERE session_id = ?`, sessionID)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_accessed = ? WHERE session_id = ?`, time.Now(), sessionID); err != nil {
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}

	messages, err := s.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Messages = messages
	return sess, nil
}

func (s *SQLiteStore) GetOrCreateSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return sess, nil
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, created_at, last_accessed) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO NOTHING`, sessionID, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s.GetSession(ctx, sessionID)
}

func (s *SQLiteStore) ensureSession(ctx context.Context, sessionID string) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, created_at, last_accessed) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO NOTHING`, sessionID, now, now)
	if err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID string, role domain.Role, content string) error {
	if err := s.ensureSession(ctx, sessionID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		"msg_"+uuid.New().String()[:8], sessionID, string(role), content, time.Now())
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM messages WHERE session_id = ? ORDER BY rowid ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var role, content string
		var createdAt time.Time
		if err := rows.Scan(&role, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, domain.Message{
			Role:      domain.Role(role),
			Content:   content,
			Timestamp: createdAt,
		})
	}
	return messages, rows.Err()
}

func (s *SQLiteStore) MergeContext(ctx context.Context, sessionID string, partial map[string]interface{}) error {
	if err := s.ensureSession(ctx, sessionID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var raw string
	if err := tx.QueryRowContext(ctx,
		`SELECT context FROM sessions WHERE session_id = ?`, sessionID).Scan(&raw); err != nil {
		return fmt.Errorf("failed to read context: %w", err)
	}

	merged := map[string]interface{}{}
	if raw != "" {
		// A corrupt stored blob degrades to an empty map rather than failing.
		_ = json.Unmarshal([]byte(raw), &merged)
	}
	for k, v := range partial {
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET context = ? WHERE session_id = ?`, string(data), sessionID); err != nil {
		return fmt.Errorf("failed to write context: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetContext(ctx context.Context, sessionID string) (map[string]interface{}, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT context FROM sessions WHERE session_id = ?`, sessionID).Scan(&raw)
	if err == sql.ErrNoRows {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get context: %w", err)
	}

	out := map[string]interface{}{}
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &out)
	}
	return out, nil
}

func (s *SQLiteStore) GetIntent(ctx context.Context, sessionID string) (*domain.IntentProfile, domain.IntentState, error) {
	var intentRaw sql.NullString
	var state string
	err := s.db.QueryRowContext(ctx,
		`SELECT intent, intent_state FROM sessions WHERE session_id = ?`, sessionID).
		Scan(&intentRaw, &state)
	if err == sql.ErrNoRows {
		return nil, domain.IntentNotInferred, nil
	}
	if err != nil {
		return nil, domain.IntentNotInferred, fmt.Errorf("failed to get intent: %w", err)
	}

	if !intentRaw.Valid || intentRaw.String == "" {
		return nil, domain.IntentState(state), nil
	}
	var profile domain.IntentProfile
	if err := json.Unmarshal([]byte(intentRaw.String), &profile); err != nil {
		return nil, domain.IntentState(state), nil
	}
	return &profile, domain.IntentState(state), nil
}

func (s *SQLiteStore) SetIntent(ctx context.Context, sessionID string, profile *domain.IntentProfile, state domain.IntentState) error {
	if err := s.ensureSession(ctx, sessionID); err != nil {
		return err
	}

	var intentRaw interface{}
	if profile != nil {
		data, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("failed to marshal intent: %w", err)
		}
		intentRaw = string(data)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET intent = ?, intent_state = ? WHERE session_id = ?`,
		intentRaw, string(state), sessionID)
	if err != nil {
		return fmt.Errorf("failed to set intent: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetFoodContext(ctx context.Context, sessionID string, fc *domain.FoodContext) error {
	if err := s.ensureSession(ctx, sessionID); err != nil {
		return err
	}

	var raw interface{}
	if fc != nil {
		data, err := json.Marshal(fc)
		if err != nil {
			return fmt.Errorf("failed to marshal food context: %w", err)
		}
		raw = string(data)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET food_context = ? WHERE session_id = ?`, raw, sessionID)
	if err != nil {
		return fmt.Errorf("failed to set food context: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetFoodContext(ctx context.Context, sessionID string) (*domain.FoodContext, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT food_context FROM sessions WHERE session_id = ?`, sessionID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food context: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var fc domain.FoodContext
	if err := json.Unmarshal([]byte(raw.String), &fc); err != nil {
		return nil, nil
	}
	return &fc, nil
}

func (s *SQLiteStore) ClearFoodContext(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET food_context = NULL WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear food context: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var sess domain.Session
	var contextRaw string
	var intentRaw, fcRaw sql.NullString
	var state string

	if err := row.Scan(&sess.ID, &sess.CreatedAt, &sess.LastAccessed,
		&contextRaw, &intentRaw, &state, &fcRaw); err != nil {
		return nil, err
	}

	sess.Context = map[string]interface{}{}
	if contextRaw != "" {
		_ = json.Unmarshal([]byte(contextRaw), &sess.Context)
	}
	sess.IntentState = domain.IntentState(state)
	if intentRaw.Valid && intentRaw.String != "" {
		var profile domain.IntentProfile
		if err := json.Unmarshal([]byte(intentRaw.String), &profile); err == nil {
			sess.Intent = &profile
		}
	}
	if fcRaw.Valid && fcRaw.String != "" {
		var fc domain.FoodContext
		if err := json.Unmarshal([]byte(fcRaw.String), &fc); err == nil {
			sess.FoodContext = &fc
		}
	}
	return &sess, nil
}
