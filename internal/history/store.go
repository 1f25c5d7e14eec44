package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// Store owns the append-only turn log. The orchestrator is the sole writer;
// the context assembler and the web layer only read.
type Store interface {
	Append(ctx context.Context, conversationID, role, content string) (Turn, error)
	ListTurns(ctx context.Context, conversationID string) ([]Turn, error)
	Clear(ctx context.Context, conversationID string) (int64, error)
}

// SQLiteStore persists turns in the turns table created by db.Migrate.
type SQLiteStore struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSQLiteStore wraps an open database handle.
func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:    database,
		locks: make(map[string]*sync.Mutex),
	}
}

// convLock returns the mutex serializing mutations for one conversation.
// Mutations to different conversations do not contend.
func (s *SQLiteStore) convLock(conversationID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[conversationID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[conversationID] = l
	}
	return l
}

// Append durably records one new turn with a fresh timestamp and returns it.
func (s *SQLiteStore) Append(ctx context.Context, conversationID, role, content string) (Turn, error) {
	if !ValidRole(role) {
		return Turn{}, fmt.Errorf("invalid role %q", role)
	}
	if content == "" {
		return Turn{}, fmt.Errorf("empty turn content")
	}

	l := s.convLock(conversationID)
	l.Lock()
	defer l.Unlock()

	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO turns (conversation_id, role, content, created_at) VALUES (?, ?, ?, ?)",
		conversationID, role, content, now.Unix(),
	)
	if err != nil {
		return Turn{}, fmt.Errorf("append turn: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Turn{}, fmt.Errorf("append turn id: %w", err)
	}

	return Turn{
		ID:             id,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Unix(now.Unix(), 0),
	}, nil
}

// ListTurns returns all turns for the conversation in chronological order,
// ties broken by insertion order. A missing conversation yields an empty slice.
func (s *SQLiteStore) ListTurns(ctx context.Context, conversationID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, conversation_id, role, content, created_at FROM turns WHERE conversation_id = ? ORDER BY created_at, id",
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Role, &t.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.CreatedAt = time.Unix(createdAt, 0)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	return turns, nil
}

// Clear deletes every turn of the conversation and returns the number
// deleted. Clearing an already-empty conversation succeeds with zero.
func (s *SQLiteStore) Clear(ctx context.Context, conversationID string) (int64, error) {
	l := s.convLock(conversationID)
	l.Lock()
	defer l.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM turns WHERE conversation_id = ?", conversationID)
	if err != nil {
		return 0, fmt.Errorf("clear turns: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear turns count: %w", err)
	}
	return count, nil
}
