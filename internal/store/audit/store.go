// Package audit keeps a raw log of every reasoner exchange so a decision
// can be replayed against the exact prompts and replies that produced it.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Exchange is one request/response round trip with the model endpoint.
type Exchange struct {
	ID        int64  `json:"id"`
	RequestID string `json:"request_id,omitempty"`
	Purpose   string `json:"purpose"`
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	Reply     string `json:"reply,omitempty"`
	Error     string `json:"error,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
	CreatedAt int64  `json:"created_at"`
}

type Store struct {
	mu sync.Mutex
	db *sql.DB
}

func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("audit log path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS reasoner_exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT,
		purpose TEXT NOT NULL,
		model TEXT,
		prompt TEXT NOT NULL,
		reply TEXT,
		error TEXT,
		elapsed_ms INTEGER,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_exchanges_request ON reasoner_exchanges(request_id)`)
	return err
}

func (s *Store) Insert(ctx context.Context, ex Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("audit store closed")
	}
	if ex.CreatedAt == 0 {
		ex.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reasoner_exchanges
		 (request_id, purpose, model, prompt, reply, error, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.RequestID, ex.Purpose, ex.Model, ex.Prompt, ex.Reply, ex.Error, ex.ElapsedMS, ex.CreatedAt)
	return err
}

// Recent returns the newest exchanges, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Exchange, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("audit store closed")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, purpose, model, prompt, reply, error, elapsed_ms, created_at
		 FROM reasoner_exchanges ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Exchange
	for rows.Next() {
		var ex Exchange
		if err := rows.Scan(&ex.ID, &ex.RequestID, &ex.Purpose, &ex.Model,
			&ex.Prompt, &ex.Reply, &ex.Error, &ex.ElapsedMS, &ex.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
