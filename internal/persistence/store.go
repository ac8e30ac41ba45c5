// Package persistence stores session snapshots so a crashed or restarted
// process can pick a live session back up.
package persistence

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// snapshotStore is the SQLite-backed Store.
type snapshotStore struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a snapshot store on the given database.
func New(db *sql.DB) Store {
	return &snapshotStore{db: db}
}

func (s *snapshotStore) Save(key string, state []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
	INSERT INTO session_snapshots (session_key, state_json, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(session_key) DO UPDATE SET
		state_json = excluded.state_json,
		updated_at = excluded.updated_at;
	`
	if _, err := s.db.Exec(query, key, string(state), time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save snapshot for %q: %w", key, err)
	}
	log.Debug("Saved session snapshot", "key", key, "bytes", len(state))
	return nil
}

func (s *snapshotStore) Load(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state string
	err := s.db.QueryRow(`SELECT state_json FROM session_snapshots WHERE session_key = ?`, key).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load snapshot for %q: %w", key, err)
	}
	return []byte(state), true, nil
}

func (s *snapshotStore) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM session_snapshots WHERE session_key = ?`, key); err != nil {
		return fmt.Errorf("failed to clear snapshot for %q: %w", key, err)
	}
	return nil
}
