package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/flix/internal/session"
)

// SessionRepository stores the client session in a single-row table.
//
// It satisfies [session.Backend] so a [session.Store] can be backed by the same database as the catalog cache.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Load returns the stored session, or the zero value when the table is empty.
func (r *SessionRepository) Load() (session.Session, error) {
	var s session.Session
	err := r.db.QueryRow(`SELECT token, username FROM session WHERE id = 1`).Scan(&s.Token, &s.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Session{}, nil
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	return s, nil
}

// Save upserts the session row.
func (r *SessionRepository) Save(s session.Session) error {
	query := `
		INSERT INTO session (id, token, username, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, username = excluded.username, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, s.Token, s.Username, time.Now()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear deletes the session row.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
