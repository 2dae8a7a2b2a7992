package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/omniscience-ai/omniscience/internal/application/ports"
	"github.com/omniscience-ai/omniscience/internal/application/session"
	domainErrors "github.com/omniscience-ai/omniscience/internal/domain/errors"
)

// Compile-time check that SessionRepository implements SessionStoragePort.
var _ ports.SessionStoragePort = (*SessionRepository)(nil)

// SessionRepository implements SessionStoragePort using SQLite.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save upserts a session snapshot.
func (r *SessionRepository) Save(ctx context.Context, snap session.Snapshot) error {
	if snap.ID == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "session id is required", nil)
	}
	if snap.Name == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "session name is required", nil)
	}

	filesJSON, err := json.Marshal(snap.Files)
	if err != nil {
		return fmt.Errorf("failed to marshal files: %w", err)
	}
	tabsJSON, err := json.Marshal(snap.OpenTabIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal open tabs: %w", err)
	}

	query := `
		INSERT INTO sessions (id, name, created_at, saved_at, specialist, files, open_tab_ids, active_tab_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			saved_at = excluded.saved_at,
			specialist = excluded.specialist,
			files = excluded.files,
			open_tab_ids = excluded.open_tab_ids,
			active_tab_id = excluded.active_tab_id
	`
	_, err = r.db.ExecContext(ctx, query,
		snap.ID,
		snap.Name,
		snap.CreatedAt.Format(time.RFC3339Nano),
		snap.SavedAt.Format(time.RFC3339Nano),
		snap.Specialist,
		string(filesJSON),
		string(tabsJSON),
		snap.ActiveTabID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return domainErrors.NewError(domainErrors.CodeValidation, "session name already in use", err)
		}
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get retrieves a session snapshot by id.
func (r *SessionRepository) Get(ctx context.Context, id string) (*session.Snapshot, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// GetByName retrieves a session snapshot by name.
func (r *SessionRepository) GetByName(ctx context.Context, name string) (*session.Snapshot, error) {
	return r.getWhere(ctx, "name = ?", name)
}

func (r *SessionRepository) getWhere(ctx context.Context, where string, arg any) (*session.Snapshot, error) {
	query := `
		SELECT id, name, created_at, saved_at, specialist, files, open_tab_ids, active_tab_id
		FROM sessions
		WHERE ` + where

	var (
		snap                 session.Snapshot
		createdAt, savedAt   string
		filesJSON, tabsJSON  string
		specialist, activeID sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&snap.ID, &snap.Name, &createdAt, &savedAt, &specialist, &filesJSON, &tabsJSON, &activeID,
	)
	if err == sql.ErrNoRows {
		return nil, domainErrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if snap.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if snap.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
		return nil, fmt.Errorf("failed to parse saved_at: %w", err)
	}
	if err := json.Unmarshal([]byte(filesJSON), &snap.Files); err != nil {
		return nil, fmt.Errorf("failed to unmarshal files: %w", err)
	}
	if err := json.Unmarshal([]byte(tabsJSON), &snap.OpenTabIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal open tabs: %w", err)
	}
	snap.Specialist = specialist.String
	snap.ActiveTabID = activeID.String
	return &snap, nil
}

// List returns summaries of all persisted sessions, most recently saved
// first.
func (r *SessionRepository) List(ctx context.Context) ([]ports.SessionSummary, error) {
	query := `
		SELECT id, name, saved_at, files
		FROM sessions
		ORDER BY saved_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []ports.SessionSummary
	for rows.Next() {
		var (
			s         ports.SessionSummary
			filesJSON string
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.SavedAt, &filesJSON); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		var files []session.FileSnapshot
		if err := json.Unmarshal([]byte(filesJSON), &files); err == nil {
			s.FileCount = len(files)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a persisted session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domainErrors.ErrSessionNotFound
	}
	return nil
}
