package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/deskctl/internal/log"
)

// ErrNotFound is returned when no row has the requested ID.
var ErrNotFound = errors.New("history: command not found")

// Entry is one command row.
type Entry struct {
	ID         string
	SessionKey string
	Name       string
	State      string
	Error      string
	StartedAt  time.Time
	// EndedAt is zero while the command is running.
	EndedAt time.Time
}

// Duration is how long the command ran, or zero if it has not ended.
func (e Entry) Duration() time.Duration {
	if e.EndedAt.IsZero() {
		return 0
	}
	return e.EndedAt.Sub(e.StartedAt)
}

// Repository reads and writes the commands table.
type Repository struct {
	db *sql.DB
}

// NewRepository wraps an open, migrated database.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Start records a command that has begun running.
func (r *Repository) Start(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO commands (id, session_key, name, state, started_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET state = excluded.state, started_at = excluded.started_at`,
		e.ID, e.SessionKey, e.Name, e.State, e.StartedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record start of %s: %w", e.ID, err)
	}
	return nil
}

// Finish records the terminal state of a command. A command cancelled before
// it started has no row yet, so one is inserted with StartedAt = EndedAt.
func (r *Repository) Finish(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO commands (id, session_key, name, state, error, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET state = excluded.state, error = excluded.error, ended_at = excluded.ended_at`,
		e.ID, e.SessionKey, e.Name, e.State, e.Error, e.EndedAt.UnixMilli(), e.EndedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record finish of %s: %w", e.ID, err)
	}
	return nil
}

// Get returns one command by ID.
func (r *Repository) Get(ctx context.Context, id string) (Entry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_key, name, state, error, started_at, ended_at
		FROM commands WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

// Recent returns up to limit commands, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_key, name, state, error, started_at, ended_at
		FROM commands ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		log.ErrorErr(log.CatDB, "Recent query failed", err, "limit", limit)
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes commands that started before cutoff and returns how many
// were removed.
func (r *Repository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM commands WHERE started_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info(log.CatDB, "Pruned history", "rows", n, "cutoff", cutoff.Format(time.RFC3339))
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e       Entry
		started int64
		ended   sql.NullInt64
	)
	if err := s.Scan(&e.ID, &e.SessionKey, &e.Name, &e.State, &e.Error, &started, &ended); err != nil {
		return Entry{}, err
	}
	e.StartedAt = time.UnixMilli(started)
	if ended.Valid {
		e.EndedAt = time.UnixMilli(ended.Int64)
	}
	return e, nil
}
