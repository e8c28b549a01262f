package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// Builder accumulates command rows and inserts them in order.
type Builder struct {
	t        *testing.T
	db       *sql.DB
	commands []commandData
}

// NewBuilder creates a builder for the given test database.
func NewBuilder(t *testing.T, db *sql.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db}
}

// WithCommand adds a command with optional configuration.
func (b *Builder) WithCommand(id string, opts ...CommandOption) *Builder {
	c := defaultCommand(id)
	for _, opt := range opts {
		opt(&c)
	}
	b.commands = append(b.commands, c)
	return b
}

// Build inserts all accumulated rows into the database.
func (b *Builder) Build() {
	b.t.Helper()
	for _, c := range b.commands {
		b.insertCommand(c)
	}
}

func (b *Builder) insertCommand(c commandData) {
	b.t.Helper()
	var ended sql.NullInt64
	if c.endedAt != nil {
		ended = sql.NullInt64{Int64: c.endedAt.UnixMilli(), Valid: true}
	}
	_, err := b.db.Exec(
		`INSERT INTO commands (id, session_key, name, state, error, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.id, c.sessionKey, c.name, c.state, c.err, c.startedAt.UnixMilli(), ended,
	)
	require.NoError(b.t, err)
}
