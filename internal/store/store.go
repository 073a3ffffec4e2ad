package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agora-platform/agora/internal/model"
)

var (
	// ErrNotFound indicates the requested topic or argument does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrSideBalance indicates the argument would violate the side balance
	// rule: once a topic has arguments on one side only, the next argument
	// must come from the missing side.
	ErrSideBalance = errors.New("store: topic must have at least 1 pro and 1 con argument")
)

// Store persists topics, arguments, votes, and verification verdicts in Postgres
type Store struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and returns a Store
func New(ctx context.Context, cfg model.DatabaseConfig) (*Store, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the connection pool
func (s *Store) Close() {
	s.pool.Close()
}

// InitSchema creates the tables if they do not exist
func (s *Store) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS topics (
			id BIGSERIAL PRIMARY KEY,
			question TEXT NOT NULL,
			created_by TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS arguments (
			id BIGSERIAL PRIMARY KEY,
			topic_id BIGINT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
			side TEXT NOT NULL CHECK (side IN ('pro', 'con')),
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			sources TEXT,
			author TEXT NOT NULL,
			votes INTEGER NOT NULL DEFAULT 0,
			validity_score INTEGER,
			validity_reasoning TEXT,
			key_urls JSONB,
			validity_checked_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_arguments_topic_id ON arguments(topic_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}
