package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/agora-platform/agora/internal/model"
)

const argumentColumns = `id, topic_id, side, title, content, COALESCE(sources, ''), author, votes,
	validity_score, COALESCE(validity_reasoning, ''), key_urls, validity_checked_at, created_at`

// CreateArgument inserts a new argument, enforcing the side balance rule:
// once one side has arguments and the other has none, only the missing side
// may be added next.
func (s *Store) CreateArgument(ctx context.Context, topicID int64, side model.Side, title, content, author, sources string) (int64, error) {
	var proCount, conCount int
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE side = 'pro'),
			COUNT(*) FILTER (WHERE side = 'con')
		FROM arguments WHERE topic_id = $1`, topicID,
	).Scan(&proCount, &conCount)
	if err != nil {
		return 0, fmt.Errorf("count arguments: %w", err)
	}

	if proCount == 0 && conCount > 0 && side != model.SidePro {
		return 0, ErrSideBalance
	}
	if conCount == 0 && proCount > 0 && side != model.SideCon {
		return 0, ErrSideBalance
	}

	var id int64
	err = s.pool.QueryRow(ctx, `
		INSERT INTO arguments (topic_id, side, title, content, sources, author)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING id`,
		topicID, side, title, content, sources, author,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create argument: %w", err)
	}

	return id, nil
}

// GetArgument fetches an argument by ID
func (s *Store) GetArgument(ctx context.Context, id int64) (model.Argument, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+argumentColumns+` FROM arguments WHERE id = $1`, id)

	arg, err := scanArgument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Argument{}, ErrNotFound
	}
	if err != nil {
		return model.Argument{}, fmt.Errorf("get argument: %w", err)
	}
	return arg, nil
}

// ListArguments returns a topic's arguments oldest-first, optionally
// filtered by side (empty side means both)
func (s *Store) ListArguments(ctx context.Context, topicID int64, side model.Side) ([]model.Argument, error) {
	query := `SELECT ` + argumentColumns + ` FROM arguments WHERE topic_id = $1`
	args := []any{topicID}
	if side != "" {
		query += ` AND side = $2`
		args = append(args, side)
	}
	query += ` ORDER BY created_at ASC`

	return s.queryArguments(ctx, query, args...)
}

// ListArgumentsByValidity returns a topic's arguments sorted by validity
// score, highest first, with unverified arguments at the end
func (s *Store) ListArgumentsByValidity(ctx context.Context, topicID int64, side model.Side) ([]model.Argument, error) {
	query := `SELECT ` + argumentColumns + ` FROM arguments WHERE topic_id = $1`
	args := []any{topicID}
	if side != "" {
		query += ` AND side = $2`
		args = append(args, side)
	}
	query += ` ORDER BY validity_score DESC NULLS LAST, created_at DESC`

	return s.queryArguments(ctx, query, args...)
}

// UpdateArgumentValidity persists a verification verdict against an argument
func (s *Store) UpdateArgumentValidity(ctx context.Context, id int64, verdict model.Verdict) error {
	keyURLs, err := json.Marshal(verdict.KeyURLs)
	if err != nil {
		return fmt.Errorf("marshal key urls: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE arguments
		SET validity_score = $1, validity_reasoning = $2, key_urls = $3, validity_checked_at = $4
		WHERE id = $5`,
		verdict.ValidityScore, verdict.Reasoning, keyURLs, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update validity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpvoteArgument increments an argument's vote counter and returns the new count
func (s *Store) UpvoteArgument(ctx context.Context, id int64) (int, error) {
	return s.adjustVotes(ctx, id, +1)
}

// DownvoteArgument decrements an argument's vote counter and returns the new count
func (s *Store) DownvoteArgument(ctx context.Context, id int64) (int, error) {
	return s.adjustVotes(ctx, id, -1)
}

func (s *Store) adjustVotes(ctx context.Context, id int64, delta int) (int, error) {
	var votes int
	err := s.pool.QueryRow(ctx,
		`UPDATE arguments SET votes = votes + $1 WHERE id = $2 RETURNING votes`,
		delta, id,
	).Scan(&votes)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("adjust votes: %w", err)
	}
	return votes, nil
}

func (s *Store) queryArguments(ctx context.Context, query string, args ...any) ([]model.Argument, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query arguments: %w", err)
	}
	defer rows.Close()

	arguments := []model.Argument{}
	for rows.Next() {
		arg, err := scanArgument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan argument: %w", err)
		}
		arguments = append(arguments, arg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query arguments: %w", err)
	}

	return arguments, nil
}

func scanArgument(row pgx.Row) (model.Argument, error) {
	var arg model.Argument
	var keyURLs []byte

	err := row.Scan(
		&arg.ID, &arg.TopicID, &arg.Side, &arg.Title, &arg.Content,
		&arg.Sources, &arg.Author, &arg.Votes,
		&arg.ValidityScore, &arg.ValidityReasoning, &keyURLs,
		&arg.ValidityCheckedAt, &arg.CreatedAt,
	)
	if err != nil {
		return model.Argument{}, err
	}

	if len(keyURLs) > 0 {
		// Unparseable key_urls degrade to none rather than failing the read.
		if err := json.Unmarshal(keyURLs, &arg.KeyURLs); err != nil {
			arg.KeyURLs = nil
		}
	}

	return arg, nil
}
