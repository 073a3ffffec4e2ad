package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/agora-platform/agora/internal/model"
)

// CreateTopic inserts a new debate topic
func (s *Store) CreateTopic(ctx context.Context, question, createdBy string) (model.Topic, error) {
	var t model.Topic
	err := s.pool.QueryRow(ctx,
		`INSERT INTO topics (question, created_by) VALUES ($1, $2)
		 RETURNING id, question, created_by, created_at`,
		question, createdBy,
	).Scan(&t.ID, &t.Question, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return model.Topic{}, fmt.Errorf("create topic: %w", err)
	}
	return t, nil
}

// GetTopic fetches a topic by ID
func (s *Store) GetTopic(ctx context.Context, id int64) (model.Topic, error) {
	var t model.Topic
	err := s.pool.QueryRow(ctx,
		`SELECT id, question, created_by, created_at FROM topics WHERE id = $1`, id,
	).Scan(&t.ID, &t.Question, &t.CreatedBy, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Topic{}, ErrNotFound
	}
	if err != nil {
		return model.Topic{}, fmt.Errorf("get topic: %w", err)
	}
	return t, nil
}

// ListTopics returns all topics newest-first with argument counts, per-side
// average validity, and the derived controversy level
func (s *Store) ListTopics(ctx context.Context) ([]model.TopicSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			t.id, t.question, t.created_by, t.created_at,
			COUNT(a.id) FILTER (WHERE a.side = 'pro') AS pro_count,
			COUNT(a.id) FILTER (WHERE a.side = 'con') AS con_count,
			AVG(a.validity_score) FILTER (WHERE a.side = 'pro') AS pro_avg_validity,
			AVG(a.validity_score) FILTER (WHERE a.side = 'con') AS con_avg_validity
		FROM topics t
		LEFT JOIN arguments a ON a.topic_id = t.id
		GROUP BY t.id, t.question, t.created_by, t.created_at
		ORDER BY t.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	summaries := []model.TopicSummary{}
	for rows.Next() {
		var ts model.TopicSummary
		if err := rows.Scan(
			&ts.ID, &ts.Question, &ts.CreatedBy, &ts.CreatedAt,
			&ts.ProCount, &ts.ConCount,
			&ts.ProAvgValidity, &ts.ConAvgValidity,
		); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		ts.ProAvgValidity = roundAvg(ts.ProAvgValidity)
		ts.ConAvgValidity = roundAvg(ts.ConAvgValidity)
		ts.ControversyLevel = model.ControversyLevel(ts.ProCount, ts.ConCount)
		summaries = append(summaries, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}

	return summaries, nil
}

// roundAvg rounds an average validity to one decimal, preserving nil.
func roundAvg(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*10) / 10
	return &r
}
