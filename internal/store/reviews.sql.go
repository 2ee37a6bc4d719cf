// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const reviewColumns = `id, name, text, rating, created_at`

func scanReview(row interface{ Scan(...interface{}) error }) (Review, error) {
	var i Review
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Text,
		&i.Rating,
		&i.CreatedAt,
	)
	return i, err
}

const listLatestReviews = `SELECT ` + reviewColumns + ` FROM reviews
ORDER BY created_at DESC, id DESC
LIMIT ?`

func (q *Queries) ListLatestReviews(ctx context.Context, limit int64) ([]Review, error) {
	rows, err := q.db.QueryContext(ctx, q.bind(listLatestReviews), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []Review{}
	for rows.Next() {
		i, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createReview = `INSERT INTO reviews (name, text, rating, created_at)
VALUES (?, ?, ?, ?)
RETURNING ` + reviewColumns

type CreateReviewParams struct {
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Rating    int64     `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateReview(ctx context.Context, arg CreateReviewParams) (Review, error) {
	row := q.db.QueryRowContext(ctx, q.bind(createReview),
		arg.Name,
		arg.Text,
		arg.Rating,
		arg.CreatedAt.UTC(),
	)
	return scanReview(row)
}

const countReviews = `SELECT COUNT(*) FROM reviews`

func (q *Queries) CountReviews(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countReviews).Scan(&count)
	return count, err
}
