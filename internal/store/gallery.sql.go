// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const galleryColumns = `id, src, alt, type, created_at`

func scanGalleryItem(row interface{ Scan(...interface{}) error }) (GalleryItem, error) {
	var i GalleryItem
	err := row.Scan(
		&i.ID,
		&i.Src,
		&i.Alt,
		&i.Type,
		&i.CreatedAt,
	)
	return i, err
}

const listGalleryItems = `SELECT ` + galleryColumns + ` FROM gallery ORDER BY id ASC`

func (q *Queries) ListGalleryItems(ctx context.Context) ([]GalleryItem, error) {
	rows, err := q.db.QueryContext(ctx, listGalleryItems)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []GalleryItem{}
	for rows.Next() {
		i, err := scanGalleryItem(rows)
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

const getGalleryItem = `SELECT ` + galleryColumns + ` FROM gallery WHERE id = ? LIMIT 1`

func (q *Queries) GetGalleryItem(ctx context.Context, id int64) (GalleryItem, error) {
	return scanGalleryItem(q.db.QueryRowContext(ctx, q.bind(getGalleryItem), id))
}

const createGalleryItem = `INSERT INTO gallery (src, alt, type, created_at)
VALUES (?, ?, ?, ?)
RETURNING ` + galleryColumns

type CreateGalleryItemParams struct {
	Src       string    `json:"src"`
	Alt       string    `json:"alt"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateGalleryItem(ctx context.Context, arg CreateGalleryItemParams) (GalleryItem, error) {
	row := q.db.QueryRowContext(ctx, q.bind(createGalleryItem),
		arg.Src,
		arg.Alt,
		arg.Type,
		arg.CreatedAt.UTC(),
	)
	return scanGalleryItem(row)
}

const updateGalleryItem = `UPDATE gallery
SET src = ?, alt = ?, type = ?
WHERE id = ?
RETURNING ` + galleryColumns

type UpdateGalleryItemParams struct {
	Src  string `json:"src"`
	Alt  string `json:"alt"`
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

// UpdateGalleryItem returns sql.ErrNoRows when the id does not exist.
func (q *Queries) UpdateGalleryItem(ctx context.Context, arg UpdateGalleryItemParams) (GalleryItem, error) {
	row := q.db.QueryRowContext(ctx, q.bind(updateGalleryItem),
		arg.Src,
		arg.Alt,
		arg.Type,
		arg.ID,
	)
	return scanGalleryItem(row)
}

const deleteGalleryItem = `DELETE FROM gallery WHERE id = ?`

// DeleteGalleryItem returns sql.ErrNoRows when the id does not exist.
func (q *Queries) DeleteGalleryItem(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, q.bind(deleteGalleryItem), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const countGalleryItems = `SELECT COUNT(*) FROM gallery`

func (q *Queries) CountGalleryItems(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countGalleryItems).Scan(&count)
	return count, err
}
