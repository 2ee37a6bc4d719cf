// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const serviceColumns = `id, title, description, iconsrc, icontype, iconalt, created_at, updated_at`

func scanService(row interface{ Scan(...interface{}) error }) (Service, error) {
	var i Service
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.Iconsrc,
		&i.Icontype,
		&i.Iconalt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listServices = `SELECT ` + serviceColumns + ` FROM services ORDER BY id ASC`

func (q *Queries) ListServices(ctx context.Context) ([]Service, error) {
	rows, err := q.db.QueryContext(ctx, listServices)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := []Service{}
	for rows.Next() {
		i, err := scanService(rows)
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

const getService = `SELECT ` + serviceColumns + ` FROM services WHERE id = ? LIMIT 1`

func (q *Queries) GetService(ctx context.Context, id int64) (Service, error) {
	return scanService(q.db.QueryRowContext(ctx, q.bind(getService), id))
}

const createService = `INSERT INTO services (title, description, iconsrc, icontype, iconalt, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + serviceColumns

type CreateServiceParams struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Iconsrc     string    `json:"iconsrc"`
	Icontype    string    `json:"icontype"`
	Iconalt     string    `json:"iconalt"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (q *Queries) CreateService(ctx context.Context, arg CreateServiceParams) (Service, error) {
	row := q.db.QueryRowContext(ctx, q.bind(createService),
		arg.Title,
		arg.Description,
		arg.Iconsrc,
		arg.Icontype,
		arg.Iconalt,
		arg.CreatedAt.UTC(),
		arg.UpdatedAt.UTC(),
	)
	return scanService(row)
}

const updateService = `UPDATE services
SET title = ?, description = ?, iconsrc = ?, icontype = ?, iconalt = ?, updated_at = ?
WHERE id = ?
RETURNING ` + serviceColumns

type UpdateServiceParams struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Iconsrc     string    `json:"iconsrc"`
	Icontype    string    `json:"icontype"`
	Iconalt     string    `json:"iconalt"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          int64     `json:"id"`
}

// UpdateService returns sql.ErrNoRows when the id does not exist.
func (q *Queries) UpdateService(ctx context.Context, arg UpdateServiceParams) (Service, error) {
	row := q.db.QueryRowContext(ctx, q.bind(updateService),
		arg.Title,
		arg.Description,
		arg.Iconsrc,
		arg.Icontype,
		arg.Iconalt,
		arg.UpdatedAt.UTC(),
		arg.ID,
	)
	return scanService(row)
}

const deleteService = `DELETE FROM services WHERE id = ?`

// DeleteService returns sql.ErrNoRows when the id does not exist.
func (q *Queries) DeleteService(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, q.bind(deleteService), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const countServices = `SELECT COUNT(*) FROM services`

func (q *Queries) CountServices(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countServices).Scan(&count)
	return count, err
}
