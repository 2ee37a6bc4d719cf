// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const userColumns = `id, email, password_hash, reset_token, reset_token_expiration, last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.ResetToken,
		&i.ResetTokenExpiration,
		&i.LastLoginAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, q.bind(getUserByEmail), email))
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ? LIMIT 1`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, q.bind(getUserByID), id))
}

const createUser = `INSERT INTO users (email, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?)
RETURNING ` + userColumns

type CreateUserParams struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, q.bind(createUser),
		arg.Email,
		arg.PasswordHash,
		arg.CreatedAt.UTC(),
		arg.UpdatedAt.UTC(),
	)
	return scanUser(row)
}

const updateUserPassword = `UPDATE users
SET password_hash = ?, reset_token = NULL, reset_token_expiration = NULL, updated_at = ?
WHERE id = ?`

type UpdateUserPasswordParams struct {
	PasswordHash string    `json:"password_hash"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           int64     `json:"id"`
}

// UpdateUserPassword stores a new hash and clears any pending reset token.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	res, err := q.db.ExecContext(ctx, q.bind(updateUserPassword), arg.PasswordHash, arg.UpdatedAt.UTC(), arg.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const setUserResetToken = `UPDATE users
SET reset_token = ?, reset_token_expiration = ?, updated_at = ?
WHERE id = ?`

type SetUserResetTokenParams struct {
	ResetToken           string    `json:"reset_token"`
	ResetTokenExpiration time.Time `json:"reset_token_expiration"`
	UpdatedAt            time.Time `json:"updated_at"`
	ID                   int64     `json:"id"`
}

func (q *Queries) SetUserResetToken(ctx context.Context, arg SetUserResetTokenParams) error {
	res, err := q.db.ExecContext(ctx, q.bind(setUserResetToken),
		arg.ResetToken,
		arg.ResetTokenExpiration.UTC(),
		arg.UpdatedAt.UTC(),
		arg.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

const updateUserLastLogin = `UPDATE users SET last_login_at = ? WHERE id = ?`

func (q *Queries) UpdateUserLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx, q.bind(updateUserLastLogin), at.UTC(), id)
	return err
}

const clearExpiredResetTokens = `UPDATE users
SET reset_token = NULL, reset_token_expiration = NULL
WHERE reset_token_expiration IS NOT NULL AND reset_token_expiration < ?`

// ClearExpiredResetTokens removes reset tokens that expired before now.
func (q *Queries) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.bind(clearExpiredResetTokens), now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countUsers = `SELECT COUNT(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&count)
	return count, err
}

// requireAffected maps a zero-row UPDATE or DELETE to sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
