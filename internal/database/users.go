// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tasklane/internal/models"
)

const userColumns = `id, name, phone, COALESCE(timezone, ''), config, COALESCE(session_id, ''), deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		u       models.User
		cfg     []byte
		deleted sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Phone, &u.Timezone, &cfg, &u.SessionID, &deleted); err != nil {
		return models.User{}, err
	}
	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &u.Config); err != nil {
			return models.User{}, fmt.Errorf("decode user %d config: %w", u.ID, err)
		}
	}
	u.DeletedAt = nullTime(deleted)
	return u, nil
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	ts := nt.Time
	return &ts
}

// GetUser returns the user with id, including soft-deleted users.
func (db *DB) GetUser(ctx context.Context, id int64) (models.User, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	return u, db.observe(ctx, "get_user", start, err)
}

// GetUserByPhone returns the non-deleted user owning phone.
func (db *DB) GetUserByPhone(ctx context.Context, phone string) (models.User, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone = $1 AND deleted_at IS NULL`, phone))
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	return u, db.observe(ctx, "get_user_by_phone", start, err)
}

// GetUsers returns the users among ids that exist, ordered by id.
func (db *DB) GetUsers(ctx context.Context, ids []int64) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	users, err := db.getUsers(ctx, ids)
	return users, db.observe(ctx, "get_users", start, err)
}

func (db *DB) getUsers(ctx context.Context, ids []int64) ([]models.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
