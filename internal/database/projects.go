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

// GetProject returns the project with id, including soft-deleted projects.
func (db *DB) GetProject(ctx context.Context, id int64) (models.Project, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	p, err := db.getProject(ctx, id)
	return p, db.observe(ctx, "get_project", start, err)
}

func (db *DB) getProject(ctx context.Context, id int64) (models.Project, error) {
	var (
		p       models.Project
		cfg     []byte
		deleted sql.NullTime
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, personal, config, deleted_at FROM projects WHERE id = $1`, id).
		Scan(&p.ID, &p.Title, &p.Personal, &cfg, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, ErrNotFound
	}
	if err != nil {
		return models.Project{}, err
	}
	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &p.Config); err != nil {
			return models.Project{}, fmt.Errorf("decode project %d config: %w", id, err)
		}
	}
	p.DeletedAt = nullTime(deleted)
	return p, nil
}

// ListProjectMemberships returns the non-deleted memberships of projectID
// ordered by id.
func (db *DB) ListProjectMemberships(ctx context.Context, projectID int64) ([]models.Membership, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	ms, err := db.listProjectMemberships(ctx, projectID)
	return ms, db.observe(ctx, "list_project_memberships", start, err)
}

func (db *DB) listProjectMemberships(ctx context.Context, projectID int64) ([]models.Membership, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, project_id, user_id, role, COALESCE(user_name, ''), COALESCE(position, ''),
		       personal, config, deleted_at
		FROM project_users
		WHERE project_id = $1 AND deleted_at IS NULL
		ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Membership
	for rows.Next() {
		var (
			m       models.Membership
			cfg     []byte
			deleted sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.UserName, &m.Position,
			&m.Personal, &cfg, &deleted); err != nil {
			return nil, err
		}
		if len(cfg) > 0 {
			if err := json.Unmarshal(cfg, &m.Config); err != nil {
				return nil, fmt.Errorf("decode membership %d config: %w", m.ID, err)
			}
		}
		m.DeletedAt = nullTime(deleted)
		out = append(out, m)
	}
	return out, rows.Err()
}
