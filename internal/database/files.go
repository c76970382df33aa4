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

	"github.com/tomtom215/tasklane/internal/models"
)

// parentProjectQueries resolves the project a file parent belongs to, one
// query per parent type. A user's files belong to their personal project.
var parentProjectQueries = map[models.ParentType]string{
	models.ParentTask: `SELECT project_id FROM tasks
		WHERE id = $1 AND deleted_at IS NULL`,
	models.ParentComment: `SELECT t.project_id FROM comments c
		JOIN tasks t ON t.id = c.task_id
		WHERE c.id = $1 AND c.deleted_at IS NULL AND t.deleted_at IS NULL`,
	models.ParentUser: `SELECT (config->>'personalProjectId')::bigint FROM users
		WHERE id = $1 AND deleted_at IS NULL AND config->>'personalProjectId' IS NOT NULL`,
	models.ParentProject: `SELECT id FROM projects
		WHERE id = $1 AND deleted_at IS NULL`,
	models.ParentMembership: `SELECT project_id FROM project_users
		WHERE id = $1 AND deleted_at IS NULL`,
}

// LookupFileParent returns the id of the project that owns parent. It
// returns ErrNotFound when the parent does not exist or is deleted.
func (db *DB) LookupFileParent(ctx context.Context, parent models.FileParent) (int64, error) {
	query, ok := parentProjectQueries[parent.Type]
	if !ok {
		return 0, fmt.Errorf("unknown file parent type %q", parent.Type)
	}

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	var projectID int64
	err := db.conn.QueryRowContext(ctx, query, parent.ID).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	return projectID, db.observe(ctx, "lookup_file_parent_"+string(parent.Type), start, err)
}

// GetFiles returns the non-deleted files among ids keyed by id.
func (db *DB) GetFiles(ctx context.Context, ids []int64) (map[int64]models.File, error) {
	out := make(map[int64]models.File, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	err := db.getFiles(ctx, ids, out)
	return out, db.observe(ctx, "get_files", start, err)
}

func (db *DB) getFiles(ctx context.Context, ids []int64, out map[int64]models.File) error {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, parent_type, parent_id, name, COALESCE(mime_type, ''), size, src, created_at
		FROM files
		WHERE id = ANY($1) AND deleted_at IS NULL`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f models.File
		if err := rows.Scan(&f.ID, &f.FileParent.Type, &f.FileParent.ID, &f.Name, &f.MimeType, &f.Size, &f.Src, &f.CreatedAt); err != nil {
			return err
		}
		out[f.ID] = f
	}
	return rows.Err()
}
