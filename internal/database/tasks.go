// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tasklane/internal/models"
)

// fileObject builds the JSON object of a files row aliased f.
const fileObject = `json_build_object(
	'id', f.id, 'parentType', f.parent_type, 'parentId', f.parent_id,
	'name', f.name, 'mimeType', COALESCE(f.mime_type, ''), 'size', f.size,
	'src', f.src, 'createdAt', f.created_at)`

// taskProjectionQuery returns one JSON document per active task of a project
// for a viewer: the task row with its assignments, ticks, hashtags, comments
// (each with files) and files.
//
// $1 is the viewer id, $2 the project id. Rows are visible when the task is
// not deleted, is not a recurrence template, the viewer owns it or holds an
// assignment, and it is either not done or the viewer is a controller that
// has not signed off.
const taskProjectionQuery = `
SELECT json_build_object(
	'id', t.id,
	'projectId', t.project_id,
	'title', t.title,
	'info', COALESCE(t.info, ''),
	'groupId', t.group_id,
	'startTime', t.start_time,
	'endTime', t.end_time,
	'timeType', COALESCE(t.time_type, ''),
	'regular', COALESCE(t.regular, '{}'::jsonb),
	'ownerUserId', t.owner_user_id,
	'execEndTime', t.exec_end_time,
	'extSource', COALESCE(t.ext_source, ''),
	'extDestination', COALESCE(t.ext_destination, ''),
	'assignments', COALESCE((
		SELECT json_agg(json_build_object(
			'id', a.id, 'taskId', a.task_id, 'userId', a.user_id,
			'role', a.role, 'status', a.status) ORDER BY a.id)
		FROM task_users a
		WHERE a.task_id = t.id AND a.deleted_at IS NULL), '[]'::json),
	'ticks', COALESCE((
		SELECT json_agg(json_build_object(
			'id', k.id, 'taskId', k.task_id, 'title', k.title,
			'done', k.done, 'position', k.position) ORDER BY k.position, k.id)
		FROM task_ticks k
		WHERE k.task_id = t.id AND k.deleted_at IS NULL), '[]'::json),
	'hashtags', COALESCE((
		SELECT json_agg(json_build_object('id', h.id, 'name', h.name) ORDER BY h.name)
		FROM task_hashtags th
		JOIN hashtags h ON h.id = th.hashtag_id
		WHERE th.task_id = t.id), '[]'::json),
	'comments', COALESCE((
		SELECT json_agg(json_build_object(
			'id', c.id, 'taskId', c.task_id, 'userId', c.user_id,
			'text', c.text, 'createdAt', c.created_at,
			'files', COALESCE((
				SELECT json_agg(` + fileObject + ` ORDER BY f.id)
				FROM files f
				WHERE f.parent_type = 'comment' AND f.parent_id = c.id AND f.deleted_at IS NULL), '[]'::json)
			) ORDER BY c.id)
		FROM comments c
		WHERE c.task_id = t.id AND c.deleted_at IS NULL), '[]'::json),
	'files', COALESCE((
		SELECT json_agg(` + fileObject + ` ORDER BY f.id)
		FROM files f
		WHERE f.parent_type = 'task' AND f.parent_id = t.id AND f.deleted_at IS NULL), '[]'::json)
)
FROM tasks t
WHERE t.project_id = $2
  AND t.deleted_at IS NULL
  AND COALESCE((t.regular->>'enabled')::boolean, false) = false
  AND (
	t.owner_user_id = $1
	OR EXISTS (
		SELECT 1 FROM task_users a
		WHERE a.task_id = t.id AND a.user_id = $1 AND a.deleted_at IS NULL)
  )
  AND (
	t.exec_end_time IS NULL
	OR EXISTS (
		SELECT 1 FROM task_users a
		WHERE a.task_id = t.id AND a.user_id = $1 AND a.role = 'control'
		  AND a.deleted_at IS NULL AND a.status IS DISTINCT FROM 'control_ready')
  )
ORDER BY t.id`

// LoadTaskProjection returns the denormalized tasks of projectID visible to
// viewerID, ordered by id.
func (db *DB) LoadTaskProjection(ctx context.Context, viewerID, projectID int64) ([]*models.Task, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	start := time.Now()
	tasks, err := db.loadTaskProjection(ctx, viewerID, projectID)
	return tasks, db.observe(ctx, "load_task_projection", start, err)
}

func (db *DB) loadTaskProjection(ctx context.Context, viewerID, projectID int64) ([]*models.Task, error) {
	rows, err := db.conn.QueryContext(ctx, taskProjectionQuery, viewerID, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Task
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var t models.Task
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, fmt.Errorf("decode task projection: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
