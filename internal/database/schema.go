// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
schema.go - Bootstrap Schema

Migrations are owned by the write path. This DDL creates the subset of the
relational schema the read queries touch, so integration tests and local
development can start from an empty PostgreSQL database.

Tables:
  - users, projects, project_users (memberships)
  - tasks, task_users (assignments), task_ticks, hashtags, task_hashtags
  - comments, files (polymorphic parent_type + parent_id)
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
)

// Schema is the bootstrap DDL. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL,
	timezone    TEXT,
	config      JSONB NOT NULL DEFAULT '{}',
	session_id  TEXT,
	deleted_at  TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS users_phone_idx ON users (phone) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS projects (
	id          BIGSERIAL PRIMARY KEY,
	title       TEXT NOT NULL,
	personal    BOOLEAN NOT NULL DEFAULT FALSE,
	config      JSONB NOT NULL DEFAULT '{}',
	deleted_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS project_users (
	id          BIGSERIAL PRIMARY KEY,
	project_id  BIGINT NOT NULL REFERENCES projects (id),
	user_id     BIGINT NOT NULL REFERENCES users (id),
	role        TEXT NOT NULL CHECK (role IN ('owner', 'member')),
	user_name   TEXT,
	position    TEXT,
	personal    BOOLEAN NOT NULL DEFAULT FALSE,
	config      JSONB NOT NULL DEFAULT '{}',
	deleted_at  TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS project_users_pair_idx
	ON project_users (project_id, user_id) WHERE deleted_at IS NULL;
CREATE UNIQUE INDEX IF NOT EXISTS project_users_owner_idx
	ON project_users (project_id) WHERE role = 'owner' AND deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS tasks (
	id               BIGSERIAL PRIMARY KEY,
	project_id       BIGINT NOT NULL REFERENCES projects (id),
	title            TEXT NOT NULL DEFAULT '',
	info             TEXT,
	group_id         BIGINT,
	start_time       TIMESTAMPTZ,
	end_time         TIMESTAMPTZ,
	time_type        TEXT NOT NULL DEFAULT '',
	regular          JSONB NOT NULL DEFAULT '{}',
	owner_user_id    BIGINT NOT NULL REFERENCES users (id),
	exec_end_time    TIMESTAMPTZ,
	ext_source       TEXT,
	ext_destination  TEXT,
	deleted_at       TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS tasks_project_idx ON tasks (project_id) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS task_users (
	id          BIGSERIAL PRIMARY KEY,
	task_id     BIGINT NOT NULL REFERENCES tasks (id),
	user_id     BIGINT NOT NULL REFERENCES users (id),
	role        TEXT NOT NULL CHECK (role IN ('exec', 'control')),
	status      TEXT CHECK (status IN ('exec_ready', 'control_ready')),
	deleted_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS task_users_task_idx ON task_users (task_id, user_id);

CREATE TABLE IF NOT EXISTS task_ticks (
	id          BIGSERIAL PRIMARY KEY,
	task_id     BIGINT NOT NULL REFERENCES tasks (id),
	title       TEXT NOT NULL,
	done        BOOLEAN NOT NULL DEFAULT FALSE,
	position    INTEGER NOT NULL DEFAULT 0,
	deleted_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS hashtags (
	id    BIGSERIAL PRIMARY KEY,
	name  TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS task_hashtags (
	task_id     BIGINT NOT NULL REFERENCES tasks (id),
	hashtag_id  BIGINT NOT NULL REFERENCES hashtags (id),
	PRIMARY KEY (task_id, hashtag_id)
);

CREATE TABLE IF NOT EXISTS comments (
	id          BIGSERIAL PRIMARY KEY,
	task_id     BIGINT NOT NULL REFERENCES tasks (id),
	user_id     BIGINT NOT NULL REFERENCES users (id),
	text        TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS files (
	id           BIGSERIAL PRIMARY KEY,
	parent_type  TEXT NOT NULL CHECK (parent_type IN ('task', 'comment', 'user', 'project', 'membership')),
	parent_id    BIGINT NOT NULL,
	name         TEXT NOT NULL,
	mime_type    TEXT,
	size         BIGINT NOT NULL DEFAULT 0,
	src          TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at   TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS files_parent_idx ON files (parent_type, parent_id);
`

// Bootstrap creates the schema if it does not exist.
func (db *DB) Bootstrap(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to bootstrap schema: %w", err)
	}
	return nil
}
