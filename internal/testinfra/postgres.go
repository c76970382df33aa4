// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultPostgresImage is the PostgreSQL image used by integration tests.
	DefaultPostgresImage = "postgres:16-alpine"

	postgresPort     = "5432/tcp"
	postgresUser     = "tasklane"
	postgresPassword = "tasklane"
	postgresDB       = "tasklane"
)

// PostgresContainer is a disposable PostgreSQL server.
type PostgresContainer struct {
	testcontainers.Container
	// URL is a pgx connection string for the test database.
	URL string
}

// NewPostgresContainer starts PostgreSQL and waits until it accepts
// connections. The entrypoint restarts the server once after init, so the
// ready line must appear twice.
func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultPostgresImage,
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(postgresPort),
		).WithStartupTimeout(60 * time.Second),
	}

	container, addr, err := startContainer(ctx, req, postgresPort)
	if err != nil {
		return nil, err
	}
	return &PostgresContainer{
		Container: container,
		URL:       fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", postgresUser, postgresPassword, addr, postgresDB),
	}, nil
}
