// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

// Package testinfra starts PostgreSQL and Redis in Docker for integration
// tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/testinfra/...
//
// Tests skip when Docker is not available. Images are pulled on first run.
//
//	pg, err := testinfra.NewPostgresContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	testinfra.CleanupContainer(t, pg)
//
//	db, err := database.New(&config.DatabaseConfig{URL: pg.URL, QueryTimeout: 5 * time.Second})
package testinfra
