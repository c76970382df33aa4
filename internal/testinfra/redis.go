// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

//go:build integration

package testinfra

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DefaultRedisImage is the Redis image used by integration tests.
const DefaultRedisImage = "redis:7-alpine"

const redisPort = "6379/tcp"

// RedisContainer is a disposable Redis server.
type RedisContainer struct {
	testcontainers.Container
	URL string
}

// NewRedisContainer starts Redis without persistence.
func NewRedisContainer(ctx context.Context) (*RedisContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultRedisImage,
		ExposedPorts: []string{redisPort},
		Cmd:          []string{"redis-server", "--save", "", "--appendonly", "no"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Ready to accept connections"),
			wait.ForListeningPort(redisPort),
		).WithStartupTimeout(30 * time.Second),
	}

	container, addr, err := startContainer(ctx, req, redisPort)
	if err != nil {
		return nil, err
	}
	return &RedisContainer{Container: container, URL: "redis://" + addr + "/0"}, nil
}
