// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package service

import (
	"context"
	"errors"

	"github.com/tomtom215/tasklane/internal/cache"
	"github.com/tomtom215/tasklane/internal/database"
	"github.com/tomtom215/tasklane/internal/materialize"
	"github.com/tomtom215/tasklane/internal/models"
)

// ErrUserNotFound is returned when no active user matches.
var ErrUserNotFound = errors.New("user not found")

// UserSource reads users from the authoritative store.
type UserSource interface {
	GetUserByPhone(ctx context.Context, phone string) (models.User, error)
}

// UserLoader places users in the user store.
type UserLoader interface {
	EnsureUser(ctx context.Context, userID int64) (models.User, error)
	PutUser(ctx context.Context, u models.User) error
}

// Users serves profile reads.
type Users struct {
	stores *cache.Stores
	source UserSource
	loader UserLoader
}

// NewUsers creates the profile read service.
func NewUsers(stores *cache.Stores, source UserSource, loader UserLoader) *Users {
	return &Users{stores: stores, source: source, loader: loader}
}

// Get returns a user by id.
func (s *Users) Get(ctx context.Context, id int64) (models.User, error) {
	u, err := s.loader.EnsureUser(ctx, id)
	if materialize.IsStale(err) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if u.Deleted() {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

// ByPhone returns the active user with phone, from the phone index first.
func (s *Users) ByPhone(ctx context.Context, phone string) (models.User, error) {
	if u, ok := s.stores.Users.ByPhone(phone); ok && !u.Deleted() {
		return u, nil
	}

	u, err := s.source.GetUserByPhone(ctx, phone)
	if errors.Is(err, database.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if err := s.loader.PutUser(ctx, u); err != nil {
		return models.User{}, err
	}
	stored, _ := s.stores.Users.Get(u.ID)
	return stored, nil
}
