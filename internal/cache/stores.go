// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package cache

// Config controls store sizing.
type Config struct {
	// Shards is the number of lock shards per store. Zero selects
	// DefaultShards.
	Shards int
}

// Stores is the process-wide set of entity stores. It is built once at
// startup and passed to every component that reads or patches the cache.
type Stores struct {
	Users       *UserStore
	Projects    *ProjectStore
	Memberships *MembershipStore
	Tasks       *TaskIndex
}

// NewStores builds empty stores.
func NewStores(cfg Config) *Stores {
	return &Stores{
		Users:       NewUserStore(cfg.Shards),
		Projects:    NewProjectStore(cfg.Shards),
		Memberships: NewMembershipStore(cfg.Shards),
		Tasks:       NewTaskIndex(cfg.Shards),
	}
}
