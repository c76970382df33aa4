// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package assemble

import (
	"errors"
	"testing"
	"testing/quick"
	"time"

	"github.com/tomtom215/tasklane/internal/cache"
	"github.com/tomtom215/tasklane/internal/models"
)

type nopDenormalizer struct{ calls int }

func (d *nopDenormalizer) Denormalize(*models.Task) error {
	d.calls++
	return nil
}

func all(*models.Task) bool { return true }

func makeTasks(n int) []*models.Task {
	out := make([]*models.Task, n)
	for i := range out {
		out[i] = &models.Task{ID: int64(i + 1), ProjectID: 1, OwnerUserID: 1}
	}
	return out
}

func TestSelectBucketHasMore(t *testing.T) {
	d := &nopDenormalizer{}
	page, err := SelectBucket(makeTasks(3), all, Window{Offset: 0, Limit: 2}, d)
	if err != nil {
		t.Fatalf("SelectBucket() err = %v", err)
	}
	if len(page.ResultList) != 2 || page.EndOfList {
		t.Errorf("got %d tasks, endOfList=%v; want 2, false", len(page.ResultList), page.EndOfList)
	}
	if d.calls != 2 {
		t.Errorf("denormalized %d tasks, want 2", d.calls)
	}
}

func TestSelectBucketWindows(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		offset   int
		limit    int
		wantIDs  []int64
		wantLast bool
	}{
		{"exact fit", 2, 0, 2, []int64{1, 2}, true},
		{"second page", 5, 2, 2, []int64{3, 4}, false},
		{"last partial page", 5, 4, 2, []int64{5}, true},
		{"offset past end", 3, 10, 2, nil, true},
		{"empty bucket", 0, 0, 5, nil, true},
		{"negative offset", 3, -1, 5, []int64{1, 2, 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := SelectBucket(makeTasks(tt.n), all, Window{Offset: tt.offset, Limit: tt.limit}, &nopDenormalizer{})
			if err != nil {
				t.Fatalf("SelectBucket() err = %v", err)
			}
			if page.ResultList == nil {
				t.Fatal("ResultList is nil, want empty slice")
			}
			if len(page.ResultList) != len(tt.wantIDs) {
				t.Fatalf("got %d tasks, want %d", len(page.ResultList), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if page.ResultList[i].ID != id {
					t.Errorf("ResultList[%d].ID = %d, want %d", i, page.ResultList[i].ID, id)
				}
			}
			if page.EndOfList != tt.wantLast {
				t.Errorf("EndOfList = %v, want %v", page.EndOfList, tt.wantLast)
			}
		})
	}
}

func TestSelectBucketPagesPartitionBucket(t *testing.T) {
	prop := func(size, offset, limit uint8) bool {
		n, off, lim := int(size%50), int(offset%60), int(limit%20)+1
		// Keep only even ids so the predicate does real work.
		tasks := makeTasks(n * 2)
		even := func(t *models.Task) bool { return t.ID%2 == 0 }

		page, err := SelectBucket(tasks, even, Window{Offset: off, Limit: lim}, &nopDenormalizer{})
		if err != nil {
			return false
		}
		got := len(page.ResultList)
		return got <= lim && page.EndOfList == (off+got >= n)
	}
	if err := quick.Check(prop, &quick.Config{MaxCount: 1000}); err != nil {
		t.Error(err)
	}
}

func TestSelectBucketSortsAfterDenormalize(t *testing.T) {
	stores := cache.NewStores(cache.Config{Shards: 2})
	stores.Users.Put(models.User{ID: 1, Name: "Owner"})
	stores.Users.Put(models.User{ID: 2, Name: "zed"})
	stores.Users.Put(models.User{ID: 3, Name: "Amy"})
	stores.Memberships.Put(models.Membership{ID: 1, ProjectID: 1, UserID: 1, Role: models.RoleOwner})
	stores.Memberships.Put(models.Membership{ID: 2, ProjectID: 1, UserID: 2, Role: models.RoleMember})
	stores.Memberships.Put(models.Membership{ID: 3, ProjectID: 1, UserID: 3, Role: models.RoleMember, UserName: "bob"})

	tasks := []*models.Task{
		{ID: 1, ProjectID: 1, OwnerUserID: 1, Assignments: []models.Assignment{{UserID: 2, Role: models.RoleExec}}},
		{ID: 2, ProjectID: 1, OwnerUserID: 1, Assignments: []models.Assignment{{UserID: 3, Role: models.RoleExec}}},
	}

	page, err := SelectBucket(tasks, all, Window{Limit: 10, Sort: ExecutorOrder}, NewMemberResolver(stores))
	if err != nil {
		t.Fatalf("SelectBucket() err = %v", err)
	}
	if page.ResultList[0].ID != 2 || page.ResultList[1].ID != 1 {
		t.Errorf("order = [%d %d], want [2 1]", page.ResultList[0].ID, page.ResultList[1].ID)
	}
	if got := page.ResultList[0].Assignments[0].Member.Name; got != "bob" {
		t.Errorf("membership name override = %q, want bob", got)
	}
	if got := page.ResultList[0].OwnUser; got == nil || got.Role != models.RoleOwner || got.Name != "Owner" {
		t.Errorf("OwnUser = %+v", got)
	}
}

func TestSelectBucketMissingMembershipFails(t *testing.T) {
	stores := cache.NewStores(cache.Config{Shards: 2})
	stores.Users.Put(models.User{ID: 1, Name: "Owner"})
	stores.Memberships.Put(models.Membership{ID: 1, ProjectID: 1, UserID: 1, Role: models.RoleOwner})

	tasks := []*models.Task{
		{ID: 1, ProjectID: 1, OwnerUserID: 1, Assignments: []models.Assignment{{UserID: 9, Role: models.RoleExec}}},
	}
	_, err := SelectBucket(tasks, all, Window{Limit: 10}, NewMemberResolver(stores))
	if !errors.Is(err, cache.ErrNotFoundInCache) {
		t.Fatalf("err = %v, want ErrNotFoundInCache", err)
	}
}

func TestMemberResolverIconFallback(t *testing.T) {
	stores := cache.NewStores(cache.Config{})
	stores.Users.Put(models.User{ID: 1, Name: "Ann", Config: models.UserConfig{IconSrc: "/u.png"}})
	stores.Users.Put(models.User{ID: 2, Name: "Ben", Config: models.UserConfig{IconSrc: "/u2.png"}})
	stores.Memberships.Put(models.Membership{ID: 1, ProjectID: 4, UserID: 1, Position: "Lead"})
	stores.Memberships.Put(models.Membership{ID: 2, ProjectID: 4, UserID: 2, Config: models.MembershipConfig{IconSrc: "/m.png"}})

	r := NewMemberResolver(stores)
	ann, err := r.Member(4, 1)
	if err != nil {
		t.Fatal(err)
	}
	if ann.IconSrc != "/u.png" || ann.Position != "Lead" || ann.Name != "Ann" {
		t.Errorf("Member(4, 1) = %+v", ann)
	}
	ben, err := r.Member(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if ben.IconSrc != "/m.png" {
		t.Errorf("Member(4, 2).IconSrc = %q, want /m.png", ben.IconSrc)
	}

	if _, err := r.Member(5, 1); !errors.Is(err, cache.ErrNotFoundInCache) {
		t.Errorf("Member(5, 1) err = %v", err)
	}
}

func TestScheduleOrder(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	at := func(h int) *time.Time {
		ts := base.Add(time.Duration(h) * time.Hour)
		return &ts
	}
	tasks := []*models.Task{
		{ID: 1, EndTime: at(10)}, // all-day
		{ID: 2, StartTime: at(3), EndTime: at(4)},
		{ID: 3, StartTime: at(1), EndTime: at(2)},
		{ID: 4, EndTime: at(5)}, // all-day, earlier deadline
		{ID: 5, StartTime: at(1), EndTime: at(6)},
	}

	page, err := SelectBucket(tasks, all, Window{Limit: 10, Sort: ScheduleOrder}, &nopDenormalizer{})
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{3, 5, 2, 4, 1}
	for i, id := range want {
		if page.ResultList[i].ID != id {
			t.Fatalf("position %d = task %d, want %d", i, page.ResultList[i].ID, id)
		}
	}
}
