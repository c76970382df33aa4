// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package triage

import (
	"fmt"
	"time"

	"github.com/tomtom215/tasklane/internal/models"
)

// Bucket is a UI container. Buckets are mutually exclusive.
type Bucket string

const (
	BucketInboxNew    Bucket = "inbox-new"
	BucketInboxToExec Bucket = "inbox-toexec"
	BucketSchedule    Bucket = "schedule"
	BucketOverdue     Bucket = "overdue"
	BucketLater       Bucket = "later"
	BucketExecutor    Bucket = "executor"
)

// Buckets lists every bucket.
var Buckets = []Bucket{
	BucketInboxNew, BucketInboxToExec, BucketSchedule,
	BucketOverdue, BucketLater, BucketExecutor,
}

// ParseBucket converts a URL path segment to a Bucket.
func ParseBucket(s string) (Bucket, error) {
	for _, b := range Buckets {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown bucket %q", s)
}

// Match returns a predicate selecting the tasks that classify into b for
// viewerID at now.
func Match(b Bucket, viewerID int64, now time.Time) func(*models.Task) bool {
	return func(t *models.Task) bool {
		return Classify(t, viewerID, now).Bucket() == b
	}
}
