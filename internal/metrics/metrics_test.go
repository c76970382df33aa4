// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStoreLookup(t *testing.T) {
	hits := testutil.ToFloat64(StoreLookups.WithLabelValues("user", "hit"))
	misses := testutil.ToFloat64(StoreLookups.WithLabelValues("user", "miss"))

	RecordStoreLookup("user", true)
	RecordStoreLookup("user", false)
	RecordStoreLookup("user", false)

	if got := testutil.ToFloat64(StoreLookups.WithLabelValues("user", "hit")) - hits; got != 1 {
		t.Errorf("hit delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(StoreLookups.WithLabelValues("user", "miss")) - misses; got != 2 {
		t.Errorf("miss delta = %v, want 2", got)
	}
}

func TestRecordDBQueryCountsErrors(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("get_project"))

	RecordDBQuery("get_project", 5*time.Millisecond, nil)
	RecordDBQuery("get_project", 5*time.Millisecond, errors.New("conn reset"))

	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("get_project")) - before; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

func TestRecordBusPublish(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{"success", nil, "ok"},
		{"failure", errors.New("breaker open"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(BusPublished.WithLabelValues("task", tt.result))
			RecordBusPublish("task", tt.err)
			if got := testutil.ToFloat64(BusPublished.WithLabelValues("task", tt.result)) - before; got != 1 {
				t.Errorf("delta = %v, want 1", got)
			}
		})
	}
}
