// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package assemble

import (
	"strings"

	"github.com/tomtom215/tasklane/internal/models"
)

// ScheduleOrder puts timed tasks first, ordered by start time, followed by
// all-day tasks (no start time) ordered by end time. Ids break ties.
func ScheduleOrder(a, b *models.Task) bool {
	aTimed, bTimed := a.StartTime != nil, b.StartTime != nil
	if aTimed != bTimed {
		return aTimed
	}
	if aTimed && !a.StartTime.Equal(*b.StartTime) {
		return a.StartTime.Before(*b.StartTime)
	}
	if !aTimed {
		switch {
		case a.EndTime != nil && b.EndTime != nil && !a.EndTime.Equal(*b.EndTime):
			return a.EndTime.Before(*b.EndTime)
		case (a.EndTime == nil) != (b.EndTime == nil):
			return a.EndTime != nil
		}
	}
	return a.ID < b.ID
}

// ExecutorOrder sorts by the executor's display name, case-insensitively.
func ExecutorOrder(a, b *models.Task) bool {
	an, bn := executorName(a), executorName(b)
	if an != bn {
		return an < bn
	}
	return a.ID < b.ID
}

func executorName(t *models.Task) string {
	for _, a := range t.ActiveAssignments(models.RoleExec) {
		if a.Member != nil {
			return strings.ToLower(a.Member.Name)
		}
	}
	return ""
}
