// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package service

import (
	"slices"
	"time"

	"github.com/tomtom215/tasklane/internal/models"
)

// OccursBetween reports whether t takes place in [from, to].
//
// A dated task occurs when its [start, end] interval intersects the range;
// a task with only one of the two is a point in time. A recurring task
// occurs when its rule fires on a day of the range on or after its first
// occurrence: every day, on the listed weekdays (0 is Sunday, defaulting to
// the weekday of the first occurrence), or monthly on the same day of month.
func OccursBetween(t *models.Task, from, to time.Time) bool {
	start, end, ok := interval(t)
	if !ok {
		return false
	}
	if t.Regular.Defined() {
		switch t.Regular.Rule {
		case models.RuleDay, models.RuleWeek, models.RuleMonth:
			return recursBetween(t.Regular, start, from, to)
		}
	}
	return !start.After(to) && !end.Before(from)
}

func interval(t *models.Task) (start, end time.Time, ok bool) {
	switch {
	case t.StartTime != nil && t.EndTime != nil:
		return *t.StartTime, *t.EndTime, true
	case t.StartTime != nil:
		return *t.StartTime, *t.StartTime, true
	case t.EndTime != nil:
		return *t.EndTime, *t.EndTime, true
	}
	return time.Time{}, time.Time{}, false
}

// recursBetween walks the days of [from, to] in the location of first.
func recursBetween(r models.Regular, first, from, to time.Time) bool {
	loc := first.Location()
	firstDay := midnight(first)
	day := midnight(from.In(loc))
	if day.Before(firstDay) {
		day = firstDay
	}
	last := midnight(to.In(loc))

	weekdays := r.WeekdaysList
	if len(weekdays) == 0 {
		weekdays = []int{int(first.Weekday())}
	}

	for ; !day.After(last); day = day.AddDate(0, 0, 1) {
		switch r.Rule {
		case models.RuleDay:
			return true
		case models.RuleWeek:
			if slices.Contains(weekdays, int(day.Weekday())) {
				return true
			}
		case models.RuleMonth:
			if day.Day() == first.Day() {
				return true
			}
		}
	}
	return false
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
