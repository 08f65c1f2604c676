package reporting

import (
	"slices"
	"time"
)

// FilterByDay keeps the rows whose date falls on day in loc. Input order is
// preserved and the input slice is never modified. A zero day keeps every row.
// Rows with an unparseable date never match a selected day.
func FilterByDay[R any](rows []R, day Date, loc *time.Location, dateOf func(R) string) []R {
	if day.IsZero() {
		return slices.Clone(rows)
	}
	out := make([]R, 0, len(rows))
	for _, row := range rows {
		t, ok := ParseTimestamp(dateOf(row), loc)
		if ok && DateOf(t) == day {
			out = append(out, row)
		}
	}
	return out
}

// FilterByMonth keeps the rows whose date falls in month in loc. It follows
// the same ordering and purity rules as FilterByDay.
func FilterByMonth[R any](rows []R, month Month, loc *time.Location, dateOf func(R) string) []R {
	if month.IsZero() {
		return slices.Clone(rows)
	}
	out := make([]R, 0, len(rows))
	for _, row := range rows {
		t, ok := ParseTimestamp(dateOf(row), loc)
		if ok && MonthOf(t) == month {
			out = append(out, row)
		}
	}
	return out
}
