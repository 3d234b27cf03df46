package calendar

import (
	"time"

	"github.com/teambition/rrule-go"
)

// occurrenceDays returns the days of (year, month) on which an entry dated
// date falls, expanding rule when present. A rule that fails to parse leaves
// only the entry's own date.
func occurrenceDays(date *time.Time, rule string, year int, month time.Month) []int {
	if date == nil {
		return nil
	}

	if rule != "" {
		if days, ok := expandDays(*date, rule, year, month); ok {
			return days
		}
	}

	if date.Year() == year && date.Month() == month {
		return []int{date.Day()}
	}
	return nil
}

func expandDays(start time.Time, rule string, year int, month time.Month) ([]int, bool) {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, false
	}
	r.DTStart(start)

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	days := make([]int, 0)
	for _, occ := range r.Between(monthStart, monthEnd, true) {
		if occ.Year() == year && occ.Month() == month {
			days = append(days, occ.Day())
		}
	}
	return days, true
}
