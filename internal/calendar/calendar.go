package calendar

import (
	"sort"
	"strings"
	"time"
)

// CompensationKeywords lists the label fragments that mark a calendar entry as a
// compensated (make-up) workday. Matching is case-insensitive substring matching.
// Extend this list when a feed uses a different wording.
var CompensationKeywords = []string{
	"补班",
	"调班",
	"上班",
	"工作日",
	"makeup workday",
	"make-up workday",
	"adjusted workday",
	"workday",
	"working day",
	"compensate",
}

// IsCompensationLabel reports whether label contains any compensation keyword
func IsCompensationLabel(label string) bool {
	lower := strings.ToLower(label)
	for _, keyword := range CompensationKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Event is a single calendar entry reduced to the fields used for day classification
type Event struct {
	// ValueDate is set when DTSTART is an all-day date (VALUE=DATE)
	ValueDate *time.Time
	// StartDate is the date part of any strictly parseable DTSTART
	StartDate *time.Time
	Label     string
	RRule     string
}

// DaySet is a set of day-of-month numbers
type DaySet map[int]struct{}

// Add adds a day to the set
func (s DaySet) Add(day int) {
	s[day] = struct{}{}
}

// Has reports whether the day is in the set
func (s DaySet) Has(day int) bool {
	_, ok := s[day]
	return ok
}

// Sorted returns the days in ascending order
func (s DaySet) Sorted() []int {
	days := make([]int, 0, len(s))
	for day := range s {
		days = append(days, day)
	}
	sort.Ints(days)
	return days
}

// MonthClassification holds the holiday and compensated-workday days of one month
type MonthClassification struct {
	Year                int
	Month               time.Month
	Holidays            DaySet
	CompensatedWorkdays DaySet
}

// NewMonthClassification returns an empty classification for the month
func NewMonthClassification(year int, month time.Month) MonthClassification {
	return MonthClassification{
		Year:                year,
		Month:               month,
		Holidays:            make(DaySet),
		CompensatedWorkdays: make(DaySet),
	}
}

// IsCompensated reports whether the day is a compensated workday
func (c MonthClassification) IsCompensated(day int) bool {
	return c.CompensatedWorkdays.Has(day)
}

// IsHoliday reports whether the day is a paid holiday.
// A day listed as a compensated workday is never a holiday.
func (c MonthClassification) IsHoliday(day int) bool {
	return c.Holidays.Has(day) && !c.CompensatedWorkdays.Has(day)
}
