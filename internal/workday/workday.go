package workday

import (
	"sort"
	"time"

	"github.com/Superior-Josh/fish-time-pro/internal/calendar"
	"github.com/Superior-Josh/fish-time-pro/pkg/dateutil"
)

// DayKind classifies a single day of a month
type DayKind int

const (
	DayKindWorking DayKind = iota + 1
	DayKindCompensated
	DayKindHoliday
	DayKindRestDay
)

// String returns a short name for the kind
func (k DayKind) String() string {
	switch k {
	case DayKindWorking:
		return "working"
	case DayKindCompensated:
		return "compensated"
	case DayKindHoliday:
		return "holiday"
	case DayKindRestDay:
		return "rest"
	default:
		return "unknown"
	}
}

// IsWorking reports whether the kind is on the attendance schedule
func (k DayKind) IsWorking() bool {
	return k == DayKindWorking || k == DayKindCompensated
}

// RestDays is a set of ISO weekdays (1 = Monday ... 7 = Sunday)
type RestDays map[int]struct{}

// NewRestDays builds a RestDays set, ignoring values outside 1..7
func NewRestDays(days ...int) RestDays {
	set := make(RestDays, len(days))
	for _, d := range days {
		if d >= 1 && d <= 7 {
			set[d] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the ISO weekday is a rest day
func (r RestDays) Contains(weekday int) bool {
	_, ok := r[weekday]
	return ok
}

// Slice returns the weekdays in ascending order
func (r RestDays) Slice() []int {
	days := make([]int, 0, len(r))
	for d := range r {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// Aggregate summarizes the working days of a month as of today
type Aggregate struct {
	TotalWorkingDays int
	// WorkedDaysSoFar counts working days and paid holidays up to and including today
	WorkedDaysSoFar int
	// IsTodayWorkingDay is true for scheduled working days and for paid holidays
	IsTodayWorkingDay bool
	IsTodayHoliday    bool
}

// Kind classifies day of (year, month). Compensated workdays override holidays,
// holidays override the weekly rest days.
func Kind(year int, month time.Month, day int, restDays RestDays, cls calendar.MonthClassification) DayKind {
	if cls.IsCompensated(day) {
		return DayKindCompensated
	}
	if cls.IsHoliday(day) {
		return DayKindHoliday
	}

	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if restDays.Contains(dateutil.ISOWeekday(date)) {
		return DayKindRestDay
	}
	return DayKindWorking
}

// Classify returns the kind of every day of the month, index 0 being day 1
func Classify(year int, month time.Month, restDays RestDays, cls calendar.MonthClassification) []DayKind {
	daysInMonth := dateutil.DaysInMonth(year, month)

	kinds := make([]DayKind, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		kinds = append(kinds, Kind(year, month, day, restDays, cls))
	}
	return kinds
}

// Calculate derives the month aggregate for the given day of month
func Calculate(year int, month time.Month, restDays RestDays, cls calendar.MonthClassification, today int) Aggregate {
	var agg Aggregate

	for i, kind := range Classify(year, month, restDays, cls) {
		day := i + 1

		if kind.IsWorking() {
			agg.TotalWorkingDays++
		}

		// Holidays are paid, so they count toward the days worked.
		if day <= today && (kind.IsWorking() || kind == DayKindHoliday) {
			agg.WorkedDaysSoFar++
		}

		if day == today {
			agg.IsTodayHoliday = kind == DayKindHoliday
			agg.IsTodayWorkingDay = kind.IsWorking() || agg.IsTodayHoliday
		}
	}

	return agg
}
