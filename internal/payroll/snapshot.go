package payroll

import (
	"time"

	"github.com/Superior-Josh/fish-time-pro/internal/workday"
	"github.com/Superior-Josh/fish-time-pro/pkg/dateutil"
)

// Snapshot holds the slow-changing inputs of Compute for one day so that
// frequent recomputation does not have to reload the calendar.
type Snapshot struct {
	Day         time.Time
	Schedule    Schedule
	Aggregate   workday.Aggregate
	NextRestDay int
	// CalendarStatus is non-empty when the holiday calendar could not be loaded
	CalendarStatus string
	ComputedAt     time.Time
}

// Bounds returns the work windows of the snapshot's day
func (s Snapshot) Bounds() Bounds {
	return s.Schedule.BoundsOn(s.Day)
}

// ValidAt reports whether the snapshot describes the day now falls on
func (s Snapshot) ValidAt(now time.Time) bool {
	return !s.ComputedAt.IsZero() && dateutil.IsSameDay(s.Day, now)
}

// Compute returns the pay progress at now using the snapshot's aggregate
func (s Snapshot) Compute(now time.Time) PayState {
	return Compute(Input{
		Bounds:        s.Bounds(),
		MonthlySalary: s.Schedule.MonthlySalary,
		Aggregate:     s.Aggregate,
		Now:           now,
	})
}
