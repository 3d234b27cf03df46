package payroll

import (
	"time"

	"github.com/Superior-Josh/fish-time-pro/pkg/dateutil"
)

const lastMinuteOfDay = 24*60 - 1

// Schedule is the daily work-time layout and the monthly salary.
// Times are minutes since midnight.
type Schedule struct {
	MorningStart   int
	MorningEnd     int
	AfternoonStart int
	AfternoonEnd   int
	MonthlySalary  float64
}

// Normalize clamps every time into the day and pushes each boundary to be no
// earlier than the one before it. A negative salary becomes zero.
func (s Schedule) Normalize() Schedule {
	s.MorningStart = clampMinute(s.MorningStart)
	s.MorningEnd = max(clampMinute(s.MorningEnd), s.MorningStart)
	s.AfternoonStart = max(clampMinute(s.AfternoonStart), s.MorningEnd)
	s.AfternoonEnd = max(clampMinute(s.AfternoonEnd), s.AfternoonStart)
	if s.MonthlySalary < 0 {
		s.MonthlySalary = 0
	}
	return s
}

// BoundsOn returns the four boundaries as moments on the given day
func (s Schedule) BoundsOn(day time.Time) Bounds {
	return Bounds{
		MorningStart:   dateutil.AtMinute(day, s.MorningStart),
		MorningEnd:     dateutil.AtMinute(day, s.MorningEnd),
		AfternoonStart: dateutil.AtMinute(day, s.AfternoonStart),
		AfternoonEnd:   dateutil.AtMinute(day, s.AfternoonEnd),
	}
}

func clampMinute(m int) int {
	if m < 0 {
		return 0
	}
	if m > lastMinuteOfDay {
		return lastMinuteOfDay
	}
	return m
}

// Bounds are the work-window boundaries of one concrete day
type Bounds struct {
	MorningStart   time.Time
	MorningEnd     time.Time
	AfternoonStart time.Time
	AfternoonEnd   time.Time
}

// MorningWork returns the length of the morning window
func (b Bounds) MorningWork() time.Duration {
	return b.MorningEnd.Sub(b.MorningStart)
}

// TotalWork returns the combined length of both windows
func (b Bounds) TotalWork() time.Duration {
	return b.MorningWork() + b.AfternoonEnd.Sub(b.AfternoonStart)
}
