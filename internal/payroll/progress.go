package payroll

import (
	"time"

	"github.com/Superior-Josh/fish-time-pro/internal/workday"
)

// Status describes where the current moment falls relative to the workday
type Status string

const (
	StatusBeforeWork       Status = "BEFORE_WORK"
	StatusMorningWorking   Status = "MORNING_WORKING"
	StatusLunchBreak       Status = "LUNCH_BREAK"
	StatusAfternoonWorking Status = "AFTERNOON_WORKING"
	StatusOffWork          Status = "OFF_WORK"

	StatusHolidayPaid       Status = "HOLIDAY_PAID"
	StatusRestDay           Status = "REST_DAY"
	StatusZeroWorkingDays   Status = "ZERO_WORKING_DAYS"
	StatusNoSalary          Status = "NO_SALARY_CONFIGURED"
	StatusInvalidTimeConfig Status = "INVALID_TIME_CONFIG"
)

// Input is everything Compute needs to know about "now"
type Input struct {
	Bounds        Bounds
	MonthlySalary float64
	Aggregate     workday.Aggregate
	Now           time.Time
}

// PayState is the computed pay progress. Amounts are unrounded.
type PayState struct {
	Status        Status
	EarnedToday   float64
	RatioToday    float64
	MonthlyToDate float64

	DailySalary float64
	PassedWork  time.Duration
	TotalWork   time.Duration
}

// Compute returns the pay progress at in.Now
func Compute(in Input) PayState {
	agg := in.Aggregate
	st := PayState{TotalWork: in.Bounds.TotalWork()}

	if agg.TotalWorkingDays > 0 && in.MonthlySalary > 0 {
		st.DailySalary = in.MonthlySalary / float64(agg.TotalWorkingDays)
	}

	switch {
	case agg.IsTodayHoliday && agg.TotalWorkingDays > 0:
		st.Status = StatusHolidayPaid
		st.EarnedToday = st.DailySalary
		st.RatioToday = 1
	case !agg.IsTodayWorkingDay:
		st.Status = StatusRestDay
	case agg.TotalWorkingDays <= 0:
		st.Status = StatusZeroWorkingDays
	case in.MonthlySalary <= 0:
		st.Status = StatusNoSalary
	case st.TotalWork <= 0:
		st.Status = StatusInvalidTimeConfig
	default:
		st.Status, st.PassedWork = position(in.Bounds, in.Now)
		st.RatioToday = clamp01(float64(st.PassedWork) / float64(st.TotalWork))
		if st.Status == StatusOffWork {
			st.EarnedToday = st.DailySalary
		} else {
			st.EarnedToday = st.DailySalary * st.RatioToday
		}
	}

	if st.DailySalary > 0 {
		if agg.IsTodayWorkingDay && !agg.IsTodayHoliday {
			st.MonthlyToDate = float64(agg.WorkedDaysSoFar-1)*st.DailySalary + st.EarnedToday
		} else {
			st.MonthlyToDate = float64(agg.WorkedDaysSoFar) * st.DailySalary
		}
	}

	return st
}

// position returns the status at now and the work time elapsed so far.
// Both window boundaries are inclusive.
func position(b Bounds, now time.Time) (Status, time.Duration) {
	switch {
	case now.Before(b.MorningStart):
		return StatusBeforeWork, 0
	case !now.After(b.MorningEnd):
		return StatusMorningWorking, now.Sub(b.MorningStart)
	case now.Before(b.AfternoonStart):
		return StatusLunchBreak, b.MorningWork()
	case !now.After(b.AfternoonEnd):
		return StatusAfternoonWorking, b.MorningWork() + now.Sub(b.AfternoonStart)
	default:
		return StatusOffWork, b.TotalWork()
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
