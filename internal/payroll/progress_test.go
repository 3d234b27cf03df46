package payroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Superior-Josh/fish-time-pro/internal/calendar"
	"github.com/Superior-Josh/fish-time-pro/internal/workday"
)

const epsilon = 1e-9

func defaultSchedule() Schedule {
	return Schedule{
		MorningStart:   10 * 60,
		MorningEnd:     11*60 + 30,
		AfternoonStart: 13*60 + 30,
		AfternoonEnd:   18 * 60,
		MonthlySalary:  20450,
	}
}

// wednesday is 15 October 2025; the month has 23 working days and
// 11 of them have been reached by the 15th.
var wednesday = time.Date(2025, time.October, 15, 0, 0, 0, 0, time.Local)

func workingAggregate() workday.Aggregate {
	return workday.Aggregate{
		TotalWorkingDays:  23,
		WorkedDaysSoFar:   11,
		IsTodayWorkingDay: true,
	}
}

func computeAt(agg workday.Aggregate, s Schedule, hour, minute int) PayState {
	now := time.Date(2025, time.October, 15, hour, minute, 0, 0, time.Local)
	return Compute(Input{
		Bounds:        s.BoundsOn(wednesday),
		MonthlySalary: s.MonthlySalary,
		Aggregate:     agg,
		Now:           now,
	})
}

func TestCompute_Positions(t *testing.T) {
	daily := 20450.0 / 23

	tests := []struct {
		name       string
		hour, min  int
		wantStatus Status
		wantPassed time.Duration
	}{
		{"before work", 9, 0, StatusBeforeWork, 0},
		{"morning start inclusive", 10, 0, StatusMorningWorking, 0},
		{"mid morning", 10, 45, StatusMorningWorking, 45 * time.Minute},
		{"morning end inclusive", 11, 30, StatusMorningWorking, 90 * time.Minute},
		{"lunch break frozen", 12, 15, StatusLunchBreak, 90 * time.Minute},
		{"afternoon start inclusive", 13, 30, StatusAfternoonWorking, 90 * time.Minute},
		{"mid afternoon", 14, 45, StatusAfternoonWorking, 165 * time.Minute},
		{"after work", 20, 0, StatusOffWork, 360 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := computeAt(workingAggregate(), defaultSchedule(), tt.hour, tt.min)

			assert.Equal(t, tt.wantStatus, st.Status)
			assert.Equal(t, tt.wantPassed, st.PassedWork)
			assert.Equal(t, 360*time.Minute, st.TotalWork)
			assert.InDelta(t, daily, st.DailySalary, epsilon)

			wantRatio := float64(tt.wantPassed) / float64(360*time.Minute)
			assert.InDelta(t, wantRatio, st.RatioToday, epsilon)
			assert.InDelta(t, daily*wantRatio, st.EarnedToday, 1e-6)
		})
	}
}

func TestCompute_BeforeWorkScenario(t *testing.T) {
	st := computeAt(workingAggregate(), defaultSchedule(), 9, 0)

	assert.Equal(t, StatusBeforeWork, st.Status)
	assert.Zero(t, st.EarnedToday)
	assert.InDelta(t, 10*(20450.0/23), st.MonthlyToDate, 1e-6)
}

func TestCompute_AfternoonScenario(t *testing.T) {
	st := computeAt(workingAggregate(), defaultSchedule(), 14, 45)

	assert.Equal(t, StatusAfternoonWorking, st.Status)
	assert.Equal(t, 165*time.Minute, st.PassedWork)
	assert.InDelta(t, 0.4583, st.RatioToday, 1e-4)
	assert.InDelta(t, 10*st.DailySalary+st.EarnedToday, st.MonthlyToDate, 1e-6)
}

func TestCompute_AfternoonEndBoundary(t *testing.T) {
	s := defaultSchedule()
	bounds := s.BoundsOn(wednesday)
	in := Input{Bounds: bounds, MonthlySalary: s.MonthlySalary, Aggregate: workingAggregate()}

	in.Now = bounds.AfternoonEnd
	atEnd := Compute(in)
	assert.Equal(t, StatusAfternoonWorking, atEnd.Status)
	assert.Equal(t, 1.0, atEnd.RatioToday)

	in.Now = bounds.AfternoonEnd.Add(time.Millisecond)
	after := Compute(in)
	assert.Equal(t, StatusOffWork, after.Status)
	assert.Equal(t, after.DailySalary, after.EarnedToday)
	assert.Equal(t, 1.0, after.RatioToday)
}

func TestCompute_HolidayPaid(t *testing.T) {
	agg := workday.Aggregate{
		TotalWorkingDays:  21,
		WorkedDaysSoFar:   2,
		IsTodayWorkingDay: true,
		IsTodayHoliday:    true,
	}

	for _, hour := range []int{8, 11, 15, 22} {
		st := computeAt(agg, defaultSchedule(), hour, 0)

		assert.Equal(t, StatusHolidayPaid, st.Status)
		assert.Equal(t, 20450.0/21, st.EarnedToday)
		assert.Equal(t, 1.0, st.RatioToday)
		assert.InDelta(t, 2*(20450.0/21), st.MonthlyToDate, 1e-6)
	}
}

func TestCompute_RestDay(t *testing.T) {
	agg := workday.Aggregate{TotalWorkingDays: 23, WorkedDaysSoFar: 3}

	st := computeAt(agg, defaultSchedule(), 14, 0)

	assert.Equal(t, StatusRestDay, st.Status)
	assert.Zero(t, st.EarnedToday)
	assert.Zero(t, st.RatioToday)
	assert.InDelta(t, 3*(20450.0/23), st.MonthlyToDate, 1e-6)
}

func TestCompute_DegeneratePriority(t *testing.T) {
	broken := defaultSchedule()
	broken.MorningEnd = broken.MorningStart
	broken.AfternoonEnd = broken.AfternoonStart

	noSalary := defaultSchedule()
	noSalary.MonthlySalary = 0

	tests := []struct {
		name     string
		agg      workday.Aggregate
		schedule Schedule
		want     Status
	}{
		{"rest day wins over zero days", workday.Aggregate{}, noSalary, StatusRestDay},
		{"zero working days", workday.Aggregate{IsTodayWorkingDay: true}, noSalary, StatusZeroWorkingDays},
		{"holiday without working days", workday.Aggregate{IsTodayWorkingDay: true, IsTodayHoliday: true, WorkedDaysSoFar: 1}, defaultSchedule(), StatusZeroWorkingDays},
		{"no salary", workingAggregate(), noSalary, StatusNoSalary},
		{"empty work windows", workingAggregate(), broken, StatusInvalidTimeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := computeAt(tt.agg, tt.schedule, 14, 0)

			assert.Equal(t, tt.want, st.Status)
			assert.Zero(t, st.EarnedToday)
			assert.Zero(t, st.RatioToday)
		})
	}
}

func TestCompute_HolidayWithoutSalary(t *testing.T) {
	noSalary := defaultSchedule()
	noSalary.MonthlySalary = 0
	agg := workday.Aggregate{
		TotalWorkingDays:  20,
		WorkedDaysSoFar:   1,
		IsTodayWorkingDay: true,
		IsTodayHoliday:    true,
	}

	st := computeAt(agg, noSalary, 14, 0)

	assert.Equal(t, StatusHolidayPaid, st.Status)
	assert.Zero(t, st.DailySalary)
	assert.Zero(t, st.EarnedToday)
	assert.Equal(t, 1.0, st.RatioToday)
	assert.Zero(t, st.MonthlyToDate)
}

func TestCompute_BoundedAndMonotonic(t *testing.T) {
	s := defaultSchedule()
	bounds := s.BoundsOn(wednesday)
	in := Input{Bounds: bounds, MonthlySalary: s.MonthlySalary, Aggregate: workingAggregate()}

	prev := -1.0
	for now := wednesday; now.Before(wednesday.AddDate(0, 0, 1)); now = now.Add(30 * time.Second) {
		in.Now = now
		st := Compute(in)

		require.GreaterOrEqual(t, st.RatioToday, 0.0)
		require.LessOrEqual(t, st.RatioToday, 1.0)
		require.GreaterOrEqual(t, st.EarnedToday, 0.0)
		require.LessOrEqual(t, st.EarnedToday, st.DailySalary)
		require.GreaterOrEqual(t, st.EarnedToday, prev, "earned decreased at %s", now.Format("15:04:05"))

		if st.Status == StatusLunchBreak {
			require.Equal(t, prev, st.EarnedToday, "earned moved during lunch at %s", now.Format("15:04:05"))
		}
		prev = st.EarnedToday
	}
}

func TestCompute_MonthRoundTrip(t *testing.T) {
	s := defaultSchedule()
	cls := calendar.NewMonthClassification(2025, time.October)
	rest := workday.NewRestDays(6, 7)

	var last PayState
	var lastAgg workday.Aggregate
	for day := 1; day <= 31; day++ {
		date := time.Date(2025, time.October, day, 0, 0, 0, 0, time.Local)
		agg := workday.Calculate(2025, time.October, rest, cls, day)

		st := Compute(Input{
			Bounds:        s.BoundsOn(date),
			MonthlySalary: s.MonthlySalary,
			Aggregate:     agg,
			Now:           date.Add(23 * time.Hour),
		})

		assert.InDelta(t, float64(agg.WorkedDaysSoFar)*st.DailySalary, st.MonthlyToDate, 1e-6, "day %d", day)
		last, lastAgg = st, agg
	}

	assert.Equal(t, lastAgg.TotalWorkingDays, lastAgg.WorkedDaysSoFar)
	assert.InDelta(t, s.MonthlySalary, last.MonthlyToDate, 1e-6)
}

func TestSchedule_Normalize(t *testing.T) {
	s := Schedule{
		MorningStart:   -30,
		MorningEnd:     -10,
		AfternoonStart: 500,
		AfternoonEnd:   3000,
		MonthlySalary:  -1,
	}.Normalize()

	assert.Equal(t, Schedule{MorningStart: 0, MorningEnd: 0, AfternoonStart: 500, AfternoonEnd: 1439}, s)

	inverted := Schedule{MorningStart: 700, MorningEnd: 600, AfternoonStart: 500, AfternoonEnd: 400, MonthlySalary: 100}.Normalize()
	assert.Equal(t, Schedule{MorningStart: 700, MorningEnd: 700, AfternoonStart: 700, AfternoonEnd: 700, MonthlySalary: 100}, inverted)
}

func TestSnapshot(t *testing.T) {
	snap := Snapshot{
		Day:        wednesday,
		Schedule:   defaultSchedule(),
		Aggregate:  workingAggregate(),
		ComputedAt: wednesday.Add(9 * time.Hour),
	}

	now := wednesday.Add(14*time.Hour + 45*time.Minute)
	assert.True(t, snap.ValidAt(now))
	assert.False(t, snap.ValidAt(now.AddDate(0, 0, 1)))
	assert.False(t, Snapshot{}.ValidAt(now))

	fromSnapshot := snap.Compute(now)
	fromScratch := computeAt(workingAggregate(), defaultSchedule(), 14, 45)
	assert.Equal(t, fromScratch, fromSnapshot)
}
