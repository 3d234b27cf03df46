package timemanager

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Superior-Josh/fish-time-pro/internal/calendar"
	"github.com/Superior-Josh/fish-time-pro/internal/config"
	"github.com/Superior-Josh/fish-time-pro/internal/display"
	"github.com/Superior-Josh/fish-time-pro/internal/payroll"
	"github.com/Superior-Josh/fish-time-pro/internal/workday"
	"github.com/Superior-Josh/fish-time-pro/pkg/dateutil"
)

// Report is a computed pay progress together with its display texts
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Status      payroll.Status `json:"status"`
	StatusText  string         `json:"status_text"`

	EarnedToday   float64 `json:"earned_today"`
	RatioToday    float64 `json:"ratio_today"`
	MonthlyToDate float64 `json:"monthly_to_date"`
	DailySalary   float64 `json:"daily_salary"`

	TotalWorkingDays  int  `json:"total_working_days"`
	WorkedDaysSoFar   int  `json:"worked_days_so_far"`
	IsTodayWorkingDay bool `json:"is_today_working_day"`
	IsTodayHoliday    bool `json:"is_today_holiday"`
	NextRestDay       int  `json:"next_rest_day"`

	CalendarStatus string   `json:"calendar_status,omitempty"`
	Title          string   `json:"title"`
	Tooltip        []string `json:"tooltip"`
}

// MonthView is the classification of every day of one month
type MonthView struct {
	Year           int
	Month          time.Month
	Kinds          []workday.DayKind
	Aggregate      workday.Aggregate
	CalendarStatus string
}

// Manager turns configuration and the holiday calendar into pay progress
type Manager struct {
	mu        sync.RWMutex
	config    *config.Config
	source    *calendar.Source
	presenter *display.Presenter

	fetcher calendar.Fetcher
	cache   calendar.Cache
	logger  *zap.Logger
}

// NewManager creates a new time manager
func NewManager(cfg *config.Config, fetcher calendar.Fetcher, cache calendar.Cache, logger *zap.Logger) *Manager {
	m := &Manager{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
	}
	m.UpdateConfig(cfg)
	return m
}

// UpdateConfig replaces the configuration used by later refreshes
func (m *Manager) UpdateConfig(cfg *config.Config) {
	source := calendar.NewSource(m.fetcher, m.cache, cfg.Calendar.URL, cfg.Calendar.GetCacheTTL(), m.logger)
	presenter := display.NewPresenter(cfg.Display.CurrencySymbol, cfg.Display.Locale)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = cfg
	m.source = source
	m.presenter = presenter
}

// Config returns the configuration in use
func (m *Manager) Config() *config.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *Manager) current() (*config.Config, *calendar.Source, *display.Presenter) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config, m.source, m.presenter
}

// Refresh loads the calendar and derives the slow-changing inputs for today
func (m *Manager) Refresh(ctx context.Context, now time.Time) payroll.Snapshot {
	cfg, source, _ := m.current()

	loaded := source.Load(ctx, now)
	year, month, day := now.Date()
	cls := calendar.Parse(loaded.Text, year, month)
	restDays := cfg.Work.RestDaySet()

	snapshot := payroll.Snapshot{
		Day:            dateutil.StartOfDay(now),
		Schedule:       cfg.Work.Schedule(),
		Aggregate:      workday.Calculate(year, month, restDays, cls, day),
		NextRestDay:    workday.NextRestDay(now, restDays, cls, loaded.Text),
		CalendarStatus: loaded.Status,
		ComputedAt:     now,
	}

	m.logger.Debug("Snapshot refreshed",
		zap.Time("day", snapshot.Day),
		zap.Bool("from_cache", loaded.FromCache),
		zap.Ints("holidays", cls.Holidays.Sorted()),
		zap.Ints("compensated_workdays", cls.CompensatedWorkdays.Sorted()),
		zap.Int("total_working_days", snapshot.Aggregate.TotalWorkingDays),
		zap.Int("worked_days_so_far", snapshot.Aggregate.WorkedDaysSoFar),
		zap.Int("next_rest_day", snapshot.NextRestDay))

	return snapshot
}

// Report computes the pay progress at now from a snapshot
func (m *Manager) Report(snapshot payroll.Snapshot, now time.Time) Report {
	_, _, presenter := m.current()

	st := snapshot.Compute(now)
	view := presenter.Render(snapshot, st, now)
	agg := snapshot.Aggregate

	return Report{
		GeneratedAt:       now,
		Status:            st.Status,
		StatusText:        display.StatusText(st.Status),
		EarnedToday:       st.EarnedToday,
		RatioToday:        st.RatioToday,
		MonthlyToDate:     st.MonthlyToDate,
		DailySalary:       st.DailySalary,
		TotalWorkingDays:  agg.TotalWorkingDays,
		WorkedDaysSoFar:   agg.WorkedDaysSoFar,
		IsTodayWorkingDay: agg.IsTodayWorkingDay,
		IsTodayHoliday:    agg.IsTodayHoliday,
		NextRestDay:       snapshot.NextRestDay,
		CalendarStatus:    snapshot.CalendarStatus,
		Title:             view.Title,
		Tooltip:           view.Tooltip,
	}
}

// Status refreshes and reports in one step
func (m *Manager) Status(ctx context.Context, now time.Time) Report {
	return m.Report(m.Refresh(ctx, now), now)
}

// Month classifies every day of (year, month). The aggregate only counts
// worked days when the month is the one now falls in.
func (m *Manager) Month(ctx context.Context, now time.Time, year int, month time.Month) MonthView {
	cfg, source, _ := m.current()

	loaded := source.Load(ctx, now)
	cls := calendar.Parse(loaded.Text, year, month)
	restDays := cfg.Work.RestDaySet()

	// Months already over count every working day as worked
	today := 0
	requested := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	switch {
	case requested.Equal(current):
		today = now.Day()
	case requested.Before(current):
		today = dateutil.DaysInMonth(year, month)
	}

	return MonthView{
		Year:           year,
		Month:          month,
		Kinds:          workday.Classify(year, month, restDays, cls),
		Aggregate:      workday.Calculate(year, month, restDays, cls, today),
		CalendarStatus: loaded.Status,
	}
}
