package daemon

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Superior-Josh/fish-time-pro/internal/calendar"
	"github.com/Superior-Josh/fish-time-pro/internal/config"
	"github.com/Superior-Josh/fish-time-pro/internal/payroll"
	"github.com/Superior-Josh/fish-time-pro/internal/timemanager"
)

var holidayFeed = strings.Join([]string{
	"BEGIN:VCALENDAR",
	"BEGIN:VEVENT", "UID:h1", "DTSTART;VALUE=DATE:20251001", "SUMMARY:国庆节", "END:VEVENT",
	"END:VCALENDAR",
}, "\r\n")

type countingFetcher struct {
	mu    sync.Mutex
	calls int
}

func (f *countingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return holidayFeed, nil
}

// blockingFetcher holds every fetch until release is closed
type blockingFetcher struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newBlockingFetcher() *blockingFetcher {
	return &blockingFetcher{started: make(chan struct{}), release: make(chan struct{})}
}

func (f *blockingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.once.Do(func() { close(f.started) })
	select {
	case <-f.release:
		return holidayFeed, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type recordingSink struct {
	mu      sync.Mutex
	reports []timemanager.Report
}

func (s *recordingSink) Update(report timemanager.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Calendar.URL = "https://example.com/cn.ics"
	cfg.Daemon.TickInterval = "10ms"
	return cfg
}

func newTestDaemon(t *testing.T) (*Daemon, *recordingSink) {
	t.Helper()
	manager := timemanager.NewManager(testConfig(), &countingFetcher{}, calendar.NewMemoryCache(), zap.NewNop())
	d := NewDaemon(manager, false, zap.NewNop())
	sink := &recordingSink{}
	d.AddSink(sink)
	return d, sink
}

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.October, day, hour, minute, 0, 0, time.Local)
}

func TestDaemon_TickRefreshesStaleSnapshot(t *testing.T) {
	d, sink := newTestDaemon(t)
	ctx := context.Background()

	_, ok := d.Latest()
	assert.False(t, ok)

	d.now = func() time.Time { return at(15, 14, 45) }
	d.tick(ctx)

	report, ok := d.Latest()
	require.True(t, ok)
	assert.Equal(t, payroll.StatusAfternoonWorking, report.Status)
	assert.Equal(t, 22, report.TotalWorkingDays)
	firstComputed := d.snapshot.ComputedAt

	d.now = func() time.Time { return at(15, 14, 46) }
	d.tick(ctx)
	assert.Equal(t, firstComputed, d.snapshot.ComputedAt, "same-day tick reuses the snapshot")

	d.now = func() time.Time { return at(16, 9, 0) }
	d.tick(ctx)
	assert.Equal(t, 16, d.snapshot.Day.Day())

	report, _ = d.Latest()
	assert.Equal(t, payroll.StatusBeforeWork, report.Status)
	assert.Equal(t, 3, sink.count())
}

func TestDaemon_UpdateConfigInvalidatesSnapshot(t *testing.T) {
	d, _ := newTestDaemon(t)
	ctx := context.Background()
	d.now = func() time.Time { return at(15, 14, 45) }
	d.tick(ctx)

	cfg := testConfig()
	cfg.Work.MonthlySalary = 0
	d.UpdateConfig(cfg)

	assert.True(t, d.snapshot.ComputedAt.IsZero())

	d.tick(ctx)
	report, ok := d.Latest()
	require.True(t, ok)
	assert.Equal(t, payroll.StatusNoSalary, report.Status)
}

func TestDaemon_UpdateConfigWaitsForRunningRefresh(t *testing.T) {
	fetcher := newBlockingFetcher()
	manager := timemanager.NewManager(testConfig(), fetcher, calendar.NewMemoryCache(), zap.NewNop())
	d := NewDaemon(manager, false, zap.NewNop())
	d.now = func() time.Time { return at(15, 14, 45) }

	d.Start()
	defer d.Stop()

	select {
	case <-fetcher.started:
	case <-time.After(2 * time.Second):
		t.Fatal("initial refresh never fetched the calendar")
	}

	cfg := testConfig()
	cfg.Work.MonthlySalary = 0
	updated := make(chan struct{})
	go func() {
		d.UpdateConfig(cfg)
		close(updated)
	}()

	select {
	case <-updated:
		t.Fatal("UpdateConfig returned while a refresh was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(fetcher.release)
	select {
	case <-updated:
	case <-time.After(2 * time.Second):
		t.Fatal("UpdateConfig did not return after the refresh finished")
	}

	d.stateMu.RLock()
	snapshot := d.snapshot
	d.stateMu.RUnlock()
	if !snapshot.ComputedAt.IsZero() {
		assert.Zero(t, snapshot.Schedule.MonthlySalary, "snapshot computed under the old config survived the update")
	}
}

func TestDaemon_StopWaitsForRunningRefresh(t *testing.T) {
	fetcher := newBlockingFetcher()
	manager := timemanager.NewManager(testConfig(), fetcher, calendar.NewMemoryCache(), zap.NewNop())
	d := NewDaemon(manager, false, zap.NewNop())
	d.now = func() time.Time { return at(15, 14, 45) }
	sink := &recordingSink{}
	d.AddSink(sink)

	d.Start()
	select {
	case <-fetcher.started:
	case <-time.After(2 * time.Second):
		t.Fatal("initial refresh never fetched the calendar")
	}

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a refresh was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(fetcher.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the refresh finished")
	}

	published := sink.count()
	assert.Positive(t, published)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, published, sink.count(), "report published after Stop returned")
}

func TestDaemon_RefreshNow(t *testing.T) {
	d, sink := newTestDaemon(t)
	d.now = func() time.Time { return at(1, 12, 0) }

	report := d.RefreshNow(context.Background())

	assert.Equal(t, payroll.StatusHolidayPaid, report.Status)
	latest, ok := d.Latest()
	require.True(t, ok)
	assert.Equal(t, report, latest)
	assert.Equal(t, 1, sink.count())
}

func TestDaemon_StartStopAndFocus(t *testing.T) {
	d, sink := newTestDaemon(t)

	d.Start()
	d.Start()

	require.Eventually(t, func() bool { return sink.count() >= 3 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, d.Focused())

	d.SetFocused(false)
	assert.False(t, d.Focused())

	before := sink.count()
	require.Eventually(t, func() bool { return sink.count() > before }, 2*time.Second, 10*time.Millisecond)

	d.Stop()
	d.Stop()

	time.Sleep(30 * time.Millisecond)
	stopped := sink.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, sink.count())
}

func TestDaemon_RunStopsOnShutdown(t *testing.T) {
	d, sink := newTestDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return sink.count() > 0 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestConsoleSink_LogsStatusChanges(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := NewConsoleSink(zap.New(core))

	sink.Update(timemanager.Report{Status: payroll.StatusMorningWorking, Title: "¥ 1.00  |  1.00%"})
	sink.Update(timemanager.Report{Status: payroll.StatusMorningWorking, Title: "¥ 2.00  |  2.00%"})
	sink.Update(timemanager.Report{Status: payroll.StatusLunchBreak, Title: "¥ 2.00  |  2.00%"})

	entries := logs.FilterMessage("Status changed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, string(payroll.StatusLunchBreak), entries[1].ContextMap()["status"])
}

func TestTrayIcon(t *testing.T) {
	icon := trayIcon()

	require.Greater(t, len(icon), 22)
	assert.Equal(t, []byte{0, 0, 1, 0, 1, 0}, icon[:6])
	assert.True(t, bytes.HasPrefix(icon[22:], []byte("\x89PNG")))
}
