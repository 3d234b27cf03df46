package daemon

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Superior-Josh/fish-time-pro/internal/config"
	"github.com/Superior-Josh/fish-time-pro/internal/payroll"
	"github.com/Superior-Josh/fish-time-pro/internal/timemanager"
)

// Daemon runs the two periodic tasks: a low-frequency calendar refresh
// scheduled with cron and a high-frequency ticker that recomputes pay
// progress from the latest snapshot.
type Daemon struct {
	manager    *timemanager.Manager
	systemTray bool
	logger     *zap.Logger
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex // guards the task state below
	running    bool
	focused    bool
	cron       *cron.Cron
	tickCancel context.CancelFunc
	tickDone   chan struct{}
	startup    sync.WaitGroup // immediate refresh launched by startLocked

	refreshMu sync.Mutex // one refresh at a time

	stateMu   sync.RWMutex
	snapshot  payroll.Snapshot
	latest    timemanager.Report
	hasLatest bool
	sinks     []Sink
}

// NewDaemon creates a new daemon instance. It starts focused.
func NewDaemon(manager *timemanager.Manager, systemTray bool, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		manager:    manager,
		systemTray: systemTray,
		logger:     logger,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		focused:    true,
	}
}

// AddSink registers a receiver for every computed report
func (d *Daemon) AddSink(sink Sink) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	d.sinks = append(d.sinks, sink)
}

// Run starts the daemon and blocks until it is stopped or the process is
// interrupted. With a system tray the tray owns the main loop.
func (d *Daemon) Run(ctx context.Context) error {
	d.ctx, d.cancel = context.WithCancel(ctx)

	if d.systemTray {
		d.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(d, d.logger)
		if err != nil {
			d.logger.Warn("Failed to initialize system tray", zap.Error(err))
			return d.runConsole()
		}
		d.AddSink(trayApp)
		// Run tray (blocks until Quit)
		trayApp.Run()
		return nil
	}

	d.logger.Info("Running without system tray")
	return d.runConsole()
}

func (d *Daemon) runConsole() error {
	d.AddSink(NewConsoleSink(d.logger))
	d.runLoop()
	return nil
}

// runLoop starts the tasks and waits for shutdown (called from tray or standalone)
func (d *Daemon) runLoop() {
	d.Start()
	defer d.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-d.ctx.Done():
		d.logger.Info("Daemon stopped")
	case sig := <-sigChan:
		d.logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		d.Shutdown()
	}
}

// Shutdown ends Run
func (d *Daemon) Shutdown() {
	d.cancel()
}

// Start starts both periodic tasks. The refresh task runs once immediately.
func (d *Daemon) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}
	d.startLocked()
}

// Stop stops both periodic tasks
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}
	d.stopLocked()
}

// Focused reports whether the daemon uses the focused refresh interval
func (d *Daemon) Focused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focused
}

// SetFocused switches between the focused and blurred refresh intervals,
// restarting both tasks
func (d *Daemon) SetFocused(focused bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.focused == focused {
		return
	}
	d.focused = focused
	d.logger.Info("Focus changed", zap.Bool("focused", focused))

	if d.running {
		d.stopLocked()
		d.startLocked()
	}
}

// UpdateConfig applies a new configuration, drops the current snapshot and
// restarts both tasks
func (d *Daemon) UpdateConfig(cfg *config.Config) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Refreshes still running under the old configuration must finish before
	// the snapshot is dropped, or they would store a stale one.
	running := d.running
	if running {
		d.stopLocked()
	}

	d.manager.UpdateConfig(cfg)

	d.stateMu.Lock()
	d.snapshot = payroll.Snapshot{}
	d.stateMu.Unlock()

	if running {
		d.startLocked()
	}
}

// RefreshNow runs the low-frequency task once and returns the resulting report
func (d *Daemon) RefreshNow(ctx context.Context) timemanager.Report {
	return d.refresh(ctx)
}

// Latest returns the most recently computed report
func (d *Daemon) Latest() (timemanager.Report, bool) {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.latest, d.hasLatest
}

func (d *Daemon) startLocked() {
	daemonCfg := d.manager.Config().Daemon
	interval := daemonCfg.GetRefreshInterval()
	if !d.focused {
		interval = daemonCfg.GetBlurredRefreshInterval()
	}
	tickInterval := daemonCfg.GetTickInterval()

	logger := newCronLogger(d.logger)
	d.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	d.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		d.refresh(d.ctx)
	}))
	d.cron.Start()

	d.startup.Add(1)
	go func() {
		defer d.startup.Done()
		d.refresh(d.ctx)
	}()

	tickCtx, cancel := context.WithCancel(d.ctx)
	d.tickCancel = cancel
	d.tickDone = make(chan struct{})
	go d.tickLoop(tickCtx, tickInterval, d.tickDone)

	d.running = true
	d.logger.Info("Daemon tasks started",
		zap.Bool("focused", d.focused),
		zap.Duration("refresh_interval", interval),
		zap.Duration("tick_interval", tickInterval))
}

// stopLocked returns once no refresh started by the tasks is still running
func (d *Daemon) stopLocked() {
	<-d.cron.Stop().Done()
	d.startup.Wait()
	d.tickCancel()
	<-d.tickDone
	d.running = false
	d.logger.Debug("Daemon tasks stopped")
}

func (d *Daemon) tickLoop(ctx context.Context, interval time.Duration, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

// tick recomputes pay progress from the snapshot, refreshing it first when
// it does not describe today
func (d *Daemon) tick(ctx context.Context) {
	now := d.now()

	d.stateMu.RLock()
	snapshot := d.snapshot
	d.stateMu.RUnlock()

	if !snapshot.ValidAt(now) {
		d.refresh(ctx)
		return
	}
	d.publish(snapshot, now)
}

func (d *Daemon) refresh(ctx context.Context) timemanager.Report {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	now := d.now()
	snapshot := d.manager.Refresh(ctx, now)

	d.stateMu.Lock()
	d.snapshot = snapshot
	d.stateMu.Unlock()

	return d.publish(snapshot, now)
}

func (d *Daemon) publish(snapshot payroll.Snapshot, now time.Time) timemanager.Report {
	report := d.manager.Report(snapshot, now)

	d.stateMu.Lock()
	d.latest = report
	d.hasLatest = true
	sinks := d.sinks
	d.stateMu.Unlock()

	for _, sink := range sinks {
		sink.Update(report)
	}
	return report
}
