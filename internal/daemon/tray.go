//go:build windows
// +build windows

package daemon

import (
	"strings"

	"fyne.io/systray"
	"go.uber.org/zap"

	"github.com/Superior-Josh/fish-time-pro/internal/timemanager"
)

// TrayApp represents system tray application
type TrayApp struct {
	daemon *Daemon
	logger *zap.Logger
	ready  chan struct{}
}

// NewTrayApp creates a new system tray application
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return &TrayApp{
		daemon: daemon,
		logger: logger,
		ready:  make(chan struct{}),
	}, nil
}

// Run starts the system tray application (blocks until Quit)
func (t *TrayApp) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	systray.SetIcon(trayIcon())
	systray.SetTitle("Fish Time")
	systray.SetTooltip(t.daemon.manager.Config().Display.CurrencySymbol + " --")

	mRefresh := systray.AddMenuItem("Refresh Now", "Reload the holiday calendar")
	mLive := systray.AddMenuItemCheckbox("Live Updates", "Refresh every second instead of every minute", t.daemon.Focused())
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")
	close(t.ready)

	// Start daemon logic in background
	go func() {
		t.daemon.runLoop()
		systray.Quit()
	}()

	go func() {
		for {
			select {
			case <-mRefresh.ClickedCh:
				t.logger.Info("Refresh Now clicked from tray")
				go t.daemon.RefreshNow(t.daemon.ctx)
			case <-mLive.ClickedCh:
				if mLive.Checked() {
					mLive.Uncheck()
				} else {
					mLive.Check()
				}
				t.daemon.SetFocused(mLive.Checked())
			case <-mQuit.ClickedCh:
				t.logger.Info("Quit clicked from tray")
				t.daemon.Shutdown()
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// Update shows the report in the tray title and tooltip
func (t *TrayApp) Update(report timemanager.Report) {
	select {
	case <-t.ready:
	default:
		return
	}

	systray.SetTitle(report.Title)
	systray.SetTooltip(report.Title + "\n" + strings.Join(report.Tooltip, "\n"))
}
