package daemon

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Superior-Josh/fish-time-pro/internal/payroll"
	"github.com/Superior-Josh/fish-time-pro/internal/timemanager"
)

// Sink receives every report the daemon computes
type Sink interface {
	Update(report timemanager.Report)
}

// ConsoleSink logs status transitions
type ConsoleSink struct {
	logger *zap.Logger

	mu         sync.Mutex
	lastStatus payroll.Status
	lastTitle  string
}

// NewConsoleSink creates a new ConsoleSink
func NewConsoleSink(logger *zap.Logger) *ConsoleSink {
	return &ConsoleSink{logger: logger}
}

// Update logs the report when its status or title changed
func (s *ConsoleSink) Update(report timemanager.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if report.Status != s.lastStatus {
		s.logger.Info("Status changed",
			zap.String("status", string(report.Status)),
			zap.String("text", report.StatusText),
			zap.String("title", report.Title),
			zap.Int("next_rest_day", report.NextRestDay),
			zap.String("calendar_status", report.CalendarStatus))
		s.lastStatus = report.Status
	}

	if report.Title != s.lastTitle {
		s.logger.Debug("Pay progress", zap.String("title", report.Title))
		s.lastTitle = report.Title
	}
}
