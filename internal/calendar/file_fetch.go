package calendar

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FileFetcher reads calendar text from a local .ics file
type FileFetcher struct {
	logger *zap.Logger
}

// NewFileFetcher creates a new FileFetcher
func NewFileFetcher(logger *zap.Logger) *FileFetcher {
	return &FileFetcher{logger: logger}
}

// Fetch reads the file named by location, either a plain path or a file:// URL
func (f *FileFetcher) Fetch(ctx context.Context, location string) (string, error) {
	path := location
	if strings.HasPrefix(location, "file://") {
		u, err := url.Parse(location)
		if err != nil {
			return "", fmt.Errorf("failed to parse calendar location: %w", err)
		}
		path = u.Path
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, maxCalendarBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read calendar file: %w", err)
	}

	f.logger.Debug("Holiday calendar loaded from file",
		zap.String("path", path),
		zap.Int("bytes", len(body)))

	return string(body), nil
}

// SchemeFetcher sends http(s) locations to an HTTP fetcher and everything
// else to a file fetcher
type SchemeFetcher struct {
	http Fetcher
	file Fetcher
}

// NewFetcher creates the default Fetcher for configured calendar locations
func NewFetcher(timeout time.Duration, logger *zap.Logger) *SchemeFetcher {
	return &SchemeFetcher{
		http: NewHTTPFetcher(timeout, logger),
		file: NewFileFetcher(logger),
	}
}

// Fetch retrieves the calendar at location
func (f *SchemeFetcher) Fetch(ctx context.Context, location string) (string, error) {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return f.http.Fetch(ctx, location)
	}
	return f.file.Fetch(ctx, location)
}
