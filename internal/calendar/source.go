package calendar

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultCacheTTL = 24 * time.Hour

// LoadResult is the outcome of loading calendar text
type LoadResult struct {
	Text      string
	FromCache bool
	// Status is a short human-readable message set when the calendar could not be loaded
	Status string
}

// Source loads calendar text through a TTL-checked cache.
// Concurrent loads may fetch redundantly; the last write wins.
type Source struct {
	fetcher  Fetcher
	cache    Cache
	url      string
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewSource creates a new Source
func NewSource(fetcher Fetcher, cache Cache, url string, cacheTTL time.Duration, logger *zap.Logger) *Source {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	return &Source{
		fetcher:  fetcher,
		cache:    cache,
		url:      url,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Load returns the calendar text, fetching it when the cached copy is missing or expired.
// Failures yield empty text and a status message; they are never returned as errors.
func (s *Source) Load(ctx context.Context, now time.Time) LoadResult {
	if s.url == "" {
		return LoadResult{Status: "holiday calendar not configured"}
	}

	entry, ok, err := s.cache.Get(s.url)
	if err != nil {
		s.logger.Warn("Failed to read calendar cache", zap.Error(err))
		ok = false
	}
	if ok && now.Sub(entry.FetchedAt) < s.cacheTTL {
		s.logger.Debug("Using cached holiday calendar",
			zap.Time("fetched_at", entry.FetchedAt))
		return LoadResult{Text: entry.Text, FromCache: true}
	}

	text, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		s.logger.Warn("Failed to fetch holiday calendar, continuing without it",
			zap.String("url", s.url),
			zap.Error(err))
		return LoadResult{Status: "holiday calendar unavailable: " + err.Error()}
	}

	if err := s.cache.Set(s.url, CacheEntry{Text: text, FetchedAt: now}); err != nil {
		s.logger.Warn("Failed to store calendar cache", zap.Error(err))
	}

	return LoadResult{Text: text}
}
