/*
Package sqlite persists downloaded holiday calendars so that a restart does
not have to refetch a feed that is still fresh.

The calendar_cache table holds one row per feed URL with the raw body and
the fetch time. Expiry is decided by calendar.Source, not by the store.

USAGE:

	store, err := sqlite.New("./data/fish-time.db")
	if err != nil {
		return err
	}
	defer store.Close()

	source := calendar.NewSource(fetcher, store, url, ttl, logger)
*/
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Superior-Josh/fish-time-pro/internal/calendar"
)

// Store implements calendar.Cache using SQLite.
type Store struct {
	db *sql.DB
}

var _ calendar.Cache = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS calendar_cache (
		url TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the cached calendar for url.
func (s *Store) Get(url string) (calendar.CacheEntry, bool, error) {
	var body, fetchedAt string
	err := s.db.QueryRow(
		`SELECT body, fetched_at FROM calendar_cache WHERE url = ?`, url,
	).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return calendar.CacheEntry{}, false, nil
	}
	if err != nil {
		return calendar.CacheEntry{}, false, fmt.Errorf("failed to query calendar cache: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return calendar.CacheEntry{}, false, fmt.Errorf("failed to parse fetched_at %q: %w", fetchedAt, err)
	}

	return calendar.CacheEntry{Text: body, FetchedAt: ts}, true, nil
}

// Set stores the calendar for url, replacing any previous row.
func (s *Store) Set(url string, entry calendar.CacheEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO calendar_cache (url, body, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		url, entry.Text, entry.FetchedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to store calendar cache: %w", err)
	}
	return nil
}

// Delete removes the cached calendar for url.
func (s *Store) Delete(url string) error {
	if _, err := s.db.Exec(`DELETE FROM calendar_cache WHERE url = ?`, url); err != nil {
		return fmt.Errorf("failed to delete calendar cache: %w", err)
	}
	return nil
}
