package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/P1n3appl3/rssfetch/fetcher"
)

//go:embed schema.sql
var schemaSQL string

// Store keeps a log of fetch outcomes per run. Posts themselves are never stored.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Stats contains fetch log statistics
type Stats struct {
	Runs     int
	Fetches  int
	Failures int
	LastRun  time.Time
}

// Open initializes the fetch log database at the given path
func Open(dbPath string) (*Store, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at '%s' with %w", dbPath, err)
	}

	// Execute schema
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Record stores the outcomes of one run in a single transaction
func (s *Store) Record(ctx context.Context, outcomes []fetcher.Outcome) error {
	now := s.now().Unix()
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO runs (started_at, sources, failed) VALUES (?, ?, ?)",
		now, len(outcomes), failed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fetch_log
		(run_id, source_title, feed_url, status, entries, posts, skipped, error, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare fetch log insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range outcomes {
		var errText sql.NullString
		if o.Err != nil {
			errText = sql.NullString{String: o.Err.Error(), Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			runID, o.Source.Title, o.Source.FeedURL(), o.Status(),
			o.Entries, len(o.Posts), o.Skipped, errText, now,
		)
		if err != nil {
			return fmt.Errorf("failed to log '%s': %w", o.Source.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	slog.Debug("fetch log written", "run", runID, "sources", len(outcomes))
	return nil
}

// Stats returns fetch log statistics
func (s *Store) Stats() (Stats, error) {
	var stats Stats

	err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&stats.Runs)
	if err != nil {
		return stats, err
	}

	err = s.db.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) FROM fetch_log",
	).Scan(&stats.Fetches, &stats.Failures)
	if err != nil {
		return stats, err
	}

	var lastUnix sql.NullInt64
	err = s.db.QueryRow("SELECT MAX(started_at) FROM runs").Scan(&lastUnix)
	if err != nil && err != sql.ErrNoRows {
		return stats, err
	}
	if lastUnix.Valid && lastUnix.Int64 > 0 {
		stats.LastRun = time.Unix(lastUnix.Int64, 0)
	}

	return stats, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
