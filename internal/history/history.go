package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/tj/go-naturaldate"
)

// DefaultQueryLimit caps query results when the caller does not set one
const DefaultQueryLimit = 20

// Play is one recorded playback start
type Play struct {
	ID        int64
	Track     string
	StartedAt time.Time
	Duration  time.Duration
}

// TrackCount aggregates plays per track
type TrackCount struct {
	Track string
	Plays int
}

// QueryFilter narrows history queries
type QueryFilter struct {
	Since string // Natural language lower bound ("yesterday", "2 days ago")
	Track string // Filter by exact track path
	Limit int    // Maximum results (default DefaultQueryLimit)
}

// Store records and queries playback history in SQLite
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the history database at dbPath
func NewStore(dbPath string) (*Store, error) {
	slog.Debug("opening play history store", "path", dbPath)

	db, err := openDatabase(dbPath)
	if err != nil {
		slog.Error("failed to open play history store", "path", dbPath, "error", err)
		return nil, err
	}

	slog.Info("play history store opened", "path", dbPath)
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordPlay records one playback start with the track's probed duration
func (s *Store) RecordPlay(track string, startedAt time.Time, duration time.Duration) error {
	if track == "" {
		return fmt.Errorf("track cannot be empty")
	}

	_, err := s.db.Exec(
		"INSERT INTO plays (track, started_at, duration_ms) VALUES (?, ?, ?)",
		track, startedAt.Unix(), duration.Milliseconds(),
	)
	if err != nil {
		slog.Error("failed to record play", "track", track, "error", err)
		return fmt.Errorf("failed to record play: %w", err)
	}

	slog.Debug("play recorded", "track", track, "started_at", startedAt, "duration", duration)
	return nil
}

// RecentPlays returns plays matching the filter, newest first
func (s *Store) RecentPlays(filter QueryFilter) ([]Play, error) {
	query := "SELECT id, track, started_at, duration_ms FROM plays"
	var args []any
	var conds []string

	since, err := s.resolveSince(filter.Since)
	if err != nil {
		return nil, err
	}
	if !since.IsZero() {
		conds = append(conds, "started_at >= ?")
		args = append(args, since.Unix())
	}
	if filter.Track != "" {
		conds = append(conds, "track = ?")
		args = append(args, filter.Track)
	}

	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	query += " ORDER BY started_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		slog.Error("history query failed", "error", err)
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		var p Play
		var startedUnix, durationMs int64
		if err := rows.Scan(&p.ID, &p.Track, &startedUnix, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		p.StartedAt = time.Unix(startedUnix, 0)
		p.Duration = time.Duration(durationMs) * time.Millisecond
		plays = append(plays, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plays: %w", err)
	}

	slog.Debug("history query completed", "results", len(plays))
	return plays, nil
}

// TopTracks returns the most-played tracks matching the filter
func (s *Store) TopTracks(filter QueryFilter) ([]TrackCount, error) {
	query := "SELECT track, COUNT(*) AS plays FROM plays"
	var args []any

	since, err := s.resolveSince(filter.Since)
	if err != nil {
		return nil, err
	}
	if !since.IsZero() {
		query += " WHERE started_at >= ?"
		args = append(args, since.Unix())
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	query += " GROUP BY track ORDER BY plays DESC, track ASC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top tracks: %w", err)
	}
	defer rows.Close()

	var counts []TrackCount
	for rows.Next() {
		var tc TrackCount
		if err := rows.Scan(&tc.Track, &tc.Plays); err != nil {
			return nil, fmt.Errorf("failed to scan track count: %w", err)
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

// resolveSince parses a natural language lower bound ("yesterday", "3 days
// ago"); empty input means no bound
func (s *Store) resolveSince(since string) (time.Time, error) {
	if since == "" {
		return time.Time{}, nil
	}

	result, err := naturaldate.Parse(since, s.now(), naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		slog.Warn("failed to parse natural language date", "input", since, "error", err)
		return time.Time{}, fmt.Errorf("failed to parse date '%s': %w", since, err)
	}

	slog.Debug("parsed natural language date", "input", since, "result", result)
	return result, nil
}
