package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Status represents the lifecycle of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one pipeline invocation as recorded in the journal.
type Run struct {
	ID              int64
	RunKey          string
	Decade          string
	Title           string
	Status          Status
	Encoder         string
	SegmentsTotal   int
	SegmentsSkipped int
	Fallbacks       int
	CoversBuilt     int
	EpisodePath     string
	ErrorMessage    string
	StartedAt       time.Time
	FinishedAt      *time.Time
}

// SegmentRecord is the outcome of one dialogue segment within a run.
type SegmentRecord struct {
	ID       int64
	RunID    int64
	Name     string
	Speaker  string
	Skipped  bool
	Fallback bool
	Encoder  string
	Degraded string
}

// Counters aggregates per-run totals recorded when a run finishes.
type Counters struct {
	SegmentsTotal   int
	SegmentsSkipped int
	Fallbacks       int
	CoversBuilt     int
}

// Store persists run history backed by SQLite. The journal is
// observational: callers treat its errors as warnings, and nothing in
// the render pipeline reads it back to make decisions.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// StartRun inserts a run in the running state and returns its identifier.
func (s *Store) StartRun(ctx context.Context, runKey, decade, title, encoder string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (run_key, decade, title, status, encoder, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		runKey,
		decade,
		nullableString(title),
		StatusRunning,
		nullableString(encoder),
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run finished with its episode path and totals.
func (s *Store) CompleteRun(ctx context.Context, id int64, episodePath string, counters Counters) error {
	return s.finishRun(ctx, id, StatusCompleted, episodePath, "", counters)
}

// FailRun marks a run failed, keeping whatever totals were reached.
func (s *Store) FailRun(ctx context.Context, id int64, message string, counters Counters) error {
	return s.finishRun(ctx, id, StatusFailed, "", message, counters)
}

func (s *Store) finishRun(ctx context.Context, id int64, status Status, episodePath, message string, counters Counters) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs
         SET status = ?, segments_total = ?, segments_skipped = ?, fallbacks = ?,
             covers_built = ?, episode_path = ?, error_message = ?, finished_at = ?
         WHERE id = ?`,
		status,
		counters.SegmentsTotal,
		counters.SegmentsSkipped,
		counters.Fallbacks,
		counters.CoversBuilt,
		nullableString(episodePath),
		nullableString(message),
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordSegment appends one per-segment outcome row to a run.
func (s *Store) RecordSegment(ctx context.Context, runID int64, rec SegmentRecord) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO run_segments (run_id, name, speaker, skipped, fallback, encoder, degraded)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID,
		rec.Name,
		rec.Speaker,
		boolToInt(rec.Skipped),
		boolToInt(rec.Fallback),
		nullableString(rec.Encoder),
		nullableString(rec.Degraded),
	)
	if err != nil {
		return fmt.Errorf("record segment: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches one run by identifier. A missing run returns nil.
func (s *Store) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

// Segments returns the per-segment rows for a run in insertion order.
func (s *Store) Segments(ctx context.Context, runID int64) ([]SegmentRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, name, speaker, skipped, fallback, encoder, degraded
         FROM run_segments WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list run segments: %w", err)
	}
	defer rows.Close()

	var records []SegmentRecord
	for rows.Next() {
		var (
			rec      SegmentRecord
			skipped  int
			fallback int
			encoder  sql.NullString
			degraded sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Name, &rec.Speaker, &skipped, &fallback, &encoder, &degraded); err != nil {
			return nil, err
		}
		rec.Skipped = skipped != 0
		rec.Fallback = fallback != 0
		rec.Encoder = encoder.String
		rec.Degraded = degraded.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

const runColumns = "id, run_key, decade, title, status, encoder, segments_total, segments_skipped, fallbacks, covers_built, episode_path, error_message, started_at, finished_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		title       sql.NullString
		statusStr   string
		encoder     sql.NullString
		episode     sql.NullString
		message     sql.NullString
		startedRaw  sql.NullString
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.RunKey,
		&run.Decade,
		&title,
		&statusStr,
		&encoder,
		&run.SegmentsTotal,
		&run.SegmentsSkipped,
		&run.Fallbacks,
		&run.CoversBuilt,
		&episode,
		&message,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Run{}, err
	}

	run.Title = title.String
	run.Status = Status(statusStr)
	run.Encoder = encoder.String
	run.EpisodePath = episode.String
	run.ErrorMessage = message.String
	if started, err := parseTimeString(startedRaw.String); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
