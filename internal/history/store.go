package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/routelens/routelens/internal/model"
)

// ErrNotEnoughRuns is returned by CompareLatest when fewer than two runs
// are stored for the requested route.
var ErrNotEnoughRuns = errors.New("not enough stored runs to compare")

// Store provides SQLite-based storage for completed run reports.
// It manages connection pooling and provides methods for saving,
// listing, and comparing runs.
//
// Design decision: We use a single database file for all routes rather
// than one file per route. This keeps cross-route listing a single query
// and simplifies backup/restore operations.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store at the specified directory.
// If CreateIfNotExists is true, the directory and database file are
// created; otherwise a missing database is an error.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, "routelens.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check history database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	// modernc.org/sqlite connection strings: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Runs store one row per completed analysis run. Outcome counts are
	-- denormalized into columns so listing and comparison never parse
	-- the report document.
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		route_label TEXT NOT NULL,
		vehicle_class TEXT NOT NULL,
		generated_at DATETIME NOT NULL,
		distance_km REAL NOT NULL,
		section_count INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		cancelled INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_route ON runs(route_label);
	CREATE INDEX IF NOT EXISTS idx_runs_generated ON runs(generated_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is the stored metadata of one run, used for listing and
// comparison without loading the full report document.
type RunRecord struct {
	// ID is the row identifier in the database.
	ID int64

	// RunID is the report's unique run identifier.
	RunID string

	// RouteLabel is the "from -> to" label of the analyzed route.
	RouteLabel string

	// VehicleClass is the vehicle class the run analyzed.
	VehicleClass string

	// GeneratedAt is when the run completed.
	GeneratedAt time.Time

	// DistanceKM is the analyzed route length.
	DistanceKM float64

	// SectionCount is the number of sections the run produced.
	SectionCount int

	// Succeeded, Failed, and Skipped are the provider outcome counts.
	Succeeded int
	Failed    int
	Skipped   int

	// Cancelled reports whether the run was aborted.
	Cancelled bool
}

// SaveRun stores a completed run report.
func (s *Store) SaveRun(ctx context.Context, report *model.RouteReport) error {
	doc, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO runs (run_id, route_label, vehicle_class, generated_at,
		distance_km, section_count, succeeded, failed, skipped, cancelled, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	cancelled := 0
	if report.Cancelled {
		cancelled = 1
	}

	_, err = s.db.ExecContext(ctx, query,
		report.RunID,
		report.RouteLabel(),
		string(report.VehicleClass),
		report.GeneratedAt.UTC().Format(time.RFC3339),
		report.DistanceKM,
		report.Summary.SectionCount,
		report.Summary.Succeeded(),
		report.Summary.Failed(),
		report.Summary.Skipped(),
		cancelled,
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// ListRuns returns stored runs newest first, optionally filtered by
// route label. A limit of 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, routeLabel string, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, run_id, route_label, vehicle_class, generated_at,
		distance_km, section_count, succeeded, failed, skipped, cancelled
	FROM runs
	`
	args := make([]any, 0, 2)
	if routeLabel != "" {
		query += " WHERE route_label = ?"
		args = append(args, routeLabel)
	}
	query += " ORDER BY generated_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var generatedAt string
		var cancelled int
		if err := rows.Scan(
			&rec.ID,
			&rec.RunID,
			&rec.RouteLabel,
			&rec.VehicleClass,
			&generatedAt,
			&rec.DistanceKM,
			&rec.SectionCount,
			&rec.Succeeded,
			&rec.Failed,
			&rec.Skipped,
			&cancelled,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		rec.GeneratedAt = parseTimestamp(generatedAt)
		rec.Cancelled = cancelled != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ReportJSON returns the stored report document for a run ID.
func (s *Store) ReportJSON(ctx context.Context, runID string) (string, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT report_json FROM runs WHERE run_id = ?", runID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no stored run with id %s", runID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load run document: %w", err)
	}
	return doc, nil
}

// Comparison is the outcome delta between the two most recent runs.
type Comparison struct {
	// Newer and Older are the compared runs.
	Newer RunRecord
	Older RunRecord

	// SectionDelta is newer minus older section counts.
	SectionDelta int

	// SucceededDelta is newer minus older succeeded-provider counts.
	SucceededDelta int

	// FailedDelta is newer minus older failed-provider counts.
	FailedDelta int
}

// CompareLatest compares the two most recent runs, optionally filtered
// by route label. Returns ErrNotEnoughRuns when fewer than two runs are
// stored.
func (s *Store) CompareLatest(ctx context.Context, routeLabel string) (*Comparison, error) {
	records, err := s.ListRuns(ctx, routeLabel, 2)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, ErrNotEnoughRuns
	}

	newer, older := records[0], records[1]
	return &Comparison{
		Newer:          newer,
		Older:          older,
		SectionDelta:   newer.SectionCount - older.SectionCount,
		SucceededDelta: newer.Succeeded - older.Succeeded,
		FailedDelta:    newer.Failed - older.Failed,
	}, nil
}

// timestampFormats contains the timestamp formats that SQLite may
// return. The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending
// on configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
