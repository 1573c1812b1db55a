// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists conversion records in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

const (
	dbFile       = "pdfconverter.db"
	defaultLimit = 20
	exportLimit  = 100000
)

// ErrNotFound is returned by Get for an unknown ID.
var ErrNotFound = errors.New("conversion not found")

// Store manages the conversion history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at dir/pdfconverter.db and
// creates the schema if it does not exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id TEXT PRIMARY KEY,
			file_name TEXT NOT NULL,
			file_size INTEGER NOT NULL,
			format TEXT NOT NULL,
			analyzer TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			output_name TEXT,
			output_size INTEGER,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_started ON conversions(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts rec, replacing any existing record with the same ID.
func (s *Store) Record(ctx context.Context, rec types.ConversionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("record has no ID")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO conversions
			(id, file_name, file_size, format, analyzer, status, error, output_name, output_size, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.FileName, rec.FileSize, string(rec.Format), rec.Analyzer, string(rec.Status),
		rec.Error, rec.OutputName, rec.OutputSize,
		formatTime(rec.StartedAt), formatTime(rec.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting conversion %s: %w", rec.ID, err)
	}
	return nil
}

const selectColumns = `SELECT id, file_name, file_size, format, analyzer, status,
	COALESCE(error, ''), COALESCE(output_name, ''), COALESCE(output_size, 0), started_at, finished_at
	FROM conversions`

// Get returns the record with the given ID.
func (s *Store) Get(ctx context.Context, id string) (types.ConversionRecord, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ConversionRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return types.ConversionRecord{}, err
	}
	return rec, nil
}

// List returns up to limit records, newest first. A limit of zero or less
// uses the default of 20.
func (s *Store) List(ctx context.Context, limit int) ([]types.ConversionRecord, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying conversions: %w", err)
	}
	defer rows.Close()

	var out []types.ConversionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Export writes every record to w as YAML or JSON.
func (s *Store) Export(ctx context.Context, w io.Writer, format string) error {
	recs, err := s.List(ctx, exportLimit)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if recs == nil {
		recs = []types.ConversionRecord{}
	}

	var data []byte
	switch format {
	case "yaml", "yml", "":
		data, err = yaml.Marshal(recs)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	case "json":
		data, err = json.MarshalIndent(recs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown export format %q (want yaml or json)", format)
	}
	_, err = w.Write(data)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (types.ConversionRecord, error) {
	var (
		rec                   types.ConversionRecord
		format, status        string
		startedAt, finishedAt string
	)
	if err := sc.Scan(
		&rec.ID, &rec.FileName, &rec.FileSize, &format, &rec.Analyzer, &status,
		&rec.Error, &rec.OutputName, &rec.OutputSize, &startedAt, &finishedAt,
	); err != nil {
		return types.ConversionRecord{}, err
	}
	rec.Format = types.OutputFormat(format)
	rec.Status = types.ConversionStatus(status)

	var err error
	if rec.StartedAt, err = parseTime(startedAt); err != nil {
		return types.ConversionRecord{}, fmt.Errorf("parsing started_at of %s: %w", rec.ID, err)
	}
	if rec.FinishedAt, err = parseTime(finishedAt); err != nil {
		return types.ConversionRecord{}, fmt.Errorf("parsing finished_at of %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Times are stored as fixed-width UTC strings so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
