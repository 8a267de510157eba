// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package answers persists extracted answers in a SQLite database and
// supports querying and exporting them.
package answers

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/pdiddy/answer-extract/internal/extract"
	"github.com/pdiddy/answer-extract/pkg/types"
)

const (
	extractedDir = "extracted"
	indexDir     = "index"
	dbFile       = "answers.db"
	resultSuffix = extract.ResultSuffix

	// driverName is go-sqlite3 with the casefold SQL function registered.
	driverName = "sqlite3_answers"
)

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", casefold, true)
		},
	})
}

// casefold lowercases s with Unicode rules; SQLite's lower() only folds ASCII.
func casefold(s string) string {
	return strings.ToLower(s)
}

// Store manages the answer SQLite database.
type Store struct {
	db          *sql.DB
	outputDir   string
	fixturesDir string
	maxResults  int
}

// NewStore opens or creates the answer database at
// outputDir/index/answers.db and creates the schema if it does not exist.
// fixturesDir is used by Context to reload the source generation.
func NewStore(cfg types.StoreConfig, fixturesDir string) (*Store, error) {
	dbDir := filepath.Join(cfg.OutputDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open(driverName, dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:          db,
		outputDir:   cfg.OutputDir,
		fixturesDir: fixturesDir,
		maxResults:  maxResults,
	}

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
		`CREATE TABLE IF NOT EXISTS answers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			fixture TEXT NOT NULL,
			id TEXT NOT NULL,
			question TEXT,
			marker TEXT NOT NULL,
			found INTEGER NOT NULL,
			char_offset INTEGER,
			byte_offset INTEGER,
			text TEXT,
			error TEXT,
			run_id TEXT,
			UNIQUE(fixture, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_fixture ON answers(fixture)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			fixture TEXT PRIMARY KEY,
			file_mod_time TEXT,
			run_id TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from an ingest run.
type IngestSummary struct {
	// RunID identifies the ingest run; every row written by it carries the ID.
	RunID string

	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of result files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads result files from outputDir/extracted/ and populates the
// database. Files whose modification time matches the last ingest are
// skipped; changed files replace their previous rows. When anything was
// written, export.yaml is refreshed.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	extractDir := filepath.Join(s.outputDir, extractedDir)

	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading extraction directory %s: %w", extractDir, err)
	}

	summary := IngestSummary{RunID: uuid.NewString()}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), resultSuffix) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := strings.TrimSuffix(entry.Name(), resultSuffix)
		filePath := filepath.Join(extractDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE fixture = ?`, name,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", name)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		result, err := extract.ReadResult(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if err := s.ingestFixture(ctx, name, result, modTime, summary.RunID); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d answers)\n", name, len(result.Answers))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d answers)\n", name, len(result.Answers))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestFixture(ctx context.Context, name string, result *types.ExtractionResult, modTime, runID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE fixture = ?`, name); err != nil {
		return fmt.Errorf("deleting old answers: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO answers (fixture, id, question, marker, found, char_offset, byte_offset, text, error, run_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range result.Answers {
		marker := a.Marker
		if marker == "" {
			marker = result.Marker
		}
		_, err := stmt.ExecContext(ctx,
			name, a.ID, a.Question, marker, a.Found,
			a.Offset, a.ByteOffset, a.Text, a.Error, runID,
		)
		if err != nil {
			return fmt.Errorf("inserting answer %s: %w", a.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (fixture, file_mod_time, run_id) VALUES (?, ?, ?)
		 ON CONFLICT(fixture) DO UPDATE SET file_mod_time=excluded.file_mod_time, run_id=excluded.run_id`,
		name, modTime, runID,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}
