// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry records every extraction call of a conversion run in a
// SQLite database under the work directory. The registry makes result
// directories discoverable after the fact and lets a run be resumed from a
// prior extraction instead of re-calling the service.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "extractions.db"

// Status values for an extraction record.
const (
	StatusPending  = "pending"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Extraction is one recorded extraction call.
type Extraction struct {
	// ID is the extraction identifier (also the result directory name).
	ID string

	// ParentID is the extraction this one was recursed from, empty for
	// page-level extractions.
	ParentID string

	// PageIndex is the page the extraction belongs to.
	PageIndex int

	// Depth is the recursion depth of the call.
	Depth int

	// Dir is the normalized result directory.
	Dir string

	// Status is pending, complete, or failed.
	Status string

	// CreatedAt is when the call was recorded.
	CreatedAt time.Time
}

// Store manages the extraction registry database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the registry database under workDir.
func Open(workDir string) (*Store, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}

	dbPath := filepath.Join(workDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening registry database: %w", err)
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
		`CREATE TABLE IF NOT EXISTS extractions (
			id TEXT PRIMARY KEY,
			parent_id TEXT,
			page_idx INTEGER NOT NULL,
			depth INTEGER NOT NULL,
			dir TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_extractions_page ON extractions(page_idx)`,
		`CREATE INDEX IF NOT EXISTS idx_extractions_parent ON extractions(parent_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts a new extraction in pending status.
func (s *Store) Record(ctx context.Context, e Extraction) error {
	status := e.Status
	if status == "" {
		status = StatusPending
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO extractions (id, parent_id, page_idx, depth, dir, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ParentID, e.PageIndex, e.Depth, e.Dir, status,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording extraction %s: %w", e.ID, err)
	}
	return nil
}

// SetStatus transitions an extraction to a new status.
func (s *Store) SetStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE extractions SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating extraction %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update of %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("extraction %s not found", id)
	}
	return nil
}

// Get returns one extraction by identifier.
func (s *Store) Get(ctx context.Context, id string) (*Extraction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, parent_id, page_idx, depth, dir, status, created_at
		 FROM extractions WHERE id = ?`, id)

	e, err := scanExtraction(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("extraction %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading extraction %s: %w", id, err)
	}
	return e, nil
}

// List returns all extractions ordered by page then depth then creation.
func (s *Store) List(ctx context.Context) ([]Extraction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, parent_id, page_idx, depth, dir, status, created_at
		 FROM extractions ORDER BY page_idx, depth, created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing extractions: %w", err)
	}
	defer rows.Close()

	var out []Extraction
	for rows.Next() {
		e, err := scanExtraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning extraction: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// WriteTable prints the registry contents as aligned columns.
func (s *Store) WriteTable(ctx context.Context, w io.Writer) error {
	extractions, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(extractions) == 0 {
		fmt.Fprintln(w, "no extractions recorded")
		return nil
	}

	fmt.Fprintf(w, "%-10s %-10s %5s %5s %-9s %s\n", "ID", "PARENT", "PAGE", "DEPTH", "STATUS", "DIR")
	for _, e := range extractions {
		parent := e.ParentID
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(w, "%-10s %-10s %5d %5d %-9s %s\n",
			e.ID, parent, e.PageIndex, e.Depth, e.Status, e.Dir)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExtraction(row rowScanner) (*Extraction, error) {
	var e Extraction
	var createdAt string
	if err := row.Scan(&e.ID, &e.ParentID, &e.PageIndex, &e.Depth, &e.Dir, &e.Status, &createdAt); err != nil {
		return nil, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		e.CreatedAt = ts
	}
	return &e, nil
}
