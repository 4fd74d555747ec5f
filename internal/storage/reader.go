package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var (
	// ErrRunNotFound is returned for an unknown run ID.
	ErrRunNotFound = errors.New("run not found")
	// ErrNoRuns is returned by LatestRun on an empty database.
	ErrNoRuns = errors.New("no runs recorded")
)

// Reader reads stored runs.
type Reader struct {
	db *sql.DB
}

// NewReader creates a Reader instance.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

var runColumns = []string{"id", "started_at", "finished_at", "root", "files", "methods"}

// LatestRun returns the most recently started run.
func (r *Reader) LatestRun() (*Run, error) {
	runs, err := r.ListRuns(1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}
	return &runs[0], nil
}

// GetRun returns the run with the given ID.
func (r *Reader) GetRun(id string) (*Run, error) {
	row := sq.Select(runColumns...).
		From("runs").
		Where(sq.Eq{"id": id}).
		RunWith(r.db).
		QueryRow()

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (r *Reader) ListRuns(limit int) ([]Run, error) {
	query := sq.Select(runColumns...).
		From("runs").
		OrderBy("started_at DESC", "id")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Opportunities returns the opportunities recorded in a run, ordered by file,
// method and generation order.
func (r *Reader) Opportunities(runID string, acceptedOnly bool) ([]StoredOpportunity, error) {
	query := sq.Select(
		"m.file_path", "m.name",
		"o.ordinal", "o.level", "o.start_line", "o.end_line", "o.statements", "o.accepted", "o.reason",
	).
		From("opportunities o").
		Join("methods m ON m.id = o.method_id").
		Where(sq.Eq{"m.run_id": runID}).
		OrderBy("m.file_path", "m.start_line", "o.ordinal")
	if acceptedOnly {
		query = query.Where(sq.Eq{"o.accepted": true})
	}

	rows, err := query.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query opportunities: %w", err)
	}
	defer rows.Close()

	var out []StoredOpportunity
	for rows.Next() {
		var o StoredOpportunity
		if err := rows.Scan(
			&o.FilePath, &o.Method,
			&o.Ordinal, &o.Level, &o.StartLine, &o.EndLine, &o.Statements, &o.Accepted, &o.Reason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run      Run
		started  string
		finished sql.NullString
	)
	if err := row.Scan(&run.ID, &started, &finished, &run.Root, &run.Files, &run.Methods); err != nil {
		return nil, err
	}

	t, err := time.Parse(timeLayout, started)
	if err != nil {
		return nil, fmt.Errorf("invalid started_at for run %s: %w", run.ID, err)
	}
	run.StartedAt = t

	if finished.Valid {
		t, err := time.Parse(timeLayout, finished.String)
		if err != nil {
			return nil, fmt.Errorf("invalid finished_at for run %s: %w", run.ID, err)
		}
		run.FinishedAt = &t
	}
	return &run, nil
}
