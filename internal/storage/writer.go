package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// Writer records analysis runs.
type Writer struct {
	db  *sql.DB
	now func() time.Time
}

// NewWriter creates a Writer instance.
// DB must have schema already created via CreateSchema().
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db, now: time.Now}
}

// BeginRun records the start of a run and returns it with a fresh ID.
func (w *Writer) BeginRun(root string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: w.now().UTC(),
		Root:      root,
	}

	_, err := sq.Insert("runs").
		Columns("id", "started_at", "root").
		Values(run.ID, run.StartedAt.Format(timeLayout), run.Root).
		RunWith(w.db).
		Exec()
	if err != nil {
		return nil, fmt.Errorf("failed to begin run: %w", err)
	}
	return run, nil
}

// WriteFileReport stores the methods of one file and their opportunities in
// a single transaction. Rewriting a file within the same run replaces it.
func (w *Writer) WriteFileReport(runID string, file *FileRecord) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := sq.Delete("methods").
		Where(sq.Eq{"run_id": runID, "file_path": file.Path}).
		RunWith(tx).
		Exec(); err != nil {
		return fmt.Errorf("failed to clear methods for %s: %w", file.Path, err)
	}

	for _, m := range file.Methods {
		res, err := sq.Insert("methods").
			Columns("run_id", "file_path", "name", "start_line", "end_line", "statements").
			Values(runID, file.Path, m.Name, m.StartLine, m.EndLine, m.Statements).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert method %s: %w", m.Name, err)
		}
		methodID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read method id: %w", err)
		}

		if len(m.Opportunities) == 0 {
			continue
		}
		insert := sq.Insert("opportunities").
			Columns("method_id", "ordinal", "level", "start_line", "end_line", "statements", "accepted", "reason")
		for _, o := range m.Opportunities {
			insert = insert.Values(methodID, o.Ordinal, o.Level, o.StartLine, o.EndLine, o.Statements, o.Accepted, o.Reason)
		}
		if _, err := insert.RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("failed to insert opportunities of %s: %w", m.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit file report: %w", err)
	}
	return nil
}

// FinishRun records the end of a run with its totals.
func (w *Writer) FinishRun(runID string, files, methods int) error {
	res, err := sq.Update("runs").
		Set("finished_at", w.now().UTC().Format(timeLayout)).
		Set("files", files).
		Set("methods", methods).
		Where(sq.Eq{"id": runID}).
		RunWith(w.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}
