package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Storage:
// - CreateSchema is idempotent and records the schema version
// - BeginRun/FinishRun round-trip a run with its totals
// - FinishRun on an unknown run returns ErrRunNotFound
// - WriteFileReport stores methods and opportunities; rewriting a file replaces it
// - Opportunities filters accepted spans and orders by file, method, ordinal
// - ListRuns is newest first and LatestRun picks the newest
// - LatestRun on an empty database returns ErrNoRuns
// - Open creates the database file and directory

func fixedClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func sampleFile(path string) *FileRecord {
	return &FileRecord{
		Path: path,
		Methods: []MethodRecord{
			{
				Name: "A.second", StartLine: 20, EndLine: 30, Statements: 4,
				Opportunities: []OpportunityRecord{
					{Ordinal: 0, Level: 0, StartLine: 21, EndLine: 22, Statements: 2, Accepted: true, Reason: "accepted"},
				},
			},
			{
				Name: "A.first", StartLine: 2, EndLine: 10, Statements: 3,
				Opportunities: []OpportunityRecord{
					{Ordinal: 0, Level: 0, StartLine: 3, EndLine: 3, Statements: 1, Accepted: true, Reason: "accepted"},
					{Ordinal: 1, Level: 1, StartLine: 3, EndLine: 9, Statements: 3, Accepted: false, Reason: "whole method body"},
				},
			},
		},
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	require.NoError(t, CreateSchema(db))

	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestWriter_RunLifecycle(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	w := NewWriter(db)
	w.now = fixedClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	r := NewReader(db)

	run, err := w.BeginRun("src")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	got, err := r.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "src", got.Root)
	assert.Nil(t, got.FinishedAt)
	assert.True(t, run.StartedAt.Equal(got.StartedAt))

	require.NoError(t, w.FinishRun(run.ID, 3, 12))
	got, err = r.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Files)
	assert.Equal(t, 12, got.Methods)
	require.NotNil(t, got.FinishedAt)
	assert.True(t, got.FinishedAt.After(got.StartedAt))

	assert.ErrorIs(t, w.FinishRun("missing", 0, 0), ErrRunNotFound)
	_, err = r.GetRun("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestWriter_FileReports(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	w := NewWriter(db)
	r := NewReader(db)

	run, err := w.BeginRun(".")
	require.NoError(t, err)

	require.NoError(t, w.WriteFileReport(run.ID, sampleFile("b/B.java")))
	require.NoError(t, w.WriteFileReport(run.ID, sampleFile("a/A.java")))
	// Rewriting replaces the earlier report of the same file.
	require.NoError(t, w.WriteFileReport(run.ID, sampleFile("a/A.java")))

	all, err := r.Opportunities(run.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 6)

	assert.Equal(t, "a/A.java", all[0].FilePath)
	assert.Equal(t, "A.first", all[0].Method)
	assert.Equal(t, 0, all[0].Ordinal)
	assert.Equal(t, "A.first", all[1].Method)
	assert.Equal(t, "whole method body", all[1].Reason)
	assert.False(t, all[1].Accepted)
	assert.Equal(t, "A.second", all[2].Method)
	assert.Equal(t, "b/B.java", all[3].FilePath)

	accepted, err := r.Opportunities(run.ID, true)
	require.NoError(t, err)
	assert.Len(t, accepted, 4)
	for _, o := range accepted {
		assert.True(t, o.Accepted)
	}
}

func TestReader_ListRuns(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	w := NewWriter(db)
	w.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	r := NewReader(db)

	_, err := r.LatestRun()
	assert.ErrorIs(t, err, ErrNoRuns)

	first, err := w.BeginRun("one")
	require.NoError(t, err)
	second, err := w.BeginRun("two")
	require.NoError(t, err)

	runs, err := r.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)

	latest, err := r.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	limited, err := r.ListRuns(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestOpen_CreatesDatabase(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "results.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, path)
	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}
