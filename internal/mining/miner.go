// Package mining builds an Extract Method dataset from a refactoring corpus.
//
// For every commit that contains the configured refactoring type, the miner
// clones the repository, locates the changed class and saves its source after
// the commit and before it, each checked to parse as Java:
//
//	<output>/<id>/<Class>_after.java
//	<output>/<id>/<Class>_before.java
package mining

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mvp-joe/semi/internal/git"
	"github.com/mvp-joe/semi/internal/javaparse"
)

var (
	// ErrNoClass is returned for a description that names no class.
	ErrNoClass = errors.New("description names no class")
	// ErrNoHistory is returned when the commit is not in the repository history.
	ErrNoHistory = errors.New("commit not found in history")
	// ErrNoParent is returned when the commit has no older commit to diff against.
	ErrNoParent = errors.New("commit has no parent in history")
	// ErrFileNotFound is returned when no file changed by the commit matches the class.
	ErrFileNotFound = errors.New("no changed file matches class")
	// ErrUnparsable is returned when a saved version is not valid Java.
	ErrUnparsable = errors.New("source does not parse")
)

// Options configures a Miner.
type Options struct {
	ReposDir        string
	OutputDir       string
	RefactoringType string
	// Jobs bounds the number of records mined at once. Values below 1 mean 1.
	Jobs int
}

// ProgressReporter receives a callback per processed record.
type ProgressReporter interface {
	OnRecordsSelected(total int)
	OnRecordProcessed(id RecordID, err error)
}

type noOpProgress struct{}

func (noOpProgress) OnRecordsSelected(int)             {}
func (noOpProgress) OnRecordProcessed(RecordID, error) {}

// Summary totals one Mine call.
type Summary struct {
	Records  int
	Selected int
	Saved    int
	Pairs    int
	Duration time.Duration
	// Failures maps a record id to everything that went wrong while mining it.
	Failures map[RecordID]error
}

// Miner extracts before/after class versions. It is safe for concurrent use.
type Miner struct {
	git    git.Operations
	parser *javaparse.Parser
	opts   Options
	logger *slog.Logger

	clones    singleflight.Group
	mu        sync.Mutex
	histories map[string][]string
}

// NewMiner creates a Miner. A nil logger uses slog.Default().
func NewMiner(ops git.Operations, opts Options, logger *slog.Logger) *Miner {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	return &Miner{
		git:       ops,
		parser:    javaparse.NewParser(),
		opts:      opts,
		logger:    logger,
		histories: make(map[string][]string),
	}
}

// recordResult is what mining one record produced.
type recordResult struct {
	saved int
	pairs int
	errs  []error
}

// Mine processes every record that carries the configured refactoring type.
// Failures are collected per record; only context cancellation stops the run.
func (m *Miner) Mine(ctx context.Context, records []Record, progress ProgressReporter) (*Summary, error) {
	if progress == nil {
		progress = noOpProgress{}
	}
	start := time.Now()

	var selected []Record
	for _, rec := range records {
		if len(rec.Matching(m.opts.RefactoringType)) > 0 {
			selected = append(selected, rec)
		}
	}
	m.logger.Info("mining dataset",
		"records", len(records),
		"selected", len(selected),
		"type", m.opts.RefactoringType,
		"jobs", m.opts.Jobs)
	progress.OnRecordsSelected(len(selected))

	summary := &Summary{
		Records:  len(records),
		Selected: len(selected),
		Failures: make(map[RecordID]error),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Jobs)
	for _, rec := range selected {
		g.Go(func() error {
			res := m.mineRecord(gctx, rec)
			if err := gctx.Err(); err != nil {
				return err
			}
			err := errors.Join(res.errs...)

			mu.Lock()
			defer mu.Unlock()
			summary.Saved += res.saved
			summary.Pairs += res.pairs
			if err != nil {
				summary.Failures[rec.ID] = err
			}
			progress.OnRecordProcessed(rec.ID, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.Duration = time.Since(start)
	m.logger.Info("mining complete",
		"saved", summary.Saved,
		"pairs", summary.Pairs,
		"failed", len(summary.Failures),
		"duration", summary.Duration)
	return summary, nil
}

func (m *Miner) mineRecord(ctx context.Context, rec Record) recordResult {
	var res recordResult
	log := m.logger.With("id", rec.ID, "repository", rec.Repository, "sha", rec.SHA1)

	repoDir := filepath.Join(m.opts.ReposDir, git.RepoName(rec.Repository))
	history, err := m.history(ctx, rec.Repository, repoDir)
	if err != nil {
		log.Error("failed to read repository", "error", err)
		res.errs = append(res.errs, err)
		return res
	}

	index := slices.Index(history, rec.SHA1)
	if index < 0 {
		err := fmt.Errorf("%s: %w", rec.SHA1, ErrNoHistory)
		log.Error("commit not found", "error", err)
		res.errs = append(res.errs, err)
		return res
	}
	// The log is newest first, so the previous version is the next entry.
	parent := ""
	if index+1 < len(history) {
		parent = history[index+1]
	}

	changed, err := m.git.ChangedFiles(ctx, repoDir, rec.SHA1)
	if err != nil {
		log.Error("failed to list changed files", "error", err)
		res.errs = append(res.errs, err)
		return res
	}

	outDir := filepath.Join(m.opts.OutputDir, string(rec.ID))
	saved := make(map[string]bool)
	for _, ref := range rec.Matching(m.opts.RefactoringType) {
		if ctx.Err() != nil {
			return res
		}
		classPath, class, err := ClassPath(ref.Description)
		if err != nil {
			log.Warn("skipping refactoring", "error", err)
			res.errs = append(res.errs, err)
			continue
		}
		file := matchFile(changed, classPath)
		if file == "" {
			err := fmt.Errorf("%s: %w", classPath, ErrFileNotFound)
			log.Warn("skipping refactoring", "error", err)
			res.errs = append(res.errs, err)
			continue
		}
		if saved[file] {
			continue
		}
		saved[file] = true

		after := filepath.Join(outDir, class+"_after.java")
		if err := m.saveVersion(ctx, repoDir, rec.SHA1, file, after); err != nil {
			log.Error("failed to save version after commit", "file", file, "error", err)
			res.errs = append(res.errs, err)
			continue
		}
		res.saved++

		if parent == "" {
			err := fmt.Errorf("%s: %w", rec.SHA1, ErrNoParent)
			log.Warn("no version before commit", "file", file, "error", err)
			res.errs = append(res.errs, err)
			continue
		}
		before := filepath.Join(outDir, class+"_before.java")
		if err := m.saveVersion(ctx, repoDir, parent, file, before); err != nil {
			log.Error("failed to save version before commit", "file", file, "sha", parent, "error", err)
			res.errs = append(res.errs, err)
			continue
		}
		res.saved++
		res.pairs++
		log.Debug("saved class versions", "file", file, "class", class)
	}
	return res
}

// history clones the repository once and caches its commit log.
func (m *Miner) history(ctx context.Context, url, repoDir string) ([]string, error) {
	m.mu.Lock()
	h, ok := m.histories[repoDir]
	m.mu.Unlock()
	if ok {
		return h, nil
	}

	v, err, _ := m.clones.Do(repoDir, func() (any, error) {
		if err := m.git.Clone(ctx, url, repoDir); err != nil {
			return nil, fmt.Errorf("failed to clone %s: %w", url, err)
		}
		log, err := m.git.Log(ctx, repoDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read history: %w", err)
		}
		m.mu.Lock()
		m.histories[repoDir] = log
		m.mu.Unlock()
		return log, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// saveVersion writes path as of sha to dest once it parses cleanly.
func (m *Miner) saveVersion(ctx context.Context, repoDir, sha, path, dest string) error {
	content, err := m.git.ShowFile(ctx, repoDir, sha, path)
	if err != nil {
		return err
	}
	file, err := m.parser.Parse(ctx, path, content)
	if err != nil {
		return fmt.Errorf("%s at %s: %w: %v", path, sha, ErrUnparsable, err)
	}
	if file.HasErrors {
		return fmt.Errorf("%s at %s: %w", path, sha, ErrUnparsable)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}

// matchFile returns the changed file declaring classPath, or failing that
// the first one whose path contains it.
func matchFile(changed []string, classPath string) string {
	for _, f := range changed {
		if strings.HasSuffix(filepath.ToSlash(f), classPath+".java") {
			return f
		}
	}
	for _, f := range changed {
		if strings.Contains(filepath.ToSlash(f), classPath) {
			return f
		}
	}
	return ""
}
