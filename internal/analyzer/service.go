// Package analyzer runs Extract Method detection over Java files.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/semi/internal/cache"
	"github.com/mvp-joe/semi/internal/discovery"
	"github.com/mvp-joe/semi/internal/javaparse"
	"github.com/mvp-joe/semi/internal/storage"
)

// Options tunes what the service reports.
type Options struct {
	LinkMethods     bool
	MinStatements   int
	IncludeRejected bool
	// Jobs bounds the number of files analyzed at once. Zero uses NumCPU.
	Jobs int
}

// Key returns the part of a cache key contributed by the options.
func (o Options) Key() string {
	return fmt.Sprintf("link_methods=%t;min=%d;rejected=%t", o.LinkMethods, o.MinStatements, o.IncludeRejected)
}

// Summary totals one AnalyzePaths call.
type Summary struct {
	RunID         string
	Files         int
	FailedFiles   int
	Methods       int
	Opportunities int
	Accepted      int
	CacheHits     int
	Duration      time.Duration
	Reports       []*FileReport
	// Failures maps a path to the error that stopped its analysis.
	Failures map[string]error
}

// Service analyzes files. It is safe for concurrent use.
type Service struct {
	opts      Options
	parser    *javaparse.Parser
	discovery *discovery.FileDiscovery
	cache     *cache.Cache[*FileReport]
	writer    *storage.Writer
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCache reuses reports of unchanged files.
func WithCache(c *cache.Cache[*FileReport]) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithWriter records every AnalyzePaths call as a run.
func WithWriter(w *storage.Writer) ServiceOption {
	return func(s *Service) { s.writer = w }
}

// WithDiscovery replaces the default **/*.java discovery.
func WithDiscovery(fd *discovery.FileDiscovery) ServiceOption {
	return func(s *Service) { s.discovery = fd }
}

// NewService creates a Service. A nil logger uses slog.Default().
func NewService(opts Options, logger *slog.Logger, options ...ServiceOption) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MinStatements < 1 {
		opts.MinStatements = 1
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}

	s := &Service{
		opts:   opts,
		parser: javaparse.NewParser(),
		logger: logger,
	}
	for _, o := range options {
		o(s)
	}

	if s.discovery == nil {
		fd, err := discovery.New([]string{"**/*.java"}, nil)
		if err != nil {
			return nil, err
		}
		s.discovery = fd
	}
	return s, nil
}

// AnalyzeSource analyzes Java source text. path is used for reporting and
// the cache key only.
func (s *Service) AnalyzeSource(ctx context.Context, path string, source []byte) (*FileReport, error) {
	report, _, err := s.analyzeSource(ctx, path, source)
	return report, err
}

func (s *Service) analyzeSource(ctx context.Context, path string, source []byte) (*FileReport, bool, error) {
	var key string
	if s.cache != nil {
		key = cache.Key(path, source, s.opts.Key())
		if report, ok := s.cache.Get(key); ok {
			s.logger.Debug("cache hit", "path", path)
			return report, true, nil
		}
	}

	file, err := s.parser.Parse(ctx, path, source)
	if err != nil {
		return nil, false, err
	}
	if file.HasErrors {
		s.logger.Warn("syntax errors, results are best effort", "path", path)
	}

	report := &FileReport{
		Path:      path,
		HasErrors: file.HasErrors,
		Methods:   make([]MethodReport, 0, len(file.Methods)),
	}
	for _, m := range file.Methods {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		report.Methods = append(report.Methods, buildMethodReport(m, s.opts))
	}

	if s.cache != nil {
		s.cache.Set(key, report)
	}
	return report, false, nil
}

// AnalyzeFile reads and analyzes one file.
func (s *Service) AnalyzeFile(ctx context.Context, path string) (*FileReport, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.AnalyzeSource(ctx, path, source)
}

// AnalyzePaths discovers the Java files under paths and analyzes them in
// parallel. A file that fails is logged and counted, never fatal; only
// discovery, storage and cancellation errors abort the run.
func (s *Service) AnalyzePaths(ctx context.Context, paths []string, progress ProgressReporter) (*Summary, error) {
	if progress == nil {
		progress = NoOpProgressReporter{}
	}
	start := time.Now()

	files, err := s.discovery.Discover(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	progress.OnDiscoveryComplete(len(files))
	s.logger.Info("discovered files", "count", len(files))

	summary := &Summary{
		Files:    len(files),
		Reports:  make([]*FileReport, len(files)),
		Failures: make(map[string]error),
	}

	if s.writer != nil {
		run, err := s.writer.BeginRun(strings.Join(paths, " "))
		if err != nil {
			return nil, err
		}
		summary.RunID = run.ID
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Jobs)

	for i, path := range files {
		g.Go(func() error {
			source, err := os.ReadFile(path)
			var (
				report *FileReport
				hit    bool
			)
			if err == nil {
				report, hit, err = s.analyzeSource(gctx, path, source)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				s.logger.Warn("failed to analyze file", "path", path, "error", err)
				summary.FailedFiles++
				summary.Failures[path] = err
				progress.OnFileProcessed(path, err)
				return nil
			}

			if s.writer != nil {
				if err := s.writer.WriteFileReport(summary.RunID, report.toRecord()); err != nil {
					return err
				}
			}

			summary.Reports[i] = report
			if hit {
				summary.CacheHits++
			}
			summary.Methods += len(report.Methods)
			for _, m := range report.Methods {
				summary.Opportunities += m.Generated
				summary.Accepted += m.Accepted
			}
			progress.OnFileProcessed(path, nil)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Drop the slots of failed files, keeping discovery order.
	reports := summary.Reports[:0]
	for _, r := range summary.Reports {
		if r != nil {
			reports = append(reports, r)
		}
	}
	summary.Reports = reports

	if s.writer != nil {
		if err := s.writer.FinishRun(summary.RunID, summary.Files, summary.Methods); err != nil {
			return nil, err
		}
	}

	summary.Duration = time.Since(start)
	s.logger.Info("analysis complete",
		"files", summary.Files,
		"failed", summary.FailedFiles,
		"methods", summary.Methods,
		"accepted", summary.Accepted,
		"duration", summary.Duration,
	)
	progress.OnComplete(summary)
	return summary, nil
}
