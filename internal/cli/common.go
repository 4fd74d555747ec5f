package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/semi/internal/analyzer"
	"github.com/mvp-joe/semi/internal/cache"
	"github.com/mvp-joe/semi/internal/config"
	"github.com/mvp-joe/semi/internal/discovery"
	"github.com/mvp-joe/semi/internal/storage"
)

// project is the working directory and its loaded configuration.
type project struct {
	root string
	cfg  *config.Config
}

func loadProject() (*project, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	loader := config.NewLoader(root)
	if cfgFile != "" {
		loader = config.NewFileLoader(root, cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &project{root: root, cfg: cfg}, nil
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (p *project) discovery() (*discovery.FileDiscovery, error) {
	return discovery.New(p.cfg.Paths.Include, p.cfg.Paths.Ignore)
}

func (p *project) openDB() (*sql.DB, error) {
	return storage.Open(config.ResolvePath(p.root, p.cfg.Storage.DBPath))
}

func (p *project) newCache() (*cache.Cache[*analyzer.FileReport], error) {
	return cache.New[*analyzer.FileReport](p.cfg.Cache.Capacity, p.cfg.Cache.TTL)
}

// serviceOptions converts the analysis section; includeRejected forces
// rejected candidates into the reports.
func (p *project) serviceOptions(includeRejected bool) analyzer.Options {
	return analyzer.Options{
		LinkMethods:     p.cfg.Analysis.LinkMethods,
		MinStatements:   p.cfg.Analysis.MinStatements,
		IncludeRejected: p.cfg.Analysis.IncludeRejected || includeRejected,
	}
}

func (p *project) newService(includeRejected bool, options ...analyzer.ServiceOption) (*analyzer.Service, error) {
	fd, err := p.discovery()
	if err != nil {
		return nil, err
	}
	options = append([]analyzer.ServiceOption{analyzer.WithDiscovery(fd)}, options...)
	return analyzer.NewService(p.serviceOptions(includeRejected), slog.Default(), options...)
}
