package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/semi/internal/analyzer"
	"github.com/mvp-joe/semi/internal/watcher"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [DIR]",
	Short: "Re-analyze Java files as they change",
	Long: `Watch analyzes every Java file under DIR (default: current directory) once,
then re-analyzes files whenever they are saved. Unchanged files are served
from the in-memory cache.

Press Ctrl+C to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := loadProject()
	if err != nil {
		return err
	}
	dir := p.root
	if len(args) == 1 {
		dir = args[0]
	}

	c, err := p.newCache()
	if err != nil {
		return err
	}
	defer c.Close()

	svc, err := p.newService(false, analyzer.WithCache(c))
	if err != nil {
		return err
	}
	fd, err := p.discovery()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	summary, err := svc.AnalyzePaths(ctx, []string{dir}, NewCLIProgressReporter(cmd.ErrOrStderr(), false))
	if err != nil {
		return err
	}
	printSummary(out, summary, p.root, false)

	w, err := watcher.New(dir, fd, p.cfg.Watch.Debounce, nil)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	defer w.Stop()

	err = w.Start(ctx, func(ctx context.Context, files []string) {
		for _, path := range files {
			report, err := svc.AnalyzeFile(ctx, path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				fmt.Fprintf(out, "%s: %v\n", path, err)
				continue
			}
			printReport(out, report, p.root, false)
		}
	})
	if err != nil {
		return err
	}

	log.Printf("Watching %s for changes...\n", w.Root())
	<-ctx.Done()
	fmt.Fprintln(cmd.ErrOrStderr(), "\nStopping watch...")
	return nil
}
