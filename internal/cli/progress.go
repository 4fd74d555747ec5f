package cli

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/semi/internal/analyzer"
	"github.com/mvp-joe/semi/internal/mining"
)

// CLIProgressReporter shows a progress bar during analysis and mining.
type CLIProgressReporter struct {
	quiet     bool
	out       io.Writer
	bar       *progressbar.ProgressBar
	startTime time.Time
	failed    int
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:     quiet,
		out:       out,
		startTime: time.Now(),
	}
}

func (c *CLIProgressReporter) newBar(total int, description, unit string) {
	c.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(unit),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) step(err error) {
	if err != nil {
		c.failed++
	}
	if c.quiet || c.bar == nil {
		return
	}
	_ = c.bar.Add(1)
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	if c.quiet {
		return
	}
	log.Printf("Analyzing %s Java files\n", formatNumber(files))
	c.newBar(files, "Analyzing files", "files/s")
}

func (c *CLIProgressReporter) OnFileProcessed(path string, err error) {
	c.step(err)
}

func (c *CLIProgressReporter) OnComplete(s *analyzer.Summary) {
	if c.quiet {
		return
	}
	if c.bar != nil {
		_ = c.bar.Finish()
	}
	fmt.Fprintf(c.out, "✓ Analysis complete: %s accepted of %s candidates in %s methods (%.1fs)\n",
		formatNumber(s.Accepted), formatNumber(s.Opportunities), formatNumber(s.Methods), s.Duration.Seconds())
	if s.FailedFiles > 0 {
		fmt.Fprintf(c.out, "  %s files failed\n", formatNumber(s.FailedFiles))
	}
	if s.RunID != "" {
		fmt.Fprintf(c.out, "  Stored as run %s\n", s.RunID)
	}
}

func (c *CLIProgressReporter) OnRecordsSelected(total int) {
	if c.quiet {
		return
	}
	log.Printf("Mining %s commits\n", formatNumber(total))
	c.newBar(total, "Mining commits", "commits/s")
}

func (c *CLIProgressReporter) OnRecordProcessed(id mining.RecordID, err error) {
	c.step(err)
}

// Failed returns the number of steps reported with an error.
func (c *CLIProgressReporter) Failed() int { return c.failed }

var (
	_ analyzer.ProgressReporter = (*CLIProgressReporter)(nil)
	_ mining.ProgressReporter   = (*CLIProgressReporter)(nil)
)
