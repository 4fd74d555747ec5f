package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/semi/internal/storage"
)

var (
	runsLimit   int
	runsAllOpps bool
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List analysis runs recorded with 'analyze --store'",
	RunE:  runRuns,
}

// runsShowCmd represents the runs show command
var runsShowCmd = &cobra.Command{
	Use:   "show [RUN_ID]",
	Short: "Print the opportunities of a stored run (default: latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRunsShow,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum number of runs to list")
	runsShowCmd.Flags().BoolVarP(&runsAllOpps, "all", "a", false, "Include rejected candidates")
}

func openReader() (*storage.Reader, func() error, error) {
	p, err := loadProject()
	if err != nil {
		return nil, nil, err
	}
	db, err := p.openDB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open results database: %w", err)
	}
	return storage.NewReader(db), db.Close, nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	reader, closeDB, err := openReader()
	if err != nil {
		return err
	}
	defer closeDB()

	runs, err := reader.ListRuns(runsLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded. Use 'semi analyze --store'.")
		return nil
	}
	for _, r := range runs {
		status := "running"
		if r.FinishedAt != nil {
			status = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(out, "%s  %s  %6s files  %6s methods  %-10s  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			formatNumber(r.Files), formatNumber(r.Methods), status, r.Root)
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	reader, closeDB, err := openReader()
	if err != nil {
		return err
	}
	defer closeDB()

	var run *storage.Run
	if len(args) == 1 {
		run, err = reader.GetRun(args[0])
	} else {
		run, err = reader.LatestRun()
	}
	if err != nil {
		return err
	}

	opps, err := reader.Opportunities(run.ID, !runsAllOpps)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s)\n", run.ID, run.Root)
	for _, o := range opps {
		mark := "✓"
		reason := ""
		if !o.Accepted {
			mark = "✗"
			reason = "  " + o.Reason
		}
		fmt.Fprintf(out, "  %s %s:%d-%d  %s  %s%s\n",
			mark, o.FilePath, o.StartLine, o.EndLine, o.Method, plural(o.Statements, "statement"), reason)
	}
	return nil
}
