package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/semi/internal/analyzer"
	"github.com/mvp-joe/semi/internal/storage"
)

var (
	analyzeJSON  bool
	analyzeAll   bool
	analyzeStore bool
	analyzeQuiet bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [PATH...]",
	Short: "Report Extract Method opportunities",
	Long: `Analyze finds the Java files under the given paths (default: current
directory) and reports, for every method, the runs of statements that can be
extracted into a new method.

Examples:
  # Analyze the current project
  semi analyze

  # Show rejected candidates and why they were rejected
  semi analyze --all src/main/java/com/acme/Cart.java

  # Machine-readable output, recorded in .semi/results.db
  semi analyze --json --store
`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the reports as JSON")
	analyzeCmd.Flags().BoolVarP(&analyzeAll, "all", "a", false, "Include rejected candidates and methods without opportunities")
	analyzeCmd.Flags().BoolVar(&analyzeStore, "store", false, "Record the run in the results database")
	analyzeCmd.Flags().BoolVarP(&analyzeQuiet, "quiet", "q", false, "Disable progress bars and summary")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := loadProject()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{p.root}
	}

	var options []analyzer.ServiceOption
	if analyzeStore {
		db, err := p.openDB()
		if err != nil {
			return fmt.Errorf("failed to open results database: %w", err)
		}
		defer db.Close()
		options = append(options, analyzer.WithWriter(storage.NewWriter(db)))
	}

	svc, err := p.newService(analyzeAll, options...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	quiet := analyzeQuiet || analyzeJSON
	progress := NewCLIProgressReporter(cmd.ErrOrStderr(), quiet)

	summary, err := svc.AnalyzePaths(ctx, args, progress)
	if err != nil {
		return err
	}

	if analyzeJSON {
		return writeJSON(out, summary)
	}
	printSummary(out, summary, p.root, analyzeAll)
	return nil
}

func printSummary(w io.Writer, s *analyzer.Summary, root string, all bool) {
	for _, r := range s.Reports {
		printReport(w, r, root, all)
	}
	for path, err := range s.Failures {
		fmt.Fprintf(w, "%s: %v\n", path, err)
	}
}
