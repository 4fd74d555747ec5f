package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/semi/internal/config"
	"github.com/mvp-joe/semi/internal/git"
	"github.com/mvp-joe/semi/internal/mining"
)

var (
	mineDataset string
	mineRepos   string
	mineOutput  string
	mineJobs    int
	mineType    string
	mineQuiet   bool
)

// mineCmd represents the mine command
var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Build a before/after dataset from a refactoring corpus",
	Long: `Mine reads a JSON dataset of commits with detected refactorings, clones each
repository and saves the changed class before and after every commit that
contains an Extract Method refactoring:

  <output>/<id>/<Class>_before.java
  <output>/<id>/<Class>_after.java

Examples:
  semi mine --dataset refactorings.json --repos /data/repos --output /data/em
`,
	RunE: runMine,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().StringVarP(&mineDataset, "dataset", "s", "", "JSON dataset file (required)")
	mineCmd.Flags().StringVarP(&mineRepos, "repos", "d", "", "Directory for cloned repositories (default: mining.repos_dir)")
	mineCmd.Flags().StringVarP(&mineOutput, "output", "o", "", "Directory for the saved files (default: mining.output_dir)")
	mineCmd.Flags().IntVarP(&mineJobs, "jobs", "j", 0, "Commits mined in parallel (default: mining.jobs)")
	mineCmd.Flags().StringVar(&mineType, "type", "", "Refactoring type to mine (default: mining.refactoring_type)")
	mineCmd.Flags().BoolVarP(&mineQuiet, "quiet", "q", false, "Disable progress bars")
	_ = mineCmd.MarkFlagRequired("dataset")
}

func runMine(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := loadProject()
	if err != nil {
		return err
	}
	opts := mineOptions(p)

	records, err := mining.LoadDataset(mineDataset)
	if err != nil {
		return err
	}

	miner := mining.NewMiner(git.NewOperations(), opts, nil)
	progress := NewCLIProgressReporter(cmd.ErrOrStderr(), mineQuiet)
	summary, err := miner.Mine(ctx, records, progress)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Mining complete: %s pairs, %s files from %s commits (%.1fs)\n",
		formatNumber(summary.Pairs), formatNumber(summary.Saved), formatNumber(summary.Selected), summary.Duration.Seconds())
	if len(summary.Failures) > 0 {
		fmt.Fprintf(out, "  %s commits with problems:\n", formatNumber(len(summary.Failures)))
		ids := make([]string, 0, len(summary.Failures))
		for id := range summary.Failures {
			ids = append(ids, string(id))
		}
		slices.Sort(ids)
		for _, id := range ids {
			fmt.Fprintf(out, "    %s: %v\n", id, summary.Failures[mining.RecordID(id)])
		}
	}
	return nil
}

// mineOptions overlays the command flags on the mining section.
func mineOptions(p *project) mining.Options {
	m := p.cfg.Mining
	if mineRepos != "" {
		m.ReposDir = mineRepos
	}
	if mineOutput != "" {
		m.OutputDir = mineOutput
	}
	if mineJobs > 0 {
		m.Jobs = mineJobs
	}
	if mineType != "" {
		m.RefactoringType = mineType
	}
	return mining.Options{
		ReposDir:        config.ResolvePath(p.root, m.ReposDir),
		OutputDir:       config.ResolvePath(p.root, m.OutputDir),
		RefactoringType: m.RefactoringType,
		Jobs:            m.Jobs,
	}
}
