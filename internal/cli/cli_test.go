package cli

// Test Plan for CLI commands:
// - formatNumber and plural format counts
// - printReport shows accepted spans, rejected spans with --all, and hides empty methods
// - writeJSON emits the summary with failures as strings
// - analyze --json reports the paper example
// - analyze --store followed by runs and runs show reads the stored run back
// - links prints DOT and --components prints statement groups
// - links rejects a step below 1 and an unknown method
// - mineOptions overlays flags on the mining config
// - version prints the version
// - the fixture path stays valid inside a temporary project
//
// Commands share package-level flag state, so these tests do not run in parallel.

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/semi/internal/analyzer"
	"github.com/mvp-joe/semi/internal/config"
	"github.com/mvp-joe/semi/internal/javaparse"
)

// paperFile is resolved once, before any test changes directory.
var paperFile = func() string {
	path, err := filepath.Abs(filepath.Join("..", "..", "testdata", "java", "ExampleFromPaper.java"))
	if err != nil {
		panic(err)
	}
	return path
}()

// inTempProject switches to an empty project directory for the test.
func inTempProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestPaperFile_SurvivesChdir(t *testing.T) {
	inTempProject(t)

	assert.True(t, filepath.IsAbs(paperFile))
	_, err := os.Stat(paperFile)
	require.NoError(t, err)
}

func resetFlags() {
	cfgFile, verbose = "", false
	analyzeJSON, analyzeAll, analyzeStore, analyzeQuiet = false, false, false, false
	linksStep, linksComponents = 1, false
	runsLimit, runsAllOpps = 20, false
	mineDataset, mineRepos, mineOutput, mineJobs, mineType, mineQuiet = "", "", "", 0, "", false
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "7", formatNumber(7))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
	assert.Equal(t, "1 statement", plural(1, "statement"))
	assert.Equal(t, "2,000 files", plural(2000, "file"))
}

func sampleReport() *analyzer.FileReport {
	return &analyzer.FileReport{
		Path: "/work/src/Cart.java",
		Methods: []analyzer.MethodReport{
			{
				Name: "Cart.total", StartLine: 3, EndLine: 12, Statements: 5, Accepted: 1,
				Opportunities: []analyzer.OpportunityReport{
					{StartLine: 4, EndLine: 4, SourceEndLine: 6, Statements: 2, Accepted: true},
					{StartLine: 7, EndLine: 9, SourceEndLine: 9, Statements: 3, Level: 1, Reason: "partial statement"},
				},
			},
			{Name: "Cart.size", StartLine: 14, EndLine: 16, Statements: 1, Opportunities: []analyzer.OpportunityReport{}},
		},
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, sampleReport(), "/work", false)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, filepath.Join("src", "Cart.java")+"\n"))
	assert.Contains(t, out, "Cart.total (lines 3-12, 5 statements)")
	assert.Contains(t, out, "✓ lines 4-6  2 statements  level 0")
	assert.Contains(t, out, "✗ lines 7-9  3 statements  level 1  partial statement")
	assert.NotContains(t, out, "Cart.size")

	buf.Reset()
	printReport(&buf, sampleReport(), "/work", true)
	assert.Contains(t, buf.String(), "Cart.size (lines 14-16, 1 statement)")

	buf.Reset()
	printReport(&buf, &analyzer.FileReport{Path: "A.java"}, "/work", false)
	assert.Empty(t, buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, &analyzer.Summary{
		Files:    2,
		Reports:  []*analyzer.FileReport{sampleReport()},
		Failures: map[string]error{"B.java": errors.New("boom")},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"files": 2`)
	assert.Contains(t, buf.String(), `"B.java": "boom"`)
	assert.Contains(t, buf.String(), `"name": "Cart.total"`)
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	inTempProject(t)

	out, err := execute(t, "analyze", "--json", paperFile)
	require.NoError(t, err)
	assert.Contains(t, out, `"accepted": 2`)
	assert.Contains(t, out, `"name": "ExampleFromPaper.grabManifests"`)
}

func TestAnalyzeCommand_StoreAndRuns(t *testing.T) {
	dir := inTempProject(t)

	out, err := execute(t, "analyze", "--store", "--quiet", "--all", paperFile)
	require.NoError(t, err)
	assert.Contains(t, out, "ExampleFromPaper.grabManifests")
	assert.FileExists(t, filepath.Join(dir, ".semi", "results.db"))

	out, err = execute(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "1 files")

	out, err = execute(t, "runs", "show")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "✓"))

	out, err = execute(t, "runs", "show", "--all")
	require.NoError(t, err)
	assert.Equal(t, 8, strings.Count(out, "✗"))

	_, err = execute(t, "runs", "show", "no-such-run")
	assert.Error(t, err)
}

func TestRunsCommand_Empty(t *testing.T) {
	inTempProject(t)

	out, err := execute(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")
}

func TestLinksCommand(t *testing.T) {
	inTempProject(t)

	out, err := execute(t, "links", paperFile, "grabManifests")
	require.NoError(t, err)
	assert.Contains(t, out, "graph")
	assert.Contains(t, out, "statement links")

	out, err = execute(t, "links", paperFile, "grabManifests", "--components")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1: "))

	_, err = execute(t, "links", paperFile, "grabManifests", "--step", "0")
	assert.Error(t, err)

	_, err = execute(t, "links", paperFile, "missing")
	assert.ErrorIs(t, err, javaparse.ErrMethodNotFound)
}

func TestMineOptions(t *testing.T) {
	resetFlags()
	p := &project{root: "/work", cfg: config.Default()}

	opts := mineOptions(p)
	assert.Equal(t, filepath.Join("/work", "dataset", "repos"), opts.ReposDir)
	assert.Equal(t, "Extract Method", opts.RefactoringType)

	mineRepos, mineOutput, mineJobs, mineType = "/repos", "out", 3, "Extract And Move Method"
	defer resetFlags()
	opts = mineOptions(p)
	assert.Equal(t, "/repos", opts.ReposDir)
	assert.Equal(t, filepath.Join("/work", "out"), opts.OutputDir)
	assert.Equal(t, 3, opts.Jobs)
	assert.Equal(t, "Extract And Move Method", opts.RefactoringType)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "semi dev")
}
