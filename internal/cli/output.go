package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/mvp-joe/semi/internal/analyzer"
)

// printReport writes one file's methods and their opportunities. Methods
// without anything to show are skipped unless all is set.
func printReport(w io.Writer, r *analyzer.FileReport, root string, all bool) {
	path := r.Path
	if rel, err := filepath.Rel(root, r.Path); err == nil && filepath.IsAbs(r.Path) {
		path = rel
	}
	header := false
	for _, m := range r.Methods {
		if len(m.Opportunities) == 0 && !all {
			continue
		}
		if !header {
			fmt.Fprintln(w, path)
			if r.HasErrors {
				fmt.Fprintln(w, "  (syntax errors, results are best effort)")
			}
			header = true
		}
		fmt.Fprintf(w, "  %s (lines %d-%d, %s)\n", m.Name, m.StartLine, m.EndLine, plural(m.Statements, "statement"))
		for _, o := range m.Opportunities {
			mark := "✓"
			reason := ""
			if !o.Accepted {
				mark = "✗"
				reason = "  " + o.Reason
			}
			fmt.Fprintf(w, "    %s lines %d-%d  %s  level %d%s\n",
				mark, o.StartLine, o.SourceEndLine, plural(o.Statements, "statement"), o.Level, reason)
		}
	}
}

// jsonReport is the --json output of analyze.
type jsonReport struct {
	RunID         string                 `json:"run_id,omitempty"`
	Files         int                    `json:"files"`
	FailedFiles   int                    `json:"failed_files"`
	Methods       int                    `json:"methods"`
	Opportunities int                    `json:"opportunities"`
	Accepted      int                    `json:"accepted"`
	Reports       []*analyzer.FileReport `json:"reports"`
	Failures      map[string]string      `json:"failures,omitempty"`
}

func writeJSON(w io.Writer, s *analyzer.Summary) error {
	out := jsonReport{
		RunID:         s.RunID,
		Files:         s.Files,
		FailedFiles:   s.FailedFiles,
		Methods:       s.Methods,
		Opportunities: s.Opportunities,
		Accepted:      s.Accepted,
		Reports:       s.Reports,
	}
	if len(s.Failures) > 0 {
		out.Failures = make(map[string]string, len(s.Failures))
		for path, err := range s.Failures {
			out.Failures[path] = err.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%s %ss", formatNumber(n), word)
}

func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
