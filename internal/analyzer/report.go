package analyzer

import (
	"github.com/mvp-joe/semi/internal/semi"
	"github.com/mvp-joe/semi/internal/storage"
	"github.com/mvp-joe/semi/internal/syntax"
)

// FileReport lists the analyzed methods of one source file.
type FileReport struct {
	Path      string         `json:"path"`
	HasErrors bool           `json:"has_errors,omitempty"`
	Methods   []MethodReport `json:"methods"`
}

// MethodReport is the outcome for one method.
type MethodReport struct {
	Name       string `json:"name"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Statements int    `json:"statements"`
	Levels     int    `json:"levels"`
	Generated  int    `json:"generated"`
	Accepted   int    `json:"accepted"`

	// Opportunities holds the accepted spans, or every generated span when
	// rejected ones are requested.
	Opportunities []OpportunityReport `json:"opportunities"`
}

// OpportunityReport describes one candidate span. StartLine and EndLine are
// the first lines of its first and last statement; SourceEndLine is where
// the last statement ends.
type OpportunityReport struct {
	Ordinal       int    `json:"ordinal"`
	Level         int    `json:"level"`
	StartLine     int    `json:"start_line"`
	EndLine       int    `json:"end_line"`
	SourceEndLine int    `json:"source_end_line"`
	Statements    int    `json:"statements"`
	Accepted      bool   `json:"accepted"`
	Reason        string `json:"reason,omitempty"`
}

// AcceptedOpportunities returns the accepted spans of every method.
func (r *FileReport) AcceptedOpportunities() []OpportunityReport {
	var out []OpportunityReport
	for _, m := range r.Methods {
		for _, o := range m.Opportunities {
			if o.Accepted {
				out = append(out, o)
			}
		}
	}
	return out
}

// buildMethodReport runs the pipeline on m and summarizes it.
func buildMethodReport(m *syntax.Method, opts Options) MethodReport {
	res := semi.Analyze(m, semi.WithMethodLinking(opts.LinkMethods))
	reasons := res.Reasons()

	report := MethodReport{
		Name:          m.Name,
		StartLine:     m.Line,
		EndLine:       m.EndLine,
		Statements:    res.Semantics.Len(),
		Levels:        len(res.Levels),
		Generated:     len(res.Opportunities),
		Opportunities: []OpportunityReport{},
	}

	for i, o := range res.Opportunities {
		accepted := reasons[i] == semi.Accepted
		// Short spans are dropped from the report, not from the analysis.
		if accepted && o.Cluster.Len() < opts.MinStatements {
			accepted = false
		}
		if accepted {
			report.Accepted++
		} else if !opts.IncludeRejected {
			continue
		}

		first, last := o.Lines()
		_, end := o.SourceRange()
		op := OpportunityReport{
			Ordinal:       i,
			Level:         o.Level,
			StartLine:     first,
			EndLine:       last,
			SourceEndLine: end,
			Statements:    o.Cluster.Len(),
			Accepted:      accepted,
		}
		if !accepted {
			op.Reason = reasons[i].String()
			if reasons[i] == semi.Accepted {
				op.Reason = "below minimum size"
			}
		}
		report.Opportunities = append(report.Opportunities, op)
	}
	return report
}

// toRecord converts a report for storage.
func (r *FileReport) toRecord() *storage.FileRecord {
	rec := &storage.FileRecord{Path: r.Path}
	for _, m := range r.Methods {
		mr := storage.MethodRecord{
			Name:       m.Name,
			StartLine:  m.StartLine,
			EndLine:    m.EndLine,
			Statements: m.Statements,
		}
		for _, o := range m.Opportunities {
			reason := o.Reason
			if o.Accepted {
				reason = semi.Accepted.String()
			}
			mr.Opportunities = append(mr.Opportunities, storage.OpportunityRecord{
				Ordinal:    o.Ordinal,
				Level:      o.Level,
				StartLine:  o.StartLine,
				EndLine:    o.EndLine,
				Statements: o.Statements,
				Accepted:   o.Accepted,
				Reason:     reason,
			})
		}
		rec.Methods = append(rec.Methods, mr)
	}
	return rec
}
