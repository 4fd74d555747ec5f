package semi

import "github.com/mvp-joe/semi/internal/syntax"

// Result is the outcome of running the whole pipeline on one method.
type Result struct {
	Method        *syntax.Method
	Semantics     *SemanticMap
	Levels        []Partition
	Opportunities []ExtractionOpportunity
	Accepted      []ExtractionOpportunity
}

// Analyze runs extraction, generation and filtering on m.
func Analyze(m *syntax.Method, opts ...Option) *Result {
	sm := ExtractSemantics(m)
	levels := Coarsen(sm, opts...)
	opps := opportunitiesFromLevels(sm, levels)
	return &Result{
		Method:        m,
		Semantics:     sm,
		Levels:        levels,
		Opportunities: opps,
		Accepted:      FilterOpportunities(opps, sm, m),
	}
}

// Reasons returns the filter verdict for every generated opportunity, in
// the order of r.Opportunities.
func (r *Result) Reasons() []Reason {
	out := make([]Reason, len(r.Opportunities))
	for i, o := range r.Opportunities {
		out[i] = Explain(o, r.Semantics, r.Method)
	}
	return out
}
