package semi

// Options tunes opportunity generation.
type Options struct {
	// LinkMethods lets two statements link through a shared invoked method,
	// not only through a shared variable.
	LinkMethods bool
}

// Option configures Options.
type Option func(*Options)

// WithMethodLinking enables or disables linking through invoked methods.
func WithMethodLinking(enabled bool) Option {
	return func(o *Options) {
		o.LinkMethods = enabled
	}
}

// NewOptions applies opts to the defaults. Method linking is on by default.
func NewOptions(opts ...Option) Options {
	o := Options{LinkMethods: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Linked reports whether two statement semantics share a variable or, when
// method linking is on, an invoked method.
func (o Options) Linked(a, b StatementSemantic) bool {
	if a.UsedObjects.Intersects(b.UsedObjects) {
		return true
	}
	return o.LinkMethods && a.UsedMethods.Intersects(b.UsedMethods)
}

// ExtractionOpportunity is a candidate run of statements for a new method.
// Statements is a sub-slice of the sequence, never a copy.
type ExtractionOpportunity struct {
	// Level is the coarsening level that first produced this span.
	Level      int
	Cluster    Cluster
	Statements []*Statement
}

// Start returns the index of the first statement.
func (o ExtractionOpportunity) Start() int { return o.Cluster.Start }

// End returns the index of the last statement.
func (o ExtractionOpportunity) End() int { return o.Cluster.End }

// Lines returns the start lines of the first and last statement.
func (o ExtractionOpportunity) Lines() (first, last int) {
	return o.Statements[0].Line(), o.Statements[len(o.Statements)-1].Line()
}

// SourceRange returns the first and last source line covered by the statements.
func (o ExtractionOpportunity) SourceRange() (first, last int) {
	first = o.Statements[0].Line()
	for _, st := range o.Statements {
		if st.Node.EndLine > last {
			last = st.Node.EndLine
		}
		if st.Line() > last {
			last = st.Line()
		}
	}
	return first, last
}

// Coarsen returns the distinct partitions of the sequence, finest first.
//
// At step s two statements at most s positions apart are linked when their
// semantics share a name, and a link merges every statement between them. The
// step grows by one per level until a level repeats the previous partition or
// collapses the sequence into a single cluster.
func Coarsen(sm *SemanticMap, opts ...Option) []Partition {
	o := NewOptions(opts...)
	n := sm.Len()
	if n == 0 {
		return nil
	}

	ds := newDisjointSet(n)
	var levels []Partition
	for step := 1; ; step++ {
		// Pairs closer than step were linked on earlier levels.
		for i := 0; i+step < n; i++ {
			if o.Linked(sm.entries[i].Semantic, sm.entries[i+step].Semantic) {
				ds.unionRange(i, i+step)
			}
		}

		p := ds.partition()
		if len(levels) > 0 && p.Equal(levels[len(levels)-1]) {
			break
		}
		levels = append(levels, p)
		if len(p) == 1 {
			break
		}
	}
	return levels
}

// CreateOpportunities lists every cluster of every coarsening level, level by
// level and left to right. A span already listed at a finer level is not
// repeated.
func CreateOpportunities(sm *SemanticMap, opts ...Option) []ExtractionOpportunity {
	return opportunitiesFromLevels(sm, Coarsen(sm, opts...))
}

func opportunitiesFromLevels(sm *SemanticMap, levels []Partition) []ExtractionOpportunity {
	var out []ExtractionOpportunity
	seen := make(map[Cluster]bool)
	statements := sm.seq.Statements
	for level, p := range levels {
		for _, c := range p {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, ExtractionOpportunity{
				Level:      level,
				Cluster:    c,
				Statements: statements[c.Start : c.End+1 : c.End+1],
			})
		}
	}
	return out
}
