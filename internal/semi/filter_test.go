package semi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/semi/internal/syntax"
)

// Test Plan for FilterOpportunities:
// - The fixture keeps exactly the two published spans
// - The result is an ordered subset of the input
// - Each rejection rule reports its reason through Explain
// - Names captured by later lambdas or local classes count as outputs
// - Opportunities from another method are rejected

// span builds an opportunity over statements [a, b] of sm.
func span(sm *SemanticMap, a, b int) ExtractionOpportunity {
	return ExtractionOpportunity{
		Cluster:    Cluster{Start: a, End: b},
		Statements: sm.Sequence().Statements[a : b+1],
	}
}

func TestFilterOpportunities_Fixture(t *testing.T) {
	t.Parallel()

	m := grabManifests()
	sm := ExtractSemantics(m)
	opps := CreateOpportunities(sm)

	kept := FilterOpportunities(opps, sm, m)
	assert.Equal(t, [][2]int{{9, 9}, {30, 30}}, lineSpans(kept))

	// Ordered subset of the input.
	j := 0
	for _, k := range kept {
		for j < len(opps) && opps[j].Cluster != k.Cluster {
			j++
		}
		require.Less(t, j, len(opps))
	}
}

func TestExplain_FixtureReasons(t *testing.T) {
	t.Parallel()

	m := grabManifests()
	res := Analyze(m)

	assert.Equal(t, []Reason{
		ReasonPartialStatement, // 7-8
		Accepted,               // 9
		ReasonPartialStatement, // 10-16
		ReasonPartialStatement, // 17-29
		Accepted,               // 30
		ReasonEscapingBreak,    // 31
		ReasonMixedContainers,  // 34-38
		ReasonPartialStatement, // 7-16
		ReasonMixedContainers,  // 30-38
		ReasonPartialStatement, // 7-29
	}, res.Reasons())
	assert.Len(t, res.Accepted, 2)
	assert.Len(t, res.Levels, 3)
}

func TestExplain_Rules(t *testing.T) {
	t.Parallel()

	loop := func(body ...*syntax.Node) *syntax.Node {
		return syntax.Stmt(syntax.KindWhile, 2, syntax.Ident("more")).WithBlocks(body)
	}

	tests := []struct {
		name string
		body []*syntax.Node
		a, b int
		want Reason
	}{
		{
			name: "whole body",
			body: []*syntax.Node{
				syntax.Stmt(syntax.KindExpression, 1, syntax.Call(nil, "a")),
				syntax.Stmt(syntax.KindExpression, 2, syntax.Call(nil, "b")),
			},
			a: 0, b: 1,
			want: ReasonWholeBody,
		},
		{
			name: "detached catch",
			body: []*syntax.Node{
				syntax.Stmt(syntax.KindTry, 1).WithBlocks(
					[]*syntax.Node{syntax.Stmt(syntax.KindExpression, 2, syntax.Call(nil, "open"))},
					[]*syntax.Node{syntax.Stmt(syntax.KindCatch, 3, syntax.Declarator("e", nil)).WithBlocks([]*syntax.Node{
						syntax.Stmt(syntax.KindExpression, 4, syntax.Call(syntax.Ident("e"), "print")),
					})},
				),
				syntax.Stmt(syntax.KindReturn, 6),
			},
			a: 2, b: 3,
			want: ReasonDetachedClause,
		},
		{
			name: "continue to outer loop",
			body: []*syntax.Node{
				loop(
					syntax.Stmt(syntax.KindIf, 3, syntax.Ident("skip")).WithBlocks([]*syntax.Node{
						syntax.Stmt(syntax.KindContinue, 4),
					}),
					syntax.Stmt(syntax.KindExpression, 5, syntax.Call(nil, "work")),
				),
				syntax.Stmt(syntax.KindReturn, 7),
			},
			a: 1, b: 2,
			want: ReasonEscapingContinue,
		},
		{
			name: "break inside extracted loop",
			body: []*syntax.Node{
				loop(syntax.Stmt(syntax.KindBreak, 3)),
				syntax.Stmt(syntax.KindReturn, 5),
			},
			a: 0, b: 1,
			want: Accepted,
		},
		{
			name: "labeled break to enclosing loop",
			body: []*syntax.Node{
				loop(
					syntax.Stmt(syntax.KindFor, 3, syntax.Ident("it")).WithBlocks([]*syntax.Node{
						syntax.Stmt(syntax.KindBreak, 4).WithLabel("outer"),
					}),
				).WithLabel("outer"),
				syntax.Stmt(syntax.KindReturn, 6),
			},
			a: 1, b: 2,
			want: ReasonEscapingBreak,
		},
		{
			name: "return not last",
			body: []*syntax.Node{
				syntax.Stmt(syntax.KindIf, 1, syntax.Ident("done")).WithBlocks([]*syntax.Node{
					syntax.Stmt(syntax.KindReturn, 2),
				}),
				syntax.Stmt(syntax.KindExpression, 3, syntax.Call(nil, "work")),
				syntax.Stmt(syntax.KindExpression, 4, syntax.Call(nil, "more")),
			},
			a: 0, b: 2,
			want: ReasonMisplacedReturn,
		},
		{
			name: "void return ending a nested span",
			body: []*syntax.Node{
				syntax.Stmt(syntax.KindIf, 1, syntax.Ident("c")).WithBlocks([]*syntax.Node{
					syntax.Stmt(syntax.KindExpression, 2, syntax.Call(nil, "log")),
					syntax.Stmt(syntax.KindReturn, 3),
				}),
				syntax.Stmt(syntax.KindExpression, 5, syntax.Call(nil, "more")),
			},
			a: 1, b: 2,
			want: Accepted,
		},
		{
			name: "two outputs",
			body: []*syntax.Node{
				syntax.Stmt(syntax.KindDeclaration, 1, syntax.Declarator("a", syntax.Lit("1"))),
				syntax.Stmt(syntax.KindDeclaration, 2, syntax.Declarator("b", syntax.Lit("2"))),
				syntax.Stmt(syntax.KindReturn, 3, syntax.Op(syntax.Ident("a"), syntax.Ident("b"))),
			},
			a: 0, b: 1,
			want: ReasonMultipleOutputs,
		},
		{
			name: "one output",
			body: []*syntax.Node{
				syntax.Stmt(syntax.KindDeclaration, 1, syntax.Declarator("a", syntax.Lit("1"))),
				syntax.Stmt(syntax.KindExpression, 2, syntax.Assign(syntax.Ident("a"), syntax.Lit("2"))),
				syntax.Stmt(syntax.KindReturn, 3, syntax.Ident("a")),
			},
			a: 0, b: 1,
			want: Accepted,
		},
		{
			name: "output read by enclosing loop",
			body: []*syntax.Node{
				syntax.Stmt(syntax.KindDeclaration, 1, syntax.Declarator("n", syntax.Lit("0"))),
				syntax.Stmt(syntax.KindDeclaration, 1, syntax.Declarator("m", syntax.Lit("0"))),
				syntax.Stmt(syntax.KindWhile, 2, syntax.Op(syntax.Ident("n"), syntax.Ident("m"))).WithBlocks([]*syntax.Node{
					syntax.Stmt(syntax.KindExpression, 3, syntax.Assign(syntax.Ident("n"), syntax.Call(nil, "next"))),
					syntax.Stmt(syntax.KindExpression, 4, syntax.Assign(syntax.Ident("m"), syntax.Call(nil, "next"))),
				}),
			},
			a: 3, b: 4,
			want: ReasonMultipleOutputs,
		},
		{
			name: "output with return",
			body: []*syntax.Node{
				syntax.Stmt(syntax.KindDeclaration, 1, syntax.Declarator("a", syntax.Lit("0"))),
				syntax.Stmt(syntax.KindIf, 2, syntax.Ident("ok")).WithBlocks([]*syntax.Node{
					syntax.Stmt(syntax.KindExpression, 3, syntax.Assign(syntax.Ident("a"), syntax.Lit("1"))),
					syntax.Stmt(syntax.KindReturn, 4, syntax.Ident("a")),
				}),
				syntax.Stmt(syntax.KindExpression, 6, syntax.Call(nil, "use", syntax.Ident("a"))),
			},
			a: 2, b: 3,
			want: ReasonOutputWithReturn,
		},
		{
			name: "outputs captured by a later lambda",
			body: []*syntax.Node{
				syntax.Stmt(syntax.KindDeclaration, 1, syntax.Declarator("a", syntax.Call(nil, "compute"))),
				syntax.Stmt(syntax.KindDeclaration, 2, syntax.Declarator("b", syntax.Call(nil, "other"))),
				syntax.Stmt(syntax.KindExpression, 3, syntax.Call(syntax.Ident("xs"), "forEach",
					(&syntax.Node{Kind: syntax.KindLambda, Line: 3, EndLine: 3}).WithCaptures("a", "b"))),
				syntax.Stmt(syntax.KindExpression, 4, syntax.Call(nil, "done")),
			},
			a: 0, b: 1,
			want: ReasonMultipleOutputs,
		},
		{
			name: "outputs captured by a later local class",
			body: []*syntax.Node{
				syntax.Stmt(syntax.KindDeclaration, 1, syntax.Declarator("a", syntax.Call(nil, "compute"))),
				syntax.Stmt(syntax.KindDeclaration, 2, syntax.Declarator("b", syntax.Call(nil, "other"))),
				syntax.Stmt(syntax.KindLocalType, 3).WithEnd(5).WithCaptures("a", "b"),
				syntax.Stmt(syntax.KindExpression, 6, syntax.Call(nil, "done")),
			},
			a: 0, b: 1,
			want: ReasonMultipleOutputs,
		},
		{
			name: "captures of unrelated names",
			body: []*syntax.Node{
				syntax.Stmt(syntax.KindDeclaration, 1, syntax.Declarator("a", syntax.Call(nil, "compute"))),
				syntax.Stmt(syntax.KindDeclaration, 2, syntax.Declarator("b", syntax.Call(nil, "other"))),
				syntax.Stmt(syntax.KindExpression, 3, syntax.Call(syntax.Ident("xs"), "forEach",
					(&syntax.Node{Kind: syntax.KindLambda, Line: 3, EndLine: 3}).WithCaptures("c"))),
				syntax.Stmt(syntax.KindExpression, 4, syntax.Call(nil, "done")),
			},
			a: 0, b: 1,
			want: Accepted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := &syntax.Method{Name: "m", Body: tt.body}
			sm := ExtractSemantics(m)
			assert.Equal(t, tt.want, Explain(span(sm, tt.a, tt.b), sm, m), "got reason %v", Explain(span(sm, tt.a, tt.b), sm, m))
		})
	}
}

func TestExplain_InconsistentInput(t *testing.T) {
	t.Parallel()

	m := grabManifests()
	sm := ExtractSemantics(m)

	assert.Equal(t, ReasonInconsistentInput, Explain(span(sm, 2, 2), sm, grabManifests()))
	assert.Equal(t, ReasonInconsistentInput, Explain(ExtractionOpportunity{Cluster: Cluster{Start: 2, End: 2}}, sm, m))
	assert.Equal(t, ReasonInconsistentInput, Explain(span(sm, 2, 2), nil, m))

	other := ExtractSemantics(grabManifests())
	assert.Equal(t, ReasonInconsistentInput, Explain(span(other, 2, 2), sm, m))
}

func TestFilterOpportunities_Empty(t *testing.T) {
	t.Parallel()

	m := &syntax.Method{Name: "empty"}
	sm := ExtractSemantics(m)
	assert.Empty(t, FilterOpportunities(nil, sm, m))
}
