package inspect

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/semi/internal/semi"
	"github.com/mvp-joe/semi/internal/syntax"
)

// Test Plan for LinkGraph:
// - One vertex per statement
// - Edges only between linked statements within the step
// - Method links follow the linking option
// - Components group transitively linked statements
// - WriteDOT renders vertices and edge labels

func sample() *semi.SemanticMap {
	return semi.ExtractSemantics(&syntax.Method{Name: "m", Body: []*syntax.Node{
		syntax.Stmt(syntax.KindDeclaration, 1, syntax.Declarator("a", syntax.Lit("1"))),
		syntax.Stmt(syntax.KindExpression, 2, syntax.Call(syntax.Ident("out"), "print", syntax.Ident("a"))),
		syntax.Stmt(syntax.KindExpression, 3, syntax.Call(syntax.Ident("log"), "print")),
		syntax.Stmt(syntax.KindReturn, 4, syntax.Ident("a")),
	}})
}

func TestLinkGraph_Step(t *testing.T) {
	t.Parallel()

	g, err := LinkGraph(sample(), 1)
	require.NoError(t, err)

	order, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, 4, order)

	size, err := g.Size()
	require.NoError(t, err)
	// 0-1 share a, 1-2 share print().
	assert.Equal(t, 2, size)

	g, err = LinkGraph(sample(), 2)
	require.NoError(t, err)
	_, err = g.Edge(1, 3)
	assert.NoError(t, err)
}

func TestLinkGraph_WithoutMethodLinks(t *testing.T) {
	t.Parallel()

	g, err := LinkGraph(sample(), 1, semi.WithMethodLinking(false))
	require.NoError(t, err)

	_, err = g.Edge(1, 2)
	assert.Error(t, err)

	components, err := Components(g)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}, {2}, {3}}, components)
}

func TestWriteDOT(t *testing.T) {
	t.Parallel()

	g, err := LinkGraph(sample(), 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDOT(g, &buf))
	out := buf.String()
	assert.Contains(t, out, "L2 Expression")
	assert.Contains(t, out, "print()")
}
