// Package inspect exposes the statement link graph that drives coarsening,
// for debugging why statements were or were not grouped.
package inspect

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/mvp-joe/semi/internal/semi"
)

// LinkGraph builds an undirected graph with one vertex per statement and an
// edge between every two statements that are linked at the given step.
func LinkGraph(sm *semi.SemanticMap, step int, opts ...semi.Option) (graph.Graph[int, int], error) {
	o := semi.NewOptions(opts...)
	g := graph.New(graph.IntHash)

	for i, e := range sm.Entries() {
		label := fmt.Sprintf("%d: L%d %s", i, e.Statement.Line(), e.Statement.Kind())
		if err := g.AddVertex(i, graph.VertexAttribute("label", label)); err != nil {
			return nil, fmt.Errorf("failed to add statement %d: %w", i, err)
		}
	}

	entries := sm.Entries()
	for i := range entries {
		for j := i + 1; j < len(entries) && j-i <= step; j++ {
			a, b := entries[i].Semantic, entries[j].Semantic
			if !o.Linked(a, b) {
				continue
			}
			shared := sharedNames(a, b, o.LinkMethods)
			if err := g.AddEdge(i, j, graph.EdgeAttribute("label", strings.Join(shared, ","))); err != nil {
				return nil, fmt.Errorf("failed to link %d and %d: %w", i, j, err)
			}
		}
	}
	return g, nil
}

func sharedNames(a, b semi.StatementSemantic, methods bool) []string {
	var out []string
	for _, n := range a.UsedObjects.Sorted() {
		if b.UsedObjects.Has(n) {
			out = append(out, n)
		}
	}
	if methods {
		for _, n := range a.UsedMethods.Sorted() {
			if b.UsedMethods.Has(n) {
				out = append(out, n+"()")
			}
		}
	}
	return out
}

// Components returns the connected components of g, each sorted, ordered by
// their smallest statement.
func Components(g graph.Graph[int, int]) ([][]int, error) {
	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, err
	}

	vertices := make([]int, 0, len(adjacency))
	for v := range adjacency {
		vertices = append(vertices, v)
	}
	slices.Sort(vertices)

	seen := make(map[int]bool, len(vertices))
	var components [][]int
	for _, v := range vertices {
		if seen[v] {
			continue
		}
		var component []int
		if err := graph.BFS(g, v, func(u int) bool {
			seen[u] = true
			component = append(component, u)
			return false
		}); err != nil {
			return nil, err
		}
		slices.Sort(component)
		components = append(components, component)
	}
	return components, nil
}

// WriteDOT renders g in Graphviz DOT format.
func WriteDOT(g graph.Graph[int, int], w io.Writer) error {
	return draw.DOT(g, w, draw.GraphAttribute("label", "statement links"))
}
