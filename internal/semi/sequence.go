// Package semi finds Extract Method opportunities inside a single method.
//
// The analysis is a three-stage pipeline over the method's statement sequence:
// ExtractSemantics records which variables and methods every statement uses,
// CreateOpportunities groups statements into contiguous candidates at several
// granularities, and FilterOpportunities drops the candidates that cannot be
// lifted into a method of their own. Every stage is a pure function; results
// can be shared between goroutines once built.
package semi

import "github.com/mvp-joe/semi/internal/syntax"

// Statement is one entry of a method's statement sequence.
type Statement struct {
	Node  *syntax.Node
	Index int

	// Parent is the index of the enclosing statement, or -1 at method level.
	Parent int
	// Block is the position of the containing block among the parent's Blocks.
	Block int
	// Last is the index of the last statement inside this statement's subtree.
	Last int
}

// Line returns the source line the statement starts on.
func (s *Statement) Line() int { return s.Node.Line }

// Kind returns the statement kind.
func (s *Statement) Kind() syntax.Kind { return s.Node.Kind }

// Sequence is a method's statements in source pre-order: every statement is
// followed by the statements nested inside it.
type Sequence struct {
	Method     *syntax.Method
	Statements []*Statement
}

// Flatten builds the statement sequence of m.
func Flatten(m *syntax.Method) *Sequence {
	seq := &Sequence{Method: m}
	if m == nil {
		return seq
	}

	type frame struct {
		node   *syntax.Node
		parent int
		block  int
	}

	var stack []frame
	for i := len(m.Body) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: m.Body[i], parent: -1})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node == nil {
			continue
		}

		st := &Statement{
			Node:   f.node,
			Index:  len(seq.Statements),
			Parent: f.parent,
			Block:  f.block,
		}
		st.Last = st.Index
		seq.Statements = append(seq.Statements, st)

		if f.node.Kind.IsOpaque() {
			continue
		}
		for b := len(f.node.Blocks) - 1; b >= 0; b-- {
			block := f.node.Blocks[b]
			for i := len(block) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: block[i], parent: st.Index, block: b})
			}
		}
	}

	// Children always follow their parent, so a reverse pass sees every
	// subtree completed before it is folded into the parent.
	for i := len(seq.Statements) - 1; i >= 0; i-- {
		st := seq.Statements[i]
		if st.Parent >= 0 {
			parent := seq.Statements[st.Parent]
			if st.Last > parent.Last {
				parent.Last = st.Last
			}
		}
	}

	return seq
}

// Len returns the number of statements.
func (s *Sequence) Len() int { return len(s.Statements) }

// Ancestors returns the indices of the statements enclosing i, innermost first.
func (s *Sequence) Ancestors(i int) []int {
	var out []int
	for p := s.Statements[i].Parent; p >= 0; p = s.Statements[p].Parent {
		out = append(out, p)
	}
	return out
}
