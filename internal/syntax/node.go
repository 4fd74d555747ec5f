// Package syntax defines the language-neutral tree that method analysis reads.
//
// A front end (see internal/javaparse) builds the tree once; nothing in this
// module modifies a Node after construction.
package syntax

// Node is a statement or expression.
//
// Statements use Children for their header expressions (a condition, an
// initializer, a selector, the declarators of a declaration) and Blocks for the
// statement sequences nested inside them, one per branch or body. Expressions
// use Children for their operands and Receiver for the qualifier of a field
// access or method call.
type Node struct {
	Kind    Kind
	Line    int // 1-based
	EndLine int

	// Text is the identifier, field or method name, declared name, or the raw
	// token of an Unknown node.
	Text string

	// Label is the label attached to a labeled statement, or the target label
	// of a break/continue.
	Label string

	Receiver *Node
	Children []*Node
	Blocks   [][]*Node

	// Captures lists the enclosing names an opaque Lambda, ClassBody or
	// LocalType body refers to. They are not operands of the node.
	Captures []string
}

// Method is one method or constructor declaration.
type Method struct {
	Name    string
	Line    int
	EndLine int
	Params  []string
	Body    []*Node
}

// Nested returns the statements directly nested in n, block by block.
func (n *Node) Nested() []*Node {
	var out []*Node
	for _, block := range n.Blocks {
		out = append(out, block...)
	}
	return out
}
