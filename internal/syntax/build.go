package syntax

// Constructors for hand-built trees. Front ends and tests use them so that
// every node of a kind is shaped the same way.

// Ident returns an identifier reference.
func Ident(name string) *Node {
	return &Node{Kind: KindIdentifier, Text: name}
}

// This returns a this/super reference.
func This() *Node {
	return &Node{Kind: KindThis, Text: "this"}
}

// Field returns receiver.name.
func Field(receiver *Node, name string) *Node {
	return &Node{Kind: KindFieldAccess, Text: name, Receiver: receiver}
}

// Call returns receiver.name(args...). receiver may be nil.
func Call(receiver *Node, name string, args ...*Node) *Node {
	return &Node{Kind: KindMethodCall, Text: name, Receiver: receiver, Children: args}
}

// Index returns array[index].
func Index(array, index *Node) *Node {
	return &Node{Kind: KindArrayAccess, Children: []*Node{array, index}}
}

// Assign returns target op= value.
func Assign(target, value *Node) *Node {
	return &Node{Kind: KindAssign, Children: []*Node{target, value}}
}

// Update returns operand++ / --operand.
func Update(operand *Node) *Node {
	return &Node{Kind: KindUpdate, Children: []*Node{operand}}
}

// Declarator introduces name, optionally initialised with init.
func Declarator(name string, init *Node) *Node {
	d := &Node{Kind: KindDeclarator, Text: name}
	if init != nil {
		d.Children = []*Node{init}
	}
	return d
}

// Op returns a composite expression over operands.
func Op(operands ...*Node) *Node {
	return &Node{Kind: KindOperator, Children: operands}
}

// Lit returns a literal.
func Lit(text string) *Node {
	return &Node{Kind: KindLiteral, Text: text}
}

// Type returns a type reference.
func Type(name string) *Node {
	return &Node{Kind: KindTypeRef, Text: name}
}

// Stmt returns a statement of kind k on line with the given header expressions.
func Stmt(k Kind, line int, header ...*Node) *Node {
	return &Node{Kind: k, Line: line, EndLine: line, Children: header}
}

// WithBlocks attaches nested statement sequences to n and extends its end line.
func (n *Node) WithBlocks(blocks ...[]*Node) *Node {
	n.Blocks = blocks
	for _, block := range blocks {
		for _, s := range block {
			if s.EndLine > n.EndLine {
				n.EndLine = s.EndLine
			}
		}
	}
	return n
}

// WithLabel sets the label of n.
func (n *Node) WithLabel(label string) *Node {
	n.Label = label
	return n
}

// WithEnd sets the end line of n.
func (n *Node) WithEnd(line int) *Node {
	n.EndLine = line
	return n
}

// WithCaptures records the names an opaque body refers to.
func (n *Node) WithCaptures(names ...string) *Node {
	n.Captures = names
	return n
}
