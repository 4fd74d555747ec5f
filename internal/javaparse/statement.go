package javaparse

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/semi/internal/syntax"
)

// converter builds syntax trees from tree-sitter nodes of one source file.
type converter struct {
	source []byte
}

func (c *converter) text(n *sitter.Node) string {
	return nodeText(n, c.source)
}

// statements converts a list of tree-sitter statements. Tokens that are not
// statements (braces, empty statements) are dropped by namedChildren already.
func (c *converter) statements(nodes []*sitter.Node) []*syntax.Node {
	out := make([]*syntax.Node, 0, len(nodes))
	for _, n := range nodes {
		if st := c.statement(n); st != nil {
			out = append(out, st)
		}
	}
	return out
}

// body converts a branch or loop body. A braced block is transparent.
func (c *converter) body(n *sitter.Node) []*syntax.Node {
	if n == nil {
		return nil
	}
	if n.Kind() == "block" {
		return c.statements(namedChildren(n))
	}
	if st := c.statement(n); st != nil {
		return []*syntax.Node{st}
	}
	return nil
}

func (c *converter) stmt(kind syntax.Kind, n *sitter.Node, header ...*syntax.Node) *syntax.Node {
	return &syntax.Node{
		Kind:     kind,
		Line:     startLine(n),
		EndLine:  endLine(n),
		Children: compact(header),
	}
}

func (c *converter) statement(n *sitter.Node) *syntax.Node {
	switch n.Kind() {
	case "local_variable_declaration":
		return c.stmt(syntax.KindDeclaration, n, c.declaration(n)...)

	case "expression_statement":
		return c.stmt(syntax.KindExpression, n, c.exprs(namedChildren(n))...)

	case "explicit_constructor_invocation":
		var receiver *syntax.Node
		if obj := n.ChildByFieldName("object"); obj != nil {
			receiver = c.expr(obj)
		}
		call := syntax.Call(receiver, c.text(n.ChildByFieldName("constructor")), c.arguments(n.ChildByFieldName("arguments"))...)
		return c.stmt(syntax.KindExpression, n, call)

	case "if_statement":
		st := c.stmt(syntax.KindIf, n, c.expr(n.ChildByFieldName("condition")))
		st.Blocks = [][]*syntax.Node{c.body(n.ChildByFieldName("consequence"))}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			st.Blocks = append(st.Blocks, c.body(alt))
		}
		return st

	case "while_statement":
		st := c.stmt(syntax.KindWhile, n, c.expr(n.ChildByFieldName("condition")))
		st.Blocks = [][]*syntax.Node{c.body(n.ChildByFieldName("body"))}
		return st

	case "do_statement":
		st := c.stmt(syntax.KindDo, n, c.expr(n.ChildByFieldName("condition")))
		st.Blocks = [][]*syntax.Node{c.body(n.ChildByFieldName("body"))}
		return st

	case "for_statement":
		body := n.ChildByFieldName("body")
		var header []*syntax.Node
		for _, child := range namedChildren(n) {
			switch {
			case sameNode(child, body):
			case child.Kind() == "local_variable_declaration":
				header = append(header, c.declaration(child)...)
			default:
				header = append(header, c.expr(child))
			}
		}
		st := c.stmt(syntax.KindFor, n, header...)
		st.Blocks = [][]*syntax.Node{c.body(body)}
		return st

	case "enhanced_for_statement":
		st := c.stmt(syntax.KindForEach, n,
			c.expr(n.ChildByFieldName("type")),
			syntax.Declarator(c.text(n.ChildByFieldName("name")), nil),
			c.expr(n.ChildByFieldName("value")),
		)
		st.Blocks = [][]*syntax.Node{c.body(n.ChildByFieldName("body"))}
		return st

	case "labeled_statement":
		var label string
		for _, child := range namedChildren(n) {
			if child.Kind() == "identifier" && label == "" {
				label = c.text(child)
				continue
			}
			if st := c.statement(child); st != nil {
				st.Label = label
				return st
			}
		}
		return nil

	case "break_statement":
		st := c.stmt(syntax.KindBreak, n)
		st.Label = c.text(findChildByType(n, "identifier"))
		return st

	case "continue_statement":
		st := c.stmt(syntax.KindContinue, n)
		st.Label = c.text(findChildByType(n, "identifier"))
		return st

	case "return_statement":
		return c.stmt(syntax.KindReturn, n, c.exprs(namedChildren(n))...)

	case "throw_statement":
		return c.stmt(syntax.KindThrow, n, c.exprs(namedChildren(n))...)

	case "yield_statement":
		return c.stmt(syntax.KindYield, n, c.exprs(namedChildren(n))...)

	case "assert_statement":
		return c.stmt(syntax.KindAssert, n, c.exprs(namedChildren(n))...)

	case "synchronized_statement":
		body := n.ChildByFieldName("body")
		var header []*syntax.Node
		for _, child := range namedChildren(n) {
			if !sameNode(child, body) {
				header = append(header, c.expr(child))
			}
		}
		st := c.stmt(syntax.KindSynchronized, n, header...)
		st.Blocks = [][]*syntax.Node{c.body(body)}
		return st

	case "block":
		st := c.stmt(syntax.KindBlock, n)
		st.Blocks = [][]*syntax.Node{c.statements(namedChildren(n))}
		return st

	case "switch_expression", "switch_statement":
		return c.switchStatement(n)

	case "try_statement", "try_with_resources_statement":
		return c.tryStatement(n)

	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		return c.stmt(syntax.KindLocalType, n).WithCaptures(c.captures(n.ChildByFieldName("body"), nil)...)

	default:
		return c.stmt(syntax.KindOther, n, c.exprs(namedChildren(n))...)
	}
}

// declaration returns the type and declarators of a variable declaration.
func (c *converter) declaration(n *sitter.Node) []*syntax.Node {
	var out []*syntax.Node
	if t := n.ChildByFieldName("type"); t != nil {
		out = append(out, c.expr(t))
	}
	for _, d := range findChildrenByType(n, "variable_declarator") {
		var init *syntax.Node
		if v := d.ChildByFieldName("value"); v != nil {
			init = c.expr(v)
		}
		out = append(out, syntax.Declarator(c.text(d.ChildByFieldName("name")), init))
	}
	return out
}

// switchStatement turns every case group or rule into a Case clause.
func (c *converter) switchStatement(n *sitter.Node) *syntax.Node {
	st := c.stmt(syntax.KindSwitch, n, c.expr(n.ChildByFieldName("condition")))
	for _, group := range namedChildren(n.ChildByFieldName("body")) {
		var header, body []*syntax.Node
		for _, child := range namedChildren(group) {
			if child.Kind() == "switch_label" {
				header = append(header, c.exprs(namedChildren(child))...)
				continue
			}
			switch group.Kind() {
			case "switch_rule":
				body = append(body, c.body(child)...)
			default:
				if s := c.statement(child); s != nil {
					body = append(body, s)
				}
			}
		}
		clause := c.stmt(syntax.KindCase, group, header...)
		clause.Blocks = [][]*syntax.Node{body}
		st.Blocks = append(st.Blocks, []*syntax.Node{clause})
	}
	return st
}

// tryStatement keeps the protected body as the first block, followed by one
// block per catch clause and one for the finally clause.
func (c *converter) tryStatement(n *sitter.Node) *syntax.Node {
	var header []*syntax.Node
	for _, res := range namedChildren(n.ChildByFieldName("resources")) {
		if name := res.ChildByFieldName("name"); name != nil {
			header = append(header, syntax.Declarator(c.text(name), c.expr(res.ChildByFieldName("value"))))
			continue
		}
		header = append(header, c.exprs(namedChildren(res))...)
	}

	st := c.stmt(syntax.KindTry, n, header...)
	st.Blocks = [][]*syntax.Node{c.body(n.ChildByFieldName("body"))}

	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case "catch_clause":
			var params []*syntax.Node
			if p := findChildByType(child, "catch_formal_parameter"); p != nil {
				for _, t := range findChildrenByType(p, "catch_type") {
					params = append(params, c.expr(t))
				}
				params = append(params, syntax.Declarator(c.text(p.ChildByFieldName("name")), nil))
			}
			clause := c.stmt(syntax.KindCatch, child, params...)
			clause.Blocks = [][]*syntax.Node{c.body(child.ChildByFieldName("body"))}
			st.Blocks = append(st.Blocks, []*syntax.Node{clause})

		case "finally_clause":
			clause := c.stmt(syntax.KindFinally, child)
			clause.Blocks = [][]*syntax.Node{c.body(findChildByType(child, "block"))}
			st.Blocks = append(st.Blocks, []*syntax.Node{clause})
		}
	}
	return st
}

func compact(nodes []*syntax.Node) []*syntax.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
