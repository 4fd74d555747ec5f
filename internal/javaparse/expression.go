package javaparse

import (
	"slices"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/semi/internal/syntax"
)

func (c *converter) exprs(nodes []*sitter.Node) []*syntax.Node {
	out := make([]*syntax.Node, 0, len(nodes))
	for _, n := range nodes {
		if e := c.expr(n); e != nil {
			out = append(out, e)
		}
	}
	return out
}

// arguments converts an argument_list.
func (c *converter) arguments(n *sitter.Node) []*syntax.Node {
	return c.exprs(namedChildren(n))
}

// expr converts an expression. Kinds without a dedicated arm become an
// Operator over their operands, or an Unknown leaf carrying the raw text.
func (c *converter) expr(n *sitter.Node) *syntax.Node {
	if n == nil {
		return nil
	}

	kind := n.Kind()
	switch kind {
	case "identifier":
		return syntax.Ident(c.text(n))

	case "this", "super":
		return &syntax.Node{Kind: syntax.KindThis, Text: kind}

	case "field_access":
		receiver := c.expr(n.ChildByFieldName("object"))
		// Outer.super.x
		if findChildByType(n, "super") != nil {
			receiver = &syntax.Node{Kind: syntax.KindThis, Text: "super"}
		}
		return syntax.Field(receiver, c.text(n.ChildByFieldName("field")))

	case "array_access":
		return syntax.Index(c.expr(n.ChildByFieldName("array")), c.expr(n.ChildByFieldName("index")))

	case "method_invocation":
		var receiver *syntax.Node
		if obj := n.ChildByFieldName("object"); obj != nil {
			receiver = c.expr(obj)
		}
		return syntax.Call(receiver, c.text(n.ChildByFieldName("name")), c.arguments(n.ChildByFieldName("arguments"))...)

	case "assignment_expression":
		return syntax.Assign(c.expr(n.ChildByFieldName("left")), c.expr(n.ChildByFieldName("right")))

	case "update_expression":
		children := namedChildren(n)
		if len(children) == 0 {
			return nil
		}
		return syntax.Update(c.expr(children[0]))

	case "object_creation_expression":
		var operands []*syntax.Node
		for _, child := range namedChildren(n) {
			if child.Kind() == "class_body" {
				body := &syntax.Node{Kind: syntax.KindClassBody, Line: startLine(child), EndLine: endLine(child)}
				operands = append(operands, body.WithCaptures(c.captures(child, nil)...))
				continue
			}
			operands = append(operands, c.expr(child))
		}
		return syntax.Op(compact(operands)...)

	case "instanceof_expression":
		operands := []*syntax.Node{c.expr(n.ChildByFieldName("left")), c.expr(n.ChildByFieldName("right"))}
		if name := n.ChildByFieldName("name"); name != nil {
			operands = append(operands, syntax.Declarator(c.text(name), nil))
		}
		if pattern := findChildByType(n, "record_pattern"); pattern != nil {
			operands = append(operands, c.pattern(pattern)...)
		}
		return syntax.Op(compact(operands)...)

	case "lambda_expression":
		params := map[string]bool{}
		if p := n.ChildByFieldName("parameters"); p != nil {
			for _, name := range c.captures(p, nil) {
				params[name] = true
			}
		}
		lambda := &syntax.Node{Kind: syntax.KindLambda, Line: startLine(n), EndLine: endLine(n)}
		return lambda.WithCaptures(c.captures(n.ChildByFieldName("body"), params)...)

	case "switch_expression":
		// The selector, case labels and arm bodies all become operands.
		return syntax.Op(treeOperands(c.switchStatement(n))...)

	case "method_reference":
		return &syntax.Node{Kind: syntax.KindUnknown, Text: c.text(n)}

	case "class_literal":
		return syntax.Type(c.text(n))

	case "true", "false", "null_literal":
		return syntax.Lit(c.text(n))
	}

	if strings.HasSuffix(kind, "_literal") {
		return syntax.Lit(c.text(n))
	}
	if isTypeKind(kind) {
		return syntax.Type(c.text(n))
	}

	if n.ChildCount() == 0 {
		return &syntax.Node{Kind: syntax.KindUnknown, Text: c.text(n)}
	}
	return syntax.Op(c.exprs(namedChildren(n))...)
}

// treeOperands lists the expressions of a statement tree. Names declared inside
// the tree are local to it, so a declarator contributes only its initialiser.
func treeOperands(st *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, child := range st.Children {
		if child.Kind == syntax.KindDeclarator {
			out = append(out, child.Children...)
			continue
		}
		out = append(out, child)
	}
	for _, nested := range st.Nested() {
		if nested.Kind.IsOpaque() {
			out = append(out, nested)
			continue
		}
		out = append(out, treeOperands(nested)...)
	}
	return out
}

// captures returns the identifiers referenced anywhere under n, except those
// in bound and the member names of calls, field accesses and declarations.
func (c *converter) captures(n *sitter.Node, bound map[string]bool) []string {
	if n == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	var visit func(n, parent *sitter.Node)
	visit = func(n, parent *sitter.Node) {
		if n.Kind() == "identifier" {
			name := c.text(n)
			if !bound[name] && !seen[name] && !isMemberName(parent, n) {
				seen[name] = true
				out = append(out, name)
			}
			return
		}
		for _, child := range namedChildren(n) {
			visit(child, n)
		}
	}
	visit(n, nil)
	slices.Sort(out)
	return out
}

func isMemberName(parent, child *sitter.Node) bool {
	if parent == nil {
		return false
	}
	var field string
	switch parent.Kind() {
	case "method_invocation", "method_declaration", "constructor_declaration",
		"class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		field = "name"
	case "field_access":
		field = "field"
	default:
		return false
	}
	return sameNode(parent.ChildByFieldName(field), child)
}

// pattern returns the bindings introduced by a record pattern.
func (c *converter) pattern(n *sitter.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case "identifier":
			out = append(out, syntax.Declarator(c.text(child), nil))
		case "record_pattern", "record_pattern_body", "record_pattern_component":
			out = append(out, c.pattern(child)...)
		}
	}
	return out
}

func isTypeKind(kind string) bool {
	switch kind {
	case "type_identifier", "scoped_type_identifier", "generic_type", "array_type",
		"integral_type", "floating_point_type", "boolean_type", "void_type",
		"type_arguments", "dimensions", "annotated_type", "catch_type":
		return true
	}
	return false
}
