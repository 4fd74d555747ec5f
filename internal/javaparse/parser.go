// Package javaparse turns Java source into the syntax trees read by method
// analysis.
package javaparse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/mvp-joe/semi/internal/syntax"
)

var (
	// ErrParse is returned when tree-sitter produces no tree at all.
	ErrParse = errors.New("java parse failed")
	// ErrSyntax marks a file whose tree contains syntax errors.
	ErrSyntax = errors.New("java syntax error")
	// ErrMethodNotFound is returned by File.Method for an unknown name.
	ErrMethodNotFound = errors.New("method not found")
)

// File is a parsed Java compilation unit.
type File struct {
	Path    string
	Package string
	Methods []*syntax.Method

	// HasErrors is set when tree-sitter recovered from syntax errors. Methods
	// are still extracted, best effort.
	HasErrors bool
}

// Method returns the method with the given name. name may be qualified
// (Outer.Inner.run) or a simple method name, in which case the first method
// with that name wins.
func (f *File) Method(name string) (*syntax.Method, error) {
	for _, m := range f.Methods {
		if m.Name == name {
			return m, nil
		}
	}
	for _, m := range f.Methods {
		if strings.HasSuffix(m.Name, "."+name) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%s in %s: %w", name, f.Path, ErrMethodNotFound)
}

// Err returns ErrSyntax when the file did not parse cleanly.
func (f *File) Err() error {
	if f.HasErrors {
		return fmt.Errorf("%s: %w", f.Path, ErrSyntax)
	}
	return nil
}

// Parser parses Java files. A Parser is safe for concurrent use; every call
// creates its own tree-sitter parser.
type Parser struct {
	language *sitter.Language
}

// NewParser creates a new Java parser.
func NewParser() *Parser {
	return &Parser{language: sitter.NewLanguage(java.Language())}
}

var defaultParser = NewParser()

// Parse parses source with the default parser.
func Parse(ctx context.Context, path string, source []byte) (*File, error) {
	return defaultParser.Parse(ctx, path, source)
}

// ParseFile reads and parses the file at path.
func ParseFile(ctx context.Context, path string) (*File, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return defaultParser.Parse(ctx, path, source)
}

// Parse parses a Java source file and converts every method and constructor
// declared in a named type.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrParse, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrParse)
	}
	defer tree.Close()

	root := tree.RootNode()
	file := &File{
		Path:      path,
		HasErrors: root.HasError(),
	}

	c := &converter{source: source}
	for _, child := range namedChildren(root) {
		switch child.Kind() {
		case "package_declaration":
			if name := findChildByType(child, "scoped_identifier"); name != nil {
				file.Package = nodeText(name, source)
			} else if name := findChildByType(child, "identifier"); name != nil {
				file.Package = nodeText(name, source)
			}
		default:
			if isTypeDeclaration(child.Kind()) {
				file.Methods = append(file.Methods, c.typeMethods(child, "")...)
			}
		}
	}
	return file, nil
}

// isTypeDeclaration reports whether kind declares a named type.
func isTypeDeclaration(kind string) bool {
	switch kind {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		return true
	}
	return false
}

// typeMethods collects the methods of a type declaration and of the types
// nested in it.
func (c *converter) typeMethods(decl *sitter.Node, outer string) []*syntax.Method {
	name := nodeText(decl.ChildByFieldName("name"), c.source)
	if outer != "" {
		name = outer + "." + name
	}

	body := decl.ChildByFieldName("body")
	members := namedChildren(body)
	// Enum methods live in a trailing declarations node.
	if decls := findChildByType(body, "enum_body_declarations"); decls != nil {
		members = append(members, namedChildren(decls)...)
	}

	var methods []*syntax.Method
	for _, member := range members {
		switch member.Kind() {
		case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
			methods = append(methods, c.method(member, name))
		default:
			if isTypeDeclaration(member.Kind()) {
				methods = append(methods, c.typeMethods(member, name)...)
			}
		}
	}
	return methods
}

func (c *converter) method(decl *sitter.Node, owner string) *syntax.Method {
	m := &syntax.Method{
		Name:    owner + "." + nodeText(decl.ChildByFieldName("name"), c.source),
		Line:    startLine(decl),
		EndLine: endLine(decl),
	}

	for _, param := range namedChildren(decl.ChildByFieldName("parameters")) {
		switch param.Kind() {
		case "formal_parameter":
			m.Params = append(m.Params, nodeText(param.ChildByFieldName("name"), c.source))
		case "spread_parameter":
			if d := findChildByType(param, "variable_declarator"); d != nil {
				m.Params = append(m.Params, nodeText(d.ChildByFieldName("name"), c.source))
			}
		}
	}
	// Record components are in scope of a compact constructor.
	if decl.Kind() == "compact_constructor_declaration" {
		if record := decl.Parent(); record != nil {
			if r := record.Parent(); r != nil {
				for _, param := range namedChildren(r.ChildByFieldName("parameters")) {
					m.Params = append(m.Params, nodeText(param.ChildByFieldName("name"), c.source))
				}
			}
		}
	}

	if body := decl.ChildByFieldName("body"); body != nil {
		m.Body = c.statements(namedChildren(body))
	}
	return m
}
