package semi

import (
	. "github.com/mvp-joe/semi/internal/syntax"
)

// grabManifests is the tree of ExampleFromPaper.grabManifests, built by hand
// with the same shape the Java front end produces.
func grabManifests() *Method {
	rcsI := func() *Node { return Index(Ident("rcs"), Ident("i")) }
	recJ := func() *Node { return Index(Index(Ident("rec"), Lit("0")), Ident("j")) }
	manifestsI := func() *Node { return Index(Ident("manifests"), Ident("i")) }
	getProj := func() *Node { return Call(nil, "getProj") }

	// if (!pr.endsWith("/") && !pr.endsWith("\\")) { pr += "/"; }
	trailingSlash := Stmt(KindIf, 23,
		Op(Op(Call(Ident("pr"), "endsWith", Lit(`"/"`))), Op(Call(Ident("pr"), "endsWith", Lit(`"\\"`)))),
	).WithBlocks([]*Node{
		Stmt(KindExpression, 24, Assign(Ident("pr"), Lit(`"/"`))),
	}).WithEnd(25)

	prefix := Stmt(KindIf, 21,
		Op(Call(Lit(`""`), "equals", Call(Ident("afs"), "getPref", getProj()))),
	).WithBlocks([]*Node{
		Stmt(KindDeclaration, 22, Type("String"), Declarator("pr", Call(Ident("afs"), "getPref", getProj()))),
		trailingSlash,
		Stmt(KindExpression, 26, Assign(Ident("name"), Op(Ident("pr"), Ident("name")))),
	}).WithEnd(27)

	fullpath := Stmt(KindIf, 19,
		Op(Call(Lit(`""`), "equals", Call(Ident("afs"), "getFullpath", getProj()))),
	).WithBlocks(
		[]*Node{Stmt(KindExpression, 20, Assign(Ident("name"), Call(Ident("afs"), "getFullpath", getProj())))},
		[]*Node{prefix},
	)

	archive := Stmt(KindIf, 17, Op(rcsI(), Type("ArchiveFileSet"))).WithBlocks([]*Node{
		Stmt(KindDeclaration, 18, Type("ArchiveFileSet"), Declarator("afs", Op(Type("ArchiveFileSet"), rcsI()))),
		fullpath,
	}).WithEnd(28)

	match := Stmt(KindIf, 29, Call(Ident("name"), "equalsIgnoreCase", Ident("MANIFEST_NAME"))).WithBlocks([]*Node{
		Stmt(KindExpression, 30, Assign(manifestsI(), Call(nil, "getManifest", recJ()))),
		Stmt(KindBreak, 31),
	}).WithEnd(32)

	inner := Stmt(KindFor, 15,
		Declarator("j", Lit("0")),
		Op(Ident("j"), Field(Index(Ident("rec"), Lit("0")), "length")),
		Update(Ident("j")),
	).WithBlocks([]*Node{
		Stmt(KindDeclaration, 16, Type("String"),
			Declarator("name", Call(Call(recJ(), "getName"), "replace", Lit(`'\\'`), Lit(`'/'`)))),
		archive,
		match,
	}).WithEnd(33)

	fileSet := Stmt(KindIf, 10, Op(rcsI(), Type("FileSet"))).WithBlocks(
		[]*Node{Stmt(KindExpression, 11, Assign(Ident("rec"), Call(nil, "grabRes", Op(Type("FileSet"), rcsI()))))},
		[]*Node{Stmt(KindExpression, 13, Assign(Ident("rec"), Call(nil, "grabNonFileSetRes", Op(Type("ResourceCollection"), rcsI()))))},
	).WithEnd(14)

	missing := Stmt(KindIf, 34, Op(manifestsI(), Lit("null"))).WithBlocks([]*Node{
		Stmt(KindExpression, 35, Assign(manifestsI(), Op(Type("Manifest")))),
	}).WithEnd(36)

	outer := Stmt(KindFor, 8,
		Declarator("i", Lit("0")),
		Op(Ident("i"), Field(Ident("rcs"), "length")),
		Update(Ident("i")),
	).WithBlocks([]*Node{
		Stmt(KindDeclaration, 9, Type("Resource"), Declarator("rec", Lit("null"))),
		fileSet,
		inner,
		missing,
	}).WithEnd(37)

	return &Method{
		Name:    "ExampleFromPaper.grabManifests",
		Line:    6,
		EndLine: 39,
		Params:  []string{"rcs"},
		Body: []*Node{
			Stmt(KindDeclaration, 7, Type("Manifest"),
				Declarator("manifests", Op(Type("Manifest"), Field(Ident("rcs"), "length")))),
			outer,
			Stmt(KindReturn, 38, Ident("manifests")),
		},
	}
}

// lineSpans returns the start lines of the first and last statement of each
// opportunity.
func lineSpans(opps []ExtractionOpportunity) [][2]int {
	out := make([][2]int, len(opps))
	for i, o := range opps {
		first, last := o.Lines()
		out[i] = [2]int{first, last}
	}
	return out
}
