package semi

import (
	"slices"
	"strings"

	"github.com/mvp-joe/semi/internal/syntax"
)

// NameSet is an unordered set of names.
type NameSet map[string]struct{}

// NewNameSet returns a set holding names.
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s NameSet) add(name string) {
	if name != "" {
		s[name] = struct{}{}
	}
}

// Has reports whether name is in the set.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Intersects reports whether s and o share at least one name.
func (s NameSet) Intersects(o NameSet) bool {
	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	for n := range small {
		if _, ok := large[n]; ok {
			return true
		}
	}
	return false
}

// Equal reports whether both sets hold the same names.
func (s NameSet) Equal(o NameSet) bool {
	if len(s) != len(o) {
		return false
	}
	for n := range s {
		if _, ok := o[n]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the names in lexical order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// refersTo reports whether the set uses name directly or as the head of a
// dotted access chain.
func (s NameSet) refersTo(name string) bool {
	if s.Has(name) {
		return true
	}
	prefix := name + "."
	for n := range s {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

// StatementSemantic is what a statement touches: the variables, fields and
// parameters it references (dotted chains collapsed into one name) and the
// simple names of the methods it invokes.
type StatementSemantic struct {
	UsedObjects NameSet
	UsedMethods NameSet
}

// Equal reports whether both semantics use the same objects and methods.
func (s StatementSemantic) Equal(o StatementSemantic) bool {
	return s.UsedObjects.Equal(o.UsedObjects) && s.UsedMethods.Equal(o.UsedMethods)
}

// IsEmpty reports whether the statement references nothing.
func (s StatementSemantic) IsEmpty() bool {
	return len(s.UsedObjects) == 0 && len(s.UsedMethods) == 0
}

// Entry pairs a statement with its semantic. Declared and Written are kept
// beside the semantic for the legality filter; they take no part in equality.
type Entry struct {
	Statement *Statement
	Semantic  StatementSemantic

	// Declared holds names introduced by the statement's own declarators.
	Declared NameSet
	// Written holds plain identifiers assigned or updated by the statement.
	Written NameSet
	// Captured holds names referenced inside lambdas, anonymous classes and
	// local types of the statement. They are not part of the semantic.
	Captured NameSet
}

// SemanticMap holds one Entry per statement of a sequence, in sequence order.
type SemanticMap struct {
	seq     *Sequence
	entries []Entry
}

// ExtractSemantics computes the semantic of every statement of m.
func ExtractSemantics(m *syntax.Method) *SemanticMap {
	return ExtractSequence(Flatten(m))
}

// ExtractSequence computes the semantic of every statement of seq.
func ExtractSequence(seq *Sequence) *SemanticMap {
	sm := &SemanticMap{seq: seq, entries: make([]Entry, len(seq.Statements))}
	for i, st := range seq.Statements {
		sm.entries[i] = collect(st)
	}
	return sm
}

// Len returns the number of entries.
func (sm *SemanticMap) Len() int { return len(sm.entries) }

// Entries returns the entries in sequence order. The slice must not be modified.
func (sm *SemanticMap) Entries() []Entry { return sm.entries }

// At returns the entry of statement i.
func (sm *SemanticMap) At(i int) Entry { return sm.entries[i] }

// Sequence returns the statement sequence the map was built from.
func (sm *SemanticMap) Sequence() *Sequence { return sm.seq }

// collect walks the header expressions of a statement. Nested statements are
// entries of their own and are not visited here.
func collect(st *Statement) Entry {
	e := Entry{
		Statement: st,
		Semantic: StatementSemantic{
			UsedObjects: NameSet{},
			UsedMethods: NameSet{},
		},
		Declared: NameSet{},
		Written:  NameSet{},
		Captured: NameSet{},
	}
	if st.Node.Kind.IsOpaque() {
		for _, n := range st.Node.Captures {
			e.Captured.add(n)
		}
		return e
	}

	objects := e.Semantic.UsedObjects
	methods := e.Semantic.UsedMethods

	stack := make([]*syntax.Node, 0, len(st.Node.Children))
	push := func(nodes ...*syntax.Node) {
		for i := len(nodes) - 1; i >= 0; i-- {
			if nodes[i] != nil {
				stack = append(stack, nodes[i])
			}
		}
	}
	push(st.Node.Children...)

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Kind {
		case syntax.KindIdentifier:
			objects.add(n.Text)

		case syntax.KindThis, syntax.KindLiteral, syntax.KindTypeRef:

		case syntax.KindFieldAccess:
			if name, ok := chainName(n); ok {
				objects.add(name)
			} else {
				objects.add(n.Text)
				push(n.Receiver)
			}

		case syntax.KindMethodCall:
			methods.add(n.Text)
			if n.Receiver != nil {
				if name, ok := chainName(n.Receiver); ok {
					objects.add(name)
				} else {
					push(n.Receiver)
				}
			}
			push(n.Children...)

		case syntax.KindDeclarator:
			objects.add(n.Text)
			e.Declared.add(n.Text)
			push(n.Children...)

		case syntax.KindAssign, syntax.KindUpdate:
			if len(n.Children) > 0 && n.Children[0] != nil && n.Children[0].Kind == syntax.KindIdentifier {
				e.Written.add(n.Children[0].Text)
			}
			push(n.Children...)

		case syntax.KindLambda, syntax.KindClassBody, syntax.KindLocalType:
			// Own scope.
			for _, name := range n.Captures {
				e.Captured.add(name)
			}

		case syntax.KindUnknown:
			objects.add(n.Text)
			push(n.Receiver)
			push(n.Children...)

		default:
			push(n.Receiver)
			push(n.Children...)
		}
	}

	return e
}

// chainName collapses an access chain built only of identifiers and field
// accesses into one dotted name. A leading this/super is dropped, so this.x is
// reported as x. ok is false when some link of the chain is another kind of
// expression.
func chainName(n *syntax.Node) (string, bool) {
	var parts []string
	for cur := n; cur != nil; {
		switch cur.Kind {
		case syntax.KindIdentifier:
			parts = append(parts, cur.Text)
			cur = nil
		case syntax.KindThis:
			cur = nil
		case syntax.KindFieldAccess:
			parts = append(parts, cur.Text)
			cur = cur.Receiver
		default:
			return "", false
		}
	}
	slices.Reverse(parts)
	return strings.Join(parts, "."), true
}
