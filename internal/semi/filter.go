package semi

import "github.com/mvp-joe/semi/internal/syntax"

// Reason says why an opportunity cannot be extracted.
type Reason uint8

const (
	Accepted Reason = iota
	// ReasonInconsistentInput: the opportunity or method does not belong to the semantic map.
	ReasonInconsistentInput
	// ReasonWholeBody: the span is the entire method body.
	ReasonWholeBody
	// ReasonPartialStatement: a statement's nested statements are not all in the span.
	ReasonPartialStatement
	// ReasonMixedContainers: the span starts and ends in different blocks.
	ReasonMixedContainers
	// ReasonDetachedClause: a case, catch or finally clause without its owner.
	ReasonDetachedClause
	// ReasonEscapingBreak: a break or yield whose target is outside the span.
	ReasonEscapingBreak
	// ReasonEscapingContinue: a continue whose loop is outside the span.
	ReasonEscapingContinue
	// ReasonMisplacedReturn: a return that is not the span's last top-level statement.
	ReasonMisplacedReturn
	// ReasonMultipleOutputs: more than one variable set in the span is used afterwards.
	ReasonMultipleOutputs
	// ReasonOutputWithReturn: the span returns and also hands a variable back.
	ReasonOutputWithReturn
)

var reasonNames = [...]string{
	Accepted:                "accepted",
	ReasonInconsistentInput: "inconsistent input",
	ReasonWholeBody:         "whole method body",
	ReasonPartialStatement:  "partial statement",
	ReasonMixedContainers:   "crosses block boundary",
	ReasonDetachedClause:    "detached clause",
	ReasonEscapingBreak:     "break leaves span",
	ReasonEscapingContinue:  "continue leaves span",
	ReasonMisplacedReturn:   "misplaced return",
	ReasonMultipleOutputs:   "multiple output variables",
	ReasonOutputWithReturn:  "output variable with return",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// FilterOpportunities keeps the opportunities that can be lifted into an
// independent method without changing behavior. The result is a
// sub-sequence of opps in the same order; anything that cannot be shown
// safe is dropped.
func FilterOpportunities(opps []ExtractionOpportunity, sm *SemanticMap, method *syntax.Method) []ExtractionOpportunity {
	var out []ExtractionOpportunity
	for _, o := range opps {
		if Explain(o, sm, method) == Accepted {
			out = append(out, o)
		}
	}
	return out
}

// Explain returns the first legality rule o breaks, or Accepted.
func Explain(o ExtractionOpportunity, sm *SemanticMap, method *syntax.Method) Reason {
	if sm == nil || sm.seq == nil || sm.seq.Method != method {
		return ReasonInconsistentInput
	}
	seq := sm.seq
	a, b := o.Start(), o.End()
	if len(o.Statements) == 0 || a < 0 || b >= seq.Len() || a > b ||
		len(o.Statements) != b-a+1 || o.Statements[0] != seq.Statements[a] {
		return ReasonInconsistentInput
	}

	if r := checkStructure(seq, a, b); r != Accepted {
		return r
	}
	if a == 0 && b == seq.Len()-1 {
		return ReasonWholeBody
	}
	if r := checkTransfers(seq, a, b); r != Accepted {
		return r
	}
	return checkOutputs(sm, method, a, b)
}

// checkStructure requires whole statements from a single block.
func checkStructure(seq *Sequence, a, b int) Reason {
	first := seq.Statements[a]
	for k := a; k <= b; k++ {
		st := seq.Statements[k]
		if st.Last > b {
			return ReasonPartialStatement
		}
		if st.Parent >= a {
			continue
		}
		if st.Parent != first.Parent || st.Block != first.Block {
			return ReasonMixedContainers
		}
		if st.Kind().IsClause() {
			return ReasonDetachedClause
		}
	}
	return Accepted
}

// checkTransfers rejects jumps whose destination lies outside the span.
func checkTransfers(seq *Sequence, a, b int) Reason {
	for k := a; k <= b; k++ {
		st := seq.Statements[k]
		switch st.Kind() {
		case syntax.KindBreak:
			if jumpTarget(seq, k, st.Node.Label, syntax.Kind.IsBreakTarget) < a {
				return ReasonEscapingBreak
			}
		case syntax.KindYield:
			if jumpTarget(seq, k, "", func(k syntax.Kind) bool { return k == syntax.KindSwitch }) < a {
				return ReasonEscapingBreak
			}
		case syntax.KindContinue:
			if jumpTarget(seq, k, st.Node.Label, syntax.Kind.IsLoop) < a {
				return ReasonEscapingContinue
			}
		case syntax.KindReturn:
			if k != b || st.Parent >= a {
				return ReasonMisplacedReturn
			}
		}
	}
	return Accepted
}

// jumpTarget returns the index of the statement a jump at k leaves, or -1
// when there is none. A labeled jump targets the enclosing statement with
// that label.
func jumpTarget(seq *Sequence, k int, label string, isTarget func(syntax.Kind) bool) int {
	for _, p := range seq.Ancestors(k) {
		node := seq.Statements[p].Node
		if label != "" {
			if node.Label == label {
				return p
			}
			continue
		}
		if isTarget(node.Kind) {
			return p
		}
	}
	return -1
}

// checkOutputs allows at most one variable to flow out of the span, since
// the extracted method can hand back a single value.
func checkOutputs(sm *SemanticMap, method *syntax.Method, a, b int) Reason {
	locals := NewNameSet(method.Params...)
	for _, e := range sm.entries {
		for n := range e.Declared {
			locals.add(n)
		}
	}

	declaredInSpan := NameSet{}
	candidates := NameSet{}
	hasReturn := false
	for k := a; k <= b; k++ {
		e := sm.entries[k]
		for n := range e.Declared {
			declaredInSpan.add(n)
		}
		// Only a declaration at the span's top level stays in scope afterwards.
		if e.Statement.Parent < a && e.Statement.Kind() == syntax.KindDeclaration {
			for n := range e.Declared {
				candidates.add(n)
			}
		}
		if e.Statement.Kind() == syntax.KindReturn {
			hasReturn = true
		}
	}
	for k := a; k <= b; k++ {
		for n := range sm.entries[k].Written {
			if locals.Has(n) && !declaredInSpan.Has(n) {
				candidates.add(n)
			}
		}
	}
	if len(candidates) == 0 {
		return Accepted
	}

	outputs := 0
	for n := range candidates {
		if usedOutside(sm, a, b, n) {
			outputs++
		}
	}

	switch {
	case outputs > 1:
		return ReasonMultipleOutputs
	case outputs == 1 && hasReturn:
		return ReasonOutputWithReturn
	}
	return Accepted
}

// usedOutside reports whether a statement that can run after the span reads
// or writes name: any later statement, and any other statement of a loop
// that encloses the span. Captures by lambdas and local classes count.
func usedOutside(sm *SemanticMap, a, b int, name string) bool {
	seq := sm.seq
	for k := b + 1; k < seq.Len(); k++ {
		if sm.entries[k].refersTo(name) {
			return true
		}
	}
	for _, p := range seq.Ancestors(a) {
		loop := seq.Statements[p]
		if !loop.Kind().IsLoop() {
			continue
		}
		for k := loop.Index; k < a; k++ {
			if sm.entries[k].refersTo(name) {
				return true
			}
		}
	}
	return false
}

func (e Entry) refersTo(name string) bool {
	return e.Semantic.UsedObjects.refersTo(name) || e.Captured.refersTo(name)
}
