package syntax

// Kind tags a Node. The set is closed: front ends map anything they do not
// recognise onto KindOther (statements) or KindUnknown (expressions).
type Kind uint8

const (
	// Statement kinds.
	KindOther Kind = iota
	KindDeclaration
	KindExpression
	KindIf
	KindFor
	KindForEach
	KindWhile
	KindDo
	KindSwitch
	KindCase
	KindTry
	KindCatch
	KindFinally
	KindSynchronized
	KindBlock
	KindBreak
	KindContinue
	KindReturn
	KindThrow
	KindYield
	KindAssert
	KindLocalType

	// Expression kinds.
	KindIdentifier
	KindFieldAccess
	KindMethodCall
	KindArrayAccess
	KindAssign
	KindUpdate
	KindDeclarator
	KindThis
	KindLiteral
	KindTypeRef
	KindLambda
	KindClassBody
	KindOperator
	KindUnknown
)

var kindNames = [...]string{
	KindOther:        "Other",
	KindDeclaration:  "Declaration",
	KindExpression:   "Expression",
	KindIf:           "If",
	KindFor:          "For",
	KindForEach:      "ForEach",
	KindWhile:        "While",
	KindDo:           "Do",
	KindSwitch:       "Switch",
	KindCase:         "Case",
	KindTry:          "Try",
	KindCatch:        "Catch",
	KindFinally:      "Finally",
	KindSynchronized: "Synchronized",
	KindBlock:        "Block",
	KindBreak:        "Break",
	KindContinue:     "Continue",
	KindReturn:       "Return",
	KindThrow:        "Throw",
	KindYield:        "Yield",
	KindAssert:       "Assert",
	KindLocalType:    "LocalType",
	KindIdentifier:   "Identifier",
	KindFieldAccess:  "FieldAccess",
	KindMethodCall:   "MethodCall",
	KindArrayAccess:  "ArrayAccess",
	KindAssign:       "Assign",
	KindUpdate:       "Update",
	KindDeclarator:   "Declarator",
	KindThis:         "This",
	KindLiteral:      "Literal",
	KindTypeRef:      "TypeRef",
	KindLambda:       "Lambda",
	KindClassBody:    "ClassBody",
	KindOperator:     "Operator",
	KindUnknown:      "Unknown",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsStatement reports whether k is one of the statement kinds.
func (k Kind) IsStatement() bool {
	return k <= KindLocalType
}

// IsLoop reports whether k is a loop statement (a continue target).
func (k Kind) IsLoop() bool {
	switch k {
	case KindFor, KindForEach, KindWhile, KindDo:
		return true
	}
	return false
}

// IsBreakTarget reports whether an unlabeled break can leave a statement of kind k.
func (k Kind) IsBreakTarget() bool {
	return k.IsLoop() || k == KindSwitch
}

// IsClause reports whether k is a clause that only exists inside its owning
// statement (a switch case, a catch or a finally) and cannot stand alone.
func (k Kind) IsClause() bool {
	switch k {
	case KindCase, KindCatch, KindFinally:
		return true
	}
	return false
}

// IsOpaque reports whether k starts a nested scope that analysis of the
// enclosing method never looks into.
func (k Kind) IsOpaque() bool {
	switch k {
	case KindLambda, KindClassBody, KindLocalType:
		return true
	}
	return false
}
