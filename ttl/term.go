package ttl

import "github.com/krux02/ttl/astshape"

// Term is a validated TTL abstract syntax tree node. It is a closed sum
// type (the unexported isTerm method keeps other packages from adding
// arms). Go does not check type switches for exhaustiveness, so the
// "impossible term"/"impossible keyword" branches in eval.go are runtime
// panics rather than compile-time checks.
type Term interface {
	isTerm()
	// Pos is the location of the node this term was validated from, used
	// only to attribute diagnostics.
	Pos() astshape.Position
}

type termBase struct {
	pos astshape.Position
}

func (termBase) isTerm()                  {}
func (t termBase) Pos() astshape.Position { return t.pos }

// TypeName is a string-literal leaf denoting a host type name.
type TypeName struct {
	termBase
	Name string
}

// TypeVar is an identifier leaf denoting a variable bound in TypeVars.
type TypeVar struct {
	termBase
	Name string
}

// NameRef is an identifier leaf that is not a type variable: a streq
// operand resolved through NameVars, or typeOfVar's argument resolved
// through Host.Slot. Computed record-property keys are not NameRefs; they
// are kept as RecordProp.Name with Computed set.
type NameRef struct {
	termBase
	Name string
}

// NumberLit is the non-negative integer literal required as the second
// argument of templateTypeOf.
type NumberLit struct {
	termBase
	Value int64
}

// StringLit is a non-empty string literal used directly as a streq
// argument. A string literal in any type-valued position (including a
// record property value) becomes a TypeName instead.
type StringLit struct {
	termBase
	Value string
}

// FuncLit is the function-literal argument to mapunion (1 param) and
// maprecord (2 params); its body is itself a TTL term.
type FuncLit struct {
	termBase
	Params []string
	Body   Term
}

// RecordProp is one property of a RecordLit: either a plain name or a
// computed name (resolved through NameVars at evaluation time).
type RecordProp struct {
	Name     string
	Computed bool
	Value    Term
}

// RecordLit is the object-literal sole argument of record(...).
type RecordLit struct {
	termBase
	Props []RecordProp
}

// Call is a call node with a head keyword and an ordered argument list.
// KeywordName preserves the AST's original spelling (which may differ in
// case from Keyword's canonical name) for diagnostics.
type Call struct {
	termBase
	Keyword     Keyword
	KeywordName string
	Args        []Term
}
