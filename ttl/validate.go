package ttl

import (
	"fmt"
	"math"

	"github.com/krux02/ttl/astshape"
)

// Validate recursively checks that node is a well-formed TTL term
// (component C3). It returns the Term it built along the way — validating
// and constructing a Term is the same recursive walk over the same
// nodes, so building the Term as a side effect of validating avoids a
// redundant second traversal; a caller that only wants the boolean can
// ignore the first result. It warns on every rule violation it can still
// make sense of, and continues checking sibling subterms so a single
// annotation surfaces as many diagnostics as possible, but the boolean
// result (and each recursive call's own result) goes false the moment any
// subterm of that call is invalid.
func Validate(node astshape.Node) (Term, []Diagnostic, bool) {
	var diags []Diagnostic
	term, ok := validateExpression(&diags, node)
	return term, diags, ok
}

func addInvalid(diags *[]Diagnostic, node astshape.Node, subject string) {
	*diags = append(*diags, diagSubject(node.Pos(), CodeInvalid, subject))
}

func addInvalidExpression(diags *[]Diagnostic, node astshape.Node, subject string) {
	*diags = append(*diags, diagSubject(node.Pos(), CodeInvalidExpression, subject))
}

func addInvalidInside(diags *[]Diagnostic, node astshape.Node, subject string) {
	*diags = append(*diags, diagSubject(node.Pos(), CodeInvalidInside, subject))
}

func addMissingParam(diags *[]Diagnostic, node astshape.Node, subject string) {
	*diags = append(*diags, diagSubject(node.Pos(), CodeMissingParam, subject))
}

func addExtraParam(diags *[]Diagnostic, node astshape.Node, subject string) {
	*diags = append(*diags, diagSubject(node.Pos(), CodeExtraParam, subject))
}

func checkArity(diags *[]Diagnostic, node astshape.Node, info KeywordInfo, name string) bool {
	n := len(astshape.Args(node))
	if n < info.MinArity {
		addMissingParam(diags, node, name)
		return false
	}
	if info.MaxArity != Variadic && n > info.MaxArity {
		addExtraParam(diags, node, name)
		return false
	}
	return true
}

func isTypeVarNode(n astshape.Node) bool  { return n != nil && n.Kind() == astshape.KindName }
func isTypeNameNode(n astshape.Node) bool { return n != nil && n.Kind() == astshape.KindString }

// validateExpression is "a valid TTL term is either a type variable, a
// type name, or a call to a TYPE_CONSTRUCTOR/OPERATION keyword" — the
// generic recursive-position validator. Boolean-predicate keywords
// (eq/sub/streq) are deliberately absent from this dispatch: the DSL only
// ever admits them as cond's first argument, via validateBooleanForm.
func validateExpression(diags *[]Diagnostic, node astshape.Node) (Term, bool) {
	switch node.Kind() {
	case astshape.KindString:
		return &TypeName{termBase{node.Pos()}, node.StringValue()}, true
	case astshape.KindName:
		return &TypeVar{termBase{node.Pos()}, node.StringValue()}, true
	case astshape.KindCall:
		name, ok := astshape.CalleeName(node)
		if !ok {
			addInvalidExpression(diags, node, "type transformation")
			return nil, false
		}
		info, known := LookupKeyword(name)
		if !known {
			addInvalidExpression(diags, node, "type transformation")
			return nil, false
		}
		switch info.Kind {
		case TypeConstructor:
			return validateTypeExpression(diags, node, info, name)
		case Operation:
			return validateOperationExpression(diags, node, info, name)
		default:
			// eq/sub/streq reached in a type-valued position.
			addInvalidExpression(diags, node, "type transformation")
			return nil, false
		}
	default:
		addInvalidExpression(diags, node, "type transformation")
		return nil, false
	}
}

func validateTypeExpression(diags *[]Diagnostic, node astshape.Node, info KeywordInfo, name string) (Term, bool) {
	switch info.Keyword {
	case KwAll, KwNone, KwUnknown:
		if !checkArity(diags, node, info, name) {
			return nil, false
		}
		return &Call{termBase{node.Pos()}, info.Keyword, name, nil}, true
	case KwType:
		return validateTemplateTypeExpr(diags, node, info, name)
	case KwUnion:
		return validateUnionExpr(diags, node, info, name)
	case KwRawTypeOf:
		return validateRawTypeOfExpr(diags, node, info, name)
	case KwTemplateTypeOf:
		return validateTemplateTypeOfExpr(diags, node, info, name)
	case KwRecord:
		return validateRecordExpr(diags, node, info, name)
	}
	panic(fmt.Sprintf("ttl: validate: unhandled type-constructor keyword %q", name))
}

// validateTemplateTypeExpr: type(typename|typevar, TTLExp, ...)
func validateTemplateTypeExpr(diags *[]Diagnostic, node astshape.Node, info KeywordInfo, name string) (Term, bool) {
	if !checkArity(diags, node, info, name) {
		return nil, false
	}
	args := astshape.Args(node)
	first := args[0]
	if !isTypeVarNode(first) && !isTypeNameNode(first) {
		addInvalid(diags, node, "type name or type variable")
		addInvalidInside(diags, node, "template type operation")
		return nil, false
	}
	base, _ := validateExpression(diags, first)

	ok := true
	params := make([]Term, 0, len(args)-1)
	for _, a := range args[1:] {
		p, pok := validateExpression(diags, a)
		if !pok {
			ok = false
			continue
		}
		params = append(params, p)
	}
	if !ok {
		addInvalidInside(diags, node, "template type operation")
		return nil, false
	}
	return &Call{termBase{node.Pos()}, KwType, name, append([]Term{base}, params...)}, true
}

// validateUnionExpr: union(TTLExp, TTLExp, ...)
func validateUnionExpr(diags *[]Diagnostic, node astshape.Node, info KeywordInfo, name string) (Term, bool) {
	if !checkArity(diags, node, info, name) {
		return nil, false
	}
	args := astshape.Args(node)
	ok := true
	terms := make([]Term, 0, len(args))
	for _, a := range args {
		t, tok := validateExpression(diags, a)
		if !tok {
			ok = false
			continue
		}
		terms = append(terms, t)
	}
	if !ok {
		addInvalidInside(diags, node, "union type")
		return nil, false
	}
	return &Call{termBase{node.Pos()}, KwUnion, name, terms}, true
}

// validateRawTypeOfExpr: rawTypeOf(TTLExp)
func validateRawTypeOfExpr(diags *[]Diagnostic, node astshape.Node, info KeywordInfo, name string) (Term, bool) {
	if !checkArity(diags, node, info, name) {
		return nil, false
	}
	args := astshape.Args(node)
	t, ok := validateExpression(diags, args[0])
	if !ok {
		addInvalidInside(diags, node, name)
		return nil, false
	}
	return &Call{termBase{node.Pos()}, KwRawTypeOf, name, []Term{t}}, true
}

// validateTemplateTypeOfExpr: templateTypeOf(TTLExp, index)
func validateTemplateTypeOfExpr(diags *[]Diagnostic, node astshape.Node, info KeywordInfo, name string) (Term, bool) {
	if !checkArity(diags, node, info, name) {
		return nil, false
	}
	args := astshape.Args(node)
	base, baseOk := validateExpression(diags, args[0])
	if !baseOk {
		addInvalidInside(diags, node, name)
		return nil, false
	}
	idxNode := args[1]
	if idxNode.Kind() != astshape.KindNumber {
		addInvalid(diags, node, "index")
		addInvalidInside(diags, node, name)
		return nil, false
	}
	v := idxNode.NumberValue()
	if v != math.Trunc(v) || v < 0 {
		addInvalid(diags, node, "index")
		addInvalidInside(diags, node, name)
		return nil, false
	}
	idx := &NumberLit{termBase{idxNode.Pos()}, int64(v)}
	return &Call{termBase{node.Pos()}, KwTemplateTypeOf, name, []Term{base, idx}}, true
}

// validateRecordExpr: record({name: TTLExp, [computed]: TTLExp, ...})
func validateRecordExpr(diags *[]Diagnostic, node astshape.Node, info KeywordInfo, name string) (Term, bool) {
	if !checkArity(diags, node, info, name) {
		return nil, false
	}
	args := astshape.Args(node)
	obj := args[0]
	if !astshape.IsObjectLiteral(obj) {
		addInvalid(diags, obj, "record expression")
		return nil, false
	}
	props := astshape.Properties(obj)
	if len(props) < 1 {
		addMissingParam(diags, obj, "record expression")
		return nil, false
	}
	ok := true
	built := make([]RecordProp, 0, len(props))
	for _, p := range props {
		keyName, hasKey := astshape.PropertyKeyName(p)
		valNode := astshape.PropertyValue(p)
		if !hasKey || valNode == nil {
			addInvalid(diags, p, "property, missing type")
			addInvalidInside(diags, p, name)
			ok = false
			continue
		}
		valTerm, vok := validateExpression(diags, valNode)
		if !vok {
			addInvalidInside(diags, p, name)
			ok = false
			continue
		}
		built = append(built, RecordProp{Name: keyName, Computed: astshape.IsComputedProperty(p), Value: valTerm})
	}
	if !ok {
		return nil, false
	}
	rec := &RecordLit{termBase{obj.Pos()}, built}
	return &Call{termBase{node.Pos()}, KwRecord, name, []Term{rec}}, true
}

func validateOperationExpression(diags *[]Diagnostic, node astshape.Node, info KeywordInfo, name string) (Term, bool) {
	switch info.Keyword {
	case KwCond:
		return validateCondExpr(diags, node, info, name)
	case KwMapUnion:
		return validateMapUnionExpr(diags, node, info, name)
	case KwMapRecord:
		return validateMapRecordExpr(diags, node, info, name)
	case KwTypeOfVar:
		return validateTypeOfVarExpr(diags, node, info, name)
	}
	panic(fmt.Sprintf("ttl: validate: unhandled operation keyword %q", name))
}

// validateCondExpr: cond(BoolExp, TTLExp, TTLExp). Arity is checked first,
// then the condition's boolean shape, matching the original parser's
// ordering (spec.md §11).
func validateCondExpr(diags *[]Diagnostic, node astshape.Node, info KeywordInfo, name string) (Term, bool) {
	if !checkArity(diags, node, info, name) {
		return nil, false
	}
	args := astshape.Args(node)
	ok := true
	cond, cok := validateBooleanForm(diags, args[0])
	if !cok {
		addInvalidInside(diags, node, "conditional")
		ok = false
	}
	then, tok := validateExpression(diags, args[1])
	if !tok {
		addInvalidInside(diags, node, "conditional")
		ok = false
	}
	els, eok := validateExpression(diags, args[2])
	if !eok {
		addInvalidInside(diags, node, "conditional")
		ok = false
	}
	if !ok {
		return nil, false
	}
	return &Call{termBase{node.Pos()}, KwCond, name, []Term{cond, then, els}}, true
}

// validateBooleanForm validates a BOOLEAN_TYPE_PREDICATE or
// BOOLEAN_STRING_PREDICATE call: the only position in the grammar where
// eq/sub/streq are admitted.
func validateBooleanForm(diags *[]Diagnostic, node astshape.Node) (Term, bool) {
	if node.Kind() != astshape.KindCall {
		addInvalidExpression(diags, node, "boolean")
		return nil, false
	}
	name, ok := astshape.CalleeName(node)
	if !ok {
		addInvalidExpression(diags, node, "boolean")
		return nil, false
	}
	info, known := LookupKeyword(name)
	if !known || !IsBooleanForm(info.Keyword) {
		addInvalid(diags, node, "boolean predicate")
		return nil, false
	}
	if !checkArity(diags, node, info, name) {
		return nil, false
	}
	switch info.Kind {
	case BooleanTypePredicate:
		return validateBooleanTypePredicate(diags, node, info, name)
	case BooleanStringPredicate:
		return validateBooleanStringPredicate(diags, node, info, name)
	}
	panic("ttl: validate: unhandled boolean predicate kind")
}

func validateBooleanTypePredicate(diags *[]Diagnostic, node astshape.Node, info KeywordInfo, name string) (Term, bool) {
	args := astshape.Args(node)
	ok := true
	a, aok := validateExpression(diags, args[0])
	if !aok {
		ok = false
	}
	b, bok := validateExpression(diags, args[1])
	if !bok {
		ok = false
	}
	if !ok {
		addInvalidInside(diags, node, "boolean")
		return nil, false
	}
	return &Call{termBase{node.Pos()}, info.Keyword, name, []Term{a, b}}, true
}

func validateBooleanStringPredicate(diags *[]Diagnostic, node astshape.Node, info KeywordInfo, name string) (Term, bool) {
	args := astshape.Args(node)
	ok := true
	a, aok := validateNameOrString(diags, args[0])
	if !aok {
		ok = false
	}
	b, bok := validateNameOrString(diags, args[1])
	if !bok {
		ok = false
	}
	if !ok {
		addInvalidInside(diags, node, "boolean")
		return nil, false
	}
	return &Call{termBase{node.Pos()}, info.Keyword, name, []Term{a, b}}, true
}

func validateNameOrString(diags *[]Diagnostic, node astshape.Node) (Term, bool) {
	switch node.Kind() {
	case astshape.KindName:
		return &NameRef{termBase{node.Pos()}, node.StringValue()}, true
	case astshape.KindString:
		if node.StringValue() == "" {
			addInvalid(diags, node, "string parameter")
			return nil, false
		}
		return &StringLit{termBase{node.Pos()}, node.StringValue()}, true
	default:
		addInvalid(diags, node, "string")
		return nil, false
	}
}

// validateMapUnionExpr: mapunion(TTLExp, (typevar) => TTLExp)
func validateMapUnionExpr(diags *[]Diagnostic, node astshape.Node, info KeywordInfo, name string) (Term, bool) {
	if !checkArity(diags, node, info, name) {
		return nil, false
	}
	args := astshape.Args(node)
	ok := true
	subject, sok := validateExpression(diags, args[0])
	if !sok {
		addInvalidInside(diags, args[0], name)
		ok = false
	}
	fn, fok := validateFuncLit(diags, args[1], 1, name)
	if !fok {
		ok = false
	}
	if !ok {
		return nil, false
	}
	return &Call{termBase{node.Pos()}, KwMapUnion, name, []Term{subject, fn}}, true
}

// validateMapRecordExpr: maprecord(TTLExp, (typevar, typevar) => TTLExp)
func validateMapRecordExpr(diags *[]Diagnostic, node astshape.Node, info KeywordInfo, name string) (Term, bool) {
	if !checkArity(diags, node, info, name) {
		return nil, false
	}
	args := astshape.Args(node)
	ok := true
	subject, sok := validateExpression(diags, args[0])
	if !sok {
		addInvalidInside(diags, args[0], name)
		ok = false
	}
	fn, fok := validateFuncLit(diags, args[1], 2, name)
	if !fok {
		ok = false
	}
	if !ok {
		return nil, false
	}
	return &Call{termBase{node.Pos()}, KwMapRecord, name, []Term{subject, fn}}, true
}

func validateFuncLit(diags *[]Diagnostic, node astshape.Node, arity int, ownerName string) (Term, bool) {
	if !astshape.IsFunction(node) {
		addInvalid(diags, node, "map function")
		addInvalidInside(diags, node, ownerName)
		return nil, false
	}
	params := astshape.FuncParams(node)
	if len(params) < arity {
		addMissingParam(diags, node, "map function")
		addInvalidInside(diags, node, ownerName)
		return nil, false
	}
	if len(params) > arity {
		addExtraParam(diags, node, "map function")
		addInvalidInside(diags, node, ownerName)
		return nil, false
	}
	bodyNode := astshape.FuncBody(node)
	body, ok := validateExpression(diags, bodyNode)
	if !ok {
		addInvalidInside(diags, bodyNode, "map function body")
		return nil, false
	}
	return &FuncLit{termBase{node.Pos()}, params, body}, true
}

// validateTypeOfVarExpr: typeOfVar(name)
func validateTypeOfVarExpr(diags *[]Diagnostic, node astshape.Node, info KeywordInfo, name string) (Term, bool) {
	if !checkArity(diags, node, info, name) {
		return nil, false
	}
	args := astshape.Args(node)
	if !isTypeVarNode(args[0]) {
		addInvalid(diags, node, "name")
		addInvalidInside(diags, node, name)
		return nil, false
	}
	ref := &NameRef{termBase{args[0].Pos()}, args[0].StringValue()}
	return &Call{termBase{node.Pos()}, KwTypeOfVar, name, []Term{ref}}, true
}
