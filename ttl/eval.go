package ttl

import "strconv"

// Eval computes the host type denoted by term (component C4). It never
// fails outright: every branch that cannot make sense of its input warns
// and falls back to the host's canonical *unknown* type, so a caller
// always gets a Type back. evalType and evalBool are mutually recursive,
// mirroring the term grammar's own mutual recursion between type-valued
// and boolean-valued forms.
func Eval(term Term, tv *TypeVars, nv *NameVars, host Host) (Type, []Diagnostic) {
	var diags []Diagnostic
	t := evalType(&diags, term, tv, nv, host)
	return t, diags
}

func unknown(host Host) Type { return host.Native(NativeUnknown) }

func evalType(diags *[]Diagnostic, term Term, tv *TypeVars, nv *NameVars, host Host) Type {
	switch t := term.(type) {
	case *TypeName:
		if resolved, ok := host.Resolve(t.Name); ok {
			return resolved
		}
		*diags = append(*diags, diag(t.Pos(), CodeUnknownTypeName, t.Name))
		return unknown(host)

	case *TypeVar:
		if resolved, ok := tv.Lookup(t.Name); ok {
			return resolved
		}
		*diags = append(*diags, diag(t.Pos(), CodeUnknownTypeVar, t.Name))
		return unknown(host)

	case *Call:
		return evalCall(diags, t, tv, nv, host)

	default:
		// Unreachable: Validate never yields any other Term for a
		// type-valued position.
		panic("ttl: eval: impossible term in type position")
	}
}

func evalCall(diags *[]Diagnostic, call *Call, tv *TypeVars, nv *NameVars, host Host) Type {
	switch call.Keyword {
	case KwAll:
		return host.Native(NativeAll)
	case KwNone:
		return host.Native(NativeNo)
	case KwUnknown:
		return unknown(host)

	case KwType:
		return evalTemplatize(diags, call, tv, nv, host)

	case KwUnion:
		// No flattening is performed here; deduplication and any
		// flattening policy belong to host.Union.
		alts := make([]Type, len(call.Args))
		for i, a := range call.Args {
			alts[i] = evalType(diags, a, tv, nv, host)
		}
		return host.Union(alts...)

	case KwRecord:
		rec := call.Args[0].(*RecordLit)
		return evalRecordLit(diags, rec, tv, nv, host)

	case KwRawTypeOf:
		base := evalType(diags, call.Args[0], tv, nv, host)
		if raw, _, ok := host.IsTemplatized(base); ok {
			return raw
		}
		*diags = append(*diags, diag(call.Pos(), CodeTempTypeInvalid, "rawTypeOf"))
		return unknown(host)

	case KwTemplateTypeOf:
		return evalTemplateTypeOf(diags, call, tv, nv, host)

	case KwCond:
		if evalBool(diags, call.Args[0], tv, nv, host) {
			return evalType(diags, call.Args[1], tv, nv, host)
		}
		return evalType(diags, call.Args[2], tv, nv, host)

	case KwMapUnion:
		return evalMapUnion(diags, call, tv, nv, host)

	case KwMapRecord:
		return evalMapRecord(diags, call, tv, nv, host)

	case KwTypeOfVar:
		ref := call.Args[0].(*NameRef)
		if slot, ok := host.Slot(ref.Name); ok {
			return slot
		}
		*diags = append(*diags, diag(call.Pos(), CodeVarUndefined, ref.Name))
		return unknown(host)

	default:
		// eq/sub/streq never reach here: Validate only ever places them
		// as cond's first argument, which the KwCond case above routes
		// straight to evalBool instead.
		panic("ttl: eval: impossible keyword in type position: " + call.KeywordName)
	}
}

func evalTemplatize(diags *[]Diagnostic, call *Call, tv *TypeVars, nv *NameVars, host Host) Type {
	base := evalType(diags, call.Args[0], tv, nv, host)
	if !host.IsTemplatizable(base) {
		*diags = append(*diags, diag(call.Pos(), CodeBaseTypeInvalid, call.KeywordName))
		return unknown(host)
	}
	params := make([]Type, len(call.Args)-1)
	for i, a := range call.Args[1:] {
		params[i] = evalType(diags, a, tv, nv, host)
	}
	result, ok := host.Templatize(base, params...)
	if !ok {
		*diags = append(*diags, diag(call.Pos(), CodeBaseTypeInvalid, call.KeywordName))
		return unknown(host)
	}
	return result
}

// evalTemplateTypeOf preserves the original off-by-one bounds check
// verbatim (spec.md §9 Open Question): an index equal to the parameter
// count is treated as in-range and passes silently without an
// INDEX_OUTOFBOUNDS warning, even though it never resolves to an actual
// parameter. Only an index strictly greater than the parameter count
// warns.
func evalTemplateTypeOf(diags *[]Diagnostic, call *Call, tv *TypeVars, nv *NameVars, host Host) Type {
	base := evalType(diags, call.Args[0], tv, nv, host)
	idx := int(call.Args[1].(*NumberLit).Value)
	_, params, ok := host.IsTemplatized(base)
	if !ok {
		*diags = append(*diags, diag(call.Pos(), CodeTempTypeInvalid, "templateTypeOf"))
		return unknown(host)
	}
	if idx > len(params) {
		*diags = append(*diags, diag(call.Pos(), CodeIndexOutOfBounds, strconv.Itoa(idx), strconv.Itoa(len(params))))
		return unknown(host)
	}
	if idx == len(params) {
		// In-range per the preserved off-by-one check, but there is no
		// parameter at this index.
		return unknown(host)
	}
	return params[idx]
}

// evalRecordLit aborts the whole record on the first unresolved computed
// property name, per spec.md §4.4: "if absent, warn UNKNOWN_NAMEVAR and
// return *unknown* for the whole record."
func evalRecordLit(diags *[]Diagnostic, rec *RecordLit, tv *TypeVars, nv *NameVars, host Host) Type {
	b := host.NewRecordBuilder()
	for _, p := range rec.Props {
		name := p.Name
		if p.Computed {
			resolved, ok := nv.Lookup(p.Name)
			if !ok {
				*diags = append(*diags, diag(rec.Pos(), CodeUnknownNameVar, p.Name))
				return unknown(host)
			}
			name = resolved
		}
		val := evalType(diags, p.Value, tv, nv, host)
		b.Add(name, val)
	}
	return b.Build()
}

// evalMapUnion checks binder hygiene before evaluating anything (spec.md
// §4.4), then treats a non-union subject as its own singleton union, the
// "union singleton law" from spec.md §8: mapunion(T, λx.f(x)) ≡ f(T)
// when T is not a union.
func evalMapUnion(diags *[]Diagnostic, call *Call, tv *TypeVars, nv *NameVars, host Host) Type {
	fn := call.Args[1].(*FuncLit)
	x := fn.Params[0]
	if tv.Has(x) {
		*diags = append(*diags, diag(call.Pos(), CodeDuplicateVariable, x))
		return unknown(host)
	}

	subject := evalType(diags, call.Args[0], tv, nv, host)
	alts, isUnion := host.IsUnion(subject)
	if !isUnion {
		return evalType(diags, fn.Body, tv.Extend(x, subject), nv, host)
	}

	mapped := make([]Type, len(alts))
	for i, alt := range alts {
		mapped[i] = evalType(diags, fn.Body, tv.Extend(x, alt), nv, host)
	}
	return host.Union(mapped...)
}

// evalMapRecord evaluates the subject before checking binder hygiene,
// matching spec.md §4.4's stated order (record-ness is checked first,
// then both binders). Each property's mapped body must itself yield a
// record (or *no type*, which drops the property); its own properties
// are folded into the result via the property merge rule.
func evalMapRecord(diags *[]Diagnostic, call *Call, tv *TypeVars, nv *NameVars, host Host) Type {
	subject := evalType(diags, call.Args[0], tv, nv, host)
	fields, isRecord := host.IsRecord(subject)
	if !isRecord {
		*diags = append(*diags, diag(call.Pos(), CodeRecTypeInvalid, call.KeywordName))
		return unknown(host)
	}

	fn := call.Args[1].(*FuncLit)
	k, v := fn.Params[0], fn.Params[1]
	fatal := false
	if nv.Has(k) {
		*diags = append(*diags, diag(call.Pos(), CodeDuplicateVariable, k))
		fatal = true
	}
	if tv.Has(v) {
		*diags = append(*diags, diag(call.Pos(), CodeDuplicateVariable, v))
		fatal = true
	}
	if fatal {
		return unknown(host)
	}

	acc := newRecordAcc()
	for _, f := range fields {
		innerNV := nv.Extend(k, f.Name)
		innerTV := tv.Extend(v, f.Type)
		result := evalType(diags, fn.Body, innerTV, innerNV, host)
		if host.IsNoType(result) {
			continue
		}
		bodyFields, ok := host.IsRecord(result)
		if !ok {
			*diags = append(*diags, diag(call.Pos(), CodeMapRecordBodyInvalid, call.KeywordName))
			return unknown(host)
		}
		for _, bf := range bodyFields {
			acc.mergeProp(host, bf.Name, bf.Type)
		}
	}
	return acc.build(host)
}

// recordAcc implements the property merge rule (spec.md §4.4): adding a
// property whose name is already present recursively merges two record
// values (taking the flat union of their own properties, applying the
// same rule on their own conflicts) and otherwise lets the new value win.
type recordAcc struct {
	order []string
	vals  map[string]Type
}

func newRecordAcc() *recordAcc {
	return &recordAcc{vals: make(map[string]Type)}
}

func (a *recordAcc) mergeProp(host Host, name string, newVal Type) {
	old, exists := a.vals[name]
	if !exists {
		a.order = append(a.order, name)
		a.vals[name] = newVal
		return
	}
	oldFields, oldIsRecord := host.IsRecord(old)
	newFields, newIsRecord := host.IsRecord(newVal)
	if oldIsRecord && newIsRecord {
		merged := newRecordAcc()
		for _, f := range oldFields {
			merged.mergeProp(host, f.Name, f.Type)
		}
		for _, f := range newFields {
			merged.mergeProp(host, f.Name, f.Type)
		}
		a.vals[name] = merged.build(host)
		return
	}
	a.vals[name] = newVal
}

func (a *recordAcc) build(host Host) Type {
	b := host.NewRecordBuilder()
	for _, name := range a.order {
		b.Add(name, a.vals[name])
	}
	return b.Build()
}

// evalBool computes a cond condition's truth value. Per the grammar,
// term is always the Term Validate built from a BOOLEAN_TYPE_PREDICATE
// or BOOLEAN_STRING_PREDICATE call; anything else is a validator bug.
func evalBool(diags *[]Diagnostic, term Term, tv *TypeVars, nv *NameVars, host Host) bool {
	call, ok := term.(*Call)
	if !ok {
		panic("ttl: eval: impossible term in boolean position")
	}
	switch call.Keyword {
	case KwEq:
		a := evalType(diags, call.Args[0], tv, nv, host)
		b := evalType(diags, call.Args[1], tv, nv, host)
		return host.Equivalent(a, b)
	case KwSub:
		a := evalType(diags, call.Args[0], tv, nv, host)
		b := evalType(diags, call.Args[1], tv, nv, host)
		return host.Subtype(a, b)
	case KwStrEq:
		a, aUnbound := resolveStr(diags, call.Args[0], nv)
		b, bUnbound := resolveStr(diags, call.Args[1], nv)
		// Preserved quirk (spec.md §9 Open Question): an unbound name
		// variable and a literally empty string are indistinguishable
		// from here on, both compare as "" and so streq is false either
		// way; only the unbound case has already warned in resolveStr.
		_ = aUnbound
		_ = bUnbound
		if a == "" || b == "" {
			return false
		}
		return a == b
	default:
		panic("ttl: eval: impossible keyword in boolean position: " + call.KeywordName)
	}
}

func resolveStr(diags *[]Diagnostic, term Term, nv *NameVars) (value string, wasUnbound bool) {
	switch t := term.(type) {
	case *StringLit:
		return t.Value, false
	case *NameRef:
		if v, ok := nv.Lookup(t.Name); ok {
			return v, false
		}
		*diags = append(*diags, diag(t.Pos(), CodeUnknownStrVar, t.Name))
		return "", true
	default:
		panic("ttl: eval: impossible streq operand")
	}
}
