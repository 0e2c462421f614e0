package ttl_test

import (
	"testing"

	"github.com/krux02/ttl/stubhost"
	"github.com/krux02/ttl/ttl"
)

func newTestHost(t *testing.T) *stubhost.Host {
	t.Helper()
	scope := stubhost.NewScope()
	scope.DefineType("Array", true)
	scope.DefineType("Map", true)
	scope.DefineType("number", false)
	scope.DefineType("string", false)
	return stubhost.NewHost(scope)
}

func evalSrc(t *testing.T, src string, tv *ttl.TypeVars, nv *ttl.NameVars, host ttl.Host) (ttl.Type, []ttl.Diagnostic) {
	t.Helper()
	node := mustParse(t, src)
	term, vdiags, ok := ttl.Validate(node)
	if !ok {
		t.Fatalf("%q: expected valid, got %v", src, vdiags)
	}
	return ttl.Eval(term, tv, nv, host)
}

func TestEvalTemplatize(t *testing.T) {
	host := newTestHost(t)
	tv := (*ttl.TypeVars)(nil).Extend("T", host.Native(ttl.NativeUnknown))
	numberVars := tv.Extend("number", numberType(t, host))

	result, diags := evalSrc(t, `type('Array', number)`, numberVars, nil, host)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	raw, params, ok := host.IsTemplatized(result)
	if !ok || len(params) != 1 {
		t.Fatalf("expected Array<number>, got %v", result)
	}
	if !host.Equivalent(raw, mustResolve(t, host, "Array")) {
		t.Fatalf("expected raw base Array, got %v", raw)
	}
}

func TestEvalUnionDedup(t *testing.T) {
	host := newTestHost(t)
	numberVars := (*ttl.NameVars)(nil)
	tv := (*ttl.TypeVars)(nil).
		Extend("number", numberType(t, host)).
		Extend("string", stringType(t, host))

	result, diags := evalSrc(t, `union(number, string, number)`, tv, numberVars, host)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	alts, ok := host.IsUnion(result)
	if !ok || len(alts) != 2 {
		t.Fatalf("expected a 2-alternate union, got %v", result)
	}
}

func TestEvalCond(t *testing.T) {
	host := newTestHost(t)
	numberT := numberType(t, host)
	stringT := stringType(t, host)
	tv := (*ttl.TypeVars)(nil).
		Extend("T", numberT).
		Extend("number", numberT).
		Extend("string", stringT)

	result, diags := evalSrc(t, `cond(eq(T, number), string, T)`, tv, nil, host)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if !host.Equivalent(result, stringT) {
		t.Fatalf("expected string, got %v", result)
	}
}

func TestEvalMapUnion(t *testing.T) {
	host := newTestHost(t)
	numberT := numberType(t, host)
	stringT := stringType(t, host)
	tv := (*ttl.TypeVars)(nil).Extend("T", host.Union(numberT, stringT))

	result, diags := evalSrc(t, `mapunion(T, (x) => type('Array', x))`, tv, nil, host)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	alts, ok := host.IsUnion(result)
	if !ok || len(alts) != 2 {
		t.Fatalf("expected Array<number>|Array<string>, got %v", result)
	}
}

// TestEvalMapUnionSingletonLaw is invariant 6 from spec.md §8:
// mapunion(T, λx.f(x)) ≡ f(T) when T is not a union.
func TestEvalMapUnionSingletonLaw(t *testing.T) {
	host := newTestHost(t)
	numberT := numberType(t, host)
	tv := (*ttl.TypeVars)(nil).Extend("T", numberT)

	mapped, diags := evalSrc(t, `mapunion(T, (x) => type('Array', x))`, tv, nil, host)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	direct, diags := evalSrc(t, `type('Array', T)`, tv, nil, host)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if !host.Equivalent(mapped, direct) {
		t.Fatalf("mapunion singleton law violated: %v != %v", mapped, direct)
	}
}

func TestEvalMapUnionBinderHygiene(t *testing.T) {
	host := newTestHost(t)
	numberT := numberType(t, host)
	tv := (*ttl.TypeVars)(nil).Extend("T", numberT).Extend("x", numberT)

	result, diags := evalSrc(t, `mapunion(T, (x) => type('Array', x))`, tv, nil, host)
	if !host.Equivalent(result, host.Native(ttl.NativeUnknown)) {
		t.Fatalf("expected unknown on duplicate binder, got %v", result)
	}
	if !hasCode(diags, ttl.CodeDuplicateVariable) {
		t.Fatalf("expected DUPLICATE_VARIABLE, got %v", diags)
	}
}

func TestEvalMapRecord(t *testing.T) {
	host := newTestHost(t)
	numberT := numberType(t, host)
	stringT := stringType(t, host)
	rb := host.NewRecordBuilder()
	rb.Add("a", numberT)
	rb.Add("b", stringT)
	rec := rb.Build()

	tv := (*ttl.TypeVars)(nil).Extend("R", rec)
	result, diags := evalSrc(t, `maprecord(R, (k, v) => record({[k]: v}))`, tv, nil, host)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fields, ok := host.IsRecord(result)
	if !ok || len(fields) != 2 {
		t.Fatalf("expected a 2-field record, got %v", result)
	}
}

// TestEvalMapRecordSkip is invariant 7: properties whose mapped body
// yields *no type* are absent from the result.
func TestEvalMapRecordSkip(t *testing.T) {
	host := newTestHost(t)
	numberT := numberType(t, host)
	stringT := stringType(t, host)
	rb := host.NewRecordBuilder()
	rb.Add("a", numberT)
	rb.Add("b", stringT)
	rec := rb.Build()

	tv := (*ttl.TypeVars)(nil).Extend("R", rec)
	result, diags := evalSrc(t,
		`maprecord(R, (k, v) => cond(streq(k, "a"), record({[k]: v}), none()))`,
		tv, nil, host)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fields, ok := host.IsRecord(result)
	if !ok || len(fields) != 1 || fields[0].Name != "a" {
		t.Fatalf("expected only field 'a' to survive, got %v", result)
	}
}

// TestEvalTemplateTypeOfBound is invariant 8: index == length is
// in-range (preserved off-by-one), index > length warns.
func TestEvalTemplateTypeOfBound(t *testing.T) {
	host := newTestHost(t)
	numberT := numberType(t, host)
	arr, ok := host.Templatize(mustResolve(t, host, "Array"), numberT)
	if !ok {
		t.Fatalf("Array should be templatizable")
	}
	tv := (*ttl.TypeVars)(nil).Extend("T", arr)

	zero, diags := evalSrc(t, `templateTypeOf(T, 0)`, tv, nil, host)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if !host.Equivalent(zero, numberT) {
		t.Fatalf("expected number at index 0, got %v", zero)
	}

	atLength, diags := evalSrc(t, `templateTypeOf(T, 1)`, tv, nil, host)
	if len(diags) != 0 {
		t.Fatalf("index == length must not warn (preserved off-by-one), got %v", diags)
	}
	if !host.Equivalent(atLength, host.Native(ttl.NativeUnknown)) {
		t.Fatalf("expected unknown at index == length, got %v", atLength)
	}

	beyond, diags := evalSrc(t, `templateTypeOf(T, 2)`, tv, nil, host)
	if !hasCode(diags, ttl.CodeIndexOutOfBounds) {
		t.Fatalf("expected INDEX_OUTOFBOUNDS beyond length, got %v", diags)
	}
	if !host.Equivalent(beyond, host.Native(ttl.NativeUnknown)) {
		t.Fatalf("expected unknown beyond length, got %v", beyond)
	}
}

func TestEvalRecordComputedName(t *testing.T) {
	host := newTestHost(t)
	numberT := numberType(t, host)
	tv := (*ttl.TypeVars)(nil).Extend("number", numberT)
	nv := (*ttl.NameVars)(nil).Extend("K", "foo")

	result, diags := evalSrc(t, `record({[K]: number})`, tv, nv, host)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fields, ok := host.IsRecord(result)
	if !ok || len(fields) != 1 || fields[0].Name != "foo" {
		t.Fatalf("expected {foo:number}, got %v", result)
	}

	// Without K bound, the whole record resolves to unknown.
	result, diags = evalSrc(t, `record({[K]: number})`, tv, nil, host)
	if !hasCode(diags, ttl.CodeUnknownNameVar) {
		t.Fatalf("expected UNKNOWN_NAMEVAR, got %v", diags)
	}
	if !host.Equivalent(result, host.Native(ttl.NativeUnknown)) {
		t.Fatalf("expected unknown record, got %v", result)
	}
}

// TestEvalStrEqConflatesEmptyAndUnbound is the preserved Open Question
// from spec.md §9: an unbound name variable and one bound to the empty
// string both compare false, but only the unbound case warns.
func TestEvalStrEqConflatesEmptyAndUnbound(t *testing.T) {
	host := newTestHost(t)
	tv := (*ttl.TypeVars)(nil)

	_, diags := evalSrc(t, `cond(streq(K, "foo"), all(), none())`, tv, nil, host)
	if !hasCode(diags, ttl.CodeUnknownStrVar) {
		t.Fatalf("expected UNKNOWN_STRVAR for unbound K, got %v", diags)
	}

	nv := (*ttl.NameVars)(nil).Extend("K", "")
	_, diags = evalSrc(t, `cond(streq(K, "foo"), all(), none())`, tv, nv, host)
	if hasCode(diags, ttl.CodeUnknownStrVar) {
		t.Fatalf("bound-but-empty K must not warn UNKNOWN_STRVAR, got %v", diags)
	}
}

// TestEvalPropertyMerge is invariant 9 from spec.md §8: recursive record
// merging preserves all keys. Both original properties map to a body
// that nests its result under the same "merged" key but with a distinct
// inner field name, so the merge rule must recurse into "merged" and
// union its two inner keys rather than letting the second overwrite the
// first outright.
func TestEvalPropertyMerge(t *testing.T) {
	host := newTestHost(t)
	numberT := numberType(t, host)
	stringT := stringType(t, host)

	rb := host.NewRecordBuilder()
	rb.Add("p1", numberT)
	rb.Add("p2", stringT)
	rec := rb.Build()

	tv := (*ttl.TypeVars)(nil).Extend("R", rec)
	result, diags := evalSrc(t,
		`maprecord(R, (k, v) => cond(streq(k, "p1"),
			record({merged: record({fromP1: v})}),
			record({merged: record({fromP2: v})})))`,
		tv, nil, host)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fields, ok := host.IsRecord(result)
	if !ok {
		t.Fatalf("expected a record, got %v", result)
	}
	var merged ttl.Type
	for _, f := range fields {
		if f.Name == "merged" {
			merged = f.Type
		}
	}
	if merged == nil {
		t.Fatalf("expected merged 'merged' property, got %v", result)
	}
	mergedFields, ok := host.IsRecord(merged)
	if !ok || len(mergedFields) != 2 {
		t.Fatalf("expected merged record to preserve both fromP1 and fromP2, got %v", merged)
	}
}

func numberType(t *testing.T, host *stubhost.Host) ttl.Type {
	return mustResolve(t, host, "number")
}

func stringType(t *testing.T, host *stubhost.Host) ttl.Type {
	return mustResolve(t, host, "string")
}

func mustResolve(t *testing.T, host *stubhost.Host, name string) ttl.Type {
	t.Helper()
	typ, ok := host.Resolve(name)
	if !ok {
		t.Fatalf("expected %q to resolve", name)
	}
	return typ
}
