package stubhost

import "testing"

func TestResolveAndTemplatize(t *testing.T) {
	scope := NewScope()
	scope.DefineType("Array", true)
	scope.DefineType("number", false)
	host := NewHost(scope)

	arrayT, ok := host.Resolve("Array")
	if !ok {
		t.Fatalf("expected Array to resolve")
	}
	numberT, ok := host.Resolve("number")
	if !ok {
		t.Fatalf("expected number to resolve")
	}
	if !host.IsTemplatizable(arrayT) {
		t.Fatalf("expected Array to be templatizable")
	}
	if host.IsTemplatizable(numberT) {
		t.Fatalf("number must not be templatizable")
	}

	result, ok := host.Templatize(arrayT, numberT)
	if !ok {
		t.Fatalf("expected Templatize to succeed")
	}
	raw, params, ok := host.IsTemplatized(result)
	if !ok || len(params) != 1 {
		t.Fatalf("expected a single-param templatized type")
	}
	if !host.Equivalent(raw, arrayT) {
		t.Fatalf("expected raw base to equal Array")
	}
	if !host.Equivalent(params[0], numberT) {
		t.Fatalf("expected template param to equal number")
	}
}

func TestUnionDedupAndFlatten(t *testing.T) {
	scope := NewScope()
	scope.DefineType("number", false)
	scope.DefineType("string", false)
	host := NewHost(scope)

	numberT, _ := host.Resolve("number")
	stringT, _ := host.Resolve("string")

	inner := host.Union(numberT, stringT)
	outer := host.Union(inner, numberT)

	alts, ok := host.IsUnion(outer)
	if !ok || len(alts) != 2 {
		t.Fatalf("expected a flattened, deduplicated 2-alternate union, got %v", outer)
	}
}

func TestUnionSingleAlternateCollapses(t *testing.T) {
	scope := NewScope()
	scope.DefineType("number", false)
	host := NewHost(scope)
	numberT, _ := host.Resolve("number")

	result := host.Union(numberT, numberT)
	if _, ok := host.IsUnion(result); ok {
		t.Fatalf("a union of one deduplicated alternate must collapse, got a union %v", result)
	}
	if !host.Equivalent(result, numberT) {
		t.Fatalf("expected the collapsed union to equal number")
	}
}

func TestRecordBuilderAndSubtype(t *testing.T) {
	scope := NewScope()
	scope.DefineType("number", false)
	scope.DefineType("string", false)
	host := NewHost(scope)
	numberT, _ := host.Resolve("number")
	stringT, _ := host.Resolve("string")

	wide := host.NewRecordBuilder()
	wide.Add("a", numberT)
	wide.Add("b", stringT)
	wideRec := wide.Build()

	narrow := host.NewRecordBuilder()
	narrow.Add("a", numberT)
	narrowRec := narrow.Build()

	if !host.Subtype(wideRec, narrowRec) {
		t.Fatalf("a record with a superset of fields must be a subtype of a record with a subset")
	}
	if host.Subtype(narrowRec, wideRec) {
		t.Fatalf("a record missing a required field must not be a subtype")
	}
}

func TestSlotLookupThroughScopeChain(t *testing.T) {
	parent := NewScope()
	parent.DefineType("number", false)
	numberT, _ := NewHost(parent).Resolve("number")
	parent.DefineSlot("x", numberT)

	child := parent.NewChild()
	host := NewHost(child)

	slot, ok := host.Slot("x")
	if !ok {
		t.Fatalf("expected slot x to be visible through the parent scope")
	}
	if !host.Equivalent(slot, numberT) {
		t.Fatalf("expected slot x to have type number")
	}
}
