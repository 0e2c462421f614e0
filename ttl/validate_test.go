package ttl_test

import (
	"testing"

	"github.com/krux02/ttl/astshape"
	"github.com/krux02/ttl/exprparse"
	"github.com/krux02/ttl/ttl"
)

func mustParse(t *testing.T, src string) astshape.Node {
	t.Helper()
	node, errs := exprparse.Parse(src)
	if len(errs) > 0 {
		t.Fatalf("parse %q: %v", src, errs)
	}
	return node
}

func TestValidateAccepts(t *testing.T) {
	cases := []string{
		`all()`,
		`none()`,
		`unknown()`,
		`type('Array', T)`,
		`type('Map', K, V)`,
		`union(T, string, number)`,
		`record({a: T, [K]: string})`,
		`rawTypeOf(T)`,
		`templateTypeOf(T, 0)`,
		`cond(eq(T, number), string, T)`,
		`cond(sub(T, number), string, T)`,
		`cond(streq(K, "foo"), string, T)`,
		`mapunion(T, (x) => type('Array', x))`,
		`maprecord(R, (k, v) => record({[k]: v}))`,
		`typeOfVar(x)`,
	}
	for _, src := range cases {
		node := mustParse(t, src)
		_, diags, ok := ttl.Validate(node)
		if !ok {
			t.Errorf("%q: expected valid, got diagnostics %v", src, diags)
		}
	}
}

func TestValidateArityEnforcement(t *testing.T) {
	cases := []struct {
		src  string
		code string
	}{
		{`union(T)`, ttl.CodeMissingParam},
		{`record()`, ttl.CodeMissingParam},
		{`templateTypeOf(T)`, ttl.CodeMissingParam},
		{`templateTypeOf(T, 0, 1)`, ttl.CodeExtraParam},
		{`cond(eq(T, number), string)`, ttl.CodeMissingParam},
		{`typeOfVar(x, y)`, ttl.CodeExtraParam},
	}
	for _, c := range cases {
		node := mustParse(t, c.src)
		_, diags, ok := ttl.Validate(node)
		if ok {
			t.Errorf("%q: expected invalid", c.src)
			continue
		}
		if !hasCode(diags, c.code) {
			t.Errorf("%q: expected diagnostic %s, got %v", c.src, c.code, diags)
		}
	}
}

func TestValidateRejectsBooleanFormOutsideCond(t *testing.T) {
	node := mustParse(t, `eq(T, number)`)
	if _, _, ok := ttl.Validate(node); ok {
		t.Fatalf("eq(...) outside cond must be rejected")
	}

	node = mustParse(t, `union(eq(T, number), string)`)
	if _, _, ok := ttl.Validate(node); ok {
		t.Fatalf("boolean predicate nested inside union(...) must be rejected")
	}
}

func TestValidateRejectsUnknownKeyword(t *testing.T) {
	node := mustParse(t, `bogus(T)`)
	if _, _, ok := ttl.Validate(node); ok {
		t.Fatalf("unknown keyword must be rejected")
	}
}

func TestValidateTemplateTypeOfRequiresNumberIndex(t *testing.T) {
	node := mustParse(t, `templateTypeOf(T, K)`)
	_, diags, ok := ttl.Validate(node)
	if ok {
		t.Fatalf("non-number index must be rejected")
	}
	if !hasCode(diags, ttl.CodeInvalid) {
		t.Fatalf("expected an invalid-index diagnostic, got %v", diags)
	}
}

func TestValidateKeywordIsCaseInsensitiveButEchoesSpelling(t *testing.T) {
	node := mustParse(t, `UNION(T, string)`)
	term, _, ok := ttl.Validate(node)
	if !ok {
		t.Fatalf("expected UNION(...) to validate")
	}
	call := term.(*ttl.Call)
	if call.Keyword != ttl.KwUnion {
		t.Fatalf("expected KwUnion, got %v", call.Keyword)
	}
	if call.KeywordName != "UNION" {
		t.Fatalf("expected original spelling UNION preserved, got %q", call.KeywordName)
	}
}

func hasCode(diags []ttl.Diagnostic, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}
