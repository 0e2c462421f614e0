// Package stubhost is a reference ttl.Host: a minimal lexical scope chain
// over a small templatizable/record/union type algebra, good enough to
// validate and evaluate TTL annotations against in tests and from the
// command-line tool without any real compiler attached.
package stubhost

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-set/v2"

	"github.com/krux02/ttl/ttl"
)

// typ is the sole concrete ttl.Type this host ever produces.
type typ struct {
	// kind distinguishes the five type shapes a Host must be able to
	// build and take apart again.
	kind typeKind

	// native
	native ttl.NativeKind

	// named (a plain nominal type registered in some scope, e.g. "number")
	name string

	// templatized
	base   *typ
	params []*typ

	// union
	alternates []*typ

	// record
	fields []ttl.RecordField
}

type typeKind int

const (
	kindNative typeKind = iota
	kindNamed
	kindTemplatized
	kindUnion
	kindRecord
)

func (*typ) HostType() {}

func (t *typ) key() string {
	switch t.kind {
	case kindNative:
		return fmt.Sprintf("native:%d", t.native)
	case kindNamed:
		return "name:" + t.name
	case kindTemplatized:
		parts := make([]string, len(t.params))
		for i, p := range t.params {
			parts[i] = p.key()
		}
		return fmt.Sprintf("templatized:%s<%s>", t.base.key(), strings.Join(parts, ","))
	case kindUnion:
		parts := make([]string, len(t.alternates))
		for i, a := range t.alternates {
			parts[i] = a.key()
		}
		sort.Strings(parts)
		return "union:" + strings.Join(parts, "|")
	case kindRecord:
		parts := make([]string, len(t.fields))
		for i, f := range t.fields {
			parts[i] = f.Name + ":" + f.Type.(*typ).key()
		}
		sort.Strings(parts)
		return "record:{" + strings.Join(parts, ",") + "}"
	}
	return "?"
}

func (t *typ) String() string { return t.key() }

// Scope is a lexical block in the scope chain: one level of program
// symbols (Slot) and type names (Resolve), plus the set of base type
// names a host instance agrees to templatize.
type Scope struct {
	Parent *Scope

	Types         map[string]*typ
	Slots         map[string]*typ
	Templatizable map[string]bool
}

// NewScope starts a fresh, empty scope chain.
func NewScope() *Scope {
	return &Scope{
		Types:         make(map[string]*typ),
		Slots:         make(map[string]*typ),
		Templatizable: make(map[string]bool),
	}
}

// NewChild opens a nested scope that falls back to s for anything it
// doesn't itself define, the way krux02-golem's NewSubScope nests a
// ScopeImpl under its parent.
func (s *Scope) NewChild() *Scope {
	return &Scope{Parent: s, Types: make(map[string]*typ), Slots: make(map[string]*typ), Templatizable: make(map[string]bool)}
}

// DefineType registers a named type visible to Resolve in this scope and
// every child scope.
func (s *Scope) DefineType(name string, templatizable bool) {
	s.Types[name] = &typ{kind: kindNamed, name: name}
	if templatizable {
		s.Templatizable[name] = true
	}
}

// DefineSlot registers a program symbol's declared type, visible to
// typeOfVar via Slot.
func (s *Scope) DefineSlot(name string, t ttl.Type) {
	s.Slots[name] = t.(*typ)
}

// Host adapts a Scope to ttl.Host.
type Host struct {
	scope *Scope
}

// NewHost wraps scope as a ttl.Host.
func NewHost(scope *Scope) *Host { return &Host{scope: scope} }

func (h *Host) Resolve(name string) (ttl.Type, bool) {
	for s := h.scope; s != nil; s = s.Parent {
		if t, ok := s.Types[name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (h *Host) Slot(name string) (ttl.Type, bool) {
	for s := h.scope; s != nil; s = s.Parent {
		if t, ok := s.Slots[name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (h *Host) Native(kind ttl.NativeKind) ttl.Type {
	return &typ{kind: kindNative, native: kind}
}

// Union builds a deduplicating union, flattening nested unions one level
// (the way Closure's UnionType.Builder does) and collapsing a
// single-alternate union down to that alternate. Deduplication itself is
// delegated to hashicorp/go-set, since "the host's responsibility" is all
// the TTL evaluator promises about it.
func (h *Host) Union(types ...ttl.Type) ttl.Type {
	seen := set.New[string](len(types))
	var alts []*typ
	var add func(t *typ)
	add = func(t *typ) {
		if t.kind == kindUnion {
			for _, a := range t.alternates {
				add(a)
			}
			return
		}
		k := t.key()
		if seen.Insert(k) {
			alts = append(alts, t)
		}
	}
	for _, t := range types {
		add(t.(*typ))
	}
	if len(alts) == 1 {
		return alts[0]
	}
	sort.Slice(alts, func(i, j int) bool { return alts[i].key() < alts[j].key() })
	return &typ{kind: kindUnion, alternates: alts}
}

func (h *Host) IsTemplatizable(t ttl.Type) bool {
	tt := t.(*typ)
	return tt.kind == kindNamed && h.templatizableNamed(tt.name)
}

func (h *Host) templatizableNamed(name string) bool {
	for s := h.scope; s != nil; s = s.Parent {
		if s.Templatizable[name] {
			return true
		}
	}
	return false
}

func (h *Host) Templatize(base ttl.Type, params ...ttl.Type) (ttl.Type, bool) {
	b := base.(*typ)
	if b.kind != kindNamed || !h.templatizableNamed(b.name) {
		return nil, false
	}
	ps := make([]*typ, len(params))
	for i, p := range params {
		ps[i] = p.(*typ)
	}
	return &typ{kind: kindTemplatized, base: b, params: ps}, true
}

func (h *Host) IsTemplatized(t ttl.Type) (ttl.Type, []ttl.Type, bool) {
	tt := t.(*typ)
	if tt.kind != kindTemplatized {
		return nil, nil, false
	}
	params := make([]ttl.Type, len(tt.params))
	for i, p := range tt.params {
		params[i] = p
	}
	return tt.base, params, true
}

func (h *Host) IsUnion(t ttl.Type) ([]ttl.Type, bool) {
	tt := t.(*typ)
	if tt.kind != kindUnion {
		return nil, false
	}
	alts := make([]ttl.Type, len(tt.alternates))
	for i, a := range tt.alternates {
		alts[i] = a
	}
	return alts, true
}

func (h *Host) IsRecord(t ttl.Type) ([]ttl.RecordField, bool) {
	tt := t.(*typ)
	if tt.kind != kindRecord {
		return nil, false
	}
	return tt.fields, true
}

func (h *Host) IsNoType(t ttl.Type) bool {
	tt := t.(*typ)
	return tt.kind == kindNative && tt.native == ttl.NativeNo
}

func (h *Host) Equivalent(a, b ttl.Type) bool {
	return a.(*typ).key() == b.(*typ).key()
}

// Subtype implements a structural subtyping rule good enough for the
// testable properties: NativeAll is a supertype of everything, union a
// is a subtype of b if every alternate of a is, a record is a subtype of
// another record if it has at least the same field names with subtype
// field types, and everything else falls back to equivalence.
func (h *Host) Subtype(a, b ttl.Type) bool {
	at, bt := a.(*typ), b.(*typ)
	if bt.kind == kindNative && bt.native == ttl.NativeAll {
		return true
	}
	if at.kind == kindUnion {
		for _, alt := range at.alternates {
			if !h.Subtype(alt, bt) {
				return false
			}
		}
		return true
	}
	if at.kind == kindRecord && bt.kind == kindRecord {
		want := make(map[string]*typ, len(bt.fields))
		for _, f := range bt.fields {
			want[f.Name] = f.Type.(*typ)
		}
		for name, wantType := range want {
			got, ok := fieldByName(at.fields, name)
			if !ok || !h.Subtype(got, wantType) {
				return false
			}
		}
		return true
	}
	return h.Equivalent(a, b)
}

func fieldByName(fields []ttl.RecordField, name string) (*typ, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Type.(*typ), true
		}
	}
	return nil, false
}

// recordBuilder accumulates properties in insertion order; later Add
// calls for a name already present overwrite it in place, the way a
// plain-object literal's later keys shadow earlier ones.
type recordBuilder struct {
	order  []string
	fields map[string]ttl.Type
}

func (h *Host) NewRecordBuilder() ttl.RecordBuilder {
	return &recordBuilder{fields: make(map[string]ttl.Type)}
}

func (b *recordBuilder) Add(name string, t ttl.Type) {
	if _, exists := b.fields[name]; !exists {
		b.order = append(b.order, name)
	}
	b.fields[name] = t
}

func (b *recordBuilder) Build() ttl.Type {
	fields := make([]ttl.RecordField, len(b.order))
	for i, name := range b.order {
		fields[i] = ttl.RecordField{Name: name, Type: b.fields[name]}
	}
	return &typ{kind: kindRecord, fields: fields}
}
