package ttl

// Type is an opaque host type value. The core never interns or inspects
// it beyond the capability methods on Host; identity and equality are
// entirely delegated to the host.
type Type interface {
	// HostType is a marker method so arbitrary values can't satisfy Type
	// by accident; it carries no behavior of its own.
	HostType()
}

// NativeKind names one of the three canonical host types every host must
// provide: Unknown (top of unknown), No (bottom), All (dynamic any).
type NativeKind int

const (
	NativeUnknown NativeKind = iota
	NativeNo
	NativeAll
)

// RecordField is one property of a record type, as yielded by
// Host.IsRecord.
type RecordField struct {
	Name string
	Type Type
}

// RecordBuilder accumulates (name, type) entries and yields a record
// type. The evaluator never mutates a Type in place; building a new
// record is always done through a fresh builder.
type RecordBuilder interface {
	Add(name string, t Type)
	Build() Type
}

// Host is the abstract host type system the evaluator is polymorphic
// over (component C6, spec.md §4.2). A host is assumed to be already
// scoped to whatever lexical/program context an annotation is being
// evaluated in; Resolve and Slot are the two lookups that context serves.
type Host interface {
	// Resolve looks up a program symbol in the host's lexical scope
	// chain (also template-type parameters of an enclosing type,
	// constructor/interface instance types, enum element types, and
	// typedef expansions), falling back to a native type lookup by name.
	Resolve(name string) (Type, bool)

	// Native returns one of the three canonical types.
	Native(kind NativeKind) Type

	// Union builds a deduplicating union of the given types. The
	// evaluator never flattens or deduplicates on its own behalf; that
	// is entirely this method's responsibility.
	Union(types ...Type) Type

	// Templatize applies base to params, producing a templatized type.
	// ok is false if base is not templatizable.
	Templatize(base Type, params ...Type) (result Type, ok bool)

	NewRecordBuilder() RecordBuilder

	IsTemplatizable(t Type) bool

	// IsUnion reports whether t is a union type and, if so, its
	// alternates in the host's own iteration order.
	IsUnion(t Type) (alternates []Type, ok bool)

	// IsTemplatized reports whether t was built by Templatize and, if
	// so, its raw base and template parameters.
	IsTemplatized(t Type) (raw Type, params []Type, ok bool)

	// IsRecord reports whether t is a record type and, if so, its own
	// properties in the host's own iteration order.
	IsRecord(t Type) (fields []RecordField, ok bool)

	IsNoType(t Type) bool

	Equivalent(a, b Type) bool

	Subtype(a, b Type) bool

	// Slot looks up a program symbol's slot for typeOfVar, returning its
	// declared type.
	Slot(name string) (Type, bool)
}
