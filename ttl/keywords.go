package ttl

import "strings"

// Keyword is one of the fixed, closed set of TTL call heads (component C2).
type Keyword int

const (
	KwInvalid Keyword = iota
	KwAll
	KwNone
	KwUnknown
	KwType
	KwUnion
	KwRecord
	KwRawTypeOf
	KwTemplateTypeOf
	KwCond
	KwMapUnion
	KwMapRecord
	KwTypeOfVar
	KwEq
	KwSub
	KwStrEq
)

func (k Keyword) String() string {
	if info, ok := keywordByID[k]; ok {
		return info.Name
	}
	return "<invalid keyword>"
}

// OpKind classifies what a keyword computes: a type value, a derived
// operation over type values, or one of the two boolean predicate forms.
type OpKind int

const (
	TypeConstructor OpKind = iota
	Operation
	BooleanTypePredicate
	BooleanStringPredicate
)

// Variadic marks a keyword with no upper bound on argument count.
const Variadic = -1

// KeywordInfo is the per-keyword row of the keyword table: display name,
// argument arity bounds, and operational kind.
type KeywordInfo struct {
	Keyword  Keyword
	Name     string
	MinArity int
	MaxArity int // Variadic for no upper bound
	Kind     OpKind
}

func (info KeywordInfo) AcceptsArity(n int) bool {
	if n < info.MinArity {
		return false
	}
	return info.MaxArity == Variadic || n <= info.MaxArity
}

// keywordTable is the canonical, closed enumeration from the design: name,
// arity bounds, operational kind. Keyword lookup is case-insensitive on
// the surface (names are canonicalized to lowercase before lookup) but
// the table itself only ever stores the canonical spelling.
var keywordTable = []KeywordInfo{
	{KwAll, "all", 0, 0, TypeConstructor},
	{KwNone, "none", 0, 0, TypeConstructor},
	{KwUnknown, "unknown", 0, 0, TypeConstructor},
	{KwType, "type", 2, Variadic, TypeConstructor},
	{KwUnion, "union", 2, Variadic, TypeConstructor},
	{KwRecord, "record", 1, 1, TypeConstructor},
	{KwRawTypeOf, "rawTypeOf", 1, 1, TypeConstructor},
	{KwTemplateTypeOf, "templateTypeOf", 2, 2, TypeConstructor},
	{KwCond, "cond", 3, 3, Operation},
	{KwMapUnion, "mapunion", 2, 2, Operation},
	{KwMapRecord, "maprecord", 2, 2, Operation},
	{KwTypeOfVar, "typeOfVar", 1, 1, Operation},
	{KwEq, "eq", 2, 2, BooleanTypePredicate},
	{KwSub, "sub", 2, 2, BooleanTypePredicate},
	{KwStrEq, "streq", 2, 2, BooleanStringPredicate},
}

var keywordByName map[string]KeywordInfo
var keywordByID map[Keyword]KeywordInfo

func init() {
	keywordByName = make(map[string]KeywordInfo, len(keywordTable))
	keywordByID = make(map[Keyword]KeywordInfo, len(keywordTable))
	for _, info := range keywordTable {
		keywordByName[strings.ToLower(info.Name)] = info
		keywordByID[info.Keyword] = info
	}
}

// LookupKeyword resolves a (possibly mixed-case) surface name to its
// keyword table row. It is the only place case-insensitivity happens.
func LookupKeyword(name string) (KeywordInfo, bool) {
	info, ok := keywordByName[strings.ToLower(name)]
	return info, ok
}

func IsBooleanForm(k Keyword) bool {
	info, ok := keywordByID[k]
	return ok && (info.Kind == BooleanTypePredicate || info.Kind == BooleanStringPredicate)
}
