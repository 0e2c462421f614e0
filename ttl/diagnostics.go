package ttl

import (
	"fmt"

	"github.com/krux02/ttl/astshape"
)

// Diagnostic codes produced by the evaluator (spec.md §6). Validator
// diagnostics use the abstract message identifiers from spec.md §4.3
// instead of a closed code set, since they are parameterized purely by a
// human-readable subject string.
const (
	CodeUnknownTypeVar       = "UNKNOWN_TYPEVAR"
	CodeUnknownStrVar        = "UNKNOWN_STRVAR"
	CodeUnknownTypeName      = "UNKNOWN_TYPENAME"
	CodeUnknownNameVar       = "UNKNOWN_NAMEVAR"
	CodeBaseTypeInvalid      = "BASETYPE_INVALID"
	CodeTempTypeInvalid      = "TEMPTYPE_INVALID"
	CodeIndexOutOfBounds     = "INDEX_OUTOFBOUNDS"
	CodeDuplicateVariable    = "DUPLICATE_VARIABLE"
	CodeRecTypeInvalid       = "RECTYPE_INVALID"
	CodeMapRecordBodyInvalid = "MAPRECORD_BODY_INVALID"
	CodeVarUndefined         = "VAR_UNDEFINED"

	CodeInvalid           = "invalid"
	CodeInvalidExpression = "invalid.expression"
	CodeInvalidInside     = "invalid.inside"
	CodeMissingParam      = "missing.param"
	CodeExtraParam        = "extra.param"
)

// Diagnostic is a single warning produced by the validator or evaluator.
// Code is a stable identifier (spec.md §6); Args is its payload, in the
// order the table documents. Pos locates the diagnostic for a caller
// that wants to render "file(line, col): message" the way
// krux02-golem/semchecker.go's ReportMessagef does.
type Diagnostic struct {
	Code    string
	Subject string
	Args    []string
	Pos     astshape.Position
}

func (d Diagnostic) Message() string {
	if d.Subject != "" {
		return fmt.Sprintf("%s: %s", d.Code, d.Subject)
	}
	if len(d.Args) > 0 {
		return fmt.Sprintf("%s(%v)", d.Code, d.Args)
	}
	return d.Code
}

func diag(pos astshape.Position, code string, args ...string) Diagnostic {
	return Diagnostic{Code: code, Args: args, Pos: pos}
}

func diagSubject(pos astshape.Position, code, subject string) Diagnostic {
	return Diagnostic{Code: code, Subject: subject, Pos: pos}
}
