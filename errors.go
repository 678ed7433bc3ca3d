package toskema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/toskema/i18n"
)

// Validation error codes (exported consts for IDE completion and type safety
// by convention).
const (
	CodeTypeMismatch    = "type_mismatch"
	CodeRegexMiss       = "regex_miss"
	CodeIntMiss         = "int_miss"
	CodeFloatMiss       = "float_miss"
	CodeArrayCount      = "array_count"
	CodeArrayMiss       = "array_miss"
	CodeTableMiss       = "table_miss"
	CodeTableCount      = "table_count"
	CodeAtKey           = "at_key"
	CodeRequired        = "required"
	CodeAlternativeMiss = "alternative_miss"
)

// SchemaError is a single validation failure. Wrapping preserves the full
// chain from the schema root to the failing leaf: AtKey and ArrayMiss wrap
// the child failure in Err, AlternativeMiss and TableMiss carry one error
// per attempted branch in Errs. Paths are JSON-Pointer-ish breadcrumbs
// rebased from the call root (for example: /items/2/price).
type SchemaError struct {
	Path    string // breadcrumb from the value passed to Check; "/" at the root
	Code    string // one of the codes listed above
	Message string
	Hint    string // formatted detail (bounds, expected/got, ...)
	Value   any    // offending value fragment; shares structure with the candidate
	Params  map[string]any

	Err  *SchemaError   // wrapped child failure (at_key, array_miss)
	Errs []*SchemaError // per-branch failures (alternative_miss, table_miss)
}

func (e *SchemaError) Error() string {
	b := &strings.Builder{}
	e.render(b)
	return b.String()
}

func (e *SchemaError) render(b *strings.Builder) {
	fmt.Fprintf(b, "%s at %s", e.Code, e.Path)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Hint != "" {
		fmt.Fprintf(b, " (%s)", e.Hint)
	}
	if e.Err != nil {
		b.WriteString("; caused by ")
		e.Err.render(b)
	}
	for i, br := range e.Errs {
		if i == 0 {
			b.WriteString("; tried: [")
		} else {
			b.WriteString("; ")
		}
		br.render(b)
		if i == len(e.Errs)-1 {
			b.WriteString("]")
		}
	}
}

// Unwrap exposes the wrapped child failure to errors.Is/As traversal.
func (e *SchemaError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

// AsSchemaError extracts a *SchemaError from an error using errors.As
// internally.
func AsSchemaError(err error) (*SchemaError, bool) {
	if err == nil {
		return nil, false
	}
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// rebase prefixes every path in the error tree with seg ("/key" or "/3").
// Errors are freshly allocated per call, so rebasing in place is safe.
func (e *SchemaError) rebase(seg string) *SchemaError {
	if e.Path == "" || e.Path == "/" {
		e.Path = seg
	} else {
		e.Path = seg + e.Path
	}
	if e.Err != nil {
		e.Err.rebase(seg)
	}
	for _, br := range e.Errs {
		br.rebase(seg)
	}
	return e
}

func newError(code string, hintf string, a ...any) *SchemaError {
	e := &SchemaError{Path: "/", Code: code, Message: i18n.T(code, nil)}
	if hintf != "" {
		e.Hint = fmt.Sprintf(hintf, a...)
	}
	return e
}
