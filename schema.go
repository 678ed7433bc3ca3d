package toskema

import (
	"math"
	"regexp"
)

// Schema is one compiled node of a schema tree. A node constrains exactly one
// position in a candidate document; which fields are meaningful depends on
// Kind. The tree is built once by Compile, is immutable afterwards, and is
// safe for concurrent read-only validation.
type Schema struct {
	Kind Kind

	// KindString. A nil Pattern matches every string.
	Pattern *regexp.Regexp

	// KindInteger. Inclusive bounds; defaults span the full int64 range.
	MinInt int64
	MaxInt int64

	// KindFloat. Inclusive bounds defaulting to ±Inf. NaN never consults the
	// bounds: it is governed solely by NaNOK.
	MinFloat float64
	MaxFloat float64
	NaNOK    bool

	// KindExact.
	Literal any

	// KindArray. Elem is owned exclusively by this node.
	Elem     *Schema
	MinItems int
	MaxItems int

	// KindTable. Entries maps literal key names; Extras are tried in declared
	// order for keys with no literal entry. MinExtras/MaxExtras bound the
	// count of extras-matched keys only.
	Entries   map[string]Entry
	Extras    []ExtraEntry
	MinExtras int
	MaxExtras int

	// KindAlternative. Options are tried in declared order.
	Options []*Schema
}

// Entry is a literal table entry: one child schema plus an optional default
// injected by CheckAndComplete. Defaults are captured as-is at compile time
// and are not validated against the child schema.
type Entry struct {
	Schema     *Schema
	Default    any
	HasDefault bool
}

// ExtraEntry pairs a key pattern with the schema its values must match. Used
// only inside table schemas.
type ExtraEntry struct {
	Key    *regexp.Regexp
	Schema *Schema
}

func newSchema(k Kind) *Schema {
	s := &Schema{Kind: k}
	switch k {
	case KindInteger:
		s.MinInt = math.MinInt64
		s.MaxInt = math.MaxInt64
	case KindFloat:
		s.MinFloat = math.Inf(-1)
		s.MaxFloat = math.Inf(1)
	case KindArray:
		s.MaxItems = math.MaxInt
	case KindTable:
		s.MaxExtras = math.MaxInt
		s.Entries = map[string]Entry{}
	}
	return s
}
