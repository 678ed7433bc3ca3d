package toskema

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/reoring/toskema/i18n"
)

// Check validates a candidate value against the schema without modifying it.
// The returned error, when non-nil, is a *SchemaError chain from this node
// down to the failing leaf. Validation is a pure recursive descent; no state
// persists between calls and concurrent Check calls on one schema are safe.
func (s *Schema) Check(v any) error {
	if e := s.check(v, false); e != nil {
		return e
	}
	return nil
}

func (s *Schema) check(v any, complete bool) *SchemaError {
	switch s.Kind {
	case KindAnything:
		return nil
	case KindAlternative:
		// Tried regardless of the candidate kind; options decide.
		return s.checkAlternative(v)
	case KindExact:
		if valueEqual(s.Literal, v) {
			return nil
		}
		return typeMismatch(KindExact, v)
	}

	got := KindOf(v)
	if got != s.Kind {
		return typeMismatch(s.Kind, v)
	}

	switch s.Kind {
	case KindString:
		str := v.(string)
		if s.Pattern == nil || s.Pattern.MatchString(str) {
			return nil
		}
		e := newError(CodeRegexMiss, "regex %q does not match %q", s.Pattern.String(), str)
		e.Value = str
		e.Params = map[string]any{"pattern": s.Pattern.String(), "got": str}
		return e
	case KindInteger:
		i := v.(int64)
		if i >= s.MinInt && i <= s.MaxInt {
			return nil
		}
		e := newError(CodeIntMiss, "%d outside [%d, %d]", i, s.MinInt, s.MaxInt)
		e.Value = v
		e.Params = map[string]any{"min": s.MinInt, "max": s.MaxInt, "got": i}
		return e
	case KindFloat:
		f := v.(float64)
		if math.IsNaN(f) {
			if s.NaNOK {
				return nil
			}
		} else if f >= s.MinFloat && f <= s.MaxFloat {
			return nil
		}
		e := newError(CodeFloatMiss, "%v outside [%v, %v], nan_ok=%t", f, s.MinFloat, s.MaxFloat, s.NaNOK)
		e.Value = v
		e.Params = map[string]any{"min": s.MinFloat, "max": s.MaxFloat, "nan_ok": s.NaNOK, "got": f}
		return e
	case KindBool, KindDate:
		return nil
	case KindArray:
		return s.checkArray(v.([]any), complete)
	case KindTable:
		return s.checkTable(v.(map[string]any), complete)
	}
	return typeMismatch(s.Kind, v)
}

func (s *Schema) checkArray(arr []any, complete bool) *SchemaError {
	// A count violation is reported before any element is inspected.
	if len(arr) < s.MinItems || len(arr) > s.MaxItems {
		e := newError(CodeArrayCount, "count %d outside [%d, %s]", len(arr), s.MinItems, countBound(s.MaxItems))
		e.Value = arr
		e.Params = map[string]any{"min": s.MinItems, "max": s.MaxItems, "got": len(arr)}
		return e
	}
	for i, elem := range arr {
		ce := s.Elem.check(elem, complete)
		if ce == nil {
			continue
		}
		seg := "/" + strconv.Itoa(i)
		return &SchemaError{
			Path:    seg,
			Code:    CodeArrayMiss,
			Message: i18n.T(CodeArrayMiss, nil),
			Value:   elem,
			Params:  map[string]any{"index": i},
			Err:     ce.rebase(seg),
		}
	}
	return nil
}

func (s *Schema) checkAlternative(v any) *SchemaError {
	// Options never complete defaults: a failing option must not leave
	// mutations behind before the next one is tried.
	errs := make([]*SchemaError, 0, len(s.Options))
	for _, opt := range s.Options {
		e := opt.check(v, false)
		if e == nil {
			return nil
		}
		errs = append(errs, e)
	}
	e := newError(CodeAlternativeMiss, "tried %d options", len(s.Options))
	e.Value = v
	e.Errs = errs
	return e
}

func (s *Schema) checkTable(tbl map[string]any, complete bool) *SchemaError {
	if complete {
		for name, entry := range s.Entries {
			if !entry.HasDefault {
				continue
			}
			if _, present := tbl[name]; !present {
				tbl[name] = cloneValue(entry.Default)
			}
		}
	}

	foundExtras := 0
	for _, k := range sortedKeys(tbl) {
		val := tbl[k]
		// Literal entries take precedence; a key matching both never counts
		// toward the extras bounds.
		if entry, ok := s.Entries[k]; ok {
			ce := entry.Schema.check(val, complete)
			if ce == nil {
				continue
			}
			seg := "/" + k
			return &SchemaError{
				Path:    seg,
				Code:    CodeAtKey,
				Message: i18n.T(CodeAtKey, nil),
				Value:   val,
				Params:  map[string]any{"key": k},
				Err:     ce.rebase(seg),
			}
		}
		accepted := false
		var attempts []*SchemaError
		for _, ex := range s.Extras {
			if !ex.Key.MatchString(k) {
				continue
			}
			ce := ex.Schema.check(val, false)
			if ce == nil {
				accepted = true
				break
			}
			attempts = append(attempts, ce.rebase("/"+k))
		}
		if !accepted {
			return &SchemaError{
				Path:    "/" + k,
				Code:    CodeTableMiss,
				Message: i18n.T(CodeTableMiss, nil),
				Hint:    fmt.Sprintf("key %q matched %d extras patterns", k, len(attempts)),
				Value:   val,
				Params:  map[string]any{"key": k},
				Errs:    attempts,
			}
		}
		foundExtras++
	}

	for _, name := range sortedEntryNames(s.Entries) {
		if _, present := tbl[name]; !present {
			return &SchemaError{
				Path:    "/" + name,
				Code:    CodeRequired,
				Message: i18n.T(CodeRequired, nil),
				Hint:    fmt.Sprintf("entry %q is absent", name),
				Params:  map[string]any{"key": name},
			}
		}
	}

	if foundExtras < s.MinExtras || foundExtras > s.MaxExtras {
		e := newError(CodeTableCount, "extras count %d outside [%d, %s]", foundExtras, s.MinExtras, countBound(s.MaxExtras))
		e.Value = tbl
		e.Params = map[string]any{"min": s.MinExtras, "max": s.MaxExtras, "got": foundExtras}
		return e
	}
	return nil
}

func typeMismatch(expected Kind, v any) *SchemaError {
	got := KindOf(v)
	gotName := got.String()
	if got == KindInvalid {
		gotName = fmt.Sprintf("%T", v)
	}
	e := newError(CodeTypeMismatch, "expected %s, got %s", expected, gotName)
	e.Value = v
	e.Params = map[string]any{"expected": expected.String(), "got": gotName}
	return e
}

// valueEqual is the structural equality used by exact schemas. Values of
// different kinds never compare equal; int64 never equals float64.
func valueEqual(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb || ka == KindInvalid {
		return false
	}
	switch ka {
	case KindDate:
		ta, aok := a.(time.Time)
		tb, bok := b.(time.Time)
		if aok != bok {
			return false
		}
		if aok {
			return ta.Equal(tb)
		}
		return a == b
	case KindArray:
		aa, ba := a.([]any), b.([]any)
		if len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !valueEqual(aa[i], ba[i]) {
				return false
			}
		}
		return true
	case KindTable:
		at, bt := a.(map[string]any), b.(map[string]any)
		if len(at) != len(bt) {
			return false
		}
		for k, av := range at {
			bv, ok := bt[k]
			if !ok || !valueEqual(av, bv) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func sortedEntryNames(entries map[string]Entry) []string {
	ns := make([]string, 0, len(entries))
	for n := range entries {
		ns = append(ns, n)
	}
	sort.Strings(ns)
	return ns
}

// countBound renders an array/extras upper bound, which defaults to the
// platform max int when the schema leaves it open.
func countBound(max int) string {
	if max == math.MaxInt {
		return "unbounded"
	}
	return strconv.Itoa(max)
}
