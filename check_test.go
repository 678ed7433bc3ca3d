package toskema_test

import (
	"math"
	"testing"

	toskema "github.com/reoring/toskema"
)

func wantCode(t *testing.T, err error, code string) *toskema.SchemaError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	se, ok := toskema.AsSchemaError(err)
	if !ok {
		t.Fatalf("expected *SchemaError, got %T: %v", err, err)
	}
	if se.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, se.Code, se)
	}
	return se
}

func TestCheck_IntegerBounds(t *testing.T) {
	s, _ := mustCompileTOML(t, `
type = "int"
min = 0
max = 150
`)
	for _, v := range []int64{0, 75, 150} {
		if err := s.Check(v); err != nil {
			t.Fatalf("Check(%d): %v", v, err)
		}
	}
	for _, v := range []int64{-1, 151} {
		wantCode(t, s.Check(v), toskema.CodeIntMiss)
	}
	wantCode(t, s.Check("150"), toskema.CodeTypeMismatch)
}

func TestCheck_FloatBoundsAndNaN(t *testing.T) {
	strict, _ := mustCompileTOML(t, `
type = "float"
min = 0.0
max = 1.0
`)
	if err := strict.Check(0.5); err != nil {
		t.Fatalf("in-range float: %v", err)
	}
	if err := strict.Check(1.0); err != nil {
		t.Fatalf("boundary float: %v", err)
	}
	wantCode(t, strict.Check(1.5), toskema.CodeFloatMiss)
	// NaN always fails when nan_ok is false.
	wantCode(t, strict.Check(math.NaN()), toskema.CodeFloatMiss)

	lax, _ := mustCompileTOML(t, `
type = "float"
min = 0.0
max = 1.0
nan_ok = true
`)
	// NaN bypasses the bounds entirely when nan_ok is true.
	if err := lax.Check(math.NaN()); err != nil {
		t.Fatalf("nan_ok float rejected NaN: %v", err)
	}
	wantCode(t, lax.Check(2.0), toskema.CodeFloatMiss)
}

func TestCheck_StringSubstringMatch(t *testing.T) {
	s, _ := mustCompileTOML(t, `
type = "string"
regex = "b+"
`)
	// Substring semantics: callers anchor with ^/$ for full-string matching.
	if err := s.Check("abbc"); err != nil {
		t.Fatalf("substring match: %v", err)
	}
	wantCode(t, s.Check("acd"), toskema.CodeRegexMiss)

	anchored, _ := mustCompileTOML(t, `
type = "string"
regex = "^[a-z]+$"
`)
	if err := anchored.Check("abc"); err != nil {
		t.Fatalf("anchored match: %v", err)
	}
	wantCode(t, anchored.Check("abc1"), toskema.CodeRegexMiss)

	unconstrained, _ := mustCompileTOML(t, `type = "string"`)
	if err := unconstrained.Check(""); err != nil {
		t.Fatalf("unconstrained string: %v", err)
	}
}

func TestCheck_BoolDateAnything(t *testing.T) {
	b, _ := mustCompileTOML(t, `type = "bool"`)
	if err := b.Check(true); err != nil {
		t.Fatalf("bool: %v", err)
	}
	wantCode(t, b.Check(int64(1)), toskema.CodeTypeMismatch)

	d, _ := mustCompileTOML(t, `type = "date"`)
	doc, err := toskema.DecodeTOML([]byte(`when = 2024-05-01`))
	if err != nil {
		t.Fatalf("decode date: %v", err)
	}
	if err := d.Check(doc["when"]); err != nil {
		t.Fatalf("date: %v", err)
	}
	wantCode(t, d.Check("2024-05-01"), toskema.CodeTypeMismatch)

	a, _ := mustCompileTOML(t, `type = "anything"`)
	for _, v := range []any{int64(1), "x", true, []any{}, map[string]any{}} {
		if err := a.Check(v); err != nil {
			t.Fatalf("anything rejected %#v: %v", v, err)
		}
	}
}

func TestCheck_Exact(t *testing.T) {
	s, _ := mustCompileTOML(t, `
type = "exact"
value = {a = 1, b = ["x"]}
`)
	ok := map[string]any{"a": int64(1), "b": []any{"x"}}
	if err := s.Check(ok); err != nil {
		t.Fatalf("structural equality: %v", err)
	}
	wantCode(t, s.Check(map[string]any{"a": int64(2), "b": []any{"x"}}), toskema.CodeTypeMismatch)
	wantCode(t, s.Check(map[string]any{"a": int64(1)}), toskema.CodeTypeMismatch)

	n, _ := mustCompileTOML(t, `
type = "exact"
value = 1
`)
	if err := n.Check(int64(1)); err != nil {
		t.Fatalf("exact int: %v", err)
	}
	// int64 never equals float64.
	wantCode(t, n.Check(1.0), toskema.CodeTypeMismatch)
}

func TestCheck_ArrayCountBeforeElements(t *testing.T) {
	s, _ := mustCompileTOML(t, `
type = "array"
child = {type = "int", min = 0}
min = 1
max = 3
`)
	// Count violations win even when elements would also fail.
	wantCode(t, s.Check([]any{}), toskema.CodeArrayCount)
	wantCode(t, s.Check([]any{"no", "no", "no", "no"}), toskema.CodeArrayCount)

	if err := s.Check([]any{int64(1), int64(2)}); err != nil {
		t.Fatalf("in-range array: %v", err)
	}
}

func TestCheck_ArrayFirstFailingElement(t *testing.T) {
	s, _ := mustCompileTOML(t, `
type = "array"
child = {type = "int", min = 0}
min = 1
max = 3
`)
	se := wantCode(t, s.Check([]any{int64(-1)}), toskema.CodeArrayMiss)
	if se.Path != "/0" {
		t.Fatalf("expected failure at /0, got %s", se.Path)
	}
	wantCode(t, se.Err, toskema.CodeIntMiss)

	// Lowest failing index reported.
	se = wantCode(t, s.Check([]any{int64(1), int64(-2), int64(-3)}), toskema.CodeArrayMiss)
	if se.Path != "/1" {
		t.Fatalf("expected failure at /1, got %s", se.Path)
	}
}

func TestCheck_AlternativeOrderAndErrors(t *testing.T) {
	s, _ := mustCompileTOML(t, `
type = "alternative"
options = [
  {type = "int", min = 0},
  {type = "string"},
]
`)
	if err := s.Check(int64(3)); err != nil {
		t.Fatalf("first option: %v", err)
	}
	if err := s.Check("x"); err != nil {
		t.Fatalf("second option: %v", err)
	}
	se := wantCode(t, s.Check(true), toskema.CodeAlternativeMiss)
	if len(se.Errs) != 2 {
		t.Fatalf("expected one error per option, got %d", len(se.Errs))
	}
	// Branch errors keep the declared option order.
	if se.Errs[0].Code != toskema.CodeTypeMismatch || se.Errs[1].Code != toskema.CodeTypeMismatch {
		t.Fatalf("unexpected branch codes: %s, %s", se.Errs[0].Code, se.Errs[1].Code)
	}
	se = wantCode(t, s.Check(int64(-1)), toskema.CodeAlternativeMiss)
	if se.Errs[0].Code != toskema.CodeIntMiss {
		t.Fatalf("expected int_miss on first branch, got %s", se.Errs[0].Code)
	}
}

func TestCheck_TableLiteralShadowsExtras(t *testing.T) {
	s, _ := mustCompileTOML(t, `
min = 1
max = 1
x_lit = {type = "string"}
extras = [{key = "^x_", schema = {type = "int"}}]
`)
	// x_lit matches the extras pattern but resolves as the literal entry, so
	// only x_other counts toward the extras bounds.
	doc := map[string]any{"x_lit": "s", "x_other": int64(1)}
	if err := s.Check(doc); err != nil {
		t.Fatalf("literal precedence: %v", err)
	}
	// With the literal alone, the extras count drops below min.
	wantCode(t, s.Check(map[string]any{"x_lit": "s"}), toskema.CodeTableCount)
}

func TestCheck_ExtrasPatternMatchesButSchemaFails(t *testing.T) {
	s, _ := mustCompileTOML(t, `
min = 1
max = 2
extras = [{key = "^x_", schema = {type = "int"}}]
`)
	if err := s.Check(map[string]any{"x_a": int64(1)}); err != nil {
		t.Fatalf("extras accept: %v", err)
	}
	se := wantCode(t, s.Check(map[string]any{"x_a": int64(1), "x_b": "no"}), toskema.CodeTableMiss)
	if se.Path != "/x_b" {
		t.Fatalf("expected miss at /x_b, got %s", se.Path)
	}
	if len(se.Errs) != 1 || se.Errs[0].Code != toskema.CodeTypeMismatch {
		t.Fatalf("expected the attempted pattern's error, got %v", se.Errs)
	}
}

func TestCheck_ExtrasTriedInDeclaredOrder(t *testing.T) {
	s, _ := mustCompileTOML(t, `
max = 1
extras = [
  {key = "^x_", schema = {type = "int"}},
  {key = "^x_", schema = {type = "string"}},
]
`)
	// First pattern fails on a string value; the second accepts it.
	if err := s.Check(map[string]any{"x_a": "s"}); err != nil {
		t.Fatalf("fallthrough to later pattern: %v", err)
	}
}

func TestCheck_ExtrasCountBounds(t *testing.T) {
	s, _ := mustCompileTOML(t, `
min = 1
max = 2
extras = [{key = ".*", schema = {type = "anything"}}]
`)
	wantCode(t, s.Check(map[string]any{}), toskema.CodeTableCount)
	if err := s.Check(map[string]any{"a": int64(1), "b": int64(2)}); err != nil {
		t.Fatalf("in-range extras: %v", err)
	}
	wantCode(t, s.Check(map[string]any{"a": int64(1), "b": int64(2), "c": int64(3)}), toskema.CodeTableCount)
}

func TestCheck_UnmatchedKeyWithNoExtras(t *testing.T) {
	s, _ := mustCompileTOML(t, `
name = {type = "string"}
`)
	se := wantCode(t, s.Check(map[string]any{"name": "x", "stray": int64(1)}), toskema.CodeTableMiss)
	if se.Path != "/stray" {
		t.Fatalf("expected miss at /stray, got %s", se.Path)
	}
	if len(se.Errs) != 0 {
		t.Fatalf("no pattern was attempted, got %v", se.Errs)
	}
}

func TestCheck_MissingLiteralEntryIsRequired(t *testing.T) {
	s, _ := mustCompileTOML(t, `
name = {type = "string"}
age = {type = "int", default = 0}
`)
	// Plain Check never honors defaults: both absent entries report required.
	se := wantCode(t, s.Check(map[string]any{"name": "bob"}), toskema.CodeRequired)
	if se.Path != "/age" {
		t.Fatalf("expected required at /age, got %s", se.Path)
	}
}

func TestCheck_NestedPathRebasing(t *testing.T) {
	s, _ := mustCompileTOML(t, `
[items]
type = "array"
child = {type = "int", min = 0}
`)
	err := s.Check(map[string]any{"items": []any{int64(1), int64(-5)}})
	se := wantCode(t, err, toskema.CodeAtKey)
	if se.Path != "/items" {
		t.Fatalf("expected wrap at /items, got %s", se.Path)
	}
	inner := se.Err
	if inner == nil || inner.Code != toskema.CodeArrayMiss || inner.Path != "/items/1" {
		t.Fatalf("expected array_miss at /items/1, got %v", inner)
	}
	leaf := inner.Err
	if leaf == nil || leaf.Code != toskema.CodeIntMiss || leaf.Path != "/items/1" {
		t.Fatalf("expected int_miss at /items/1, got %v", leaf)
	}
}

func TestCheck_TypeMismatchNamesKinds(t *testing.T) {
	s, _ := mustCompileTOML(t, `type = "int"`)
	se := wantCode(t, s.Check("x"), toskema.CodeTypeMismatch)
	if se.Params["expected"] != "int" || se.Params["got"] != "string" {
		t.Fatalf("unexpected params: %v", se.Params)
	}
}
