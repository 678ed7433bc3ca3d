package toskema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Compile compiles a decoded schema document into an immutable schema tree.
// The returned Diag carries non-fatal warnings regardless of the error; a
// root-level "default" is discarded with a warning. Compilation is
// all-or-nothing: the first shape error aborts the whole compile with a
// root-to-failure trace built by %w wrapping.
func Compile(doc map[string]any, opts ...Option) (*Schema, Diag, error) {
	var cfg compileConfig
	for _, o := range opts {
		o(&cfg)
	}
	d := &simpleDiag{sink: cfg.warn}
	if doc == nil {
		return nil, d, fmt.Errorf("schema document must be a table")
	}
	nv, err := NormalizeValue(doc)
	if err != nil {
		return nil, d, fmt.Errorf("schema document: %w", err)
	}
	s, dv, hasDefault, err := compileNode(nv.(map[string]any), d)
	if err != nil {
		return nil, d, err
	}
	if hasDefault {
		d.warnf("ignored default %v at the schema root; defaults are only honored on table entries", dv)
	}
	return s, d, nil
}

// CompileTOML compiles a TOML schema document.
func CompileTOML(b []byte, opts ...Option) (*Schema, Diag, error) {
	doc, err := DecodeTOML(b)
	if err != nil {
		return nil, &simpleDiag{}, err
	}
	return Compile(doc, opts...)
}

// CompileJSON compiles a JSON schema document.
func CompileJSON(b []byte, opts ...Option) (*Schema, Diag, error) {
	doc, err := DecodeJSON(b)
	if err != nil {
		return nil, &simpleDiag{}, err
	}
	return Compile(doc, opts...)
}

// CompileYAML compiles a YAML schema document.
func CompileYAML(b []byte, opts ...Option) (*Schema, Diag, error) {
	doc, err := DecodeYAML(b)
	if err != nil {
		return nil, &simpleDiag{}, err
	}
	return Compile(doc, opts...)
}

// compileNode compiles one schema-document node. It returns the node plus its
// own optional default, meaningful only when the node is a table entry's
// value. Defaults are captured as-is and never validated against the node.
func compileNode(doc map[string]any, d *simpleDiag) (*Schema, any, bool, error) {
	kindName := "table"
	if tv, ok := doc["type"]; ok {
		s, ok := tv.(string)
		if !ok {
			return nil, nil, false, fmt.Errorf("schema type must be a string but got %s", describeValue(tv))
		}
		kindName = s
	}
	kind, err := ParseKind(kindName)
	if err != nil {
		return nil, nil, false, err
	}
	switch kind {
	case KindString:
		return compileString(doc, d)
	case KindInteger:
		return compileInt(doc, d)
	case KindFloat:
		return compileFloat(doc, d)
	case KindBool, KindDate, KindAnything:
		return compileLeaf(kind, doc, d)
	case KindExact:
		return compileExact(doc, d)
	case KindArray:
		return compileArray(doc, d)
	case KindTable:
		return compileTable(doc, d)
	case KindAlternative:
		return compileAlternative(doc, d)
	default:
		return nil, nil, false, fmt.Errorf("unrecognized type %q", kindName)
	}
}

func compileString(doc map[string]any, d *simpleDiag) (*Schema, any, bool, error) {
	s := newSchema(KindString)
	var dv any
	hasDefault := false
	for _, k := range sortedKeys(doc) {
		v := doc[k]
		switch k {
		case "type":
		case "default":
			dv, hasDefault = v, true
		case "regex":
			pat, ok := v.(string)
			if !ok {
				return nil, nil, false, fmt.Errorf("string regex must be a pattern string but got %s", describeValue(v))
			}
			re, err := regexp.Compile(pat)
			if err != nil {
				return nil, nil, false, fmt.Errorf("string regex %q does not compile: %w", pat, err)
			}
			s.Pattern = re
		default:
			d.warnf("unexpected key %q in string schema; ignored", k)
		}
	}
	return s, dv, hasDefault, nil
}

func compileInt(doc map[string]any, d *simpleDiag) (*Schema, any, bool, error) {
	s := newSchema(KindInteger)
	var dv any
	hasDefault := false
	for _, k := range sortedKeys(doc) {
		v := doc[k]
		switch k {
		case "type":
		case "default":
			dv, hasDefault = v, true
		case "min":
			i, ok := v.(int64)
			if !ok {
				return nil, nil, false, fmt.Errorf("int min must be an integer but got %s", describeValue(v))
			}
			s.MinInt = i
		case "max":
			i, ok := v.(int64)
			if !ok {
				return nil, nil, false, fmt.Errorf("int max must be an integer but got %s", describeValue(v))
			}
			s.MaxInt = i
		default:
			d.warnf("unexpected key %q in int schema; ignored", k)
		}
	}
	return s, dv, hasDefault, nil
}

func compileFloat(doc map[string]any, d *simpleDiag) (*Schema, any, bool, error) {
	s := newSchema(KindFloat)
	var dv any
	hasDefault := false
	for _, k := range sortedKeys(doc) {
		v := doc[k]
		switch k {
		case "type":
		case "default":
			dv, hasDefault = v, true
		case "min":
			f, ok := v.(float64)
			if !ok {
				return nil, nil, false, fmt.Errorf("float min must be a float but got %s", describeValue(v))
			}
			s.MinFloat = f
		case "max":
			f, ok := v.(float64)
			if !ok {
				return nil, nil, false, fmt.Errorf("float max must be a float but got %s", describeValue(v))
			}
			s.MaxFloat = f
		case "nan_ok":
			b, ok := v.(bool)
			if !ok {
				return nil, nil, false, fmt.Errorf("float nan_ok must be a boolean but got %s", describeValue(v))
			}
			s.NaNOK = b
		default:
			d.warnf("unexpected key %q in float schema; ignored", k)
		}
	}
	return s, dv, hasDefault, nil
}

// compileLeaf handles the parameterless kinds: bool, date, anything.
func compileLeaf(kind Kind, doc map[string]any, d *simpleDiag) (*Schema, any, bool, error) {
	s := newSchema(kind)
	var dv any
	hasDefault := false
	for _, k := range sortedKeys(doc) {
		switch k {
		case "type":
		case "default":
			dv, hasDefault = doc[k], true
		default:
			d.warnf("unexpected key %q in %s schema; ignored", k, kind)
		}
	}
	return s, dv, hasDefault, nil
}

func compileExact(doc map[string]any, d *simpleDiag) (*Schema, any, bool, error) {
	s := newSchema(KindExact)
	var dv any
	hasDefault := false
	hasValue := false
	for _, k := range sortedKeys(doc) {
		switch k {
		case "type":
		case "default":
			dv, hasDefault = doc[k], true
		case "value":
			s.Literal, hasValue = doc[k], true
		default:
			d.warnf("unexpected key %q in exact schema; ignored", k)
		}
	}
	if !hasValue {
		return nil, nil, false, fmt.Errorf(`exact without a "value" key is not allowed`)
	}
	return s, dv, hasDefault, nil
}

func compileArray(doc map[string]any, d *simpleDiag) (*Schema, any, bool, error) {
	s := newSchema(KindArray)
	var dv any
	hasDefault := false
	for _, k := range sortedKeys(doc) {
		v := doc[k]
		switch k {
		case "type":
		case "default":
			dv, hasDefault = v, true
		case "min":
			n, err := countOption(v, "array min")
			if err != nil {
				return nil, nil, false, err
			}
			s.MinItems = n
		case "max":
			n, err := countOption(v, "array max")
			if err != nil {
				return nil, nil, false, err
			}
			s.MaxItems = n
		case "child":
			t, ok := v.(map[string]any)
			if !ok {
				return nil, nil, false, fmt.Errorf("array child must be a table but got %s", describeValue(v))
			}
			child, cdv, hasChildDefault, err := compileNode(t, d)
			if err != nil {
				return nil, nil, false, fmt.Errorf("in array child: %w", err)
			}
			if hasChildDefault {
				d.warnf("ignored default %v on array child; array elements cannot carry defaults", cdv)
			}
			s.Elem = child
		default:
			d.warnf("unexpected key %q in array schema; ignored", k)
		}
	}
	if s.Elem == nil {
		return nil, nil, false, fmt.Errorf(`array without a "child" key is not allowed`)
	}
	return s, dv, hasDefault, nil
}

func compileTable(doc map[string]any, d *simpleDiag) (*Schema, any, bool, error) {
	s := newSchema(KindTable)
	var dv any
	hasDefault := false
	for _, k := range sortedKeys(doc) {
		v := doc[k]
		switch k {
		case "type":
		case "default":
			dv, hasDefault = v, true
		case "min":
			n, err := countOption(v, "table min")
			if err != nil {
				return nil, nil, false, err
			}
			s.MinExtras = n
		case "max":
			n, err := countOption(v, "table max")
			if err != nil {
				return nil, nil, false, err
			}
			s.MaxExtras = n
		case "extras":
			extras, err := compileExtras(v, d)
			if err != nil {
				return nil, nil, false, err
			}
			s.Extras = extras
		default:
			// Every other key is a literal entry name. A single leading '$'
			// escapes collisions with the reserved words above.
			name := strings.TrimPrefix(k, "$")
			t, ok := v.(map[string]any)
			if !ok {
				return nil, nil, false, fmt.Errorf("schema for key %q must be a table but got %s", name, describeValue(v))
			}
			child, edv, hasEntryDefault, err := compileNode(t, d)
			if err != nil {
				return nil, nil, false, fmt.Errorf("in schema for key %q: %w", name, err)
			}
			s.Entries[name] = Entry{Schema: child, Default: edv, HasDefault: hasEntryDefault}
		}
	}
	return s, dv, hasDefault, nil
}

// compileExtras parses the "extras" option: an array of {key, schema}
// records. Declared order is preserved; the matcher tries patterns in order.
func compileExtras(v any, d *simpleDiag) ([]ExtraEntry, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("table extras must be an array but got %s", describeValue(v))
	}
	extras := make([]ExtraEntry, 0, len(arr))
	for i, raw := range arr {
		rec, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("extras[%d] must be a table but got %s", i, describeValue(raw))
		}
		kv, ok := rec["key"]
		if !ok {
			return nil, fmt.Errorf(`extras[%d] is missing the "key" pattern`, i)
		}
		pat, ok := kv.(string)
		if !ok {
			return nil, fmt.Errorf("extras[%d] key must be a pattern string but got %s", i, describeValue(kv))
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("extras[%d] key pattern %q does not compile: %w", i, pat, err)
		}
		sv, ok := rec["schema"]
		if !ok {
			return nil, fmt.Errorf(`extras[%d] is missing the "schema"`, i)
		}
		st, ok := sv.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("extras[%d] schema must be a table but got %s", i, describeValue(sv))
		}
		child, edv, hasEntryDefault, err := compileNode(st, d)
		if err != nil {
			return nil, fmt.Errorf("in extras[%d]: %w", i, err)
		}
		if hasEntryDefault {
			d.warnf("ignored default %v in extras[%d]; extras cannot inject defaults", edv, i)
		}
		if len(rec) > 2 {
			d.warnf("extras[%d] contains unused keys (got %d but expected 2)", i, len(rec))
		}
		extras = append(extras, ExtraEntry{Key: re, Schema: child})
	}
	return extras, nil
}

func compileAlternative(doc map[string]any, d *simpleDiag) (*Schema, any, bool, error) {
	s := newSchema(KindAlternative)
	var dv any
	hasDefault := false
	hasOptions := false
	for _, k := range sortedKeys(doc) {
		v := doc[k]
		switch k {
		case "type":
		case "default":
			dv, hasDefault = v, true
		case "options":
			arr, ok := v.([]any)
			if !ok {
				return nil, nil, false, fmt.Errorf("alternative options must be an array but got %s", describeValue(v))
			}
			hasOptions = true
			for i, raw := range arr {
				rec, ok := raw.(map[string]any)
				if !ok {
					return nil, nil, false, fmt.Errorf("options[%d] must be a table but got %s", i, describeValue(raw))
				}
				child, odv, hasOptionDefault, err := compileNode(rec, d)
				if err != nil {
					return nil, nil, false, fmt.Errorf("in options[%d]: %w", i, err)
				}
				if hasOptionDefault {
					d.warnf("ignored default %v in options[%d]; alternative options cannot carry defaults", odv, i)
				}
				s.Options = append(s.Options, child)
			}
		default:
			d.warnf("unexpected key %q in alternative schema; ignored", k)
		}
	}
	if !hasOptions {
		return nil, nil, false, fmt.Errorf(`alternative without an "options" key is not allowed`)
	}
	return s, dv, hasDefault, nil
}

// countOption shape-checks a non-negative integer option (array/table
// min/max).
func countOption(v any, field string) (int, error) {
	i, ok := v.(int64)
	if !ok || i < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer but got %s", field, describeValue(v))
	}
	return int(i), nil
}

// sortedKeys returns map keys in ascending order for deterministic walks and
// warning ordering.
func sortedKeys(m map[string]any) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// describeValue renders a value for compile error messages: its kind when it
// has one, its Go type otherwise.
func describeValue(v any) string {
	k := KindOf(v)
	if k == KindInvalid {
		return fmt.Sprintf("%T", v)
	}
	switch k {
	case KindArray, KindTable:
		return k.String()
	case KindString:
		return fmt.Sprintf("%s %q", k, v)
	default:
		return fmt.Sprintf("%s %v", k, v)
	}
}
