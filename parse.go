package toskema

import (
	"bytes"
	"fmt"
	"math"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DecodeTOML decodes a TOML document into the normalized value model
// (string, int64, float64, bool, date types, []any, map[string]any).
func DecodeTOML(b []byte) (map[string]any, error) {
	var m map[string]any
	if err := toml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	return normalizeRoot(m)
}

// DecodeJSON decodes a JSON document into the normalized value model. JSON
// numbers become int64 when they parse exactly as integers, float64
// otherwise. JSON has no datetime literal, so date-typed values cannot come
// from JSON input.
func DecodeJSON(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return normalizeRoot(m)
}

// DecodeYAML decodes a YAML document into the normalized value model.
func DecodeYAML(b []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return normalizeRoot(m)
}

func normalizeRoot(m map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, fmt.Errorf("document root must be a table")
	}
	v, err := NormalizeValue(m)
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

// NormalizeValue rewrites a decoded Go value into the canonical value model.
// Integer widths collapse to int64, float32 widens to float64, json.Number
// resolves to int64 or float64, composites are rebuilt recursively. Values
// outside the model (nil included: the model has no null) are an error.
func NormalizeValue(v any) (any, error) {
	switch t := v.(type) {
	case string, bool, int64, float64,
		time.Time, toml.LocalDate, toml.LocalDateTime, toml.LocalTime:
		return t, nil
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", t)
		}
		return int64(t), nil
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", t)
		}
		return int64(t), nil
	case float32:
		return float64(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q fits neither int64 nor float64", string(t))
		}
		return f, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			ne, err := NormalizeValue(e)
			if err != nil {
				return nil, fmt.Errorf("at index %d: %w", i, err)
			}
			out[i] = ne
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ne, err := NormalizeValue(e)
			if err != nil {
				return nil, fmt.Errorf("at key %q: %w", k, err)
			}
			out[k] = ne
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("table key %v is not a string", k)
			}
			ne, err := NormalizeValue(e)
			if err != nil {
				return nil, fmt.Errorf("at key %q: %w", ks, err)
			}
			out[ks] = ne
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("null is not representable in the value model")
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
