package toskema

import (
	"fmt"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Kind classifies a schema node or a document value. It is a closed set; the
// matcher and compiler switch over it exhaustively.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBool
	KindDate
	KindArray
	KindTable
	KindAlternative
	KindAnything
	KindExact
)

var kindNames = map[Kind]string{
	KindString:      "string",
	KindInteger:     "int",
	KindFloat:       "float",
	KindBool:        "bool",
	KindDate:        "date",
	KindArray:       "array",
	KindTable:       "table",
	KindAlternative: "alternative",
	KindAnything:    "anything",
	KindExact:       "exact",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "<invalid kind>"
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("cannot marshal invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(d []byte) error {
	kk, err := ParseKind(string(d))
	if err != nil {
		return err
	}
	*k = kk
	return nil
}

// ParseKind maps a schema "type" name to its Kind. Unknown names are a hard
// error; the compiler surfaces them as compile failures.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "string":
		return KindString, nil
	case "int":
		return KindInteger, nil
	case "float":
		return KindFloat, nil
	case "bool":
		return KindBool, nil
	case "date":
		return KindDate, nil
	case "array":
		return KindArray, nil
	case "table":
		return KindTable, nil
	case "alternative":
		return KindAlternative, nil
	case "anything":
		return KindAnything, nil
	case "exact":
		return KindExact, nil
	default:
		return KindInvalid, fmt.Errorf("unrecognized type %q", name)
	}
}

// KindOf classifies a normalized document value into one of the eight value
// kinds. Values outside the model (nil included) classify as KindInvalid.
func KindOf(v any) Kind {
	switch v.(type) {
	case string:
		return KindString
	case int64:
		return KindInteger
	case float64:
		return KindFloat
	case bool:
		return KindBool
	case time.Time, toml.LocalDate, toml.LocalDateTime, toml.LocalTime:
		return KindDate
	case []any:
		return KindArray
	case map[string]any:
		return KindTable
	default:
		return KindInvalid
	}
}
