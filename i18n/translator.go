package i18n

// Translator retrieves localized messages for SchemaError codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "type_mismatch":
			return "型が不正です"
		case "regex_miss":
			return "文字列がパターンに一致しません"
		case "int_miss":
			return "整数が範囲外です"
		case "float_miss":
			return "浮動小数点数が範囲外です"
		case "array_count":
			return "配列の長さが範囲外です"
		case "array_miss":
			return "配列要素が一致しません"
		case "table_miss":
			return "キーに一致するスキーマがありません"
		case "table_count":
			return "追加キーの数が範囲外です"
		case "at_key":
			return "キーの値が一致しません"
		case "required":
			return "必須キーが不足しています"
		case "alternative_miss":
			return "どの選択肢にも一致しません"
		}
	default: // "en"
		switch code {
		case "type_mismatch":
			return "invalid type"
		case "regex_miss":
			return "string does not match pattern"
		case "int_miss":
			return "integer out of range"
		case "float_miss":
			return "float out of range"
		case "array_count":
			return "array length out of range"
		case "array_miss":
			return "array element does not match"
		case "table_miss":
			return "no schema matches key"
		case "table_count":
			return "extra key count out of range"
		case "at_key":
			return "value at key does not match"
		case "required":
			return "required entry missing"
		case "alternative_miss":
			return "no alternative matched"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T is shorthand to translate a code with the current Translator.
func T(code string, data map[string]string) string {
	return currentTranslator.Message(code, data)
}
