package i18n

import "sync"

// Translator retrieves localized headlines for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "keyword").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":    "invalid type",
		"required":        "required property missing",
		"unknown_key":     "unknown key",
		"duplicate_key":   "duplicate key",
		"too_small":       "too small",
		"too_big":         "too big",
		"too_short":       "too short",
		"too_long":        "too long",
		"pattern":         "pattern mismatch",
		"invalid_enum":    "value not allowed",
		"invalid_format":  "invalid format",
		"union_ambiguous": "more than one alternative matches",
		"union_no_match":  "no alternative matches",
		"invalid_value":   "invalid value",
		"parse_error":     "parse error",
	},
	"ja": {
		"invalid_type":    "型が不正です",
		"required":        "必須プロパティが不足しています",
		"unknown_key":     "未知のキーです",
		"duplicate_key":   "キーが重複しています",
		"too_small":       "小さすぎます",
		"too_big":         "大きすぎます",
		"too_short":       "短すぎます",
		"too_long":        "長すぎます",
		"pattern":         "パターンに一致しません",
		"invalid_enum":    "許可されていない値です",
		"invalid_format":  "形式が不正です",
		"union_ambiguous": "複数の候補に一致します",
		"union_no_match":  "どの候補にも一致しません",
		"invalid_value":   "値が不正です",
		"parse_error":     "解析エラー",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	if msg, ok := dictionaries[t.lang][code]; ok {
		return msg
	}
	if kw := data["keyword"]; kw != "" {
		return code + " (" + kw + ")"
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
