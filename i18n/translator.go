package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "ge").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須フィールドが不足しています"
		case "extra_forbidden":
			return "未知のフィールドです"
		case "duplicate_key":
			return "キーが重複しています"
		case "too_small":
			return "小さすぎます"
		case "too_big":
			return "大きすぎます"
		case "too_short":
			return "短すぎます"
		case "too_long":
			return "長すぎます"
		case "multiple_of":
			return "倍数条件を満たしません"
		case "pattern":
			return "パターンに一致しません"
		case "invalid_literal":
			return "許可された値ではありません"
		case "invalid_enum":
			return "列挙メンバーではありません"
		case "invalid_format":
			return "書式が不正です"
		case "discriminator_missing":
			return "判別フィールドが不足しています"
		case "discriminator_unknown":
			return "未知の判別値です"
		case "union_no_match":
			return "どのユニオンメンバーにも一致しません"
		case "parse_error":
			return "解析エラー"
		case "overflow":
			return "数値が範囲外です"
		case "finite_number":
			return "有限の数値が必要です"
		case "recursion_limit":
			return "再帰の上限を超えました"
		case "invalid_shape":
			return "シリアライズ対象の形が不正です"
		case "schema_unknown_type":
			return "未知のスキーマ型です"
		case "schema_unknown_key":
			return "未知のスキーマキーです"
		case "schema_unknown_ref":
			return "未解決の定義参照です"
		case "schema_constraint":
			return "スキーマ制約が不正です"
		case "schema_error":
			return "スキーマが不正です"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required field missing"
		case "extra_forbidden":
			return "extra field not permitted"
		case "duplicate_key":
			return "duplicate key"
		case "too_small":
			return "value is too small"
		case "too_big":
			return "value is too big"
		case "too_short":
			return "too short"
		case "too_long":
			return "too long"
		case "multiple_of":
			return "value is not a multiple of the divisor"
		case "pattern":
			return "string does not match the pattern"
		case "invalid_literal":
			return "value is not a permitted literal"
		case "invalid_enum":
			return "value is not a member of the enum"
		case "invalid_format":
			return "invalid format"
		case "discriminator_missing":
			return "discriminator field missing"
		case "discriminator_unknown":
			return "unrecognized discriminator value"
		case "union_no_match":
			return "no union member matched"
		case "parse_error":
			return "parse error"
		case "overflow":
			return "number out of range"
		case "finite_number":
			return "finite number required"
		case "recursion_limit":
			return "recursion limit exceeded"
		case "invalid_shape":
			return "value does not match the expected shape"
		case "schema_unknown_type":
			return "unknown schema node type"
		case "schema_unknown_key":
			return "unknown schema key"
		case "schema_unknown_ref":
			return "unresolved definition reference"
		case "schema_constraint":
			return "invalid schema constraint"
		case "schema_error":
			return "invalid schema"
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

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
