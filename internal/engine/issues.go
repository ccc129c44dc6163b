package engine

import "strings"

// Issue codes produced by the engine. The root package re-exports them.
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeUnknownKey     = "unknown_key"
	CodeDuplicateKey   = "duplicate_key"
	CodeTooSmall       = "too_small"
	CodeTooBig         = "too_big"
	CodeTooShort       = "too_short"
	CodeTooLong        = "too_long"
	CodePattern        = "pattern"
	CodeInvalidEnum    = "invalid_enum"
	CodeInvalidFormat  = "invalid_format"
	CodeUnionAmbiguous = "union_ambiguous"
	CodeUnionNoMatch   = "union_no_match"
	CodeInvalidValue   = "invalid_value"
	CodeParseError     = "parse_error"
)

// SimpleIssue is the engine-side issue representation; the root package
// converts it into its public Issue type.
type SimpleIssue struct {
	Code    string
	Path    string
	Keyword string
	Message string
}

// keywordCodes maps JSON Schema keywords onto issue codes.
var keywordCodes = map[string]string{
	"type":                  CodeInvalidType,
	"required":              CodeRequired,
	"dependentRequired":     CodeRequired,
	"additionalProperties":  CodeUnknownKey,
	"unevaluatedProperties": CodeUnknownKey,
	"minimum":               CodeTooSmall,
	"exclusiveMinimum":      CodeTooSmall,
	"minItems":              CodeTooSmall,
	"minProperties":         CodeTooSmall,
	"minContains":           CodeTooSmall,
	"maximum":               CodeTooBig,
	"exclusiveMaximum":      CodeTooBig,
	"maxItems":              CodeTooBig,
	"maxProperties":         CodeTooBig,
	"maxContains":           CodeTooBig,
	"minLength":             CodeTooShort,
	"maxLength":             CodeTooLong,
	"pattern":               CodePattern,
	"enum":                  CodeInvalidEnum,
	"const":                 CodeInvalidEnum,
	"format":                CodeInvalidFormat,
	"oneOf":                 CodeUnionAmbiguous,
	"anyOf":                 CodeUnionNoMatch,
}

// CodeForKeyword returns the issue code for a schema keyword; unknown
// keywords map to CodeInvalidValue.
func CodeForKeyword(kw string) string {
	if c, ok := keywordCodes[kw]; ok {
		return c
	}
	return CodeInvalidValue
}

// lastKeyword extracts the final segment of a keyword location such as
// "/properties/value/const".
func lastKeyword(loc string) string {
	loc = strings.TrimSuffix(loc, "/")
	if i := strings.LastIndexByte(loc, '/'); i >= 0 {
		return loc[i+1:]
	}
	return loc
}

// pointer renders an instance location as a JSON Pointer, using "/" for the root.
func pointer(loc string) string {
	if loc == "" {
		return "/"
	}
	return loc
}
