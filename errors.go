package typereg

import (
	"errors"
	"fmt"
	"strings"

	eng "github.com/reoring/typereg/internal/engine"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType    = eng.CodeInvalidType
	CodeRequired       = eng.CodeRequired
	CodeUnknownKey     = eng.CodeUnknownKey
	CodeDuplicateKey   = eng.CodeDuplicateKey
	CodeTooSmall       = eng.CodeTooSmall
	CodeTooBig         = eng.CodeTooBig
	CodeTooShort       = eng.CodeTooShort
	CodeTooLong        = eng.CodeTooLong
	CodePattern        = eng.CodePattern
	CodeInvalidEnum    = eng.CodeInvalidEnum
	CodeInvalidFormat  = eng.CodeInvalidFormat
	CodeUnionAmbiguous = eng.CodeUnionAmbiguous
	CodeUnionNoMatch   = eng.CodeUnionNoMatch
	CodeInvalidValue   = eng.CodeInvalidValue
	CodeParseError     = eng.CodeParseError
)

// Issue is a single validator diagnostic.
type Issue struct {
	Path    string // JSON Pointer into the candidate value (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Keyword string // Schema keyword that failed, when the validator reports one.
	Message string
}

func (it Issue) String() string {
	if it.Keyword != "" {
		return fmt.Sprintf("%s at %s (%s): %s", it.Code, it.Path, it.Keyword, it.Message)
	}
	return fmt.Sprintf("%s at %s: %s", it.Code, it.Path, it.Message)
}

// Issues is the diagnostic list of one failed validation. It implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Discriminant routes validation issues through enum dispatch.
func (iss Issues) Discriminant() string { return KindValidation }

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func fromEngineIssues(si []eng.SimpleIssue) Issues {
	var iss Issues
	for _, s := range si {
		iss = AppendIssues(iss, Issue{Code: s.Code, Path: s.Path, Keyword: s.Keyword, Message: s.Message})
	}
	return iss
}
