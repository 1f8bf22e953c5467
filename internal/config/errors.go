package config

import (
	"fmt"
	"strings"
)

// Configuration error codes (E200-E299)
const (
	// Loading (E201-E209)
	ErrCodeUnreadable  = "E201" // file cannot be read
	ErrCodeParse       = "E202" // syntax or decode error
	ErrCodeUnsupported = "E203" // unknown file extension

	// Rules (E210-E229)
	ErrCodeRuleTarget       = "E210" // neither match nor create
	ErrCodeRuleAmbiguous    = "E211" // both match and create
	ErrCodeUnknownCompiler  = "E212" // compiler name not recognised
	ErrCodeInvalidRoute     = "E213" // route spec not recognised
	ErrCodeBadPattern       = "E214" // malformed glob
	ErrCodeMissingPattern   = "E215" // concat/index/expand without pattern
	ErrCodeExpandVersion    = "E216" // expand without a distinct version
	ErrCodeDuplicateCreate  = "E217" // same virtual item created twice
	ErrCodeCopyWithoutMatch = "E218" // copy needs a backing resource

	// Directories (E230-E239)
	ErrCodeDirectoryOverlap = "E230" // destination, store and provider overlap
)

// LoadError is a failure to read or decode a configuration file.
type LoadError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

func (e *LoadError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: [%s] %s", e.File, e.Line, e.Column, e.Code, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: [%s] %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ValidationError is one problem found in a decoded configuration.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors collects every problem found; it is returned as a whole
// rather than failing on the first.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}
