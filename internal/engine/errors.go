package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/kiln/internal/item"
)

// ErrorCode categorises run failures.
type ErrorCode string

const (
	// ErrCodeCycleDetected: the dependency graph has a cycle. Nothing was
	// executed and the graph was not persisted.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"

	// ErrCodeCompileFailed: a compile procedure returned an error.
	ErrCodeCompileFailed ErrorCode = "COMPILE_FAILED"

	// ErrCodeUnknownDependency: an item depends on an identifier that is
	// not part of the population.
	ErrCodeUnknownDependency ErrorCode = "UNKNOWN_DEPENDENCY"

	// ErrCodeDuplicateItem: two rules share an identifier.
	ErrCodeDuplicateItem ErrorCode = "DUPLICATE_ITEM"

	// ErrCodeRouteConflict: two items route to the same destination.
	ErrCodeRouteConflict ErrorCode = "ROUTE_CONFLICT"

	// ErrCodeInvalidRoute: a route escapes the destination directory.
	ErrCodeInvalidRoute ErrorCode = "INVALID_ROUTE"

	// ErrCodeIOFailed: the store, provider or destination failed.
	ErrCodeIOFailed ErrorCode = "IO_FAILED"

	// ErrCodeCancelled: the run's context was cancelled between items.
	ErrCodeCancelled ErrorCode = "CANCELLED"
)

// RunError is the error returned by a failed run.
type RunError struct {
	Code    ErrorCode
	Message string

	// ID is the item being processed, if any.
	ID item.ID

	// Cycle is the closed dependency path for CYCLE_DETECTED.
	Cycle []item.ID

	// Err is the underlying cause, if any.
	Err error
}

func (e *RunError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if !e.ID.IsZero() {
		fmt.Fprintf(&b, " (item=%s)", e.ID)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RunError) Unwrap() error { return e.Err }

// CodeOf returns the code of the RunError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsCycleError reports whether err is a cycle detection failure.
func IsCycleError(err error) bool {
	return CodeOf(err) == ErrCodeCycleDetected
}

// FormatCycle renders a closed path as "a → b → a".
func FormatCycle(path []item.ID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = id.String()
	}
	return strings.Join(parts, " → ")
}

func newCycleError(path []item.ID) *RunError {
	return &RunError{
		Code:    ErrCodeCycleDetected,
		Message: "dependency cycle: " + FormatCycle(path),
		Cycle:   path,
	}
}

func newCompileError(id item.ID, err error) *RunError {
	return &RunError{
		Code:    ErrCodeCompileFailed,
		Message: "compile failed",
		ID:      id,
		Err:     err,
	}
}

func newIOError(msg string, id item.ID, err error) *RunError {
	return &RunError{Code: ErrCodeIOFailed, Message: msg, ID: id, Err: err}
}
