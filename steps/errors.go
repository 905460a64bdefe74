package steps

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind tags the reason a step failed so callers can branch without inspecting messages.
type ErrorKind string

const (
	// SourceReadError means the SQL text of the step could not be obtained.
	SourceReadError ErrorKind = "SourceReadError"
	// StatementExecutionError means a statement (or the commit) failed and the step was rolled back.
	StatementExecutionError ErrorKind = "StatementExecutionError"
	// ValidationError means the step committed but its validation rule failed.
	ValidationError ErrorKind = "ValidationError"
)

// StepError is the error carried by a failed ExecutionResult.
type StepError struct {
	Kind           ErrorKind
	Step           string
	StatementIndex int    // 1-based index of the failing statement; 0 when no single statement is at fault
	Statement      string // the failing statement, if any
	Err            error
}

func (e *StepError) Error() string {
	if e.StatementIndex > 0 {
		return fmt.Sprintf("%v in step %q at statement %v: %v", e.Kind, e.Step, e.StatementIndex, e.Err)
	}
	return fmt.Sprintf("%v in step %q: %v", e.Kind, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is, or wraps, a StepError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *StepError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}
