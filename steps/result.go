package steps

import (
	"fmt"
	"time"
)

// Status is the state of a step within a single execution.
type Status string

const (
	StatusPending          Status = "Pending"
	StatusExecuting        Status = "Executing"
	StatusCommitted        Status = "Committed"
	StatusRolledBack       Status = "RolledBack"
	StatusValidated        Status = "Validated"
	StatusValidationFailed Status = "ValidationFailed"
	StatusValidationWarned Status = "ValidationWarned" // the rule failed but is configured to only warn
	StatusDryRun           Status = "DryRun"
	StatusSourceFailed     Status = "SourceFailed"
)

// ExecutionResult is the outcome of running one step.
type ExecutionResult struct {
	RunId              string        `json:"runId"`
	Step               string        `json:"step"`
	Status             Status        `json:"status"`
	Success            bool          `json:"success"`
	DryRun             bool          `json:"dryRun"`
	StatementCount     int           `json:"statementCount"`
	StatementsExecuted int           `json:"statementsExecuted"`
	ValidationValue    interface{}   `json:"validationValue,omitempty"` // nil when no validation ran
	Message            string        `json:"message,omitempty"`
	Err                error         `json:"-"`
	Started            time.Time     `json:"started"`
	Duration           time.Duration `json:"duration"`
}

func (r ExecutionResult) String() string {
	outcome := "succeeded"
	if !r.Success {
		outcome = "failed"
	}
	s := fmt.Sprintf("step %q %v (%v): %v", r.Step, outcome, r.Status, r.Message)
	if r.Err != nil {
		s = fmt.Sprintf("%v: %v", s, r.Err)
	}
	return s
}

// Succeeded reports whether a pipeline run of expected steps completed:
// every attempted step succeeded and none was skipped because of an earlier failure.
func Succeeded(results []ExecutionResult, expected int) bool {
	if len(results) != expected {
		return false
	}
	for _, r := range results {
		if !r.Success {
			return false
		}
	}
	return true
}

// FirstFailure returns the first failed result, if any.
func FirstFailure(results []ExecutionResult) (ExecutionResult, bool) {
	for _, r := range results {
		if !r.Success {
			return r, true
		}
	}
	return ExecutionResult{}, false
}
