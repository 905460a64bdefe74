package steps

import (
	"strings"
)

const (
	OnFailError = "error" // a failed validation fails the step and halts the pipeline
	OnFailWarn  = "warn"  // a failed validation is logged and the step still succeeds
)

// Step is one named unit of the pipeline, backed by SQL text.
// SQL is read from Source by the Runner when it is empty.
type Step struct {
	Name       string          `json:"name"`
	Source     string          `json:"source,omitempty"`
	SQL        string          `json:"sql,omitempty"`
	Validation *ValidationRule `json:"validation,omitempty"`
}

// ValidationRule is a scalar query run after the step commits, plus a JSON Logic predicate over its result.
// The result is available to the predicate as {"var": "value"}.
type ValidationRule struct {
	Query     string `json:"query"`
	Predicate string `json:"predicate,omitempty"` // JSON Logic; defaults to DefaultPredicate
	OnFail    string `json:"onFail,omitempty"`    // OnFailError (default) or OnFailWarn
	Reason    string `json:"reason,omitempty"`
}

func (v *ValidationRule) getOnFail() string {
	if strings.TrimSpace(v.OnFail) == "" {
		return OnFailError
	}
	return strings.ToLower(strings.TrimSpace(v.OnFail))
}

func (v *ValidationRule) getReason(stepName string) string {
	if v.Reason != "" {
		return v.Reason
	}
	return "validation failed after " + stepName
}

// substituteVariables replaces each ${key} in s with its value from vars.
// Unknown placeholders are left untouched.
func substituteVariables(s string, vars map[string]string) string {
	if len(vars) == 0 {
		return s
	}
	replacements := make([]string, 0, len(vars)*2)
	for k, v := range vars { // for each key-value (old, new values)...
		replacements = append(replacements, "${"+k+"}", v)
	}
	return strings.NewReplacer(replacements...).Replace(s)
}
