package steps

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/diegoholiveira/jsonlogic"
	"github.com/pkg/errors"
)

// DefaultPredicate passes when the validation value is greater than zero, e.g. a non-empty row count.
const DefaultPredicate = `{">": [{"var": "value"}, 0]}`

func (v *ValidationRule) getPredicate() string {
	if strings.TrimSpace(v.Predicate) == "" {
		return DefaultPredicate
	}
	return v.Predicate
}

// Check returns an error if the rule is incomplete or its predicate is not valid JSON Logic.
func (v *ValidationRule) Check() error {
	if strings.TrimSpace(v.Query) == "" {
		return errors.New("validation query is missing")
	}
	if !jsonlogic.IsValid(strings.NewReader(v.getPredicate())) {
		return errors.Errorf("invalid validation predicate: %v", v.Predicate)
	}
	switch v.getOnFail() {
	case OnFailError, OnFailWarn:
	default:
		return errors.Errorf("unsupported validation onFail value %q; use %q or %q", v.OnFail, OnFailError, OnFailWarn)
	}
	return nil
}

// Evaluate applies the rule's predicate to value and reports whether it passed.
// Any result other than JSON true is a failure.
func (v *ValidationRule) Evaluate(value interface{}) (bool, error) {
	jsonData, err := json.Marshal(map[string]interface{}{"value": value})
	if err != nil {
		return false, errors.Wrap(err, "error marshalling data before applying JSON logic")
	}
	var result bytes.Buffer
	if err = jsonlogic.Apply(strings.NewReader(v.getPredicate()), bytes.NewReader(jsonData), &result); err != nil {
		return false, errors.Wrap(err, "error applying JSON logic")
	}
	return strings.TrimSpace(result.String()) == "true", nil
}
