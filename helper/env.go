package helper

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/sqlsteps/constants"
)

// ReadValueFromEnv will read the named environment variable and populate the supplied val.
// If the env var is not set then return an error and leave val untouched.
func ReadValueFromEnv(name string, val *string) error {
	v := os.Getenv(name)
	if v != "" { // if the environment variable was set...
		*val = v // update the callers value
		return nil
	}
	return fmt.Errorf("value for environment variable %v not found", name)
}

// ReadValueFromEnvWithDefault will read the value of name from the environment into v.
// If it's not set then it will apply the supplied defaultValue and return v.
func ReadValueFromEnvWithDefault(name string, defaultValue string) (v string) {
	_ = ReadValueFromEnv(name, &v)
	if v == "" && defaultValue != "" { // if the environment variable is not set and we have been given a default value...
		v = defaultValue
	}
	return
}

// OverrideFromEnv copies the value of each env var key into the string it points to, where the variable is set.
// Variables that are not set leave the existing value alone.
func OverrideFromEnv(m map[string]*string) {
	for k, p := range m {
		_ = ReadValueFromEnv(k, p)
	}
}

// GetEnvVarName converts name into an environment variable using EnvVarPrefix, with the name converted to upper
// case and dashes converted to underscores.
func GetEnvVarName(name string) string {
	n := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	return fmt.Sprintf("%v_%v", constants.EnvVarPrefix, n)
}
