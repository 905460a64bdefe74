package cmd

import (
	"fmt"
	"os"
	"strings"

	c "github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/helper"
	"github.com/relloyd/sqlsteps/logger"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set such that other init() functions that configure
// Cobra can populate the action configs from environment variables instead of CLI flags.
func init() {
	setupTwelveFactorMode()
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	mode := os.Getenv(envVarTwelveFactorMode)
	if mode != "" { // if variable for 12factor mode is set and we should read env vars to determine actions...
		twelveFactorMode = true
		if strings.ToLower(mode) == "lambda" {
			lambdaMode = true
		}
	} else { // else 12factor mode should be off...
		twelveFactorMode = false // explicitly turn off this mode since tests may have turned it on while others require it off.
		lambdaMode = false
	}
}

const (
	envVarTwelveFactorMode = c.EnvVarPrefix + "_" + "12FACTOR_MODE"
	envVarCommand          = c.EnvVarPrefix + "_" + "COMMAND" // run|load-csv|stage
	envVarLogLevel         = c.EnvVarPrefix + "_" + "LOG_LEVEL"
	envVarStep             = c.EnvVarPrefix + "_" + "STEP"
	envVarDryRun           = c.EnvVarPrefix + "_" + "DRY_RUN"
	envVarConnectionType   = c.EnvVarPrefix + "_" + "CONNECTION_TYPE"
	envVarDsn              = c.EnvVarPrefix + "_" + "DSN"
	envVarSqlDir           = c.EnvVarPrefix + "_" + "SQL_DIR"
	envVarPassword         = "SNOWFLAKE_PASSWORD"
)

var (
	twelveFactorMode bool // true if os env var envVarTwelveFactorMode is set
	lambdaMode       bool // true if os env var envVarTwelveFactorMode is set to "lambda"
	twelveFactorVars = map[string]string{
		envVarCommand:        "",
		envVarLogLevel:       "",
		envVarStep:           "",
		envVarDryRun:         "",
		envVarConnectionType: "",
		envVarDsn:            "",
		envVarSqlDir:         "",
		envVarPassword:       "",
	}
	twelveFactorVarsSensitive = map[string]string{ // used to flag some of the above variables as being sensitive.
		envVarDsn:      "",
		envVarPassword: "",
	}
)

type twelveFactorAction struct {
	runnerFunc func() error
}

var twelveFactorActions = map[string]twelveFactorAction{
	"run":      {runnerFunc: runSteps},
	"load-csv": {runnerFunc: runLoadCsv},
	"stage":    {runnerFunc: runStage},
}

func execute12FactorMode(acts map[string]twelveFactorAction) (err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(envVarLogLevel, "info")
	log := logger.NewLogger(c.ServiceName, logLevel, stackDumpOnPanic)
	log.Info("sqlsteps is running in 12 Factor mode...")
	// Save values for the known variables.
	for k := range twelveFactorVars { // for each env variable that we need...
		// Save it and log it.
		twelveFactorVars[k] = os.Getenv(k)
		_, sensitive := twelveFactorVarsSensitive[k]
		if !sensitive { // if the env variable does not contain sensitive values...
			log.Debug(k, "=", twelveFactorVars[k])
		} else { // else output obfuscated value...
			log.Debug(k, "=", "<obfuscated>")
		}
	}
	// Use the command to fetch the appropriate action; default to running the pipeline.
	command := strings.ToLower(strings.TrimSpace(twelveFactorVars[envVarCommand]))
	if command == "" {
		command = "run"
	}
	a, ok := acts[command]
	if !ok {
		err = fmt.Errorf("invalid command %q in %v", command, envVarCommand)
		log.Error(err.Error())
		return
	}
	// Run the action.
	err = a.runnerFunc()
	if err != nil {
		log.Error("Error: ", err)
	}
	return err
}
