package cmd

import (
	"errors"
	"testing"

	"github.com/relloyd/sqlsteps/config"
)

var results = map[string]int{
	"run":   0,
	"stage": 0,
}

func getMock12FactorExecutor(action string, err error) func() error {
	return func() error {
		results[action]++
		return err
	}
}

func TestSetupTwelveFactorMode(t *testing.T) {
	t.Cleanup(setupTwelveFactorMode)
	t.Setenv(envVarTwelveFactorMode, "")
	setupTwelveFactorMode()
	if twelveFactorMode {
		t.Fatal("expected twelveFactorMode to be false; got true")
	}
	t.Setenv(envVarTwelveFactorMode, "1")
	setupTwelveFactorMode()
	if !twelveFactorMode || lambdaMode {
		t.Fatal("expected twelveFactorMode without lambdaMode")
	}
	t.Setenv(envVarTwelveFactorMode, "Lambda")
	setupTwelveFactorMode()
	if !twelveFactorMode || !lambdaMode {
		t.Fatal("expected twelveFactorMode and lambdaMode")
	}
}

func TestExecute12FactorMode(t *testing.T) {
	stageErr := errors.New("stage failed")
	acts := map[string]twelveFactorAction{
		"run":   {runnerFunc: getMock12FactorExecutor("run", nil)},
		"stage": {runnerFunc: getMock12FactorExecutor("stage", stageErr)},
	}
	t.Setenv(envVarLogLevel, "error")
	t.Setenv(envVarPassword, "secret")
	// Test 1 - the default command is run.
	t.Setenv(envVarCommand, "")
	if err := execute12FactorMode(acts); err != nil {
		t.Fatalf("test 1 failed: expected nil error got error: %v", err)
	}
	if results["run"] != 1 {
		t.Fatalf("test 1 failed: expected run action to be called once; got %v", results["run"])
	}
	// Test 2 - action errors are returned.
	t.Setenv(envVarCommand, "Stage")
	if err := execute12FactorMode(acts); err != stageErr {
		t.Fatalf("test 2 failed: expected stage error; got %v", err)
	}
	// Test 3 - unknown command.
	t.Setenv(envVarCommand, "bogus")
	if err := execute12FactorMode(acts); err == nil {
		t.Fatal("test 3 failed: expected error for unknown command")
	}
	if results["run"] != 1 || results["stage"] != 1 {
		t.Fatalf("test 3 failed: unexpected action calls %v", results)
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(&config.ConfigurationError{Missing: []string{"SNOWFLAKE_USER"}}); got != exitCodeConfiguration {
		t.Fatalf("expected configuration exit code; got %v", got)
	}
	if got := exitCode(errors.New("step failed")); got != exitCodeFailure {
		t.Fatalf("expected failure exit code; got %v", got)
	}
}
