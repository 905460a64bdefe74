package cmd

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/relloyd/sqlsteps/actions"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "m", desc: "mock switch for testing"},
	"config": cliFlag{name: "config", shortHand: "c",
		desc: "YAML config `<file>` (default ~/.sqlsteps/config.yaml)"},
	"env-file": cliFlag{name: "env-file", shortHand: "e",
		desc: "File of KEY=value lines applied before the process environment (default ./.env)"},
	"sql-dir": cliFlag{name: "sql-dir", shortHand: "s",
		desc: "Directory containing the step SQL files"},
	"pipeline-file": cliFlag{name: "pipeline-file", shortHand: "p",
		desc: "YAML or JSON file defining the ordered steps (default is the built-in pipeline)"},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug | trace\""},
	"log-file": cliFlag{name: "log-file", shortHand: "L",
		desc: "Also write the log to this file; use \"auto\" for sqlsteps_YYYYMMDD.log"},
	"step": cliFlag{name: "step", shortHand: "n",
		desc: "Name of the step to run, or \"all\" to run the whole pipeline in order"},
	"dry-run": cliFlag{name: "dry-run", shortHand: "d",
		desc: "Report the statements that would run without connecting to the database"},
	"csv-file": cliFlag{name: "csv-file", shortHand: "f",
		desc: "The CSV file to load or stage (.gz files are decompressed)"},
	"table": cliFlag{name: "table", shortHand: "t",
		desc: "Target [<schema>.]<table> whose rows are replaced by the CSV contents"},
	"columns": cliFlag{name: "columns", shortHand: "C",
		desc: "The <CSV of fields> expected, in order, as the CSV header and table columns"},
	"batch-size": cliFlag{name: "batch-size", shortHand: "b",
		desc: "Number of CSV rows combined into each INSERT statement (0 to use the configured value)"},
	"create-table": cliFlag{name: "create-table", shortHand: "T",
		desc: "Create the target table if it does not exist"},
	"s3-url": cliFlag{name: "s3-url", shortHand: "u",
		desc: "AWS S3 bucket URL to stage the CSV file in. Use format: s3://<bucket>[/<prefix>/]"},
	"s3-region": cliFlag{name: "s3-region", shortHand: "R",
		desc: "AWS S3 bucket region"},
	"s3-key": cliFlag{name: "s3-key", shortHand: "K",
		desc: "Object name under the bucket prefix (default is the CSV file name)"},
	"output": cliFlag{name: "output", shortHand: "o",
		desc: "Specify \"text\" or \"yaml\""},
	"port": cliFlag{name: "port", shortHand: "P",
		desc: "Port to listen on"},
}

// addFlag add a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// When running in twelveFactorMode, the targetVar is populated using the value of environment variable for the supplied
// name, or if not set then the supplied default value is used.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue)
	desc := sw.desc + desc2
	// Apply the flag.
	switch p := targetVar.(type) {
	case *string:
		if twelveFactorMode {
			*p = sw.val
		} else {
			c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
		}
	case *bool:
		if twelveFactorMode {
			*p = helper.GetTrueFalseStringAsBool(sw.val)
		} else {
			c.Flags().BoolVarP(p, sw.name, sw.shortHand, helper.GetTrueFalseStringAsBool(sw.val), desc)
		}
	case *int:
		defaultInt, err := strconv.Atoi(sw.val)
		if err != nil {
			fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
			os.Exit(1)
		}
		if twelveFactorMode {
			*p = defaultInt
		} else {
			c.Flags().IntVarP(p, sw.name, sw.shortHand, defaultInt, desc)
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	// Optionally mark the flag as mandatory.
	if required && !twelveFactorMode {
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment, when running in twelveFactorMode.
// If a value cannot be found then use the supplied defaultValue in its place.
func (f *cliFlags) getCliFlag(name string, defaultValue string) cliFlag {
	s, ok := (*f)[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	s.val = defaultValue
	if twelveFactorMode { // if we should read env vars...
		_ = helper.ReadValueFromEnv(flagNameToEnvVar(name), &s.val)
	}
	return s
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix.
func flagNameToEnvVar(name string) string {
	return constants.EnvVarPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// addCommonFlags adds the flags shared by every command that reads the configuration.
// Empty defaults leave the configured values in place.
func addCommonFlags(c *cobra.Command, cfg *actions.CommonConfig) {
	switches.addFlag(c, &cfg.ConfigFile, "config", "", false, "")
	switches.addFlag(c, &cfg.EnvFile, "env-file", "", false, "")
	switches.addFlag(c, &cfg.SqlDir, "sql-dir", "", false, "")
	switches.addFlag(c, &cfg.PipelineFile, "pipeline-file", "", false, "")
	switches.addFlag(c, &cfg.LogLevel, "log-level", "", false, "")
	switches.addFlag(c, &cfg.LogFile, "log-file", "", false, "")
	if !twelveFactorMode {
		_ = c.MarkFlagFilename("config", "yaml", "yml")
		_ = c.MarkFlagFilename("pipeline-file", "yaml", "yml", "json")
		_ = c.MarkFlagDirname("sql-dir")
	}
}

// normaliseFlagName lets users type underscores in flag names, matching the environment variable form.
func normaliseFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
