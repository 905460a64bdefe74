package cmd

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/config"
	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2024-01-01T00:00+0000"
	stackDumpOnPanic bool
)

const (
	exitCodeFailure       = 1
	exitCodeConfiguration = 2
)

var rootCmd = &cobra.Command{
	Use:   "sqlsteps",
	Short: "Run an ordered pipeline of SQL steps against a data warehouse",
	Long: `sqlsteps runs a fixed, ordered pipeline of SQL scripts against a single warehouse session.
Each step runs in its own transaction and is validated after commit. Run one step by name or the
whole pipeline with "all"; the pipeline stops at the first failure. Use --dry-run to see what would
run without connecting.

Supporting commands load the mapping CSV into its staging table, stage it in S3 and serve the
pipeline over HTTP for schedulers.`,
	SilenceErrors: true, // Execute prints errors once.
}

func init() {
	// General setup.
	cobra.EnableCommandSorting = false
	rootCmd.SetGlobalNormalizationFunc(normaliseFlagName)
	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if twelveFactorMode { // if we are running based on environment variables...
		if lambdaMode { // if we should handle lambda execution...
			lambda.Start(func() error { return execute12FactorMode(twelveFactorActions) })
		} else {
			if err := execute12FactorMode(twelveFactorActions); err != nil {
				// execute12FactorMode logs the error.
				os.Exit(exitCode(err))
			}
		}
	} else { // else we're using CLI args and flags via Cobra...
		if err := rootCmd.Execute(); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(exitCode(err))
		}
	}
}

// exitCode distinguishes configuration problems, found before any database work, from run failures.
func exitCode(err error) int {
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return exitCodeConfiguration
	}
	return exitCodeFailure
}
