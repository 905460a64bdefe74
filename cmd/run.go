package cmd

import (
	"github.com/relloyd/sqlsteps/actions"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one step or the whole pipeline",
	Long: `Execute the step named by --step, or every step in order when the step is "all".
Each step's statements run in one transaction which is rolled back if any statement fails.
After commit the step's validation query is checked. The run stops at the first failed step
and exits non-zero.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSteps()
	},
}

var runCfg = actions.RunStepsConfig{}

func runSteps() error {
	runCfg.StackDumpOnPanic = stackDumpOnPanic
	return actions.RunSteps(&runCfg)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().SortFlags = false
	runCmd.SilenceUsage = true // avoid dumping command help when a step fails.
	switches.addFlag(runCmd, &runCfg.Step, "step", constants.StepNameAll, false, "")
	switches.addFlag(runCmd, &runCfg.DryRun, "dry-run", "false", false, "")
	addCommonFlags(runCmd, &runCfg.CommonConfig)
}
