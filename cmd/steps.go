package cmd

import (
	"github.com/relloyd/sqlsteps/actions"
	"github.com/spf13/cobra"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the pipeline steps in execution order",
	Long: `List the pipeline steps in execution order with their SQL file and validation query.
Use --output yaml to print a pipeline file that can be edited and supplied with --pipeline-file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stepsCfg.StackDumpOnPanic = stackDumpOnPanic
		stepsCfg.Writer = cmd.OutOrStdout()
		return actions.RunListSteps(&stepsCfg)
	},
}

var stepsCfg = actions.ListStepsConfig{}

func init() {
	rootCmd.AddCommand(stepsCmd)
	stepsCmd.Flags().SortFlags = false
	switches.addFlag(stepsCmd, &stepsCfg.Output, "output", "text", false, "")
	addCommonFlags(stepsCmd, &stepsCfg.CommonConfig)
}
