package cmd

import (
	"github.com/relloyd/sqlsteps/actions"
	"github.com/spf13/cobra"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Upload the CSV file to the S3 location read by the import step",
	Long: `Upload the CSV file to the S3 bucket and prefix that the warehouse stage used by the
import step reads from. Set AWS environment variables or a profile for access.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage()
	},
}

var stageCfg = actions.StageConfig{}

func runStage() error {
	stageCfg.StackDumpOnPanic = stackDumpOnPanic
	return actions.RunStage(&stageCfg)
}

func init() {
	rootCmd.AddCommand(stageCmd)
	stageCmd.Flags().SortFlags = false
	stageCmd.SilenceUsage = true
	switches.addFlag(stageCmd, &stageCfg.CsvFile, "csv-file", "", false, "")
	switches.addFlag(stageCmd, &stageCfg.S3Url, "s3-url", "", false, "")
	switches.addFlag(stageCmd, &stageCfg.S3Region, "s3-region", "", false, "")
	switches.addFlag(stageCmd, &stageCfg.Key, "s3-key", "", false, "")
	addCommonFlags(stageCmd, &stageCfg.CommonConfig)
}
