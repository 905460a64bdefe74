package cmd

import (
	"strconv"

	"github.com/relloyd/sqlsteps/actions"
	"github.com/spf13/cobra"
)

var loadCsvCmd = &cobra.Command{
	Use:   "load-csv",
	Short: "Replace the staging table contents with the rows of a CSV file",
	Long: `Check that the CSV header matches the expected columns, create the table if required,
then delete all rows and insert the CSV rows in a single transaction. The table row count is
verified afterwards. Empty CSV fields are loaded as NULL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoadCsv()
	},
}

var loadCsvCfg = actions.LoadCsvConfig{}

func runLoadCsv() error {
	loadCsvCfg.StackDumpOnPanic = stackDumpOnPanic
	return actions.RunLoadCsv(&loadCsvCfg)
}

func init() {
	rootCmd.AddCommand(loadCsvCmd)
	loadCsvCmd.Flags().SortFlags = false
	loadCsvCmd.SilenceUsage = true
	switches.addFlag(loadCsvCmd, &loadCsvCfg.CsvFile, "csv-file", "", false, "")
	switches.addFlag(loadCsvCmd, &loadCsvCfg.Table, "table", "", false, "")
	switches.addFlag(loadCsvCmd, &loadCsvCfg.Columns, "columns", "", false, "")
	switches.addFlag(loadCsvCmd, &loadCsvCfg.BatchSize, "batch-size", strconv.Itoa(0), false, "")
	switches.addFlag(loadCsvCmd, &loadCsvCfg.CreateTable, "create-table", "true", false, "")
	addCommonFlags(loadCsvCmd, &loadCsvCfg.CommonConfig)
}
