package cmd

import (
	"fmt"

	"github.com/relloyd/sqlsteps/constants"
	"github.com/spf13/cobra"
)

var twelveFactorCmd = &cobra.Command{
	Use:   "12f",
	Short: `View help notes for running in Twelve-Factor mode`,
	Long: fmt.Sprintf(`
sqlsteps can be controlled by environment variables alone, which suits schedulers,
containers and AWS Lambda.

To enable Twelve-Factor mode, set environment variable %[1]s_12FACTOR_MODE=1 
(or %[1]s_12FACTOR_MODE=lambda to run as a Lambda handler).
To supply flags documented by the regular command-line usage, set an 
equivalent environment variable using the following convention: 

%[1]s_<flag long-name in upper case with dashes as underscores>

For example, this will run the create_view step against Snowflake:

export %[1]s_12FACTOR_MODE=1
export %[1]s_COMMAND=run
export %[1]s_STEP=create_view
export %[1]s_SQL_DIR=/opt/sql
export SNOWFLAKE_ACCOUNT=xy12345.eu-west-1
export SNOWFLAKE_USER=loader
export SNOWFLAKE_PASSWORD=...

Then execute the CLI tool without any arguments or flags. Supported commands 
are run (the default), load-csv and stage.

`, constants.EnvVarPrefix),
}

func init() {
	rootCmd.AddCommand(twelveFactorCmd)
}
