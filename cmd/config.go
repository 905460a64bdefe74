package cmd

import (
	"github.com/relloyd/sqlsteps/actions"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets hidden",
	Long: `Print the configuration after applying defaults, the config file, the env file,
environment variables and flags, in that order. Passwords are hidden.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configCfg.Writer = cmd.OutOrStdout()
		return actions.RunShowConfig(&configCfg)
	},
}

var configCfg = actions.ShowConfigConfig{}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().SortFlags = false
	addCommonFlags(configCmd, &configCfg.CommonConfig)
}
