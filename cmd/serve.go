package cmd

import (
	"net"

	"github.com/relloyd/sqlsteps/actions"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a web service that runs the pipeline on request",
	Long: `Start a web service for schedulers. Endpoints:
  GET  /health
  GET  /steps
  POST /run?step=<name|all>&dry-run=<true|false>
  GET  /runs/last
  GET  /stop
Runs are executed one at a time and the response is sent when the run completes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		serveConfig.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunWebServer(&serveConfig)
	},
}

var serveConfig = actions.WebServerConfig{
	Scheme: "http",
	Addr:   net.IP{0, 0, 0, 0},
	Port:   8080,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().SortFlags = false
	serveCmd.SilenceUsage = true
	serveCmd.Flags().IPVarP(&serveConfig.Addr, "address", "a", net.IP{0, 0, 0, 0}, "Address to listen on")
	switches.addFlag(serveCmd, &serveConfig.Port, "port", "8080", false, "")
	addCommonFlags(serveCmd, &serveConfig.CommonConfig)
}
