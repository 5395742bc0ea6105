package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig   string
	flagEnvFile  string
	flagLogLevel string
	flagTodos    bool
)

var rootCmd = &cobra.Command{
	Use:   "alex",
	Short: "Terminal dashboard for portfolio alerts and todos",
	Long: `alex shows the alerts and todos raised by the analysis backend and lets you
mark alerts read, dismiss them, and start or complete todos.

Run without a subcommand to open the interactive dashboard.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to config file")
	pf.StringVar(&flagEnvFile, "env-file", "", "dotenv file read before the environment (default .env)")
	pf.StringVar(&flagLogLevel, "log-level", "", "override log_level from config (debug, info, warn, error)")

	rootCmd.Flags().BoolVar(&flagTodos, "todos", false, "open the tasks view first")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(todosCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "alex %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
