package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "chamados",
		Short: "Helpdesk ticket web application",
		Long:  `chamados serves the helpdesk web application: accounts, support tickets, attachments and ticket messages.`,
		// 引数なしで起動した場合はサーバーを起動する
		RunE:          runServe,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: configs/config.yaml if present)")

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
