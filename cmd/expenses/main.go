package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/caaosorio/expenses/pkg/logging"
)

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "expenses",
		Short: "Bancolombia notification-email expense pipeline",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to a .env file (optional)")

	logger := logging.Setup(logging.FromEnv())

	rootCmd.AddCommand(newCollectCommand(&envFile, logger))
	rootCmd.AddCommand(newServeCommand(&envFile, logger))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
