package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mentora-inc/mentora/internal/interfaces/cli/migrate"
	"github.com/mentora-inc/mentora/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mentora",
		Short: "Mentora - tutoring platform billing service",
		Long:  `Mentora billing manages subscription plans, teacher subscriptions and student quota enforcement.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
