package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/boxdesk/boxdesk/internal/interfaces/cli/migrate"
	"github.com/boxdesk/boxdesk/internal/interfaces/cli/seed"
	"github.com/boxdesk/boxdesk/internal/interfaces/cli/server"
	"github.com/boxdesk/boxdesk/internal/interfaces/cli/sweep"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "boxdesk",
		Short: "Boxdesk - recurring billing for gyms",
		Long: `Boxdesk bills academies for their platform contracts and lets each academy
bill its members: plans, enrollments, installments and the delinquency sweep.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		sweep.NewCommand(),
		seed.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
