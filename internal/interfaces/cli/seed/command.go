package seed

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boxdesk/boxdesk/internal/bootstrap"
	"github.com/boxdesk/boxdesk/internal/infrastructure/database"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/seeds"
	"github.com/boxdesk/boxdesk/internal/interfaces/cli/cliutil"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
)

var (
	flags cliutil.Flags
	file  string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load plans, payment methods and subscribers from a catalog file",
		Long: `Apply a YAML catalog of platform plans, academies, members and their
plans and payment methods. Entries that already exist are skipped, so the
command can be re-run safely.`,
		RunE: run,
	}

	flags.Register(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "Catalog YAML file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	catalog, err := seeds.LoadCatalog(file)
	if err != nil {
		return err
	}

	_, log, err := flags.LoadWithDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	repos := bootstrap.NewRepositories(database.Get(), log)
	seeder := seeds.NewSeeder(database.Get(), repos.Plans, repos.Methods, biztime.SystemClock{}, log)

	result, err := seeder.Apply(cmd.Context(), catalog)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d plans, %d payment methods, %d academies, %d members\n",
		result.Plans, result.PaymentMethods, result.Academies, result.Members)
	return nil
}
