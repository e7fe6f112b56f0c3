package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boxdesk/boxdesk/internal/infrastructure/database"
	"github.com/boxdesk/boxdesk/internal/infrastructure/migration"
	"github.com/boxdesk/boxdesk/internal/interfaces/cli/cliutil"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

var (
	flags cliutil.Flags
	name  string
	dir   string
	steps int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, and creating new migration files.`,
	}

	flags.Register(cmd)

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations to bring the database schema up to date.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations (MySQL only).`,
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current migration version and status of the database (MySQL only).`,
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create a new SQL migration file with the specified name.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	cmd.Flags().StringVar(&dir, "dir", migration.DefaultScriptsDir, "Directory to write the migration into")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func initEnv() (*migration.Manager, logger.Interface, error) {
	cfg, log, err := flags.LoadWithDatabase()
	if err != nil {
		return nil, nil, err
	}
	return migration.NewManager(cfg.Database.Driver), log, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	manager, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("running up migrations", "environment", flags.Env)

	if err := manager.Migrate(database.Get()); err != nil {
		log.Errorw("migration failed", "error", err)
		return err
	}

	log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	manager, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	goose, err := manager.Versioned()
	if err != nil {
		return fmt.Errorf("down migration is not available: %w", err)
	}

	log.Infow("running down migrations", "environment", flags.Env, "steps", steps)

	if err := goose.MigrateDown(database.Get(), steps); err != nil {
		log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	goose, err := manager.Versioned()
	if err != nil {
		return fmt.Errorf("status check is not available: %w", err)
	}

	version, err := goose.GetVersion(database.Get())
	if err != nil {
		log.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nMigration Status:\n")
	fmt.Fprintf(out, "  Environment:     %s\n", flags.Env)
	fmt.Fprintf(out, "  Current Version: %d\n", version)

	if err := goose.Status(database.Get()); err != nil {
		log.Errorw("failed to get detailed status", "error", err)
		return fmt.Errorf("failed to get detailed status: %w", err)
	}
	return nil
}

// runCreate needs no database connection.
func runCreate(cmd *cobra.Command, args []string) error {
	cfg, log, err := flags.Load()
	if err != nil {
		return err
	}

	goose, err := migration.NewManager(cfg.Database.Driver).Versioned()
	if err != nil {
		return fmt.Errorf("create is not available: %w", err)
	}

	log.Infow("creating new migration", "name", name, "dir", dir)

	if err := goose.Create(dir, name); err != nil {
		log.Errorw("failed to create migration", "error", err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Migration '%s' created in %s\n", name, dir)
	return nil
}
