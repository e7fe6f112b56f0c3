package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/boxdesk/boxdesk/internal/infrastructure/config"
	"github.com/boxdesk/boxdesk/internal/infrastructure/database"
	"github.com/boxdesk/boxdesk/internal/infrastructure/migration"
	"github.com/boxdesk/boxdesk/internal/interfaces/cli/cliutil"
	httpRouter "github.com/boxdesk/boxdesk/internal/interfaces/http"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

var (
	flags              cliutil.Flags
	autoMigrate        bool
	skipMigrationCheck bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the boxdesk billing API with the specified configuration.`,
		RunE:  run,
	}

	flags.Register(cmd)
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup (not recommended for production)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := flags.LoadWithDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("starting server",
		"environment", flags.Env,
		"auto_migrate", autoMigrate,
		"timezone", cfg.Server.Timezone)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := handleMigrations(cfg, log); err != nil {
		return fmt.Errorf("migration handling failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := httpRouter.NewContainer(ctx, database.Get(), cfg, log)
	if err != nil {
		return err
	}
	defer container.Shutdown()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Infow("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

// handleMigrations always migrates SQLite, whose schema comes from the
// models. MySQL is migrated only with --auto-migrate; otherwise the current
// version is logged.
func handleMigrations(cfg *config.Config, log logger.Interface) error {
	manager := migration.NewManager(cfg.Database.Driver)

	if cfg.Database.Driver == "sqlite" {
		return manager.Migrate(database.Get())
	}

	if skipMigrationCheck {
		log.Infow("skipping migration check")
		return nil
	}

	if autoMigrate {
		if flags.Env == "production" {
			log.Warnw("auto-migration is enabled in production environment - this is not recommended!")
		}
		log.Infow("running auto-migration")
		if err := manager.Migrate(database.Get()); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		log.Infow("auto-migration completed successfully")
		return nil
	}

	goose, err := manager.Versioned()
	if err != nil {
		return err
	}
	version, err := goose.GetVersion(database.Get())
	if err != nil {
		log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	log.Infow("current migration version", "version", version)
	return nil
}
