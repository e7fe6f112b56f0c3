// Package cliutil holds the start-up steps shared by the boxdesk commands.
package cliutil

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/boxdesk/boxdesk/internal/infrastructure/config"
	"github.com/boxdesk/boxdesk/internal/infrastructure/database"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

// Flags are the persistent flags every command accepts.
type Flags struct {
	Env        string
	ConfigPath string
}

// Register binds the flags on cmd. The ENV variable overrides --env.
func (f *Flags) Register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
}

// Load reads the configuration and initializes the logger and the business
// timezone. The database is left untouched.
func (f *Flags) Load() (*config.Config, logger.Interface, error) {
	if envVar := os.Getenv("ENV"); envVar != "" {
		f.Env = envVar
	}

	cfg, err := config.Load(f.Env, f.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = GinMode(f.Env)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	return cfg, logger.NewLogger(), nil
}

// LoadWithDatabase is Load followed by database.Init. Callers close the
// database with database.Close.
func (f *Flags) LoadWithDatabase() (*config.Config, logger.Interface, error) {
	cfg, log, err := f.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, log, nil
}

// GinMode maps an environment name to a gin mode.
func GinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
