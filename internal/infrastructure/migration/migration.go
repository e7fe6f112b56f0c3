package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

// DefaultScriptsDir is where `migrate create` writes new scripts.
const DefaultScriptsDir = "internal/infrastructure/migration/scripts"

// Manager picks the migration strategy for the configured database driver.
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager returns goose for MySQL and GORM AutoMigrate for SQLite.
func NewManager(driver string) *Manager {
	var strategy Strategy
	switch driver {
	case "sqlite":
		strategy = NewGormAutoMigrateStrategy()
	default:
		strategy = NewGooseStrategy("mysql")
	}
	return NewManagerWithStrategy(strategy)
}

func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.NewLogger().With("component", "migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.GetName(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}

// Versioned returns the goose strategy, or an error when the driver migrates
// without versioned scripts.
func (m *Manager) Versioned() (*GooseStrategy, error) {
	goose, ok := m.strategy.(*GooseStrategy)
	if !ok {
		return nil, fmt.Errorf("strategy %s has no versioned migrations", m.strategy.GetName())
	}
	return goose, nil
}
