package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ledgerRow struct {
	ID   uint `gorm:"primaryKey"`
	Note string
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(&ledgerRow{}))
	return database
}

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	database := setupTestDB(t)
	tm := NewTransactionManager(database)

	boom := errors.New("boom")
	err := tm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		require.True(t, InTransaction(ctx))
		require.NoError(t, GetTxFromContext(ctx, database).Create(&ledgerRow{Note: "first"}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, database.Model(&ledgerRow{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRunInTransaction_JoinsOuterTransaction(t *testing.T) {
	database := setupTestDB(t)
	tm := NewTransactionManager(database)

	err := tm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		inner := tm.RunInTransaction(ctx, func(ctx context.Context) error {
			return GetTxFromContext(ctx, database).Create(&ledgerRow{Note: "inner"}).Error
		})
		require.NoError(t, inner)
		return errors.New("outer failed")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, database.Model(&ledgerRow{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPaginate(t *testing.T) {
	database := setupTestDB(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, database.Create(&ledgerRow{}).Error)
	}

	var rows []ledgerRow
	require.NoError(t, database.Scopes(Paginate(2, 2)).Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, uint(3), rows[0].ID)
}
