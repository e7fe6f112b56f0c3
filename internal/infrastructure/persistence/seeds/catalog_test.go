package seeds

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/models"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/testdb"
	"github.com/boxdesk/boxdesk/internal/infrastructure/repository"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

const sampleCatalog = `
platform:
  plans:
    - name: Pro
      price: "300.00"
      recurrence_days: 30
  payment_methods:
    - name: Boleto
academies:
  - id: 7
    name: Box Centro
    email: box@example.com
    plans:
      - name: Monthly
        price: "100.00"
        recurrence_days: 30
      - name: 10 classes
        price: "90"
        recurrence_days: 60
        quota: 10
        category: pack
    payment_methods:
      - name: Pix
        discount_percent: "5"
    members:
      - id: 42
        name: Maria
        email: maria@example.com
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestSeeder(t *testing.T) (*Seeder, billing.PlanRepository) {
	t.Helper()
	database := testdb.Open(t)
	log := logger.NewLogger()
	plans := repository.NewPlanRepository(database, log)
	methods := repository.NewPaymentMethodRepository(database, log)
	clock := biztime.FixedClock{Date: biztime.Date(2024, time.January, 1)}
	return NewSeeder(database, plans, methods, clock, log), plans
}

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)

	require.Len(t, catalog.Platform.Plans, 1)
	assert.Equal(t, "300.00", catalog.Platform.Plans[0].Price)
	require.Len(t, catalog.Academies, 1)
	academy := catalog.Academies[0]
	assert.Equal(t, uint(7), academy.ID)
	require.Len(t, academy.Plans, 2)
	require.NotNil(t, academy.Plans[1].Quota)
	assert.Equal(t, 10, *academy.Plans[1].Quota)
	assert.Equal(t, "5", academy.PaymentMethods[0].DiscountPercent)
	assert.Equal(t, "maria@example.com", academy.Members[0].Email)
}

func TestLoadCatalog_RejectsUnknownKeys(t *testing.T) {
	_, err := LoadCatalog(writeCatalog(t, "platform:\n  plan:\n    - name: Pro\n"))
	assert.Error(t, err)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeeder_ApplyIsIdempotent(t *testing.T) {
	seeder, plans := newTestSeeder(t)
	catalog, err := LoadCatalog(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)
	ctx := context.Background()

	first, err := seeder.Apply(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{Plans: 3, PaymentMethods: 2, Academies: 1, Members: 1}, first)

	second, err := seeder.Apply(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{}, second)

	offered, err := plans.ListOffered(ctx, vo.AcademyScope(7))
	require.NoError(t, err)
	require.Len(t, offered, 2)
	assert.Equal(t, "10 classes", offered[0].Name())

	var member models.MemberModel
	require.NoError(t, seeder.db.First(&member, 42).Error)
	assert.Equal(t, uint(7), member.AcademyID)
}

func TestSeeder_ApplyRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad price", "platform:\n  plans:\n    - {name: Pro, price: abc, recurrence_days: 30}\n"},
		{"platform plan without recurrence", "platform:\n  plans:\n    - {name: Pro, price: \"10\"}\n"},
		{"academy without id", "academies:\n  - name: Nowhere\n"},
		{"discount out of range", "platform:\n  payment_methods:\n    - {name: Card, discount_percent: \"150\"}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeder, _ := newTestSeeder(t)
			catalog, err := LoadCatalog(writeCatalog(t, tt.content))
			require.NoError(t, err)
			_, err = seeder.Apply(context.Background(), catalog)
			assert.Error(t, err)
		})
	}
}
