package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

func newTestMethod(t *testing.T, id, tenantID uint, name, discount string, active bool) *billing.PaymentMethod {
	t.Helper()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	method, err := billing.ReconstructPaymentMethod(id, tenantID, name, decimal.RequireFromString(discount), active, now, now)
	require.NoError(t, err)
	return method
}

func newTestCatalog(repo *mockPaymentMethodRepository) *PaymentMethodCatalog {
	clock := biztime.FixedClock{Date: biztime.Date(2024, time.January, 1)}
	return NewPaymentMethodCatalog(repo, clock, logger.NewLogger())
}

func TestPaymentMethodCatalog_Create(t *testing.T) {
	tests := []struct {
		name     string
		cmd      CreatePaymentMethodCommand
		repoErr  error
		wantErr  bool
		check    func(error) bool
		tenantID uint
	}{
		{
			name:     "academy method",
			cmd:      CreatePaymentMethodCommand{Scope: academy, Name: " Pix ", DiscountPercent: decimal.RequireFromString("5")},
			tenantID: academyID,
		},
		{
			name:     "platform method lives in tenant zero",
			cmd:      CreatePaymentMethodCommand{Scope: vo.PlatformScope(), Name: "Boleto", DiscountPercent: decimal.Zero},
			tenantID: 0,
		},
		{
			name:    "missing name",
			cmd:     CreatePaymentMethodCommand{Scope: academy, DiscountPercent: decimal.Zero},
			wantErr: true,
			check:   apperrors.IsValidationError,
		},
		{
			name:    "discount above one hundred",
			cmd:     CreatePaymentMethodCommand{Scope: academy, Name: "Cash", DiscountPercent: decimal.RequireFromString("120")},
			wantErr: true,
			check:   apperrors.IsValidationError,
		},
		{
			name:    "invalid scope",
			cmd:     CreatePaymentMethodCommand{Name: "Cash"},
			wantErr: true,
			check:   apperrors.IsValidationError,
		},
		{
			name:    "storage failure",
			cmd:     CreatePaymentMethodCommand{Scope: academy, Name: "Cash"},
			repoErr: errors.New("connection reset"),
			wantErr: true,
			check:   apperrors.IsStorageError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var saved *billing.PaymentMethod
			repo := &mockPaymentMethodRepository{
				CreateFunc: func(_ context.Context, method *billing.PaymentMethod) error {
					if tt.repoErr != nil {
						return tt.repoErr
					}
					method.SetID(11)
					saved = method
					return nil
				},
			}

			result, err := newTestCatalog(repo).Create(context.Background(), tt.cmd)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, tt.check(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(11), result.ID)
			assert.True(t, result.Active)
			assert.Equal(t, tt.tenantID, saved.TenantID())
			assert.NotContains(t, result.Name, " ")
		})
	}
}

func TestPaymentMethodCatalog_UpdateAndDeactivate(t *testing.T) {
	stored := newTestMethod(t, 3, academyID, "Card", "0", true)
	var updates int
	repo := &mockPaymentMethodRepository{
		GetByIDFunc: func(_ context.Context, tenantID, id uint) (*billing.PaymentMethod, error) {
			if tenantID == academyID && id == 3 {
				return stored, nil
			}
			return nil, nil
		},
		UpdateFunc: func(context.Context, *billing.PaymentMethod) error {
			updates++
			return nil
		},
	}
	catalog := newTestCatalog(repo)
	ctx := context.Background()

	updated, err := catalog.Update(ctx, UpdatePaymentMethodCommand{
		Scope: academy, MethodID: 3, Name: "Credit card", DiscountPercent: decimal.RequireFromString("2.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Credit card", updated.Name)
	assert.Equal(t, "2.50", updated.DiscountPercent)

	deactivated, err := catalog.SetActive(ctx, SetPaymentMethodActiveCommand{Scope: academy, MethodID: 3, Active: false})
	require.NoError(t, err)
	assert.False(t, deactivated.Active)
	assert.Equal(t, 2, updates)

	_, err = catalog.Update(ctx, UpdatePaymentMethodCommand{Scope: vo.AcademyScope(8), MethodID: 3, Name: "Card"})
	assert.True(t, apperrors.IsNotFoundError(err))

	_, err = catalog.Update(ctx, UpdatePaymentMethodCommand{Scope: academy, MethodID: 3, Name: ""})
	assert.True(t, apperrors.IsValidationError(err))
	assert.Equal(t, 2, updates)
}

func TestPaymentMethodCatalog_List(t *testing.T) {
	var gotActiveOnly bool
	repo := &mockPaymentMethodRepository{
		ListFunc: func(_ context.Context, tenantID uint, activeOnly bool) ([]*billing.PaymentMethod, error) {
			gotActiveOnly = activeOnly
			if tenantID != academyID {
				return nil, nil
			}
			return []*billing.PaymentMethod{
				newTestMethod(t, 1, academyID, "Cash", "0", true),
				newTestMethod(t, 2, academyID, "Pix", "5", true),
			}, nil
		},
	}
	catalog := newTestCatalog(repo)

	methods, err := catalog.List(context.Background(), academy, true)
	require.NoError(t, err)
	assert.True(t, gotActiveOnly)
	require.Len(t, methods, 2)
	assert.Equal(t, "5.00", methods[1].DiscountPercent)

	empty, err := catalog.List(context.Background(), vo.AcademyScope(9), false)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
