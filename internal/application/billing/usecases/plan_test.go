package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/db"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

func TestCreatePlanValidation(t *testing.T) {
	f := setup(t)
	uc := NewCreatePlanUseCase(f.plans, f.clock, f.log)
	ctx := context.Background()

	tests := []struct {
		name    string
		cmd     CreatePlanCommand
		wantErr bool
	}{
		{"member one-off plan", CreatePlanCommand{Scope: academy, PlanInput: PlanInput{Name: "Drop-in", Price: decimal.RequireFromString("25")}}, false},
		{"member plan with quota", CreatePlanCommand{Scope: academy, PlanInput: PlanInput{Name: "8 classes", Price: decimal.RequireFromString("80"), RecurrenceDays: 30, Quota: ptr(8)}}, false},
		{"platform plan without recurrence", CreatePlanCommand{Scope: vo.PlatformScope(), PlanInput: PlanInput{Name: "Pro", Price: decimal.RequireFromString("300")}}, true},
		{"negative price", CreatePlanCommand{Scope: academy, PlanInput: PlanInput{Name: "Bad", Price: decimal.RequireFromString("-1"), RecurrenceDays: 30}}, true},
		{"blank name", CreatePlanCommand{Scope: academy, PlanInput: PlanInput{Name: "  ", Price: decimal.RequireFromString("10"), RecurrenceDays: 30}}, true},
		{"zero scope", CreatePlanCommand{PlanInput: PlanInput{Name: "Monthly", Price: decimal.RequireFromString("10"), RecurrenceDays: 30}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := uc.Execute(ctx, tt.cmd)
			if tt.wantErr {
				assert.True(t, apperrors.IsValidationError(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.True(t, plan.Offered)
			assert.False(t, plan.Historical)
		})
	}
}

func TestUpdatePlanFreezesTermsWhileInUse(t *testing.T) {
	f := setup(t)
	monthly := f.plan(t, academy, "Monthly", "100.00", 30)
	uc := NewUpdatePlanUseCase(f.plans, f.subscriptions, db.NewTransactionManager(f.db), f.clock, f.log)
	ctx := context.Background()

	renamed, err := uc.Execute(ctx, UpdatePlanCommand{Scope: academy, PlanID: monthly.ID, PlanInput: PlanInput{
		Name: "Monthly Unlimited", Price: decimal.RequireFromString("110.00"), RecurrenceDays: 30,
	}})
	require.NoError(t, err)
	assert.Equal(t, "110.00", renamed.Price)

	f.enroll(t, monthly.ID)

	_, err = uc.Execute(ctx, UpdatePlanCommand{Scope: academy, PlanID: monthly.ID, PlanInput: PlanInput{
		Name: "Monthly Unlimited", Price: decimal.RequireFromString("120.00"), RecurrenceDays: 30,
	}})
	require.Error(t, err)
	assert.True(t, apperrors.IsStateError(err))
	current, ok := apperrors.GetAppError(err).Current.(*dto.PlanDTO)
	require.True(t, ok)
	assert.Equal(t, "110.00", current.Price)

	// same terms: renaming and recategorizing stay allowed
	relabelled, err := uc.Execute(ctx, UpdatePlanCommand{Scope: academy, PlanID: monthly.ID, PlanInput: PlanInput{
		Name: "Monthly Open Box", Price: decimal.RequireFromString("110"), RecurrenceDays: 30, Category: "crossfit",
	}})
	require.NoError(t, err)
	assert.Equal(t, "Monthly Open Box", relabelled.Name)
	assert.Equal(t, "crossfit", relabelled.Category)

	_, err = uc.Execute(ctx, UpdatePlanCommand{Scope: vo.AcademyScope(8), PlanID: monthly.ID, PlanInput: PlanInput{Name: "x", Price: decimal.RequireFromString("1"), RecurrenceDays: 30}})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestRevisePlanRetiresPrevious(t *testing.T) {
	f := setup(t)
	monthly := f.plan(t, academy, "Monthly", "100.00", 30)
	sub := f.enroll(t, monthly.ID)
	txMgr := db.NewTransactionManager(f.db)
	ctx := context.Background()

	revised, err := NewRevisePlanUseCase(f.plans, txMgr, f.clock, f.log).Execute(ctx, RevisePlanCommand{
		Scope: academy, PlanID: monthly.ID,
		PlanInput: PlanInput{Price: decimal.RequireFromString("120.00"), RecurrenceDays: 30},
	})
	require.NoError(t, err)
	assert.NotEqual(t, monthly.ID, revised.ID)
	assert.Equal(t, "Monthly", revised.Name)
	assert.Equal(t, "120.00", revised.Price)
	assert.True(t, revised.Offered)

	old, err := NewGetPlanUseCase(f.plans, f.log).Execute(ctx, academy, monthly.ID)
	require.NoError(t, err)
	assert.True(t, old.Historical)
	assert.False(t, old.Offered)
	require.NotNil(t, old.SupersededBy)
	assert.Equal(t, revised.ID, *old.SupersededBy)

	// the running subscription keeps the old terms
	assert.Equal(t, monthly.ID, f.subscription(t, academy, sub.ID).PlanID())

	_, err = NewSetPlanOfferedUseCase(f.plans, f.clock, f.log).Execute(ctx, SetPlanOfferedCommand{
		Scope: academy, PlanID: monthly.ID, Offered: true,
	})
	assert.True(t, apperrors.IsStateError(err))

	_, err = NewRevisePlanUseCase(f.plans, txMgr, f.clock, f.log).Execute(ctx, RevisePlanCommand{
		Scope: academy, PlanID: monthly.ID,
		PlanInput: PlanInput{Price: decimal.RequireFromString("130.00"), RecurrenceDays: 30},
	})
	assert.True(t, apperrors.IsStateError(err))

	offered, err := NewListPlansUseCase(f.plans, f.log).Execute(ctx, ListPlansQuery{Scope: academy, OfferedOnly: true})
	require.NoError(t, err)
	require.Len(t, offered.Plans, 1)
	assert.Equal(t, revised.ID, offered.Plans[0].ID)

	all, err := NewListPlansUseCase(f.plans, f.log).Execute(ctx, ListPlansQuery{Scope: academy, IncludeHistorical: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	current, err := NewListPlansUseCase(f.plans, f.log).Execute(ctx, ListPlansQuery{Scope: academy})
	require.NoError(t, err)
	assert.Equal(t, int64(1), current.Total)
}

func TestWithdrawnPlanStaysRenewable(t *testing.T) {
	f := setup(t)
	monthly := f.plan(t, academy, "Monthly", "100.00", 30)
	f.enroll(t, monthly.ID)

	_, err := NewSetPlanOfferedUseCase(f.plans, f.clock, f.log).Execute(context.Background(), SetPlanOfferedCommand{
		Scope: academy, PlanID: monthly.ID, Offered: false,
	})
	require.NoError(t, err)

	f.at(2024, time.January, 31)
	renewed := f.enroll(t, monthly.ID)
	assert.Equal(t, "renewal", renewed.ChangeReason)
}

func TestGetPlanStorageFailure(t *testing.T) {
	repo := &mockPlanRepository{
		GetByIDFunc: func(context.Context, vo.Scope, uint) (*billing.Plan, error) {
			return nil, errors.New("database is locked")
		},
	}
	_, err := NewGetPlanUseCase(repo, logger.NewLogger()).Execute(context.Background(), academy, 1)
	assert.True(t, apperrors.IsStorageError(err))
}

func TestSetPlanOfferedUpdateFailure(t *testing.T) {
	now := biztime.Date(2024, time.January, 1)
	stored, err := billing.ReconstructPlan(5, academy, "Monthly", decimal.RequireFromString("100"), 30, nil, "", true, false, nil, now, now)
	require.NoError(t, err)
	repo := &mockPlanRepository{
		GetByIDFunc: func(context.Context, vo.Scope, uint) (*billing.Plan, error) { return stored, nil },
		UpdateFunc:  func(context.Context, *billing.Plan) error { return errors.New("disk full") },
	}
	_, err = NewSetPlanOfferedUseCase(repo, biztime.FixedClock{Date: now}, logger.NewLogger()).Execute(context.Background(), SetPlanOfferedCommand{
		Scope: academy, PlanID: 5, Offered: false,
	})
	assert.True(t, apperrors.IsStorageError(err))
}
