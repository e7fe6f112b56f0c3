package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/models"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
)

type failingNotifier struct {
	calls int
}

func (n *failingNotifier) NotifyDelinquency(context.Context, billing.DelinquencyNotice) error {
	n.calls++
	return errors.New("smtp unavailable")
}

func TestSweepCascadeAcrossScopes(t *testing.T) {
	f := setup(t)
	platform := vo.PlatformScope()
	pro := f.plan(t, platform, "Pro", "300.00", 30)
	monthly := f.plan(t, academy, "Monthly", "100.00", 30)
	ctx := context.Background()

	contract, err := NewCreateSubscriptionUseCase(f.ledger).Execute(ctx, CreateSubscriptionCommand{
		Scope: platform, SubscriberID: academyID, PlanID: pro.ID, ActorID: actorID,
	})
	require.NoError(t, err)
	enrollment := f.enroll(t, monthly.ID)

	// Today replays an earlier business date
	f.at(2024, time.January, 10)
	result, err := NewSweepDelinquencyUseCase(f.ledger, f.notifier).Execute(ctx, SweepCommand{
		Today: ptr(biztime.Date(2024, time.January, 3)),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03", result.Date)
	assert.Equal(t, int64(2), result.MarkedOverdue)
	assert.Equal(t, 2, result.Evaluated)
	assert.Equal(t, 2, result.Overdue)
	assert.Equal(t, 2, result.Notified)

	assert.Equal(t, vo.SubscriptionOverdue, f.subscription(t, platform, contract.ID).Status())
	assert.Equal(t, vo.SubscriptionOverdue, f.subscription(t, academy, enrollment.ID).Status())

	var box models.AcademyModel
	require.NoError(t, f.db.First(&box, academyID).Error)
	assert.Equal(t, "overdue", box.BillingStatus)
	emails := map[bool]string{}
	for _, notice := range f.notifier.notices {
		emails[notice.Scope.IsPlatform()] = notice.Contact.Email
	}
	assert.Equal(t, "box@example.com", emails[true])
	assert.Equal(t, "maria@example.com", emails[false])
}

func TestSweepLimitedToOneScope(t *testing.T) {
	f := setup(t)
	platform := vo.PlatformScope()
	pro := f.plan(t, platform, "Pro", "300.00", 30)
	monthly := f.plan(t, academy, "Monthly", "100.00", 30)

	contract, err := NewCreateSubscriptionUseCase(f.ledger).Execute(context.Background(), CreateSubscriptionCommand{
		Scope: platform, SubscriberID: academyID, PlanID: pro.ID, ActorID: actorID,
	})
	require.NoError(t, err)
	f.enroll(t, monthly.ID)

	f.at(2024, time.January, 10)
	result := f.sweep(t, &academy)
	assert.Equal(t, int64(1), result.MarkedOverdue)
	assert.Equal(t, 1, result.Blocked)

	assert.Equal(t, vo.SubscriptionPending, f.subscription(t, platform, contract.ID).Status())
	assert.Equal(t, vo.InstallmentAwaiting, f.installment(t, platform, contract.FirstInstallment.ID).Status())
}

func TestSweepBelowThresholdChangesNothing(t *testing.T) {
	f := setup(t)
	monthly := f.plan(t, academy, "Monthly", "100.00", 30)
	sub := f.enroll(t, monthly.ID)

	result := f.sweep(t, nil)
	assert.Zero(t, result.Affected())
	assert.Zero(t, result.Evaluated)
	assert.Equal(t, vo.SubscriptionActive, f.subscription(t, academy, sub.ID).Status())
	assert.Empty(t, f.notifier.notices)
}

func TestSweepEscalatesOverdueToBlocked(t *testing.T) {
	f := setup(t)
	monthly := f.plan(t, academy, "Monthly", "100.00", 30)
	sub := f.enroll(t, monthly.ID)

	f.at(2024, time.January, 2)
	first := f.sweep(t, &academy)
	assert.Equal(t, 1, first.Overdue)

	f.at(2024, time.January, 4)
	second := f.sweep(t, &academy)
	assert.Zero(t, second.Affected())
	assert.Equal(t, 1, second.Evaluated)

	f.at(2024, time.January, 6)
	third := f.sweep(t, &academy)
	assert.Equal(t, 1, third.Blocked)
	assert.Zero(t, third.MarkedOverdue)

	blocked := f.subscription(t, academy, sub.ID)
	assert.Equal(t, vo.SubscriptionCancelled, blocked.Status())
	assert.Nil(t, blocked.ClosedBy())
	assert.Equal(t, "2024-01-06", biztime.FormatDate(*blocked.ClosedOn()))
	assert.Len(t, f.notifier.notices, 2)
}

func TestSweepNotificationFailureIsNotFatal(t *testing.T) {
	f := setup(t)
	monthly := f.plan(t, academy, "Monthly", "100.00", 30)
	sub := f.enroll(t, monthly.ID)
	notifier := &failingNotifier{}

	f.at(2024, time.January, 6)
	result, err := NewSweepDelinquencyUseCase(f.ledger, notifier).Execute(context.Background(), SweepCommand{Scope: &academy})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Blocked)
	assert.Zero(t, result.Notified)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, vo.SubscriptionCancelled, f.subscription(t, academy, sub.ID).Status())
}

func TestSweepWithoutNotifier(t *testing.T) {
	f := setup(t)
	monthly := f.plan(t, academy, "Monthly", "100.00", 30)
	f.enroll(t, monthly.ID)

	f.at(2024, time.January, 6)
	result, err := NewSweepDelinquencyUseCase(f.ledger, nil).Execute(context.Background(), SweepCommand{Scope: &academy})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Blocked)
	assert.Zero(t, result.Notified)
}

func TestSweepRejectsInvalidScope(t *testing.T) {
	f := setup(t)
	_, err := NewSweepDelinquencyUseCase(f.ledger, f.notifier).Execute(context.Background(), SweepCommand{Scope: &vo.Scope{}})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestSweepHonorsCustomPolicy(t *testing.T) {
	f := setup(t)
	strict := NewLedger(f.plans, f.methods, f.subscriptions, f.installments, f.history,
		f.ledger.directory, f.ledger.locker, f.ledger.txMgr, f.clock,
		billing.DelinquencyPolicy{OverdueAfterDays: 3, GraceDays: 10}, f.log)
	monthly := f.plan(t, academy, "Monthly", "100.00", 30)
	sub := f.enroll(t, monthly.ID)
	uc := NewSweepDelinquencyUseCase(strict, f.notifier)

	f.at(2024, time.January, 3)
	result, err := uc.Execute(context.Background(), SweepCommand{Scope: &academy})
	require.NoError(t, err)
	assert.Zero(t, result.MarkedOverdue)
	assert.Equal(t, vo.SubscriptionActive, f.subscription(t, academy, sub.ID).Status())

	f.at(2024, time.January, 4)
	result, err = uc.Execute(context.Background(), SweepCommand{Scope: &academy})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.MarkedOverdue)
	assert.Equal(t, 1, result.Overdue)
}

func TestSweepRejectsFutureDate(t *testing.T) {
	f := setup(t)
	monthly := f.plan(t, academy, "Monthly", "100.00", 30)
	sub := f.enroll(t, monthly.ID)

	f.at(2024, time.January, 2)
	paid := f.settle(t, academy, sub.FirstInstallment.ID, nil)
	require.NotNil(t, paid.Successor)

	f.at(2024, time.January, 10)
	_, err := NewSweepDelinquencyUseCase(f.ledger, f.notifier).Execute(context.Background(), SweepCommand{
		Scope: &academy,
		Today: ptr(biztime.Date(2030, time.January, 1)),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	assert.Equal(t, vo.InstallmentAwaiting, f.installment(t, academy, paid.Successor.ID).Status())
	assert.Equal(t, vo.SubscriptionActive, f.subscription(t, academy, sub.ID).Status())
	assert.Empty(t, f.notifier.notices)

	// the current business date is accepted
	result, err := NewSweepDelinquencyUseCase(f.ledger, f.notifier).Execute(context.Background(), SweepCommand{
		Scope: &academy,
		Today: ptr(biztime.Date(2024, time.January, 10)),
	})
	require.NoError(t, err)
	assert.Zero(t, result.MarkedOverdue)
}
