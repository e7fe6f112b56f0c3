package usecases

import (
	"context"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
)

type SwitchPlanCommand struct {
	Scope        vo.Scope
	SubscriberID uint
	PlanID       uint
	// PaymentMethodID settles the new first installment right away when set.
	PaymentMethodID *uint
	Notes           string
	ActorID         uint
}

// SwitchPlanUseCase is the administrator-forced plan change: the current
// subscription is cancelled without the mid-cycle guard and a new one opened today.
type SwitchPlanUseCase struct {
	ledger *Ledger
}

func NewSwitchPlanUseCase(ledger *Ledger) *SwitchPlanUseCase {
	return &SwitchPlanUseCase{ledger: ledger}
}

func (uc *SwitchPlanUseCase) Execute(ctx context.Context, cmd SwitchPlanCommand) (*dto.SubscriptionDTO, error) {
	if err := validateScope(cmd.Scope); err != nil {
		return nil, err
	}
	if cmd.SubscriberID == 0 || cmd.PlanID == 0 {
		return nil, apperrors.NewValidationError("subscriber ID and plan ID are required")
	}
	l := uc.ledger

	var (
		sub   *billing.Subscription
		first *billing.Installment
	)
	err := l.mutate(ctx, cmd.Scope, cmd.SubscriberID, func(txCtx context.Context) error {
		if err := l.ensureSubscriber(txCtx, cmd.Scope, cmd.SubscriberID); err != nil {
			return err
		}
		plan, err := l.loadPlan(txCtx, cmd.Scope, cmd.PlanID)
		if err != nil {
			return err
		}
		method, err := l.loadMethod(txCtx, cmd.Scope, cmd.PaymentMethodID)
		if err != nil {
			return err
		}

		today := l.clock.Today()
		current, err := l.subscriptions.GetOpenBySubscriber(txCtx, cmd.Scope, cmd.SubscriberID)
		if err != nil {
			return err
		}
		if current != nil {
			if err := l.cancelFrom(txCtx, current, today, cmd.ActorID, "plan switched"); err != nil {
				return err
			}
		}

		sub, first, err = l.open(txCtx, openRequest{
			scope:        cmd.Scope,
			subscriberID: cmd.SubscriberID,
			plan:         plan,
			start:        today,
			amount:       plan.Price(),
			notes:        cmd.Notes,
			actorID:      cmd.ActorID,
		})
		if err != nil {
			return err
		}

		if method != nil {
			if _, err := l.settle(txCtx, first, billing.Settlement{
				ActorID:       cmd.ActorID,
				PaidDate:      today,
				PaymentMethod: method,
			}); err != nil {
				return err
			}
			if _, err := l.reevaluate(txCtx, cmd.Scope, cmd.SubscriberID, today); err != nil {
				return err
			}
			if sub, err = l.loadSubscription(txCtx, cmd.Scope, sub.ID()); err != nil {
				return err
			}
		}
		return l.refreshSnapshot(txCtx, cmd.Scope, cmd.SubscriberID)
	})
	if err != nil {
		if apperrors.IsConflictError(err) {
			return nil, withCurrent(err, l.currentOpen(ctx, cmd.Scope, cmd.SubscriberID))
		}
		return nil, err
	}

	l.logger.Infow("subscription plan switched",
		"scope", cmd.Scope.String(),
		"subscriber_id", cmd.SubscriberID,
		"subscription_id", sub.ID(),
		"plan_id", sub.PlanID(),
		"settled", cmd.PaymentMethodID != nil,
		"actor_id", cmd.ActorID,
	)

	result := dto.ToSubscriptionDTO(sub)
	result.FirstInstallment = dto.ToInstallmentDTO(first)
	return result, nil
}
