package usecases

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
)

type CreateSubscriptionCommand struct {
	Scope        vo.Scope
	SubscriberID uint
	PlanID       uint
	// StartDate defaults to today.
	StartDate *time.Time
	// AmountOverride replaces the plan price on the first installment.
	AmountOverride *decimal.Decimal
	Notes          string
	ActorID        uint
}

func (c CreateSubscriptionCommand) validate() error {
	if err := validateScope(c.Scope); err != nil {
		return err
	}
	if c.SubscriberID == 0 {
		return apperrors.NewValidationError("subscriber ID is required")
	}
	if c.PlanID == 0 {
		return apperrors.NewValidationError("plan ID is required")
	}
	if c.AmountOverride != nil {
		if err := vo.ValidateAmount(*c.AmountOverride); err != nil {
			return apperrors.NewValidationError("invalid amount", err.Error())
		}
	}
	return nil
}

// CreateSubscriptionUseCase enrolls a member or contracts an academy.
type CreateSubscriptionUseCase struct {
	ledger *Ledger
}

func NewCreateSubscriptionUseCase(ledger *Ledger) *CreateSubscriptionUseCase {
	return &CreateSubscriptionUseCase{ledger: ledger}
}

func (uc *CreateSubscriptionUseCase) Execute(ctx context.Context, cmd CreateSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
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

		req := openRequest{
			scope:         cmd.Scope,
			subscriberID:  cmd.SubscriberID,
			plan:          plan,
			start:         l.clock.Today(),
			amount:        plan.Price(),
			notes:         cmd.Notes,
			actorID:       cmd.ActorID,
			guardMidCycle: true,
		}
		if cmd.StartDate != nil {
			req.start = *cmd.StartDate
		}
		if cmd.AmountOverride != nil {
			req.amount = *cmd.AmountOverride
		}

		if sub, first, err = l.open(txCtx, req); err != nil {
			return err
		}
		return l.refreshSnapshot(txCtx, cmd.Scope, cmd.SubscriberID)
	})
	if err != nil {
		if apperrors.IsConflictError(err) {
			return nil, withCurrent(err, l.currentOpen(ctx, cmd.Scope, cmd.SubscriberID))
		}
		return nil, err
	}

	l.logger.Infow("subscription created",
		"scope", cmd.Scope.String(),
		"subscriber_id", cmd.SubscriberID,
		"subscription_id", sub.ID(),
		"plan_id", sub.PlanID(),
		"reason", sub.ChangeReason(),
		"actor_id", cmd.ActorID,
	)

	result := dto.ToSubscriptionDTO(sub)
	result.FirstInstallment = dto.ToInstallmentDTO(first)
	return result, nil
}
