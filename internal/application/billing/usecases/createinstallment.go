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

type CreateInstallmentCommand struct {
	Scope          vo.Scope
	SubscriptionID uint
	DueDate        time.Time
	// Amount defaults to the plan price.
	Amount  *decimal.Decimal
	ActorID uint
}

// CreateInstallmentUseCase adds a manual charge to an open subscription.
type CreateInstallmentUseCase struct {
	ledger *Ledger
}

func NewCreateInstallmentUseCase(ledger *Ledger) *CreateInstallmentUseCase {
	return &CreateInstallmentUseCase{ledger: ledger}
}

func (uc *CreateInstallmentUseCase) Execute(ctx context.Context, cmd CreateInstallmentCommand) (*dto.InstallmentDTO, error) {
	if err := validateScope(cmd.Scope); err != nil {
		return nil, err
	}
	if cmd.DueDate.IsZero() {
		return nil, apperrors.NewValidationError("due date is required")
	}
	l := uc.ledger

	found, err := l.loadSubscription(ctx, cmd.Scope, cmd.SubscriptionID)
	if err != nil {
		return nil, toAppError(err)
	}

	var inst *billing.Installment
	err = l.mutate(ctx, cmd.Scope, found.SubscriberID(), func(txCtx context.Context) error {
		sub, err := l.loadSubscription(txCtx, cmd.Scope, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		if sub.IsTerminal() {
			return apperrors.NewStateError("subscription is closed", sub.Status().String()).
				WithCurrent(dto.ToSubscriptionDTO(sub))
		}

		var amount decimal.Decimal
		if cmd.Amount != nil {
			amount = *cmd.Amount
		} else {
			plan, err := l.loadPlan(txCtx, cmd.Scope, sub.PlanID())
			if err != nil {
				return err
			}
			amount = plan.Price()
		}

		created, err := billing.NewInstallment(cmd.Scope, sub.ID(), sub.SubscriberID(), cmd.DueDate, amount, l.clock.Now())
		if err != nil {
			return err
		}
		if err := l.installments.Create(txCtx, created); err != nil {
			return err
		}
		inst = created

		if _, err := l.reevaluate(txCtx, cmd.Scope, sub.SubscriberID(), l.clock.Today()); err != nil {
			return err
		}
		return l.refreshSnapshot(txCtx, cmd.Scope, sub.SubscriberID())
	})
	if err != nil {
		if apperrors.IsConflictError(err) {
			existing, lookupErr := l.installments.GetBySubscriptionAndDueDate(ctx, cmd.SubscriptionID, cmd.DueDate)
			if lookupErr == nil {
				return nil, withCurrent(err, dto.ToInstallmentDTO(existing))
			}
		}
		return nil, err
	}

	l.logger.Infow("installment created",
		"scope", cmd.Scope.String(),
		"installment_id", inst.ID(),
		"subscription_id", inst.SubscriptionID(),
		"due_date", inst.DueDate(),
		"amount", inst.Amount().StringFixed(2),
	)
	return dto.ToInstallmentDTO(inst), nil
}
