package usecases

import (
	"context"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
)

type RenewSubscriptionCommand struct {
	Scope          vo.Scope
	SubscriptionID uint
	Notes          string
	ActorID        uint
}

// RenewSubscriptionUseCase rolls a platform contract into its next period.
// The period starts at the current expiration date and lasts one calendar month.
type RenewSubscriptionUseCase struct {
	ledger *Ledger
}

func NewRenewSubscriptionUseCase(ledger *Ledger) *RenewSubscriptionUseCase {
	return &RenewSubscriptionUseCase{ledger: ledger}
}

func (uc *RenewSubscriptionUseCase) Execute(ctx context.Context, cmd RenewSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	if err := validateScope(cmd.Scope); err != nil {
		return nil, err
	}
	if !cmd.Scope.IsPlatform() {
		return nil, apperrors.NewValidationError("only platform contracts can be renewed")
	}
	l := uc.ledger

	found, err := l.loadSubscription(ctx, cmd.Scope, cmd.SubscriptionID)
	if err != nil {
		return nil, toAppError(err)
	}

	var (
		renewal *billing.Subscription
		first   *billing.Installment
	)
	err = l.mutate(ctx, cmd.Scope, found.SubscriberID(), func(txCtx context.Context) error {
		old, err := l.loadSubscription(txCtx, cmd.Scope, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		if old.IsTerminal() {
			return apperrors.NewStateError("subscription is already closed", old.Status().String()).
				WithCurrent(dto.ToSubscriptionDTO(old))
		}
		plan, err := l.loadPlan(txCtx, cmd.Scope, old.PlanID())
		if err != nil {
			return err
		}

		start := old.ExpirationDate()
		expiration := biztime.AddMonths(start, 1)
		if err := l.cancelFrom(txCtx, old, start, cmd.ActorID, "renewed"); err != nil {
			return err
		}

		renewal, first, err = l.open(txCtx, openRequest{
			scope:        cmd.Scope,
			subscriberID: old.SubscriberID(),
			plan:         plan,
			start:        start,
			expiration:   &expiration,
			amount:       plan.Price(),
			notes:        cmd.Notes,
			actorID:      cmd.ActorID,
		})
		if err != nil {
			return err
		}
		return l.refreshSnapshot(txCtx, cmd.Scope, old.SubscriberID())
	})
	if err != nil {
		return nil, err
	}

	l.logger.Infow("contract renewed",
		"subscriber_id", renewal.SubscriberID(),
		"previous_subscription_id", cmd.SubscriptionID,
		"subscription_id", renewal.ID(),
		"start_date", renewal.StartDate(),
		"expiration_date", renewal.ExpirationDate(),
	)

	result := dto.ToSubscriptionDTO(renewal)
	result.FirstInstallment = dto.ToInstallmentDTO(first)
	return result, nil
}
