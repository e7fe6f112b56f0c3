package usecases

import (
	"context"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
)

type CancelSubscriptionCommand struct {
	Scope          vo.Scope
	SubscriptionID uint
	ActorID        uint
	Reason         string
}

// CancelSubscriptionUseCase cancels an open subscription. Settled and past
// installments are kept; awaiting ones due from today on are voided.
type CancelSubscriptionUseCase struct {
	ledger *Ledger
}

func NewCancelSubscriptionUseCase(ledger *Ledger) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{ledger: ledger}
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	if err := validateScope(cmd.Scope); err != nil {
		return nil, err
	}
	l := uc.ledger

	found, err := l.loadSubscription(ctx, cmd.Scope, cmd.SubscriptionID)
	if err != nil {
		return nil, toAppError(err)
	}

	var sub *billing.Subscription
	err = l.mutate(ctx, cmd.Scope, found.SubscriberID(), func(txCtx context.Context) error {
		loaded, err := l.loadSubscription(txCtx, cmd.Scope, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		sub = loaded
		if sub.IsTerminal() {
			return apperrors.NewStateError("subscription is already closed", sub.Status().String()).
				WithCurrent(dto.ToSubscriptionDTO(sub))
		}
		if err := l.cancelFrom(txCtx, sub, l.clock.Today(), cmd.ActorID, cmd.Reason); err != nil {
			return err
		}
		return l.refreshSnapshot(txCtx, cmd.Scope, sub.SubscriberID())
	})
	if err != nil {
		return nil, err
	}

	l.logger.Infow("subscription cancelled",
		"scope", cmd.Scope.String(),
		"subscription_id", sub.ID(),
		"subscriber_id", sub.SubscriberID(),
		"actor_id", cmd.ActorID,
	)
	return dto.ToSubscriptionDTO(sub), nil
}
