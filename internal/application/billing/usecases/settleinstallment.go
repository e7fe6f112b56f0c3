package usecases

import (
	"context"
	"time"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
)

type SettleInstallmentCommand struct {
	Scope         vo.Scope
	InstallmentID uint
	ActorID       uint
	// PaidDate defaults to today.
	PaidDate        *time.Time
	PaymentMethodID *uint
	Proof           string
	Notes           *string
}

// SettleInstallmentUseCase records a payment, schedules the next installment
// of recurring plans and re-evaluates the subscriber's delinquency.
type SettleInstallmentUseCase struct {
	ledger *Ledger
}

func NewSettleInstallmentUseCase(ledger *Ledger) *SettleInstallmentUseCase {
	return &SettleInstallmentUseCase{ledger: ledger}
}

func (uc *SettleInstallmentUseCase) Execute(ctx context.Context, cmd SettleInstallmentCommand) (*dto.SettlementDTO, error) {
	if err := validateScope(cmd.Scope); err != nil {
		return nil, err
	}
	l := uc.ledger

	found, err := l.loadInstallment(ctx, cmd.Scope, cmd.InstallmentID)
	if err != nil {
		return nil, toAppError(err)
	}

	var out *settlement
	err = l.mutate(ctx, cmd.Scope, found.SubscriberID(), func(txCtx context.Context) error {
		inst, err := l.loadInstallment(txCtx, cmd.Scope, cmd.InstallmentID)
		if err != nil {
			return err
		}
		if inst.Status().IsClosed() {
			return apperrors.NewConflictError("installment is already " + inst.Status().String()).
				WithCurrent(dto.ToInstallmentDTO(inst))
		}
		method, err := l.loadMethod(txCtx, cmd.Scope, cmd.PaymentMethodID)
		if err != nil {
			return err
		}

		today := l.clock.Today()
		paidDate := today
		if cmd.PaidDate != nil {
			paidDate = *cmd.PaidDate
		}
		out, err = l.settle(txCtx, inst, billing.Settlement{
			ActorID:       cmd.ActorID,
			PaidDate:      paidDate,
			PaymentMethod: method,
			Proof:         cmd.Proof,
			Notes:         cmd.Notes,
		})
		if err != nil {
			return err
		}

		eval, err := l.reevaluate(txCtx, cmd.Scope, inst.SubscriberID(), today)
		if err != nil {
			return err
		}
		if eval.subscription != nil && eval.subscription.ID() == out.subscription.ID() {
			out.subscription = eval.subscription
		}
		return l.refreshSnapshot(txCtx, cmd.Scope, inst.SubscriberID())
	})
	if err != nil {
		if apperrors.IsConflictError(err) && apperrors.GetAppError(err).Current == nil {
			return nil, withCurrent(err, l.currentInstallment(ctx, cmd.Scope, cmd.InstallmentID))
		}
		return nil, err
	}

	l.logger.Infow("installment settled",
		"scope", cmd.Scope.String(),
		"installment_id", out.installment.ID(),
		"subscription_id", out.installment.SubscriptionID(),
		"net_amount", out.installment.NetAmount().StringFixed(2),
		"successor_created", out.successor != nil,
		"actor_id", cmd.ActorID,
	)

	return &dto.SettlementDTO{
		Installment:        dto.ToInstallmentDTO(out.installment),
		Successor:          dto.ToInstallmentDTO(out.successor),
		SubscriptionStatus: out.subscription.Status().String(),
	}, nil
}
