package usecases

import (
	"context"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
)

type CancelInstallmentCommand struct {
	Scope         vo.Scope
	InstallmentID uint
	ActorID       uint
	Notes         *string
}

// CancelInstallmentUseCase voids an unpaid installment. Dropping the charge
// can clear the subscriber's overdue status.
type CancelInstallmentUseCase struct {
	ledger *Ledger
}

func NewCancelInstallmentUseCase(ledger *Ledger) *CancelInstallmentUseCase {
	return &CancelInstallmentUseCase{ledger: ledger}
}

func (uc *CancelInstallmentUseCase) Execute(ctx context.Context, cmd CancelInstallmentCommand) (*dto.InstallmentDTO, error) {
	if err := validateScope(cmd.Scope); err != nil {
		return nil, err
	}
	l := uc.ledger

	found, err := l.loadInstallment(ctx, cmd.Scope, cmd.InstallmentID)
	if err != nil {
		return nil, toAppError(err)
	}

	var inst *billing.Installment
	err = l.mutate(ctx, cmd.Scope, found.SubscriberID(), func(txCtx context.Context) error {
		loaded, err := l.loadInstallment(txCtx, cmd.Scope, cmd.InstallmentID)
		if err != nil {
			return err
		}
		inst = loaded
		if err := inst.Cancel(cmd.ActorID, cmd.Notes, l.clock.Now()); err != nil {
			return withCurrent(toAppError(err), dto.ToInstallmentDTO(loaded))
		}
		if err := l.installments.Update(txCtx, inst); err != nil {
			return err
		}
		if _, err := l.reevaluate(txCtx, cmd.Scope, inst.SubscriberID(), l.clock.Today()); err != nil {
			return err
		}
		return l.refreshSnapshot(txCtx, cmd.Scope, inst.SubscriberID())
	})
	if err != nil {
		return nil, err
	}

	l.logger.Infow("installment cancelled",
		"scope", cmd.Scope.String(),
		"installment_id", inst.ID(),
		"subscription_id", inst.SubscriptionID(),
		"actor_id", cmd.ActorID,
	)
	return dto.ToInstallmentDTO(inst), nil
}

type UpdateInstallmentNotesCommand struct {
	Scope         vo.Scope
	InstallmentID uint
	Notes         string
}

// UpdateInstallmentNotesUseCase edits notes, the one field still mutable
// once an installment is paid or cancelled.
type UpdateInstallmentNotesUseCase struct {
	ledger *Ledger
}

func NewUpdateInstallmentNotesUseCase(ledger *Ledger) *UpdateInstallmentNotesUseCase {
	return &UpdateInstallmentNotesUseCase{ledger: ledger}
}

func (uc *UpdateInstallmentNotesUseCase) Execute(ctx context.Context, cmd UpdateInstallmentNotesCommand) (*dto.InstallmentDTO, error) {
	if err := validateScope(cmd.Scope); err != nil {
		return nil, err
	}
	l := uc.ledger

	found, err := l.loadInstallment(ctx, cmd.Scope, cmd.InstallmentID)
	if err != nil {
		return nil, toAppError(err)
	}

	var inst *billing.Installment
	err = l.mutate(ctx, cmd.Scope, found.SubscriberID(), func(txCtx context.Context) error {
		loaded, err := l.loadInstallment(txCtx, cmd.Scope, cmd.InstallmentID)
		if err != nil {
			return err
		}
		loaded.UpdateNotes(cmd.Notes, l.clock.Now())
		inst = loaded
		return l.installments.Update(txCtx, loaded)
	})
	if err != nil {
		return nil, err
	}
	return dto.ToInstallmentDTO(inst), nil
}
