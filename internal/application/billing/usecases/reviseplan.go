package usecases

import (
	"context"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/db"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

type RevisePlanCommand struct {
	Scope  vo.Scope
	PlanID uint
	PlanInput
}

// RevisePlanUseCase publishes new terms as a new plan and retires the old
// one as historical. Existing subscriptions keep pointing at the old row.
type RevisePlanUseCase struct {
	plans  billing.PlanRepository
	txMgr  *db.TransactionManager
	clock  biztime.Clock
	logger logger.Interface
}

func NewRevisePlanUseCase(
	plans billing.PlanRepository,
	txMgr *db.TransactionManager,
	clock biztime.Clock,
	logger logger.Interface,
) *RevisePlanUseCase {
	return &RevisePlanUseCase{
		plans:  plans,
		txMgr:  txMgr,
		clock:  clock,
		logger: logger,
	}
}

func (uc *RevisePlanUseCase) Execute(ctx context.Context, cmd RevisePlanCommand) (*dto.PlanDTO, error) {
	if err := validateScope(cmd.Scope); err != nil {
		return nil, err
	}

	var revised *billing.Plan
	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		old, err := getPlan(txCtx, uc.plans, cmd.Scope, cmd.PlanID)
		if err != nil {
			return err
		}
		now := uc.clock.Now()
		if revised, err = old.Revise(cmd.Name, cmd.terms(), cmd.Category, now); err != nil {
			return withCurrent(toAppError(err), dto.ToPlanDTO(old))
		}
		if err := uc.plans.Create(txCtx, revised); err != nil {
			return err
		}
		old.MarkSuperseded(revised.ID(), now)
		return uc.plans.Update(txCtx, old)
	})
	if err != nil {
		err = toAppError(err)
		if apperrors.IsStorageError(err) {
			uc.logger.Errorw("failed to revise plan", "plan_id", cmd.PlanID, "error", cause(err))
		}
		return nil, err
	}

	uc.logger.Infow("plan revised", "scope", cmd.Scope.String(), "previous_plan_id", cmd.PlanID, "plan_id", revised.ID())
	return dto.ToPlanDTO(revised), nil
}
