package usecases

import (
	"context"
	"errors"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/db"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

type UpdatePlanCommand struct {
	Scope  vo.Scope
	PlanID uint
	PlanInput
}

// UpdatePlanUseCase edits a plan in place. Price, recurrence and quota are
// frozen while an open subscription references the plan.
type UpdatePlanUseCase struct {
	plans         billing.PlanRepository
	subscriptions billing.SubscriptionRepository
	txMgr         *db.TransactionManager
	clock         biztime.Clock
	logger        logger.Interface
}

func NewUpdatePlanUseCase(
	plans billing.PlanRepository,
	subscriptions billing.SubscriptionRepository,
	txMgr *db.TransactionManager,
	clock biztime.Clock,
	logger logger.Interface,
) *UpdatePlanUseCase {
	return &UpdatePlanUseCase{
		plans:         plans,
		subscriptions: subscriptions,
		txMgr:         txMgr,
		clock:         clock,
		logger:        logger,
	}
}

func (uc *UpdatePlanUseCase) Execute(ctx context.Context, cmd UpdatePlanCommand) (*dto.PlanDTO, error) {
	if err := validateScope(cmd.Scope); err != nil {
		return nil, err
	}

	var plan *billing.Plan
	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if plan, err = getPlan(txCtx, uc.plans, cmd.Scope, cmd.PlanID); err != nil {
			return err
		}
		inUse, err := uc.subscriptions.CountOpenByPlan(txCtx, plan.ID())
		if err != nil {
			return err
		}
		if err := plan.Update(cmd.Name, cmd.terms(), cmd.Category, inUse > 0, uc.clock.Now()); err != nil {
			if errors.Is(err, billing.ErrPlanImmutable) {
				return apperrors.NewStateError(err.Error(), "revise the plan to change its terms").WithCurrent(dto.ToPlanDTO(plan))
			}
			return err
		}
		return uc.plans.Update(txCtx, plan)
	})
	if err != nil {
		err = toAppError(err)
		if apperrors.IsStorageError(err) {
			uc.logger.Errorw("failed to update plan", "plan_id", cmd.PlanID, "error", cause(err))
		}
		return nil, err
	}

	uc.logger.Infow("plan updated", "scope", cmd.Scope.String(), "plan_id", plan.ID())
	return dto.ToPlanDTO(plan), nil
}

type SetPlanOfferedCommand struct {
	Scope   vo.Scope
	PlanID  uint
	Offered bool
}

// SetPlanOfferedUseCase toggles catalog visibility, the only change allowed
// on a plan regardless of its use.
type SetPlanOfferedUseCase struct {
	plans  billing.PlanRepository
	clock  biztime.Clock
	logger logger.Interface
}

func NewSetPlanOfferedUseCase(plans billing.PlanRepository, clock biztime.Clock, logger logger.Interface) *SetPlanOfferedUseCase {
	return &SetPlanOfferedUseCase{
		plans:  plans,
		clock:  clock,
		logger: logger,
	}
}

func (uc *SetPlanOfferedUseCase) Execute(ctx context.Context, cmd SetPlanOfferedCommand) (*dto.PlanDTO, error) {
	if err := validateScope(cmd.Scope); err != nil {
		return nil, err
	}
	plan, err := getPlan(ctx, uc.plans, cmd.Scope, cmd.PlanID)
	if err != nil {
		return nil, toAppError(err)
	}
	if err := plan.SetOffered(cmd.Offered, uc.clock.Now()); err != nil {
		return nil, withCurrent(toAppError(err), dto.ToPlanDTO(plan))
	}
	if err := uc.plans.Update(ctx, plan); err != nil {
		uc.logger.Errorw("failed to update plan", "plan_id", cmd.PlanID, "error", err)
		return nil, toAppError(err)
	}

	uc.logger.Infow("plan visibility changed", "plan_id", plan.ID(), "offered", cmd.Offered)
	return dto.ToPlanDTO(plan), nil
}

func getPlan(ctx context.Context, plans billing.PlanRepository, scope vo.Scope, id uint) (*billing.Plan, error) {
	plan, err := plans.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found")
	}
	return plan, nil
}
