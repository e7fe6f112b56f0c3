package usecases

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

// PlanInput carries the editable fields of a plan.
type PlanInput struct {
	Name           string
	Price          decimal.Decimal
	RecurrenceDays int
	Quota          *int
	Category       string
}

func (in PlanInput) terms() billing.PlanTerms {
	return billing.PlanTerms{
		Price:          in.Price,
		RecurrenceDays: in.RecurrenceDays,
		Quota:          in.Quota,
	}
}

type CreatePlanCommand struct {
	Scope vo.Scope
	PlanInput
}

type CreatePlanUseCase struct {
	plans  billing.PlanRepository
	clock  biztime.Clock
	logger logger.Interface
}

func NewCreatePlanUseCase(plans billing.PlanRepository, clock biztime.Clock, logger logger.Interface) *CreatePlanUseCase {
	return &CreatePlanUseCase{
		plans:  plans,
		clock:  clock,
		logger: logger,
	}
}

func (uc *CreatePlanUseCase) Execute(ctx context.Context, cmd CreatePlanCommand) (*dto.PlanDTO, error) {
	if err := validateScope(cmd.Scope); err != nil {
		return nil, err
	}
	plan, err := billing.NewPlan(cmd.Scope, cmd.Name, cmd.terms(), cmd.Category, uc.clock.Now())
	if err != nil {
		return nil, toAppError(err)
	}
	if err := uc.plans.Create(ctx, plan); err != nil {
		uc.logger.Errorw("failed to create plan", "scope", cmd.Scope.String(), "name", cmd.Name, "error", err)
		return nil, toAppError(err)
	}

	uc.logger.Infow("plan created", "scope", cmd.Scope.String(), "plan_id", plan.ID(), "price", plan.Price().StringFixed(2))
	return dto.ToPlanDTO(plan), nil
}
