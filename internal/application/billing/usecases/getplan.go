package usecases

import (
	"context"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

type GetPlanUseCase struct {
	plans  billing.PlanRepository
	logger logger.Interface
}

func NewGetPlanUseCase(plans billing.PlanRepository, logger logger.Interface) *GetPlanUseCase {
	return &GetPlanUseCase{plans: plans, logger: logger}
}

func (uc *GetPlanUseCase) Execute(ctx context.Context, scope vo.Scope, id uint) (*dto.PlanDTO, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	plan, err := getPlan(ctx, uc.plans, scope, id)
	if err != nil {
		return nil, toAppError(err)
	}
	return dto.ToPlanDTO(plan), nil
}

type ListPlansQuery struct {
	Scope vo.Scope
	// OfferedOnly returns the catalog shown to new subscribers, unpaginated.
	OfferedOnly       bool
	IncludeHistorical bool
	Page              int
	PageSize          int
}

type ListPlansResult struct {
	Plans    []*dto.PlanDTO
	Total    int64
	Page     int
	PageSize int
}

type ListPlansUseCase struct {
	plans  billing.PlanRepository
	logger logger.Interface
}

func NewListPlansUseCase(plans billing.PlanRepository, logger logger.Interface) *ListPlansUseCase {
	return &ListPlansUseCase{plans: plans, logger: logger}
}

func (uc *ListPlansUseCase) Execute(ctx context.Context, query ListPlansQuery) (*ListPlansResult, error) {
	if err := validateScope(query.Scope); err != nil {
		return nil, err
	}

	if query.OfferedOnly {
		plans, err := uc.plans.ListOffered(ctx, query.Scope)
		if err != nil {
			uc.logger.Errorw("failed to list offered plans", "scope", query.Scope.String(), "error", err)
			return nil, toAppError(err)
		}
		return &ListPlansResult{
			Plans:    dto.ToPlanDTOList(plans),
			Total:    int64(len(plans)),
			Page:     1,
			PageSize: len(plans),
		}, nil
	}

	filter := billing.PlanFilter{
		IncludeHistorical: query.IncludeHistorical,
		Page:              query.Page,
		PageSize:          query.PageSize,
	}
	normalizePage(&filter.Page, &filter.PageSize)
	plans, total, err := uc.plans.List(ctx, query.Scope, filter)
	if err != nil {
		uc.logger.Errorw("failed to list plans", "scope", query.Scope.String(), "error", err)
		return nil, toAppError(err)
	}
	return &ListPlansResult{
		Plans:    dto.ToPlanDTOList(plans),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}
