package usecases

import (
	"context"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/constants"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

type GetSubscriptionUseCase struct {
	subscriptions billing.SubscriptionRepository
	installments  billing.InstallmentRepository
	logger        logger.Interface
}

func NewGetSubscriptionUseCase(
	subscriptions billing.SubscriptionRepository,
	installments billing.InstallmentRepository,
	logger logger.Interface,
) *GetSubscriptionUseCase {
	return &GetSubscriptionUseCase{
		subscriptions: subscriptions,
		installments:  installments,
		logger:        logger,
	}
}

// Execute returns the subscription with all its installments.
func (uc *GetSubscriptionUseCase) Execute(ctx context.Context, scope vo.Scope, id uint) (*dto.SubscriptionDTO, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	sub, err := uc.subscriptions.GetByID(ctx, scope, id)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "subscription_id", id, "error", err)
		return nil, toAppError(err)
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("subscription not found")
	}
	items, err := uc.installments.ListBySubscription(ctx, sub.ID())
	if err != nil {
		uc.logger.Errorw("failed to list installments", "subscription_id", id, "error", err)
		return nil, toAppError(err)
	}

	result := dto.ToSubscriptionDTO(sub)
	result.Installments = dto.ToInstallmentDTOList(items)
	return result, nil
}

type ListSubscriptionsQuery struct {
	Scope        vo.Scope
	SubscriberID *uint
	PlanID       *uint
	Status       string
	Page         int
	PageSize     int
}

type ListSubscriptionsResult struct {
	Subscriptions []*dto.SubscriptionDTO
	Total         int64
	Page          int
	PageSize      int
}

type ListSubscriptionsUseCase struct {
	subscriptions billing.SubscriptionRepository
	logger        logger.Interface
}

func NewListSubscriptionsUseCase(subscriptions billing.SubscriptionRepository, logger logger.Interface) *ListSubscriptionsUseCase {
	return &ListSubscriptionsUseCase{subscriptions: subscriptions, logger: logger}
}

func (uc *ListSubscriptionsUseCase) Execute(ctx context.Context, query ListSubscriptionsQuery) (*ListSubscriptionsResult, error) {
	if err := validateScope(query.Scope); err != nil {
		return nil, err
	}
	filter := billing.SubscriptionFilter{
		SubscriberID: query.SubscriberID,
		PlanID:       query.PlanID,
		Page:         query.Page,
		PageSize:     query.PageSize,
	}
	if query.Status != "" {
		status := vo.SubscriptionStatus(query.Status)
		if !vo.ValidSubscriptionStatuses[status] {
			return nil, apperrors.NewValidationError("invalid subscription status", query.Status)
		}
		filter.Status = &status
	}
	normalizePage(&filter.Page, &filter.PageSize)

	subs, total, err := uc.subscriptions.List(ctx, query.Scope, filter)
	if err != nil {
		uc.logger.Errorw("failed to list subscriptions", "scope", query.Scope.String(), "error", err)
		return nil, toAppError(err)
	}
	return &ListSubscriptionsResult{
		Subscriptions: dto.ToSubscriptionDTOList(subs),
		Total:         total,
		Page:          filter.Page,
		PageSize:      filter.PageSize,
	}, nil
}

func normalizePage(page, pageSize *int) {
	if *page < 1 {
		*page = constants.DefaultPage
	}
	if *pageSize < 1 {
		*pageSize = constants.DefaultPageSize
	}
	if *pageSize > constants.MaxPageSize {
		*pageSize = constants.MaxPageSize
	}
}
