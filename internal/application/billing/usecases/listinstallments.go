package usecases

import (
	"context"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

type ListInstallmentsQuery struct {
	Scope           vo.Scope
	SubscriptionID  *uint
	SubscriberID    *uint
	Status          string
	ReferencePeriod string
	Page            int
	PageSize        int
}

type ListInstallmentsResult struct {
	Installments []*dto.InstallmentDTO
	Total        int64
	Page         int
	PageSize     int
}

type ListInstallmentsUseCase struct {
	installments billing.InstallmentRepository
	logger       logger.Interface
}

func NewListInstallmentsUseCase(installments billing.InstallmentRepository, logger logger.Interface) *ListInstallmentsUseCase {
	return &ListInstallmentsUseCase{installments: installments, logger: logger}
}

func (uc *ListInstallmentsUseCase) Execute(ctx context.Context, query ListInstallmentsQuery) (*ListInstallmentsResult, error) {
	if err := validateScope(query.Scope); err != nil {
		return nil, err
	}
	filter := billing.InstallmentFilter{
		SubscriptionID:  query.SubscriptionID,
		SubscriberID:    query.SubscriberID,
		ReferencePeriod: query.ReferencePeriod,
		Page:            query.Page,
		PageSize:        query.PageSize,
	}
	if query.Status != "" {
		status := vo.InstallmentStatus(query.Status)
		if !vo.ValidInstallmentStatuses[status] {
			return nil, apperrors.NewValidationError("invalid installment status", query.Status)
		}
		filter.Status = &status
	}
	if query.ReferencePeriod != "" {
		if _, err := biztime.ParseYearMonth(query.ReferencePeriod); err != nil {
			return nil, apperrors.NewValidationError("invalid reference period", "expected YYYY-MM")
		}
	}
	normalizePage(&filter.Page, &filter.PageSize)

	items, total, err := uc.installments.List(ctx, query.Scope, filter)
	if err != nil {
		uc.logger.Errorw("failed to list installments", "scope", query.Scope.String(), "error", err)
		return nil, toAppError(err)
	}
	return &ListInstallmentsResult{
		Installments: dto.ToInstallmentDTOList(items),
		Total:        total,
		Page:         filter.Page,
		PageSize:     filter.PageSize,
	}, nil
}

type GetSummaryQuery struct {
	Scope      vo.Scope
	FromPeriod string
	ToPeriod   string
}

// GetSummaryUseCase aggregates installments by status and reference period
// and counts subscriptions by status.
type GetSummaryUseCase struct {
	installments  billing.InstallmentRepository
	subscriptions billing.SubscriptionRepository
	logger        logger.Interface
}

func NewGetSummaryUseCase(
	installments billing.InstallmentRepository,
	subscriptions billing.SubscriptionRepository,
	logger logger.Interface,
) *GetSummaryUseCase {
	return &GetSummaryUseCase{
		installments:  installments,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

func (uc *GetSummaryUseCase) Execute(ctx context.Context, query GetSummaryQuery) (*dto.SummaryDTO, error) {
	if err := validateScope(query.Scope); err != nil {
		return nil, err
	}
	for _, period := range []string{query.FromPeriod, query.ToPeriod} {
		if period == "" {
			continue
		}
		if _, err := biztime.ParseYearMonth(period); err != nil {
			return nil, apperrors.NewValidationError("invalid reference period", "expected YYYY-MM")
		}
	}

	summary, err := uc.installments.Summarize(ctx, query.Scope, billing.SummaryFilter{
		FromPeriod: query.FromPeriod,
		ToPeriod:   query.ToPeriod,
	})
	if err != nil {
		uc.logger.Errorw("failed to summarize installments", "scope", query.Scope.String(), "error", err)
		return nil, toAppError(err)
	}
	counts, err := uc.subscriptions.CountByStatus(ctx, query.Scope)
	if err != nil {
		uc.logger.Errorw("failed to count subscriptions", "scope", query.Scope.String(), "error", err)
		return nil, toAppError(err)
	}

	byStatus := make(map[string]int64, len(counts))
	for status, n := range counts {
		byStatus[status.String()] = n
	}
	return dto.ToSummaryDTO(summary, byStatus), nil
}
