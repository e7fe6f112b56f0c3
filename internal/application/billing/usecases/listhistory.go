package usecases

import (
	"context"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

type ListHistoryUseCase struct {
	history billing.HistoryRepository
	logger  logger.Interface
}

func NewListHistoryUseCase(history billing.HistoryRepository, logger logger.Interface) *ListHistoryUseCase {
	return &ListHistoryUseCase{history: history, logger: logger}
}

// Execute lists a subscriber's history oldest first.
func (uc *ListHistoryUseCase) Execute(ctx context.Context, scope vo.Scope, subscriberID uint) ([]*dto.HistoryEntryDTO, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	entries, err := uc.history.ListBySubscriber(ctx, scope, subscriberID)
	if err != nil {
		uc.logger.Errorw("failed to list history", "scope", scope.String(), "subscriber_id", subscriberID, "error", err)
		return nil, toAppError(err)
	}
	result := dto.ToHistoryEntryDTOList(entries)
	if result == nil {
		result = []*dto.HistoryEntryDTO{}
	}
	return result, nil
}
