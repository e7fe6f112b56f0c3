package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/mappers"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/models"
	"github.com/boxdesk/boxdesk/internal/shared/db"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
	"github.com/boxdesk/boxdesk/internal/shared/mapper"
)

// HistoryRepositoryImpl is append-only.
type HistoryRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewHistoryRepository(db *gorm.DB, logger logger.Interface) billing.HistoryRepository {
	return &HistoryRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *HistoryRepositoryImpl) Append(ctx context.Context, entry *billing.HistoryEntry) error {
	model := mappers.HistoryToModel(entry)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to append subscription history",
			"error", err,
			"subscription_id", entry.SubscriptionID(),
		)
		return fmt.Errorf("failed to append subscription history: %w", err)
	}
	entry.SetID(model.ID)
	return nil
}

func (r *HistoryRepositoryImpl) ListBySubscriber(ctx context.Context, scope vo.Scope, subscriberID uint) ([]*billing.HistoryEntry, error) {
	var historyModels []*models.SubscriptionHistoryModel
	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.InScope(scope.Kind.String(), scope.TenantID)).
		Where("subscriber_id = ?", subscriberID).
		Order("recorded_at ASC, id ASC").
		Find(&historyModels).Error
	if err != nil {
		r.logger.Errorw("failed to list subscription history", "subscriber_id", subscriberID, "error", err)
		return nil, fmt.Errorf("failed to list subscription history: %w", err)
	}
	return mapper.MapSliceWithError(historyModels, mappers.HistoryToDomain)
}
