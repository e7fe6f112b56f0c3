package repository

import (
	"context"
	"errors"
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

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) billing.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// subscriberRow is the projection used by the sweep queries.
type subscriberRow struct {
	SubscriberKind string
	TenantID       uint
	SubscriberID   uint
}

func toSubscriberRefs(rows []subscriberRow) ([]billing.SubscriberRef, error) {
	refs := make([]billing.SubscriberRef, 0, len(rows))
	for _, row := range rows {
		scope, err := vo.NewScope(vo.SubscriberKind(row.SubscriberKind), row.TenantID)
		if err != nil {
			return nil, fmt.Errorf("subscriber %d: %w", row.SubscriberID, err)
		}
		refs = append(refs, billing.SubscriberRef{Scope: scope, SubscriberID: row.SubscriberID})
	}
	return refs, nil
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *billing.Subscription) error {
	model := mappers.SubscriptionToModel(sub)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription",
			"error", err,
			"scope", sub.Scope().String(),
			"subscriber_id", sub.SubscriberID(),
		)
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	sub.SetID(model.ID)

	r.logger.Infow("subscription created successfully",
		"subscription_id", model.ID,
		"subscriber_id", model.SubscriberID,
		"plan_id", model.PlanID,
	)
	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *billing.Subscription) error {
	model := mappers.SubscriptionToModel(sub)
	result := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"open_key":        model.OpenKey,
			"expiration_date": model.ExpirationDate,
			"status":          model.Status,
			"closed_by":       model.ClosedBy,
			"closed_on":       model.ClosedOn,
			"close_reason":    model.CloseReason,
			"notes":           model.Notes,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "subscription_id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}

	r.logger.Infow("subscription updated successfully", "subscription_id", model.ID, "status", model.Status)
	return nil
}

func (r *SubscriptionRepositoryImpl) first(query *gorm.DB, what string) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription", "lookup", what, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return mappers.SubscriptionToDomain(&model)
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, scope vo.Scope, id uint) (*billing.Subscription, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Scopes(db.InScope(scope.Kind.String(), scope.TenantID)).
		Where("id = ?", id)
	return r.first(query, "id")
}

func (r *SubscriptionRepositoryImpl) GetOpenBySubscriber(ctx context.Context, scope vo.Scope, subscriberID uint) (*billing.Subscription, error) {
	query := db.GetTxFromContext(ctx, r.db).Where("open_key = ?", scope.OpenKey(subscriberID))
	return r.first(query, "open")
}

func (r *SubscriptionRepositoryImpl) GetLatestBySubscriber(ctx context.Context, scope vo.Scope, subscriberID uint) (*billing.Subscription, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Scopes(db.InScope(scope.Kind.String(), scope.TenantID)).
		Where("subscriber_id = ?", subscriberID).
		Order("id DESC")
	return r.first(query, "latest")
}

func (r *SubscriptionRepositoryImpl) List(ctx context.Context, scope vo.Scope, filter billing.SubscriptionFilter) ([]*billing.Subscription, int64, error) {
	var subscriptionModels []*models.SubscriptionModel
	var total int64

	query := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Scopes(db.InScope(scope.Kind.String(), scope.TenantID))

	if filter.SubscriberID != nil {
		query = query.Where("subscriber_id = ?", *filter.SubscriberID)
	}
	if filter.PlanID != nil {
		query = query.Where("plan_id = ?", *filter.PlanID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}

	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count subscriptions", "error", err)
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	if err := query.Order("id DESC").Scopes(db.Paginate(filter.Page, filter.PageSize)).Find(&subscriptionModels).Error; err != nil {
		r.logger.Errorw("failed to list subscriptions", "error", err)
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	subs, err := mapper.MapSliceWithError(subscriptionModels, mappers.SubscriptionToDomain)
	if err != nil {
		r.logger.Errorw("failed to map subscription models to entities", "error", err)
		return nil, 0, fmt.Errorf("failed to map subscriptions: %w", err)
	}
	return subs, total, nil
}

// CountOpenByPlan counts non-terminal subscriptions referencing the plan.
func (r *SubscriptionRepositoryImpl) CountOpenByPlan(ctx context.Context, planID uint) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Where("plan_id = ? AND open_key IS NOT NULL", planID).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count open subscriptions by plan", "plan_id", planID, "error", err)
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return count, nil
}

func (r *SubscriptionRepositoryImpl) CountByStatus(ctx context.Context, scope vo.Scope) (map[vo.SubscriptionStatus]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Scopes(db.InScope(scope.Kind.String(), scope.TenantID)).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to count subscriptions by status", "scope", scope.String(), "error", err)
		return nil, fmt.Errorf("failed to count subscriptions by status: %w", err)
	}

	counts := make(map[vo.SubscriptionStatus]int64, len(rows))
	for _, row := range rows {
		counts[vo.SubscriptionStatus(row.Status)] = row.Total
	}
	return counts, nil
}

func (r *SubscriptionRepositoryImpl) ListOverdueSubscribers(ctx context.Context, scope *vo.Scope) ([]billing.SubscriberRef, error) {
	var rows []subscriberRow
	query := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Where("status = ?", vo.SubscriptionOverdue.String())
	if scope != nil {
		query = query.Scopes(db.InScope(scope.Kind.String(), scope.TenantID))
	}
	err := query.Distinct("subscriber_kind", "tenant_id", "subscriber_id").
		Order("subscriber_kind, tenant_id, subscriber_id").
		Scan(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to list overdue subscribers", "error", err)
		return nil, fmt.Errorf("failed to list overdue subscribers: %w", err)
	}
	return toSubscriberRefs(rows)
}
