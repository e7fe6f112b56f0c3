package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/mappers"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/models"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/db"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
	"github.com/boxdesk/boxdesk/internal/shared/mapper"
)

var unpaidInstallmentStatuses = []string{
	vo.InstallmentAwaiting.String(),
	vo.InstallmentOverdue.String(),
}

type InstallmentRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewInstallmentRepository(db *gorm.DB, logger logger.Interface) billing.InstallmentRepository {
	return &InstallmentRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func civil(t time.Time) datatypes.Date {
	return datatypes.Date(biztime.DateOf(t))
}

func (r *InstallmentRepositoryImpl) Create(ctx context.Context, inst *billing.Installment) error {
	model := mappers.InstallmentToModel(inst)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create installment",
			"error", err,
			"subscription_id", inst.SubscriptionID(),
			"due_date", biztime.FormatDate(inst.DueDate()),
		)
		return fmt.Errorf("failed to create installment: %w", err)
	}
	inst.SetID(model.ID)

	r.logger.Infow("installment created successfully",
		"installment_id", model.ID,
		"subscription_id", model.SubscriptionID,
		"due_date", biztime.FormatDate(inst.DueDate()),
	)
	return nil
}

func (r *InstallmentRepositoryImpl) Update(ctx context.Context, inst *billing.Installment) error {
	model := mappers.InstallmentToModel(inst)
	err := db.GetTxFromContext(ctx, r.db).Model(&models.InstallmentModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"net_amount":        model.NetAmount,
			"discount_amount":   model.DiscountAmount,
			"paid_date":         model.PaidDate,
			"payment_method_id": model.PaymentMethodID,
			"proof":             model.Proof,
			"notes":             model.Notes,
			"settled_by":        model.SettledBy,
			"successor_id":      model.SuccessorID,
			"updated_at":        model.UpdatedAt,
		}).Error
	if err != nil {
		r.logger.Errorw("failed to update installment", "installment_id", model.ID, "error", err)
		return fmt.Errorf("failed to update installment: %w", err)
	}

	r.logger.Infow("installment updated successfully", "installment_id", model.ID, "status", model.Status)
	return nil
}

func (r *InstallmentRepositoryImpl) first(query *gorm.DB) (*billing.Installment, error) {
	var model models.InstallmentModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get installment", "error", err)
		return nil, fmt.Errorf("failed to get installment: %w", err)
	}
	return mappers.InstallmentToDomain(&model)
}

func (r *InstallmentRepositoryImpl) find(query *gorm.DB, what string) ([]*billing.Installment, error) {
	var installmentModels []*models.InstallmentModel
	if err := query.Find(&installmentModels).Error; err != nil {
		r.logger.Errorw("failed to list installments", "lookup", what, "error", err)
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	return mapper.MapSliceWithError(installmentModels, mappers.InstallmentToDomain)
}

func (r *InstallmentRepositoryImpl) GetByID(ctx context.Context, scope vo.Scope, id uint) (*billing.Installment, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).
		Scopes(db.InScope(scope.Kind.String(), scope.TenantID)).
		Where("id = ?", id))
}

func (r *InstallmentRepositoryImpl) GetBySubscriptionAndDueDate(ctx context.Context, subscriptionID uint, dueDate time.Time) (*billing.Installment, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ? AND due_date = ?", subscriptionID, civil(dueDate)))
}

func (r *InstallmentRepositoryImpl) ListBySubscription(ctx context.Context, subscriptionID uint) ([]*billing.Installment, error) {
	return r.find(db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ?", subscriptionID).
		Order("due_date ASC, id ASC"), "subscription")
}

// ListUnpaidBySubscriber returns awaiting and overdue installments across all of
// the subscriber's subscriptions, so debt left on a closed subscription still counts.
func (r *InstallmentRepositoryImpl) ListUnpaidBySubscriber(ctx context.Context, scope vo.Scope, subscriberID uint) ([]*billing.Installment, error) {
	return r.find(db.GetTxFromContext(ctx, r.db).
		Scopes(db.InScope(scope.Kind.String(), scope.TenantID)).
		Where("subscriber_id = ? AND status IN ?", subscriberID, unpaidInstallmentStatuses).
		Order("due_date ASC, id ASC"), "unpaid")
}

func (r *InstallmentRepositoryImpl) List(ctx context.Context, scope vo.Scope, filter billing.InstallmentFilter) ([]*billing.Installment, int64, error) {
	var total int64

	query := db.GetTxFromContext(ctx, r.db).Model(&models.InstallmentModel{}).
		Scopes(db.InScope(scope.Kind.String(), scope.TenantID))

	if filter.SubscriptionID != nil {
		query = query.Where("subscription_id = ?", *filter.SubscriptionID)
	}
	if filter.SubscriberID != nil {
		query = query.Where("subscriber_id = ?", *filter.SubscriberID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.ReferencePeriod != "" {
		query = query.Where("reference_period = ?", filter.ReferencePeriod)
	}

	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count installments", "error", err)
		return nil, 0, fmt.Errorf("failed to count installments: %w", err)
	}

	items, err := r.find(query.Order("due_date DESC, id DESC").Scopes(db.Paginate(filter.Page, filter.PageSize)), "list")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *InstallmentRepositoryImpl) MarkOverdue(ctx context.Context, scope *vo.Scope, cutoff time.Time) (int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.InstallmentModel{}).
		Where("status = ? AND due_date <= ?", vo.InstallmentAwaiting.String(), civil(cutoff))
	if scope != nil {
		query = query.Scopes(db.InScope(scope.Kind.String(), scope.TenantID))
	}

	result := query.Update("status", vo.InstallmentOverdue.String())
	if result.Error != nil {
		r.logger.Errorw("failed to mark installments overdue", "cutoff", biztime.FormatDate(cutoff), "error", result.Error)
		return 0, fmt.Errorf("failed to mark installments overdue: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *InstallmentRepositoryImpl) ListLateSubscribers(ctx context.Context, scope *vo.Scope, today time.Time) ([]billing.SubscriberRef, error) {
	var rows []subscriberRow
	query := db.GetTxFromContext(ctx, r.db).Model(&models.InstallmentModel{}).
		Where("status IN ? AND due_date < ?", unpaidInstallmentStatuses, civil(today))
	if scope != nil {
		query = query.Scopes(db.InScope(scope.Kind.String(), scope.TenantID))
	}
	err := query.Distinct("subscriber_kind", "tenant_id", "subscriber_id").
		Order("subscriber_kind, tenant_id, subscriber_id").
		Scan(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to list late subscribers", "error", err)
		return nil, fmt.Errorf("failed to list late subscribers: %w", err)
	}
	return toSubscriberRefs(rows)
}

func (r *InstallmentRepositoryImpl) CancelAwaitingFrom(ctx context.Context, subscriptionID uint, from time.Time, actorID uint) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).Model(&models.InstallmentModel{}).
		Where("subscription_id = ? AND status = ? AND due_date >= ?", subscriptionID, vo.InstallmentAwaiting.String(), civil(from)).
		Updates(map[string]interface{}{
			"status":     vo.InstallmentCancelled.String(),
			"settled_by": actorID,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to cancel awaiting installments", "subscription_id", subscriptionID, "error", result.Error)
		return 0, fmt.Errorf("failed to cancel awaiting installments: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		r.logger.Infow("awaiting installments cancelled",
			"subscription_id", subscriptionID,
			"from", biztime.FormatDate(from),
			"count", result.RowsAffected,
		)
	}
	return result.RowsAffected, nil
}

type totalsRow struct {
	Key   string
	Count int64
	Gross decimal.Decimal
	Net   decimal.Decimal
}

func (r *InstallmentRepositoryImpl) Summarize(ctx context.Context, scope vo.Scope, filter billing.SummaryFilter) (*billing.InstallmentSummary, error) {
	base := func() *gorm.DB {
		query := db.GetTxFromContext(ctx, r.db).Model(&models.InstallmentModel{}).
			Scopes(db.InScope(scope.Kind.String(), scope.TenantID))
		if filter.FromPeriod != "" {
			query = query.Where("reference_period >= ?", filter.FromPeriod)
		}
		if filter.ToPeriod != "" {
			query = query.Where("reference_period <= ?", filter.ToPeriod)
		}
		return query
	}

	byStatus, err := r.totals(base(), "status")
	if err != nil {
		return nil, err
	}
	byPeriod, err := r.totals(base(), "reference_period")
	if err != nil {
		return nil, err
	}
	return &billing.InstallmentSummary{ByStatus: byStatus, ByPeriod: byPeriod}, nil
}

func (r *InstallmentRepositoryImpl) totals(query *gorm.DB, column string) ([]billing.InstallmentTotals, error) {
	var rows []totalsRow
	err := query.
		Select(column + " AS `key`, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS gross, COALESCE(SUM(net_amount), 0) AS net").
		Group(column).
		Order(column).
		Scan(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to summarize installments", "group_by", column, "error", err)
		return nil, fmt.Errorf("failed to summarize installments: %w", err)
	}

	totals := make([]billing.InstallmentTotals, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, billing.InstallmentTotals{
			Key:   row.Key,
			Count: row.Count,
			Gross: row.Gross.Round(2),
			Net:   row.Net.Round(2),
		})
	}
	return totals, nil
}
