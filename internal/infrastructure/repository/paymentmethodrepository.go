package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/mappers"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/models"
	"github.com/boxdesk/boxdesk/internal/shared/db"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
	"github.com/boxdesk/boxdesk/internal/shared/mapper"
)

// PaymentMethodRepositoryImpl persists the settlement methods of an academy.
// Tenant 0 holds the methods accepted for platform contracts.
type PaymentMethodRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPaymentMethodRepository(db *gorm.DB, logger logger.Interface) billing.PaymentMethodRepository {
	return &PaymentMethodRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *PaymentMethodRepositoryImpl) Create(ctx context.Context, method *billing.PaymentMethod) error {
	model := mappers.PaymentMethodToModel(method)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create payment method", "error", err, "tenant_id", method.TenantID())
		return fmt.Errorf("failed to create payment method: %w", err)
	}
	method.SetID(model.ID)

	r.logger.Infow("payment method created successfully", "payment_method_id", model.ID, "tenant_id", model.TenantID)
	return nil
}

func (r *PaymentMethodRepositoryImpl) Update(ctx context.Context, method *billing.PaymentMethod) error {
	model := mappers.PaymentMethodToModel(method)
	err := db.GetTxFromContext(ctx, r.db).Model(&models.PaymentMethodModel{}).
		Where("id = ? AND tenant_id = ?", model.ID, model.TenantID).
		Updates(map[string]interface{}{
			"name":             model.Name,
			"discount_percent": model.DiscountPercent,
			"active":           model.Active,
			"updated_at":       model.UpdatedAt,
		}).Error
	if err != nil {
		r.logger.Errorw("failed to update payment method", "payment_method_id", model.ID, "error", err)
		return fmt.Errorf("failed to update payment method: %w", err)
	}
	return nil
}

func (r *PaymentMethodRepositoryImpl) GetByID(ctx context.Context, tenantID, id uint) (*billing.PaymentMethod, error) {
	var model models.PaymentMethodModel
	err := db.GetTxFromContext(ctx, r.db).Where("tenant_id = ?", tenantID).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get payment method", "error", err, "payment_method_id", id)
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	return mappers.PaymentMethodToDomain(&model)
}

func (r *PaymentMethodRepositoryImpl) List(ctx context.Context, tenantID uint, activeOnly bool) ([]*billing.PaymentMethod, error) {
	var methodModels []*models.PaymentMethodModel
	query := db.GetTxFromContext(ctx, r.db).Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Order("name ASC").Find(&methodModels).Error; err != nil {
		r.logger.Errorw("failed to list payment methods", "error", err, "tenant_id", tenantID)
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	return mapper.MapSliceWithError(methodModels, mappers.PaymentMethodToDomain)
}
