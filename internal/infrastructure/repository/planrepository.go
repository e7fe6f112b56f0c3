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

type PlanRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPlanRepository(db *gorm.DB, logger logger.Interface) billing.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *billing.Plan) error {
	model := mappers.PlanToModel(plan)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create plan", "error", err, "scope", plan.Scope().String(), "name", plan.Name())
		return fmt.Errorf("failed to create plan: %w", err)
	}
	plan.SetID(model.ID)

	r.logger.Infow("plan created successfully", "plan_id", model.ID, "scope", plan.Scope().String())
	return nil
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, plan *billing.Plan) error {
	model := mappers.PlanToModel(plan)
	result := db.GetTxFromContext(ctx, r.db).Model(&models.PlanModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":            model.Name,
			"price":           model.Price,
			"recurrence_days": model.RecurrenceDays,
			"quota":           model.Quota,
			"category":        model.Category,
			"offered":         model.Offered,
			"historical":      model.Historical,
			"superseded_by":   model.SupersededBy,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update plan", "plan_id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}

	r.logger.Infow("plan updated successfully", "plan_id", model.ID)
	return nil
}

func (r *PlanRepositoryImpl) GetByID(ctx context.Context, scope vo.Scope, id uint) (*billing.Plan, error) {
	var model models.PlanModel
	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.InScope(scope.Kind.String(), scope.TenantID)).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get plan by ID", "error", err, "plan_id", id)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return mappers.PlanToDomain(&model)
}

func (r *PlanRepositoryImpl) ListOffered(ctx context.Context, scope vo.Scope) ([]*billing.Plan, error) {
	var planModels []*models.PlanModel
	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.InScope(scope.Kind.String(), scope.TenantID)).
		Where("offered = ? AND historical = ?", true, false).
		Order("price ASC, id ASC").
		Find(&planModels).Error
	if err != nil {
		r.logger.Errorw("failed to list offered plans", "error", err, "scope", scope.String())
		return nil, fmt.Errorf("failed to list offered plans: %w", err)
	}
	return mapper.MapSliceWithError(planModels, mappers.PlanToDomain)
}

func (r *PlanRepositoryImpl) List(ctx context.Context, scope vo.Scope, filter billing.PlanFilter) ([]*billing.Plan, int64, error) {
	var planModels []*models.PlanModel
	var total int64

	query := db.GetTxFromContext(ctx, r.db).Model(&models.PlanModel{}).
		Scopes(db.InScope(scope.Kind.String(), scope.TenantID))
	if !filter.IncludeHistorical {
		query = query.Where("historical = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count plans", "error", err)
		return nil, 0, fmt.Errorf("failed to count plans: %w", err)
	}

	if err := query.Order("id DESC").Scopes(db.Paginate(filter.Page, filter.PageSize)).Find(&planModels).Error; err != nil {
		r.logger.Errorw("failed to list plans", "error", err)
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}

	plans, err := mapper.MapSliceWithError(planModels, mappers.PlanToDomain)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to map plans: %w", err)
	}
	return plans, total, nil
}
