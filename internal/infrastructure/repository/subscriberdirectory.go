package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/models"
	"github.com/boxdesk/boxdesk/internal/shared/db"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

// SubscriberDirectoryImpl reads academies for platform scope and members for
// academy scope. Members are only visible inside their own academy.
type SubscriberDirectoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSubscriberDirectory(db *gorm.DB, logger logger.Interface) billing.SubscriberDirectory {
	return &SubscriberDirectoryImpl{
		db:     db,
		logger: logger,
	}
}

func (d *SubscriberDirectoryImpl) query(ctx context.Context, scope vo.Scope, subscriberID uint) *gorm.DB {
	tx := db.GetTxFromContext(ctx, d.db)
	if scope.IsPlatform() {
		return tx.Model(&models.AcademyModel{}).Where("id = ?", subscriberID)
	}
	return tx.Model(&models.MemberModel{}).Where("id = ? AND academy_id = ?", subscriberID, scope.TenantID)
}

func (d *SubscriberDirectoryImpl) Exists(ctx context.Context, scope vo.Scope, subscriberID uint) (bool, error) {
	var count int64
	if err := d.query(ctx, scope, subscriberID).Count(&count).Error; err != nil {
		d.logger.Errorw("failed to check subscriber", "scope", scope.String(), "subscriber_id", subscriberID, "error", err)
		return false, fmt.Errorf("failed to check subscriber: %w", err)
	}
	return count > 0, nil
}

func (d *SubscriberDirectoryImpl) Contact(ctx context.Context, scope vo.Scope, subscriberID uint) (*billing.SubscriberContact, error) {
	var contact billing.SubscriberContact
	err := d.query(ctx, scope, subscriberID).Select("name", "email").Take(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		d.logger.Errorw("failed to get subscriber contact", "scope", scope.String(), "subscriber_id", subscriberID, "error", err)
		return nil, fmt.Errorf("failed to get subscriber contact: %w", err)
	}
	return &contact, nil
}

func (d *SubscriberDirectoryImpl) UpdateBillingSnapshot(ctx context.Context, scope vo.Scope, subscriberID uint, snapshot billing.BillingSnapshot) error {
	err := d.query(ctx, scope, subscriberID).Updates(map[string]interface{}{
		"current_plan_id":    snapshot.PlanID,
		"billing_status":     snapshot.Status,
		"billing_expires_on": snapshot.ExpiresOn,
	}).Error
	if err != nil {
		d.logger.Errorw("failed to update billing snapshot", "scope", scope.String(), "subscriber_id", subscriberID, "error", err)
		return fmt.Errorf("failed to update billing snapshot: %w", err)
	}
	return nil
}
