package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/boxdesk/boxdesk/internal/shared/constants"
)

// SubscriptionModel represents the database persistence model for subscriptions.
// OpenKey is "<kind>:<tenant>:<subscriber>" while the subscription is pending,
// active or overdue and NULL afterwards; its unique index allows a single open
// subscription per subscriber.
type SubscriptionModel struct {
	ID                uint           `gorm:"primarykey"`
	SubscriberKind    string         `gorm:"not null;size:10;index:idx_subscription_subscriber,priority:1"`
	TenantID          uint           `gorm:"not null;default:0;index:idx_subscription_subscriber,priority:2"`
	SubscriberID      uint           `gorm:"not null;index:idx_subscription_subscriber,priority:3"`
	PlanID            uint           `gorm:"not null;index:idx_subscription_plan"`
	OpenKey           *string        `gorm:"size:64;uniqueIndex:uk_subscription_open_key"`
	StartDate         datatypes.Date `gorm:"not null"`
	ExpirationDate    datatypes.Date `gorm:"not null"`
	Status            string         `gorm:"not null;size:20;index:idx_subscription_status"`
	PredecessorID     *uint
	PredecessorPlanID *uint
	ChangeReason      string `gorm:"not null;size:20"`
	Notes             string `gorm:"type:text"`
	CreatedBy         uint   `gorm:"not null"`
	ClosedBy          *uint
	ClosedOn          *time.Time `gorm:"type:date"`
	CloseReason       string     `gorm:"size:255"`
	Version           int        `gorm:"not null;default:1"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

// BeforeCreate hook for GORM
func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
