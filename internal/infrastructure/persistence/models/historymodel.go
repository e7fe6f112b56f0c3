package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/boxdesk/boxdesk/internal/shared/constants"
)

// HistoryDetails is the free-form part of a history row.
type HistoryDetails struct {
	PlanName string `json:"plan_name"`
	Notes    string `json:"notes,omitempty"`
}

// SubscriptionHistoryModel is insert-only; the repository exposes no update or delete.
type SubscriptionHistoryModel struct {
	ID             uint   `gorm:"primarykey"`
	SubscriberKind string `gorm:"not null;size:10;index:idx_history_subscriber,priority:1"`
	TenantID       uint   `gorm:"not null;default:0;index:idx_history_subscriber,priority:2"`
	SubscriberID   uint   `gorm:"not null;index:idx_history_subscriber,priority:3"`
	SubscriptionID uint   `gorm:"not null"`
	PreviousPlanID *uint
	NewPlanID      uint            `gorm:"not null"`
	EffectiveFrom  datatypes.Date  `gorm:"not null"`
	EffectiveTo    datatypes.Date  `gorm:"not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason         string          `gorm:"not null;size:20"`
	Details        datatypes.JSONType[HistoryDetails]
	ActorID        uint      `gorm:"not null"`
	RecordedAt     time.Time `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (SubscriptionHistoryModel) TableName() string {
	return constants.TableSubscriptionHistory
}
