package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/boxdesk/boxdesk/internal/shared/constants"
)

// PlanModel represents the database persistence model for plans.
// Platform plans use subscriber_kind=tenant and tenant_id=0.
type PlanModel struct {
	ID             uint            `gorm:"primarykey"`
	SubscriberKind string          `gorm:"not null;size:10;index:idx_plan_scope,priority:1"`
	TenantID       uint            `gorm:"not null;default:0;index:idx_plan_scope,priority:2"`
	Name           string          `gorm:"not null;size:100"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RecurrenceDays int             `gorm:"not null"`
	Quota          *int
	Category       string `gorm:"size:50"`
	Offered        bool   `gorm:"not null;default:true"`
	Historical     bool   `gorm:"not null;default:false"`
	SupersededBy   *uint
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM
func (PlanModel) TableName() string {
	return constants.TablePlans
}
