package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/boxdesk/boxdesk/internal/shared/constants"
)

// InstallmentModel represents the database persistence model for installments.
// (subscription_id, due_date) is unique so a successor is generated at most once.
type InstallmentModel struct {
	ID              uint                `gorm:"primarykey"`
	SubscriberKind  string              `gorm:"not null;size:10;index:idx_installment_subscriber,priority:1"`
	TenantID        uint                `gorm:"not null;default:0;index:idx_installment_subscriber,priority:2"`
	SubscriberID    uint                `gorm:"not null;index:idx_installment_subscriber,priority:3"`
	SubscriptionID  uint                `gorm:"not null;uniqueIndex:uk_installment_due,priority:1"`
	DueDate         datatypes.Date      `gorm:"not null;uniqueIndex:uk_installment_due,priority:2"`
	Amount          decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	NetAmount       decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	DiscountAmount  decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	PaidDate        *time.Time          `gorm:"type:date"`
	Status          string              `gorm:"not null;size:20;index:idx_installment_status"`
	PaymentMethodID *uint
	Proof           string `gorm:"size:255"`
	Notes           string `gorm:"type:text"`
	SettledBy       *uint
	SuccessorID     *uint
	ReferencePeriod string `gorm:"not null;size:7;index:idx_installment_period"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (InstallmentModel) TableName() string {
	return constants.TableInstallments
}
