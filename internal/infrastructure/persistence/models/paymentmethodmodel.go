package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/boxdesk/boxdesk/internal/shared/constants"
)

// PaymentMethodModel represents the database persistence model for settlement methods
type PaymentMethodModel struct {
	ID              uint            `gorm:"primarykey"`
	TenantID        uint            `gorm:"not null;default:0;index:idx_payment_method_tenant"`
	Name            string          `gorm:"not null;size:100"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Active          bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (PaymentMethodModel) TableName() string {
	return constants.TablePaymentMethods
}
