package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
)

// PaymentMethod is a settlement method of one tenant. Platform-level methods use tenant 0.
type PaymentMethod struct {
	id              uint
	tenantID        uint
	name            string
	discountPercent decimal.Decimal
	active          bool
	createdAt       time.Time
	updatedAt       time.Time
}

func validatePaymentMethod(name string, discountPercent decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPaymentMethod)
	}
	if err := vo.ValidatePercent(discountPercent); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPaymentMethod, err)
	}
	return nil
}

// NewPaymentMethod creates an active payment method
func NewPaymentMethod(tenantID uint, name string, discountPercent decimal.Decimal, now time.Time) (*PaymentMethod, error) {
	if err := validatePaymentMethod(name, discountPercent); err != nil {
		return nil, err
	}
	return &PaymentMethod{
		tenantID:        tenantID,
		name:            strings.TrimSpace(name),
		discountPercent: discountPercent,
		active:          true,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructPaymentMethod rebuilds a payment method from persistence
func ReconstructPaymentMethod(id, tenantID uint, name string, discountPercent decimal.Decimal, active bool, createdAt, updatedAt time.Time) (*PaymentMethod, error) {
	if id == 0 {
		return nil, fmt.Errorf("payment method ID cannot be zero")
	}
	return &PaymentMethod{
		id:              id,
		tenantID:        tenantID,
		name:            name,
		discountPercent: discountPercent,
		active:          active,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}, nil
}

func (m *PaymentMethod) ID() uint                         { return m.id }
func (m *PaymentMethod) TenantID() uint                   { return m.tenantID }
func (m *PaymentMethod) Name() string                     { return m.name }
func (m *PaymentMethod) DiscountPercent() decimal.Decimal { return m.discountPercent }
func (m *PaymentMethod) IsActive() bool                   { return m.active }
func (m *PaymentMethod) CreatedAt() time.Time             { return m.createdAt }
func (m *PaymentMethod) UpdatedAt() time.Time             { return m.updatedAt }

func (m *PaymentMethod) SetID(id uint) {
	m.id = id
}

// Update renames the method and changes its discount. Already settled
// installments keep the net amount computed at settlement time.
func (m *PaymentMethod) Update(name string, discountPercent decimal.Decimal, now time.Time) error {
	if err := validatePaymentMethod(name, discountPercent); err != nil {
		return err
	}
	m.name = strings.TrimSpace(name)
	m.discountPercent = discountPercent
	m.updatedAt = now
	return nil
}

func (m *PaymentMethod) SetActive(active bool, now time.Time) {
	m.active = active
	m.updatedAt = now
}
