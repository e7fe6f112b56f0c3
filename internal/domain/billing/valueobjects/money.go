package valueobjects

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrAmountPrecision = errors.New("amount cannot have more than 2 decimal places")
	ErrInvalidPercent  = errors.New("percentage must be between 0 and 100 with at most 2 decimal places")

	hundred = decimal.NewFromInt(100)
)

// ValidateAmount checks a currency amount: non-negative, two fraction digits at most.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return ErrAmountPrecision
	}
	return nil
}

// ValidatePercent checks a 0-100 percentage with two fraction digits at most.
func ValidatePercent(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) || !pct.Equal(pct.Round(2)) {
		return ErrInvalidPercent
	}
	return nil
}

// ApplyDiscount returns the net amount after a percentage discount and the discount itself.
// Net is rounded half-up to cents; the discount is whatever the rounding leaves, so
// net + discount always equals the gross amount.
func ApplyDiscount(amount, discountPercent decimal.Decimal) (net, discount decimal.Decimal) {
	net = amount.Mul(hundred.Sub(discountPercent)).Div(hundred).Round(2)
	return net, amount.Sub(net)
}
