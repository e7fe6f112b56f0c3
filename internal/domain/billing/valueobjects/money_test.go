package valueobjects

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		amount       string
		percent      string
		wantNet      string
		wantDiscount string
	}{
		{"100.00", "5", "95.00", "5.00"},
		{"100.00", "0", "100.00", "0.00"},
		{"100.00", "100", "0.00", "100.00"},
		{"99.99", "12.5", "87.49", "12.50"},
		{"10.05", "50", "5.03", "5.02"},
		{"0.01", "50", "0.01", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.amount+"@"+tt.percent, func(t *testing.T) {
			net, discount := ApplyDiscount(decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.percent))
			assert.Equal(t, tt.wantNet, net.StringFixed(2))
			assert.Equal(t, tt.wantDiscount, discount.StringFixed(2))
		})
	}
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("100.00")))
	assert.ErrorIs(t, ValidateAmount(decimal.RequireFromString("-0.01")), ErrNegativeAmount)
	assert.ErrorIs(t, ValidateAmount(decimal.RequireFromString("1.001")), ErrAmountPrecision)
}

func TestValidatePercent(t *testing.T) {
	assert.NoError(t, ValidatePercent(decimal.RequireFromString("12.50")))
	assert.Error(t, ValidatePercent(decimal.RequireFromString("100.01")))
	assert.Error(t, ValidatePercent(decimal.RequireFromString("-1")))
}
