package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxdesk/boxdesk/internal/shared/errors"
)

type priceRequest struct {
	Name     string `json:"name" validate:"required"`
	Price    string `json:"price" validate:"required,money"`
	Discount string `json:"discount" validate:"omitempty,percent"`
	Start    string `json:"start" validate:"omitempty,civildate"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		req     priceRequest
		wantErr string
	}{
		{"valid", priceRequest{Name: "Monthly", Price: "100.00", Discount: "5", Start: "2024-01-01"}, ""},
		{"missing name", priceRequest{Price: "1"}, "name is required"},
		{"negative price", priceRequest{Name: "x", Price: "-1"}, "price must be a non-negative amount"},
		{"three decimals", priceRequest{Name: "x", Price: "1.005"}, "price must be a non-negative amount"},
		{"discount over 100", priceRequest{Name: "x", Price: "1", Discount: "100.5"}, "discount must be a percentage"},
		{"bad date", priceRequest{Name: "x", Price: "1", Start: "01/02/2024"}, "start must be a date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
			assert.Contains(t, errors.GetAppError(err).Details, tt.wantErr)
		})
	}
}
