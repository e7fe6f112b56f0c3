package utils

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/errors"
)

// ParseUintParam parses a positive numeric path parameter.
// entityName is used in error messages (e.g., "plan", "installment").
func ParseUintParam(c *gin.Context, paramName, entityName string) (uint, error) {
	raw := c.Param(paramName)
	if raw == "" {
		return 0, errors.NewValidationError(entityName + " ID is required")
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, errors.NewValidationError("invalid " + entityName + " ID")
	}
	return uint(n), nil
}

// ParseOptionalUintQuery parses an optional positive numeric query parameter.
func ParseOptionalUintQuery(c *gin.Context, key string) (*uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil, errors.NewValidationError("invalid " + key)
	}
	v := uint(n)
	return &v, nil
}

// ParseOptionalDate parses an optional YYYY-MM-DD civil date.
func ParseOptionalDate(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := biztime.ParseDate(raw)
	if err != nil {
		return nil, errors.NewValidationError("invalid "+field, "expected YYYY-MM-DD")
	}
	return &d, nil
}
