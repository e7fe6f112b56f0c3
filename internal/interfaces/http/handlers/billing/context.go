// Package billing exposes plans, payment methods, subscriptions and
// installments over HTTP. The same handlers serve the platform and the
// academy route groups; the scope comes from the group middleware.
package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/constants"
	"github.com/boxdesk/boxdesk/internal/shared/errors"
	"github.com/boxdesk/boxdesk/internal/shared/utils"
)

func scopeFrom(c *gin.Context) (vo.Scope, error) {
	value, exists := c.Get(constants.ContextKeyScope)
	if !exists {
		return vo.Scope{}, errors.NewForbiddenError("billing scope not resolved")
	}
	scope, ok := value.(vo.Scope)
	if !ok {
		return vo.Scope{}, errors.NewInternalError("invalid billing scope in context")
	}
	return scope, nil
}

func actorFrom(c *gin.Context) uint {
	return c.GetUint(constants.ContextKeyActorID)
}

// bindOptionalJSON accepts an empty body for endpoints whose fields are all optional.
func bindOptionalJSON(c *gin.Context, req any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody || c.Request.ContentLength == 0 {
		return nil
	}
	return utils.BindJSON(c, req)
}

func parseMoney(raw, field string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errors.NewValidationError("invalid "+field, raw)
	}
	return &d, nil
}

func parseBoolQuery(c *gin.Context, key string) bool {
	switch c.Query(key) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
