package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/constants"
	"github.com/boxdesk/boxdesk/internal/shared/utils"
)

// PlatformScope binds the request to platform contracts with academies.
func PlatformScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyScope, vo.PlatformScope())
		c.Next()
	}
}

// AcademyScope binds the request to the academy named in the verified token.
// The tenant never comes from the URL or the body.
func AcademyScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetUint(constants.ContextKeyTenantID)
		if tenantID == 0 {
			utils.ErrorResponse(c, http.StatusForbidden, "token is not bound to an academy")
			c.Abort()
			return
		}
		c.Set(constants.ContextKeyScope, vo.AcademyScope(tenantID))
		c.Next()
	}
}
