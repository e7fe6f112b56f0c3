package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/boxdesk/boxdesk/internal/application/billing/usecases"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
	"github.com/boxdesk/boxdesk/internal/shared/utils"
)

type PaymentMethodHandler struct {
	catalog paymentMethodCatalog
	logger  logger.Interface
}

func NewPaymentMethodHandler(catalog paymentMethodCatalog, logger logger.Interface) *PaymentMethodHandler {
	return &PaymentMethodHandler{catalog: catalog, logger: logger}
}

type PaymentMethodRequest struct {
	Name            string `json:"name" binding:"required,max=50"`
	DiscountPercent string `json:"discount_percent" binding:"omitempty,percent"`
}

type SetPaymentMethodActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (r PaymentMethodRequest) discount() (decimal.Decimal, error) {
	pct, err := parseMoney(r.DiscountPercent, "discount_percent")
	if err != nil || pct == nil {
		return decimal.Zero, err
	}
	return *pct, nil
}

func (h *PaymentMethodHandler) Create(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req PaymentMethodRequest
	if err := utils.BindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for create payment method", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	discount, err := req.discount()
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.catalog.Create(c.Request.Context(), usecases.CreatePaymentMethodCommand{
		Scope:           scope,
		Name:            req.Name,
		DiscountPercent: discount,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Payment method created successfully")
}

func (h *PaymentMethodHandler) Update(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	methodID, err := utils.ParseUintParam(c, "id", "payment method")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req PaymentMethodRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	discount, err := req.discount()
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.catalog.Update(c.Request.Context(), usecases.UpdatePaymentMethodCommand{
		Scope:           scope,
		MethodID:        methodID,
		Name:            req.Name,
		DiscountPercent: discount,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment method updated successfully", result)
}

func (h *PaymentMethodHandler) SetActive(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	methodID, err := utils.ParseUintParam(c, "id", "payment method")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SetPaymentMethodActiveRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.catalog.SetActive(c.Request.Context(), usecases.SetPaymentMethodActiveCommand{
		Scope:    scope,
		MethodID: methodID,
		Active:   *req.Active,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment method updated successfully", result)
}

func (h *PaymentMethodHandler) Get(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	methodID, err := utils.ParseUintParam(c, "id", "payment method")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.catalog.Get(c.Request.Context(), scope, methodID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *PaymentMethodHandler) List(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.catalog.List(c.Request.Context(), scope, parseBoolQuery(c, "active_only"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
