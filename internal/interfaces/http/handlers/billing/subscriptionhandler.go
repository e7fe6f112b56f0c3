package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boxdesk/boxdesk/internal/application/billing/usecases"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
	"github.com/boxdesk/boxdesk/internal/shared/utils"
)

// SubscriptionHandler serves platform contracts and member enrollments.
type SubscriptionHandler struct {
	createUC createSubscriptionUseCase
	switchUC switchPlanUseCase
	renewUC  renewSubscriptionUseCase
	cancelUC cancelSubscriptionUseCase
	getUC    getSubscriptionUseCase
	listUC   listSubscriptionsUseCase
	logger   logger.Interface
}

func NewSubscriptionHandler(
	createUC createSubscriptionUseCase,
	switchUC switchPlanUseCase,
	renewUC renewSubscriptionUseCase,
	cancelUC cancelSubscriptionUseCase,
	getUC getSubscriptionUseCase,
	listUC listSubscriptionsUseCase,
	logger logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		createUC: createUC,
		switchUC: switchUC,
		renewUC:  renewUC,
		cancelUC: cancelUC,
		getUC:    getUC,
		listUC:   listUC,
		logger:   logger,
	}
}

type CreateSubscriptionRequest struct {
	SubscriberID uint   `json:"subscriber_id" binding:"required"`
	PlanID       uint   `json:"plan_id" binding:"required"`
	StartDate    string `json:"start_date" binding:"omitempty,civildate"`
	Amount       string `json:"amount" binding:"omitempty,money"`
	Notes        string `json:"notes" binding:"max=1000"`
}

type SwitchPlanRequest struct {
	SubscriberID    uint   `json:"subscriber_id" binding:"required"`
	PlanID          uint   `json:"plan_id" binding:"required"`
	PaymentMethodID *uint  `json:"payment_method_id" binding:"omitempty,gt=0"`
	Notes           string `json:"notes" binding:"max=1000"`
}

type RenewSubscriptionRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

type CancelSubscriptionRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

func (h *SubscriptionHandler) Create(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CreateSubscriptionRequest
	if err := utils.BindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for create subscription", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	startDate, err := utils.ParseOptionalDate(req.StartDate, "start_date")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	amount, err := parseMoney(req.Amount, "amount")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), usecases.CreateSubscriptionCommand{
		Scope:          scope,
		SubscriberID:   req.SubscriberID,
		PlanID:         req.PlanID,
		StartDate:      startDate,
		AmountOverride: amount,
		Notes:          req.Notes,
		ActorID:        actorFrom(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Subscription created successfully")
}

// SwitchPlan moves a subscriber to another plan immediately, regardless of
// the current billing cycle.
func (h *SubscriptionHandler) SwitchPlan(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SwitchPlanRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.switchUC.Execute(c.Request.Context(), usecases.SwitchPlanCommand{
		Scope:           scope,
		SubscriberID:    req.SubscriberID,
		PlanID:          req.PlanID,
		PaymentMethodID: req.PaymentMethodID,
		Notes:           req.Notes,
		ActorID:         actorFrom(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Plan switched successfully")
}

func (h *SubscriptionHandler) Renew(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	subscriptionID, err := utils.ParseUintParam(c, "id", "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req RenewSubscriptionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.renewUC.Execute(c.Request.Context(), usecases.RenewSubscriptionCommand{
		Scope:          scope,
		SubscriptionID: subscriptionID,
		Notes:          req.Notes,
		ActorID:        actorFrom(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Contract renewed successfully")
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	subscriptionID, err := utils.ParseUintParam(c, "id", "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CancelSubscriptionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.cancelUC.Execute(c.Request.Context(), usecases.CancelSubscriptionCommand{
		Scope:          scope,
		SubscriptionID: subscriptionID,
		ActorID:        actorFrom(c),
		Reason:         req.Reason,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription cancelled successfully", result)
}

func (h *SubscriptionHandler) Get(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	subscriptionID, err := utils.ParseUintParam(c, "id", "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getUC.Execute(c.Request.Context(), scope, subscriptionID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *SubscriptionHandler) List(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	subscriberID, err := utils.ParseOptionalUintQuery(c, "subscriber_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	planID, err := utils.ParseOptionalUintQuery(c, "plan_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	p := utils.ParsePagination(c)

	result, err := h.listUC.Execute(c.Request.Context(), usecases.ListSubscriptionsQuery{
		Scope:        scope,
		SubscriberID: subscriberID,
		PlanID:       planID,
		Status:       c.Query("status"),
		Page:         p.Page,
		PageSize:     p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Subscriptions, result.Total, result.Page, result.PageSize)
}
