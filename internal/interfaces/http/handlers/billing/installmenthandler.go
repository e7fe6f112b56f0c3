package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boxdesk/boxdesk/internal/application/billing/usecases"
	"github.com/boxdesk/boxdesk/internal/shared/errors"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
	"github.com/boxdesk/boxdesk/internal/shared/utils"
)

type InstallmentHandler struct {
	createUC createInstallmentUseCase
	settleUC settleInstallmentUseCase
	cancelUC cancelInstallmentUseCase
	notesUC  updateInstallmentNotesUseCase
	listUC   listInstallmentsUseCase
	logger   logger.Interface
}

func NewInstallmentHandler(
	createUC createInstallmentUseCase,
	settleUC settleInstallmentUseCase,
	cancelUC cancelInstallmentUseCase,
	notesUC updateInstallmentNotesUseCase,
	listUC listInstallmentsUseCase,
	logger logger.Interface,
) *InstallmentHandler {
	return &InstallmentHandler{
		createUC: createUC,
		settleUC: settleUC,
		cancelUC: cancelUC,
		notesUC:  notesUC,
		listUC:   listUC,
		logger:   logger,
	}
}

type CreateInstallmentRequest struct {
	SubscriptionID uint   `json:"subscription_id" binding:"required"`
	DueDate        string `json:"due_date" binding:"required,civildate"`
	Amount         string `json:"amount" binding:"omitempty,money"`
}

type SettleInstallmentRequest struct {
	PaidDate        string  `json:"paid_date" binding:"omitempty,civildate"`
	PaymentMethodID *uint   `json:"payment_method_id" binding:"omitempty,gt=0"`
	Proof           string  `json:"proof" binding:"max=255"`
	Notes           *string `json:"notes" binding:"omitempty,max=1000"`
}

type CancelInstallmentRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=1000"`
}

type UpdateInstallmentNotesRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

func (h *InstallmentHandler) Create(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CreateInstallmentRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	dueDate, err := utils.ParseOptionalDate(req.DueDate, "due_date")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if dueDate == nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("due_date is required"))
		return
	}
	amount, err := parseMoney(req.Amount, "amount")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), usecases.CreateInstallmentCommand{
		Scope:          scope,
		SubscriptionID: req.SubscriptionID,
		DueDate:        *dueDate,
		Amount:         amount,
		ActorID:        actorFrom(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Installment created successfully")
}

// Settle records a payment. The response carries the next installment when
// one was generated.
func (h *InstallmentHandler) Settle(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	installmentID, err := utils.ParseUintParam(c, "id", "installment")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SettleInstallmentRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for settle installment", "installment_id", installmentID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	paidDate, err := utils.ParseOptionalDate(req.PaidDate, "paid_date")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.settleUC.Execute(c.Request.Context(), usecases.SettleInstallmentCommand{
		Scope:           scope,
		InstallmentID:   installmentID,
		ActorID:         actorFrom(c),
		PaidDate:        paidDate,
		PaymentMethodID: req.PaymentMethodID,
		Proof:           req.Proof,
		Notes:           req.Notes,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Installment settled successfully", result)
}

func (h *InstallmentHandler) Cancel(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	installmentID, err := utils.ParseUintParam(c, "id", "installment")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CancelInstallmentRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.cancelUC.Execute(c.Request.Context(), usecases.CancelInstallmentCommand{
		Scope:         scope,
		InstallmentID: installmentID,
		ActorID:       actorFrom(c),
		Notes:         req.Notes,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Installment cancelled successfully", result)
}

func (h *InstallmentHandler) UpdateNotes(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	installmentID, err := utils.ParseUintParam(c, "id", "installment")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UpdateInstallmentNotesRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.notesUC.Execute(c.Request.Context(), usecases.UpdateInstallmentNotesCommand{
		Scope:         scope,
		InstallmentID: installmentID,
		Notes:         req.Notes,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Notes updated", result)
}

func (h *InstallmentHandler) List(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	subscriptionID, err := utils.ParseOptionalUintQuery(c, "subscription_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	subscriberID, err := utils.ParseOptionalUintQuery(c, "subscriber_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	p := utils.ParsePagination(c)

	result, err := h.listUC.Execute(c.Request.Context(), usecases.ListInstallmentsQuery{
		Scope:           scope,
		SubscriptionID:  subscriptionID,
		SubscriberID:    subscriberID,
		Status:          c.Query("status"),
		ReferencePeriod: c.Query("reference_period"),
		Page:            p.Page,
		PageSize:        p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Installments, result.Total, result.Page, result.PageSize)
}
