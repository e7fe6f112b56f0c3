package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boxdesk/boxdesk/internal/application/billing/usecases"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
	"github.com/boxdesk/boxdesk/internal/shared/utils"
)

type PlanHandler struct {
	createPlanUC     createPlanUseCase
	updatePlanUC     updatePlanUseCase
	revisePlanUC     revisePlanUseCase
	setPlanOfferedUC setPlanOfferedUseCase
	getPlanUC        getPlanUseCase
	listPlansUC      listPlansUseCase
	logger           logger.Interface
}

func NewPlanHandler(
	createPlanUC createPlanUseCase,
	updatePlanUC updatePlanUseCase,
	revisePlanUC revisePlanUseCase,
	setPlanOfferedUC setPlanOfferedUseCase,
	getPlanUC getPlanUseCase,
	listPlansUC listPlansUseCase,
	logger logger.Interface,
) *PlanHandler {
	return &PlanHandler{
		createPlanUC:     createPlanUC,
		updatePlanUC:     updatePlanUC,
		revisePlanUC:     revisePlanUC,
		setPlanOfferedUC: setPlanOfferedUC,
		getPlanUC:        getPlanUC,
		listPlansUC:      listPlansUC,
		logger:           logger,
	}
}

type PlanRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Price          string `json:"price" binding:"required,money"`
	RecurrenceDays int    `json:"recurrence_days" binding:"gte=0,lte=3660"`
	Quota          *int   `json:"quota" binding:"omitempty,gt=0"`
	Category       string `json:"category" binding:"max=50"`
}

// RevisePlanRequest keeps the current name when Name is empty.
type RevisePlanRequest struct {
	Name           string `json:"name" binding:"max=100"`
	Price          string `json:"price" binding:"required,money"`
	RecurrenceDays int    `json:"recurrence_days" binding:"gte=0,lte=3660"`
	Quota          *int   `json:"quota" binding:"omitempty,gt=0"`
	Category       string `json:"category" binding:"max=50"`
}

type SetPlanOfferedRequest struct {
	Offered *bool `json:"offered" binding:"required"`
}

func toPlanInput(name, price string, recurrenceDays int, quota *int, category string) (usecases.PlanInput, error) {
	amount, err := parseMoney(price, "price")
	if err != nil {
		return usecases.PlanInput{}, err
	}
	return usecases.PlanInput{
		Name:           name,
		Price:          *amount,
		RecurrenceDays: recurrenceDays,
		Quota:          quota,
		Category:       category,
	}, nil
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req PlanRequest
	if err := utils.BindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for create plan", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	input, err := toPlanInput(req.Name, req.Price, req.RecurrenceDays, req.Quota, req.Category)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.createPlanUC.Execute(c.Request.Context(), usecases.CreatePlanCommand{Scope: scope, PlanInput: input})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Plan created successfully")
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	planID, err := utils.ParseUintParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req PlanRequest
	if err := utils.BindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for update plan", "plan_id", planID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	input, err := toPlanInput(req.Name, req.Price, req.RecurrenceDays, req.Quota, req.Category)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.updatePlanUC.Execute(c.Request.Context(), usecases.UpdatePlanCommand{
		Scope:     scope,
		PlanID:    planID,
		PlanInput: input,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Plan updated successfully", result)
}

// RevisePlan publishes new terms as a new plan and retires the current one.
func (h *PlanHandler) RevisePlan(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	planID, err := utils.ParseUintParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req RevisePlanRequest
	if err := utils.BindJSON(c, &req); err != nil {
		h.logger.Warnw("invalid request body for revise plan", "plan_id", planID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	input, err := toPlanInput(req.Name, req.Price, req.RecurrenceDays, req.Quota, req.Category)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.revisePlanUC.Execute(c.Request.Context(), usecases.RevisePlanCommand{
		Scope:     scope,
		PlanID:    planID,
		PlanInput: input,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "Plan revised successfully")
}

func (h *PlanHandler) SetPlanOffered(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	planID, err := utils.ParseUintParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SetPlanOfferedRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.setPlanOfferedUC.Execute(c.Request.Context(), usecases.SetPlanOfferedCommand{
		Scope:   scope,
		PlanID:  planID,
		Offered: *req.Offered,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Plan availability updated", result)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	planID, err := utils.ParseUintParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getPlanUC.Execute(c.Request.Context(), scope, planID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ListPlans accepts offered_only (unpaginated catalog) and include_historical.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	p := utils.ParsePagination(c)

	result, err := h.listPlansUC.Execute(c.Request.Context(), usecases.ListPlansQuery{
		Scope:             scope,
		OfferedOnly:       parseBoolQuery(c, "offered_only"),
		IncludeHistorical: parseBoolQuery(c, "include_historical"),
		Page:              p.Page,
		PageSize:          p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Plans, result.Total, result.Page, result.PageSize)
}
