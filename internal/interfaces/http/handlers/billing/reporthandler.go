package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boxdesk/boxdesk/internal/application/billing/usecases"
	"github.com/boxdesk/boxdesk/internal/shared/errors"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
	"github.com/boxdesk/boxdesk/internal/shared/utils"
)

// ReportHandler serves the summary, plan history and on-demand sweeps.
type ReportHandler struct {
	summaryUC getSummaryUseCase
	historyUC listHistoryUseCase
	sweepUC   sweepUseCase
	logger    logger.Interface
}

func NewReportHandler(
	summaryUC getSummaryUseCase,
	historyUC listHistoryUseCase,
	sweepUC sweepUseCase,
	logger logger.Interface,
) *ReportHandler {
	return &ReportHandler{
		summaryUC: summaryUC,
		historyUC: historyUC,
		sweepUC:   sweepUC,
		logger:    logger,
	}
}

type SweepRequest struct {
	// Date replays the sweep for another business day.
	Date string `json:"date" binding:"omitempty,civildate"`
	// AllScopes sweeps every academy as well; platform operators only.
	AllScopes bool `json:"all_scopes"`
}

// Summary accepts from/to reference periods (YYYY-MM).
func (h *ReportHandler) Summary(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.summaryUC.Execute(c.Request.Context(), usecases.GetSummaryQuery{
		Scope:      scope,
		FromPeriod: c.Query("from"),
		ToPeriod:   c.Query("to"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *ReportHandler) History(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	subscriberID, err := utils.ParseUintParam(c, "subscriber_id", "subscriber")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.historyUC.Execute(c.Request.Context(), scope, subscriberID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *ReportHandler) Sweep(c *gin.Context) {
	scope, err := scopeFrom(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SweepRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	today, err := utils.ParseOptionalDate(req.Date, "date")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.SweepCommand{Today: today}
	switch {
	case req.AllScopes && !scope.IsPlatform():
		utils.ErrorResponseWithError(c, errors.NewValidationError("all_scopes is only available at platform level"))
		return
	case !req.AllScopes:
		cmd.Scope = &scope
	}

	h.logger.Infow("on-demand delinquency sweep requested",
		"scope", scope.String(),
		"all_scopes", req.AllScopes,
		"actor_id", actorFrom(c),
	)

	result, err := h.sweepUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Sweep completed", result)
}
