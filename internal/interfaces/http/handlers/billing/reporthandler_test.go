package billing

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/application/billing/usecases"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/interfaces/http/handlers/testutil"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/errors"
)

type (
	mockSummaryUC = mockCommandUC[usecases.GetSummaryQuery, *dto.SummaryDTO]
	mockSweepUC   = mockCommandUC[usecases.SweepCommand, *dto.SweepResultDTO]
)

type mockHistoryUC struct {
	scope        vo.Scope
	subscriberID uint
	result       []*dto.HistoryEntryDTO
}

func (m *mockHistoryUC) Execute(ctx context.Context, scope vo.Scope, subscriberID uint) ([]*dto.HistoryEntryDTO, error) {
	m.scope = scope
	m.subscriberID = subscriberID
	return m.result, nil
}

func TestReportHandler_Summary(t *testing.T) {
	uc := &mockSummaryUC{result: &dto.SummaryDTO{}}
	handler := NewReportHandler(uc, nil, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/academy/summary", nil)
	testutil.SetScopeContext(c, vo.AcademyScope(3))
	testutil.SetQueryParams(c, map[string]string{"from": "2026-01", "to": "2026-03"})

	handler.Summary(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-01", uc.last.FromPeriod)
	assert.Equal(t, "2026-03", uc.last.ToPeriod)
	assert.Equal(t, vo.AcademyScope(3), uc.last.Scope)
}

func TestReportHandler_History(t *testing.T) {
	uc := &mockHistoryUC{result: []*dto.HistoryEntryDTO{{ID: 1, SubscriberID: 1001, NewPlanID: 7}}}
	handler := NewReportHandler(nil, uc, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/academy/history/1001", nil)
	testutil.SetScopeContext(c, vo.AcademyScope(3))
	testutil.SetURLParam(c, "subscriber_id", "1001")

	handler.History(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(1001), uc.subscriberID)
	assert.Equal(t, vo.AcademyScope(3), uc.scope)
}

func TestReportHandler_Sweep(t *testing.T) {
	t.Run("defaults to the caller's scope", func(t *testing.T) {
		uc := &mockSweepUC{result: &dto.SweepResultDTO{Date: "2026-03-10"}}
		handler := NewReportHandler(nil, nil, uc, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/academy/sweep", nil)
		testutil.SetScopeContext(c, vo.AcademyScope(3))

		handler.Sweep(c)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, uc.last.Scope)
		assert.Equal(t, vo.AcademyScope(3), *uc.last.Scope)
		assert.Nil(t, uc.last.Today)
	})

	t.Run("platform may sweep every scope on a given date", func(t *testing.T) {
		uc := &mockSweepUC{result: &dto.SweepResultDTO{Date: "2026-03-10"}}
		handler := NewReportHandler(nil, nil, uc, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/platform/sweep", SweepRequest{Date: "2026-03-10", AllScopes: true})
		testutil.SetScopeContext(c, vo.PlatformScope())

		handler.Sweep(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, uc.last.Scope)
		require.NotNil(t, uc.last.Today)
		assert.Equal(t, "2026-03-10", biztime.FormatDate(*uc.last.Today))
	})

	t.Run("future dates are rejected", func(t *testing.T) {
		uc := &mockSweepUC{err: errors.NewValidationError("sweep date cannot be in the future", "2030-01-01 is after 2026-03-10")}
		handler := NewReportHandler(nil, nil, uc, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/academy/sweep", SweepRequest{Date: "2030-01-01"})
		testutil.SetScopeContext(c, vo.AcademyScope(3))

		handler.Sweep(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, uc.last.Today)
		assert.Equal(t, "2030-01-01", biztime.FormatDate(*uc.last.Today))

		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "validation_error", resp.Error.Type)
		assert.Equal(t, "sweep date cannot be in the future", resp.Error.Message)
	})

	t.Run("academies cannot sweep every scope", func(t *testing.T) {
		uc := &mockSweepUC{}
		handler := NewReportHandler(nil, nil, uc, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/academy/sweep", SweepRequest{AllScopes: true})
		testutil.SetScopeContext(c, vo.AcademyScope(3))

		handler.Sweep(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, uc.called)
	})
}
