package billing

import (
	"encoding/json"
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
	mockCreateInstallmentUC = mockCommandUC[usecases.CreateInstallmentCommand, *dto.InstallmentDTO]
	mockSettleInstallmentUC = mockCommandUC[usecases.SettleInstallmentCommand, *dto.SettlementDTO]
	mockCancelInstallmentUC = mockCommandUC[usecases.CancelInstallmentCommand, *dto.InstallmentDTO]
	mockUpdateNotesUC       = mockCommandUC[usecases.UpdateInstallmentNotesCommand, *dto.InstallmentDTO]
	mockListInstallmentsUC  = mockCommandUC[usecases.ListInstallmentsQuery, *usecases.ListInstallmentsResult]
)

func testInstallmentDTO(status string) *dto.InstallmentDTO {
	return &dto.InstallmentDTO{
		ID:             31,
		SubscriptionID: 21,
		SubscriberID:   1001,
		Amount:         "120.00",
		DueDate:        "2026-03-01",
		Status:         status,
	}
}

func newInstallmentHandlerWith(
	create createInstallmentUseCase,
	settle settleInstallmentUseCase,
	cancel cancelInstallmentUseCase,
	notes updateInstallmentNotesUseCase,
	list listInstallmentsUseCase,
) *InstallmentHandler {
	return NewInstallmentHandler(create, settle, cancel, notes, list, testutil.NewMockLogger())
}

func TestInstallmentHandler_Create(t *testing.T) {
	uc := &mockCreateInstallmentUC{result: testInstallmentDTO("awaiting")}
	handler := newInstallmentHandlerWith(uc, nil, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/academy/installments", CreateInstallmentRequest{
		SubscriptionID: 21,
		DueDate:        "2026-04-10",
	})
	testutil.SetAuthContext(c, 11, 3, "manager")
	testutil.SetScopeContext(c, vo.AcademyScope(3))

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, uint(21), uc.last.SubscriptionID)
	assert.Equal(t, "2026-04-10", biztime.FormatDate(uc.last.DueDate))
	assert.Nil(t, uc.last.Amount)
}

func TestInstallmentHandler_Create_DueDateRequired(t *testing.T) {
	uc := &mockCreateInstallmentUC{}
	handler := newInstallmentHandlerWith(uc, nil, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/academy/installments", map[string]any{"subscription_id": 21})
	testutil.SetScopeContext(c, vo.AcademyScope(3))

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, uc.called)
}

func TestInstallmentHandler_Settle_WithSuccessor(t *testing.T) {
	paid := testInstallmentDTO("paid")
	next := testInstallmentDTO("awaiting")
	next.ID = 32
	next.DueDate = "2026-03-31"
	uc := &mockSettleInstallmentUC{result: &dto.SettlementDTO{
		Installment:        paid,
		Successor:          next,
		SubscriptionStatus: "active",
	}}
	handler := newInstallmentHandlerWith(nil, uc, nil, nil, nil)

	methodID := uint(2)
	c, w := testutil.NewTestContext(http.MethodPost, "/academy/installments/31/settle", SettleInstallmentRequest{
		PaidDate:        "2026-03-03",
		PaymentMethodID: &methodID,
		Proof:           "pix-e2e-123",
	})
	testutil.SetAuthContext(c, 12, 3, "staff")
	testutil.SetScopeContext(c, vo.AcademyScope(3))
	testutil.SetURLParam(c, "id", "31")

	handler.Settle(c)

	assert.Equal(t, http.StatusOK, w.Code)
	cmd := uc.last
	assert.Equal(t, uint(31), cmd.InstallmentID)
	assert.Equal(t, uint(12), cmd.ActorID)
	require.NotNil(t, cmd.PaidDate)
	assert.Equal(t, "2026-03-03", biztime.FormatDate(*cmd.PaidDate))
	require.NotNil(t, cmd.PaymentMethodID)
	assert.Equal(t, uint(2), *cmd.PaymentMethodID)
	assert.Equal(t, "pix-e2e-123", cmd.Proof)
	assert.Nil(t, cmd.Notes)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var settlement dto.SettlementDTO
	require.NoError(t, json.Unmarshal(resp.Data, &settlement))
	require.NotNil(t, settlement.Successor)
	assert.Equal(t, uint(32), settlement.Successor.ID)
}

func TestInstallmentHandler_Settle_EmptyBodyDefaults(t *testing.T) {
	uc := &mockSettleInstallmentUC{result: &dto.SettlementDTO{Installment: testInstallmentDTO("paid")}}
	handler := newInstallmentHandlerWith(nil, uc, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/academy/installments/31/settle", nil)
	testutil.SetScopeContext(c, vo.AcademyScope(3))
	testutil.SetURLParam(c, "id", "31")

	handler.Settle(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, uc.last.PaidDate)
	assert.Nil(t, uc.last.PaymentMethodID)
}

func TestInstallmentHandler_Settle_AlreadyPaidConflict(t *testing.T) {
	uc := &mockSettleInstallmentUC{
		err: errors.NewConflictError("installment already settled").WithCurrent(testInstallmentDTO("paid")),
	}
	handler := newInstallmentHandlerWith(nil, uc, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/academy/installments/31/settle", nil)
	testutil.SetScopeContext(c, vo.AcademyScope(3))
	testutil.SetURLParam(c, "id", "31")

	handler.Settle(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var current dto.InstallmentDTO
	require.NoError(t, json.Unmarshal(resp.Error.Current, &current))
	assert.Equal(t, "paid", current.Status)
}

func TestInstallmentHandler_Settle_MalformedBody(t *testing.T) {
	uc := &mockSettleInstallmentUC{}
	handler := newInstallmentHandlerWith(nil, uc, nil, nil, nil)

	c, w := testutil.NewRawContext(http.MethodPost, "/academy/installments/31/settle", `{"paid_date":`)
	testutil.SetScopeContext(c, vo.AcademyScope(3))
	testutil.SetURLParam(c, "id", "31")

	handler.Settle(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, uc.called)
}

func TestInstallmentHandler_Cancel_PaidIsStateError(t *testing.T) {
	uc := &mockCancelInstallmentUC{err: errors.NewStateError("paid installments cannot be cancelled")}
	handler := newInstallmentHandlerWith(nil, nil, uc, nil, nil)

	notes := "duplicate charge"
	c, w := testutil.NewTestContext(http.MethodPost, "/academy/installments/31/cancel", CancelInstallmentRequest{Notes: &notes})
	testutil.SetScopeContext(c, vo.AcademyScope(3))
	testutil.SetURLParam(c, "id", "31")

	handler.Cancel(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, uc.last.Notes)
	assert.Equal(t, "duplicate charge", *uc.last.Notes)
}

func TestInstallmentHandler_UpdateNotes(t *testing.T) {
	uc := &mockUpdateNotesUC{result: testInstallmentDTO("paid")}
	handler := newInstallmentHandlerWith(nil, nil, nil, uc, nil)

	c, w := testutil.NewTestContext(http.MethodPatch, "/academy/installments/31/notes", UpdateInstallmentNotesRequest{Notes: "receipt sent"})
	testutil.SetScopeContext(c, vo.AcademyScope(3))
	testutil.SetURLParam(c, "id", "31")

	handler.UpdateNotes(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "receipt sent", uc.last.Notes)
}

func TestInstallmentHandler_List(t *testing.T) {
	uc := &mockListInstallmentsUC{result: &usecases.ListInstallmentsResult{
		Installments: []*dto.InstallmentDTO{testInstallmentDTO("overdue")},
		Total:        1,
		Page:         1,
		PageSize:     20,
	}}
	handler := newInstallmentHandlerWith(nil, nil, nil, nil, uc)

	c, w := testutil.NewTestContext(http.MethodGet, "/platform/installments", nil)
	testutil.SetScopeContext(c, vo.PlatformScope())
	testutil.SetQueryParams(c, map[string]string{
		"subscription_id":  "21",
		"status":           "overdue",
		"reference_period": "2026-03",
	})

	handler.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, uc.last.SubscriptionID)
	assert.Equal(t, uint(21), *uc.last.SubscriptionID)
	assert.Nil(t, uc.last.SubscriberID)
	assert.Equal(t, "overdue", uc.last.Status)
	assert.Equal(t, "2026-03", uc.last.ReferencePeriod)
}
