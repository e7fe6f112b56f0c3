package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/application/billing/usecases"
	"github.com/boxdesk/boxdesk/internal/infrastructure/auth"
	"github.com/boxdesk/boxdesk/internal/infrastructure/permission"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/testdb"
	"github.com/boxdesk/boxdesk/internal/interfaces/http/handlers/billing"
	"github.com/boxdesk/boxdesk/internal/interfaces/http/middleware"
	"github.com/boxdesk/boxdesk/internal/shared/constants"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

type stubCreatePlan struct {
	last usecases.CreatePlanCommand
}

func (s *stubCreatePlan) Execute(ctx context.Context, cmd usecases.CreatePlanCommand) (*dto.PlanDTO, error) {
	s.last = cmd
	return &dto.PlanDTO{ID: 1, Scope: cmd.Scope.String(), Name: "Monthly"}, nil
}

type stubListPlans struct{}

func (stubListPlans) Execute(ctx context.Context, query usecases.ListPlansQuery) (*usecases.ListPlansResult, error) {
	return &usecases.ListPlansResult{Page: 1, PageSize: 20}, nil
}

type routesFixture struct {
	engine     *gin.Engine
	jwt        *auth.JWTService
	createPlan *stubCreatePlan
}

func newRoutesFixture(t *testing.T) *routesFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewLogger()

	enforcer, err := permission.NewEnforcer(testdb.Open(t), log)
	require.NoError(t, err)
	require.NoError(t, enforcer.InitBillingPolicies())

	jwt := auth.NewJWTService("routes-secret", "boxdesk")
	createPlan := &stubCreatePlan{}

	engine := gin.New()
	SetupBillingRoutes(engine, &BillingRouteConfig{
		PlanHandler:          billing.NewPlanHandler(createPlan, nil, nil, nil, nil, stubListPlans{}, log),
		PaymentMethodHandler: billing.NewPaymentMethodHandler(nil, log),
		SubscriptionHandler:  billing.NewSubscriptionHandler(nil, nil, nil, nil, nil, nil, log),
		InstallmentHandler:   billing.NewInstallmentHandler(nil, nil, nil, nil, nil, log),
		ReportHandler:        billing.NewReportHandler(nil, nil, nil, log),
		AuthMiddleware:       middleware.NewAuthMiddleware(jwt, log),
		PermissionMiddleware: middleware.NewPermissionMiddleware(enforcer, log),
	})

	return &routesFixture{engine: engine, jwt: jwt, createPlan: createPlan}
}

func (f *routesFixture) do(t *testing.T, method, path string, actorID, tenantID uint, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	token, err := f.jwt.Generate(actorID, tenantID, role, time.Hour)
	require.NoError(t, err)
	req.Header.Set(constants.HeaderAuthorization, "Bearer "+token)

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestBillingRoutes_Authorization(t *testing.T) {
	f := newRoutesFixture(t)
	plan := map[string]any{"name": "Monthly", "price": "120.00", "recurrence_days": 30}

	t.Run("manager creates academy plan in own academy", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/academy/plans", 11, 3, constants.RoleManager, plan)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "academy:3", f.createPlan.last.Scope.String())
		assert.Equal(t, "Monthly", f.createPlan.last.Name)
	})

	t.Run("staff cannot write plans", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/academy/plans", 12, 3, constants.RoleStaff, plan)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("staff can read plans", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/academy/plans", 12, 3, constants.RoleStaff, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("manager cannot reach platform", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/platform/plans", 11, 3, constants.RoleManager, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("operator creates platform plan", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/platform/plans", 1, 0, constants.RoleOperator, plan)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.True(t, f.createPlan.last.Scope.IsPlatform())
	})

	t.Run("academy routes need an academy token", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/academy/plans", 1, 0, constants.RoleManager, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("staff cannot sweep", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/academy/sweep", 12, 3, constants.RoleStaff, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestBillingRoutes_RequiresToken(t *testing.T) {
	f := newRoutesFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/academy/plans", nil)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
