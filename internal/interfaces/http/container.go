package http

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/boxdesk/boxdesk/internal/bootstrap"
	"github.com/boxdesk/boxdesk/internal/infrastructure/auth"
	"github.com/boxdesk/boxdesk/internal/infrastructure/config"
	"github.com/boxdesk/boxdesk/internal/infrastructure/permission"
	"github.com/boxdesk/boxdesk/internal/infrastructure/ratelimit"
	"github.com/boxdesk/boxdesk/internal/interfaces/http/handlers"
	billingHandlers "github.com/boxdesk/boxdesk/internal/interfaces/http/handlers/billing"
	"github.com/boxdesk/boxdesk/internal/interfaces/http/middleware"
	"github.com/boxdesk/boxdesk/internal/interfaces/http/routes"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

// Container wires the billing stack into a gin engine and owns the
// connections opened on the way.
type Container struct {
	engine  *gin.Engine
	db      *gorm.DB
	cfg     *config.Config
	log     logger.Interface
	billing *bootstrap.Billing

	enforcer *permission.Enforcer

	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	rateLimitMiddleware  *middleware.RateLimitMiddleware

	healthHandler *handlers.HealthHandler
	routeConfig   *routes.BillingRouteConfig
}

// NewContainer builds every dependency and registers the routes.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	b, err := bootstrap.NewBilling(ctx, db, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build billing stack: %w", err)
	}
	c.billing = b

	if err := c.initMiddlewares(); err != nil {
		c.Shutdown()
		return nil, err
	}
	if err := c.initHandlers(); err != nil {
		c.Shutdown()
		return nil, err
	}
	c.setupRoutes()

	return c, nil
}

func (c *Container) initMiddlewares() error {
	if c.cfg.Auth.JWT.Secret == "" {
		return fmt.Errorf("auth.jwt.secret must be set")
	}
	jwtSvc := auth.NewJWTService(c.cfg.Auth.JWT.Secret, c.cfg.Auth.JWT.Issuer)
	c.authMiddleware = middleware.NewAuthMiddleware(jwtSvc, c.log)

	enforcer, err := permission.NewEnforcer(c.db, c.log)
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	if err := enforcer.InitBillingPolicies(); err != nil {
		return fmt.Errorf("failed to seed billing policies: %w", err)
	}
	c.enforcer = enforcer
	c.permissionMiddleware = middleware.NewPermissionMiddleware(enforcer, c.log)

	if c.billing.Redis != nil && c.cfg.Server.RateLimitPerMinute > 0 {
		limiter := ratelimit.NewRedisRateLimiter(c.billing.Redis)
		c.rateLimitMiddleware = middleware.NewRateLimitMiddleware(limiter, c.cfg.Server.RateLimitPerMinute, c.log)
	} else {
		c.log.Infow("request rate limiting disabled")
	}
	return nil
}

func (c *Container) initHandlers() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	c.healthHandler = handlers.NewHealthHandler(sqlDB)

	uc := c.billing.UseCases
	c.routeConfig = &routes.BillingRouteConfig{
		PlanHandler: billingHandlers.NewPlanHandler(
			uc.CreatePlan, uc.UpdatePlan, uc.RevisePlan, uc.SetPlanOffered, uc.GetPlan, uc.ListPlans,
			c.log.Named("plan_handler"),
		),
		PaymentMethodHandler: billingHandlers.NewPaymentMethodHandler(
			uc.PaymentMethods, c.log.Named("payment_method_handler"),
		),
		SubscriptionHandler: billingHandlers.NewSubscriptionHandler(
			uc.CreateSubscription, uc.SwitchPlan, uc.RenewSubscription, uc.CancelSubscription,
			uc.GetSubscription, uc.ListSubscriptions,
			c.log.Named("subscription_handler"),
		),
		InstallmentHandler: billingHandlers.NewInstallmentHandler(
			uc.CreateInstallment, uc.SettleInstallment, uc.CancelInstallment, uc.UpdateInstallmentNotes,
			uc.ListInstallments,
			c.log.Named("installment_handler"),
		),
		ReportHandler: billingHandlers.NewReportHandler(
			uc.GetSummary, uc.ListHistory, uc.Sweep, c.log.Named("report_handler"),
		),
		AuthMiddleware:       c.authMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
		RateLimitMiddleware:  c.rateLimitMiddleware,
	}
	return nil
}

func (c *Container) setupRoutes() {
	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(middleware.CustomLogger(c.log))
	c.engine.Use(middleware.SecurityHeaders())
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))

	c.engine.GET("/health", c.healthHandler.HealthCheck)

	routes.SetupBillingRoutes(c.engine, c.routeConfig)
}

// GetEngine returns the configured gin engine.
func (c *Container) GetEngine() *gin.Engine {
	return c.engine
}

// Billing exposes the wired billing stack.
func (c *Container) Billing() *bootstrap.Billing {
	return c.billing
}

// Shutdown releases connections owned by the container. The database is
// closed by the caller.
func (c *Container) Shutdown() {
	if c.billing != nil {
		c.billing.Close()
	}
	c.log.Infow("http container shut down")
}
