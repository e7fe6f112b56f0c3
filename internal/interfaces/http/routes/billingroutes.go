package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/boxdesk/boxdesk/internal/infrastructure/permission"
	"github.com/boxdesk/boxdesk/internal/interfaces/http/handlers/billing"
	"github.com/boxdesk/boxdesk/internal/interfaces/http/middleware"
)

// BillingRouteConfig holds dependencies for the platform and academy routes.
type BillingRouteConfig struct {
	PlanHandler          *billing.PlanHandler
	PaymentMethodHandler *billing.PaymentMethodHandler
	SubscriptionHandler  *billing.SubscriptionHandler
	InstallmentHandler   *billing.InstallmentHandler
	ReportHandler        *billing.ReportHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
	// RateLimitMiddleware is nil when Redis is disabled.
	RateLimitMiddleware *middleware.RateLimitMiddleware
}

// SetupBillingRoutes mounts /platform (contracts with academies) and /academy
// (member enrollments of the caller's academy). Both levels share handlers;
// the scope middleware decides which ledger partition they touch.
func SetupBillingRoutes(engine *gin.Engine, cfg *BillingRouteConfig) {
	platform := engine.Group("/platform")
	platform.Use(cfg.AuthMiddleware.RequireAuth())
	if cfg.RateLimitMiddleware != nil {
		platform.Use(cfg.RateLimitMiddleware.LimitByActor())
	}
	platform.Use(middleware.PlatformScope())
	registerScopeRoutes(platform, "platform", "contracts", cfg)

	academy := engine.Group("/academy")
	academy.Use(cfg.AuthMiddleware.RequireAuth())
	if cfg.RateLimitMiddleware != nil {
		academy.Use(cfg.RateLimitMiddleware.LimitByActor())
	}
	academy.Use(middleware.AcademyScope())
	registerScopeRoutes(academy, "academy", "enrollments", cfg)
}

func registerScopeRoutes(group *gin.RouterGroup, level, subscriptionsPath string, cfg *BillingRouteConfig) {
	perm := func(resource, action string) gin.HandlerFunc {
		return cfg.PermissionMiddleware.RequirePermission(level+"/"+resource, action)
	}

	plans := group.Group("/plans")
	{
		plans.GET("", perm("plans", permission.ActionRead), cfg.PlanHandler.ListPlans)
		plans.GET("/:id", perm("plans", permission.ActionRead), cfg.PlanHandler.GetPlan)
		plans.POST("", perm("plans", permission.ActionWrite), cfg.PlanHandler.CreatePlan)
		plans.PUT("/:id", perm("plans", permission.ActionWrite), cfg.PlanHandler.UpdatePlan)
		plans.POST("/:id/revise", perm("plans", permission.ActionWrite), cfg.PlanHandler.RevisePlan)
		plans.PATCH("/:id/offered", perm("plans", permission.ActionWrite), cfg.PlanHandler.SetPlanOffered)
	}

	methods := group.Group("/payment-methods")
	{
		methods.GET("", perm("payment-methods", permission.ActionRead), cfg.PaymentMethodHandler.List)
		methods.GET("/:id", perm("payment-methods", permission.ActionRead), cfg.PaymentMethodHandler.Get)
		methods.POST("", perm("payment-methods", permission.ActionWrite), cfg.PaymentMethodHandler.Create)
		methods.PUT("/:id", perm("payment-methods", permission.ActionWrite), cfg.PaymentMethodHandler.Update)
		methods.PATCH("/:id/active", perm("payment-methods", permission.ActionWrite), cfg.PaymentMethodHandler.SetActive)
	}

	subs := group.Group("/" + subscriptionsPath)
	{
		subs.GET("", perm(subscriptionsPath, permission.ActionRead), cfg.SubscriptionHandler.List)
		subs.GET("/:id", perm(subscriptionsPath, permission.ActionRead), cfg.SubscriptionHandler.Get)
		subs.POST("", perm(subscriptionsPath, permission.ActionWrite), cfg.SubscriptionHandler.Create)
		subs.POST("/switch", perm(subscriptionsPath, permission.ActionWrite), cfg.SubscriptionHandler.SwitchPlan)
		subs.POST("/:id/cancel", perm(subscriptionsPath, permission.ActionWrite), cfg.SubscriptionHandler.Cancel)
		subs.POST("/:id/renew", perm(subscriptionsPath, permission.ActionWrite), cfg.SubscriptionHandler.Renew)
	}

	installments := group.Group("/installments")
	{
		installments.GET("", perm("installments", permission.ActionRead), cfg.InstallmentHandler.List)
		installments.POST("", perm("installments", permission.ActionWrite), cfg.InstallmentHandler.Create)
		installments.POST("/:id/settle", perm("installments", permission.ActionSettle), cfg.InstallmentHandler.Settle)
		installments.POST("/:id/cancel", perm("installments", permission.ActionWrite), cfg.InstallmentHandler.Cancel)
		installments.PATCH("/:id/notes", perm("installments", permission.ActionWrite), cfg.InstallmentHandler.UpdateNotes)
	}

	group.GET("/summary", perm("summary", permission.ActionRead), cfg.ReportHandler.Summary)
	group.GET("/history/:subscriber_id", perm("history", permission.ActionRead), cfg.ReportHandler.History)
	group.POST("/sweep", perm("sweep", permission.ActionSweep), cfg.ReportHandler.Sweep)
}
