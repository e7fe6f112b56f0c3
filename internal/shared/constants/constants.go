package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Context keys set by the auth middleware
	ContextKeyActorID   = "actor_id"
	ContextKeyTenantID  = "tenant_id"
	ContextKeyRole      = "role"
	ContextKeyRequestID = "request_id"
	ContextKeyScope     = "billing_scope"

	// Roles issued by the identity provider
	RoleOperator = "operator"
	RoleManager  = "manager"
	RoleStaff    = "staff"

	// Database table names
	TablePlans               = "plans"
	TablePaymentMethods      = "payment_methods"
	TableSubscriptions       = "subscriptions"
	TableInstallments        = "installments"
	TableSubscriptionHistory = "subscription_history"
	TableAcademies           = "academies"
	TableMembers             = "members"

	// Layouts
	DateLayout            = "2006-01-02"
	ReferencePeriodLayout = "2006-01"

	// Billing defaults
	DefaultOverdueAfterDays  = 1
	DefaultGraceDays         = 5
	DefaultSweepCronSchedule = "0 5 * * *"
)
