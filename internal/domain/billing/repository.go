package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
)

// Lookups return (nil, nil) when the record does not exist in the given scope.

type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	Update(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, scope vo.Scope, id uint) (*Plan, error)
	ListOffered(ctx context.Context, scope vo.Scope) ([]*Plan, error)
	List(ctx context.Context, scope vo.Scope, filter PlanFilter) ([]*Plan, int64, error)
}

type PlanFilter struct {
	IncludeHistorical bool
	Page              int
	PageSize          int
}

type PaymentMethodRepository interface {
	Create(ctx context.Context, method *PaymentMethod) error
	Update(ctx context.Context, method *PaymentMethod) error
	GetByID(ctx context.Context, tenantID, id uint) (*PaymentMethod, error)
	List(ctx context.Context, tenantID uint, activeOnly bool) ([]*PaymentMethod, error)
}

type SubscriptionRepository interface {
	// Create fails with a duplicate-key error when the subscriber already holds an open subscription.
	Create(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, scope vo.Scope, id uint) (*Subscription, error)
	// GetOpenBySubscriber returns the subscriber's single non-terminal subscription.
	GetOpenBySubscriber(ctx context.Context, scope vo.Scope, subscriberID uint) (*Subscription, error)
	// GetLatestBySubscriber returns the most recently created subscription in any status.
	GetLatestBySubscriber(ctx context.Context, scope vo.Scope, subscriberID uint) (*Subscription, error)
	List(ctx context.Context, scope vo.Scope, filter SubscriptionFilter) ([]*Subscription, int64, error)
	CountOpenByPlan(ctx context.Context, planID uint) (int64, error)
	CountByStatus(ctx context.Context, scope vo.Scope) (map[vo.SubscriptionStatus]int64, error)
	// ListOverdueSubscribers returns subscribers whose open subscription is overdue.
	ListOverdueSubscribers(ctx context.Context, scope *vo.Scope) ([]SubscriberRef, error)
}

type SubscriptionFilter struct {
	SubscriberID *uint
	PlanID       *uint
	Status       *vo.SubscriptionStatus
	Page         int
	PageSize     int
}

type InstallmentRepository interface {
	// Create fails with a duplicate-key error when the subscription already has an installment on that due date.
	Create(ctx context.Context, inst *Installment) error
	Update(ctx context.Context, inst *Installment) error
	GetByID(ctx context.Context, scope vo.Scope, id uint) (*Installment, error)
	GetBySubscriptionAndDueDate(ctx context.Context, subscriptionID uint, dueDate time.Time) (*Installment, error)
	ListBySubscription(ctx context.Context, subscriptionID uint) ([]*Installment, error)
	ListUnpaidBySubscriber(ctx context.Context, scope vo.Scope, subscriberID uint) ([]*Installment, error)
	List(ctx context.Context, scope vo.Scope, filter InstallmentFilter) ([]*Installment, int64, error)
	// MarkOverdue flips awaiting installments due on or before cutoff to overdue. A nil scope means every scope.
	MarkOverdue(ctx context.Context, scope *vo.Scope, cutoff time.Time) (int64, error)
	// ListLateSubscribers returns subscribers holding an unpaid installment due before today.
	ListLateSubscribers(ctx context.Context, scope *vo.Scope, today time.Time) ([]SubscriberRef, error)
	// CancelAwaitingFrom voids a subscription's awaiting installments due on or after from.
	CancelAwaitingFrom(ctx context.Context, subscriptionID uint, from time.Time, actorID uint) (int64, error)
	Summarize(ctx context.Context, scope vo.Scope, filter SummaryFilter) (*InstallmentSummary, error)
}

type InstallmentFilter struct {
	SubscriptionID  *uint
	SubscriberID    *uint
	Status          *vo.InstallmentStatus
	ReferencePeriod string
	Page            int
	PageSize        int
}

type SummaryFilter struct {
	FromPeriod string
	ToPeriod   string
}

// InstallmentTotals aggregates installments sharing a status or a reference period.
type InstallmentTotals struct {
	Key   string
	Count int64
	Gross decimal.Decimal
	Net   decimal.Decimal
}

type InstallmentSummary struct {
	ByStatus []InstallmentTotals
	ByPeriod []InstallmentTotals
}

type HistoryRepository interface {
	Append(ctx context.Context, entry *HistoryEntry) error
	ListBySubscriber(ctx context.Context, scope vo.Scope, subscriberID uint) ([]*HistoryEntry, error)
}

// SubscriberRef identifies a subscriber across scopes.
type SubscriberRef struct {
	Scope        vo.Scope
	SubscriberID uint
}
