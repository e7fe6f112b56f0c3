package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
)

// SubscriberDirectory adapts the academy and member registries owned by other
// parts of the platform. Billing only checks existence, reads contact data
// and refreshes the billing fields cached on the subscriber record.
type SubscriberDirectory interface {
	Exists(ctx context.Context, scope vo.Scope, subscriberID uint) (bool, error)
	Contact(ctx context.Context, scope vo.Scope, subscriberID uint) (*SubscriberContact, error)
	UpdateBillingSnapshot(ctx context.Context, scope vo.Scope, subscriberID uint, snapshot BillingSnapshot) error
}

type SubscriberContact struct {
	Name  string
	Email string
}

// BillingSnapshot mirrors the subscriber's current subscription. A nil
// PlanID clears the snapshot once no subscription is open.
type BillingSnapshot struct {
	PlanID    *uint
	Status    string
	ExpiresOn *time.Time
}

// SnapshotOf builds the snapshot for the subscriber's open subscription, or
// for its last one when none is open.
func SnapshotOf(sub *Subscription) BillingSnapshot {
	if sub == nil {
		return BillingSnapshot{}
	}
	planID := sub.PlanID()
	expires := sub.ExpirationDate()
	return BillingSnapshot{
		PlanID:    &planID,
		Status:    sub.Status().String(),
		ExpiresOn: &expires,
	}
}

// SubscriberLocker serializes ledger mutations per subscriber.
type SubscriberLocker interface {
	// Acquire blocks until the key is held or ctx is done. The returned func releases it.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// DelinquencyNotice tells a subscriber the sweep moved its subscription to
// overdue or blocked it.
type DelinquencyNotice struct {
	Scope        vo.Scope
	SubscriberID uint
	Contact      SubscriberContact
	Status       vo.SubscriptionStatus
	DaysLate     int
	Outstanding  decimal.Decimal
}

type DelinquencyNotifier interface {
	NotifyDelinquency(ctx context.Context, notice DelinquencyNotice) error
}
