package billing

import (
	"time"

	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
)

// ClassifyChange decides why a subscription is being opened, comparing the
// requested plan with the plan of the subscriber's previous subscription.
func ClassifyChange(previous *Subscription, previousPlan, next *Plan) vo.ChangeReason {
	if previous == nil {
		return vo.ReasonNew
	}
	if previous.PlanID() == next.ID() {
		return vo.ReasonRenewal
	}
	if previousPlan != nil && next.Price().GreaterThan(previousPlan.Price()) {
		return vo.ReasonUpgrade
	}
	return vo.ReasonDowngrade
}

// IsMidCycle reports whether moving current onto requestedPlanID would cut
// short a period the subscriber already paid for: the plan differs, the
// subscription has not expired and a paid installment still covers today.
func IsMidCycle(current *Subscription, currentPlan *Plan, installments []*Installment, requestedPlanID uint, today time.Time) bool {
	if current == nil || current.IsTerminal() || current.PlanID() == requestedPlanID {
		return false
	}
	if current.ExpirationDate().Before(today) {
		return false
	}
	recurrence := 0
	if currentPlan != nil {
		recurrence = currentPlan.RecurrenceDays()
	}
	for _, inst := range installments {
		if inst.Covers(today, recurrence) {
			return true
		}
	}
	return false
}

// DelinquencyPolicy holds the thresholds of the delinquency cascade.
type DelinquencyPolicy struct {
	// OverdueAfterDays is the lateness at which an installment and its subscription become overdue.
	OverdueAfterDays int
	// GraceDays is the lateness at which the subscription is cancelled (blocked).
	GraceDays int
}

// DefaultDelinquencyPolicy returns the thresholds observed in production: 1 and 5 days.
func DefaultDelinquencyPolicy() DelinquencyPolicy {
	return DelinquencyPolicy{OverdueAfterDays: 1, GraceDays: 5}
}

// Normalize fills unset thresholds with the defaults.
func (p DelinquencyPolicy) Normalize() DelinquencyPolicy {
	def := DefaultDelinquencyPolicy()
	if p.OverdueAfterDays <= 0 {
		p.OverdueAfterDays = def.OverdueAfterDays
	}
	if p.GraceDays <= 0 {
		p.GraceDays = def.GraceDays
	}
	return p
}

// OverdueCutoff is the latest due date at which an awaiting installment is
// overdue on today.
func (p DelinquencyPolicy) OverdueCutoff(today time.Time) time.Time {
	return biztime.AddDays(today, -p.Normalize().OverdueAfterDays)
}

// Verdict is the outcome of evaluating a subscriber's delinquency.
type Verdict struct {
	Target   vo.SubscriptionStatus
	DaysLate int
}

// Evaluate computes the status the current subscription should have given
// the subscriber's unpaid installments. hasPaid tells whether the current
// subscription has at least one settled installment, which is what moves a
// pending platform contract to active. ok is false when nothing should change.
func (p DelinquencyPolicy) Evaluate(current *Subscription, unpaid []*Installment, hasPaid bool, today time.Time) (Verdict, bool) {
	if current == nil || current.IsTerminal() {
		return Verdict{}, false
	}
	p = p.Normalize()

	daysLate := 0
	for _, inst := range unpaid {
		if d := inst.DaysLate(today); d > daysLate {
			daysLate = d
		}
	}

	var target vo.SubscriptionStatus
	switch {
	case daysLate >= p.GraceDays:
		target = vo.SubscriptionCancelled
	case daysLate >= p.OverdueAfterDays:
		target = vo.SubscriptionOverdue
	case current.Status() == vo.SubscriptionPending && !hasPaid:
		target = vo.SubscriptionPending
	default:
		target = vo.SubscriptionActive
	}

	if target == current.Status() {
		return Verdict{}, false
	}
	return Verdict{Target: target, DaysLate: daysLate}, true
}

// Apply moves the subscription to the verdict's target status.
func (v Verdict) Apply(sub *Subscription, today, now time.Time) error {
	switch v.Target {
	case vo.SubscriptionCancelled:
		return sub.Block(today, v.DaysLate, now)
	case vo.SubscriptionOverdue:
		return sub.MarkOverdue(now)
	case vo.SubscriptionActive:
		return sub.Activate(now)
	}
	return nil
}
