package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
)

var now = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

func day(month time.Month, d int) time.Time {
	return biztime.Date(2024, month, d)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestPlan(t *testing.T, scope vo.Scope, id uint, price string, recurrenceDays int) *Plan {
	t.Helper()
	p, err := NewPlan(scope, "Monthly", PlanTerms{Price: money(price), RecurrenceDays: recurrenceDays}, "", now)
	require.NoError(t, err)
	p.SetID(id)
	return p
}

func newTestSubscription(t *testing.T, scope vo.Scope, id uint, plan *Plan, start time.Time) *Subscription {
	t.Helper()
	s, err := NewSubscription(NewSubscriptionParams{
		Scope:        scope,
		SubscriberID: 42,
		Plan:         plan,
		StartDate:    start,
		ChangeReason: vo.ReasonNew,
		CreatedBy:    1,
		Now:          now,
	})
	require.NoError(t, err)
	s.SetID(id)
	return s
}

func newTestInstallment(t *testing.T, sub *Subscription, id uint, due time.Time, amount string) *Installment {
	t.Helper()
	i, err := NewInstallment(sub.Scope(), sub.ID(), sub.SubscriberID(), due, money(amount), now)
	require.NoError(t, err)
	i.SetID(id)
	return i
}
