package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
)

func TestNewSubscription_InitialStatus(t *testing.T) {
	member := newTestSubscription(t, vo.AcademyScope(7), 1, newTestPlan(t, vo.AcademyScope(7), 1, "100.00", 30), day(time.January, 1))
	assert.Equal(t, vo.SubscriptionActive, member.Status())
	assert.Equal(t, day(time.January, 31), member.ExpirationDate())

	contract := newTestSubscription(t, vo.PlatformScope(), 2, newTestPlan(t, vo.PlatformScope(), 2, "300.00", 30), day(time.January, 1))
	assert.Equal(t, vo.SubscriptionPending, contract.Status())
}

func TestNewSubscription_LinksPredecessor(t *testing.T) {
	scope := vo.AcademyScope(7)
	prev := newTestSubscription(t, scope, 1, newTestPlan(t, scope, 1, "100.00", 30), day(time.January, 1))
	expires := day(time.March, 1)

	next, err := NewSubscription(NewSubscriptionParams{
		Scope:          scope,
		SubscriberID:   42,
		Plan:           newTestPlan(t, scope, 2, "150.00", 30),
		StartDate:      day(time.February, 1),
		ExpirationDate: &expires,
		Predecessor:    prev,
		ChangeReason:   vo.ReasonUpgrade,
		Now:            now,
	})
	require.NoError(t, err)

	require.NotNil(t, next.PredecessorID())
	assert.Equal(t, uint(1), *next.PredecessorID())
	assert.Equal(t, uint(1), *next.PredecessorPlanID())
	assert.Equal(t, expires, next.ExpirationDate())
}

func TestNewSubscription_Validation(t *testing.T) {
	plan := newTestPlan(t, vo.AcademyScope(7), 1, "100.00", 30)

	_, err := NewSubscription(NewSubscriptionParams{Scope: vo.Scope{}, SubscriberID: 1, Plan: plan, StartDate: now, ChangeReason: vo.ReasonNew})
	assert.ErrorIs(t, err, vo.ErrInvalidScope)

	_, err = NewSubscription(NewSubscriptionParams{Scope: vo.AcademyScope(7), Plan: plan, StartDate: now, ChangeReason: vo.ReasonNew})
	assert.ErrorIs(t, err, ErrInvalidSubscription)

	_, err = NewSubscription(NewSubscriptionParams{Scope: vo.AcademyScope(7), SubscriberID: 1, Plan: plan, StartDate: now, ChangeReason: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidSubscription)
}

func TestSubscription_Lifecycle(t *testing.T) {
	scope := vo.AcademyScope(7)
	sub := newTestSubscription(t, scope, 1, newTestPlan(t, scope, 1, "100.00", 30), day(time.January, 1))

	require.NotNil(t, sub.OpenKey())
	assert.Equal(t, "member:7:42", *sub.OpenKey())

	require.NoError(t, sub.MarkOverdue(now))
	require.NoError(t, sub.Activate(now))
	require.NoError(t, sub.Cancel(9, day(time.January, 10), "moved away", now))

	assert.Equal(t, vo.SubscriptionCancelled, sub.Status())
	assert.Nil(t, sub.OpenKey())
	assert.Equal(t, "moved away", sub.CloseReason())
	require.NotNil(t, sub.ClosedOn())
	assert.Equal(t, day(time.January, 10), *sub.ClosedOn())

	assert.ErrorIs(t, sub.Cancel(9, now, "", now), ErrSubscriptionTerminal)
	assert.ErrorIs(t, sub.Finish(9, now, now), ErrSubscriptionTerminal)
}

func TestSubscription_ActivateFromActiveIsRejected(t *testing.T) {
	scope := vo.AcademyScope(7)
	sub := newTestSubscription(t, scope, 1, newTestPlan(t, scope, 1, "100.00", 30), day(time.January, 1))

	assert.ErrorIs(t, sub.Activate(now), ErrInvalidStatusChange)
}

func TestSubscription_ExtendExpiration(t *testing.T) {
	scope := vo.AcademyScope(7)
	sub := newTestSubscription(t, scope, 1, newTestPlan(t, scope, 1, "100.00", 30), day(time.January, 1))

	assert.False(t, sub.ExtendExpiration(day(time.January, 20), now))
	assert.Equal(t, day(time.January, 31), sub.ExpirationDate())

	assert.True(t, sub.ExtendExpiration(day(time.March, 1), now))
	assert.Equal(t, day(time.March, 1), sub.ExpirationDate())
}
