package billing

import (
	"fmt"
	"time"

	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
)

// Subscription links a subscriber to a plan. It generalizes the platform
// contract (tenant subscriber) and the member enrollment.
type Subscription struct {
	id                uint
	scope             vo.Scope
	subscriberID      uint
	planID            uint
	startDate         time.Time
	expirationDate    time.Time
	status            vo.SubscriptionStatus
	predecessorID     *uint
	predecessorPlanID *uint
	changeReason      vo.ChangeReason
	notes             string
	createdBy         uint
	closedBy          *uint
	closedOn          *time.Time
	closeReason       string
	version           int
	createdAt         time.Time
	updatedAt         time.Time
}

// NewSubscriptionParams carries everything needed to open a subscription.
type NewSubscriptionParams struct {
	Scope        vo.Scope
	SubscriberID uint
	Plan         *Plan
	StartDate    time.Time
	// ExpirationDate overrides start + plan recurrence (contract renewals).
	ExpirationDate *time.Time
	Predecessor    *Subscription
	ChangeReason   vo.ChangeReason
	Notes          string
	CreatedBy      uint
	Now            time.Time
}

// NewSubscription opens a subscription. Member enrollments start active;
// platform contracts stay pending until their first settlement.
func NewSubscription(p NewSubscriptionParams) (*Subscription, error) {
	if err := p.Scope.Validate(); err != nil {
		return nil, err
	}
	if p.SubscriberID == 0 {
		return nil, fmt.Errorf("%w: subscriber ID is required", ErrInvalidSubscription)
	}
	if p.Plan == nil || p.Plan.ID() == 0 {
		return nil, fmt.Errorf("%w: plan is required", ErrInvalidSubscription)
	}
	if p.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", ErrInvalidSubscription)
	}
	if !vo.ValidChangeReasons[p.ChangeReason] {
		return nil, fmt.Errorf("%w: unknown change reason %q", ErrInvalidSubscription, p.ChangeReason)
	}

	start := biztime.DateOf(p.StartDate)
	expiration := biztime.AddDays(start, p.Plan.RecurrenceDays())
	if p.ExpirationDate != nil {
		expiration = biztime.DateOf(*p.ExpirationDate)
	}
	if expiration.Before(start) {
		return nil, fmt.Errorf("%w: expiration precedes start", ErrInvalidSubscription)
	}

	status := vo.SubscriptionActive
	if p.Scope.IsPlatform() {
		status = vo.SubscriptionPending
	}

	s := &Subscription{
		scope:          p.Scope,
		subscriberID:   p.SubscriberID,
		planID:         p.Plan.ID(),
		startDate:      start,
		expirationDate: expiration,
		status:         status,
		changeReason:   p.ChangeReason,
		notes:          p.Notes,
		createdBy:      p.CreatedBy,
		version:        1,
		createdAt:      p.Now,
		updatedAt:      p.Now,
	}
	if p.Predecessor != nil {
		predID, predPlan := p.Predecessor.ID(), p.Predecessor.PlanID()
		s.predecessorID = &predID
		s.predecessorPlanID = &predPlan
	}
	return s, nil
}

// ReconstructSubscription rebuilds a subscription from persistence
func ReconstructSubscription(
	id uint,
	scope vo.Scope,
	subscriberID, planID uint,
	startDate, expirationDate time.Time,
	status vo.SubscriptionStatus,
	predecessorID, predecessorPlanID *uint,
	changeReason vo.ChangeReason,
	notes string,
	createdBy uint,
	closedBy *uint,
	closedOn *time.Time,
	closeReason string,
	version int,
	createdAt, updatedAt time.Time,
) (*Subscription, error) {
	if id == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !vo.ValidSubscriptionStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", status)
	}
	return &Subscription{
		id:                id,
		scope:             scope,
		subscriberID:      subscriberID,
		planID:            planID,
		startDate:         startDate,
		expirationDate:    expirationDate,
		status:            status,
		predecessorID:     predecessorID,
		predecessorPlanID: predecessorPlanID,
		changeReason:      changeReason,
		notes:             notes,
		createdBy:         createdBy,
		closedBy:          closedBy,
		closedOn:          closedOn,
		closeReason:       closeReason,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}, nil
}

func (s *Subscription) ID() uint                      { return s.id }
func (s *Subscription) Scope() vo.Scope               { return s.scope }
func (s *Subscription) SubscriberID() uint            { return s.subscriberID }
func (s *Subscription) PlanID() uint                  { return s.planID }
func (s *Subscription) StartDate() time.Time          { return s.startDate }
func (s *Subscription) ExpirationDate() time.Time     { return s.expirationDate }
func (s *Subscription) Status() vo.SubscriptionStatus { return s.status }
func (s *Subscription) PredecessorID() *uint          { return s.predecessorID }
func (s *Subscription) PredecessorPlanID() *uint      { return s.predecessorPlanID }
func (s *Subscription) ChangeReason() vo.ChangeReason { return s.changeReason }
func (s *Subscription) Notes() string                 { return s.notes }
func (s *Subscription) CreatedBy() uint               { return s.createdBy }
func (s *Subscription) ClosedBy() *uint               { return s.closedBy }
func (s *Subscription) ClosedOn() *time.Time          { return s.closedOn }
func (s *Subscription) CloseReason() string           { return s.closeReason }
func (s *Subscription) Version() int                  { return s.version }
func (s *Subscription) CreatedAt() time.Time          { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time          { return s.updatedAt }
func (s *Subscription) IsTerminal() bool              { return s.status.IsTerminal() }

// SetID sets the subscription ID after persistence
func (s *Subscription) SetID(id uint) {
	s.id = id
}

// OpenKey is set while the subscription holds the subscriber's single open slot.
func (s *Subscription) OpenKey() *string {
	if s.status.IsTerminal() {
		return nil
	}
	key := s.scope.OpenKey(s.subscriberID)
	return &key
}

func (s *Subscription) transition(target vo.SubscriptionStatus, now time.Time) error {
	if s.status.IsTerminal() {
		return ErrSubscriptionTerminal
	}
	if !s.status.CanTransitionTo(target) {
		return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusChange, s.status, target)
	}
	s.status = target
	s.version++
	s.updatedAt = now
	return nil
}

func (s *Subscription) close(target vo.SubscriptionStatus, actorID *uint, on time.Time, reason string, now time.Time) error {
	if err := s.transition(target, now); err != nil {
		return err
	}
	day := biztime.DateOf(on)
	s.closedBy = actorID
	s.closedOn = &day
	s.closeReason = reason
	return nil
}

// Cancel ends the subscription. Only legal while non-terminal.
func (s *Subscription) Cancel(actorID uint, on time.Time, reason string, now time.Time) error {
	return s.close(vo.SubscriptionCancelled, &actorID, on, reason, now)
}

// Block cancels the subscription on behalf of the delinquency policy.
func (s *Subscription) Block(on time.Time, daysLate int, now time.Time) error {
	return s.close(vo.SubscriptionCancelled, nil, on, fmt.Sprintf("blocked: %d days late", daysLate), now)
}

// Finish closes the subscription because a successor took its place.
func (s *Subscription) Finish(actorID uint, on time.Time, now time.Time) error {
	return s.close(vo.SubscriptionFinished, &actorID, on, "superseded", now)
}

// MarkOverdue flags unpaid late installments on an open subscription.
func (s *Subscription) MarkOverdue(now time.Time) error {
	return s.transition(vo.SubscriptionOverdue, now)
}

// Activate clears a pending or overdue status.
func (s *Subscription) Activate(now time.Time) error {
	return s.transition(vo.SubscriptionActive, now)
}

// ExtendExpiration moves the expiration date forward; earlier dates are ignored.
func (s *Subscription) ExtendExpiration(to time.Time, now time.Time) bool {
	to = biztime.DateOf(to)
	if !to.After(s.expirationDate) {
		return false
	}
	s.expirationDate = to
	s.version++
	s.updatedAt = now
	return true
}
