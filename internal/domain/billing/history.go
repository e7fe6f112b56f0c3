package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
)

// HistoryEntry is an append-only record of a subscription-creating event.
// There is no mutator: entries are written once and never updated or deleted.
type HistoryEntry struct {
	id             uint
	scope          vo.Scope
	subscriberID   uint
	subscriptionID uint
	previousPlanID *uint
	newPlanID      uint
	effectiveFrom  time.Time
	effectiveTo    time.Time
	amount         decimal.Decimal
	reason         vo.ChangeReason
	planName       string
	notes          string
	actorID        uint
	recordedAt     time.Time
}

// NewHistoryEntry records the opening of sub on plan at the given charged amount.
func NewHistoryEntry(sub *Subscription, plan *Plan, amount decimal.Decimal, actorID uint, now time.Time) (*HistoryEntry, error) {
	if sub == nil || sub.ID() == 0 {
		return nil, fmt.Errorf("%w: subscription must be persisted first", ErrHistoryEntryIncomplete)
	}
	if plan == nil || plan.ID() != sub.PlanID() {
		return nil, fmt.Errorf("%w: plan does not match subscription", ErrHistoryEntryIncomplete)
	}
	return &HistoryEntry{
		scope:          sub.Scope(),
		subscriberID:   sub.SubscriberID(),
		subscriptionID: sub.ID(),
		previousPlanID: sub.PredecessorPlanID(),
		newPlanID:      sub.PlanID(),
		effectiveFrom:  sub.StartDate(),
		effectiveTo:    sub.ExpirationDate(),
		amount:         amount,
		reason:         sub.ChangeReason(),
		planName:       plan.Name(),
		notes:          sub.Notes(),
		actorID:        actorID,
		recordedAt:     now,
	}, nil
}

// ReconstructHistoryEntry rebuilds a history entry from persistence
func ReconstructHistoryEntry(
	id uint,
	scope vo.Scope,
	subscriberID, subscriptionID uint,
	previousPlanID *uint,
	newPlanID uint,
	effectiveFrom, effectiveTo time.Time,
	amount decimal.Decimal,
	reason vo.ChangeReason,
	planName, notes string,
	actorID uint,
	recordedAt time.Time,
) *HistoryEntry {
	return &HistoryEntry{
		id:             id,
		scope:          scope,
		subscriberID:   subscriberID,
		subscriptionID: subscriptionID,
		previousPlanID: previousPlanID,
		newPlanID:      newPlanID,
		effectiveFrom:  effectiveFrom,
		effectiveTo:    effectiveTo,
		amount:         amount,
		reason:         reason,
		planName:       planName,
		notes:          notes,
		actorID:        actorID,
		recordedAt:     recordedAt,
	}
}

func (h *HistoryEntry) ID() uint                 { return h.id }
func (h *HistoryEntry) Scope() vo.Scope          { return h.scope }
func (h *HistoryEntry) SubscriberID() uint       { return h.subscriberID }
func (h *HistoryEntry) SubscriptionID() uint     { return h.subscriptionID }
func (h *HistoryEntry) PreviousPlanID() *uint    { return h.previousPlanID }
func (h *HistoryEntry) NewPlanID() uint          { return h.newPlanID }
func (h *HistoryEntry) EffectiveFrom() time.Time { return h.effectiveFrom }
func (h *HistoryEntry) EffectiveTo() time.Time   { return h.effectiveTo }
func (h *HistoryEntry) Amount() decimal.Decimal  { return h.amount }
func (h *HistoryEntry) Reason() vo.ChangeReason  { return h.reason }
func (h *HistoryEntry) PlanName() string         { return h.planName }
func (h *HistoryEntry) Notes() string            { return h.notes }
func (h *HistoryEntry) ActorID() uint            { return h.actorID }
func (h *HistoryEntry) RecordedAt() time.Time    { return h.recordedAt }

func (h *HistoryEntry) SetID(id uint) {
	h.id = id
}
