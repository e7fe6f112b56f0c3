package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
)

// Installment is one billing event of a subscription.
type Installment struct {
	id              uint
	scope           vo.Scope
	subscriptionID  uint
	subscriberID    uint
	amount          decimal.Decimal
	netAmount       *decimal.Decimal
	discountAmount  *decimal.Decimal
	dueDate         time.Time
	paidDate        *time.Time
	status          vo.InstallmentStatus
	paymentMethodID *uint
	proof           string
	notes           string
	settledBy       *uint
	successorID     *uint
	referencePeriod string
	createdAt       time.Time
	updatedAt       time.Time
}

// NewInstallment creates an awaiting installment whose reference period is the due date's year-month.
func NewInstallment(scope vo.Scope, subscriptionID, subscriberID uint, dueDate time.Time, amount decimal.Decimal, now time.Time) (*Installment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if subscriptionID == 0 || subscriberID == 0 {
		return nil, fmt.Errorf("%w: subscription and subscriber are required", ErrInvalidInstallment)
	}
	if dueDate.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", ErrInvalidInstallment)
	}
	if err := vo.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstallment, err)
	}

	due := biztime.DateOf(dueDate)
	return &Installment{
		scope:           scope,
		subscriptionID:  subscriptionID,
		subscriberID:    subscriberID,
		amount:          amount,
		dueDate:         due,
		status:          vo.InstallmentAwaiting,
		referencePeriod: biztime.YearMonth(due),
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructInstallment rebuilds an installment from persistence
func ReconstructInstallment(
	id uint,
	scope vo.Scope,
	subscriptionID, subscriberID uint,
	amount decimal.Decimal,
	netAmount, discountAmount *decimal.Decimal,
	dueDate time.Time,
	paidDate *time.Time,
	status vo.InstallmentStatus,
	paymentMethodID *uint,
	proof, notes string,
	settledBy, successorID *uint,
	referencePeriod string,
	createdAt, updatedAt time.Time,
) (*Installment, error) {
	if id == 0 {
		return nil, fmt.Errorf("installment ID cannot be zero")
	}
	if !vo.ValidInstallmentStatuses[status] {
		return nil, fmt.Errorf("invalid installment status: %s", status)
	}
	return &Installment{
		id:              id,
		scope:           scope,
		subscriptionID:  subscriptionID,
		subscriberID:    subscriberID,
		amount:          amount,
		netAmount:       netAmount,
		discountAmount:  discountAmount,
		dueDate:         dueDate,
		paidDate:        paidDate,
		status:          status,
		paymentMethodID: paymentMethodID,
		proof:           proof,
		notes:           notes,
		settledBy:       settledBy,
		successorID:     successorID,
		referencePeriod: referencePeriod,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}, nil
}

func (i *Installment) ID() uint                         { return i.id }
func (i *Installment) Scope() vo.Scope                  { return i.scope }
func (i *Installment) SubscriptionID() uint             { return i.subscriptionID }
func (i *Installment) SubscriberID() uint               { return i.subscriberID }
func (i *Installment) Amount() decimal.Decimal          { return i.amount }
func (i *Installment) NetAmount() *decimal.Decimal      { return i.netAmount }
func (i *Installment) DiscountAmount() *decimal.Decimal { return i.discountAmount }
func (i *Installment) DueDate() time.Time               { return i.dueDate }
func (i *Installment) PaidDate() *time.Time             { return i.paidDate }
func (i *Installment) Status() vo.InstallmentStatus     { return i.status }
func (i *Installment) PaymentMethodID() *uint           { return i.paymentMethodID }
func (i *Installment) Proof() string                    { return i.proof }
func (i *Installment) Notes() string                    { return i.notes }
func (i *Installment) SettledBy() *uint                 { return i.settledBy }
func (i *Installment) SuccessorID() *uint               { return i.successorID }
func (i *Installment) ReferencePeriod() string          { return i.referencePeriod }
func (i *Installment) CreatedAt() time.Time             { return i.createdAt }
func (i *Installment) UpdatedAt() time.Time             { return i.updatedAt }

// SetID sets the installment ID after persistence
func (i *Installment) SetID(id uint) {
	i.id = id
}

// Settlement holds the optional fields recorded when an installment is paid.
type Settlement struct {
	ActorID       uint
	PaidDate      time.Time
	PaymentMethod *PaymentMethod
	Proof         string
	Notes         *string
}

// Settle marks the installment paid and computes its net amount.
// A paid or cancelled installment is left untouched.
func (i *Installment) Settle(s Settlement, now time.Time) error {
	if err := i.ensureOpen(); err != nil {
		return err
	}

	discountPercent := decimal.Zero
	if s.PaymentMethod != nil {
		if !s.PaymentMethod.IsActive() {
			return ErrPaymentMethodInactive
		}
		discountPercent = s.PaymentMethod.DiscountPercent()
		methodID := s.PaymentMethod.ID()
		i.paymentMethodID = &methodID
	}

	net, discount := vo.ApplyDiscount(i.amount, discountPercent)
	paid := biztime.DateOf(s.PaidDate)
	actor := s.ActorID

	i.status = vo.InstallmentPaid
	i.netAmount = &net
	i.discountAmount = &discount
	i.paidDate = &paid
	i.settledBy = &actor
	i.proof = s.Proof
	if s.Notes != nil {
		i.notes = *s.Notes
	}
	i.updatedAt = now
	return nil
}

// Cancel voids an unpaid installment.
func (i *Installment) Cancel(actorID uint, notes *string, now time.Time) error {
	if err := i.ensureOpen(); err != nil {
		return err
	}
	i.status = vo.InstallmentCancelled
	i.settledBy = &actorID
	if notes != nil {
		i.notes = *notes
	}
	i.updatedAt = now
	return nil
}

func (i *Installment) ensureOpen() error {
	switch i.status {
	case vo.InstallmentPaid:
		return ErrInstallmentPaid
	case vo.InstallmentCancelled:
		return ErrInstallmentCancelled
	}
	return nil
}

// UpdateNotes is the only change allowed after an installment is closed.
func (i *Installment) UpdateNotes(notes string, now time.Time) {
	i.notes = notes
	i.updatedAt = now
}

// LinkSuccessor records the installment generated after this one was paid.
func (i *Installment) LinkSuccessor(successorID uint, now time.Time) {
	i.successorID = &successorID
	i.updatedAt = now
}

// DaysLate is the number of days an unpaid installment is past its due date.
func (i *Installment) DaysLate(today time.Time) int {
	if !i.status.IsUnpaid() {
		return 0
	}
	days := biztime.DaysBetween(i.dueDate, today)
	if days < 0 {
		return 0
	}
	return days
}

// Covers reports whether a paid installment's billing window [due, due+recurrenceDays) contains day.
func (i *Installment) Covers(day time.Time, recurrenceDays int) bool {
	if i.status != vo.InstallmentPaid {
		return false
	}
	day = biztime.DateOf(day)
	end := biztime.AddDays(i.dueDate, recurrenceDays)
	return !day.Before(i.dueDate) && day.Before(end)
}

// NextDueDate is the due date of the installment that follows this one.
func (i *Installment) NextDueDate(recurrenceDays int) time.Time {
	return biztime.AddDays(i.dueDate, recurrenceDays)
}
