package valueobjects

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionOverdue   SubscriptionStatus = "overdue"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionFinished  SubscriptionStatus = "finished"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionCancelled || s == SubscriptionFinished
}

func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	transitions := map[SubscriptionStatus][]SubscriptionStatus{
		SubscriptionPending:   {SubscriptionActive, SubscriptionOverdue, SubscriptionCancelled, SubscriptionFinished},
		SubscriptionActive:    {SubscriptionOverdue, SubscriptionCancelled, SubscriptionFinished},
		SubscriptionOverdue:   {SubscriptionActive, SubscriptionCancelled, SubscriptionFinished},
		SubscriptionCancelled: {},
		SubscriptionFinished:  {},
	}

	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

var ValidSubscriptionStatuses = map[SubscriptionStatus]bool{
	SubscriptionPending:   true,
	SubscriptionActive:    true,
	SubscriptionOverdue:   true,
	SubscriptionCancelled: true,
	SubscriptionFinished:  true,
}

// NonTerminalSubscriptionStatuses lists the states that hold the subscriber's open slot.
var NonTerminalSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionPending,
	SubscriptionActive,
	SubscriptionOverdue,
}

// InstallmentStatus is the settlement state of an installment.
type InstallmentStatus string

const (
	InstallmentAwaiting  InstallmentStatus = "awaiting"
	InstallmentPaid      InstallmentStatus = "paid"
	InstallmentOverdue   InstallmentStatus = "overdue"
	InstallmentCancelled InstallmentStatus = "cancelled"
)

func (s InstallmentStatus) String() string {
	return string(s)
}

// IsUnpaid reports whether the installment still represents an open charge.
func (s InstallmentStatus) IsUnpaid() bool {
	return s == InstallmentAwaiting || s == InstallmentOverdue
}

// IsClosed reports whether only notes may still change.
func (s InstallmentStatus) IsClosed() bool {
	return s == InstallmentPaid || s == InstallmentCancelled
}

var ValidInstallmentStatuses = map[InstallmentStatus]bool{
	InstallmentAwaiting:  true,
	InstallmentPaid:      true,
	InstallmentOverdue:   true,
	InstallmentCancelled: true,
}

// ChangeReason classifies why a subscription was created.
type ChangeReason string

const (
	ReasonNew       ChangeReason = "new"
	ReasonRenewal   ChangeReason = "renewal"
	ReasonUpgrade   ChangeReason = "upgrade"
	ReasonDowngrade ChangeReason = "downgrade"
)

func (r ChangeReason) String() string {
	return string(r)
}

var ValidChangeReasons = map[ChangeReason]bool{
	ReasonNew:       true,
	ReasonRenewal:   true,
	ReasonUpgrade:   true,
	ReasonDowngrade: true,
}
