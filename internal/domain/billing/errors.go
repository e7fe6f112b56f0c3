package billing

import "errors"

var (
	ErrPlanImmutable          = errors.New("plan terms cannot change while subscriptions reference it")
	ErrPlanHistorical         = errors.New("historical plan cannot be offered again")
	ErrInvalidPlanTerms       = errors.New("invalid plan terms")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrPaymentMethodInactive  = errors.New("payment method is inactive")
	ErrSubscriptionTerminal   = errors.New("subscription is already cancelled or finished")
	ErrInvalidStatusChange    = errors.New("invalid subscription status transition")
	ErrInstallmentPaid        = errors.New("installment is already paid")
	ErrInstallmentCancelled   = errors.New("installment is already cancelled")
	ErrInvalidInstallment     = errors.New("invalid installment")
	ErrInvalidSubscription    = errors.New("invalid subscription")
	ErrHistoryEntryIncomplete = errors.New("history entry is incomplete")
)
