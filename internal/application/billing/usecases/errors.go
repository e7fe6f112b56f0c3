package usecases

import (
	"errors"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
)

var validationErrors = []error{
	vo.ErrInvalidScope,
	vo.ErrNegativeAmount,
	vo.ErrAmountPrecision,
	vo.ErrInvalidPercent,
	billing.ErrInvalidPlanTerms,
	billing.ErrInvalidPaymentMethod,
	billing.ErrPaymentMethodInactive,
	billing.ErrInvalidInstallment,
	billing.ErrInvalidSubscription,
}

var stateErrors = []error{
	billing.ErrPlanImmutable,
	billing.ErrPlanHistorical,
	billing.ErrSubscriptionTerminal,
	billing.ErrInvalidStatusChange,
	billing.ErrInstallmentPaid,
}

// toAppError maps domain sentinels onto the error taxonomy. Anything unknown
// is treated as a persistence failure.
func toAppError(err error) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return apperrors.NewValidationError(err.Error())
		}
	}
	for _, target := range stateErrors {
		if errors.Is(err, target) {
			return apperrors.NewStateError(err.Error())
		}
	}
	if errors.Is(err, billing.ErrInstallmentCancelled) {
		return apperrors.NewConflictError(err.Error())
	}
	return apperrors.Normalize(err)
}

// withCurrent attaches the authoritative record to conflict and state errors.
func withCurrent[T any](err error, current *T) error {
	appErr := apperrors.GetAppError(err)
	if appErr == nil || current == nil {
		return err
	}
	if appErr.Type == apperrors.ErrorTypeConflict || appErr.Type == apperrors.ErrorTypeState {
		appErr.WithCurrent(current)
	}
	return err
}

func validateScope(scope vo.Scope) error {
	if err := scope.Validate(); err != nil {
		return apperrors.NewValidationError("invalid scope", err.Error())
	}
	return nil
}
