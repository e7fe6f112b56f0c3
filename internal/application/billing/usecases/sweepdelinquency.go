package usecases

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
)

type SweepCommand struct {
	// Scope restricts the sweep to one scope; nil sweeps every scope.
	Scope *vo.Scope
	// Today replays the sweep for an earlier business date; future dates are rejected.
	Today *time.Time
}

// SweepDelinquencyUseCase flips late awaiting installments to overdue and
// cascades the policy verdict onto each affected subscriber.
type SweepDelinquencyUseCase struct {
	ledger   *Ledger
	notifier billing.DelinquencyNotifier
}

func NewSweepDelinquencyUseCase(ledger *Ledger, notifier billing.DelinquencyNotifier) *SweepDelinquencyUseCase {
	return &SweepDelinquencyUseCase{ledger: ledger, notifier: notifier}
}

func (uc *SweepDelinquencyUseCase) Execute(ctx context.Context, cmd SweepCommand) (*dto.SweepResultDTO, error) {
	if cmd.Scope != nil {
		if err := validateScope(*cmd.Scope); err != nil {
			return nil, err
		}
	}
	l := uc.ledger
	today := l.clock.Today()
	if cmd.Today != nil {
		requested := biztime.DateOf(*cmd.Today)
		if requested.After(today) {
			return nil, apperrors.NewValidationError("sweep date cannot be in the future",
				fmt.Sprintf("%s is after %s", biztime.FormatDate(requested), biztime.FormatDate(today)))
		}
		today = requested
	}
	startTime := time.Now()
	result := &dto.SweepResultDTO{Date: biztime.FormatDate(today)}

	marked, err := l.installments.MarkOverdue(ctx, cmd.Scope, l.policy.OverdueCutoff(today))
	if err != nil {
		l.logger.Errorw("failed to mark overdue installments", "error", err)
		return nil, toAppError(err)
	}
	result.MarkedOverdue = marked

	subscribers, err := uc.candidates(ctx, cmd.Scope, today)
	if err != nil {
		l.logger.Errorw("failed to collect delinquent subscribers", "error", err)
		return nil, toAppError(err)
	}

	for _, ref := range subscribers {
		var eval *evaluation
		err := l.mutate(ctx, ref.Scope, ref.SubscriberID, func(txCtx context.Context) error {
			var err error
			if eval, err = l.reevaluate(txCtx, ref.Scope, ref.SubscriberID, today); err != nil {
				return err
			}
			if !eval.changed {
				return nil
			}
			return l.refreshSnapshot(txCtx, ref.Scope, ref.SubscriberID)
		})
		if err != nil {
			return result, err
		}
		result.Evaluated++
		if !eval.changed {
			continue
		}

		switch eval.verdict.Target {
		case vo.SubscriptionCancelled:
			result.Blocked++
		case vo.SubscriptionOverdue:
			result.Overdue++
		default:
			result.Reactivated++
			continue
		}
		if uc.notify(ctx, ref, eval) {
			result.Notified++
		}
	}

	l.logger.Infow("delinquency sweep finished",
		"date", result.Date,
		"marked_overdue", result.MarkedOverdue,
		"evaluated", result.Evaluated,
		"overdue", result.Overdue,
		"blocked", result.Blocked,
		"reactivated", result.Reactivated,
		"duration", time.Since(startTime),
	)
	return result, nil
}

// candidates returns subscribers holding late debt plus those whose open
// subscription is still flagged overdue, in a stable order.
func (uc *SweepDelinquencyUseCase) candidates(ctx context.Context, scope *vo.Scope, today time.Time) ([]billing.SubscriberRef, error) {
	late, err := uc.ledger.installments.ListLateSubscribers(ctx, scope, today)
	if err != nil {
		return nil, err
	}
	flagged, err := uc.ledger.subscriptions.ListOverdueSubscribers(ctx, scope)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(late)+len(flagged))
	refs := make([]billing.SubscriberRef, 0, len(late)+len(flagged))
	for _, ref := range append(late, flagged...) {
		key := ref.Scope.OpenKey(ref.SubscriberID)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.Scope.Kind != b.Scope.Kind {
			return a.Scope.Kind < b.Scope.Kind
		}
		if a.Scope.TenantID != b.Scope.TenantID {
			return a.Scope.TenantID < b.Scope.TenantID
		}
		return a.SubscriberID < b.SubscriberID
	})
	return refs, nil
}

// notify sends the delinquency notice. Failures are logged and never fail the sweep.
func (uc *SweepDelinquencyUseCase) notify(ctx context.Context, ref billing.SubscriberRef, eval *evaluation) bool {
	if uc.notifier == nil {
		return false
	}
	l := uc.ledger
	contact, err := l.directory.Contact(ctx, ref.Scope, ref.SubscriberID)
	if err != nil || contact == nil {
		if err != nil {
			l.logger.Warnw("failed to load subscriber contact", "scope", ref.Scope.String(), "subscriber_id", ref.SubscriberID, "error", err)
		}
		return false
	}

	outstanding := decimal.Zero
	for _, inst := range eval.unpaid {
		outstanding = outstanding.Add(inst.Amount())
	}
	notice := billing.DelinquencyNotice{
		Scope:        ref.Scope,
		SubscriberID: ref.SubscriberID,
		Contact:      *contact,
		Status:       eval.verdict.Target,
		DaysLate:     eval.verdict.DaysLate,
		Outstanding:  outstanding,
	}
	if err := uc.notifier.NotifyDelinquency(ctx, notice); err != nil {
		l.logger.Warnw("failed to send delinquency notice", "scope", ref.Scope.String(), "subscriber_id", ref.SubscriberID, "error", err)
		return false
	}
	return true
}
