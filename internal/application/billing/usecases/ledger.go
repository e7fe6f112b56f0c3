package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/db"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

// Ledger bundles the collaborators shared by the subscription and installment
// use cases. Every mutation holds the subscriber lock and runs in a single
// transaction; reads inside the closure must use the transaction context.
type Ledger struct {
	plans         billing.PlanRepository
	methods       billing.PaymentMethodRepository
	subscriptions billing.SubscriptionRepository
	installments  billing.InstallmentRepository
	history       billing.HistoryRepository
	directory     billing.SubscriberDirectory
	locker        billing.SubscriberLocker
	txMgr         *db.TransactionManager
	clock         biztime.Clock
	policy        billing.DelinquencyPolicy
	logger        logger.Interface
}

func NewLedger(
	plans billing.PlanRepository,
	methods billing.PaymentMethodRepository,
	subscriptions billing.SubscriptionRepository,
	installments billing.InstallmentRepository,
	history billing.HistoryRepository,
	directory billing.SubscriberDirectory,
	locker billing.SubscriberLocker,
	txMgr *db.TransactionManager,
	clock biztime.Clock,
	policy billing.DelinquencyPolicy,
	logger logger.Interface,
) *Ledger {
	return &Ledger{
		plans:         plans,
		methods:       methods,
		subscriptions: subscriptions,
		installments:  installments,
		history:       history,
		directory:     directory,
		locker:        locker,
		txMgr:         txMgr,
		clock:         clock,
		policy:        policy.Normalize(),
		logger:        logger,
	}
}

// WithClock returns a copy of the ledger reading dates from clock.
func (l *Ledger) WithClock(clock biztime.Clock) *Ledger {
	clone := *l
	clone.clock = clock
	return &clone
}

// mutate runs fn under the subscriber lock inside one transaction and
// normalizes whatever it returns.
func (l *Ledger) mutate(ctx context.Context, scope vo.Scope, subscriberID uint, fn func(txCtx context.Context) error) error {
	release, err := l.locker.Acquire(ctx, scope.LockKey(subscriberID))
	if err != nil {
		l.logger.Errorw("failed to acquire subscriber lock", "scope", scope.String(), "subscriber_id", subscriberID, "error", err)
		return apperrors.NewStorageError(fmt.Errorf("acquire subscriber lock: %w", err))
	}
	defer release()

	err = toAppError(l.txMgr.RunInTransaction(ctx, fn))
	if apperrors.IsStorageError(err) {
		l.logger.Errorw("ledger transaction failed", "scope", scope.String(), "subscriber_id", subscriberID, "error", cause(err))
	}
	return err
}

// cause unwraps storage errors for logging; clients only see the generic message.
func cause(err error) error {
	if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Unwrap() != nil {
		return appErr.Unwrap()
	}
	return err
}

func (l *Ledger) loadPlan(ctx context.Context, scope vo.Scope, planID uint) (*billing.Plan, error) {
	plan, err := l.plans.GetByID(ctx, scope, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found", fmt.Sprintf("plan %d in %s", planID, scope))
	}
	return plan, nil
}

func (l *Ledger) loadSubscription(ctx context.Context, scope vo.Scope, id uint) (*billing.Subscription, error) {
	sub, err := l.subscriptions.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("subscription not found", fmt.Sprintf("subscription %d in %s", id, scope))
	}
	return sub, nil
}

func (l *Ledger) loadInstallment(ctx context.Context, scope vo.Scope, id uint) (*billing.Installment, error) {
	inst, err := l.installments.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, apperrors.NewNotFoundError("installment not found", fmt.Sprintf("installment %d in %s", id, scope))
	}
	return inst, nil
}

func (l *Ledger) ensureSubscriber(ctx context.Context, scope vo.Scope, subscriberID uint) error {
	ok, err := l.directory.Exists(ctx, scope, subscriberID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFoundError("subscriber not found", fmt.Sprintf("subscriber %d in %s", subscriberID, scope))
	}
	return nil
}

// loadMethod resolves an optional payment method in the scope's tenant.
func (l *Ledger) loadMethod(ctx context.Context, scope vo.Scope, methodID *uint) (*billing.PaymentMethod, error) {
	if methodID == nil {
		return nil, nil
	}
	method, err := l.methods.GetByID(ctx, scope.TenantID, *methodID)
	if err != nil {
		return nil, err
	}
	if method == nil {
		return nil, apperrors.NewNotFoundError("payment method not found", fmt.Sprintf("payment method %d", *methodID))
	}
	if !method.IsActive() {
		return nil, apperrors.NewValidationError("payment method is inactive", method.Name())
	}
	return method, nil
}

// openRequest describes a subscription about to be opened.
type openRequest struct {
	scope        vo.Scope
	subscriberID uint
	plan         *billing.Plan
	start        time.Time
	expiration   *time.Time
	amount       decimal.Decimal
	notes        string
	actorID      uint
	// guardMidCycle rejects plan changes that would cut short a paid period.
	guardMidCycle bool
}

// open finishes the subscriber's current subscription, if any, and opens a
// new one with its history entry and first installment.
func (l *Ledger) open(ctx context.Context, req openRequest) (*billing.Subscription, *billing.Installment, error) {
	now, today := l.clock.Now(), l.clock.Today()

	current, err := l.subscriptions.GetOpenBySubscriber(ctx, req.scope, req.subscriberID)
	if err != nil {
		return nil, nil, err
	}

	if current != nil && req.guardMidCycle {
		currentPlan, err := l.plans.GetByID(ctx, req.scope, current.PlanID())
		if err != nil {
			return nil, nil, err
		}
		paid, err := l.installments.ListBySubscription(ctx, current.ID())
		if err != nil {
			return nil, nil, err
		}
		if billing.IsMidCycle(current, currentPlan, paid, req.plan.ID(), today) {
			return nil, nil, apperrors.NewStateError("cannot switch plan mid-cycle while active",
				fmt.Sprintf("current subscription %d is paid through %s", current.ID(), biztime.FormatDate(current.ExpirationDate()))).
				WithCurrent(dto.ToSubscriptionDTO(current))
		}
	}

	previous := current
	if previous == nil {
		if previous, err = l.subscriptions.GetLatestBySubscriber(ctx, req.scope, req.subscriberID); err != nil {
			return nil, nil, err
		}
	}

	if !req.plan.IsOffered() && (previous == nil || previous.PlanID() != req.plan.ID()) {
		return nil, nil, apperrors.NewStateError("plan is not offered", req.plan.Name()).WithCurrent(dto.ToPlanDTO(req.plan))
	}

	var previousPlan *billing.Plan
	if previous != nil {
		if previousPlan, err = l.plans.GetByID(ctx, req.scope, previous.PlanID()); err != nil {
			return nil, nil, err
		}
	}
	reason := billing.ClassifyChange(previous, previousPlan, req.plan)

	if current != nil {
		if err := current.Finish(req.actorID, req.start, now); err != nil {
			return nil, nil, err
		}
		if err := l.subscriptions.Update(ctx, current); err != nil {
			return nil, nil, err
		}
		if _, err := l.installments.CancelAwaitingFrom(ctx, current.ID(), req.start, req.actorID); err != nil {
			return nil, nil, err
		}
	}

	sub, err := billing.NewSubscription(billing.NewSubscriptionParams{
		Scope:          req.scope,
		SubscriberID:   req.subscriberID,
		Plan:           req.plan,
		StartDate:      req.start,
		ExpirationDate: req.expiration,
		Predecessor:    previous,
		ChangeReason:   reason,
		Notes:          req.notes,
		CreatedBy:      req.actorID,
		Now:            now,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := l.subscriptions.Create(ctx, sub); err != nil {
		return nil, nil, err
	}

	entry, err := billing.NewHistoryEntry(sub, req.plan, req.amount, req.actorID, now)
	if err != nil {
		return nil, nil, err
	}
	if err := l.history.Append(ctx, entry); err != nil {
		return nil, nil, err
	}

	first, err := billing.NewInstallment(req.scope, sub.ID(), req.subscriberID, sub.StartDate(), req.amount, now)
	if err != nil {
		return nil, nil, err
	}
	if err := l.installments.Create(ctx, first); err != nil {
		return nil, nil, err
	}
	return sub, first, nil
}

// cancelFrom cancels sub and voids its awaiting installments due on or
// after from. A replacement's first installment is then the only charge.
func (l *Ledger) cancelFrom(ctx context.Context, sub *billing.Subscription, from time.Time, actorID uint, reason string) error {
	if err := sub.Cancel(actorID, l.clock.Today(), reason, l.clock.Now()); err != nil {
		return err
	}
	if err := l.subscriptions.Update(ctx, sub); err != nil {
		return err
	}
	_, err := l.installments.CancelAwaitingFrom(ctx, sub.ID(), from, actorID)
	return err
}

// settlement is the outcome of settling one installment.
type settlement struct {
	installment  *billing.Installment
	successor    *billing.Installment
	subscription *billing.Subscription
}

// settle pays inst, schedules its successor when the plan recurs and rolls
// the subscription's expiration forward.
func (l *Ledger) settle(ctx context.Context, inst *billing.Installment, s billing.Settlement) (*settlement, error) {
	now := l.clock.Now()
	if err := inst.Settle(s, now); err != nil {
		return nil, err
	}

	sub, err := l.loadSubscription(ctx, inst.Scope(), inst.SubscriptionID())
	if err != nil {
		return nil, err
	}
	plan, err := l.loadPlan(ctx, inst.Scope(), sub.PlanID())
	if err != nil {
		return nil, err
	}

	out := &settlement{installment: inst, subscription: sub}
	if plan.IsRecurring() && !sub.IsTerminal() {
		nextDue := inst.NextDueDate(plan.RecurrenceDays())
		existing, err := l.installments.GetBySubscriptionAndDueDate(ctx, sub.ID(), nextDue)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			successor, err := billing.NewInstallment(inst.Scope(), sub.ID(), inst.SubscriberID(), nextDue, plan.Price(), now)
			if err != nil {
				return nil, err
			}
			if err := l.installments.Create(ctx, successor); err != nil {
				return nil, err
			}
			inst.LinkSuccessor(successor.ID(), now)
			out.successor = successor
		} else {
			if inst.SuccessorID() == nil {
				inst.LinkSuccessor(existing.ID(), now)
			}
			out.successor = existing
		}
		if sub.ExtendExpiration(nextDue, now) {
			if err := l.subscriptions.Update(ctx, sub); err != nil {
				return nil, err
			}
		}
	}

	if err := l.installments.Update(ctx, inst); err != nil {
		return nil, err
	}
	return out, nil
}

// evaluation is the result of re-evaluating a subscriber's delinquency.
type evaluation struct {
	subscription *billing.Subscription
	verdict      billing.Verdict
	changed      bool
	unpaid       []*billing.Installment
}

// reevaluate applies the delinquency policy to the subscriber's open
// subscription. A subscriber without an open subscription is left alone.
func (l *Ledger) reevaluate(ctx context.Context, scope vo.Scope, subscriberID uint, today time.Time) (*evaluation, error) {
	open, err := l.subscriptions.GetOpenBySubscriber(ctx, scope, subscriberID)
	if err != nil || open == nil {
		return &evaluation{}, err
	}
	unpaid, err := l.installments.ListUnpaidBySubscriber(ctx, scope, subscriberID)
	if err != nil {
		return nil, err
	}

	hasPaid := false
	if open.Status() == vo.SubscriptionPending {
		items, err := l.installments.ListBySubscription(ctx, open.ID())
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if item.Status() == vo.InstallmentPaid {
				hasPaid = true
				break
			}
		}
	}

	out := &evaluation{subscription: open, unpaid: unpaid}
	verdict, ok := l.policy.Evaluate(open, unpaid, hasPaid, today)
	if !ok {
		return out, nil
	}
	if err := verdict.Apply(open, today, l.clock.Now()); err != nil {
		return nil, err
	}
	if err := l.subscriptions.Update(ctx, open); err != nil {
		return nil, err
	}
	out.verdict = verdict
	out.changed = true
	return out, nil
}

// refreshSnapshot copies the subscriber's current subscription onto the
// subscriber record. With nothing open the latest subscription is mirrored.
func (l *Ledger) refreshSnapshot(ctx context.Context, scope vo.Scope, subscriberID uint) error {
	sub, err := l.subscriptions.GetOpenBySubscriber(ctx, scope, subscriberID)
	if err != nil {
		return err
	}
	if sub == nil {
		if sub, err = l.subscriptions.GetLatestBySubscriber(ctx, scope, subscriberID); err != nil {
			return err
		}
	}
	return l.directory.UpdateBillingSnapshot(ctx, scope, subscriberID, billing.SnapshotOf(sub))
}

// currentOpen reads the subscriber's open subscription outside any
// transaction, for attaching to a conflict. Failures are only logged.
func (l *Ledger) currentOpen(ctx context.Context, scope vo.Scope, subscriberID uint) *dto.SubscriptionDTO {
	sub, err := l.subscriptions.GetOpenBySubscriber(ctx, scope, subscriberID)
	if err != nil {
		l.logger.Warnw("failed to load current subscription", "scope", scope.String(), "subscriber_id", subscriberID, "error", err)
		return nil
	}
	return dto.ToSubscriptionDTO(sub)
}

func (l *Ledger) currentInstallment(ctx context.Context, scope vo.Scope, id uint) *dto.InstallmentDTO {
	inst, err := l.installments.GetByID(ctx, scope, id)
	if err != nil {
		l.logger.Warnw("failed to load current installment", "scope", scope.String(), "installment_id", id, "error", err)
		return nil
	}
	return dto.ToInstallmentDTO(inst)
}
