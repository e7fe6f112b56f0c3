// Package bootstrap wires the billing ledger for the server, the worker and
// the one-shot CLI commands so all three run the same stack.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/boxdesk/boxdesk/internal/application/billing/usecases"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	"github.com/boxdesk/boxdesk/internal/infrastructure/config"
	"github.com/boxdesk/boxdesk/internal/infrastructure/email"
	"github.com/boxdesk/boxdesk/internal/infrastructure/lock"
	"github.com/boxdesk/boxdesk/internal/infrastructure/repository"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/db"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

// Repositories are the GORM-backed billing stores.
type Repositories struct {
	Plans         billing.PlanRepository
	Methods       billing.PaymentMethodRepository
	Subscriptions billing.SubscriptionRepository
	Installments  billing.InstallmentRepository
	History       billing.HistoryRepository
	Directory     billing.SubscriberDirectory
}

func NewRepositories(database *gorm.DB, log logger.Interface) *Repositories {
	return &Repositories{
		Plans:         repository.NewPlanRepository(database, log),
		Methods:       repository.NewPaymentMethodRepository(database, log),
		Subscriptions: repository.NewSubscriptionRepository(database, log),
		Installments:  repository.NewInstallmentRepository(database, log),
		History:       repository.NewHistoryRepository(database, log),
		Directory:     repository.NewSubscriberDirectory(database, log),
	}
}

// UseCases groups every billing operation.
type UseCases struct {
	CreatePlan     *usecases.CreatePlanUseCase
	UpdatePlan     *usecases.UpdatePlanUseCase
	RevisePlan     *usecases.RevisePlanUseCase
	SetPlanOffered *usecases.SetPlanOfferedUseCase
	GetPlan        *usecases.GetPlanUseCase
	ListPlans      *usecases.ListPlansUseCase

	PaymentMethods *usecases.PaymentMethodCatalog

	CreateSubscription *usecases.CreateSubscriptionUseCase
	SwitchPlan         *usecases.SwitchPlanUseCase
	RenewSubscription  *usecases.RenewSubscriptionUseCase
	CancelSubscription *usecases.CancelSubscriptionUseCase
	GetSubscription    *usecases.GetSubscriptionUseCase
	ListSubscriptions  *usecases.ListSubscriptionsUseCase

	CreateInstallment      *usecases.CreateInstallmentUseCase
	SettleInstallment      *usecases.SettleInstallmentUseCase
	CancelInstallment      *usecases.CancelInstallmentUseCase
	UpdateInstallmentNotes *usecases.UpdateInstallmentNotesUseCase
	ListInstallments       *usecases.ListInstallmentsUseCase

	GetSummary  *usecases.GetSummaryUseCase
	ListHistory *usecases.ListHistoryUseCase
	Sweep       *usecases.SweepDelinquencyUseCase
}

// Billing owns the billing stack and the connections it opened.
type Billing struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Repos    *Repositories
	Ledger   *usecases.Ledger
	Notifier billing.DelinquencyNotifier
	UseCases *UseCases

	log logger.Interface
}

// NewBilling builds the stack on an open database. With Redis enabled the
// subscriber lock is shared across processes; otherwise it is in-process.
func NewBilling(ctx context.Context, database *gorm.DB, cfg *config.Config, log logger.Interface) (*Billing, error) {
	b := &Billing{
		DB:    database,
		Repos: NewRepositories(database, log),
		log:   log,
	}

	var locker billing.SubscriberLocker
	if cfg.Redis.Enabled {
		client, err := lock.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		b.Redis = client
		locker = lock.NewRedisLocker(client, cfg.Billing.LockTTL, log)
		log.Infow("redis connection established", "address", cfg.Redis.GetAddr())
	} else {
		locker = lock.NewMemoryLocker()
		log.Warnw("redis disabled, subscriber locks are process-local")
	}

	notifier, err := email.NewNotifier(&cfg.Email, &cfg.Billing, log)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}
	b.Notifier = notifier

	policy := billing.DelinquencyPolicy{
		OverdueAfterDays: cfg.Billing.OverdueAfterDays,
		GraceDays:        cfg.Billing.GraceDays,
	}.Normalize()
	if policy.GraceDays < policy.OverdueAfterDays {
		b.Close()
		return nil, fmt.Errorf("billing.grace_days (%d) must not be lower than billing.overdue_after_days (%d)",
			policy.GraceDays, policy.OverdueAfterDays)
	}

	clock := biztime.SystemClock{}
	txMgr := db.NewTransactionManager(database)
	r := b.Repos
	b.Ledger = usecases.NewLedger(
		r.Plans, r.Methods, r.Subscriptions, r.Installments, r.History, r.Directory,
		locker, txMgr, clock, policy, log,
	)
	b.UseCases = newUseCases(r, b.Ledger, notifier, txMgr, clock, log)
	return b, nil
}

func newUseCases(
	r *Repositories,
	ledger *usecases.Ledger,
	notifier billing.DelinquencyNotifier,
	txMgr *db.TransactionManager,
	clock biztime.Clock,
	log logger.Interface,
) *UseCases {
	return &UseCases{
		CreatePlan:     usecases.NewCreatePlanUseCase(r.Plans, clock, log),
		UpdatePlan:     usecases.NewUpdatePlanUseCase(r.Plans, r.Subscriptions, txMgr, clock, log),
		RevisePlan:     usecases.NewRevisePlanUseCase(r.Plans, txMgr, clock, log),
		SetPlanOffered: usecases.NewSetPlanOfferedUseCase(r.Plans, clock, log),
		GetPlan:        usecases.NewGetPlanUseCase(r.Plans, log),
		ListPlans:      usecases.NewListPlansUseCase(r.Plans, log),

		PaymentMethods: usecases.NewPaymentMethodCatalog(r.Methods, clock, log),

		CreateSubscription: usecases.NewCreateSubscriptionUseCase(ledger),
		SwitchPlan:         usecases.NewSwitchPlanUseCase(ledger),
		RenewSubscription:  usecases.NewRenewSubscriptionUseCase(ledger),
		CancelSubscription: usecases.NewCancelSubscriptionUseCase(ledger),
		GetSubscription:    usecases.NewGetSubscriptionUseCase(r.Subscriptions, r.Installments, log),
		ListSubscriptions:  usecases.NewListSubscriptionsUseCase(r.Subscriptions, log),

		CreateInstallment:      usecases.NewCreateInstallmentUseCase(ledger),
		SettleInstallment:      usecases.NewSettleInstallmentUseCase(ledger),
		CancelInstallment:      usecases.NewCancelInstallmentUseCase(ledger),
		UpdateInstallmentNotes: usecases.NewUpdateInstallmentNotesUseCase(ledger),
		ListInstallments:       usecases.NewListInstallmentsUseCase(r.Installments, log),

		GetSummary:  usecases.NewGetSummaryUseCase(r.Installments, r.Subscriptions, log),
		ListHistory: usecases.NewListHistoryUseCase(r.History, log),
		Sweep:       usecases.NewSweepDelinquencyUseCase(ledger, notifier),
	}
}

// Close releases the Redis connection. The database belongs to the caller.
func (b *Billing) Close() {
	if b.Redis == nil {
		return
	}
	if err := b.Redis.Close(); err != nil {
		b.log.Warnw("failed to close redis client", "error", err)
	}
	b.Redis = nil
}
