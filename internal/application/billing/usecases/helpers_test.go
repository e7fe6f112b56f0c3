package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/infrastructure/lock"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/models"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/testdb"
	"github.com/boxdesk/boxdesk/internal/infrastructure/repository"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/db"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

const (
	academyID = uint(7)
	memberID  = uint(42)
	actorID   = uint(900)
)

var academy = vo.AcademyScope(academyID)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []billing.DelinquencyNotice
}

func (n *recordingNotifier) NotifyDelinquency(_ context.Context, notice billing.DelinquencyNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

type fixture struct {
	db            *gorm.DB
	clock         *biztime.FixedClock
	ledger        *Ledger
	plans         billing.PlanRepository
	methods       billing.PaymentMethodRepository
	subscriptions billing.SubscriptionRepository
	installments  billing.InstallmentRepository
	history       billing.HistoryRepository
	notifier      *recordingNotifier
	log           logger.Interface
}

func setup(t *testing.T) *fixture {
	t.Helper()
	database := testdb.Open(t)
	log := logger.NewLogger()

	f := &fixture{
		db:            database,
		clock:         &biztime.FixedClock{Date: biztime.Date(2024, time.January, 1)},
		plans:         repository.NewPlanRepository(database, log),
		methods:       repository.NewPaymentMethodRepository(database, log),
		subscriptions: repository.NewSubscriptionRepository(database, log),
		installments:  repository.NewInstallmentRepository(database, log),
		history:       repository.NewHistoryRepository(database, log),
		notifier:      &recordingNotifier{},
		log:           log,
	}
	f.ledger = NewLedger(
		f.plans,
		f.methods,
		f.subscriptions,
		f.installments,
		f.history,
		repository.NewSubscriberDirectory(database, log),
		lock.NewMemoryLocker(),
		db.NewTransactionManager(database),
		f.clock,
		billing.DefaultDelinquencyPolicy(),
		log,
	)

	require.NoError(t, database.Create(&models.AcademyModel{ID: academyID, Name: "Box Centro", Email: "box@example.com"}).Error)
	require.NoError(t, database.Create(&models.MemberModel{ID: memberID, AcademyID: academyID, Name: "Maria", Email: "maria@example.com"}).Error)
	return f
}

func (f *fixture) at(year int, month time.Month, day int) {
	f.clock.Date = biztime.Date(year, month, day)
}

func (f *fixture) plan(t *testing.T, scope vo.Scope, name, price string, recurrence int) *dto.PlanDTO {
	t.Helper()
	plan, err := NewCreatePlanUseCase(f.plans, f.clock, f.log).Execute(context.Background(), CreatePlanCommand{
		Scope: scope,
		PlanInput: PlanInput{
			Name:           name,
			Price:          decimal.RequireFromString(price),
			RecurrenceDays: recurrence,
		},
	})
	require.NoError(t, err)
	return plan
}

func (f *fixture) method(t *testing.T, scope vo.Scope, name, discount string) *dto.PaymentMethodDTO {
	t.Helper()
	method, err := NewPaymentMethodCatalog(f.methods, f.clock, f.log).Create(context.Background(), CreatePaymentMethodCommand{
		Scope:           scope,
		Name:            name,
		DiscountPercent: decimal.RequireFromString(discount),
	})
	require.NoError(t, err)
	return method
}

func (f *fixture) enroll(t *testing.T, planID uint) *dto.SubscriptionDTO {
	t.Helper()
	sub, err := NewCreateSubscriptionUseCase(f.ledger).Execute(context.Background(), CreateSubscriptionCommand{
		Scope:        academy,
		SubscriberID: memberID,
		PlanID:       planID,
		ActorID:      actorID,
	})
	require.NoError(t, err)
	return sub
}

func (f *fixture) settle(t *testing.T, scope vo.Scope, installmentID uint, methodID *uint) *dto.SettlementDTO {
	t.Helper()
	out, err := NewSettleInstallmentUseCase(f.ledger).Execute(context.Background(), SettleInstallmentCommand{
		Scope:           scope,
		InstallmentID:   installmentID,
		ActorID:         actorID,
		PaymentMethodID: methodID,
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) sweep(t *testing.T, scope *vo.Scope) *dto.SweepResultDTO {
	t.Helper()
	result, err := NewSweepDelinquencyUseCase(f.ledger, f.notifier).Execute(context.Background(), SweepCommand{Scope: scope})
	require.NoError(t, err)
	return result
}

func (f *fixture) subscription(t *testing.T, scope vo.Scope, id uint) *billing.Subscription {
	t.Helper()
	sub, err := f.subscriptions.GetByID(context.Background(), scope, id)
	require.NoError(t, err)
	require.NotNil(t, sub)
	return sub
}

func (f *fixture) installment(t *testing.T, scope vo.Scope, id uint) *billing.Installment {
	t.Helper()
	inst, err := f.installments.GetByID(context.Background(), scope, id)
	require.NoError(t, err)
	require.NotNil(t, inst)
	return inst
}

func (f *fixture) member(t *testing.T) models.MemberModel {
	t.Helper()
	var m models.MemberModel
	require.NoError(t, f.db.First(&m, memberID).Error)
	return m
}

func ptr[T any](v T) *T {
	return &v
}
