package billing

import (
	"context"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/application/billing/usecases"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
)

// Use case interfaces for the billing handlers

type createPlanUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreatePlanCommand) (*dto.PlanDTO, error)
}

type updatePlanUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpdatePlanCommand) (*dto.PlanDTO, error)
}

type revisePlanUseCase interface {
	Execute(ctx context.Context, cmd usecases.RevisePlanCommand) (*dto.PlanDTO, error)
}

type setPlanOfferedUseCase interface {
	Execute(ctx context.Context, cmd usecases.SetPlanOfferedCommand) (*dto.PlanDTO, error)
}

type getPlanUseCase interface {
	Execute(ctx context.Context, scope vo.Scope, id uint) (*dto.PlanDTO, error)
}

type listPlansUseCase interface {
	Execute(ctx context.Context, query usecases.ListPlansQuery) (*usecases.ListPlansResult, error)
}

type paymentMethodCatalog interface {
	Create(ctx context.Context, cmd usecases.CreatePaymentMethodCommand) (*dto.PaymentMethodDTO, error)
	Update(ctx context.Context, cmd usecases.UpdatePaymentMethodCommand) (*dto.PaymentMethodDTO, error)
	SetActive(ctx context.Context, cmd usecases.SetPaymentMethodActiveCommand) (*dto.PaymentMethodDTO, error)
	Get(ctx context.Context, scope vo.Scope, id uint) (*dto.PaymentMethodDTO, error)
	List(ctx context.Context, scope vo.Scope, activeOnly bool) ([]*dto.PaymentMethodDTO, error)
}

type createSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateSubscriptionCommand) (*dto.SubscriptionDTO, error)
}

type switchPlanUseCase interface {
	Execute(ctx context.Context, cmd usecases.SwitchPlanCommand) (*dto.SubscriptionDTO, error)
}

type renewSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd usecases.RenewSubscriptionCommand) (*dto.SubscriptionDTO, error)
}

type cancelSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd usecases.CancelSubscriptionCommand) (*dto.SubscriptionDTO, error)
}

type getSubscriptionUseCase interface {
	Execute(ctx context.Context, scope vo.Scope, id uint) (*dto.SubscriptionDTO, error)
}

type listSubscriptionsUseCase interface {
	Execute(ctx context.Context, query usecases.ListSubscriptionsQuery) (*usecases.ListSubscriptionsResult, error)
}

type createInstallmentUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateInstallmentCommand) (*dto.InstallmentDTO, error)
}

type settleInstallmentUseCase interface {
	Execute(ctx context.Context, cmd usecases.SettleInstallmentCommand) (*dto.SettlementDTO, error)
}

type cancelInstallmentUseCase interface {
	Execute(ctx context.Context, cmd usecases.CancelInstallmentCommand) (*dto.InstallmentDTO, error)
}

type updateInstallmentNotesUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpdateInstallmentNotesCommand) (*dto.InstallmentDTO, error)
}

type listInstallmentsUseCase interface {
	Execute(ctx context.Context, query usecases.ListInstallmentsQuery) (*usecases.ListInstallmentsResult, error)
}

type getSummaryUseCase interface {
	Execute(ctx context.Context, query usecases.GetSummaryQuery) (*dto.SummaryDTO, error)
}

type listHistoryUseCase interface {
	Execute(ctx context.Context, scope vo.Scope, subscriberID uint) ([]*dto.HistoryEntryDTO, error)
}

type sweepUseCase interface {
	Execute(ctx context.Context, cmd usecases.SweepCommand) (*dto.SweepResultDTO, error)
}
