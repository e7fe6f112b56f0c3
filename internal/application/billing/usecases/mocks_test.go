package usecases

import (
	"context"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
)

type mockPaymentMethodRepository struct {
	CreateFunc  func(ctx context.Context, method *billing.PaymentMethod) error
	UpdateFunc  func(ctx context.Context, method *billing.PaymentMethod) error
	GetByIDFunc func(ctx context.Context, tenantID, id uint) (*billing.PaymentMethod, error)
	ListFunc    func(ctx context.Context, tenantID uint, activeOnly bool) ([]*billing.PaymentMethod, error)
}

func (m *mockPaymentMethodRepository) Create(ctx context.Context, method *billing.PaymentMethod) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, method)
	}
	method.SetID(1)
	return nil
}

func (m *mockPaymentMethodRepository) Update(ctx context.Context, method *billing.PaymentMethod) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, method)
	}
	return nil
}

func (m *mockPaymentMethodRepository) GetByID(ctx context.Context, tenantID, id uint) (*billing.PaymentMethod, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	return nil, nil
}

func (m *mockPaymentMethodRepository) List(ctx context.Context, tenantID uint, activeOnly bool) ([]*billing.PaymentMethod, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID, activeOnly)
	}
	return nil, nil
}

type mockPlanRepository struct {
	CreateFunc      func(ctx context.Context, plan *billing.Plan) error
	UpdateFunc      func(ctx context.Context, plan *billing.Plan) error
	GetByIDFunc     func(ctx context.Context, scope vo.Scope, id uint) (*billing.Plan, error)
	ListOfferedFunc func(ctx context.Context, scope vo.Scope) ([]*billing.Plan, error)
	ListFunc        func(ctx context.Context, scope vo.Scope, filter billing.PlanFilter) ([]*billing.Plan, int64, error)
}

func (m *mockPlanRepository) Create(ctx context.Context, plan *billing.Plan) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, plan)
	}
	plan.SetID(1)
	return nil
}

func (m *mockPlanRepository) Update(ctx context.Context, plan *billing.Plan) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, plan)
	}
	return nil
}

func (m *mockPlanRepository) GetByID(ctx context.Context, scope vo.Scope, id uint) (*billing.Plan, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, scope, id)
	}
	return nil, nil
}

func (m *mockPlanRepository) ListOffered(ctx context.Context, scope vo.Scope) ([]*billing.Plan, error) {
	if m.ListOfferedFunc != nil {
		return m.ListOfferedFunc(ctx, scope)
	}
	return nil, nil
}

func (m *mockPlanRepository) List(ctx context.Context, scope vo.Scope, filter billing.PlanFilter) ([]*billing.Plan, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, scope, filter)
	}
	return nil, 0, nil
}
