package billing

import (
	"context"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/application/billing/usecases"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
)

// mockCommandUC records the last command it received.
type mockCommandUC[C any, R any] struct {
	called bool
	last   C
	result R
	err    error
}

func (m *mockCommandUC[C, R]) Execute(ctx context.Context, cmd C) (R, error) {
	m.called = true
	m.last = cmd
	return m.result, m.err
}

// mockLookupUC serves lookups keyed by scope and ID.
type mockLookupUC[R any] struct {
	scope  vo.Scope
	id     uint
	result R
	err    error
}

func (m *mockLookupUC[R]) Execute(ctx context.Context, scope vo.Scope, id uint) (R, error) {
	m.scope = scope
	m.id = id
	return m.result, m.err
}

type mockPaymentMethodCatalog struct {
	lastCreate    usecases.CreatePaymentMethodCommand
	lastUpdate    usecases.UpdatePaymentMethodCommand
	lastSetActive usecases.SetPaymentMethodActiveCommand
	activeOnly    bool
	result        *dto.PaymentMethodDTO
	list          []*dto.PaymentMethodDTO
	err           error
}

func (m *mockPaymentMethodCatalog) Create(ctx context.Context, cmd usecases.CreatePaymentMethodCommand) (*dto.PaymentMethodDTO, error) {
	m.lastCreate = cmd
	return m.result, m.err
}

func (m *mockPaymentMethodCatalog) Update(ctx context.Context, cmd usecases.UpdatePaymentMethodCommand) (*dto.PaymentMethodDTO, error) {
	m.lastUpdate = cmd
	return m.result, m.err
}

func (m *mockPaymentMethodCatalog) SetActive(ctx context.Context, cmd usecases.SetPaymentMethodActiveCommand) (*dto.PaymentMethodDTO, error) {
	m.lastSetActive = cmd
	return m.result, m.err
}

func (m *mockPaymentMethodCatalog) Get(ctx context.Context, scope vo.Scope, id uint) (*dto.PaymentMethodDTO, error) {
	return m.result, m.err
}

func (m *mockPaymentMethodCatalog) List(ctx context.Context, scope vo.Scope, activeOnly bool) ([]*dto.PaymentMethodDTO, error) {
	m.activeOnly = activeOnly
	return m.list, m.err
}
