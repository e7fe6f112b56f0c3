package usecases

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/boxdesk/boxdesk/internal/application/billing/dto"
	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	apperrors "github.com/boxdesk/boxdesk/internal/shared/errors"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

type CreatePaymentMethodCommand struct {
	Scope           vo.Scope
	Name            string
	DiscountPercent decimal.Decimal
}

type UpdatePaymentMethodCommand struct {
	Scope           vo.Scope
	MethodID        uint
	Name            string
	DiscountPercent decimal.Decimal
}

type SetPaymentMethodActiveCommand struct {
	Scope    vo.Scope
	MethodID uint
	Active   bool
}

// PaymentMethodCatalog manages the settlement methods of one tenant.
// Platform contracts use the methods of tenant 0.
type PaymentMethodCatalog struct {
	methods billing.PaymentMethodRepository
	clock   biztime.Clock
	logger  logger.Interface
}

func NewPaymentMethodCatalog(methods billing.PaymentMethodRepository, clock biztime.Clock, logger logger.Interface) *PaymentMethodCatalog {
	return &PaymentMethodCatalog{
		methods: methods,
		clock:   clock,
		logger:  logger,
	}
}

func (c *PaymentMethodCatalog) Create(ctx context.Context, cmd CreatePaymentMethodCommand) (*dto.PaymentMethodDTO, error) {
	if err := validateScope(cmd.Scope); err != nil {
		return nil, err
	}
	method, err := billing.NewPaymentMethod(cmd.Scope.TenantID, cmd.Name, cmd.DiscountPercent, c.clock.Now())
	if err != nil {
		return nil, toAppError(err)
	}
	if err := c.methods.Create(ctx, method); err != nil {
		c.logger.Errorw("failed to create payment method", "tenant_id", cmd.Scope.TenantID, "error", err)
		return nil, toAppError(err)
	}
	c.logger.Infow("payment method created", "tenant_id", cmd.Scope.TenantID, "method_id", method.ID())
	return dto.ToPaymentMethodDTO(method), nil
}

func (c *PaymentMethodCatalog) Update(ctx context.Context, cmd UpdatePaymentMethodCommand) (*dto.PaymentMethodDTO, error) {
	method, err := c.load(ctx, cmd.Scope, cmd.MethodID)
	if err != nil {
		return nil, err
	}
	if err := method.Update(cmd.Name, cmd.DiscountPercent, c.clock.Now()); err != nil {
		return nil, toAppError(err)
	}
	if err := c.methods.Update(ctx, method); err != nil {
		c.logger.Errorw("failed to update payment method", "method_id", cmd.MethodID, "error", err)
		return nil, toAppError(err)
	}
	return dto.ToPaymentMethodDTO(method), nil
}

func (c *PaymentMethodCatalog) SetActive(ctx context.Context, cmd SetPaymentMethodActiveCommand) (*dto.PaymentMethodDTO, error) {
	method, err := c.load(ctx, cmd.Scope, cmd.MethodID)
	if err != nil {
		return nil, err
	}
	method.SetActive(cmd.Active, c.clock.Now())
	if err := c.methods.Update(ctx, method); err != nil {
		c.logger.Errorw("failed to update payment method", "method_id", cmd.MethodID, "error", err)
		return nil, toAppError(err)
	}
	c.logger.Infow("payment method status changed", "method_id", method.ID(), "active", cmd.Active)
	return dto.ToPaymentMethodDTO(method), nil
}

// Get returns the method with its discount percentage.
func (c *PaymentMethodCatalog) Get(ctx context.Context, scope vo.Scope, id uint) (*dto.PaymentMethodDTO, error) {
	method, err := c.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	return dto.ToPaymentMethodDTO(method), nil
}

func (c *PaymentMethodCatalog) List(ctx context.Context, scope vo.Scope, activeOnly bool) ([]*dto.PaymentMethodDTO, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	methods, err := c.methods.List(ctx, scope.TenantID, activeOnly)
	if err != nil {
		c.logger.Errorw("failed to list payment methods", "tenant_id", scope.TenantID, "error", err)
		return nil, toAppError(err)
	}
	result := dto.ToPaymentMethodDTOList(methods)
	if result == nil {
		result = []*dto.PaymentMethodDTO{}
	}
	return result, nil
}

func (c *PaymentMethodCatalog) load(ctx context.Context, scope vo.Scope, id uint) (*billing.PaymentMethod, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	method, err := c.methods.GetByID(ctx, scope.TenantID, id)
	if err != nil {
		c.logger.Errorw("failed to get payment method", "method_id", id, "error", err)
		return nil, toAppError(err)
	}
	if method == nil {
		return nil, apperrors.NewNotFoundError("payment method not found")
	}
	return method, nil
}
