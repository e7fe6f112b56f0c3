package mappers

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/models"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
)

func scopeOf(kind string, tenantID uint) (vo.Scope, error) {
	return vo.NewScope(vo.SubscriberKind(kind), tenantID)
}

// civil dates come back at midnight in whatever zone the driver picked
func dateOf(d datatypes.Date) time.Time {
	return biztime.DateOf(time.Time(d))
}

func datePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := biztime.DateOf(*t)
	return &d
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func PlanToModel(p *billing.Plan) *models.PlanModel {
	return &models.PlanModel{
		ID:             p.ID(),
		SubscriberKind: p.Scope().Kind.String(),
		TenantID:       p.Scope().TenantID,
		Name:           p.Name(),
		Price:          p.Price(),
		RecurrenceDays: p.RecurrenceDays(),
		Quota:          p.Quota(),
		Category:       p.Category(),
		Offered:        p.IsOffered(),
		Historical:     p.IsHistorical(),
		SupersededBy:   p.SupersededBy(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}
}

func PlanToDomain(m *models.PlanModel) (*billing.Plan, error) {
	scope, err := scopeOf(m.SubscriberKind, m.TenantID)
	if err != nil {
		return nil, fmt.Errorf("plan %d: %w", m.ID, err)
	}
	return billing.ReconstructPlan(
		m.ID, scope, m.Name, m.Price, m.RecurrenceDays, m.Quota, m.Category,
		m.Offered, m.Historical, m.SupersededBy, m.CreatedAt, m.UpdatedAt,
	)
}

func PaymentMethodToModel(p *billing.PaymentMethod) *models.PaymentMethodModel {
	return &models.PaymentMethodModel{
		ID:              p.ID(),
		TenantID:        p.TenantID(),
		Name:            p.Name(),
		DiscountPercent: p.DiscountPercent(),
		Active:          p.IsActive(),
		CreatedAt:       p.CreatedAt(),
		UpdatedAt:       p.UpdatedAt(),
	}
}

func PaymentMethodToDomain(m *models.PaymentMethodModel) (*billing.PaymentMethod, error) {
	return billing.ReconstructPaymentMethod(m.ID, m.TenantID, m.Name, m.DiscountPercent, m.Active, m.CreatedAt, m.UpdatedAt)
}

func SubscriptionToModel(s *billing.Subscription) *models.SubscriptionModel {
	return &models.SubscriptionModel{
		ID:                s.ID(),
		SubscriberKind:    s.Scope().Kind.String(),
		TenantID:          s.Scope().TenantID,
		SubscriberID:      s.SubscriberID(),
		PlanID:            s.PlanID(),
		OpenKey:           s.OpenKey(),
		StartDate:         datatypes.Date(s.StartDate()),
		ExpirationDate:    datatypes.Date(s.ExpirationDate()),
		Status:            s.Status().String(),
		PredecessorID:     s.PredecessorID(),
		PredecessorPlanID: s.PredecessorPlanID(),
		ChangeReason:      s.ChangeReason().String(),
		Notes:             s.Notes(),
		CreatedBy:         s.CreatedBy(),
		ClosedBy:          s.ClosedBy(),
		ClosedOn:          s.ClosedOn(),
		CloseReason:       s.CloseReason(),
		Version:           s.Version(),
		CreatedAt:         s.CreatedAt(),
		UpdatedAt:         s.UpdatedAt(),
	}
}

func SubscriptionToDomain(m *models.SubscriptionModel) (*billing.Subscription, error) {
	scope, err := scopeOf(m.SubscriberKind, m.TenantID)
	if err != nil {
		return nil, fmt.Errorf("subscription %d: %w", m.ID, err)
	}
	return billing.ReconstructSubscription(
		m.ID,
		scope,
		m.SubscriberID,
		m.PlanID,
		dateOf(m.StartDate),
		dateOf(m.ExpirationDate),
		vo.SubscriptionStatus(m.Status),
		m.PredecessorID,
		m.PredecessorPlanID,
		vo.ChangeReason(m.ChangeReason),
		m.Notes,
		m.CreatedBy,
		m.ClosedBy,
		datePtr(m.ClosedOn),
		m.CloseReason,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func InstallmentToModel(i *billing.Installment) *models.InstallmentModel {
	return &models.InstallmentModel{
		ID:              i.ID(),
		SubscriberKind:  i.Scope().Kind.String(),
		TenantID:        i.Scope().TenantID,
		SubscriberID:    i.SubscriberID(),
		SubscriptionID:  i.SubscriptionID(),
		DueDate:         datatypes.Date(i.DueDate()),
		Amount:          i.Amount(),
		NetAmount:       nullDecimal(i.NetAmount()),
		DiscountAmount:  nullDecimal(i.DiscountAmount()),
		PaidDate:        i.PaidDate(),
		Status:          i.Status().String(),
		PaymentMethodID: i.PaymentMethodID(),
		Proof:           i.Proof(),
		Notes:           i.Notes(),
		SettledBy:       i.SettledBy(),
		SuccessorID:     i.SuccessorID(),
		ReferencePeriod: i.ReferencePeriod(),
		CreatedAt:       i.CreatedAt(),
		UpdatedAt:       i.UpdatedAt(),
	}
}

func InstallmentToDomain(m *models.InstallmentModel) (*billing.Installment, error) {
	scope, err := scopeOf(m.SubscriberKind, m.TenantID)
	if err != nil {
		return nil, fmt.Errorf("installment %d: %w", m.ID, err)
	}
	return billing.ReconstructInstallment(
		m.ID,
		scope,
		m.SubscriptionID,
		m.SubscriberID,
		m.Amount,
		decimalPtr(m.NetAmount),
		decimalPtr(m.DiscountAmount),
		dateOf(m.DueDate),
		datePtr(m.PaidDate),
		vo.InstallmentStatus(m.Status),
		m.PaymentMethodID,
		m.Proof,
		m.Notes,
		m.SettledBy,
		m.SuccessorID,
		m.ReferencePeriod,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func HistoryToModel(h *billing.HistoryEntry) *models.SubscriptionHistoryModel {
	return &models.SubscriptionHistoryModel{
		ID:             h.ID(),
		SubscriberKind: h.Scope().Kind.String(),
		TenantID:       h.Scope().TenantID,
		SubscriberID:   h.SubscriberID(),
		SubscriptionID: h.SubscriptionID(),
		PreviousPlanID: h.PreviousPlanID(),
		NewPlanID:      h.NewPlanID(),
		EffectiveFrom:  datatypes.Date(h.EffectiveFrom()),
		EffectiveTo:    datatypes.Date(h.EffectiveTo()),
		Amount:         h.Amount(),
		Reason:         h.Reason().String(),
		Details: datatypes.NewJSONType(models.HistoryDetails{
			PlanName: h.PlanName(),
			Notes:    h.Notes(),
		}),
		ActorID:    h.ActorID(),
		RecordedAt: h.RecordedAt(),
	}
}

func HistoryToDomain(m *models.SubscriptionHistoryModel) (*billing.HistoryEntry, error) {
	scope, err := scopeOf(m.SubscriberKind, m.TenantID)
	if err != nil {
		return nil, fmt.Errorf("history %d: %w", m.ID, err)
	}
	details := m.Details.Data()
	return billing.ReconstructHistoryEntry(
		m.ID,
		scope,
		m.SubscriberID,
		m.SubscriptionID,
		m.PreviousPlanID,
		m.NewPlanID,
		dateOf(m.EffectiveFrom),
		dateOf(m.EffectiveTo),
		m.Amount,
		vo.ChangeReason(m.Reason),
		details.PlanName,
		details.Notes,
		m.ActorID,
		m.RecordedAt,
	), nil
}
