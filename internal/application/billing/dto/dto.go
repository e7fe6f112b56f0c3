package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/boxdesk/boxdesk/internal/domain/billing"
	"github.com/boxdesk/boxdesk/internal/shared/biztime"
	"github.com/boxdesk/boxdesk/internal/shared/mapper"
)

// Amounts are rendered as fixed two-digit strings and dates as YYYY-MM-DD.

type PlanDTO struct {
	ID             uint      `json:"id"`
	Scope          string    `json:"scope"`
	Name           string    `json:"name"`
	Price          string    `json:"price"`
	RecurrenceDays int       `json:"recurrence_days"`
	Quota          *int      `json:"quota,omitempty"`
	Category       string    `json:"category,omitempty"`
	Offered        bool      `json:"offered"`
	Historical     bool      `json:"historical"`
	SupersededBy   *uint     `json:"superseded_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type PaymentMethodDTO struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	DiscountPercent string    `json:"discount_percent"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type SubscriptionDTO struct {
	ID                uint              `json:"id"`
	Scope             string            `json:"scope"`
	SubscriberID      uint              `json:"subscriber_id"`
	PlanID            uint              `json:"plan_id"`
	StartDate         string            `json:"start_date"`
	ExpirationDate    string            `json:"expiration_date"`
	Status            string            `json:"status"`
	PredecessorID     *uint             `json:"predecessor_id,omitempty"`
	PredecessorPlanID *uint             `json:"predecessor_plan_id,omitempty"`
	ChangeReason      string            `json:"change_reason"`
	Notes             string            `json:"notes,omitempty"`
	CreatedBy         uint              `json:"created_by"`
	ClosedBy          *uint             `json:"closed_by,omitempty"`
	ClosedOn          *string           `json:"closed_on,omitempty"`
	CloseReason       string            `json:"close_reason,omitempty"`
	FirstInstallment  *InstallmentDTO   `json:"first_installment,omitempty"`
	Installments      []*InstallmentDTO `json:"installments,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

type InstallmentDTO struct {
	ID              uint      `json:"id"`
	SubscriptionID  uint      `json:"subscription_id"`
	SubscriberID    uint      `json:"subscriber_id"`
	Amount          string    `json:"amount"`
	NetAmount       *string   `json:"net_amount,omitempty"`
	DiscountAmount  *string   `json:"discount_amount,omitempty"`
	DueDate         string    `json:"due_date"`
	PaidDate        *string   `json:"paid_date,omitempty"`
	Status          string    `json:"status"`
	PaymentMethodID *uint     `json:"payment_method_id,omitempty"`
	Proof           string    `json:"proof,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	SettledBy       *uint     `json:"settled_by,omitempty"`
	SuccessorID     *uint     `json:"successor_id,omitempty"`
	ReferencePeriod string    `json:"reference_period"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SettlementDTO is the outcome of settling an installment.
type SettlementDTO struct {
	Installment        *InstallmentDTO `json:"installment"`
	Successor          *InstallmentDTO `json:"successor,omitempty"`
	SubscriptionStatus string          `json:"subscription_status"`
}

type HistoryEntryDTO struct {
	ID             uint      `json:"id"`
	SubscriberID   uint      `json:"subscriber_id"`
	SubscriptionID uint      `json:"subscription_id"`
	PreviousPlanID *uint     `json:"previous_plan_id,omitempty"`
	NewPlanID      uint      `json:"new_plan_id"`
	PlanName       string    `json:"plan_name"`
	EffectiveFrom  string    `json:"effective_from"`
	EffectiveTo    string    `json:"effective_to"`
	Amount         string    `json:"amount"`
	Reason         string    `json:"reason"`
	Notes          string    `json:"notes,omitempty"`
	ActorID        uint      `json:"actor_id"`
	RecordedAt     time.Time `json:"recorded_at"`
}

type TotalsDTO struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
	Gross string `json:"gross"`
	Net   string `json:"net"`
}

type SummaryDTO struct {
	InstallmentsByStatus  []TotalsDTO      `json:"installments_by_status"`
	InstallmentsByPeriod  []TotalsDTO      `json:"installments_by_period"`
	SubscriptionsByStatus map[string]int64 `json:"subscriptions_by_status"`
}

// SweepResultDTO counts what one delinquency sweep changed.
type SweepResultDTO struct {
	Date          string `json:"date"`
	MarkedOverdue int64  `json:"marked_overdue"`
	Evaluated     int    `json:"evaluated"`
	Overdue       int    `json:"overdue"`
	Blocked       int    `json:"blocked"`
	Reactivated   int    `json:"reactivated"`
	Notified      int    `json:"notified"`
}

// Affected is the number of rows the sweep changed; zero on a repeated run.
func (r *SweepResultDTO) Affected() int64 {
	return r.MarkedOverdue + int64(r.Overdue+r.Blocked+r.Reactivated)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalMoney(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := money(*d)
	return &s
}

func optionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := biztime.FormatDate(*t)
	return &s
}

func ToPlanDTO(p *billing.Plan) *PlanDTO {
	if p == nil {
		return nil
	}
	return &PlanDTO{
		ID:             p.ID(),
		Scope:          p.Scope().String(),
		Name:           p.Name(),
		Price:          money(p.Price()),
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

func ToPlanDTOList(plans []*billing.Plan) []*PlanDTO {
	return mapper.MapSlice(plans, ToPlanDTO)
}

func ToPaymentMethodDTO(m *billing.PaymentMethod) *PaymentMethodDTO {
	if m == nil {
		return nil
	}
	return &PaymentMethodDTO{
		ID:              m.ID(),
		Name:            m.Name(),
		DiscountPercent: money(m.DiscountPercent()),
		Active:          m.IsActive(),
		CreatedAt:       m.CreatedAt(),
		UpdatedAt:       m.UpdatedAt(),
	}
}

func ToPaymentMethodDTOList(methods []*billing.PaymentMethod) []*PaymentMethodDTO {
	return mapper.MapSlice(methods, ToPaymentMethodDTO)
}

func ToSubscriptionDTO(s *billing.Subscription) *SubscriptionDTO {
	if s == nil {
		return nil
	}
	return &SubscriptionDTO{
		ID:                s.ID(),
		Scope:             s.Scope().String(),
		SubscriberID:      s.SubscriberID(),
		PlanID:            s.PlanID(),
		StartDate:         biztime.FormatDate(s.StartDate()),
		ExpirationDate:    biztime.FormatDate(s.ExpirationDate()),
		Status:            s.Status().String(),
		PredecessorID:     s.PredecessorID(),
		PredecessorPlanID: s.PredecessorPlanID(),
		ChangeReason:      s.ChangeReason().String(),
		Notes:             s.Notes(),
		CreatedBy:         s.CreatedBy(),
		ClosedBy:          s.ClosedBy(),
		ClosedOn:          optionalDate(s.ClosedOn()),
		CloseReason:       s.CloseReason(),
		CreatedAt:         s.CreatedAt(),
		UpdatedAt:         s.UpdatedAt(),
	}
}

func ToSubscriptionDTOList(subs []*billing.Subscription) []*SubscriptionDTO {
	return mapper.MapSlice(subs, ToSubscriptionDTO)
}

func ToInstallmentDTO(i *billing.Installment) *InstallmentDTO {
	if i == nil {
		return nil
	}
	return &InstallmentDTO{
		ID:              i.ID(),
		SubscriptionID:  i.SubscriptionID(),
		SubscriberID:    i.SubscriberID(),
		Amount:          money(i.Amount()),
		NetAmount:       optionalMoney(i.NetAmount()),
		DiscountAmount:  optionalMoney(i.DiscountAmount()),
		DueDate:         biztime.FormatDate(i.DueDate()),
		PaidDate:        optionalDate(i.PaidDate()),
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

func ToInstallmentDTOList(items []*billing.Installment) []*InstallmentDTO {
	return mapper.MapSlice(items, ToInstallmentDTO)
}

func ToHistoryEntryDTO(h *billing.HistoryEntry) *HistoryEntryDTO {
	if h == nil {
		return nil
	}
	return &HistoryEntryDTO{
		ID:             h.ID(),
		SubscriberID:   h.SubscriberID(),
		SubscriptionID: h.SubscriptionID(),
		PreviousPlanID: h.PreviousPlanID(),
		NewPlanID:      h.NewPlanID(),
		PlanName:       h.PlanName(),
		EffectiveFrom:  biztime.FormatDate(h.EffectiveFrom()),
		EffectiveTo:    biztime.FormatDate(h.EffectiveTo()),
		Amount:         money(h.Amount()),
		Reason:         h.Reason().String(),
		Notes:          h.Notes(),
		ActorID:        h.ActorID(),
		RecordedAt:     h.RecordedAt(),
	}
}

func ToHistoryEntryDTOList(entries []*billing.HistoryEntry) []*HistoryEntryDTO {
	return mapper.MapSlice(entries, ToHistoryEntryDTO)
}

func toTotalsDTO(t billing.InstallmentTotals) TotalsDTO {
	return TotalsDTO{
		Key:   t.Key,
		Count: t.Count,
		Gross: money(t.Gross),
		Net:   money(t.Net),
	}
}

// ToSummaryDTO merges installment totals with subscription counts.
func ToSummaryDTO(summary *billing.InstallmentSummary, subscriptions map[string]int64) *SummaryDTO {
	out := &SummaryDTO{
		InstallmentsByStatus:  []TotalsDTO{},
		InstallmentsByPeriod:  []TotalsDTO{},
		SubscriptionsByStatus: subscriptions,
	}
	if summary != nil {
		out.InstallmentsByStatus = mapper.MapSlice(summary.ByStatus, toTotalsDTO)
		out.InstallmentsByPeriod = mapper.MapSlice(summary.ByPeriod, toTotalsDTO)
	}
	if out.SubscriptionsByStatus == nil {
		out.SubscriptionsByStatus = map[string]int64{}
	}
	return out
}
