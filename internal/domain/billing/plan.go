package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
)

// Plan defines price and recurrence offered to subscribers of one scope.
type Plan struct {
	id             uint
	scope          vo.Scope
	name           string
	price          decimal.Decimal
	recurrenceDays int
	quota          *int
	category       string
	offered        bool
	historical     bool
	supersededBy   *uint
	createdAt      time.Time
	updatedAt      time.Time
}

// PlanTerms are the billing-relevant fields frozen once a plan is in use.
type PlanTerms struct {
	Price          decimal.Decimal
	RecurrenceDays int
	Quota          *int
}

func validatePlan(scope vo.Scope, name string, terms PlanTerms) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPlanTerms)
	}
	if err := vo.ValidateAmount(terms.Price); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlanTerms, err)
	}
	if terms.RecurrenceDays < 0 {
		return fmt.Errorf("%w: recurrence days cannot be negative", ErrInvalidPlanTerms)
	}
	// platform contracts always recur, so a zero period would collide with its own successor
	if scope.IsPlatform() && terms.RecurrenceDays == 0 {
		return fmt.Errorf("%w: platform plans require a recurrence period", ErrInvalidPlanTerms)
	}
	if terms.Quota != nil && *terms.Quota < 0 {
		return fmt.Errorf("%w: quota cannot be negative", ErrInvalidPlanTerms)
	}
	return nil
}

// NewPlan creates an offered plan.
func NewPlan(scope vo.Scope, name string, terms PlanTerms, category string, now time.Time) (*Plan, error) {
	if err := validatePlan(scope, name, terms); err != nil {
		return nil, err
	}
	return &Plan{
		scope:          scope,
		name:           strings.TrimSpace(name),
		price:          terms.Price,
		recurrenceDays: terms.RecurrenceDays,
		quota:          terms.Quota,
		category:       category,
		offered:        true,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructPlan rebuilds a plan from persistence
func ReconstructPlan(
	id uint,
	scope vo.Scope,
	name string,
	price decimal.Decimal,
	recurrenceDays int,
	quota *int,
	category string,
	offered, historical bool,
	supersededBy *uint,
	createdAt, updatedAt time.Time,
) (*Plan, error) {
	if id == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return &Plan{
		id:             id,
		scope:          scope,
		name:           name,
		price:          price,
		recurrenceDays: recurrenceDays,
		quota:          quota,
		category:       category,
		offered:        offered,
		historical:     historical,
		supersededBy:   supersededBy,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (p *Plan) ID() uint               { return p.id }
func (p *Plan) Scope() vo.Scope        { return p.scope }
func (p *Plan) Name() string           { return p.name }
func (p *Plan) Price() decimal.Decimal { return p.price }
func (p *Plan) RecurrenceDays() int    { return p.recurrenceDays }
func (p *Plan) Quota() *int            { return p.quota }
func (p *Plan) Category() string       { return p.category }
func (p *Plan) IsOffered() bool        { return p.offered }
func (p *Plan) IsHistorical() bool     { return p.historical }
func (p *Plan) SupersededBy() *uint    { return p.supersededBy }
func (p *Plan) CreatedAt() time.Time   { return p.createdAt }
func (p *Plan) UpdatedAt() time.Time   { return p.updatedAt }
func (p *Plan) Terms() PlanTerms {
	return PlanTerms{Price: p.price, RecurrenceDays: p.recurrenceDays, Quota: p.quota}
}

// SetID sets the plan ID after persistence
func (p *Plan) SetID(id uint) {
	p.id = id
}

// IsRecurring reports whether settling an installment of this plan schedules the next one.
// Platform contracts always recur; member plans with no recurrence period are one-off.
func (p *Plan) IsRecurring() bool {
	return p.scope.IsPlatform() || p.recurrenceDays > 0
}

// Update changes the plan in place. Terms are frozen while inUse is true;
// callers must Revise instead.
func (p *Plan) Update(name string, terms PlanTerms, category string, inUse bool, now time.Time) error {
	if err := validatePlan(p.scope, name, terms); err != nil {
		return err
	}
	if inUse && !p.Terms().Equal(terms) {
		return ErrPlanImmutable
	}
	p.name = strings.TrimSpace(name)
	p.price = terms.Price
	p.recurrenceDays = terms.RecurrenceDays
	p.quota = terms.Quota
	p.category = category
	p.updatedAt = now
	return nil
}

// SetOffered toggles whether the plan is listed for new subscriptions.
func (p *Plan) SetOffered(offered bool, now time.Time) error {
	if offered && p.historical {
		return ErrPlanHistorical
	}
	p.offered = offered
	p.updatedAt = now
	return nil
}

// Revise returns a new offered plan carrying the new terms. The receiver is
// flagged historical once MarkSuperseded is called with the new plan's ID.
func (p *Plan) Revise(name string, terms PlanTerms, category string, now time.Time) (*Plan, error) {
	if p.historical {
		return nil, ErrPlanHistorical
	}
	if strings.TrimSpace(name) == "" {
		name = p.name
	}
	return NewPlan(p.scope, name, terms, category, now)
}

// MarkSuperseded flags the plan historical and withdraws it from the catalog.
func (p *Plan) MarkSuperseded(successorID uint, now time.Time) {
	p.historical = true
	p.offered = false
	p.supersededBy = &successorID
	p.updatedAt = now
}

// Equal compares billing-relevant terms.
func (t PlanTerms) Equal(other PlanTerms) bool {
	if !t.Price.Equal(other.Price) || t.RecurrenceDays != other.RecurrenceDays {
		return false
	}
	if (t.Quota == nil) != (other.Quota == nil) {
		return false
	}
	return t.Quota == nil || *t.Quota == *other.Quota
}
