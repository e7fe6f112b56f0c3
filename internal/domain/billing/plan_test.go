package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/boxdesk/boxdesk/internal/domain/billing/valueobjects"
)

func TestNewPlan_Validation(t *testing.T) {
	quota := -1
	tests := []struct {
		name    string
		scope   vo.Scope
		plan    string
		terms   PlanTerms
		wantErr error
	}{
		{"valid member plan", vo.AcademyScope(1), "Monthly", PlanTerms{Price: money("100.00"), RecurrenceDays: 30}, nil},
		{"one-off member plan", vo.AcademyScope(1), "Day pass", PlanTerms{Price: money("20"), RecurrenceDays: 0}, nil},
		{"platform plan needs recurrence", vo.PlatformScope(), "Pro", PlanTerms{Price: money("300"), RecurrenceDays: 0}, ErrInvalidPlanTerms},
		{"empty name", vo.AcademyScope(1), " ", PlanTerms{Price: money("1"), RecurrenceDays: 30}, ErrInvalidPlanTerms},
		{"negative price", vo.AcademyScope(1), "x", PlanTerms{Price: money("-1"), RecurrenceDays: 30}, ErrInvalidPlanTerms},
		{"sub-cent price", vo.AcademyScope(1), "x", PlanTerms{Price: money("1.001"), RecurrenceDays: 30}, ErrInvalidPlanTerms},
		{"negative quota", vo.AcademyScope(1), "x", PlanTerms{Price: money("1"), RecurrenceDays: 30, Quota: &quota}, ErrInvalidPlanTerms},
		{"zero scope", vo.Scope{}, "x", PlanTerms{Price: money("1"), RecurrenceDays: 30}, vo.ErrInvalidScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPlan(tt.scope, tt.plan, tt.terms, "", now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, p.IsOffered())
			assert.False(t, p.IsHistorical())
		})
	}
}

func TestPlan_UpdateFrozenWhileInUse(t *testing.T) {
	p := newTestPlan(t, vo.AcademyScope(1), 1, "100.00", 30)

	err := p.Update("Monthly Plus", PlanTerms{Price: money("120.00"), RecurrenceDays: 30}, "", true, now)
	assert.ErrorIs(t, err, ErrPlanImmutable)
	assert.Equal(t, "100.00", p.Price().StringFixed(2))

	// renaming keeps the terms, so it is allowed
	require.NoError(t, p.Update("Monthly Plus", p.Terms(), "crossfit", true, now))
	assert.Equal(t, "Monthly Plus", p.Name())

	require.NoError(t, p.Update("Monthly", PlanTerms{Price: money("120.00"), RecurrenceDays: 31}, "", false, now))
	assert.Equal(t, 31, p.RecurrenceDays())
}

func TestPlan_ReviseAndSupersede(t *testing.T) {
	old := newTestPlan(t, vo.AcademyScope(1), 1, "100.00", 30)

	next, err := old.Revise("", PlanTerms{Price: money("110.00"), RecurrenceDays: 30}, "", now)
	require.NoError(t, err)
	next.SetID(2)
	old.MarkSuperseded(next.ID(), now)

	assert.Equal(t, "Monthly", next.Name())
	assert.True(t, next.IsOffered())
	assert.True(t, old.IsHistorical())
	assert.False(t, old.IsOffered())
	require.NotNil(t, old.SupersededBy())
	assert.Equal(t, uint(2), *old.SupersededBy())

	assert.ErrorIs(t, old.SetOffered(true, now), ErrPlanHistorical)
	_, err = old.Revise("", next.Terms(), "", now)
	assert.ErrorIs(t, err, ErrPlanHistorical)
}

func TestPlan_IsRecurring(t *testing.T) {
	assert.True(t, newTestPlan(t, vo.PlatformScope(), 1, "300", 30).IsRecurring())
	assert.True(t, newTestPlan(t, vo.AcademyScope(1), 2, "100", 30).IsRecurring())
	assert.False(t, newTestPlan(t, vo.AcademyScope(1), 3, "20", 0).IsRecurring())
}
