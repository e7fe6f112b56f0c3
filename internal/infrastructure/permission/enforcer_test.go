package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/testdb"
	"github.com/boxdesk/boxdesk/internal/shared/constants"
	"github.com/boxdesk/boxdesk/internal/shared/logger"
)

func TestEnforcer_DefaultPolicies(t *testing.T) {
	db := testdb.Open(t)
	e, err := NewEnforcer(db, logger.NewLogger())
	require.NoError(t, err)
	require.NoError(t, e.InitBillingPolicies())
	// seeding twice must not fail on existing rows
	require.NoError(t, e.InitBillingPolicies())

	cases := []struct {
		role, resource, action string
		allowed                bool
	}{
		{constants.RoleOperator, "platform/contracts", ActionWrite, true},
		{constants.RoleOperator, "academy/enrollments", ActionRead, false},
		{constants.RoleManager, "academy/plans", ActionWrite, true},
		{constants.RoleManager, "academy/sweep", ActionSweep, true},
		{constants.RoleManager, "platform/plans", ActionRead, false},
		{constants.RoleStaff, "academy/installments", ActionSettle, true},
		{constants.RoleStaff, "academy/plans", ActionWrite, false},
		{constants.RoleStaff, "academy/sweep", ActionSweep, false},
	}
	for _, tc := range cases {
		allowed, err := e.Enforce(tc.role, tc.resource, tc.action)
		require.NoError(t, err)
		assert.Equal(t, tc.allowed, allowed, "%s %s %s", tc.role, tc.resource, tc.action)
	}
}

func TestEnforcer_PoliciesPersist(t *testing.T) {
	db := testdb.Open(t)
	e, err := NewEnforcer(db, logger.NewLogger())
	require.NoError(t, err)
	require.NoError(t, e.AddPolicy(constants.RoleStaff, "academy/summary", ActionRead))

	reopened, err := NewEnforcer(db, logger.NewLogger())
	require.NoError(t, err)
	allowed, err := reopened.Enforce(constants.RoleStaff, "academy/summary", ActionRead)
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NoError(t, reopened.RemovePolicy(constants.RoleStaff, "academy/summary", ActionRead))
	require.NoError(t, e.LoadPolicy())
	allowed, err = e.Enforce(constants.RoleStaff, "academy/summary", ActionRead)
	require.NoError(t, err)
	assert.False(t, allowed)
}
