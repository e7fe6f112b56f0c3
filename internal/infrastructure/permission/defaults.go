package permission

import (
	"fmt"

	"github.com/boxdesk/boxdesk/internal/shared/constants"
)

// Actions checked by the HTTP layer.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionSettle = "settle"
	ActionSweep  = "sweep"
)

// defaultPolicies grants operators the platform level and academy managers
// their academy. Staff run the front desk: enrollments and settlements, no
// catalog edits and no sweeps.
var defaultPolicies = [][]string{
	{constants.RoleOperator, "platform/*", "*"},

	{constants.RoleManager, "academy/*", "*"},

	{constants.RoleStaff, "academy/plans", ActionRead},
	{constants.RoleStaff, "academy/payment-methods", ActionRead},
	{constants.RoleStaff, "academy/enrollments", ActionRead},
	{constants.RoleStaff, "academy/enrollments", ActionWrite},
	{constants.RoleStaff, "academy/installments", ActionRead},
	{constants.RoleStaff, "academy/installments", ActionSettle},
	{constants.RoleStaff, "academy/history", ActionRead},
}

// InitBillingPolicies adds any missing default policy. Existing rows, including
// ones added by operators, are left alone.
func (e *Enforcer) InitBillingPolicies() error {
	for _, policy := range defaultPolicies {
		if err := e.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return fmt.Errorf("failed to add policy [%s, %s, %s]: %w", policy[0], policy[1], policy[2], err)
		}
	}

	e.logger.Infow("billing permissions initialized successfully", "policies", len(defaultPolicies))
	return nil
}
