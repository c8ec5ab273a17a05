package constants

import "github.com/shopspring/decimal"

// Staff roles
const (
	RoleReceptionist = "RECEPTIONIST"
	RoleHousekeeping = "HOUSEKEEPING"
	RoleBarStaff     = "BAR_STAFF"
	RoleAccountant   = "ACCOUNTANT"
	RoleManager      = "MANAGER"
	RoleStakeholder  = "STAKEHOLDER"
	RoleAdmin        = "ADMIN"
)

// Capability is the fixed set of permissions a role carries. Evaluated once
// per operation instead of scattered role comparisons. ApprovalCeiling nil
// means uncapped; roles that cannot approve at all have CanApproveExpenses
// false.
type Capability struct {
	CanMakeBookings    bool
	CanManageRooms     bool
	CanSubmitExpenses  bool
	CanApproveExpenses bool
	CanViewFinance     bool
	ApprovalCeiling    *decimal.Decimal
}

// ManagerApprovalCeiling caps mid-tier approvals at ₦100,000. Larger expenses
// escalate to an uncapped role.
var ManagerApprovalCeiling = decimal.NewFromInt(100000)

var capabilities = map[string]Capability{
	RoleReceptionist: {
		CanMakeBookings:   true,
		CanManageRooms:    true,
		CanSubmitExpenses: true,
	},
	RoleHousekeeping: {
		CanManageRooms:    true,
		CanSubmitExpenses: true,
	},
	RoleBarStaff: {
		CanSubmitExpenses: true,
	},
	RoleAccountant: {
		CanViewFinance: true,
	},
	RoleManager: {
		CanMakeBookings:    true,
		CanManageRooms:     true,
		CanSubmitExpenses:  true,
		CanApproveExpenses: true,
		CanViewFinance:     true,
		ApprovalCeiling:    &ManagerApprovalCeiling,
	},
	RoleStakeholder: {
		CanViewFinance: true,
	},
	RoleAdmin: {
		CanMakeBookings:    true,
		CanManageRooms:     true,
		CanSubmitExpenses:  true,
		CanApproveExpenses: true,
		CanViewFinance:     true,
	},
}

// CapabilityFor returns the capability set for a role. Unknown roles get the
// zero capability (no access).
func CapabilityFor(role string) Capability {
	return capabilities[role]
}

// AllRoles returns every valid staff role.
func AllRoles() []string {
	return []string{
		RoleReceptionist,
		RoleHousekeeping,
		RoleBarStaff,
		RoleAccountant,
		RoleManager,
		RoleStakeholder,
		RoleAdmin,
	}
}
