package user

type Role string

const (
	RoleStaff    Role = "staff"    // Regular employee
	RoleManager  Role = "manager"  // Approves arrangements of direct reports
	RoleDirector Role = "director" // Manager of managers, may administer delegations in their line
	RoleHR       Role = "hr"       // Reads statistics and the audit trail
)

func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleManager, RoleDirector, RoleHR:
		return true
	}
	return false
}

// IsManagerLevel reports whether the role may receive delegated authority.
func (r Role) IsManagerLevel() bool {
	return r == RoleManager || r == RoleDirector
}

// CanViewAll reports whether the role may read any arrangement.
func (r Role) CanViewAll() bool {
	return r == RoleHR || r == RoleDirector
}
