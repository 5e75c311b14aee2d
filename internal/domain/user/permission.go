package user

import "slices"

type Permission string

const (
	// Arrangements
	PermissionArrangementCreate   Permission = "arrangement.create"
	PermissionArrangementViewOwn  Permission = "arrangement.view_own"
	PermissionArrangementViewTeam Permission = "arrangement.view_team"
	PermissionArrangementApprove  Permission = "arrangement.approve"

	// Delegation
	PermissionDelegationManage Permission = "delegation.manage"

	// HR
	PermissionAuditView   Permission = "audit.view"
	PermissionReportsView Permission = "reports.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleStaff: {
		PermissionArrangementCreate,
		PermissionArrangementViewOwn,
	},
	RoleManager: {
		PermissionArrangementCreate,
		PermissionArrangementViewOwn,
		PermissionArrangementViewTeam,
		PermissionArrangementApprove,
		PermissionDelegationManage,
	},
	RoleDirector: {
		PermissionArrangementCreate,
		PermissionArrangementViewOwn,
		PermissionArrangementViewTeam,
		PermissionArrangementApprove,
		PermissionDelegationManage,
		PermissionAuditView,
		PermissionReportsView,
	},
	RoleHR: {
		PermissionArrangementCreate,
		PermissionArrangementViewOwn,
		PermissionArrangementViewTeam,
		PermissionAuditView,
		PermissionReportsView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}
	return slices.Contains(permissions, permission)
}
