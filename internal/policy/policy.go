// Package policy decides what a workspace role may do. Every function is a
// pure predicate over the caller's current role or membership; callers are
// expected to re-read the membership before asking.
package policy

import "github.com/dimitrije/workspace-invites/internal/models"

// CanManageMembers governs inviting, cancelling invitations, removing
// members, listing invitations and editing workspace details.
func CanManageMembers(role models.Role) bool {
	return role == models.RoleOwner || role == models.RoleAdmin
}

func CanChangeRoles(role models.Role) bool {
	return role == models.RoleOwner
}

func CanDeleteWorkspace(role models.Role) bool {
	return role == models.RoleOwner
}

func IsMember(m *models.WorkspaceMember) bool {
	return m != nil
}

// CanGrantRole reports whether an actor holding role may hand out target
// through an invitation. Handing out ownership is a role change.
func CanGrantRole(role, target models.Role) bool {
	if target == models.RoleOwner {
		return CanChangeRoles(role)
	}
	return CanManageMembers(role)
}

// RoleOf returns the role of m, or "" when m is nil.
func RoleOf(m *models.WorkspaceMember) models.Role {
	if m == nil {
		return ""
	}
	return m.Role
}
