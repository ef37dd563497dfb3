package auth

import "finley_backend/internal/models"

type Permission string

const (
	PermProjectSubmit   Permission = "project:submit"
	PermProjectReview   Permission = "project:review"
	PermProjectFinalize Permission = "project:finalize"
	PermProjectAssign   Permission = "project:assign"
	PermProjectListAll  Permission = "project:list:all"
	PermSOWWrite        Permission = "sow:write"
	PermAttachmentSign  Permission = "attachment:sign"
	PermRequestsRead    Permission = "requests:read:self"
)

// Permissions maps each role to what it may do.
var Permissions = map[models.UserRole][]Permission{
	models.UserRoleAdmin: {
		PermProjectSubmit,
		PermProjectReview,
		PermProjectFinalize,
		PermProjectAssign,
		PermProjectListAll,
		PermSOWWrite,
		PermAttachmentSign,
		PermRequestsRead,
	},
	models.UserRoleClient: {
		PermProjectSubmit,
		PermRequestsRead,
	},
	models.UserRoleTalent: {
		PermRequestsRead,
	},
}

func HasPermission(role models.UserRole, perm Permission) bool {
	for _, p := range Permissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

func IsAdmin(role models.UserRole) bool {
	return role == models.UserRoleAdmin
}
