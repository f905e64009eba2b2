package rbac

// Permissions.
const (
	PermissionCreateContract  = "contract:create"
	PermissionUpdateContract  = "contract:update"
	PermissionReadContract    = "contract:read"
	PermissionCreateMilestone = "milestone:create"
	PermissionUpdateMilestone = "milestone:update"
	PermissionCreateTemplate  = "template:create"
	PermissionDeleteTemplate  = "template:delete"
)

// Roles map onto account user types.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleBusiness   = "business"
	RoleAdmin      = "admin"
)

var rolePermissions = map[string][]string{
	RoleClient: {
		PermissionReadContract,
		PermissionCreateContract,
		PermissionUpdateContract,
		PermissionUpdateMilestone,
		PermissionCreateTemplate,
	},
	RoleFreelancer: {
		PermissionReadContract,
		PermissionCreateContract,
		PermissionUpdateContract,
		PermissionCreateMilestone,
		PermissionUpdateMilestone,
		PermissionCreateTemplate,
	},
	RoleBusiness: {
		PermissionReadContract,
		PermissionCreateContract,
		PermissionUpdateContract,
		PermissionCreateMilestone,
		PermissionUpdateMilestone,
		PermissionCreateTemplate,
	},
	RoleAdmin: {
		PermissionReadContract,
		PermissionCreateContract,
		PermissionUpdateContract,
		PermissionCreateMilestone,
		PermissionUpdateMilestone,
		PermissionCreateTemplate,
		PermissionDeleteTemplate,
	},
}

// HasPermission checks whether a role grants a permission.
func HasPermission(role, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission returns an error instead of a bool, for handler use.
func CheckPermission(role, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError reports a missing permission.
type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}
