package models

// Role constants for all user categories in the system.
// A user's role is immutable for the lifetime of a session; changing it
// invalidates every active session for that user and requires
// re-authentication.
const (
	RoleAdmin            = "Admin"
	RoleSuperAdmin       = "Super Admin"
	RoleWarden           = "Warden"
	RoleAssociateWarden  = "Associate Warden"
	RoleHostelSupervisor = "Hostel Supervisor"
	RoleSecurity         = "Security"
	RoleHostelGate       = "Hostel Gate"
	RoleMaintenanceStaff = "Maintenance Staff"
	RoleStudent          = "Student"
	RoleGymkhana         = "Gymkhana"
)

// AllRoles lists every valid role.
var AllRoles = []string{
	RoleAdmin,
	RoleSuperAdmin,
	RoleWarden,
	RoleAssociateWarden,
	RoleHostelSupervisor,
	RoleSecurity,
	RoleHostelGate,
	RoleMaintenanceStaff,
	RoleStudent,
	RoleGymkhana,
}

// IsValidRole reports whether role is one of the enumerated roles.
func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
