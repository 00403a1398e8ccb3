package authz

import "github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"

// PermissionMap is the coarse resource/action permission table for a role,
// kept for UI rendering and legacy-shape migration. The authoritative
// access decisions use the capability and route key sets below.
type PermissionMap map[string]map[string]bool

// The single authoritative role table. Route files declare only the key
// they require; nothing outside this file maps roles to keys.

var defaultCapabilities = map[string][]string{
	models.RoleSuperAdmin: {
		CapUsersView, CapUsersCreate, CapUsersEdit, CapUsersDelete, CapUsersAuthz,
		CapStudentsView, CapStudentsCreate, CapStudentsEdit, CapStudentsDelete,
		CapHostelsView, CapHostelsEdit,
		CapRoomsView, CapRoomsAllocate, CapRoomsEdit,
		CapComplaintsView, CapComplaintsCreate, CapComplaintsResolve, CapComplaintsDelete,
		CapVisitorsView, CapVisitorsRegister, CapVisitorsCheckout,
		CapDisciplineView, CapDisciplineCreate, CapDisciplineEdit,
		CapInventoryView, CapInventoryIssue, CapInventoryEdit,
		CapLeaveView, CapLeaveApply, CapLeaveApprove,
		CapAttendanceView, CapAttendanceMark,
		CapAppointmentsView, CapAppointmentsSchedule, CapAppointmentsCancel,
	},
	models.RoleAdmin: {
		CapUsersView, CapUsersCreate, CapUsersEdit, CapUsersAuthz,
		CapStudentsView, CapStudentsCreate, CapStudentsEdit,
		CapHostelsView, CapHostelsEdit,
		CapRoomsView, CapRoomsAllocate, CapRoomsEdit,
		CapComplaintsView, CapComplaintsResolve,
		CapVisitorsView,
		CapDisciplineView, CapDisciplineCreate, CapDisciplineEdit,
		CapInventoryView, CapInventoryEdit,
		CapLeaveView, CapLeaveApprove,
		CapAttendanceView,
		CapAppointmentsView, CapAppointmentsSchedule, CapAppointmentsCancel,
	},
	models.RoleWarden: {
		CapStudentsView, CapStudentsEdit,
		CapHostelsView,
		CapRoomsView, CapRoomsAllocate,
		CapComplaintsView, CapComplaintsResolve,
		CapVisitorsView,
		CapDisciplineView, CapDisciplineCreate,
		CapLeaveView, CapLeaveApprove,
		CapAttendanceView,
		CapAppointmentsView, CapAppointmentsSchedule,
	},
	models.RoleAssociateWarden: {
		CapStudentsView,
		CapHostelsView,
		CapRoomsView,
		CapComplaintsView, CapComplaintsResolve,
		CapVisitorsView,
		CapDisciplineView,
		CapLeaveView, CapLeaveApprove,
		CapAttendanceView,
		CapAppointmentsView,
	},
	models.RoleHostelSupervisor: {
		CapStudentsView,
		CapRoomsView,
		CapComplaintsView,
		CapInventoryView, CapInventoryIssue, CapInventoryEdit,
		CapAttendanceView, CapAttendanceMark,
	},
	models.RoleSecurity: {
		CapVisitorsView, CapVisitorsRegister, CapVisitorsCheckout,
		CapStudentsView,
		CapAttendanceMark,
	},
	models.RoleHostelGate: {
		CapVisitorsView, CapVisitorsRegister, CapVisitorsCheckout,
		CapAttendanceMark,
	},
	models.RoleMaintenanceStaff: {
		CapComplaintsView, CapComplaintsResolve,
		CapInventoryView,
	},
	models.RoleStudent: {
		CapComplaintsView, CapComplaintsCreate,
		CapLeaveView, CapLeaveApply,
		CapAppointmentsView, CapAppointmentsSchedule,
	},
	models.RoleGymkhana: {
		CapStudentsView,
		CapAppointmentsView, CapAppointmentsSchedule, CapAppointmentsCancel,
	},
}

var defaultRoutes = map[string][]string{
	models.RoleSuperAdmin: {
		RouteAdminDashboard, RouteAdminUsers, RouteAdminSettings,
		RouteWardenDashboard, RouteWardenStudents, RouteWardenLeave,
		RouteSupervisorDashboard, RouteSupervisorInventory,
		RouteSecurityGate, RouteSecurityVisitors,
		RouteMaintenanceDashboard,
		RouteGymkhanaEvents,
	},
	models.RoleAdmin: {
		RouteAdminDashboard, RouteAdminUsers,
		RouteWardenDashboard, RouteWardenStudents, RouteWardenLeave,
	},
	models.RoleWarden: {
		RouteWardenDashboard, RouteWardenStudents, RouteWardenLeave,
	},
	models.RoleAssociateWarden: {
		RouteWardenDashboard, RouteWardenStudents, RouteWardenLeave,
	},
	models.RoleHostelSupervisor: {
		RouteSupervisorDashboard, RouteSupervisorInventory,
	},
	models.RoleSecurity: {
		RouteSecurityGate, RouteSecurityVisitors,
	},
	models.RoleHostelGate: {
		RouteSecurityGate, RouteSecurityVisitors,
	},
	models.RoleMaintenanceStaff: {
		RouteMaintenanceDashboard,
	},
	models.RoleStudent: {
		RouteStudentHome, RouteStudentComplaints, RouteStudentLeave,
	},
	models.RoleGymkhana: {
		RouteGymkhanaEvents,
	},
}

// DefaultCapabilities returns the default capability-key set for a role.
// Unknown roles get an empty set, never an error.
func DefaultCapabilities(role string) KeySet {
	return NewKeySet(defaultCapabilities[role]...)
}

// DefaultRoutes returns the default route-key set for a role.
// Unknown roles get an empty set, never an error.
func DefaultRoutes(role string) KeySet {
	return NewKeySet(defaultRoutes[role]...)
}

// DefaultPermissions derives the coarse resource/action table for a role
// from its default capability set. Unknown roles get an empty map.
func DefaultPermissions(role string) PermissionMap {
	pm := PermissionMap{}
	for _, key := range defaultCapabilities[role] {
		resource, action, ok := splitCapabilityKey(key)
		if !ok {
			continue
		}
		if pm[resource] == nil {
			pm[resource] = map[string]bool{}
		}
		pm[resource][action] = true
	}
	return pm
}
