package authz

// The key catalogs are closed: a key not listed here never matches a
// membership test and is rejected when an admin edits an override.
// Catalog membership is validated at admin-edit time, not at build time,
// which keeps the effective-authz builder total.

// Capability keys, grouped by domain.
const (
	CapUsersView   = "cap.users.view"
	CapUsersCreate = "cap.users.create"
	CapUsersEdit   = "cap.users.edit"
	CapUsersDelete = "cap.users.delete"
	CapUsersAuthz  = "cap.users.authz"

	CapStudentsView   = "cap.students.view"
	CapStudentsCreate = "cap.students.create"
	CapStudentsEdit   = "cap.students.edit"
	CapStudentsDelete = "cap.students.delete"

	CapHostelsView = "cap.hostels.view"
	CapHostelsEdit = "cap.hostels.edit"

	CapRoomsView     = "cap.rooms.view"
	CapRoomsAllocate = "cap.rooms.allocate"
	CapRoomsEdit     = "cap.rooms.edit"

	CapComplaintsView    = "cap.complaints.view"
	CapComplaintsCreate  = "cap.complaints.create"
	CapComplaintsResolve = "cap.complaints.resolve"
	CapComplaintsDelete  = "cap.complaints.delete"

	CapVisitorsView     = "cap.visitors.view"
	CapVisitorsRegister = "cap.visitors.register"
	CapVisitorsCheckout = "cap.visitors.checkout"

	CapDisciplineView   = "cap.discipline.view"
	CapDisciplineCreate = "cap.discipline.create"
	CapDisciplineEdit   = "cap.discipline.edit"

	CapInventoryView  = "cap.inventory.view"
	CapInventoryIssue = "cap.inventory.issue"
	CapInventoryEdit  = "cap.inventory.edit"

	CapLeaveView    = "cap.leave.view"
	CapLeaveApply   = "cap.leave.apply"
	CapLeaveApprove = "cap.leave.approve"

	CapAttendanceView = "cap.attendance.view"
	CapAttendanceMark = "cap.attendance.mark"

	CapAppointmentsView     = "cap.appointments.view"
	CapAppointmentsSchedule = "cap.appointments.schedule"
	CapAppointmentsCancel   = "cap.appointments.cancel"
)

// Route keys, grouped by role area.
const (
	RouteAdminDashboard = "route.admin.dashboard"
	RouteAdminUsers     = "route.admin.users"
	RouteAdminSettings  = "route.admin.settings"

	RouteWardenDashboard = "route.warden.dashboard"
	RouteWardenStudents  = "route.warden.students"
	RouteWardenLeave     = "route.warden.leave"

	RouteSupervisorDashboard = "route.supervisor.dashboard"
	RouteSupervisorInventory = "route.supervisor.inventory"

	RouteSecurityGate     = "route.security.gate"
	RouteSecurityVisitors = "route.security.visitors"

	RouteMaintenanceDashboard = "route.maintenance.dashboard"

	RouteStudentHome       = "route.student.home"
	RouteStudentComplaints = "route.student.complaints"
	RouteStudentLeave      = "route.student.leave"

	RouteGymkhanaEvents = "route.gymkhana.events"
)

var capabilityCatalog = NewKeySet(
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
)

var routeCatalog = NewKeySet(
	RouteAdminDashboard, RouteAdminUsers, RouteAdminSettings,
	RouteWardenDashboard, RouteWardenStudents, RouteWardenLeave,
	RouteSupervisorDashboard, RouteSupervisorInventory,
	RouteSecurityGate, RouteSecurityVisitors,
	RouteMaintenanceDashboard,
	RouteStudentHome, RouteStudentComplaints, RouteStudentLeave,
	RouteGymkhanaEvents,
)

// KnownCapability reports whether key is in the capability catalog.
func KnownCapability(key string) bool {
	return capabilityCatalog.Has(key)
}

// KnownRoute reports whether key is in the route catalog.
func KnownRoute(key string) bool {
	return routeCatalog.Has(key)
}

// CatalogCapabilities returns every capability key, sorted.
func CatalogCapabilities() []string {
	return capabilityCatalog.Sorted()
}

// CatalogRoutes returns every route key, sorted.
func CatalogRoutes() []string {
	return routeCatalog.Sorted()
}
