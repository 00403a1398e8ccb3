package authz

import (
	"testing"

	"github.com/goccy/go-json"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"
)

func TestBuildEffectiveAuthzEmptyOverrideMatchesDefaults(t *testing.T) {
	for _, role := range models.AllRoles {
		t.Run(role, func(t *testing.T) {
			eff := BuildEffectiveAuthz(role, EmptyOverride())

			if !eff.Current() {
				t.Fatalf("expected current shape, got %q", eff.Shape)
			}
			if !eff.Routes.Equal(DefaultRoutes(role)) {
				t.Errorf("routes differ from role defaults for %s", role)
			}
			if !eff.Capabilities.Equal(DefaultCapabilities(role)) {
				t.Errorf("capabilities differ from role defaults for %s", role)
			}
		})
	}
}

func TestBuildEffectiveAuthzUnknownRole(t *testing.T) {
	eff := BuildEffectiveAuthz("Registrar", EmptyOverride())

	if eff.Routes.Len() != 0 || eff.Capabilities.Len() != 0 {
		t.Errorf("unknown role should yield empty sets, got %d routes, %d capabilities",
			eff.Routes.Len(), eff.Capabilities.Len())
	}
}

func TestBuildEffectiveAuthzGrantAndRevoke(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		override Override
		wantCaps map[string]bool
		wantRts  map[string]bool
	}{
		{
			name: "grant adds beyond defaults",
			role: models.RoleWarden,
			override: Override{
				Grants:  NewKeySet(CapVisitorsRegister, RouteSecurityGate),
				Revokes: KeySet{},
			},
			wantCaps: map[string]bool{
				CapVisitorsRegister: true,
				CapStudentsView:     true, // default survives
			},
			wantRts: map[string]bool{
				RouteSecurityGate:    true,
				RouteWardenDashboard: true,
			},
		},
		{
			name: "revoke removes a default",
			role: models.RoleWarden,
			override: Override{
				Grants:  KeySet{},
				Revokes: NewKeySet(CapLeaveApprove),
			},
			wantCaps: map[string]bool{
				CapLeaveApprove: false,
				CapLeaveView:    true,
			},
		},
		{
			name: "revoke wins over grant of the same key",
			role: models.RoleStudent,
			override: Override{
				Grants:  NewKeySet(CapVisitorsRegister),
				Revokes: NewKeySet(CapVisitorsRegister),
			},
			wantCaps: map[string]bool{
				CapVisitorsRegister: false,
			},
		},
		{
			name: "unknown keys are ignored",
			role: models.RoleStudent,
			override: Override{
				Grants:  NewKeySet("cap.ships.sail", "not-a-key"),
				Revokes: NewKeySet("route.moon.base"),
			},
			wantCaps: map[string]bool{
				"cap.ships.sail":  false,
				CapComplaintsView: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eff := BuildEffectiveAuthz(tt.role, tt.override)

			for key, want := range tt.wantCaps {
				if got := eff.HasCapability(key); got != want {
					t.Errorf("HasCapability(%q) = %v, want %v", key, got, want)
				}
			}
			for key, want := range tt.wantRts {
				if got := eff.HasRoute(key); got != want {
					t.Errorf("HasRoute(%q) = %v, want %v", key, got, want)
				}
			}
		})
	}
}

func TestBuildEffectiveAuthzDeterministic(t *testing.T) {
	override := Override{
		Grants:  NewKeySet(CapVisitorsRegister, RouteSecurityGate),
		Revokes: NewKeySet(CapLeaveApprove),
	}

	first := BuildEffectiveAuthz(models.RoleWarden, override)
	second := BuildEffectiveAuthz(models.RoleWarden, override)

	if !first.Routes.Equal(second.Routes) || !first.Capabilities.Equal(second.Capabilities) {
		t.Fatal("identical inputs produced different sets")
	}

	// Serialized form must also be byte-identical so cached session values
	// compare stable.
	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("serialized forms differ:\n%s\n%s", a, b)
	}
}

func TestBuildEffectiveAuthzDoesNotMutateOverride(t *testing.T) {
	override := Override{
		Grants:  NewKeySet(CapVisitorsRegister),
		Revokes: NewKeySet(CapLeaveApprove),
	}

	_ = BuildEffectiveAuthz(models.RoleWarden, override)

	if override.Grants.Len() != 1 || override.Revokes.Len() != 1 {
		t.Error("builder mutated the override")
	}
}

func TestEffectiveNilSafety(t *testing.T) {
	var eff *Effective

	if eff.Current() {
		t.Error("nil effective should not be current")
	}
	if eff.HasRoute(RouteAdminUsers) {
		t.Error("nil effective should have no routes")
	}
	if eff.HasCapability(CapUsersView) {
		t.Error("nil effective should have no capabilities")
	}
	if !eff.HasAnyCapability(nil) {
		t.Error("empty key list should vacuously pass even on nil effective")
	}
	if eff.HasAnyCapability([]string{CapUsersView}) {
		t.Error("nil effective should fail non-empty any-check")
	}
	if !eff.HasAllCapabilities(nil) {
		t.Error("empty key list should vacuously pass even on nil effective")
	}
}

func TestEffectiveStaleShape(t *testing.T) {
	eff := &Effective{
		Shape:        "keysets/v1",
		Routes:       NewKeySet(RouteAdminUsers),
		Capabilities: NewKeySet(CapUsersView),
	}
	if eff.Current() {
		t.Error("old shape marker should not be current")
	}
}

func TestHasAnyAndAllCapabilities(t *testing.T) {
	eff := BuildEffectiveAuthz(models.RoleStudent, EmptyOverride())

	if !eff.HasAnyCapability([]string{CapUsersDelete, CapComplaintsCreate}) {
		t.Error("any-check should pass when one key is held")
	}
	if eff.HasAllCapabilities([]string{CapUsersDelete, CapComplaintsCreate}) {
		t.Error("all-check should fail when one key is missing")
	}
	if !eff.HasAllCapabilities([]string{CapComplaintsView, CapComplaintsCreate}) {
		t.Error("all-check should pass when every key is held")
	}
}
