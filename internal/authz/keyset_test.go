package authz

import (
	"testing"

	"github.com/goccy/go-json"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"
)

func TestKeySetOperations(t *testing.T) {
	s := NewKeySet("b", "a")

	if !s.Has("a") || !s.Has("b") || s.Has("c") {
		t.Error("membership wrong after construction")
	}

	s.Add("c")
	if !s.Has("c") || s.Len() != 3 {
		t.Error("Add failed")
	}

	s.Delete("a")
	if s.Has("a") || s.Len() != 2 {
		t.Error("Delete failed")
	}
}

func TestKeySetCloneIsIndependent(t *testing.T) {
	s := NewKeySet("a", "b")
	c := s.Clone()

	c.Add("c")
	c.Delete("a")

	if s.Has("c") || !s.Has("a") {
		t.Error("mutating the clone affected the original")
	}
}

func TestKeySetEqual(t *testing.T) {
	if !NewKeySet("a", "b").Equal(NewKeySet("b", "a")) {
		t.Error("order must not matter")
	}
	if NewKeySet("a").Equal(NewKeySet("a", "b")) {
		t.Error("different sizes must not be equal")
	}
	if NewKeySet("a", "x").Equal(NewKeySet("a", "y")) {
		t.Error("different members must not be equal")
	}
	if !NewKeySet().Equal(KeySet{}) {
		t.Error("empty sets must be equal")
	}
}

func TestKeySetJSONSortedAndStable(t *testing.T) {
	s := NewKeySet("cap.users.view", "cap.rooms.edit", "cap.leave.apply")

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `["cap.leave.apply","cap.rooms.edit","cap.users.view"]`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}

	// Repeated marshals are byte-identical.
	again, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(again) != string(data) {
		t.Error("repeated marshal produced different bytes")
	}

	var back KeySet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(s) {
		t.Error("round trip lost keys")
	}
}

func TestCatalogIntegrity(t *testing.T) {
	for _, key := range CatalogCapabilities() {
		if _, _, ok := splitCapabilityKey(key); !ok {
			t.Errorf("capability key %q does not follow cap.<resource>.<action>", key)
		}
		if KnownRoute(key) {
			t.Errorf("key %q is in both catalogs", key)
		}
	}
	for _, key := range CatalogRoutes() {
		if KnownCapability(key) {
			t.Errorf("key %q is in both catalogs", key)
		}
	}
}

func TestRoleDefaultsAreCatalogSubsets(t *testing.T) {
	for role, keys := range defaultCapabilities {
		for _, key := range keys {
			if !KnownCapability(key) {
				t.Errorf("role %s references unknown capability %q", role, key)
			}
		}
	}
	for role, keys := range defaultRoutes {
		for _, key := range keys {
			if !KnownRoute(key) {
				t.Errorf("role %s references unknown route %q", role, key)
			}
		}
	}
}

func TestDefaultPermissionsDerivedFromCapabilities(t *testing.T) {
	pm := DefaultPermissions(models.RoleStudent)
	if !pm["complaints"]["create"] {
		t.Error("Student should have complaints.create")
	}
	if pm["users"]["delete"] {
		t.Error("Student should not have users.delete")
	}

	// Every entry must trace back to a default capability key.
	for role := range defaultCapabilities {
		pm := DefaultPermissions(role)
		for resource, actions := range pm {
			for action, on := range actions {
				if !on {
					t.Errorf("role %s: %s.%s is false, derived entries are always true", role, resource, action)
				}
				key := "cap." + resource + "." + action
				if !DefaultCapabilities(role).Has(key) {
					t.Errorf("role %s: %s.%s has no backing capability", role, resource, action)
				}
			}
		}
	}

	if got := DefaultPermissions("No Such Role"); len(got) != 0 {
		t.Errorf("unknown role permissions = %v, want empty", got)
	}
}
