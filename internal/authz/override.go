package authz

import (
	"strings"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"
)

// Override is a per-user diff against the role defaults: explicit grants
// and explicit revokes of capability and route keys. An empty override
// means "pure role defaults". Overrides are never a full replacement.
type Override struct {
	Grants  KeySet
	Revokes KeySet
}

// EmptyOverride returns an override with empty grant and revoke sets.
func EmptyOverride() Override {
	return Override{Grants: KeySet{}, Revokes: KeySet{}}
}

// IsEmpty reports whether the override carries no grants and no revokes.
func (o Override) IsEmpty() bool {
	return len(o.Grants) == 0 && len(o.Revokes) == 0
}

// ToDoc converts the override to its persisted document shape.
// Empty overrides produce nil, so user documents stay free of empty
// authz blocks.
func (o Override) ToDoc() *models.AuthzDoc {
	if o.IsEmpty() {
		return nil
	}
	return &models.AuthzDoc{
		Grants:  o.Grants.Sorted(),
		Revokes: o.Revokes.Sorted(),
	}
}

// ExtractOverride reads the override diff from a persisted authz document.
// It is total: nil or empty documents yield an empty override, and
// legacy-shaped documents (flat permissions map) are migrated to the diff
// shape. No error path exists; malformed entries are ignored.
func ExtractOverride(doc *models.AuthzDoc) Override {
	if doc == nil {
		return EmptyOverride()
	}
	if doc.IsLegacy() {
		return migrateLegacyPermissions(doc.Permissions)
	}
	return Override{
		Grants:  NewKeySet(doc.Grants...),
		Revokes: NewKeySet(doc.Revokes...),
	}
}

// migrateLegacyPermissions converts the legacy flat resource/action map to
// the diff shape: a true entry becomes a capability grant, an explicit
// false entry becomes a revoke. Entries that do not form a catalog key are
// dropped (the builder would ignore them anyway).
func migrateLegacyPermissions(perms map[string]map[string]bool) Override {
	ov := EmptyOverride()
	for resource, actions := range perms {
		for action, allowed := range actions {
			key := "cap." + resource + "." + action
			if !KnownCapability(key) {
				continue
			}
			if allowed {
				ov.Grants.Add(key)
			} else {
				ov.Revokes.Add(key)
			}
		}
	}
	return ov
}

// splitCapabilityKey splits "cap.<resource>.<action>" into its parts.
func splitCapabilityKey(key string) (resource, action string, ok bool) {
	parts := strings.SplitN(key, ".", 3)
	if len(parts) != 3 || parts[0] != "cap" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
