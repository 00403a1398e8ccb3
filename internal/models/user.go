package models

import "time"

// User is a user document as stored in the document store.
// The Authz field carries the per-user authorization override; everything
// else is profile data owned by other subsystems.
type User struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Role         string    `json:"role"`
	SubRole      string    `json:"subRole,omitempty"`
	Hostel       string    `json:"hostel,omitempty"`
	PinnedTabs   []string  `json:"pinnedTabs,omitempty"`
	Authz        *AuthzDoc `json:"authz,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// AuthzDoc is the persisted override shape on a user document.
//
// Two shapes coexist in stored data:
//   - Current: Grants/Revokes key lists, interpreted as a diff against the
//     role defaults. An absent or empty AuthzDoc means "pure role defaults".
//   - Legacy: a flat Permissions map (resource -> action -> bool) written by
//     an earlier generation of the system. Legacy docs are migrated to the
//     diff shape at read time; they are never interpreted directly.
type AuthzDoc struct {
	Grants  []string `json:"grants,omitempty"`
	Revokes []string `json:"revokes,omitempty"`

	// Permissions is the legacy flat shape. Presence of this field marks
	// the document as legacy-shaped when Grants and Revokes are absent.
	Permissions map[string]map[string]bool `json:"permissions,omitempty"`
}

// IsLegacy reports whether the doc carries only the legacy flat shape.
func (d *AuthzDoc) IsLegacy() bool {
	if d == nil {
		return false
	}
	return len(d.Permissions) > 0 && len(d.Grants) == 0 && len(d.Revokes) == 0
}
