package authz

// EffectiveShape marks the current serialized shape of Effective values.
// Sessions carrying a different (or absent) shape are stale and trigger a
// rebuild on the next authenticated request.
const EffectiveShape = "keysets/v2"

// Effective is the resolved authorization for one user: role defaults
// merged with the user's override. It is a plain serializable value so it
// can be cached inside the session record.
type Effective struct {
	Shape        string `json:"shape"`
	Routes       KeySet `json:"routes"`
	Capabilities KeySet `json:"capabilities"`
}

// Current reports whether the value exists and carries the current shape.
func (e *Effective) Current() bool {
	return e != nil && e.Shape == EffectiveShape
}

// HasRoute reports whether the route key is in the effective route set.
func (e *Effective) HasRoute(key string) bool {
	return e != nil && e.Routes.Has(key)
}

// HasCapability reports whether the capability key is in the effective set.
func (e *Effective) HasCapability(key string) bool {
	return e != nil && e.Capabilities.Has(key)
}

// HasAnyCapability reports whether at least one of the keys is present.
// An empty key list vacuously passes; callers must not rely on an empty
// list to mean "deny all".
func (e *Effective) HasAnyCapability(keys []string) bool {
	if len(keys) == 0 {
		return true
	}
	for _, key := range keys {
		if e.HasCapability(key) {
			return true
		}
	}
	return false
}

// HasAllCapabilities reports whether every key is present. An empty key
// list vacuously passes.
func (e *Effective) HasAllCapabilities(keys []string) bool {
	for _, key := range keys {
		if !e.HasCapability(key) {
			return false
		}
	}
	return true
}

// BuildEffectiveAuthz combines a role's defaults with a per-user override
// into one resolved value.
//
// The computation is pure and total: identical (role, override) inputs
// always produce set-equal results, unknown roles start from empty
// defaults, and grants or revokes naming unknown keys are ignored rather
// than rejected — catalog membership is enforced at admin-edit time.
// A revoke always wins, over a role default and over a grant in the same
// override.
func BuildEffectiveAuthz(role string, override Override) *Effective {
	routes := DefaultRoutes(role)
	caps := DefaultCapabilities(role)

	for key := range override.Grants {
		switch {
		case KnownRoute(key):
			routes.Add(key)
		case KnownCapability(key):
			caps.Add(key)
		}
	}

	for key := range override.Revokes {
		routes.Delete(key)
		caps.Delete(key)
	}

	return &Effective{
		Shape:        EffectiveShape,
		Routes:       routes,
		Capabilities: caps,
	}
}
