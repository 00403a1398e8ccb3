package authz

import (
	"fmt"
	"strings"
)

// Mode is the process-wide enforcement mode for access checks.
type Mode string

const (
	// ModeOff never blocks: failed membership tests pass silently.
	ModeOff Mode = "off"

	// ModeObserve blocks only keys on the configured allow-lists; failed
	// tests against other keys log a diagnostic and pass. This is the
	// staged-rollout mode.
	ModeObserve Mode = "observe"

	// ModeEnforce always blocks failed membership tests.
	ModeEnforce Mode = "enforce"
)

// ParseMode converts a configuration string to a Mode.
// An empty string maps to ModeObserve, the safe rollout default.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ModeObserve, nil
	case string(ModeOff):
		return ModeOff, nil
	case string(ModeObserve):
		return ModeObserve, nil
	case string(ModeEnforce):
		return ModeEnforce, nil
	default:
		return "", fmt.Errorf("invalid enforcement mode %q", s)
	}
}

// Kind distinguishes route-key checks from capability-key checks.
type Kind string

const (
	// KindRoute marks route-key checks.
	KindRoute Kind = "route"

	// KindCapability marks capability-key checks.
	KindCapability Kind = "capability"
)

// Wildcard in an allow-list means "all keys of this kind".
const Wildcard = "*"

// Controller decides whether a failed membership test actually blocks the
// request. It is an explicit value constructed from configuration at
// process start — never ambient global state — so tests can run
// independent controllers in parallel. It is immutable after construction
// and safe for concurrent use.
type Controller struct {
	mode   Mode
	routes KeySet
	caps   KeySet
}

// NewController builds a controller for the given mode and allow-lists.
// The allow-lists only matter in ModeObserve; either may contain the
// Wildcard sentinel.
func NewController(mode Mode, routeKeys, capabilityKeys []string) *Controller {
	return &Controller{
		mode:   mode,
		routes: NewKeySet(routeKeys...),
		caps:   NewKeySet(capabilityKeys...),
	}
}

// Mode returns the controller's enforcement mode.
func (c *Controller) Mode() Mode { return c.mode }

// ShouldEnforce reports whether a failed membership test for the given key
// should block the request.
func (c *Controller) ShouldEnforce(kind Kind, key string) bool {
	switch c.mode {
	case ModeEnforce:
		return true
	case ModeOff:
		return false
	case ModeObserve:
		list := c.caps
		if kind == KindRoute {
			list = c.routes
		}
		return list.Has(Wildcard) || list.Has(key)
	default:
		return false
	}
}
