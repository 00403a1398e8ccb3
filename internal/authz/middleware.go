package authz

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/logging"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"
)

// Middleware provides the access-check middleware: route-key and
// capability-key gates over the principal's session-cached effective
// authz, subject to the enforcement controller.
//
// Every check follows the same decision tree:
//
//  1. No principal in the context: reject 401 without evaluating keys.
//  2. Membership test passes: proceed.
//  3. Membership test fails and the controller enforces this key:
//     reject 403 with a generic message.
//  4. Otherwise: record a would-have-denied diagnostic and proceed.
type Middleware struct {
	controller  *Controller
	audit       *AuditLogger
	diagnostics bool
}

// NewMiddleware creates the access-check middleware. audit may be nil to
// disable audit events; diagnostics controls the would-have-denied warning
// log on the fail-open path.
func NewMiddleware(controller *Controller, audit *AuditLogger, diagnostics bool) *Middleware {
	return &Middleware{
		controller:  controller,
		audit:       audit,
		diagnostics: diagnostics,
	}
}

// RequireRouteAccess gates a route group on one route key.
func (m *Middleware) RequireRouteAccess(routeKey string) func(http.Handler) http.Handler {
	return m.check(KindRoute, []string{routeKey}, func(p *Principal) bool {
		return p.Effective.HasRoute(routeKey)
	})
}

// RequireCapability gates an endpoint on one capability key.
func (m *Middleware) RequireCapability(capKey string) func(http.Handler) http.Handler {
	return m.check(KindCapability, []string{capKey}, func(p *Principal) bool {
		return p.Effective.HasCapability(capKey)
	})
}

// RequireAnyCapability gates an endpoint on at least one of the keys.
// An empty key list vacuously passes.
func (m *Middleware) RequireAnyCapability(capKeys ...string) func(http.Handler) http.Handler {
	return m.check(KindCapability, capKeys, func(p *Principal) bool {
		return p.Effective.HasAnyCapability(capKeys)
	})
}

// RequireAllCapabilities gates an endpoint on every one of the keys.
// An empty key list vacuously passes.
func (m *Middleware) RequireAllCapabilities(capKeys ...string) func(http.Handler) http.Handler {
	return m.check(KindCapability, capKeys, func(p *Principal) bool {
		return p.Effective.HasAllCapabilities(capKeys)
	})
}

func (m *Middleware) check(kind Kind, keys []string, allowed func(*Principal) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				writeDenied(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			if allowed(principal) {
				RecordDecision(kind, principal.Role, DecisionAllow)
				m.logEvent(principal, kind, keys, DecisionAllow, r)
				next.ServeHTTP(w, r)
				return
			}

			if m.shouldEnforceAny(kind, keys) {
				RecordDecision(kind, principal.Role, DecisionDeny)
				m.logEvent(principal, kind, keys, DecisionDeny, r)
				writeDenied(w, http.StatusForbidden, "Access denied")
				return
			}

			// Fail-open: enforcement is not active for these keys.
			RecordDecision(kind, principal.Role, DecisionObserve)
			m.logEvent(principal, kind, keys, DecisionObserve, r)
			if m.diagnostics {
				logging.Warn().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("user_id", principal.UserID).
					Str("role", principal.Role).
					Str("kind", string(kind)).
					Strs("keys", keys).
					Msg("Access check would have denied")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// shouldEnforceAny reports whether enforcement is active for any of the
// tested keys. A single enforced key is enough to block: a caller failing
// a multi-key check cannot slip through because the check also named
// unenforced keys.
func (m *Middleware) shouldEnforceAny(kind Kind, keys []string) bool {
	for _, key := range keys {
		if m.controller.ShouldEnforce(kind, key) {
			return true
		}
	}
	return false
}

func (m *Middleware) logEvent(p *Principal, kind Kind, keys []string, decision string, r *http.Request) {
	if m.audit == nil {
		return
	}
	m.audit.Log(&AuditEvent{
		ActorID:  p.UserID,
		Email:    p.Email,
		Role:     p.Role,
		Kind:     kind,
		Keys:     keys,
		Decision: decision,
		Method:   r.Method,
		Path:     r.URL.Path,
	})
}

// writeDenied emits the generic denial envelope. Key names are logged
// server-side only, never echoed to the caller.
func writeDenied(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	data, err := json.Marshal(&models.APIResponse{
		Success: false,
		Message: message,
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal denial response")
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write denial response")
	}
}
