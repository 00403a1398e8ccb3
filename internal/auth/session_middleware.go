package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/authz"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/logging"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/store"
)

// Rebuild triggers, recorded in metrics.
const (
	RebuildTriggerMissing = "missing"
	RebuildTriggerLegacy  = "legacy"
	RebuildTriggerRefresh = "refresh"
)

// UserDirectory is the slice of the user store the session layer needs to
// resolve overrides. The abstraction keeps the middleware testable
// without BadgerDB.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// SessionMiddlewareConfig configures the session middleware.
type SessionMiddlewareConfig struct {
	// CookieName is the session cookie name.
	CookieName string

	// SessionTTL is the session lifetime, also used for sliding extension.
	SessionTTL time.Duration

	// SlidingSession extends expiry on each authenticated request.
	SlidingSession bool

	CookiePath     string
	CookieSecure   bool
	CookieHTTPOnly bool
	CookieSameSite http.SameSite
}

// DefaultSessionMiddlewareConfig returns sensible defaults.
func DefaultSessionMiddlewareConfig() *SessionMiddlewareConfig {
	return &SessionMiddlewareConfig{
		CookieName:     "hms_session",
		SessionTTL:     24 * time.Hour,
		SlidingSession: true,
		CookiePath:     "/",
		CookieSecure:   true,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	}
}

// SessionMiddleware resolves the authenticated principal for each request.
//
// Its central job beyond authentication is the effective-authz session
// cache: a session carrying a current-shaped effective value is used
// as-is; a session without one, or carrying the legacy flat permissions
// field, triggers a recompute from the user record and — except for
// Student sessions — a write-back to the store. Student sessions are
// recomputed in place but never flushed proactively: they dominate
// traffic, and the stale legacy field does not affect correctness since
// the in-memory value is always current-shaped after the rebuild.
type SessionMiddleware struct {
	sessions SessionStore
	users    UserDirectory
	tokens   *TokenManager
	config   *SessionMiddlewareConfig
}

// NewSessionMiddleware creates the session middleware. tokens may be nil
// to disable bearer-token authentication.
func NewSessionMiddleware(sessions SessionStore, users UserDirectory, tokens *TokenManager, config *SessionMiddlewareConfig) *SessionMiddleware {
	if config == nil {
		config = DefaultSessionMiddlewareConfig()
	}
	return &SessionMiddleware{
		sessions: sessions,
		users:    users,
		tokens:   tokens,
		config:   config,
	}
}

// Config returns the middleware configuration (used by login handlers to
// issue matching cookies).
func (m *SessionMiddleware) Config() *SessionMiddlewareConfig {
	return m.config
}

// RequireSession authenticates the request and attaches the principal and
// session to the context. Requests without a resolvable identity fail
// with 401 before any authorization is evaluated.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Bearer tokens are for API clients; no session is involved and
		// the effective authz is built fresh per request.
		if token := bearerToken(r); token != "" && m.tokens != nil {
			m.serveWithToken(w, r, next, token)
			return
		}

		cookie, err := r.Cookie(m.config.CookieName)
		if err != nil || cookie.Value == "" {
			writeUnauthorized(w)
			return
		}

		session, err := m.sessions.Get(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
				logging.Error().Err(err).Msg("Session lookup failed")
				writeServerError(w)
				return
			}
			writeUnauthorized(w)
			return
		}

		if !m.ensureEffective(r.Context(), session, w) {
			return
		}

		if m.config.SlidingSession {
			newExpiry := time.Now().Add(m.config.SessionTTL)
			if touchErr := m.sessions.Touch(r.Context(), session.ID, newExpiry); touchErr != nil {
				logging.Error().Err(touchErr).Msg("Failed to touch session")
			}
		}

		ctx := authz.WithPrincipal(r.Context(), session.ToPrincipal())
		ctx = WithSession(ctx, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ensureEffective guarantees session.Effective is current-shaped,
// rebuilding from the user record when needed. Returns false if a
// response was already written.
func (m *SessionMiddleware) ensureEffective(ctx context.Context, session *Session, w http.ResponseWriter) bool {
	if session.Effective.Current() && session.LegacyPermissions == nil {
		authz.RecordSessionCacheHit()
		return true
	}
	authz.RecordSessionCacheMiss()

	trigger := RebuildTriggerMissing
	if session.LegacyPermissions != nil {
		trigger = RebuildTriggerLegacy
	}

	user, err := m.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Session refers to a deleted user: unauthenticated.
			writeUnauthorized(w)
			return false
		}
		logging.Error().Err(err).Str("user_id", session.UserID).Msg("User lookup failed during authz rebuild")
		writeServerError(w)
		return false
	}

	session.Effective = authz.BuildEffectiveAuthz(user.Role, authz.ExtractOverride(user.Authz))
	session.Role = user.Role
	session.LegacyPermissions = nil
	authz.RecordEffectiveRebuild(trigger)

	// Student sessions are rebuilt in place only; every other role gets
	// the rebuilt value flushed back to the store.
	if session.Role != models.RoleStudent {
		if err := m.sessions.Update(ctx, session); err != nil {
			logging.Error().Err(err).Str("session_id", session.ID).Msg("Failed to persist rebuilt session authz")
		}
	}
	return true
}

// serveWithToken authenticates an API client via JWT. The effective authz
// is always computed fresh from the user record; there is no session to
// cache it in.
func (m *SessionMiddleware) serveWithToken(w http.ResponseWriter, r *http.Request, next http.Handler, token string) {
	claims, err := m.tokens.Validate(token)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	user, err := m.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeUnauthorized(w)
			return
		}
		logging.Error().Err(err).Str("user_id", claims.UserID).Msg("User lookup failed for token auth")
		writeServerError(w)
		return
	}

	principal := &authz.Principal{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		SubRole:   user.SubRole,
		Effective: authz.BuildEffectiveAuthz(user.Role, authz.ExtractOverride(user.Authz)),
	}
	next.ServeHTTP(w, r.WithContext(authz.WithPrincipal(r.Context(), principal)))
}

// SessionCookie builds the session cookie for the given token value.
// maxAge <= 0 produces an expired cookie for logout.
func (m *SessionMiddleware) SessionCookie(value string, maxAge time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     m.config.CookieName,
		Value:    value,
		Path:     m.config.CookiePath,
		Secure:   m.config.CookieSecure,
		HttpOnly: m.config.CookieHTTPOnly,
		SameSite: m.config.CookieSameSite,
	}
	if maxAge <= 0 {
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(maxAge.Seconds())
	}
	return cookie
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

type sessionContextKey string

const sessionKey sessionContextKey = "auth.session"

// WithSession returns a context carrying the resolved session.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext returns the session attached to the context, or nil.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

func writeUnauthorized(w http.ResponseWriter) {
	writeEnvelope(w, http.StatusUnauthorized, "Authentication required")
}

func writeServerError(w http.ResponseWriter) {
	writeEnvelope(w, http.StatusInternalServerError, "Internal server error")
}

func writeEnvelope(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	data, err := json.Marshal(&models.APIResponse{Success: false, Message: message})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal auth response")
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write auth response")
	}
}
