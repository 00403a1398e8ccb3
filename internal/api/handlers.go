// Package api wires the HTTP surface: router, middleware factories, and
// request handlers. Handlers stay thin; authorization decisions are made by
// the authz middleware mounted in front of them.
package api

import (
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/auth"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/authz"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/store"
)

// Handlers holds the dependencies shared by all request handlers.
type Handlers struct {
	db           *badger.DB
	users        *store.UserStore
	complaints   *store.Collection[models.Complaint]
	visitors     *store.Collection[models.Visitor]
	sessions     auth.SessionStore
	tokens       *auth.TokenManager
	sessionTTL   time.Duration
	cookieName   string
	cookieSecure bool
	startTime    time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(db *badger.DB, users *store.UserStore, sessions auth.SessionStore, tokens *auth.TokenManager, sessionTTL time.Duration, cookieName string, cookieSecure bool) *Handlers {
	return &Handlers{
		db:           db,
		users:        users,
		complaints:   store.NewCollection[models.Complaint](db, "complaint:"),
		visitors:     store.NewCollection[models.Visitor](db, "visitor:"),
		sessions:     sessions,
		tokens:       tokens,
		sessionTTL:   sessionTTL,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		startTime:    time.Now(),
	}
}

// sessionCookie builds the session cookie. A negative maxAge clears it.
func (h *Handlers) sessionCookie(value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// HealthLive reports process liveness.
func (h *Handlers) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HealthReady reports readiness, checking that the document store accepts
// reads.
func (h *Handlers) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		err := h.db.View(func(txn *badger.Txn) error { return nil })
		if err != nil {
			respondError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Service not ready", err)
			return
		}
	}
	respondData(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}

// principal fetches the authenticated principal, responding 401 when absent.
func principal(w http.ResponseWriter, r *http.Request) (*authz.Principal, bool) {
	p := authz.PrincipalFromContext(r.Context())
	if p == nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return nil, false
	}
	return p, true
}
