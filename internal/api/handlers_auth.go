package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/auth"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/authz"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/logging"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/metrics"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/store"
)

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the caller's profile.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user"`
}

// UserProfile is the caller-facing view of a user. Password hash and raw
// override documents are never included.
type UserProfile struct {
	ID         string   `json:"_id"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	SubRole    string   `json:"subRole,omitempty"`
	Hostel     string   `json:"hostel,omitempty"`
	PinnedTabs []string `json:"pinnedTabs,omitempty"`
}

// Login verifies credentials, builds the caller's effective authorization,
// and issues both a session cookie and a bearer token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			metrics.RecordLoginAttempt("unknown_user")
			// Same response as a bad password so callers cannot probe
			// for registered addresses.
			respondError(w, http.StatusUnauthorized, "BAD_CREDENTIALS", "Invalid email or password", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Login failed", err)
		return
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		metrics.RecordLoginAttempt("bad_credentials")
		logging.Warn().Str("email", sanitizeLogValue(req.Email)).Msg("Login rejected: bad password")
		respondError(w, http.StatusUnauthorized, "BAD_CREDENTIALS", "Invalid email or password", nil)
		return
	}

	effective := authz.BuildEffectiveAuthz(user.Role, authz.ExtractOverride(user.Authz))
	authz.RecordEffectiveRebuild("login")

	session := auth.NewSession(user, effective, h.sessionTTL)
	if err := h.sessions.Create(r.Context(), session); err != nil {
		respondError(w, http.StatusInternalServerError, "SESSION_ERROR", "Login failed", err)
		return
	}

	// Bearer tokens are optional; without a signing secret the session
	// cookie is the only credential issued.
	var token string
	if h.tokens != nil {
		token, err = h.tokens.Generate(user.ID, user.Email, user.Role)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "TOKEN_ERROR", "Login failed", err)
			return
		}
	}

	metrics.RecordLoginAttempt("success")
	logging.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("User logged in")

	http.SetCookie(w, h.sessionCookie(session.ID, h.sessionTTL))
	respondData(w, http.StatusOK, &LoginResponse{
		Token: token,
		User:  profileFromSession(session),
	})
}

// Logout deletes the caller's session and clears the cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := auth.SessionFromContext(r.Context()); session != nil {
		if err := h.sessions.Delete(r.Context(), session.ID); err != nil {
			logging.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to delete session on logout")
		}
	}
	http.SetCookie(w, h.sessionCookie("", -time.Second))
	respondMessage(w, http.StatusOK, "Logged out")
}

// RefreshAuthz rebuilds the caller's effective authorization from the user
// record and persists it back to the session, regardless of role.
func (h *Handlers) RefreshAuthz(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Refresh failed", err)
		return
	}

	effective := authz.BuildEffectiveAuthz(user.Role, authz.ExtractOverride(user.Authz))
	authz.RecordEffectiveRebuild(auth.RebuildTriggerRefresh)

	if session := auth.SessionFromContext(r.Context()); session != nil {
		session.Effective = effective
		session.Role = user.Role
		session.LegacyPermissions = nil
		if err := h.sessions.Update(r.Context(), session); err != nil {
			respondError(w, http.StatusInternalServerError, "SESSION_ERROR", "Refresh failed", err)
			return
		}
	}

	respondData(w, http.StatusOK, effective)
}

// Me returns the caller's profile and effective authorization.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	profile := &UserProfile{
		ID:      p.UserID,
		Email:   p.Email,
		Role:    p.Role,
		SubRole: p.SubRole,
	}
	if session := auth.SessionFromContext(r.Context()); session != nil {
		profile.Hostel = session.Hostel
		profile.PinnedTabs = session.PinnedTabs
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"user":  profile,
		"authz": p.Effective,
	})
}

// PinnedTabsRequest is the payload for PUT /auth/pinned-tabs.
type PinnedTabsRequest struct {
	Tabs []string `json:"tabs" validate:"required,max=20,dive,min=1,max=64"`
}

// UpdatePinnedTabs stores the caller's pinned dashboard tabs on both the
// user record and the live session.
func (h *Handlers) UpdatePinnedTabs(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req PinnedTabsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.users.UpdatePinnedTabs(r.Context(), p.UserID, req.Tabs); err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Update failed", err)
		return
	}

	if session := auth.SessionFromContext(r.Context()); session != nil {
		session.PinnedTabs = req.Tabs
		if err := h.sessions.Update(r.Context(), session); err != nil {
			logging.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to sync pinned tabs to session")
		}
	}

	respondMessage(w, http.StatusOK, "Pinned tabs updated")
}

func profileFromSession(s *auth.Session) *UserProfile {
	return &UserProfile{
		ID:         s.UserID,
		Email:      s.Email,
		Role:       s.Role,
		SubRole:    s.SubRole,
		Hostel:     s.Hostel,
		PinnedTabs: s.PinnedTabs,
	}
}
