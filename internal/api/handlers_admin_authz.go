package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/authz"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/logging"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/store"
)

// UserAuthzResponse is the admin view of a user's authorization state:
// the stored override plus the effective sets it produces.
type UserAuthzResponse struct {
	UserID    string           `json:"userId"`
	Role      string           `json:"role"`
	Grants    []string         `json:"grants"`
	Revokes   []string         `json:"revokes"`
	Effective *authz.Effective `json:"effective"`
}

// GetUserAuthz returns a user's override and computed effective
// authorization.
func (h *Handlers) GetUserAuthz(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Lookup failed", err)
		return
	}

	override := authz.ExtractOverride(user.Authz)
	respondData(w, http.StatusOK, &UserAuthzResponse{
		UserID:    user.ID,
		Role:      user.Role,
		Grants:    override.Grants.Sorted(),
		Revokes:   override.Revokes.Sorted(),
		Effective: authz.BuildEffectiveAuthz(user.Role, override),
	})
}

// PutUserAuthzRequest replaces a user's override document. Keys must come
// from the capability or route catalogs; unknown keys are rejected here so
// they never reach storage.
type PutUserAuthzRequest struct {
	Grants  []string `json:"grants" validate:"omitempty,max=256,dive,min=1,max=128"`
	Revokes []string `json:"revokes" validate:"omitempty,max=256,dive,min=1,max=128"`
}

// PutUserAuthz replaces a user's authorization override. Writes are
// last-write-wins; the change takes effect on the user's next session
// rebuild (login or refresh).
func (h *Handlers) PutUserAuthz(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req PutUserAuthzRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if unknown := unknownKeys(append(append([]string{}, req.Grants...), req.Revokes...)); len(unknown) > 0 {
		logging.Warn().Strs("keys", unknown).Str("target_user", userID).Msg("Override edit rejected: unknown keys")
		respondError(w, http.StatusBadRequest, "UNKNOWN_KEYS", "Request contains unrecognized permission keys", nil)
		return
	}

	override := authz.Override{
		Grants:  authz.NewKeySet(req.Grants...),
		Revokes: authz.NewKeySet(req.Revokes...),
	}

	if err := h.users.UpdateOverride(r.Context(), userID, override.ToDoc()); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Update failed", err)
		return
	}

	authz.RecordOverrideEdit()
	if p := authz.PrincipalFromContext(r.Context()); p != nil {
		logging.Info().
			Str("actor_id", p.UserID).
			Str("target_user", userID).
			Int("grants", len(req.Grants)).
			Int("revokes", len(req.Revokes)).
			Msg("Authorization override updated")
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Update succeeded but readback failed", err)
		return
	}

	respondData(w, http.StatusOK, &UserAuthzResponse{
		UserID:    user.ID,
		Role:      user.Role,
		Grants:    override.Grants.Sorted(),
		Revokes:   override.Revokes.Sorted(),
		Effective: authz.BuildEffectiveAuthz(user.Role, override),
	})
}

// DeleteUserAuthz clears a user's override, restoring pure role defaults on
// the next rebuild.
func (h *Handlers) DeleteUserAuthz(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	if err := h.users.UpdateOverride(r.Context(), userID, nil); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Update failed", err)
		return
	}

	authz.RecordOverrideEdit()
	respondMessage(w, http.StatusOK, "Override cleared")
}

// PutUserRoleRequest changes a user's role.
type PutUserRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// PutUserRole changes a user's role and revokes all their live sessions, so
// the next authentication rebuilds from the new role's defaults.
func (h *Handlers) PutUserRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req PutUserRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if !models.IsValidRole(req.Role) {
		respondError(w, http.StatusBadRequest, "INVALID_ROLE", "Unknown role", nil)
		return
	}

	if err := h.users.UpdateRole(r.Context(), userID, req.Role); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Update failed", err)
		return
	}

	removed, err := h.sessions.DeleteByUserID(r.Context(), userID)
	if err != nil {
		logging.Warn().Err(err).Str("target_user", userID).Msg("Failed to revoke sessions after role change")
	}

	logging.Info().Str("target_user", userID).Str("role", req.Role).Int("sessions_revoked", removed).Msg("User role changed")
	respondMessage(w, http.StatusOK, "Role updated")
}

// GetCatalog returns the closed key catalogs so admin UIs can render
// editors without hardcoding key lists.
func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"capabilities": authz.CatalogCapabilities(),
		"routes":       authz.CatalogRoutes(),
	})
}

// GetRoleDefaults returns the default key sets for a role.
func (h *Handlers) GetRoleDefaults(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")
	if !models.IsValidRole(role) {
		respondError(w, http.StatusNotFound, "INVALID_ROLE", "Unknown role", nil)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"role":         role,
		"capabilities": authz.DefaultCapabilities(role).Sorted(),
		"routes":       authz.DefaultRoutes(role).Sorted(),
		"permissions":  authz.DefaultPermissions(role),
	})
}

// unknownKeys returns the subset of keys found in neither catalog.
func unknownKeys(keys []string) []string {
	var unknown []string
	for _, key := range keys {
		if !authz.KnownCapability(key) && !authz.KnownRoute(key) {
			unknown = append(unknown, key)
		}
	}
	return unknown
}
