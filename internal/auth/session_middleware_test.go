package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/authz"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/store"
)

// fakeDirectory serves user records from a map, standing in for the user
// store.
type fakeDirectory struct {
	users map[string]*models.User
}

func (d *fakeDirectory) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := d.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

type middlewareFixture struct {
	sessions  SessionStore
	directory *fakeDirectory
	mw        *SessionMiddleware
}

func newMiddlewareFixture(t *testing.T) *middlewareFixture {
	t.Helper()
	sessions := NewMemorySessionStore()
	directory := &fakeDirectory{users: map[string]*models.User{}}
	mw := NewSessionMiddleware(sessions, directory, nil, &SessionMiddlewareConfig{
		CookieName:     "hms_session",
		SessionTTL:     time.Hour,
		SlidingSession: false,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	})
	return &middlewareFixture{sessions: sessions, directory: directory, mw: mw}
}

func (f *middlewareFixture) addUser(u *models.User) {
	f.directory.users[u.ID] = u
}

// serve runs a request with the session cookie through RequireSession and
// returns the recorder plus the principal the handler observed.
func (f *middlewareFixture) serve(t *testing.T, sessionID string) (*httptest.ResponseRecorder, *authz.Principal) {
	t.Helper()

	var seen *authz.Principal
	handler := f.mw.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = authz.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "hms_session", Value: sessionID})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestRequireSessionNoCookie(t *testing.T) {
	f := newMiddlewareFixture(t)

	rec, seen := f.serve(t, "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if seen != nil {
		t.Error("handler saw a principal without a cookie")
	}
}

func TestRequireSessionUnknownSession(t *testing.T) {
	f := newMiddlewareFixture(t)

	rec, _ := f.serve(t, "no-such-session")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireSessionCacheHit(t *testing.T) {
	f := newMiddlewareFixture(t)

	// Deliberately no user record in the directory: a current-shaped
	// session must not trigger a lookup at all.
	session := newTestSession(t, models.RoleWarden, time.Hour)
	if err := f.sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec, seen := f.serve(t, session.ID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.UserID != session.UserID {
		t.Fatalf("principal = %+v", seen)
	}
	if !seen.Effective.HasCapability(authz.CapStudentsView) {
		t.Error("cached effective not attached to the principal")
	}
}

func TestRequireSessionRebuildsMissingEffective(t *testing.T) {
	f := newMiddlewareFixture(t)
	f.addUser(testUser(models.RoleWarden))

	session := newTestSession(t, models.RoleWarden, time.Hour)
	session.Effective = nil
	if err := f.sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec, seen := f.serve(t, session.ID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || !seen.Effective.Current() {
		t.Fatal("effective not rebuilt")
	}

	// Non-student role: rebuilt value must be flushed back to the store.
	stored, err := f.sessions.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !stored.Effective.Current() {
		t.Error("rebuilt effective not persisted for a staff session")
	}
}

func TestRequireSessionMigratesLegacySession(t *testing.T) {
	f := newMiddlewareFixture(t)
	f.addUser(testUser(models.RoleWarden))

	session := newTestSession(t, models.RoleWarden, time.Hour)
	session.Effective = nil
	session.LegacyPermissions = map[string]map[string]bool{
		"students": {"view": true},
	}
	if err := f.sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec, seen := f.serve(t, session.ID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || !seen.Effective.Current() {
		t.Fatal("legacy session not rebuilt")
	}

	stored, err := f.sessions.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.LegacyPermissions != nil {
		t.Error("legacy permissions field should be cleared after migration")
	}
}

func TestRequireSessionStudentRebuildNotFlushed(t *testing.T) {
	f := newMiddlewareFixture(t)
	user := testUser(models.RoleStudent)
	f.addUser(user)

	session := newTestSession(t, models.RoleStudent, time.Hour)
	session.Effective = nil
	if err := f.sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec, seen := f.serve(t, session.ID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || !seen.Effective.Current() {
		t.Fatal("student session should still be rebuilt in place")
	}

	// The store copy keeps its nil effective: student rebuilds are
	// per-request only.
	stored, err := f.sessions.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Effective != nil {
		t.Error("student session rebuild must not be written back")
	}
}

func TestRequireSessionDeletedUser(t *testing.T) {
	f := newMiddlewareFixture(t)
	// No user record: the session points at a deleted account.

	session := newTestSession(t, models.RoleWarden, time.Hour)
	session.Effective = nil
	if err := f.sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec, seen := f.serve(t, session.ID)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if seen != nil {
		t.Error("handler reached with a deleted user's session")
	}
}

func TestRequireSessionRoleChangePickedUpOnRebuild(t *testing.T) {
	f := newMiddlewareFixture(t)
	demoted := testUser(models.RoleWarden)
	demoted.Role = models.RoleMaintenanceStaff
	f.addUser(demoted)

	// Session still says Warden but has a stale shape, forcing a rebuild.
	session := newTestSession(t, models.RoleWarden, time.Hour)
	session.Effective = &authz.Effective{Shape: "keysets/v1"}
	if err := f.sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec, seen := f.serve(t, session.ID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen.Role != models.RoleMaintenanceStaff {
		t.Errorf("principal role = %q, want the demoted role", seen.Role)
	}
	if seen.Effective.HasCapability(authz.CapLeaveApprove) {
		t.Error("rebuilt effective still carries the old role's capability")
	}
}

func TestRequireSessionBearerToken(t *testing.T) {
	sessions := NewMemorySessionStore()
	directory := &fakeDirectory{users: map[string]*models.User{}}
	tokens, err := NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	mw := NewSessionMiddleware(sessions, directory, tokens, nil)

	user := testUser(models.RoleWarden)
	directory.users[user.ID] = user

	token, err := tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var seen *authz.Principal
	handler := mw.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = authz.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.UserID != user.ID || !seen.Effective.Current() {
		t.Fatalf("principal = %+v", seen)
	}

	// Garbage token is rejected.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", rec.Code)
	}
}
