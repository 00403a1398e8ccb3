package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/authz"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"
)

func testUser(role string) *models.User {
	return &models.User{
		ID:     "u-1",
		Email:  "user@example.edu",
		Name:   "Test User",
		Role:   role,
		Hostel: "H1",
	}
}

func newTestSession(t *testing.T, role string, ttl time.Duration) *Session {
	t.Helper()
	user := testUser(role)
	effective := authz.BuildEffectiveAuthz(role, authz.EmptyOverride())
	return NewSession(user, effective, ttl)
}

func TestNewSession(t *testing.T) {
	session := newTestSession(t, models.RoleWarden, time.Hour)

	if session.ID == "" {
		t.Error("session ID is empty")
	}
	if session.UserID != "u-1" || session.Role != models.RoleWarden {
		t.Errorf("session fields wrong: %+v", session)
	}
	if !session.Effective.Current() {
		t.Error("new session should carry a current-shaped effective")
	}
	if session.IsExpired() {
		t.Error("fresh session should not be expired")
	}

	other := newTestSession(t, models.RoleWarden, time.Hour)
	if other.ID == session.ID {
		t.Error("session IDs must be unique")
	}
}

func TestSessionToPrincipal(t *testing.T) {
	session := newTestSession(t, models.RoleWarden, time.Hour)
	p := session.ToPrincipal()

	if p.UserID != session.UserID || p.Role != session.Role {
		t.Errorf("principal fields wrong: %+v", p)
	}
	if p.Effective != session.Effective {
		t.Error("principal should reference the session's effective value")
	}
}

func TestMemorySessionStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	session := newTestSession(t, models.RoleWarden, time.Hour)

	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != session.UserID {
		t.Errorf("got user %q, want %q", got.UserID, session.UserID)
	}

	got.Hostel = "H2"
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if updated.Hostel != "H2" {
		t.Error("update not persisted")
	}

	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after delete: %v, want ErrSessionNotFound", err)
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	session := newTestSession(t, models.RoleWarden, -time.Minute)

	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Get(ctx, session.ID); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Get expired: %v, want ErrSessionExpired", err)
	}
}

func TestMemorySessionStoreDeleteByUserID(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	first := newTestSession(t, models.RoleWarden, time.Hour)
	second := newTestSession(t, models.RoleWarden, time.Hour)
	other := newTestSession(t, models.RoleStudent, time.Hour)
	other.UserID = "u-2"

	for _, s := range []*Session{first, second, other} {
		if err := store.Create(ctx, s); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	removed, err := store.DeleteByUserID(ctx, "u-1")
	if err != nil {
		t.Fatalf("DeleteByUserID: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if _, err := store.Get(ctx, other.ID); err != nil {
		t.Errorf("unrelated session should survive: %v", err)
	}
}

func TestMemorySessionStoreTouch(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	session := newTestSession(t, models.RoleWarden, time.Hour)

	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	newExpiry := time.Now().Add(48 * time.Hour)
	if err := store.Touch(ctx, session.ID, newExpiry); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.ExpiresAt.After(time.Now().Add(24 * time.Hour)) {
		t.Error("Touch did not extend expiry")
	}
}

func TestMemorySessionStoreCleanupExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	live := newTestSession(t, models.RoleWarden, time.Hour)
	dead := newTestSession(t, models.RoleWarden, -time.Minute)

	if err := store.Create(ctx, live); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, dead); err != nil {
		t.Fatalf("Create: %v", err)
	}

	removed, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := store.Get(ctx, live.ID); err != nil {
		t.Errorf("live session should survive cleanup: %v", err)
	}
}

func TestMemorySessionStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	session := newTestSession(t, models.RoleWarden, time.Hour)

	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got.Role = models.RoleStudent

	again, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.Role != models.RoleWarden {
		t.Error("mutating a returned session changed stored state")
	}
}
