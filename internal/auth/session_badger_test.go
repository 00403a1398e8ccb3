package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/authz"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/store"
)

func newBadgerStore(t *testing.T) *BadgerSessionStore {
	t.Helper()
	db, err := store.Open(store.Options{InMemory: true})
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return NewBadgerSessionStore(db)
}

func TestBadgerSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t)
	session := newTestSession(t, models.RoleWarden, time.Hour)

	if err := s.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != session.UserID || got.Role != session.Role {
		t.Errorf("got %+v", got)
	}

	// The cached effective survives serialization with its shape marker
	// and full key sets.
	if !got.Effective.Current() {
		t.Error("effective lost its shape through the store")
	}
	if !got.Effective.Capabilities.Equal(authz.DefaultCapabilities(models.RoleWarden)) {
		t.Error("capability set changed through the store")
	}
	if !got.Effective.Routes.Equal(authz.DefaultRoutes(models.RoleWarden)) {
		t.Error("route set changed through the store")
	}
}

func TestBadgerSessionStoreExpiredGet(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t)
	session := newTestSession(t, models.RoleWarden, -time.Minute)

	if err := s.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Get(ctx, session.ID); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Get expired: %v, want ErrSessionExpired", err)
	}
}

func TestBadgerSessionStoreDeleteByUserID(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t)

	first := newTestSession(t, models.RoleWarden, time.Hour)
	second := newTestSession(t, models.RoleWarden, time.Hour)
	other := newTestSession(t, models.RoleStudent, time.Hour)
	other.UserID = "u-2"

	for _, ses := range []*Session{first, second, other} {
		if err := s.Create(ctx, ses); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	removed, err := s.DeleteByUserID(ctx, "u-1")
	if err != nil {
		t.Fatalf("DeleteByUserID: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if _, err := s.Get(ctx, first.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("deleted session still readable: %v", err)
	}
	if _, err := s.Get(ctx, other.ID); err != nil {
		t.Errorf("unrelated session should survive: %v", err)
	}
}

func TestBadgerSessionStoreCleanupExpired(t *testing.T) {
	ctx := context.Background()
	s := newBadgerStore(t)

	live := newTestSession(t, models.RoleWarden, time.Hour)
	dead := newTestSession(t, models.RoleWarden, -time.Minute)

	if err := s.Create(ctx, live); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, dead); err != nil {
		t.Fatalf("Create: %v", err)
	}

	removed, err := s.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := s.Get(ctx, live.ID); err != nil {
		t.Errorf("live session should survive cleanup: %v", err)
	}
}
