package session

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/kv"
)

func TestManager_CreateGetDestroy(t *testing.T) {
	m := NewManager(kv.NewMemoryStore(), time.Hour, false)
	ctx := context.Background()

	s, err := m.Create(ctx, domain.RoleFarmer, 42)
	if err != nil {
		t.Fatal(err)
	}
	if s.ID == "" {
		t.Fatal("expected opaque session id")
	}

	got, err := m.Get(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Role != domain.RoleFarmer || got.AccountID != 42 {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := m.Destroy(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(ctx, s.ID); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	// Logout is idempotent
	if err := m.Destroy(ctx, s.ID); err != nil {
		t.Fatalf("second destroy errored: %v", err)
	}
}

func TestManager_Expiry(t *testing.T) {
	store := kv.NewMemoryStore()
	now := time.Now()
	store.SetClock(func() time.Time { return now })

	m := NewManager(store, time.Hour, false)
	ctx := context.Background()

	s, _ := m.Create(ctx, domain.RoleAdmin, 1)

	now = now.Add(2 * time.Hour)
	if _, err := m.Get(ctx, s.ID); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected expired session to be unauthenticated, got %v", err)
	}
}

func TestManager_Cookies(t *testing.T) {
	m := NewManager(kv.NewMemoryStore(), time.Hour, false)
	ctx := context.Background()

	s, _ := m.Create(ctx, domain.RoleExpert, 7)

	rec := httptest.NewRecorder()
	m.SetCookie(rec, s)

	req := httptest.NewRequest("GET", "/me", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	got, err := m.FromRequest(req)
	if err != nil {
		t.Fatal(err)
	}
	if got.AccountID != 7 || got.Role != domain.RoleExpert {
		t.Fatalf("unexpected session from cookie: %+v", got)
	}

	// Request without cookie
	bare := httptest.NewRequest("GET", "/me", nil)
	if _, err := m.FromRequest(bare); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
