// Package session implements server-side sessions: an opaque id handed to
// the client in a cookie, mapped to exactly one role-scoped account id.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/kv"
)

const CookieName = "ks_session"

type Session struct {
	ID        string `json:"-"`
	Role      string `json:"role"`
	AccountID int64  `json:"account_id"`
}

type Manager struct {
	store  kv.Store
	ttl    time.Duration
	secure bool
}

func NewManager(store kv.Store, ttl time.Duration, secure bool) *Manager {
	return &Manager{store: store, ttl: ttl, secure: secure}
}

// Create issues a new session bound to a single role id.
func (m *Manager) Create(ctx context.Context, role string, accountID int64) (*Session, error) {
	s := &Session{
		ID:        uuid.NewString(),
		Role:      role,
		AccountID: accountID,
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	if err := m.store.Set(ctx, "sess:"+s.ID, raw, m.ttl); err != nil {
		return nil, err
	}
	return s, nil
}

// Get resolves a session id, returning ErrUnauthenticated if absent or
// expired.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := m.store.Get(ctx, "sess:"+id)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	s.ID = id
	return &s, nil
}

// Destroy removes a session. Destroying an absent session is not an error,
// which makes logout idempotent.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.store.Delete(ctx, "sess:"+id)
}

// SetCookie writes the session cookie on the response.
func (m *Manager) SetCookie(w http.ResponseWriter, s *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest extracts the session from the request cookie.
func (m *Manager) FromRequest(r *http.Request) (*Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, domain.ErrUnauthenticated
	}
	return m.Get(r.Context(), c.Value)
}
