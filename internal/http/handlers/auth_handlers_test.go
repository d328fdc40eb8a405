package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/http/handlers"
	"github.com/krishisetu/krishisetu/internal/kv"
	"github.com/krishisetu/krishisetu/internal/session"
)

// ---------- Mocks ----------

type mockAuthService struct {
	farmers map[string]*domain.Farmer // phone -> farmer
	otp     string
	sendErr error
}

func newMockAuthService() *mockAuthService {
	return &mockAuthService{
		farmers: map[string]*domain.Farmer{},
		otp:     "123456",
	}
}

func (m *mockAuthService) RegisterFarmer(ctx context.Context, req *domain.RegisterFarmerRequest) (*domain.Farmer, *session.Session, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	if _, exists := m.farmers[req.Phone]; exists {
		return nil, nil, domain.ErrDuplicate
	}
	f := &domain.Farmer{ID: int64(len(m.farmers) + 1), Phone: req.Phone, Name: req.Name, IsActive: true}
	m.farmers[req.Phone] = f
	return f, &session.Session{ID: "sess-" + req.Phone, Role: domain.RoleFarmer, AccountID: f.ID}, nil
}

func (m *mockAuthService) LoginFarmer(ctx context.Context, phone, password string) (*domain.Farmer, *session.Session, error) {
	f := m.farmers[phone]
	if f == nil {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if password != "correct-horse" {
		return nil, nil, domain.ErrInvalidCredentials
	}
	return f, &session.Session{ID: "sess-" + phone, Role: domain.RoleFarmer, AccountID: f.ID}, nil
}

func (m *mockAuthService) LoginExpert(ctx context.Context, username, password string) (*domain.Expert, *session.Session, error) {
	return nil, nil, domain.ErrInvalidCredentials
}

func (m *mockAuthService) LoginAdmin(ctx context.Context, username, password string) (*domain.Admin, *session.Session, error) {
	return nil, nil, domain.ErrInvalidCredentials
}

func (m *mockAuthService) SendLoginOTP(ctx context.Context, phone string) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	if m.farmers[phone] == nil {
		return "", domain.ErrAccountNotFound
	}
	return m.otp, nil
}

func (m *mockAuthService) VerifyLoginOTP(ctx context.Context, phone, code string) (*domain.Farmer, *session.Session, error) {
	f := m.farmers[phone]
	if f == nil {
		return nil, nil, domain.ErrOTPNotFound
	}
	if code != m.otp {
		return nil, nil, domain.ErrOTPMismatch
	}
	return f, &session.Session{ID: "sess-" + phone, Role: domain.RoleFarmer, AccountID: f.ID}, nil
}

func (m *mockAuthService) SendResetOTP(ctx context.Context, phone string) (string, error) {
	return m.SendLoginOTP(ctx, phone)
}

func (m *mockAuthService) VerifyResetOTP(ctx context.Context, phone, code string) error {
	if m.farmers[phone] == nil {
		return domain.ErrOTPNotFound
	}
	if code != m.otp {
		return domain.ErrOTPMismatch
	}
	return nil
}

func (m *mockAuthService) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error {
	if len(req.NewPassword) < domain.MinPasswordLength {
		return domain.Invalid("new_password", "password must be at least 8 characters")
	}
	if req.OTP != m.otp {
		return domain.ErrOTPNotVerified
	}
	return nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error { return nil }

func (m *mockAuthService) Whoami(ctx context.Context, sess *session.Session) (any, error) {
	for _, f := range m.farmers {
		if f.ID == sess.AccountID {
			return f.ToInfo(), nil
		}
	}
	return nil, domain.ErrUnauthenticated
}

func (m *mockAuthService) GetFarmer(ctx context.Context, id int64) (*domain.Farmer, error) {
	for _, f := range m.farmers {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *mockAuthService) UpdateFarmer(ctx context.Context, id int64, req *domain.UpdateFarmerRequest) (*domain.Farmer, error) {
	f, err := m.GetFarmer(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		f.Name = *req.Name
	}
	return f, nil
}

// ---------- Helpers ----------

func newAuthServer(t *testing.T, svc *mockAuthService, production bool) *httptest.Server {
	t.Helper()
	store := kv.NewMemoryStore()
	sessions := session.NewManager(store, time.Hour, false)
	limiter := kv.NewRateLimiter(store, 5, time.Minute)
	h := handlers.NewAuthHandler(svc, sessions, limiter, production)

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

// ---------- Tests ----------

func TestRegisterFarmerEndpoint(t *testing.T) {
	svc := newMockAuthService()
	srv := newAuthServer(t, svc, false)

	resp := postJSON(t, srv.URL+"/farmer/register", map[string]any{
		"phone": "9876543210", "password": "plowshare1", "name": "Ramesh",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var sessionCookie bool
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName && c.Value != "" && c.HttpOnly {
			sessionCookie = true
		}
	}
	if !sessionCookie {
		t.Error("expected HttpOnly session cookie on register")
	}

	body := decodeBody(t, resp)
	if body["phone"] != "9876543210" {
		t.Errorf("body = %v", body)
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Error("password hash leaked in response")
	}
}

func TestRegisterFarmerDuplicate(t *testing.T) {
	svc := newMockAuthService()
	srv := newAuthServer(t, svc, false)

	req := map[string]any{"phone": "9876543210", "password": "plowshare1"}
	postJSON(t, srv.URL+"/farmer/register", req).Body.Close()

	resp := postJSON(t, srv.URL+"/farmer/register", req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLoginFarmerStatusCodes(t *testing.T) {
	svc := newMockAuthService()
	svc.farmers["9876543210"] = &domain.Farmer{ID: 1, Phone: "9876543210", IsActive: true}
	srv := newAuthServer(t, svc, false)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"ok", map[string]any{"phone": "9876543210", "password": "correct-horse"}, http.StatusOK},
		{"wrong password", map[string]any{"phone": "9876543210", "password": "battery-staple"}, http.StatusUnauthorized},
		{"unknown phone answers like a bad password", map[string]any{"phone": "9876500000", "password": "correct-horse"}, http.StatusUnauthorized},
		{"missing fields", map[string]any{"phone": "9876543210"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/farmer/login", tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestSendOTPDevChannel(t *testing.T) {
	svc := newMockAuthService()
	svc.farmers["9876543210"] = &domain.Farmer{ID: 1, Phone: "9876543210", IsActive: true}

	t.Run("development exposes devOtp", func(t *testing.T) {
		srv := newAuthServer(t, svc, false)
		resp := postJSON(t, srv.URL+"/farmer/login/send-otp", map[string]any{"phone": "9876543210"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		body := decodeBody(t, resp)
		if body["devOtp"] != "123456" {
			t.Errorf("devOtp = %v, want 123456", body["devOtp"])
		}
	})

	t.Run("production hides devOtp", func(t *testing.T) {
		srv := newAuthServer(t, svc, true)
		resp := postJSON(t, srv.URL+"/farmer/login/send-otp", map[string]any{"phone": "9876543210"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		body := decodeBody(t, resp)
		if _, present := body["devOtp"]; present {
			t.Error("devOtp leaked in production mode")
		}
	})
}

func TestSendOTPValidation(t *testing.T) {
	svc := newMockAuthService()
	svc.farmers["9876543210"] = &domain.Farmer{ID: 1, Phone: "9876543210", IsActive: true}
	srv := newAuthServer(t, svc, false)

	resp := postJSON(t, srv.URL+"/farmer/login/send-otp", map[string]any{"phone": "12345"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad phone: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/farmer/login/send-otp", map[string]any{"phone": "9876500000"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown phone: status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSendOTPRateLimited(t *testing.T) {
	svc := newMockAuthService()
	svc.farmers["9876543210"] = &domain.Farmer{ID: 1, Phone: "9876543210", IsActive: true}
	srv := newAuthServer(t, svc, false)

	var last int
	for i := 0; i < 6; i++ {
		resp := postJSON(t, srv.URL+"/farmer/login/send-otp", map[string]any{"phone": "9876543210"})
		last = resp.StatusCode
		resp.Body.Close()
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("sixth request: status = %d, want 429", last)
	}
}

func TestVerifyOTPEndpoint(t *testing.T) {
	svc := newMockAuthService()
	svc.farmers["9876543210"] = &domain.Farmer{ID: 1, Phone: "9876543210", IsActive: true}
	srv := newAuthServer(t, svc, false)

	resp := postJSON(t, srv.URL+"/farmer/login/verify-otp", map[string]any{"phone": "9876543210", "otp": "000000"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("mismatch: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/farmer/login/verify-otp", map[string]any{"phone": "9876543210", "otp": "123456"})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("match: status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	// An unregistered phone gets the same 400 as a missing code; only
	// send-otp answers 404.
	resp = postJSON(t, srv.URL+"/farmer/login/verify-otp", map[string]any{"phone": "9876500000", "otp": "123456"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown phone: status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestMeUnauthenticated(t *testing.T) {
	srv := newAuthServer(t, newMockAuthService(), false)

	resp, err := http.Get(srv.URL + "/farmer/me")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["authenticated"] != false {
		t.Errorf("authenticated = %v, want false", body["authenticated"])
	}
}

func TestLogoutIdempotent(t *testing.T) {
	srv := newAuthServer(t, newMockAuthService(), false)

	for i := 0; i < 2; i++ {
		resp := postJSON(t, srv.URL+"/farmer/logout", map[string]any{})
		if resp.StatusCode != http.StatusOK {
			t.Errorf("logout %d: status = %d, want 200", i+1, resp.StatusCode)
		}
		resp.Body.Close()
	}
}
