package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/kv"
	"github.com/krishisetu/krishisetu/internal/otp"
	"github.com/krishisetu/krishisetu/internal/service"
	"github.com/krishisetu/krishisetu/internal/session"
	"github.com/krishisetu/krishisetu/pkg/events"
)

// ---------- Mocks ----------

type mockFarmerRepo struct {
	byPhone map[string]*domain.Farmer
	byID    map[int64]*domain.Farmer
	nextID  int64
}

func newMockFarmerRepo() *mockFarmerRepo {
	return &mockFarmerRepo{
		byPhone: make(map[string]*domain.Farmer),
		byID:    make(map[int64]*domain.Farmer),
		nextID:  1,
	}
}

func (m *mockFarmerRepo) add(f *domain.Farmer) *domain.Farmer {
	if f.ID == 0 {
		f.ID = m.nextID
		m.nextID++
	}
	m.byPhone[f.Phone] = f
	m.byID[f.ID] = f
	return f
}

func (m *mockFarmerRepo) Create(_ context.Context, req *domain.RegisterFarmerRequest, passwordHash string) (*domain.Farmer, error) {
	if _, exists := m.byPhone[req.Phone]; exists {
		return nil, domain.ErrDuplicate
	}
	return m.add(&domain.Farmer{
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		District:     req.District,
		IsActive:     true,
	}), nil
}

func (m *mockFarmerRepo) FindByPhone(_ context.Context, phone string) (*domain.Farmer, error) {
	return m.byPhone[phone], nil
}

func (m *mockFarmerRepo) FindByID(_ context.Context, id int64) (*domain.Farmer, error) {
	return m.byID[id], nil
}

func (m *mockFarmerRepo) Update(_ context.Context, id int64, req *domain.UpdateFarmerRequest) (*domain.Farmer, error) {
	f := m.byID[id]
	if f == nil {
		return nil, nil
	}
	if req.Name != nil {
		f.Name = *req.Name
	}
	return f, nil
}

func (m *mockFarmerRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	f := m.byID[id]
	if f == nil {
		return domain.ErrAccountNotFound
	}
	f.PasswordHash = passwordHash
	return nil
}

func (m *mockFarmerRepo) Delete(_ context.Context, id int64) error {
	f := m.byID[id]
	if f == nil {
		return domain.ErrAccountNotFound
	}
	delete(m.byPhone, f.Phone)
	delete(m.byID, id)
	return nil
}

func (m *mockFarmerRepo) List(_ context.Context, limit, offset int) ([]domain.Farmer, error) {
	var out []domain.Farmer
	for _, f := range m.byID {
		out = append(out, *f)
	}
	return out, nil
}

type mockExpertRepo struct {
	byUsername map[string]*domain.Expert
	byID       map[int64]*domain.Expert
}

func newMockExpertRepo() *mockExpertRepo {
	return &mockExpertRepo{
		byUsername: make(map[string]*domain.Expert),
		byID:       make(map[int64]*domain.Expert),
	}
}

func (m *mockExpertRepo) add(e *domain.Expert) {
	m.byUsername[e.Username] = e
	m.byID[e.ID] = e
}

func (m *mockExpertRepo) Create(_ context.Context, req *domain.CreateExpertRequest, hash string) (*domain.Expert, error) {
	e := &domain.Expert{ID: int64(len(m.byID) + 1), Username: req.Username, PasswordHash: hash, Status: domain.ExpertPending, IsActive: true}
	m.add(e)
	return e, nil
}

func (m *mockExpertRepo) FindByUsername(_ context.Context, username string) (*domain.Expert, error) {
	return m.byUsername[username], nil
}

func (m *mockExpertRepo) FindByID(_ context.Context, id int64) (*domain.Expert, error) {
	return m.byID[id], nil
}

func (m *mockExpertRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	e := m.byID[id]
	if e == nil {
		return domain.ErrAccountNotFound
	}
	e.PasswordHash = hash
	return nil
}

func (m *mockExpertRepo) SetStatus(_ context.Context, id int64, status string) error {
	e := m.byID[id]
	if e == nil {
		return domain.ErrAccountNotFound
	}
	e.Status = status
	return nil
}

func (m *mockExpertRepo) SetActive(_ context.Context, id int64, active bool) error {
	e := m.byID[id]
	if e == nil {
		return domain.ErrAccountNotFound
	}
	e.IsActive = active
	return nil
}

func (m *mockExpertRepo) List(_ context.Context, category string, approvedOnly bool, limit, offset int) ([]domain.Expert, error) {
	var out []domain.Expert
	for _, e := range m.byID {
		out = append(out, *e)
	}
	return out, nil
}

type mockAdminRepo struct {
	byUsername map[string]*domain.Admin
}

func (m *mockAdminRepo) FindByUsername(_ context.Context, username string) (*domain.Admin, error) {
	return m.byUsername[username], nil
}

func (m *mockAdminRepo) FindByID(_ context.Context, id int64) (*domain.Admin, error) {
	for _, a := range m.byUsername {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAdminRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	for _, a := range m.byUsername {
		if a.ID == id {
			a.PasswordHash = hash
			return nil
		}
	}
	return domain.ErrAccountNotFound
}

type mockSMS struct {
	lastPhone string
	lastCode  string
	sent      int
}

func (m *mockSMS) SendOTP(_ context.Context, phone, code string) error {
	m.lastPhone = phone
	m.lastCode = code
	m.sent++
	return nil
}

// ---------- Fixture ----------

type fixture struct {
	svc      service.AuthService
	farmers  *mockFarmerRepo
	experts  *mockExpertRepo
	admins   *mockAdminRepo
	sms      *mockSMS
	sessions *session.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := kv.NewMemoryStore()
	sessions := session.NewManager(store, time.Hour, false)
	otps := otp.NewLedger(store, 10*time.Minute)

	farmers := newMockFarmerRepo()
	experts := newMockExpertRepo()
	admins := &mockAdminRepo{byUsername: make(map[string]*domain.Admin)}
	sms := &mockSMS{}

	svc := service.NewAuthService(farmers, experts, admins, otps, sessions, sms, events.NopEventBus{})
	return &fixture{svc: svc, farmers: farmers, experts: experts, admins: admins, sms: sms, sessions: sessions}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return hash
}

// ---------- Registration ----------

func TestRegisterFarmer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	farmer, sess, err := f.svc.RegisterFarmer(ctx, &domain.RegisterFarmerRequest{
		Phone:    "9876543210",
		Password: "plowshare1",
		Name:     "Ramesh",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if farmer.ID == 0 {
		t.Error("expected farmer id to be assigned")
	}
	if sess == nil || sess.Role != domain.RoleFarmer {
		t.Fatalf("expected farmer session, got %+v", sess)
	}
	if farmer.PasswordHash == "plowshare1" {
		t.Error("password stored in plaintext")
	}
	if !strings.HasPrefix(farmer.PasswordHash, "$argon2id$") {
		t.Errorf("expected argon2id hash, got %q", farmer.PasswordHash)
	}

	got, err := f.sessions.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("session lookup: %v", err)
	}
	if got.AccountID != farmer.ID {
		t.Errorf("session bound to account %d, want %d", got.AccountID, farmer.ID)
	}
}

func TestRegisterFarmerDuplicatePhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := &domain.RegisterFarmerRequest{Phone: "9876543210", Password: "plowshare1"}
	if _, _, err := f.svc.RegisterFarmer(ctx, req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, _, err := f.svc.RegisterFarmer(ctx, &domain.RegisterFarmerRequest{Phone: "9876543210", Password: "plowshare2"})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestRegisterFarmerRejectsBadPhone(t *testing.T) {
	f := newFixture(t)

	for _, phone := range []string{"1234567890", "98765", "", "98765432101"} {
		_, _, err := f.svc.RegisterFarmer(context.Background(), &domain.RegisterFarmerRequest{
			Phone: phone, Password: "plowshare1",
		})
		if !domain.IsValidation(err) {
			t.Errorf("phone %q: expected validation error, got %v", phone, err)
		}
	}
}

// ---------- Password login ----------

func TestLoginFarmer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.farmers.add(&domain.Farmer{Phone: "9876543210", PasswordHash: mustHash(t, "plowshare1"), IsActive: true})

	farmer, sess, err := f.svc.LoginFarmer(ctx, "9876543210", "plowshare1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Role != domain.RoleFarmer || sess.AccountID != farmer.ID {
		t.Errorf("bad session %+v", sess)
	}
}

func TestLoginFarmerUnknownPhone(t *testing.T) {
	f := newFixture(t)

	// Login never discloses whether the phone is registered.
	_, _, err := f.svc.LoginFarmer(context.Background(), "9876543210", "whatever1")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginFarmerWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.farmers.add(&domain.Farmer{Phone: "9876543210", PasswordHash: mustHash(t, "plowshare1"), IsActive: true})

	_, _, err := f.svc.LoginFarmer(context.Background(), "9876543210", "wrong-pass")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginFarmerDisabled(t *testing.T) {
	f := newFixture(t)
	f.farmers.add(&domain.Farmer{Phone: "9876543210", PasswordHash: mustHash(t, "plowshare1"), IsActive: false})

	_, _, err := f.svc.LoginFarmer(context.Background(), "9876543210", "plowshare1")
	if !errors.Is(err, domain.ErrAccountDisabled) {
		t.Errorf("expected ErrAccountDisabled, got %v", err)
	}

	// The disabled state only shows after the credential checks out.
	_, _, err = f.svc.LoginFarmer(context.Background(), "9876543210", "wrong-pass")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
}

func TestLoginFarmerLegacyCredentialUpgraded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	farmer := f.farmers.add(&domain.Farmer{Phone: "9876543210", PasswordHash: "plowshare1", IsActive: true})

	_, _, err := f.svc.LoginFarmer(ctx, "9876543210", "plowshare1")
	if err != nil {
		t.Fatalf("legacy login: %v", err)
	}
	if !strings.HasPrefix(f.farmers.byID[farmer.ID].PasswordHash, "$argon2id$") {
		t.Error("legacy credential was not upgraded to argon2id")
	}

	// The upgraded hash must keep working.
	if _, _, err := f.svc.LoginFarmer(ctx, "9876543210", "plowshare1"); err != nil {
		t.Fatalf("login after upgrade: %v", err)
	}
}

func TestLoginExpertPendingApproval(t *testing.T) {
	f := newFixture(t)
	f.experts.add(&domain.Expert{ID: 7, Username: "soils", PasswordHash: mustHash(t, "terracing1"), Status: domain.ExpertPending, IsActive: true})

	_, _, err := f.svc.LoginExpert(context.Background(), "soils", "terracing1")
	if !errors.Is(err, domain.ErrAccountNotApproved) {
		t.Errorf("expected ErrAccountNotApproved, got %v", err)
	}

	// A wrong credential still reads as invalid, not unapproved.
	_, _, err = f.svc.LoginExpert(context.Background(), "soils", "nope-nope")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginExpertUnknownUsername(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.LoginExpert(context.Background(), "ghost", "whatever1")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

// ---------- OTP login flow ----------

func TestLoginOTPFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	farmer := f.farmers.add(&domain.Farmer{Phone: "9876543210", PasswordHash: mustHash(t, "plowshare1"), IsActive: true})

	code, err := f.svc.SendLoginOTP(ctx, "9876543210")
	if err != nil {
		t.Fatalf("send otp: %v", err)
	}
	if f.sms.lastPhone != "9876543210" || len(code) != 6 {
		t.Fatalf("otp not dispatched: phone=%q code=%q", f.sms.lastPhone, code)
	}
	if code != f.sms.lastCode {
		t.Errorf("returned code %q differs from dispatched %q", code, f.sms.lastCode)
	}

	got, sess, err := f.svc.VerifyLoginOTP(ctx, "9876543210", code)
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if got.ID != farmer.ID || sess.Role != domain.RoleFarmer {
		t.Errorf("bad login result: farmer=%d session=%+v", got.ID, sess)
	}

	// Codes are single use.
	_, _, err = f.svc.VerifyLoginOTP(ctx, "9876543210", code)
	if !errors.Is(err, domain.ErrOTPNotFound) {
		t.Errorf("expected ErrOTPNotFound on reuse, got %v", err)
	}
}

func TestLoginOTPMismatchAllowsRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.farmers.add(&domain.Farmer{Phone: "9876543210", PasswordHash: mustHash(t, "plowshare1"), IsActive: true})

	code, err := f.svc.SendLoginOTP(ctx, "9876543210")
	if err != nil {
		t.Fatalf("send otp: %v", err)
	}

	_, _, err = f.svc.VerifyLoginOTP(ctx, "9876543210", "000000")
	if !errors.Is(err, domain.ErrOTPMismatch) {
		t.Fatalf("expected ErrOTPMismatch, got %v", err)
	}

	// The real code still works after a bad guess.
	if _, _, err := f.svc.VerifyLoginOTP(ctx, "9876543210", code); err != nil {
		t.Fatalf("retry with correct code: %v", err)
	}
}

func TestSendLoginOTPUnknownPhone(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SendLoginOTP(context.Background(), "9876543210")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
	if f.sms.sent != 0 {
		t.Error("otp dispatched for unknown phone")
	}
}

func TestVerifyOTPUnknownPhoneReadsAsMissingCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Only the send step may disclose that a phone is unregistered; the
	// verify and reset steps answer as if no code exists.
	if _, _, err := f.svc.VerifyLoginOTP(ctx, "9876543210", "123456"); !errors.Is(err, domain.ErrOTPNotFound) {
		t.Errorf("verify login: expected ErrOTPNotFound, got %v", err)
	}
	if err := f.svc.VerifyResetOTP(ctx, "9876543210", "123456"); !errors.Is(err, domain.ErrOTPNotFound) {
		t.Errorf("verify reset: expected ErrOTPNotFound, got %v", err)
	}
	err := f.svc.ResetPassword(ctx, &domain.ResetPasswordRequest{
		Phone: "9876543210", OTP: "123456", NewPassword: "newpassword",
	})
	if !errors.Is(err, domain.ErrOTPNotFound) {
		t.Errorf("reset: expected ErrOTPNotFound, got %v", err)
	}
}

// ---------- Password reset flow ----------

func TestResetPasswordFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	farmer := f.farmers.add(&domain.Farmer{Phone: "9876543210", PasswordHash: mustHash(t, "oldpassword"), IsActive: true})

	code, err := f.svc.SendResetOTP(ctx, "9876543210")
	if err != nil {
		t.Fatalf("send reset otp: %v", err)
	}

	if err := f.svc.VerifyResetOTP(ctx, "9876543210", code); err != nil {
		t.Fatalf("verify reset otp: %v", err)
	}

	err = f.svc.ResetPassword(ctx, &domain.ResetPasswordRequest{
		Phone: "9876543210", OTP: code, NewPassword: "newpassword",
	})
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if _, _, err := f.svc.LoginFarmer(ctx, "9876543210", "newpassword"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	_, _, err = f.svc.LoginFarmer(ctx, "9876543210", "oldpassword")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("old password still accepted: %v", err)
	}
	_ = farmer
}

func TestResetPasswordRequiresVerifiedOTP(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.farmers.add(&domain.Farmer{Phone: "9876543210", PasswordHash: mustHash(t, "oldpassword"), IsActive: true})

	code, err := f.svc.SendResetOTP(ctx, "9876543210")
	if err != nil {
		t.Fatalf("send reset otp: %v", err)
	}

	// Skipping the verify step must fail even with the right code.
	err = f.svc.ResetPassword(ctx, &domain.ResetPasswordRequest{
		Phone: "9876543210", OTP: code, NewPassword: "newpassword",
	})
	if !errors.Is(err, domain.ErrOTPNotVerified) {
		t.Errorf("expected ErrOTPNotVerified, got %v", err)
	}
}

func TestResetPasswordRejectsShortPassword(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ResetPassword(context.Background(), &domain.ResetPasswordRequest{
		Phone: "9876543210", OTP: "123456", NewPassword: "short",
	})
	if !domain.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

// ---------- Sessions ----------

func TestLogoutDestroysSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.farmers.add(&domain.Farmer{Phone: "9876543210", PasswordHash: mustHash(t, "plowshare1"), IsActive: true})

	_, sess, err := f.svc.LoginFarmer(ctx, "9876543210", "plowshare1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := f.svc.Logout(ctx, sess.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := f.sessions.Get(ctx, sess.ID); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("session survived logout: %v", err)
	}

	// Logging out twice is fine.
	if err := f.svc.Logout(ctx, sess.ID); err != nil {
		t.Errorf("second logout: %v", err)
	}
}

func TestWhoamiFarmer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	farmer := f.farmers.add(&domain.Farmer{Phone: "9876543210", PasswordHash: mustHash(t, "plowshare1"), Name: "Ramesh", IsActive: true})

	_, sess, err := f.svc.LoginFarmer(ctx, "9876543210", "plowshare1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	got, err := f.svc.Whoami(ctx, sess)
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	info, ok := got.(*domain.FarmerInfo)
	if !ok {
		t.Fatalf("expected FarmerInfo, got %T", got)
	}
	if info.ID != farmer.ID || info.Name != "Ramesh" {
		t.Errorf("bad whoami payload %+v", info)
	}
}
