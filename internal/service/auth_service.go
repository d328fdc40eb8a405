package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/otp"
	"github.com/krishisetu/krishisetu/internal/platform/notify"
	"github.com/krishisetu/krishisetu/internal/repo/postgres"
	"github.com/krishisetu/krishisetu/internal/session"
	"github.com/krishisetu/krishisetu/pkg/events"
	"github.com/krishisetu/krishisetu/pkg/logger"
)

type AuthService interface {
	RegisterFarmer(ctx context.Context, req *domain.RegisterFarmerRequest) (*domain.Farmer, *session.Session, error)
	LoginFarmer(ctx context.Context, phone, password string) (*domain.Farmer, *session.Session, error)
	LoginExpert(ctx context.Context, username, password string) (*domain.Expert, *session.Session, error)
	LoginAdmin(ctx context.Context, username, password string) (*domain.Admin, *session.Session, error)

	SendLoginOTP(ctx context.Context, phone string) (string, error)
	VerifyLoginOTP(ctx context.Context, phone, code string) (*domain.Farmer, *session.Session, error)

	SendResetOTP(ctx context.Context, phone string) (string, error)
	VerifyResetOTP(ctx context.Context, phone, code string) error
	ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error

	Logout(ctx context.Context, sessionID string) error
	Whoami(ctx context.Context, sess *session.Session) (any, error)

	GetFarmer(ctx context.Context, id int64) (*domain.Farmer, error)
	UpdateFarmer(ctx context.Context, id int64, req *domain.UpdateFarmerRequest) (*domain.Farmer, error)
}

type authService struct {
	farmers  postgres.FarmerRepository
	experts  postgres.ExpertRepository
	admins   postgres.AdminRepository
	otps     *otp.Ledger
	sessions *session.Manager
	sms      notify.SMSSender
	eventBus events.EventBus
}

func NewAuthService(
	farmers postgres.FarmerRepository,
	experts postgres.ExpertRepository,
	admins postgres.AdminRepository,
	otps *otp.Ledger,
	sessions *session.Manager,
	sms notify.SMSSender,
	eventBus events.EventBus,
) AuthService {
	return &authService{
		farmers:  farmers,
		experts:  experts,
		admins:   admins,
		otps:     otps,
		sessions: sessions,
		sms:      sms,
		eventBus: eventBus,
	}
}

func (s *authService) RegisterFarmer(ctx context.Context, req *domain.RegisterFarmerRequest) (*domain.Farmer, *session.Session, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	existing, err := s.farmers.FindByPhone(ctx, req.Phone)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing farmer: %w", err)
	}
	if existing != nil {
		return nil, nil, domain.ErrDuplicate
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	farmer, err := s.farmers.Create(ctx, req, passwordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create farmer: %w", err)
	}

	sess, err := s.sessions.Create(ctx, domain.RoleFarmer, farmer.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.FarmerRegistered, events.FarmerRegisteredEvent{
		FarmerID: farmer.ID,
		Phone:    farmer.Phone,
		District: farmer.District,
		At:       time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "failed to publish farmer registered event", "error", err, "farmer_id", farmer.ID)
	}

	return farmer, sess, nil
}

func (s *authService) LoginFarmer(ctx context.Context, phone, password string) (*domain.Farmer, *session.Session, error) {
	farmer, err := s.farmers.FindByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find farmer: %w", err)
	}
	if farmer == nil {
		// Absent accounts read as bad credentials; only send-OTP discloses
		// whether a phone is registered.
		return nil, nil, domain.ErrInvalidCredentials
	}

	ok, rehash, err := verifyCredential(password, farmer.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if !farmer.IsActive {
		return nil, nil, domain.ErrAccountDisabled
	}
	if rehash {
		s.rehashFarmer(ctx, farmer.ID, password)
	}

	sess, err := s.sessions.Create(ctx, domain.RoleFarmer, farmer.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	return farmer, sess, nil
}

func (s *authService) LoginExpert(ctx context.Context, username, password string) (*domain.Expert, *session.Session, error) {
	expert, err := s.experts.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find expert: %w", err)
	}
	if expert == nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	ok, rehash, err := verifyCredential(password, expert.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, nil, domain.ErrInvalidCredentials
	}

	// Credential is checked before approval state so a pending expert gets a
	// definite answer instead of a credential error.
	if expert.Status != domain.ExpertApproved {
		return nil, nil, domain.ErrAccountNotApproved
	}
	if !expert.IsActive {
		return nil, nil, domain.ErrAccountDisabled
	}

	if rehash {
		if hash, err := argon2id.CreateHash(password, argon2id.DefaultParams); err == nil {
			if err := s.experts.UpdatePassword(ctx, expert.ID, hash); err != nil {
				logger.WarnContext(ctx, "failed to upgrade expert password hash", "error", err, "expert_id", expert.ID)
			}
		}
	}

	sess, err := s.sessions.Create(ctx, domain.RoleExpert, expert.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	return expert, sess, nil
}

func (s *authService) LoginAdmin(ctx context.Context, username, password string) (*domain.Admin, *session.Session, error) {
	admin, err := s.admins.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find admin: %w", err)
	}
	if admin == nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	ok, rehash, err := verifyCredential(password, admin.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if rehash {
		if hash, err := argon2id.CreateHash(password, argon2id.DefaultParams); err == nil {
			if err := s.admins.UpdatePassword(ctx, admin.ID, hash); err != nil {
				logger.WarnContext(ctx, "failed to upgrade admin password hash", "error", err, "admin_id", admin.ID)
			}
		}
	}

	sess, err := s.sessions.Create(ctx, domain.RoleAdmin, admin.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	return admin, sess, nil
}

// SendLoginOTP issues and dispatches a login code. The code is returned so
// the handler can expose it as devOtp outside production.
func (s *authService) SendLoginOTP(ctx context.Context, phone string) (string, error) {
	farmer, err := s.requireFarmerByPhone(ctx, phone)
	if err != nil {
		return "", err
	}

	code, err := s.otps.Issue(ctx, farmer.Phone, otp.FlowLogin)
	if err != nil {
		return "", fmt.Errorf("failed to issue otp: %w", err)
	}
	if err := s.sms.SendOTP(ctx, farmer.Phone, code); err != nil {
		return "", fmt.Errorf("failed to send otp: %w", err)
	}
	return code, nil
}

func (s *authService) VerifyLoginOTP(ctx context.Context, phone, code string) (*domain.Farmer, *session.Session, error) {
	farmer, err := s.farmerForOTP(ctx, phone)
	if err != nil {
		return nil, nil, err
	}

	if err := s.otps.Consume(ctx, farmer.Phone, code, otp.FlowLogin); err != nil {
		return nil, nil, err
	}

	sess, err := s.sessions.Create(ctx, domain.RoleFarmer, farmer.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	return farmer, sess, nil
}

func (s *authService) SendResetOTP(ctx context.Context, phone string) (string, error) {
	farmer, err := s.requireFarmerByPhone(ctx, phone)
	if err != nil {
		return "", err
	}

	code, err := s.otps.Issue(ctx, farmer.Phone, otp.FlowReset)
	if err != nil {
		return "", fmt.Errorf("failed to issue otp: %w", err)
	}
	if err := s.sms.SendOTP(ctx, farmer.Phone, code); err != nil {
		return "", fmt.Errorf("failed to send otp: %w", err)
	}
	return code, nil
}

func (s *authService) VerifyResetOTP(ctx context.Context, phone, code string) error {
	if _, err := s.farmerForOTP(ctx, phone); err != nil {
		return err
	}
	return s.otps.MarkVerified(ctx, strings.TrimSpace(phone), code)
}

func (s *authService) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error {
	if len(req.NewPassword) < domain.MinPasswordLength {
		return domain.Invalid("new_password", "password must be at least 8 characters")
	}

	farmer, err := s.farmerForOTP(ctx, req.Phone)
	if err != nil {
		return err
	}

	if err := s.otps.Redeem(ctx, farmer.Phone, req.OTP); err != nil {
		return err
	}

	hash, err := argon2id.CreateHash(req.NewPassword, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.farmers.UpdatePassword(ctx, farmer.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Destroy(ctx, sessionID)
}

func (s *authService) Whoami(ctx context.Context, sess *session.Session) (any, error) {
	switch sess.Role {
	case domain.RoleFarmer:
		farmer, err := s.farmers.FindByID(ctx, sess.AccountID)
		if err != nil {
			return nil, err
		}
		if farmer == nil {
			return nil, domain.ErrUnauthenticated
		}
		return farmer.ToInfo(), nil
	case domain.RoleExpert:
		expert, err := s.experts.FindByID(ctx, sess.AccountID)
		if err != nil {
			return nil, err
		}
		if expert == nil {
			return nil, domain.ErrUnauthenticated
		}
		return expert.ToInfo(), nil
	case domain.RoleAdmin:
		admin, err := s.admins.FindByID(ctx, sess.AccountID)
		if err != nil {
			return nil, err
		}
		if admin == nil {
			return nil, domain.ErrUnauthenticated
		}
		return map[string]any{"id": admin.ID, "username": admin.Username, "name": admin.Name, "role": domain.RoleAdmin}, nil
	default:
		return nil, domain.ErrUnauthenticated
	}
}

func (s *authService) GetFarmer(ctx context.Context, id int64) (*domain.Farmer, error) {
	farmer, err := s.farmers.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get farmer: %w", err)
	}
	if farmer == nil {
		return nil, domain.ErrAccountNotFound
	}
	return farmer, nil
}

func (s *authService) UpdateFarmer(ctx context.Context, id int64, req *domain.UpdateFarmerRequest) (*domain.Farmer, error) {
	farmer, err := s.farmers.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update farmer: %w", err)
	}
	if farmer == nil {
		return nil, domain.ErrAccountNotFound
	}
	return farmer, nil
}

// requireFarmerByPhone backs the send-OTP endpoints, where an explicit 404
// for unknown phones supports the "register first" UX.
func (s *authService) requireFarmerByPhone(ctx context.Context, phone string) (*domain.Farmer, error) {
	farmer, err := s.farmers.FindByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		return nil, fmt.Errorf("failed to find farmer: %w", err)
	}
	if farmer == nil {
		return nil, domain.ErrAccountNotFound
	}
	if !farmer.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	return farmer, nil
}

// farmerForOTP resolves the account a submitted code claims to belong to.
// An unknown phone can never hold a live code, so absence reads as a
// missing record rather than disclosing whether the account exists.
func (s *authService) farmerForOTP(ctx context.Context, phone string) (*domain.Farmer, error) {
	farmer, err := s.farmers.FindByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		return nil, fmt.Errorf("failed to find farmer: %w", err)
	}
	if farmer == nil {
		return nil, domain.ErrOTPNotFound
	}
	if !farmer.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	return farmer, nil
}

func (s *authService) rehashFarmer(ctx context.Context, id int64, password string) {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return
	}
	if err := s.farmers.UpdatePassword(ctx, id, hash); err != nil {
		logger.WarnContext(ctx, "failed to upgrade password hash", "error", err, "farmer_id", id)
	}
}

// verifyCredential checks a password against either an argon2id hash or a
// legacy plaintext credential carried over from the old system. Legacy
// matches report rehash=true so the caller can upgrade the stored value.
func verifyCredential(password, stored string) (ok, rehash bool, err error) {
	if strings.HasPrefix(stored, "$argon2id$") {
		ok, err = argon2id.ComparePasswordAndHash(password, stored)
		return ok, false, err
	}
	ok = subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
	return ok, ok, nil
}
