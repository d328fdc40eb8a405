package domain

import (
	"regexp"
	"strings"
	"time"
)

// Indian mobile numbers: exactly 10 digits, first digit 6-9.
var phoneRegex = regexp.MustCompile(`^[6-9][0-9]{9}$`)

func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

const MinPasswordLength = 8

// Roles held by a session. A session holds exactly one role id.
const (
	RoleFarmer = "farmer"
	RoleExpert = "expert"
	RoleAdmin  = "admin"
)

// Expert approval states.
const (
	ExpertPending  = "pending"
	ExpertApproved = "approved"
	ExpertRejected = "rejected"
)

type Farmer struct {
	ID           int64     `json:"id"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Village      string    `json:"village"`
	District     string    `json:"district"`
	State        string    `json:"state"`
	Language     string    `json:"language"`
	Crops        []string  `json:"crops"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Expert struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	FeeRupees    int64     `json:"fee_rupees"`
	Status       string    `json:"status"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Admin struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

// FarmerInfo is the public projection of a farmer, never the credential.
type FarmerInfo struct {
	ID       int64    `json:"id"`
	Phone    string   `json:"phone"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Village  string   `json:"village"`
	District string   `json:"district"`
	State    string   `json:"state"`
	Language string   `json:"language"`
	Crops    []string `json:"crops"`
}

func (f *Farmer) ToInfo() *FarmerInfo {
	return &FarmerInfo{
		ID:       f.ID,
		Phone:    f.Phone,
		Email:    f.Email,
		Name:     f.Name,
		Village:  f.Village,
		District: f.District,
		State:    f.State,
		Language: f.Language,
		Crops:    f.Crops,
	}
}

type ExpertInfo struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	FeeRupees int64  `json:"fee_rupees"`
	Status    string `json:"status"`
}

func (e *Expert) ToInfo() *ExpertInfo {
	return &ExpertInfo{
		ID:        e.ID,
		Username:  e.Username,
		Name:      e.Name,
		Category:  e.Category,
		FeeRupees: e.FeeRupees,
		Status:    e.Status,
	}
}

type RegisterFarmerRequest struct {
	Phone    string   `json:"phone"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Name     string   `json:"name"`
	Village  string   `json:"village"`
	District string   `json:"district"`
	State    string   `json:"state"`
	Language string   `json:"language"`
	Crops    []string `json:"crops"`
}

func (r *RegisterFarmerRequest) Normalize() {
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	r.Village = strings.TrimSpace(r.Village)
	r.District = strings.TrimSpace(r.District)
	r.State = strings.TrimSpace(r.State)
	if r.Language == "" {
		r.Language = "hi"
	}
}

func (r *RegisterFarmerRequest) Validate() error {
	if r.Phone == "" {
		return Invalid("phone", "phone is required")
	}
	if !IsValidPhone(r.Phone) {
		return Invalid("phone", "must be a 10-digit mobile number starting 6-9")
	}
	if len(r.Password) < MinPasswordLength {
		return Invalid("password", "password must be at least 8 characters")
	}
	return nil
}

type PasswordLoginRequest struct {
	Phone    string `json:"phone"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type SendOTPRequest struct {
	Phone string `json:"phone"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

type ResetPasswordRequest struct {
	Phone       string `json:"phone"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

type UpdateFarmerRequest struct {
	Name     *string   `json:"name,omitempty"`
	Email    *string   `json:"email,omitempty"`
	Village  *string   `json:"village,omitempty"`
	District *string   `json:"district,omitempty"`
	State    *string   `json:"state,omitempty"`
	Language *string   `json:"language,omitempty"`
	Crops    *[]string `json:"crops,omitempty"`
}

type CreateExpertRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	FeeRupees int64  `json:"fee_rupees"`
}

func (r *CreateExpertRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return Invalid("username", "username is required")
	}
	if len(r.Password) < MinPasswordLength {
		return Invalid("password", "password must be at least 8 characters")
	}
	if strings.TrimSpace(r.Category) == "" {
		return Invalid("category", "category is required")
	}
	return nil
}
