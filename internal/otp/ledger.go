// Package otp holds the one-time-password ledger for the login and
// password-reset flows. Records live in an expiring key-value store keyed
// by (flow, phone); issuing a new code replaces any outstanding one.
package otp

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/kv"
)

type Flow string

const (
	FlowLogin Flow = "login"
	FlowReset Flow = "reset"
)

type record struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
}

type Ledger struct {
	store kv.Store
	ttl   time.Duration
	now   func() time.Time
}

func NewLedger(store kv.Store, ttl time.Duration) *Ledger {
	return &Ledger{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

func key(flow Flow, phone string) string {
	return fmt.Sprintf("otp:%s:%s", flow, phone)
}

// Issue generates a fresh 6-digit code for (phone, flow), replacing any
// prior unconsumed code. The caller dispatches the code out-of-band.
func (l *Ledger) Issue(ctx context.Context, phone string, flow Flow) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	rec := record{
		Code:      code,
		ExpiresAt: l.now().Add(l.ttl),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}

	// Records are kept for twice the code lifetime so a post-expiry verify
	// can report Expired before the record disappears entirely.
	if err := l.store.Set(ctx, key(flow, phone), raw, 2*l.ttl); err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}
	return code, nil
}

func (l *Ledger) load(ctx context.Context, phone string, flow Flow) (*record, error) {
	raw, err := l.store.Get(ctx, key(flow, phone))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, domain.ErrOTPNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}

	if l.now().After(rec.ExpiresAt) {
		// Expired records are removed, not retained.
		_ = l.store.Delete(ctx, key(flow, phone))
		return nil, domain.ErrOTPExpired
	}
	return &rec, nil
}

// Consume verifies a login-flow code and deletes it on match. A mismatch
// retains the record so the user can retry until expiry.
func (l *Ledger) Consume(ctx context.Context, phone, code string, flow Flow) error {
	rec, err := l.load(ctx, phone, flow)
	if err != nil {
		return err
	}
	if rec.Code != code {
		return domain.ErrOTPMismatch
	}
	return l.store.Delete(ctx, key(flow, phone))
}

// MarkVerified validates a reset-flow code and flags the record verified
// without deleting it; the actual password change happens in Redeem.
func (l *Ledger) MarkVerified(ctx context.Context, phone, code string) error {
	rec, err := l.load(ctx, phone, FlowReset)
	if err != nil {
		return err
	}
	if rec.Code != code {
		return domain.ErrOTPMismatch
	}

	rec.Verified = true
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	// Keep the original store lifetime (code expiry plus grace window).
	remaining := rec.ExpiresAt.Add(l.ttl).Sub(l.now())
	return l.store.Set(ctx, key(FlowReset, phone), raw, remaining)
}

// Redeem finalizes the reset flow: the record must be in Verified state and
// the code must still match. The record is deleted on success.
func (l *Ledger) Redeem(ctx context.Context, phone, code string) error {
	rec, err := l.load(ctx, phone, FlowReset)
	if err != nil {
		if errors.Is(err, domain.ErrOTPNotFound) {
			return domain.ErrOTPNotVerified
		}
		return err
	}
	if !rec.Verified {
		return domain.ErrOTPNotVerified
	}
	if rec.Code != code {
		return domain.ErrOTPMismatch
	}
	return l.store.Delete(ctx, key(FlowReset, phone))
}

// generateCode draws a 6-digit code uniformly from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
