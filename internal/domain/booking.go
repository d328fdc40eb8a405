package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingRejected  BookingStatus = "rejected"
	BookingCompleted BookingStatus = "completed"
	BookingCanceled  BookingStatus = "canceled"
)

// Consultation modes.
const (
	ModeCall  = "call"
	ModeVisit = "visit"
)

type Booking struct {
	ID              int64         `json:"id"`
	FarmerID        int64         `json:"farmer_id"`
	ExpertID        int64         `json:"expert_id"`
	Topic           string        `json:"topic"`
	Mode            string        `json:"mode"`
	SlotAt          time.Time     `json:"slot_at"`
	Status          BookingStatus `json:"status"`
	FeeRupees       int64         `json:"fee_rupees"`
	PaymentIntentID string        `json:"-"`
	Notes           string        `json:"notes"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type CreateBookingRequest struct {
	ExpertID int64     `json:"expert_id"`
	Topic    string    `json:"topic"`
	Mode     string    `json:"mode"`
	SlotAt   time.Time `json:"slot_at"`
}

func (r *CreateBookingRequest) Normalize() {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Mode == "" {
		r.Mode = ModeCall
	}
}

func (r *CreateBookingRequest) Validate() error {
	if r.ExpertID <= 0 {
		return Invalid("expert_id", "expert_id is required")
	}
	if r.Topic == "" {
		return Invalid("topic", "topic is required")
	}
	if r.Mode != ModeCall && r.Mode != ModeVisit {
		return Invalid("mode", "mode must be call or visit")
	}
	if r.SlotAt.Before(time.Now()) {
		return Invalid("slot_at", "slot must be in the future")
	}
	return nil
}

type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status"`
	Notes  string        `json:"notes"`
}

// ValidTransition reports whether an expert/farmer may move a booking from
// one status to another.
func ValidTransition(from, to BookingStatus) bool {
	switch from {
	case BookingPending:
		return to == BookingAccepted || to == BookingRejected || to == BookingCanceled
	case BookingAccepted:
		return to == BookingCompleted || to == BookingCanceled
	default:
		return false
	}
}
