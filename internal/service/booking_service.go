package service

import (
	"context"
	"fmt"
	"time"

	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/internal/platform/notify"
	"github.com/krishisetu/krishisetu/internal/platform/payments"
	"github.com/krishisetu/krishisetu/internal/repo/postgres"
	"github.com/krishisetu/krishisetu/pkg/events"
	"github.com/krishisetu/krishisetu/pkg/logger"
)

type BookingService interface {
	Create(ctx context.Context, farmerID int64, req *domain.CreateBookingRequest) (*domain.Booking, string, error)
	Get(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, actor Actor, id int64, req *domain.UpdateBookingStatusRequest) (*domain.Booking, error)
	ListForFarmer(ctx context.Context, farmerID int64, limit, offset int) ([]domain.Booking, error)
	ListForExpert(ctx context.Context, expertID int64, status *domain.BookingStatus, limit, offset int) ([]domain.Booking, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.Booking, error)
	ListExperts(ctx context.Context, category string, limit, offset int) ([]domain.ExpertInfo, error)
}

// Actor is the role-scoped identity acting on a booking.
type Actor struct {
	Role      string
	AccountID int64
}

type bookingService struct {
	bookings postgres.BookingRepository
	experts  postgres.ExpertRepository
	farmers  postgres.FarmerRepository
	payments payments.Processor
	email    notify.EmailSender
	eventBus events.EventBus
}

func NewBookingService(
	bookings postgres.BookingRepository,
	experts postgres.ExpertRepository,
	farmers postgres.FarmerRepository,
	processor payments.Processor,
	email notify.EmailSender,
	eventBus events.EventBus,
) BookingService {
	return &bookingService{
		bookings: bookings,
		experts:  experts,
		farmers:  farmers,
		payments: processor,
		email:    email,
		eventBus: eventBus,
	}
}

// Create books a consultation slot. The expert's fee is captured on the
// booking at creation time so later fee changes do not reprice it. The
// returned string is the payment client secret, empty when the fee is zero.
func (s *bookingService) Create(ctx context.Context, farmerID int64, req *domain.CreateBookingRequest) (*domain.Booking, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	expert, err := s.experts.FindByID(ctx, req.ExpertID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find expert: %w", err)
	}
	if expert == nil || expert.Status != domain.ExpertApproved || !expert.IsActive {
		return nil, "", domain.ErrNotFound
	}

	booking, err := s.bookings.Create(ctx, farmerID, req, expert.FeeRupees)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create booking: %w", err)
	}

	var clientSecret string
	if booking.FeeRupees > 0 {
		intentID, secret, err := s.payments.CreateIntent(booking.FeeRupees,
			fmt.Sprintf("Consultation #%d with %s", booking.ID, expert.Name))
		if err != nil {
			logger.ErrorContext(ctx, "failed to create payment intent", "error", err, "booking_id", booking.ID)
		} else if intentID != "" {
			if err := s.bookings.SetPaymentIntent(ctx, booking.ID, intentID); err != nil {
				logger.ErrorContext(ctx, "failed to attach payment intent", "error", err, "booking_id", booking.ID)
			}
			booking.PaymentIntentID = intentID
			clientSecret = secret
		}
	}

	s.publish(ctx, events.BookingCreated, booking)
	return booking, clientSecret, nil
}

func (s *bookingService) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, domain.ErrNotFound
	}
	return booking, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, actor Actor, id int64, req *domain.UpdateBookingStatusRequest) (*domain.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorizeTransition(actor, booking, req.Status); err != nil {
		return nil, err
	}
	if !domain.ValidTransition(booking.Status, req.Status) {
		return nil, domain.ErrInvalidTransition
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, req.Status, req.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}

	if req.Status == domain.BookingRejected || req.Status == domain.BookingCanceled {
		if err := s.payments.CancelIntent(updated.PaymentIntentID); err != nil {
			logger.WarnContext(ctx, "failed to cancel payment intent", "error", err, "booking_id", updated.ID)
		}
	}

	s.notifyStatusChange(ctx, updated)
	s.publish(ctx, subjectForStatus(req.Status), updated)
	return updated, nil
}

func (s *bookingService) ListForFarmer(ctx context.Context, farmerID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByFarmer(ctx, farmerID, limit, offset)
}

func (s *bookingService) ListForExpert(ctx context.Context, expertID int64, status *domain.BookingStatus, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByExpert(ctx, expertID, status, limit, offset)
}

func (s *bookingService) ListAll(ctx context.Context, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.List(ctx, limit, offset)
}

func (s *bookingService) ListExperts(ctx context.Context, category string, limit, offset int) ([]domain.ExpertInfo, error) {
	experts, err := s.experts.List(ctx, category, true, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list experts: %w", err)
	}

	infos := make([]domain.ExpertInfo, 0, len(experts))
	for i := range experts {
		infos = append(infos, *experts[i].ToInfo())
	}
	return infos, nil
}

// authorizeTransition enforces who may move a booking where: the farmer who
// owns it may cancel, the booked expert may accept/reject/complete, admins
// may do anything.
func authorizeTransition(actor Actor, booking *domain.Booking, to domain.BookingStatus) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleFarmer:
		if booking.FarmerID != actor.AccountID {
			return domain.ErrNotFound
		}
		if to != domain.BookingCanceled {
			return domain.ErrInvalidTransition
		}
		return nil
	case domain.RoleExpert:
		if booking.ExpertID != actor.AccountID {
			return domain.ErrNotFound
		}
		if to == domain.BookingCanceled {
			return domain.ErrInvalidTransition
		}
		return nil
	default:
		return domain.ErrUnauthenticated
	}
}

func subjectForStatus(status domain.BookingStatus) string {
	switch status {
	case domain.BookingAccepted:
		return events.BookingAccepted
	case domain.BookingRejected:
		return events.BookingRejected
	case domain.BookingCompleted:
		return events.BookingCompleted
	case domain.BookingCanceled:
		return events.BookingCanceled
	default:
		return events.BookingCreated
	}
}

func (s *bookingService) publish(ctx context.Context, subject string, b *domain.Booking) {
	err := s.eventBus.Publish(ctx, subject, events.BookingEvent{
		BookingID: b.ID,
		FarmerID:  b.FarmerID,
		ExpertID:  b.ExpertID,
		Status:    string(b.Status),
		SlotAt:    b.SlotAt,
		At:        time.Now(),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to publish booking event", "error", err, "subject", subject, "booking_id", b.ID)
	}
}

// notifyStatusChange emails the booked expert. Best effort; a missing
// address is skipped.
func (s *bookingService) notifyStatusChange(ctx context.Context, b *domain.Booking) {
	expert, err := s.experts.FindByID(ctx, b.ExpertID)
	if err != nil || expert == nil || expert.Email == "" {
		return
	}
	if err := s.email.SendBookingUpdate(expert.Email, expert.Name, b.Topic, string(b.Status)); err != nil {
		logger.WarnContext(ctx, "failed to send booking update email", "error", err, "booking_id", b.ID)
	}
}
