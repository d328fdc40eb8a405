package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krishisetu/krishisetu/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, farmerID int64, req *domain.CreateBookingRequest, feeRupees int64) (*domain.Booking, error)
	FindByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, notes string) (*domain.Booking, error)
	SetPaymentIntent(ctx context.Context, id int64, intentID string) error
	ListByFarmer(ctx context.Context, farmerID int64, limit, offset int) ([]domain.Booking, error)
	ListByExpert(ctx context.Context, expertID int64, status *domain.BookingStatus, limit, offset int) ([]domain.Booking, error)
	List(ctx context.Context, limit, offset int) ([]domain.Booking, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingCols = `id, farmer_id, expert_id, topic, mode, slot_at, status, fee_rupees, payment_intent_id, notes, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.FarmerID, &b.ExpertID, &b.Topic, &b.Mode, &b.SlotAt,
		&b.Status, &b.FeeRupees, &b.PaymentIntentID, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, farmerID int64, req *domain.CreateBookingRequest, feeRupees int64) (*domain.Booking, error) {
	const q = `
		INSERT INTO bookings (farmer_id, expert_id, topic, mode, slot_at, status, fee_rupees)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
		RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, farmerID, req.ExpertID, req.Topic, req.Mode, req.SlotAt, feeRupees))
	if err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBooking(r.pool.QueryRow(ctx, q, id))
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, notes string) (*domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET status = $2, notes = CASE WHEN $3 = '' THEN notes ELSE $3 END, updated_at = now()
		WHERE id = $1
		RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBooking(r.pool.QueryRow(ctx, q, id, status, notes))
}

func (r *bookingRepository) SetPaymentIntent(ctx context.Context, id int64, intentID string) error {
	const q = `UPDATE bookings SET payment_intent_id = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id, intentID)
	return err
}

func (r *bookingRepository) ListByFarmer(ctx context.Context, farmerID int64, limit, offset int) ([]domain.Booking, error) {
	const q = `
		SELECT ` + bookingCols + `
		FROM bookings
		WHERE farmer_id = $1
		ORDER BY slot_at DESC
		LIMIT $2 OFFSET $3`

	return r.list(ctx, q, farmerID, clampLimit(limit), clampOffset(offset))
}

func (r *bookingRepository) ListByExpert(ctx context.Context, expertID int64, status *domain.BookingStatus, limit, offset int) ([]domain.Booking, error) {
	const q = `
		SELECT ` + bookingCols + `
		FROM bookings
		WHERE expert_id = $1
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY slot_at
		LIMIT $3 OFFSET $4`

	return r.list(ctx, q, expertID, status, clampLimit(limit), clampOffset(offset))
}

func (r *bookingRepository) List(ctx context.Context, limit, offset int) ([]domain.Booking, error) {
	const q = `
		SELECT ` + bookingCols + `
		FROM bookings
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	return r.list(ctx, q, clampLimit(limit), clampOffset(offset))
}

func (r *bookingRepository) list(ctx context.Context, q string, args ...any) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.FarmerID, &b.ExpertID, &b.Topic, &b.Mode, &b.SlotAt,
			&b.Status, &b.FeeRupees, &b.PaymentIntentID, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
