package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krishisetu/krishisetu/internal/domain"
)

type WorkshopRepository interface {
	Create(ctx context.Context, req *domain.CreateWorkshopRequest) (*domain.Workshop, error)
	FindByID(ctx context.Context, id int64) (*domain.Workshop, error)
	List(ctx context.Context, upcomingOnly bool, limit, offset int) ([]domain.Workshop, error)
	Register(ctx context.Context, workshopID, farmerID int64) (*domain.WorkshopRegistration, error)
	ListRegistrations(ctx context.Context, workshopID int64) ([]domain.WorkshopRegistration, error)
}

type workshopRepository struct {
	pool *pgxpool.Pool
}

func NewWorkshopRepository(pool *pgxpool.Pool) WorkshopRepository {
	return &workshopRepository{pool: pool}
}

const workshopCols = `id, title, title_hi, description, scheduled_at, location, capacity, registered, fee_rupees, created_at`

func scanWorkshop(row pgx.Row) (*domain.Workshop, error) {
	var w domain.Workshop
	err := row.Scan(
		&w.ID, &w.Title, &w.TitleHi, &w.Description, &w.ScheduledAt,
		&w.Location, &w.Capacity, &w.Registered, &w.FeeRupees, &w.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *workshopRepository) Create(ctx context.Context, req *domain.CreateWorkshopRequest) (*domain.Workshop, error) {
	const q = `
		INSERT INTO workshops (title, title_hi, description, scheduled_at, location, capacity, fee_rupees)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + workshopCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanWorkshop(r.pool.QueryRow(ctx, q,
		req.Title, req.TitleHi, req.Description, req.ScheduledAt, req.Location, req.Capacity, req.FeeRupees,
	))
}

func (r *workshopRepository) FindByID(ctx context.Context, id int64) (*domain.Workshop, error) {
	const q = `SELECT ` + workshopCols + ` FROM workshops WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanWorkshop(r.pool.QueryRow(ctx, q, id))
}

func (r *workshopRepository) List(ctx context.Context, upcomingOnly bool, limit, offset int) ([]domain.Workshop, error) {
	const q = `
		SELECT ` + workshopCols + `
		FROM workshops
		WHERE (NOT $1 OR scheduled_at > now())
		ORDER BY scheduled_at
		LIMIT $2 OFFSET $3`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, upcomingOnly, clampLimit(limit), clampOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workshops []domain.Workshop
	for rows.Next() {
		var w domain.Workshop
		if err := rows.Scan(
			&w.ID, &w.Title, &w.TitleHi, &w.Description, &w.ScheduledAt,
			&w.Location, &w.Capacity, &w.Registered, &w.FeeRupees, &w.CreatedAt,
		); err != nil {
			return nil, err
		}
		workshops = append(workshops, w)
	}

	return workshops, rows.Err()
}

// Register claims a seat inside one transaction. The conditional UPDATE is
// the capacity gate: zero rows updated means the workshop is full or gone.
func (r *workshopRepository) Register(ctx context.Context, workshopID, farmerID int64) (*domain.WorkshopRegistration, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const claim = `
		UPDATE workshops
		SET registered = registered + 1
		WHERE id = $1 AND registered < capacity`

	result, err := tx.Exec(ctx, claim, workshopID)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, domain.ErrWorkshopFull
	}

	const insert = `
		INSERT INTO workshop_registrations (workshop_id, farmer_id)
		VALUES ($1, $2)
		RETURNING id, workshop_id, farmer_id, created_at`

	var reg domain.WorkshopRegistration
	err = tx.QueryRow(ctx, insert, workshopID, farmerID).
		Scan(&reg.ID, &reg.WorkshopID, &reg.FarmerID, &reg.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *workshopRepository) ListRegistrations(ctx context.Context, workshopID int64) ([]domain.WorkshopRegistration, error) {
	const q = `
		SELECT id, workshop_id, farmer_id, created_at
		FROM workshop_registrations
		WHERE workshop_id = $1
		ORDER BY created_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, workshopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []domain.WorkshopRegistration
	for rows.Next() {
		var reg domain.WorkshopRegistration
		if err := rows.Scan(&reg.ID, &reg.WorkshopID, &reg.FarmerID, &reg.CreatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}

	return regs, rows.Err()
}
