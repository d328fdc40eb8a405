package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krishisetu/krishisetu/internal/domain"
)

type ExpertRepository interface {
	Create(ctx context.Context, req *domain.CreateExpertRequest, passwordHash string) (*domain.Expert, error)
	FindByUsername(ctx context.Context, username string) (*domain.Expert, error)
	FindByID(ctx context.Context, id int64) (*domain.Expert, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetStatus(ctx context.Context, id int64, status string) error
	SetActive(ctx context.Context, id int64, active bool) error
	List(ctx context.Context, category string, approvedOnly bool, limit, offset int) ([]domain.Expert, error)
}

type expertRepository struct {
	pool *pgxpool.Pool
}

func NewExpertRepository(pool *pgxpool.Pool) ExpertRepository {
	return &expertRepository{pool: pool}
}

const expertCols = `id, username, password_hash, name, category, phone, email, fee_rupees, status, is_active, created_at, updated_at`

func scanExpert(row pgx.Row) (*domain.Expert, error) {
	var e domain.Expert
	err := row.Scan(
		&e.ID, &e.Username, &e.PasswordHash, &e.Name, &e.Category, &e.Phone,
		&e.Email, &e.FeeRupees, &e.Status, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *expertRepository) Create(ctx context.Context, req *domain.CreateExpertRequest, passwordHash string) (*domain.Expert, error) {
	const q = `
		INSERT INTO experts (username, password_hash, name, category, phone, email, fee_rupees, status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', true)
		RETURNING ` + expertCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	e, err := scanExpert(r.pool.QueryRow(ctx, q,
		req.Username, passwordHash, req.Name, req.Category, req.Phone, req.Email, req.FeeRupees,
	))
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (r *expertRepository) FindByUsername(ctx context.Context, username string) (*domain.Expert, error) {
	const q = `SELECT ` + expertCols + ` FROM experts WHERE username = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanExpert(r.pool.QueryRow(ctx, q, username))
}

func (r *expertRepository) FindByID(ctx context.Context, id int64) (*domain.Expert, error) {
	const q = `SELECT ` + expertCols + ` FROM experts WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanExpert(r.pool.QueryRow(ctx, q, id))
}

func (r *expertRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const q = `UPDATE experts SET password_hash = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, passwordHash)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *expertRepository) SetStatus(ctx context.Context, id int64, status string) error {
	const q = `UPDATE experts SET status = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, status)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *expertRepository) SetActive(ctx context.Context, id int64, active bool) error {
	const q = `UPDATE experts SET is_active = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, active)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *expertRepository) List(ctx context.Context, category string, approvedOnly bool, limit, offset int) ([]domain.Expert, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + expertCols + `
		FROM experts
		WHERE ($1 = '' OR category = $1)
		  AND (NOT $2 OR (status = 'approved' AND is_active))
		ORDER BY name
		LIMIT $3 OFFSET $4`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, category, approvedOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var experts []domain.Expert
	for rows.Next() {
		var e domain.Expert
		if err := rows.Scan(
			&e.ID, &e.Username, &e.PasswordHash, &e.Name, &e.Category, &e.Phone,
			&e.Email, &e.FeeRupees, &e.Status, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		experts = append(experts, e)
	}

	return experts, rows.Err()
}
