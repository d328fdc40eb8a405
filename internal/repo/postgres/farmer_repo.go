package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krishisetu/krishisetu/internal/domain"
)

type FarmerRepository interface {
	Create(ctx context.Context, req *domain.RegisterFarmerRequest, passwordHash string) (*domain.Farmer, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Farmer, error)
	FindByID(ctx context.Context, id int64) (*domain.Farmer, error)
	Update(ctx context.Context, id int64, req *domain.UpdateFarmerRequest) (*domain.Farmer, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.Farmer, error)
}

type farmerRepository struct {
	pool *pgxpool.Pool
}

func NewFarmerRepository(pool *pgxpool.Pool) FarmerRepository {
	return &farmerRepository{pool: pool}
}

const farmerCols = `id, phone, email, password_hash, name, village, district, state, language, crops, is_active, created_at, updated_at`

func scanFarmer(row pgx.Row) (*domain.Farmer, error) {
	var f domain.Farmer
	err := row.Scan(
		&f.ID, &f.Phone, &f.Email, &f.PasswordHash, &f.Name, &f.Village, &f.District,
		&f.State, &f.Language, &f.Crops, &f.IsActive, &f.CreatedAt, &f.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *farmerRepository) Create(ctx context.Context, req *domain.RegisterFarmerRequest, passwordHash string) (*domain.Farmer, error) {
	const q = `
		INSERT INTO farmers (phone, email, password_hash, name, village, district, state, language, crops, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true)
		RETURNING ` + farmerCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	crops := req.Crops
	if crops == nil {
		crops = []string{}
	}

	f, err := scanFarmer(r.pool.QueryRow(ctx, q,
		req.Phone, req.Email, passwordHash, req.Name, req.Village, req.District, req.State, req.Language, crops,
	))
	if err != nil {
		return nil, mapError(err)
	}
	return f, nil
}

func (r *farmerRepository) FindByPhone(ctx context.Context, phone string) (*domain.Farmer, error) {
	const q = `SELECT ` + farmerCols + ` FROM farmers WHERE phone = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanFarmer(r.pool.QueryRow(ctx, q, phone))
}

func (r *farmerRepository) FindByID(ctx context.Context, id int64) (*domain.Farmer, error) {
	const q = `SELECT ` + farmerCols + ` FROM farmers WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanFarmer(r.pool.QueryRow(ctx, q, id))
}

func (r *farmerRepository) Update(ctx context.Context, id int64, req *domain.UpdateFarmerRequest) (*domain.Farmer, error) {
	const q = `
		UPDATE farmers
		SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			village = COALESCE($4, village),
			district = COALESCE($5, district),
			state = COALESCE($6, state),
			language = COALESCE($7, language),
			crops = COALESCE($8, crops),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + farmerCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanFarmer(r.pool.QueryRow(ctx, q, id, req.Name, req.Email, req.Village, req.District, req.State, req.Language, req.Crops))
}

func (r *farmerRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const q = `UPDATE farmers SET password_hash = $2, updated_at = now() WHERE id = $1`
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

func (r *farmerRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM farmers WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *farmerRepository) List(ctx context.Context, limit, offset int) ([]domain.Farmer, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT ` + farmerCols + `
		FROM farmers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var farmers []domain.Farmer
	for rows.Next() {
		var f domain.Farmer
		if err := rows.Scan(
			&f.ID, &f.Phone, &f.Email, &f.PasswordHash, &f.Name, &f.Village, &f.District,
			&f.State, &f.Language, &f.Crops, &f.IsActive, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		farmers = append(farmers, f)
	}

	return farmers, rows.Err()
}
