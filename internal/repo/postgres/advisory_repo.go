package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krishisetu/krishisetu/internal/domain"
)

type AdvisoryRepository interface {
	Create(ctx context.Context, q *domain.AdvisoryQuery) (*domain.AdvisoryQuery, error)
	ListByFarmer(ctx context.Context, farmerID int64, limit, offset int) ([]domain.AdvisoryQuery, error)
}

type advisoryRepository struct {
	pool *pgxpool.Pool
}

func NewAdvisoryRepository(pool *pgxpool.Pool) AdvisoryRepository {
	return &advisoryRepository{pool: pool}
}

const advisoryCols = `id, farmer_id, kind, question, answer, language, created_at`

func (r *advisoryRepository) Create(ctx context.Context, aq *domain.AdvisoryQuery) (*domain.AdvisoryQuery, error) {
	const q = `
		INSERT INTO advisory_queries (farmer_id, kind, question, answer, language)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + advisoryCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.AdvisoryQuery
	err := r.pool.QueryRow(ctx, q, aq.FarmerID, aq.Kind, aq.Question, aq.Answer, aq.Language).
		Scan(&out.ID, &out.FarmerID, &out.Kind, &out.Question, &out.Answer, &out.Language, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *advisoryRepository) ListByFarmer(ctx context.Context, farmerID int64, limit, offset int) ([]domain.AdvisoryQuery, error) {
	const q = `
		SELECT ` + advisoryCols + `
		FROM advisory_queries
		WHERE farmer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, farmerID, clampLimit(limit), clampOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var queries []domain.AdvisoryQuery
	for rows.Next() {
		var aq domain.AdvisoryQuery
		if err := rows.Scan(&aq.ID, &aq.FarmerID, &aq.Kind, &aq.Question, &aq.Answer, &aq.Language, &aq.CreatedAt); err != nil {
			return nil, err
		}
		queries = append(queries, aq)
	}

	return queries, rows.Err()
}
