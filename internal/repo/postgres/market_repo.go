package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krishisetu/krishisetu/internal/domain"
)

type MarketRepository interface {
	Upsert(ctx context.Context, req *domain.UpsertPriceRequest) (*domain.MarketPrice, error)
	List(ctx context.Context, filter domain.PriceFilter) ([]domain.MarketPrice, error)
}

type marketRepository struct {
	pool *pgxpool.Pool
}

func NewMarketRepository(pool *pgxpool.Pool) MarketRepository {
	return &marketRepository{pool: pool}
}

const priceCols = `id, crop, market, district, price_min, price_max, price_modal, msp, quoted_on, created_at`

func (r *marketRepository) Upsert(ctx context.Context, req *domain.UpsertPriceRequest) (*domain.MarketPrice, error) {
	const q = `
		INSERT INTO market_prices (crop, market, district, price_min, price_max, price_modal, msp, quoted_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (crop, market, quoted_on) DO UPDATE
		SET price_min = EXCLUDED.price_min,
		    price_max = EXCLUDED.price_max,
		    price_modal = EXCLUDED.price_modal,
		    msp = EXCLUDED.msp
		RETURNING ` + priceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.MarketPrice
	err := r.pool.QueryRow(ctx, q,
		req.Crop, req.Market, req.District, req.PriceMin, req.PriceMax, req.PriceModal, req.MSP, req.QuotedOn,
	).Scan(&p.ID, &p.Crop, &p.Market, &p.District, &p.PriceMin, &p.PriceMax, &p.PriceModal, &p.MSP, &p.QuotedOn, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *marketRepository) List(ctx context.Context, filter domain.PriceFilter) ([]domain.MarketPrice, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	const q = `
		SELECT ` + priceCols + `
		FROM market_prices
		WHERE ($1 = '' OR crop = $1)
		  AND ($2 = '' OR district = $2)
		ORDER BY quoted_on DESC, crop
		LIMIT $3`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, filter.Crop, filter.District, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []domain.MarketPrice
	for rows.Next() {
		var p domain.MarketPrice
		if err := rows.Scan(
			&p.ID, &p.Crop, &p.Market, &p.District, &p.PriceMin, &p.PriceMax,
			&p.PriceModal, &p.MSP, &p.QuotedOn, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}

	return prices, rows.Err()
}
