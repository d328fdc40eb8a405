package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krishisetu/krishisetu/internal/domain"
)

type LedgerRepository interface {
	CreateEntry(ctx context.Context, farmerID int64, req *domain.CreateEntryRequest) (*domain.LedgerEntry, error)
	ListEntries(ctx context.Context, farmerID int64, filter domain.EntryFilter) ([]domain.LedgerEntry, error)
	DeleteEntry(ctx context.Context, farmerID, entryID int64) error
	Summary(ctx context.Context, farmerID int64, from, to time.Time) (*domain.LedgerSummary, error)

	CreateCrop(ctx context.Context, farmerID int64, req *domain.CreateCropRequest) (*domain.CropRecord, error)
	ListCrops(ctx context.Context, farmerID int64) ([]domain.CropRecord, error)
	UpdateCropStatus(ctx context.Context, farmerID, cropID int64, status string) error
}

type ledgerRepository struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewLedgerRepository(pool *pgxpool.Pool) LedgerRepository {
	return &ledgerRepository{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const entryCols = `id, farmer_id, type, category, amount, entry_date, crop, note, created_at`

func (r *ledgerRepository) CreateEntry(ctx context.Context, farmerID int64, req *domain.CreateEntryRequest) (*domain.LedgerEntry, error) {
	const q = `
		INSERT INTO ledger_entries (farmer_id, type, category, amount, entry_date, crop, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + entryCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var e domain.LedgerEntry
	err := r.pool.QueryRow(ctx, q,
		farmerID, req.Type, req.Category, req.Amount, req.EntryDate, req.Crop, req.Note,
	).Scan(&e.ID, &e.FarmerID, &e.Type, &e.Category, &e.Amount, &e.EntryDate, &e.Crop, &e.Note, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ledgerRepository) ListEntries(ctx context.Context, farmerID int64, filter domain.EntryFilter) ([]domain.LedgerEntry, error) {
	b := r.sb.Select(entryCols).
		From("ledger_entries").
		Where(sq.Eq{"farmer_id": farmerID}).
		OrderBy("entry_date DESC", "id DESC")

	if filter.Type != "" {
		b = b.Where(sq.Eq{"type": filter.Type})
	}
	if filter.Category != "" {
		b = b.Where(sq.Eq{"category": filter.Category})
	}
	if filter.Crop != "" {
		b = b.Where(sq.Eq{"crop": filter.Crop})
	}
	if !filter.From.IsZero() {
		b = b.Where(sq.GtOrEq{"entry_date": filter.From})
	}
	if !filter.To.IsZero() {
		b = b.Where(sq.LtOrEq{"entry_date": filter.To})
	}

	b = b.Limit(uint64(clampLimit(filter.Limit))).Offset(uint64(clampOffset(filter.Offset)))

	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.FarmerID, &e.Type, &e.Category, &e.Amount, &e.EntryDate, &e.Crop, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *ledgerRepository) DeleteEntry(ctx context.Context, farmerID, entryID int64) error {
	const q = `DELETE FROM ledger_entries WHERE id = $1 AND farmer_id = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, entryID, farmerID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ledgerRepository) Summary(ctx context.Context, farmerID int64, from, to time.Time) (*domain.LedgerSummary, error) {
	b := r.sb.Select("type", "category", "COALESCE(SUM(amount), 0)").
		From("ledger_entries").
		Where(sq.Eq{"farmer_id": farmerID}).
		GroupBy("type", "category")

	if !from.IsZero() {
		b = b.Where(sq.GtOrEq{"entry_date": from})
	}
	if !to.IsZero() {
		b = b.Where(sq.LtOrEq{"entry_date": to})
	}

	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := &domain.LedgerSummary{ByCategory: map[string]int64{}}
	for rows.Next() {
		var entryType, category string
		var total int64
		if err := rows.Scan(&entryType, &category, &total); err != nil {
			return nil, err
		}
		switch entryType {
		case domain.EntryIncome:
			summary.TotalIncome += total
		case domain.EntryExpense:
			summary.TotalExpense += total
			summary.ByCategory[category] += total
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summary.Net = summary.TotalIncome - summary.TotalExpense
	return summary, nil
}

const cropCols = `id, farmer_id, crop, area_acres, season, sowing_date, status, created_at`

func (r *ledgerRepository) CreateCrop(ctx context.Context, farmerID int64, req *domain.CreateCropRequest) (*domain.CropRecord, error) {
	const q = `
		INSERT INTO crop_records (farmer_id, crop, area_acres, season, sowing_date, status)
		VALUES ($1, $2, $3, $4, $5, 'sown')
		RETURNING ` + cropCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.CropRecord
	err := r.pool.QueryRow(ctx, q, farmerID, req.Crop, req.AreaAcres, req.Season, req.SowingDate).
		Scan(&c.ID, &c.FarmerID, &c.Crop, &c.AreaAcres, &c.Season, &c.SowingDate, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ledgerRepository) ListCrops(ctx context.Context, farmerID int64) ([]domain.CropRecord, error) {
	const q = `SELECT ` + cropCols + ` FROM crop_records WHERE farmer_id = $1 ORDER BY sowing_date DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, farmerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var crops []domain.CropRecord
	for rows.Next() {
		var c domain.CropRecord
		if err := rows.Scan(&c.ID, &c.FarmerID, &c.Crop, &c.AreaAcres, &c.Season, &c.SowingDate, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		crops = append(crops, c)
	}

	return crops, rows.Err()
}

func (r *ledgerRepository) UpdateCropStatus(ctx context.Context, farmerID, cropID int64, status string) error {
	const q = `UPDATE crop_records SET status = $3 WHERE id = $1 AND farmer_id = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, cropID, farmerID, status)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
