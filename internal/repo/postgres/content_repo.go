package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krishisetu/krishisetu/internal/domain"
)

type ContentRepository interface {
	Create(ctx context.Context, c *domain.Content) (*domain.Content, error)
	FindByID(ctx context.Context, id int64) (*domain.Content, error)
	List(ctx context.Context, filter domain.ContentFilter) ([]domain.Content, error)
	Delete(ctx context.Context, id int64) error
}

type contentRepository struct {
	pool *pgxpool.Pool
}

func NewContentRepository(pool *pgxpool.Pool) ContentRepository {
	return &contentRepository{pool: pool}
}

const contentCols = `id, title, title_hi, kind, language, category, file_path, mime_type, size_bytes, created_at`

func scanContent(row pgx.Row) (*domain.Content, error) {
	var c domain.Content
	err := row.Scan(
		&c.ID, &c.Title, &c.TitleHi, &c.Kind, &c.Language,
		&c.Category, &c.FilePath, &c.MimeType, &c.SizeBytes, &c.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contentRepository) Create(ctx context.Context, c *domain.Content) (*domain.Content, error) {
	const q = `
		INSERT INTO contents (title, title_hi, kind, language, category, file_path, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + contentCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanContent(r.pool.QueryRow(ctx, q,
		c.Title, c.TitleHi, c.Kind, c.Language, c.Category, c.FilePath, c.MimeType, c.SizeBytes,
	))
}

func (r *contentRepository) FindByID(ctx context.Context, id int64) (*domain.Content, error) {
	const q = `SELECT ` + contentCols + ` FROM contents WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanContent(r.pool.QueryRow(ctx, q, id))
}

func (r *contentRepository) List(ctx context.Context, filter domain.ContentFilter) ([]domain.Content, error) {
	const q = `
		SELECT ` + contentCols + `
		FROM contents
		WHERE ($1 = '' OR kind = $1)
		  AND ($2 = '' OR language = $2)
		  AND ($3 = '' OR category = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q,
		filter.Kind, filter.Language, filter.Category,
		clampLimit(filter.Limit), clampOffset(filter.Offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contents []domain.Content
	for rows.Next() {
		var c domain.Content
		if err := rows.Scan(
			&c.ID, &c.Title, &c.TitleHi, &c.Kind, &c.Language,
			&c.Category, &c.FilePath, &c.MimeType, &c.SizeBytes, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		contents = append(contents, c)
	}

	return contents, rows.Err()
}

func (r *contentRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM contents WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
