package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/krishisetu/krishisetu/internal/domain"
)

// mapError translates driver-level errors into domain sentinels so services
// never inspect SQLSTATE codes themselves.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return domain.ErrDuplicate
	}
	return err
}
