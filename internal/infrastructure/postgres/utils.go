package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ntorres/acopio-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isSerializationFailure verifica fallas de serialización o deadlock
// (40001, 40P01): conflictos de concurrencia recuperables con reintento.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// domainConflict envuelve el error original como ErrConflict para que el
// caller pueda decidir reintentar (errors.Is(err, domain.ErrConflict)).
func domainConflict(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrConflict, err)
}
