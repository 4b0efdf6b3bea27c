package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tirs/quota/internal/domain"
)

// wrapErr envuelve un error de consulta con la operación. Los errores de conexión
// (clase SQLSTATE 08), de recursos (53) y de tabla inexistente (42P01) se marcan
// además como domain.ErrUnavailable: la fuente de datos no está lista.
func wrapErr(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08") ||
			strings.HasPrefix(pgErr.Code, "53") ||
			pgErr.Code == "42P01" // undefined_table
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
