package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/greenbox-dashboard/internal/domain"
)

// isUndefinedTable verifica si un error es "relation does not exist" (42P01).
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01" // undefined_table
	}
	return false
}

// isConnectError verifica si el error viene de no poder abrir la conexión.
func isConnectError(err error) bool {
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

// wrapReadError envuelve err con op. Tabla inexistente o base caída se reportan
// además como domain.ErrSourceUnavailable.
func wrapReadError(op string, err error) error {
	if isUndefinedTable(err) || isConnectError(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrSourceUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
