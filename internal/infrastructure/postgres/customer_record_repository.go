package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/greenbox-dashboard/internal/domain/entity"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/repository"
)

var (
	_ repository.CustomerRecordRepository = (*CustomerRecordRepo)(nil)
	_ repository.CustomerRecordWriter     = (*CustomerRecordRepo)(nil)
)

// CustomerRecordRepo lectura/escritura de la tabla rental_customers (usable con pool o tx).
// La columna position conserva el orden del archivo original: el orden de primera
// aparición de los buckets depende de él.
type CustomerRecordRepo struct {
	q Querier
}

// NewCustomerRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRecordRepository(q Querier) *CustomerRecordRepo {
	return &CustomerRecordRepo{q: q}
}

// EnsureSchema crea la tabla y su índice si no existen.
func (r *CustomerRecordRepo) EnsureSchema(ctx context.Context) error {
	const table = `
	CREATE TABLE IF NOT EXISTS rental_customers (
	    id            TEXT PRIMARY KEY,
	    position      INTEGER       NOT NULL,
	    school        TEXT          NOT NULL DEFAULT '',
	    pickup_date   DATE,
	    return_date   DATE,
	    monthly_cost  NUMERIC(12,2) NOT NULL DEFAULT 0,
	    num_items     INTEGER
	)`
	const index = `CREATE INDEX IF NOT EXISTS idx_rental_customers_position ON rental_customers (position)`

	for _, ddl := range []string{table, index} {
		if _, err := r.q.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("rental_customers.EnsureSchema: %w", err)
		}
	}
	return nil
}

// ClearRecords vacía la tabla antes de cargar una instantánea nueva.
func (r *CustomerRecordRepo) ClearRecords(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM rental_customers`); err != nil {
		return fmt.Errorf("rental_customers.ClearRecords: %w", err)
	}
	return nil
}

// UpsertRecord inserta o reemplaza un registro. Las fechas en cero se guardan como NULL.
func (r *CustomerRecordRepo) UpsertRecord(ctx context.Context, position int, rec entity.CustomerRecord) error {
	const query = `
	INSERT INTO rental_customers (id, position, school, pickup_date, return_date, monthly_cost, num_items)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
	    position     = EXCLUDED.position,
	    school       = EXCLUDED.school,
	    pickup_date  = EXCLUDED.pickup_date,
	    return_date  = EXCLUDED.return_date,
	    monthly_cost = EXCLUDED.monthly_cost,
	    num_items    = EXCLUDED.num_items`

	_, err := r.q.Exec(ctx, query,
		rec.ID, position, rec.School,
		nullableDate(rec.PickupDate), nullableDate(rec.ReturnDate),
		rec.MonthlyCost, rec.NumItems,
	)
	if err != nil {
		return fmt.Errorf("rental_customers.UpsertRecord %s: %w", rec.ID, err)
	}
	return nil
}

// ListRecords devuelve todos los registros en el orden original.
func (r *CustomerRecordRepo) ListRecords(ctx context.Context) ([]entity.CustomerRecord, error) {
	const query = `
	SELECT id, school, pickup_date, return_date, monthly_cost, num_items
	FROM rental_customers
	ORDER BY position, id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, wrapReadError("rental_customers.ListRecords", err)
	}
	defer rows.Close()

	records := []entity.CustomerRecord{}
	for rows.Next() {
		var (
			rec         entity.CustomerRecord
			pickup, ret *time.Time
			numItems    *int
		)
		if err := rows.Scan(&rec.ID, &rec.School, &pickup, &ret, &rec.MonthlyCost, &numItems); err != nil {
			return nil, fmt.Errorf("rental_customers.ListRecords scan: %w", err)
		}
		if pickup != nil {
			rec.PickupDate = pickup.UTC()
		}
		if ret != nil {
			rec.ReturnDate = ret.UTC()
		}
		rec.NumItems = numItems
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rental_customers.ListRecords rows: %w", err)
	}
	return records, nil
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
