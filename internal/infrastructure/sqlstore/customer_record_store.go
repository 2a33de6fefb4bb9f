package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/greenbox-dashboard/internal/domain"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/entity"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/repository"
)

var _ repository.CustomerRecordRepository = (*Store)(nil)

const dateLayout = "2006-01-02"

// Store tabla rental_customers sobre database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open aplica las migraciones y abre la base. Para SQLite dsn es la ruta del archivo.
func Open(ctx context.Context, d Dialect, dsn string) (*Store, error) {
	dsn, err := d.prepareDSN(dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(d, dsn); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", d.Name, domain.ErrSourceUnavailable, err)
	}

	db, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", d.Name, err)
	}
	db.SetMaxOpenConns(d.maxOpenConns)
	db.SetMaxIdleConns(d.maxOpenConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w: %w", d.Name, domain.ErrSourceUnavailable, err)
	}
	return &Store{db: db, dialect: d}, nil
}

// Close cierra la base.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ListRecords devuelve todos los registros en el orden original de carga.
func (s *Store) ListRecords(ctx context.Context) ([]entity.CustomerRecord, error) {
	const query = `
	SELECT id, school, pickup_date, return_date, monthly_cost, num_items
	FROM rental_customers
	ORDER BY position, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: rental_customers.ListRecords: %w", s.dialect.Name, err)
	}
	defer rows.Close()

	records := []entity.CustomerRecord{}
	for rows.Next() {
		var (
			rec         entity.CustomerRecord
			pickup, ret sql.NullString
			cost        string
			numItems    sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.School, &pickup, &ret, &cost, &numItems); err != nil {
			return nil, fmt.Errorf("%s: rental_customers.ListRecords scan: %w", s.dialect.Name, err)
		}
		rec.PickupDate = parseStoredDate(pickup)
		rec.ReturnDate = parseStoredDate(ret)
		if rec.MonthlyCost, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("%s: monthly_cost %q de %s: %w", s.dialect.Name, cost, rec.ID, err)
		}
		if numItems.Valid {
			n := int(numItems.Int64)
			rec.NumItems = &n
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rental_customers.ListRecords rows: %w", s.dialect.Name, err)
	}
	return records, nil
}

// RunRecords ejecuta fn dentro de una transacción con un writer atado a ella.
func (s *Store) RunRecords(ctx context.Context, fn func(w repository.CustomerRecordWriter) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&recordWriter{tx: tx, dialect: s.dialect}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type recordWriter struct {
	tx      *sql.Tx
	dialect Dialect
}

// EnsureSchema no hace nada: Open ya aplicó las migraciones.
func (w *recordWriter) EnsureSchema(context.Context) error { return nil }

// ClearRecords vacía la tabla antes de cargar una instantánea nueva.
func (w *recordWriter) ClearRecords(ctx context.Context) error {
	if _, err := w.tx.ExecContext(ctx, `DELETE FROM rental_customers`); err != nil {
		return fmt.Errorf("%s: rental_customers.ClearRecords: %w", w.dialect.Name, err)
	}
	return nil
}

// UpsertRecord inserta o reemplaza un registro. Las fechas en cero se guardan como NULL.
func (w *recordWriter) UpsertRecord(ctx context.Context, position int, rec entity.CustomerRecord) error {
	var numItems sql.NullInt64
	if rec.NumItems != nil {
		numItems = sql.NullInt64{Int64: int64(*rec.NumItems), Valid: true}
	}
	_, err := w.tx.ExecContext(ctx, w.dialect.upsertSQL,
		rec.ID, position, rec.School,
		storedDate(rec.PickupDate), storedDate(rec.ReturnDate),
		rec.MonthlyCost.String(), numItems,
	)
	if err != nil {
		return fmt.Errorf("%s: rental_customers.UpsertRecord %s: %w", w.dialect.Name, rec.ID, err)
	}
	return nil
}

func storedDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(dateLayout), Valid: true}
}

// parseStoredDate acepta "2006-01-02" y prefijos más largos ("2006-01-02 00:00:00").
func parseStoredDate(s sql.NullString) time.Time {
	if !s.Valid || len(s.String) < len(dateLayout) {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s.String[:len(dateLayout)])
	if err != nil {
		return time.Time{}
	}
	return t
}
