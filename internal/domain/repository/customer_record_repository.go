package repository

import (
	"context"

	"github.com/jhoicas/greenbox-dashboard/internal/domain/entity"
)

// CustomerRecordRepository define el puerto de lectura de los registros de alquiler.
// Cada llamada devuelve una instantánea completa; el caller no debe mutarla.
type CustomerRecordRepository interface {
	ListRecords(ctx context.Context) ([]entity.CustomerRecord, error)
}

// CustomerRecordWriter puerto de escritura usado por la carga inicial (cmd/seed).
// Una carga reemplaza la instantánea completa: ClearRecords y luego UpsertRecord
// dentro de la misma transacción.
type CustomerRecordWriter interface {
	EnsureSchema(ctx context.Context) error
	ClearRecords(ctx context.Context) error
	UpsertRecord(ctx context.Context, position int, r entity.CustomerRecord) error
}
