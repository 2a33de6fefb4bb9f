// Package jsonfile lee los registros de clientes desde un archivo estático
// (customers.json), el origen de datos histórico del dashboard.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/greenbox-dashboard/internal/domain"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/entity"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/repository"
)

var _ repository.CustomerRecordRepository = (*Loader)(nil)

// dateLayouts formatos de fecha aceptados, en orden de prueba.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"1/2/2006",
}

// rawRecord forma del registro tal como aparece en el archivo.
// NumItems se conserva crudo para distinguir "ausente" de "presente".
type rawRecord struct {
	ID          string          `json:"id"`
	School      string          `json:"school"`
	PickupDate  string          `json:"pickupDate"`
	ReturnDate  string          `json:"returnDate"`
	MonthlyCost decimal.Decimal `json:"monthlyCost"`
	NumItems    json.RawMessage `json:"numItems"`
}

// Loader implementa CustomerRecordRepository sobre un archivo JSON.
// Cada ListRecords vuelve a leer el archivo, de modo que un reload ve los cambios.
type Loader struct {
	path string
}

// NewLoader construye el adaptador para la ruta indicada.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// ListRecords lee y decodifica el archivo completo.
func (l *Loader) ListRecords(ctx context.Context) ([]entity.CustomerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("jsonfile: %s: %w", l.path, domain.ErrSourceUnavailable)
		}
		return nil, fmt.Errorf("jsonfile: abrir %s: %w", l.path, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("jsonfile: %s: %w", l.path, err)
	}
	return records, nil
}

// Decode convierte un arreglo JSON de registros en entidades.
// Las fechas ilegibles quedan en cero en lugar de fallar: los agregadores las ignoran.
func Decode(r io.Reader) ([]entity.CustomerRecord, error) {
	var raws []rawRecord
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("decodificar registros: %w", err)
	}

	records := make([]entity.CustomerRecord, 0, len(raws))
	for i, raw := range raws {
		id := raw.ID
		if id == "" {
			id = derivedID(i, raw)
		}
		records = append(records, entity.CustomerRecord{
			ID:          id,
			School:      raw.School,
			PickupDate:  ParseDate(raw.PickupDate),
			ReturnDate:  ParseDate(raw.ReturnDate),
			MonthlyCost: raw.MonthlyCost,
			NumItems:    parseNumItems(raw.NumItems),
		})
	}
	return records, nil
}

// recordNamespace espacio de nombres de los ids derivados.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("greenbox-dashboard/rental_customers"))

// derivedID id estable para registros sin "id": el mismo archivo produce siempre
// los mismos ids, así una recarga reemplaza filas en lugar de duplicarlas.
func derivedID(position int, raw rawRecord) string {
	key := fmt.Sprintf("%d|%s|%s|%s|%s|%s",
		position, raw.School, raw.PickupDate, raw.ReturnDate, raw.MonthlyCost.String(), bytes.TrimSpace(raw.NumItems))
	return uuid.NewSHA1(recordNamespace, []byte(key)).String()
}

// ParseDate interpreta la fecha en UTC y la trunca al día. Devuelve time.Time{} si no es legible.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

// parseNumItems: ausente -> nil; null -> presente con 0; decimales se truncan.
func parseNumItems(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}
	n := 0
	if s := string(bytes.TrimSpace(raw)); s != "null" {
		if v, err := strconv.Atoi(s); err == nil {
			n = v
		} else if f, err := strconv.ParseFloat(strings.Trim(s, `"`), 64); err == nil {
			n = int(f)
		}
	}
	return &n
}
