package rental

import (
	"fmt"
	"time"

	"github.com/jhoicas/greenbox-dashboard/internal/domain"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/entity"
)

// MonthSpan cuenta los cambios de mes calendario entre dos fechas,
// (añoFin-añoIni)*12 + (mesFin-mesIni), sin mirar el día.
// Una fecha ausente (cero) produce 0: el registro no aporta buckets.
func MonthSpan(pickup, ret time.Time) int {
	if pickup.IsZero() || ret.IsZero() {
		return 0
	}
	return (ret.Year()-pickup.Year())*12 + int(ret.Month()) - int(pickup.Month())
}

// Cursor posición inmutable del recorrido mensual. Cada Next parte del cursor
// anterior, no de la fecha de recogida.
type Cursor struct {
	at time.Time
}

// NewCursor crea un cursor en la fecha indicada.
func NewCursor(t time.Time) Cursor {
	return Cursor{at: t}
}

// Next avanza un mes calendario sin recortar al fin de mes:
// 31 ene 2023 -> 3 mar 2023 (normalización de time.AddDate).
func (c Cursor) Next() Cursor {
	return Cursor{at: c.at.AddDate(0, 1, 0)}
}

// Time devuelve la fecha del cursor.
func (c Cursor) Time() time.Time {
	return c.at
}

// MonthSteps enumera las MonthSpan fechas sucesivas que empiezan un mes después
// de la recogida. Con MonthSpan <= 0 devuelve nil.
func MonthSteps(pickup, ret time.Time) []time.Time {
	span := MonthSpan(pickup, ret)
	if span <= 0 {
		return nil
	}
	steps := make([]time.Time, 0, span)
	cur := NewCursor(pickup)
	for i := 0; i < span; i++ {
		cur = cur.Next()
		steps = append(steps, cur.Time())
	}
	return steps
}

// ValidateRange aplica la validación estricta opcional de fechas.
// El comportamiento por defecto de los agregadores es ignorar en silencio los rangos inválidos.
func ValidateRange(r entity.CustomerRecord) error {
	switch {
	case r.PickupDate.IsZero():
		return fmt.Errorf("registro %q: pickupDate ausente: %w", r.ID, domain.ErrInvalidDateRange)
	case r.ReturnDate.IsZero():
		return fmt.Errorf("registro %q: returnDate ausente: %w", r.ID, domain.ErrInvalidDateRange)
	case r.ReturnDate.Before(r.PickupDate):
		return fmt.Errorf("registro %q: returnDate anterior a pickupDate: %w", r.ID, domain.ErrInvalidDateRange)
	}
	return nil
}
