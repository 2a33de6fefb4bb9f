package rental

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/greenbox-dashboard/internal/domain"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/entity"
)

// PickupOrder criterio de orden de la tabla de recogidas.
type PickupOrder string

const (
	// PickupOrderLegacy ordena solo por el primer carácter de la fecha ("10/5/2023" y
	// "1/20/2023" empatan). Es el orden histórico del dashboard y el valor por defecto.
	PickupOrderLegacy PickupOrder = "legacy"
	// PickupOrderChronological ordena por fecha completa.
	PickupOrderChronological PickupOrder = "chronological"
)

// ParsePickupOrder valida el criterio configurado; vacío equivale a legacy.
func ParsePickupOrder(s string) (PickupOrder, error) {
	switch PickupOrder(s) {
	case "", PickupOrderLegacy:
		return PickupOrderLegacy, nil
	case PickupOrderChronological:
		return PickupOrderChronological, nil
	}
	return "", fmt.Errorf("orden de recogidas desconocido %q: %w", s, domain.ErrInvalidInput)
}

// PickupBucket artículos y clientes acumulados para una fecha exacta.
// Date tiene formato "M/D/YYYY" con el mes empezando en 0 y sin ceros a la izquierda.
type PickupBucket struct {
	Date      string
	Items     int
	Customers int
}

// PickupDateKey formatea la clave de fecha del bucket (mes base 0).
func PickupDateKey(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month())-1, t.Day(), t.Year())
}

// AggregatePickups acumula artículos y clientes por cada fecha recorrida de los registros
// que pasan el filtro y ordena el resultado según order.
// Un registro sin NumItems suma 0 artículos pero cuenta como cliente. El dashboard
// histórico sumaba un valor indefinido y la fecha quedaba con artículos NaN; aquí
// Items es siempre un entero y la fecha conserva lo aportado por los demás clientes.
func AggregatePickups(records []entity.CustomerRecord, selector string, order PickupOrder) []PickupBucket {
	buckets := []PickupBucket{}
	index := make(map[string]int)
	days := make(map[string]time.Time)

	for _, r := range records {
		if !Matches(r, selector) {
			continue
		}
		items := r.Items()
		for _, step := range MonthSteps(r.PickupDate, r.ReturnDate) {
			key := PickupDateKey(step)
			if i, ok := index[key]; ok {
				buckets[i].Items += items
				buckets[i].Customers++
				continue
			}
			index[key] = len(buckets)
			days[key] = time.Date(step.Year(), step.Month(), step.Day(), 0, 0, 0, 0, time.UTC)
			buckets = append(buckets, PickupBucket{Date: key, Items: items, Customers: 1})
		}
	}

	switch order {
	case PickupOrderChronological:
		sort.SliceStable(buckets, func(i, j int) bool {
			return days[buckets[i].Date].Before(days[buckets[j].Date])
		})
	default:
		sort.SliceStable(buckets, func(i, j int) bool {
			return buckets[i].Date[0] < buckets[j].Date[0]
		})
	}
	return buckets
}
