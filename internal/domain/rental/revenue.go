package rental

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/greenbox-dashboard/internal/domain/entity"
)

// MonthBucket ingreso proyectado acumulado de un mes ("Feb 2023").
type MonthBucket struct {
	Label string
	Value decimal.Decimal
}

// MonthLabel formatea la etiqueta del bucket: mes abreviado en inglés y año.
func MonthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}

// AggregateRevenue suma MonthlyCost en cada mes recorrido por los registros que pasan el filtro.
// El resultado conserva el orden de primera aparición de cada etiqueta (no cronológico).
func AggregateRevenue(records []entity.CustomerRecord, selector string) []MonthBucket {
	buckets := []MonthBucket{}
	index := make(map[string]int)

	for _, r := range records {
		if !Matches(r, selector) {
			continue
		}
		for _, step := range MonthSteps(r.PickupDate, r.ReturnDate) {
			label := MonthLabel(step)
			if i, ok := index[label]; ok {
				buckets[i].Value = buckets[i].Value.Add(r.MonthlyCost)
				continue
			}
			index[label] = len(buckets)
			buckets = append(buckets, MonthBucket{Label: label, Value: r.MonthlyCost})
		}
	}
	return buckets
}
