package rental

import (
	"math"
	"strconv"

	"github.com/jhoicas/greenbox-dashboard/internal/domain/entity"
)

// ConversionSummary embudo de conversión: cuentas con pedido vs. sin pedido.
// RatePercent = Orders / (Orders + WithoutOrder) * 100; es NaN cuando no hay cuentas.
type ConversionSummary struct {
	Orders       int
	WithoutOrder int
	RatePercent  float64
}

// Accounts total de cuentas filtradas.
func (s ConversionSummary) Accounts() int {
	return s.Orders + s.WithoutOrder
}

// Rate porcentaje entero (piso) derivado del resumen, para la etiqueta de texto.
func (s ConversionSummary) Rate() Percent {
	return FloorPercent(s.Orders, s.WithoutOrder)
}

// AggregateConversion cuenta cuentas y pedidos de los registros que pasan el filtro.
func AggregateConversion(records []entity.CustomerRecord, selector string) ConversionSummary {
	accounts, orders := 0, 0
	for _, r := range records {
		if !Matches(r, selector) {
			continue
		}
		accounts++
		if r.HasOrder() {
			orders++
		}
	}
	return ConversionSummary{
		Orders:       orders,
		WithoutOrder: accounts - orders,
		RatePercent:  ratio(orders, accounts),
	}
}

// ratio reproduce orders / accounts * 100 en float64 (0/0 = NaN).
func ratio(orders, accounts int) float64 {
	if accounts == 0 {
		return math.NaN()
	}
	return float64(orders) / float64(accounts) * 100
}

// Percent porcentaje entero opcional. Valid=false representa "sin tasa" (NaN).
type Percent struct {
	Value int
	Valid bool
}

// FloorPercent calcula floor(orders / (orders + withoutOrder) * 100).
// Es piso, no redondeo: 28.999… produce 28.
func FloorPercent(orders, withoutOrder int) Percent {
	f := math.Floor(ratio(orders, orders+withoutOrder))
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Percent{}
	}
	return Percent{Value: int(f), Valid: true}
}

// String devuelve el valor para mostrar; "NaN" si no hay tasa.
func (p Percent) String() string {
	if !p.Valid {
		return "NaN"
	}
	return strconv.Itoa(p.Value)
}
