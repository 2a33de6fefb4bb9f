package rental_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/greenbox-dashboard/internal/domain"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/entity"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/rental"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func items(n int) *int { return &n }

func record(school string, pickup, ret time.Time, cost int64, numItems *int) entity.CustomerRecord {
	return entity.CustomerRecord{
		School:      school,
		PickupDate:  pickup,
		ReturnDate:  ret,
		MonthlyCost: decimal.NewFromInt(cost),
		NumItems:    numItems,
	}
}

// sampleRecords conjunto mixto con escuelas disjuntas, usado por las pruebas de propiedades.
func sampleRecords() []entity.CustomerRecord {
	return []entity.CustomerRecord{
		record("Yale", day(2023, 1, 15), day(2023, 4, 15), 100, items(5)),
		record("Harvard", day(2023, 2, 1), day(2023, 5, 20), 80, items(2)),
		record("Yale", day(2023, 3, 10), day(2023, 5, 10), 60, nil),
		record("Brown", day(2022, 11, 30), day(2023, 2, 28), 45, items(7)),
		record("Harvard", day(2023, 1, 31), day(2023, 4, 1), 30, items(1)),
		record("Brown", day(2023, 6, 1), day(2023, 6, 25), 99, items(3)),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// DateBucketer
// ──────────────────────────────────────────────────────────────────────────────

func TestMonthSpan(t *testing.T) {
	cases := []struct {
		name   string
		pickup time.Time
		ret    time.Time
		want   int
	}{
		{"tres meses", day(2023, 1, 15), day(2023, 4, 15), 3},
		{"cruza año", day(2022, 12, 20), day(2023, 2, 1), 2},
		{"ignora el día", day(2023, 1, 31), day(2023, 2, 1), 1},
		{"mismo mes", day(2023, 6, 1), day(2023, 6, 30), 0},
		{"retorno anterior", day(2023, 6, 1), day(2023, 3, 1), -3},
		{"pickup ausente", time.Time{}, day(2023, 3, 1), 0},
		{"return ausente", day(2023, 3, 1), time.Time{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rental.MonthSpan(tc.pickup, tc.ret))
		})
	}
}

func TestMonthSteps_SinPasosConSpanNoPositivo(t *testing.T) {
	assert.Empty(t, rental.MonthSteps(day(2023, 6, 1), day(2023, 6, 30)))
	assert.Empty(t, rental.MonthSteps(day(2023, 6, 1), day(2023, 1, 30)))
	assert.Empty(t, rental.MonthSteps(time.Time{}, time.Time{}))
}

// El desborde de fin de mes no se recorta: 31 ene + 1 mes = 3 mar (2023 no es bisiesto),
// y los pasos siguientes parten del cursor anterior, no de la fecha de recogida.
func TestMonthSteps_DesbordeFinDeMes(t *testing.T) {
	pickup := day(2023, 1, 31)
	steps := rental.MonthSteps(pickup, day(2023, 4, 30))

	require.Len(t, steps, 3)
	assert.Equal(t, day(2023, 3, 3), steps[0])
	assert.Equal(t, pickup.AddDate(0, 1, 0), steps[0], "debe coincidir con la aritmética de time")
	assert.Equal(t, day(2023, 4, 3), steps[1])
	assert.Equal(t, day(2023, 5, 3), steps[2])
}

func TestCursor_Inmutable(t *testing.T) {
	c := rental.NewCursor(day(2024, 1, 31))
	next := c.Next()

	assert.Equal(t, day(2024, 1, 31), c.Time(), "Next no debe modificar el cursor original")
	assert.Equal(t, day(2024, 3, 2), next.Time(), "2024 es bisiesto: 31 ene + 1 mes = 2 mar")
}

func TestValidateRange(t *testing.T) {
	ok := record("Yale", day(2023, 1, 1), day(2023, 2, 1), 10, nil)
	assert.NoError(t, rental.ValidateRange(ok))

	invalid := []entity.CustomerRecord{
		record("Yale", time.Time{}, day(2023, 2, 1), 10, nil),
		record("Yale", day(2023, 1, 1), time.Time{}, 10, nil),
		record("Yale", day(2023, 3, 1), day(2023, 2, 1), 10, nil),
	}
	for _, r := range invalid {
		err := rental.ValidateRange(r)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidDateRange))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Filter
// ──────────────────────────────────────────────────────────────────────────────

func TestMatches(t *testing.T) {
	r := record("Yale", day(2023, 1, 1), day(2023, 2, 1), 10, nil)

	assert.True(t, rental.Matches(r, rental.AllSchools))
	assert.True(t, rental.Matches(r, "Yale"))
	assert.False(t, rental.Matches(r, "Brown"))
	assert.False(t, rental.Matches(r, "yale"), "la comparación es exacta")
	assert.False(t, rental.Matches(r, "Stanford"))
}

func TestSchools(t *testing.T) {
	list := rental.Schools()
	require.Len(t, list, 9)
	assert.Equal(t, rental.AllSchools, list[0])
	assert.True(t, rental.IsKnownSchool("UPenn"))
	assert.False(t, rental.IsKnownSchool("MIT"))

	list[0] = "mutado"
	assert.Equal(t, rental.AllSchools, rental.Schools()[0], "Schools debe devolver una copia")
}

// ──────────────────────────────────────────────────────────────────────────────
// RevenueAggregator
// ──────────────────────────────────────────────────────────────────────────────

func TestAggregateRevenue_EjemploYale(t *testing.T) {
	records := []entity.CustomerRecord{record("Yale", day(2023, 1, 15), day(2023, 4, 15), 100, nil)}

	got := rental.AggregateRevenue(records, "Yale")

	require.Len(t, got, 3)
	for i, label := range []string{"Feb 2023", "Mar 2023", "Apr 2023"} {
		assert.Equal(t, label, got[i].Label)
		assert.True(t, got[i].Value.Equal(decimal.NewFromInt(100)), "bucket %s", label)
	}
}

func TestAggregateRevenue_OrdenDePrimeraAparicionYAcumulado(t *testing.T) {
	records := []entity.CustomerRecord{
		record("Yale", day(2023, 6, 10), day(2023, 8, 10), 50, nil), // Jul, Aug
		record("Yale", day(2023, 1, 10), day(2023, 3, 10), 20, nil), // Feb, Mar
		record("Brown", day(2023, 6, 1), day(2023, 7, 1), 5, nil),   // Jul
		record("Yale", day(2023, 7, 1), day(2023, 7, 31), 999, nil), // span 0
	}

	got := rental.AggregateRevenue(records, rental.AllSchools)

	labels := make([]string, 0, len(got))
	for _, b := range got {
		labels = append(labels, b.Label)
	}
	assert.Equal(t, []string{"Jul 2023", "Aug 2023", "Feb 2023", "Mar 2023"}, labels)
	assert.True(t, got[0].Value.Equal(decimal.NewFromInt(55)))
}

func TestAggregateRevenue_DecimalesExactos(t *testing.T) {
	r := record("Yale", day(2023, 1, 1), day(2023, 2, 1), 0, nil)
	r.MonthlyCost = decimal.RequireFromString("0.1")
	r2 := r
	r2.MonthlyCost = decimal.RequireFromString("0.2")

	got := rental.AggregateRevenue([]entity.CustomerRecord{r, r2}, "Yale")

	require.Len(t, got, 1)
	assert.Equal(t, "0.3", got[0].Value.String())
}

func TestAggregateRevenue_SelectorDesconocido(t *testing.T) {
	got := rental.AggregateRevenue(sampleRecords(), "Stanford")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ──────────────────────────────────────────────────────────────────────────────
// ConversionAggregator
// ──────────────────────────────────────────────────────────────────────────────

func TestAggregateConversion_Ejemplo(t *testing.T) {
	records := []entity.CustomerRecord{
		{School: "Yale", NumItems: items(3)},
		{School: "Yale"},
	}

	got := rental.AggregateConversion(records, "Yale")

	assert.Equal(t, 1, got.Orders)
	assert.Equal(t, 1, got.WithoutOrder)
	assert.Equal(t, 50.0, got.RatePercent)
	assert.Equal(t, rental.Percent{Value: 50, Valid: true}, got.Rate())
}

func TestAggregateConversion_PresenciaNoValor(t *testing.T) {
	records := []entity.CustomerRecord{{School: "Yale", NumItems: items(0)}}

	got := rental.AggregateConversion(records, "Yale")

	assert.Equal(t, 1, got.Orders, "numItems = 0 sigue contando como pedido")
}

func TestAggregateConversion_SinCuentas(t *testing.T) {
	for _, tc := range []struct {
		name     string
		records  []entity.CustomerRecord
		selector string
	}{
		{"sin registros", nil, rental.AllSchools},
		{"filtro sin coincidencias", sampleRecords(), "Princeton"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := rental.AggregateConversion(tc.records, tc.selector)

			assert.Equal(t, 0, got.Orders)
			assert.Equal(t, 0, got.Accounts())
			assert.True(t, math.IsNaN(got.RatePercent))
			assert.False(t, got.Rate().Valid)
			assert.Equal(t, "NaN", got.Rate().String())
		})
	}
}

func TestFloorPercent_PisoNoRedondeo(t *testing.T) {
	// 29/100*100 = 28.999999999999996 en float64
	assert.Equal(t, rental.Percent{Value: 28, Valid: true}, rental.FloorPercent(29, 71))
	assert.Equal(t, rental.Percent{Value: 66, Valid: true}, rental.FloorPercent(2, 1))
	assert.Equal(t, rental.Percent{Value: 100, Valid: true}, rental.FloorPercent(4, 0))
	assert.Equal(t, rental.Percent{Value: 0, Valid: true}, rental.FloorPercent(0, 4))
	assert.Equal(t, "66", rental.FloorPercent(2, 1).String())
}

// ──────────────────────────────────────────────────────────────────────────────
// PickupAggregator
// ──────────────────────────────────────────────────────────────────────────────

func TestAggregatePickups_Ejemplo(t *testing.T) {
	records := []entity.CustomerRecord{record("Yale", day(2023, 1, 15), day(2023, 3, 15), 0, items(5))}

	got := rental.AggregatePickups(records, "Yale", rental.PickupOrderLegacy)

	assert.Equal(t, []rental.PickupBucket{
		{Date: "1/15/2023", Items: 5, Customers: 1},
		{Date: "2/15/2023", Items: 5, Customers: 1},
	}, got)
}

func TestAggregatePickups_Acumula(t *testing.T) {
	records := []entity.CustomerRecord{
		record("Yale", day(2023, 1, 15), day(2023, 2, 15), 0, items(5)),
		record("Brown", day(2023, 1, 15), day(2023, 2, 28), 0, items(2)),
		record("Yale", day(2023, 1, 15), day(2023, 2, 1), 0, nil),
	}

	got := rental.AggregatePickups(records, rental.AllSchools, rental.PickupOrderLegacy)

	assert.Equal(t, []rental.PickupBucket{{Date: "1/15/2023", Items: 7, Customers: 3}}, got)
}

func pickupSortRecords() []entity.CustomerRecord {
	return []entity.CustomerRecord{
		record("Yale", day(2023, 10, 5), day(2023, 11, 5), 0, items(1)), // "10/5/2023"
		record("Yale", day(2023, 2, 5), day(2023, 3, 5), 0, items(1)),   // "2/5/2023"
		record("Yale", day(2023, 1, 20), day(2023, 2, 20), 0, items(1)), // "1/20/2023"
	}
}

func dates(buckets []rental.PickupBucket) []string {
	out := make([]string, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b.Date)
	}
	return out
}

// El orden histórico compara solo el primer carácter y es estable: "10/5" queda antes que "1/20".
func TestAggregatePickups_OrdenLegacyPrimerCaracter(t *testing.T) {
	got := rental.AggregatePickups(pickupSortRecords(), "Yale", rental.PickupOrderLegacy)
	assert.Equal(t, []string{"10/5/2023", "1/20/2023", "2/5/2023"}, dates(got))
}

func TestAggregatePickups_OrdenCronologico(t *testing.T) {
	got := rental.AggregatePickups(pickupSortRecords(), "Yale", rental.PickupOrderChronological)
	assert.Equal(t, []string{"1/20/2023", "2/5/2023", "10/5/2023"}, dates(got))
}

func TestParsePickupOrder(t *testing.T) {
	o, err := rental.ParsePickupOrder("")
	require.NoError(t, err)
	assert.Equal(t, rental.PickupOrderLegacy, o)

	o, err = rental.ParsePickupOrder("chronological")
	require.NoError(t, err)
	assert.Equal(t, rental.PickupOrderChronological, o)

	_, err = rental.ParsePickupOrder("random")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

func TestAgregadores_Idempotentes(t *testing.T) {
	records := sampleRecords()
	for _, sel := range rental.Schools() {
		assert.Equal(t, rental.AggregateRevenue(records, sel), rental.AggregateRevenue(records, sel))
		assert.Equal(t, rental.AggregatePickups(records, sel, rental.PickupOrderLegacy),
			rental.AggregatePickups(records, sel, rental.PickupOrderLegacy))

		a, b := rental.AggregateConversion(records, sel), rental.AggregateConversion(records, sel)
		assert.Equal(t, a.Orders, b.Orders)
		assert.Equal(t, a.WithoutOrder, b.WithoutOrder)
	}
}

func TestAgregadores_ParticionPorEscuela(t *testing.T) {
	records := sampleRecords()

	revenue := map[string]decimal.Decimal{}
	pickups := map[string]rental.PickupBucket{}
	var orders, without int

	for _, school := range rental.Schools()[1:] {
		for _, b := range rental.AggregateRevenue(records, school) {
			revenue[b.Label] = revenue[b.Label].Add(b.Value)
		}
		for _, b := range rental.AggregatePickups(records, school, rental.PickupOrderLegacy) {
			acc := pickups[b.Date]
			acc.Date = b.Date
			acc.Items += b.Items
			acc.Customers += b.Customers
			pickups[b.Date] = acc
		}
		c := rental.AggregateConversion(records, school)
		orders += c.Orders
		without += c.WithoutOrder
	}

	all := rental.AggregateRevenue(records, rental.AllSchools)
	require.Len(t, all, len(revenue))
	for _, b := range all {
		assert.True(t, b.Value.Equal(revenue[b.Label]), "revenue %s", b.Label)
	}

	allPickups := rental.AggregatePickups(records, rental.AllSchools, rental.PickupOrderLegacy)
	require.Len(t, allPickups, len(pickups))
	for _, b := range allPickups {
		assert.Equal(t, pickups[b.Date], b)
	}

	conv := rental.AggregateConversion(records, rental.AllSchools)
	assert.Equal(t, orders, conv.Orders)
	assert.Equal(t, without, conv.WithoutOrder)
	assert.Equal(t, len(records), conv.Accounts(), "orders + sin pedido = cuentas filtradas")
}
