package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Peticiones ────────────────────────────────────────────────────────────────

// DashboardReportRequest parámetros para GET /api/dashboard/report.
type DashboardReportRequest struct {
	School string `query:"school"` // vacío = "All Schools"
}

// SetSchoolRequest cuerpo de PUT /api/dashboard/school.
type SetSchoolRequest struct {
	School string `json:"school"`
}

// ── Respuestas ────────────────────────────────────────────────────────────────

// DashboardReportDTO respuesta de GET /api/dashboard y GET /api/dashboard/report.
// Los tres agregados se calculan juntos sobre la misma instantánea de registros.
type DashboardReportDTO struct {
	Revision    string    `json:"revision"` // cambia en cada recálculo
	School      string    `json:"school"`
	GeneratedAt time.Time `json:"generated_at"`
	Records     int       `json:"records"` // tamaño de la instantánea (sin filtrar)
	PickupOrder string    `json:"pickup_order"`

	Revenue    RevenueSeriesDTO `json:"revenue"`
	Conversion ConversionDTO    `json:"conversion"`
	Pickups    []PickupRowDTO   `json:"pickups"`
}

// RevenueSeriesDTO ingreso proyectado por mes. Labels y Values son arreglos paralelos
// para el gráfico de barras; Buckets repite la misma información como lista.
type RevenueSeriesDTO struct {
	Labels  []string           `json:"labels"`
	Values  []decimal.Decimal  `json:"values"`
	Buckets []RevenueBucketDTO `json:"buckets"`
}

// RevenueBucketDTO un mes de la serie ("Feb 2023").
type RevenueBucketDTO struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// ConversionDTO embudo de conversión para el gráfico de dona y la etiqueta de texto.
// RatePercent y ConversionRate son null cuando no hay cuentas (tasa NaN).
type ConversionDTO struct {
	Orders               int      `json:"orders"`
	AccountsWithoutOrder int      `json:"accounts_without_order"`
	RatePercent          *float64 `json:"rate_percent"`
	ConversionRate       *int     `json:"conversion_rate"`       // piso de RatePercent
	ConversionRateLabel  string   `json:"conversion_rate_label"` // "50" o "NaN"
}

// PickupRowDTO fila de la tabla de recogidas. Date usa mes base 0 ("1/15/2023" = 15 feb).
type PickupRowDTO struct {
	Date      string `json:"date"`
	Customers int    `json:"customers"`
	Items     int    `json:"items"`
}

// SchoolsDTO valores del selector de escuela.
type SchoolsDTO struct {
	Schools  []string `json:"schools"`
	Selected string   `json:"selected"`
}
