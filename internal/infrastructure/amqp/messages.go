package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/greenbox-dashboard/internal/application/analytics"
)

// ReportRecomputedMessage resumen de un Report publicado. Los consumidores que
// necesiten el detalle lo piden a GET /api/dashboard.
type ReportRecomputedMessage struct {
	Revision       string          `json:"revision"`
	School         string          `json:"school"`
	GeneratedAt    time.Time       `json:"generated_at"`
	Records        int             `json:"records"`
	Orders         int             `json:"orders"`
	WithoutOrder   int             `json:"accounts_without_order"`
	ConversionRate *int            `json:"conversion_rate"` // null cuando no hay cuentas
	RevenueTotal   decimal.Decimal `json:"revenue_total"`
	RevenueMonths  int             `json:"revenue_months"`
	PickupDates    int             `json:"pickup_dates"`
	Timestamp      time.Time       `json:"timestamp"`
}

// NewReportRecomputedMessage construye el mensaje a partir del reporte.
func NewReportRecomputedMessage(r *analytics.Report) *ReportRecomputedMessage {
	total := decimal.Zero
	for _, b := range r.Revenue {
		total = total.Add(b.Value)
	}
	msg := &ReportRecomputedMessage{
		Revision:      r.Revision,
		School:        r.School,
		GeneratedAt:   r.GeneratedAt,
		Records:       r.RecordCount,
		Orders:        r.Conversion.Orders,
		WithoutOrder:  r.Conversion.WithoutOrder,
		RevenueTotal:  total,
		RevenueMonths: len(r.Revenue),
		PickupDates:   len(r.Pickups),
		Timestamp:     time.Now().UTC(),
	}
	if r.ConversionRate.Valid {
		v := r.ConversionRate.Value
		msg.ConversionRate = &v
	}
	return msg
}

// ToJSON serializa el mensaje.
func (m *ReportRecomputedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRecomputedMessageFromJSON decodifica un mensaje recibido.
func ReportRecomputedMessageFromJSON(data []byte) (*ReportRecomputedMessage, error) {
	var msg ReportRecomputedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
