package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerRecord representa el alquiler de un cliente (una cuenta del dashboard).
// PickupDate/ReturnDate en cero significan fecha ausente o ilegible.
// NumItems nil indica que la cuenta nunca hizo un pedido.
type CustomerRecord struct {
	ID          string
	School      string
	PickupDate  time.Time
	ReturnDate  time.Time
	MonthlyCost decimal.Decimal // ingreso atribuible a cada mes completo del alquiler
	NumItems    *int
}

// HasOrder indica si la cuenta se convirtió en pedido (presencia de NumItems, no su valor).
func (r CustomerRecord) HasOrder() bool {
	return r.NumItems != nil
}

// Items devuelve la cantidad de artículos o 0 si la cuenta no tiene pedido.
func (r CustomerRecord) Items() int {
	if r.NumItems == nil {
		return 0
	}
	return *r.NumItems
}
