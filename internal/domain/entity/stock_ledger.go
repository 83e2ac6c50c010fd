package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección de un movimiento del libro de stock.
const (
	DirectionIN  = "IN"
	DirectionOUT = "OUT"
)

// StockLedgerEntry es una fila append-only del libro de stock (product_stock / stock_list).
// Quantity siempre es positiva; Direction define el signo.
type StockLedgerEntry struct {
	ID            string
	CompanyID     string
	ItemClass     ItemClass
	ItemCode      string
	ItemName      string
	Godown        string
	Direction     string
	Quantity      decimal.Decimal
	LocationAfter decimal.Decimal // cantidad en la bodega después del movimiento
	TotalAfter    decimal.Decimal // total del ítem después del movimiento
	Reference     string          // orden o despacho que origina el movimiento
	Reason        string
	CreatedBy     string
	CreatedAt     time.Time
}

// Signed devuelve la cantidad con signo (IN positivo, OUT negativo).
func (e *StockLedgerEntry) Signed() decimal.Decimal {
	if e.Direction == DirectionOUT {
		return e.Quantity.Neg()
	}
	return e.Quantity
}
