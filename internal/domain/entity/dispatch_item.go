package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DispatchItem representa una línea despachada de una orden (tabla dispatch).
// StockDeducted es true mientras la unidad cuenta contra el stock de su bodega.
type DispatchItem struct {
	ID            string
	OrderID       string
	ItemCode      string
	ItemName      string
	ItemClass     ItemClass
	Godown        string // bodega de origen
	Quantity      decimal.Decimal
	StockDeducted bool
	ReturnedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
