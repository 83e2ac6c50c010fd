package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnRecord registra la reversión de un ítem despachado (tabla order_return_items).
type ReturnRecord struct {
	ID         string
	OrderID    string
	DispatchID string
	ItemCode   string
	Godown     string
	Quantity   decimal.Decimal
	Reason     string
	ReturnedBy string
	CreatedAt  time.Time
}
