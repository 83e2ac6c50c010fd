package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockSummary es el último total conocido de un ítem y su reparto por bodega
// (product_stock_summary / stock_summary). Total debe ser igual a la suma de Locations.
type StockSummary struct {
	CompanyID string
	ItemClass ItemClass
	ItemCode  string
	ItemName  string
	Total     decimal.Decimal
	Locations map[string]decimal.Decimal
	UpdatedAt time.Time
}

// Location devuelve la cantidad en una bodega (cero si no existe).
func (s *StockSummary) Location(godown string) decimal.Decimal {
	if s.Locations == nil {
		return decimal.Zero
	}
	return s.Locations[godown]
}

// LocationSum suma las cantidades de todas las bodegas.
func (s *StockSummary) LocationSum() decimal.Decimal {
	sum := decimal.Zero
	for _, q := range s.Locations {
		sum = sum.Add(q)
	}
	return sum
}
