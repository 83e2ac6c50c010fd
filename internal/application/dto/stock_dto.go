package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterInwardRequest body para POST /api/stock/inward.
type RegisterInwardRequest struct {
	ItemCode  string          `json:"item_code"`
	ItemName  string          `json:"item_name"`
	ItemClass string          `json:"item_class,omitempty"`
	Godown    string          `json:"godown"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reference string          `json:"reference,omitempty"`
}

// StockSummaryDTO salida de un resumen de stock.
type StockSummaryDTO struct {
	ItemCode  string                     `json:"item_code"`
	ItemName  string                     `json:"item_name"`
	ItemClass string                     `json:"item_class"`
	Total     decimal.Decimal            `json:"total"`
	Locations map[string]decimal.Decimal `json:"locations"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// LedgerEntryDTO salida de una fila del libro de stock.
type LedgerEntryDTO struct {
	ID            string          `json:"id"`
	Direction     string          `json:"direction"`
	Godown        string          `json:"godown"`
	Quantity      decimal.Decimal `json:"quantity"`
	LocationAfter decimal.Decimal `json:"location_after"`
	TotalAfter    decimal.Decimal `json:"total_after"`
	Reference     string          `json:"reference"`
	Reason        string          `json:"reason"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DriftDTO ítem cuyo resumen no cuadra con su libro.
type DriftDTO struct {
	ItemCode    string          `json:"item_code"`
	Total       decimal.Decimal `json:"total"`
	LocationSum decimal.Decimal `json:"location_sum"`
	LedgerNet   decimal.Decimal `json:"ledger_net"`
}

// ReconciliationReportDTO resultado de verificar los resúmenes de una clase.
type ReconciliationReportDTO struct {
	ItemClass string     `json:"item_class"`
	Checked   int        `json:"checked"`
	Drifts    []DriftDTO `json:"drifts"`
}
