package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Acciones aceptadas por POST /api/installation/action.
const (
	ActionInstalled     = "INSTALLED"
	ActionReturned      = "RETURNED"
	ActionPartialReturn = "PARTIAL_RETURN"
)

// InstallationActionRequest body para POST /api/installation/action.
type InstallationActionRequest struct {
	OrderID string              `json:"order_id"`
	Action  string              `json:"action"`
	Reason  string              `json:"reason,omitempty"` // solo RETURNED
	Items   []ReturnItemRequest `json:"items,omitempty"`  // solo PARTIAL_RETURN
}

// ReturnItemRequest ítem a devolver en una devolución parcial.
type ReturnItemRequest struct {
	DispatchID string `json:"dispatch_id"`
	Reason     string `json:"reason"`
}

// ReturnedItemDTO ítem revertido en la operación.
type ReturnedItemDTO struct {
	DispatchID    string          `json:"dispatch_id"`
	ItemCode      string          `json:"item_code"`
	ItemClass     string          `json:"item_class"`
	Godown        string          `json:"godown"`
	Quantity      decimal.Decimal `json:"quantity"`
	LocationAfter decimal.Decimal `json:"location_after"`
	TotalAfter    decimal.Decimal `json:"total_after"`
}

// SkippedItemDTO ítem de una devolución parcial que no se procesó.
type SkippedItemDTO struct {
	DispatchID string `json:"dispatch_id"`
	Reason     string `json:"reason"`
}

// ActionResultDTO resultado de una acción de instalación/devolución.
type ActionResultDTO struct {
	Success            bool              `json:"success"`
	Message            string            `json:"message"`
	OrderID            string            `json:"order_id"`
	Action             string            `json:"action"`
	InstallationStatus int               `json:"installation_status"`
	IsReturned         int               `json:"is_returned"`
	Returned           []ReturnedItemDTO `json:"returned,omitempty"`
	Skipped            []SkippedItemDTO  `json:"skipped,omitempty"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	OrderNumber string `json:"order_number"`
}

// AddDispatchItemRequest body para POST /api/orders/:id/dispatch.
// ItemClass es opcional: vacío = se deduce del código.
type AddDispatchItemRequest struct {
	ItemCode  string           `json:"item_code"`
	ItemName  string           `json:"item_name"`
	ItemClass string           `json:"item_class,omitempty"`
	Godown    string           `json:"godown"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"` // default 1
}

// DispatchItemDTO salida de un ítem despachado.
type DispatchItemDTO struct {
	ID            string          `json:"id"`
	ItemCode      string          `json:"item_code"`
	ItemName      string          `json:"item_name"`
	ItemClass     string          `json:"item_class"`
	Godown        string          `json:"godown"`
	Quantity      decimal.Decimal `json:"quantity"`
	StockDeducted bool            `json:"stock_deducted"`
	ReturnedAt    *time.Time      `json:"returned_at,omitempty"`
}

// OrderDTO salida de una orden con sus ítems despachados.
type OrderDTO struct {
	ID                 string            `json:"id"`
	OrderNumber        string            `json:"order_number"`
	InstallationStatus int               `json:"installation_status"`
	IsReturned         int               `json:"is_returned"`
	Items              []DispatchItemDTO `json:"items"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// DeductionResultDTO resultado de completar un despacho.
type DeductionResultDTO struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	OrderID  string            `json:"order_id"`
	Deducted []ReturnedItemDTO `json:"deducted"`
}

// ReturnRecordDTO salida de un registro de devolución.
type ReturnRecordDTO struct {
	ID         string          `json:"id"`
	DispatchID string          `json:"dispatch_id"`
	ItemCode   string          `json:"item_code"`
	Godown     string          `json:"godown"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reason     string          `json:"reason"`
	ReturnedBy string          `json:"returned_by"`
	CreatedAt  time.Time       `json:"created_at"`
}
