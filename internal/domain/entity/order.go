package entity

import "time"

// Estado de instalación de una orden (columna installation_status).
const (
	InstallationPending   = 0
	InstallationInstalled = 1
)

// Estado de devolución de una orden (columna is_returned).
const (
	ReturnNone    = 0
	ReturnFull    = 1
	ReturnPartial = 2
)

// Order representa una orden de venta/instalación (tabla neworder).
type Order struct {
	ID                 string
	CompanyID          string
	OrderNumber        string
	InstallationStatus int
	ReturnStatus       int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsInstalled indica si la orden ya fue marcada como instalada.
func (o *Order) IsInstalled() bool {
	return o.InstallationStatus == InstallationInstalled
}
