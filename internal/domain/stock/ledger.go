package stock

import (
	"time"

	"github.com/jhoicas/dispatch-api/internal/domain"
	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// QuantityScale decimales que admiten las columnas NUMERIC(14,3) de cantidades.
const QuantityScale = 3

// ValidQuantity indica si q es positiva y cabe en QuantityScale decimales sin redondeo.
func ValidQuantity(q decimal.Decimal) bool {
	return q.GreaterThan(decimal.Zero) && q.Equal(q.Round(QuantityScale))
}

// Movement describe un cambio de stock a aplicar sobre un resumen.
type Movement struct {
	Direction string
	Godown    string
	Quantity  decimal.Decimal
	Reference string
	Reason    string
	CreatedBy string
}

// Apply suma o resta la cantidad en la bodega y en el total del resumen y devuelve la
// fila del libro que documenta el movimiento. Un OUT que deje la bodega en negativo
// devuelve ErrInsufficientStock sin modificar el resumen.
func Apply(summary *entity.StockSummary, mv Movement, now time.Time) (*entity.StockLedgerEntry, error) {
	if mv.Godown == "" || !ValidQuantity(mv.Quantity) {
		return nil, domain.ErrInvalidInput
	}
	if mv.Direction != entity.DirectionIN && mv.Direction != entity.DirectionOUT {
		return nil, domain.ErrInvalidInput
	}

	delta := mv.Quantity
	if mv.Direction == entity.DirectionOUT {
		delta = delta.Neg()
	}
	location := summary.Location(mv.Godown).Add(delta)
	total := summary.Total.Add(delta)
	if location.IsNegative() || total.IsNegative() {
		return nil, domain.ErrInsufficientStock
	}

	if summary.Locations == nil {
		summary.Locations = make(map[string]decimal.Decimal)
	}
	summary.Locations[mv.Godown] = location
	summary.Total = total
	summary.UpdatedAt = now

	return &entity.StockLedgerEntry{
		CompanyID:     summary.CompanyID,
		ItemClass:     summary.ItemClass,
		ItemCode:      summary.ItemCode,
		ItemName:      summary.ItemName,
		Godown:        mv.Godown,
		Direction:     mv.Direction,
		Quantity:      mv.Quantity,
		LocationAfter: location,
		TotalAfter:    total,
		Reference:     mv.Reference,
		Reason:        mv.Reason,
		CreatedBy:     mv.CreatedBy,
		CreatedAt:     now,
	}, nil
}

// Drift resultado de comparar un resumen contra su libro.
type Drift struct {
	Total       decimal.Decimal
	LocationSum decimal.Decimal
	LedgerNet   decimal.Decimal
}

// Consistent indica si total, suma de bodegas y neto del libro coinciden.
func (d Drift) Consistent() bool {
	return d.Total.Equal(d.LocationSum) && d.Total.Equal(d.LedgerNet)
}

// Check calcula el Drift de un resumen dado el neto firmado de su libro.
func Check(summary *entity.StockSummary, ledgerNet decimal.Decimal) Drift {
	return Drift{
		Total:       summary.Total,
		LocationSum: summary.LocationSum(),
		LedgerNet:   ledgerNet,
	}
}
