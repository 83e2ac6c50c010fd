package repository

import (
	"context"

	"github.com/jhoicas/dispatch-api/internal/domain/entity"
)

// StockSummaryRepository define el puerto para las filas resumen por ítem
// (product_stock_summary o stock_summary según la clase).
type StockSummaryRepository interface {
	Get(ctx context.Context, companyID string, class entity.ItemClass, itemCode string) (*entity.StockSummary, error)
	// GetForUpdate bloquea la fila; si no existe devuelve un resumen vacío sin persistir.
	GetForUpdate(ctx context.Context, companyID string, class entity.ItemClass, itemCode string) (*entity.StockSummary, error)
	Upsert(ctx context.Context, summary *entity.StockSummary) error
	List(ctx context.Context, companyID string, class entity.ItemClass) ([]*entity.StockSummary, error)
}
