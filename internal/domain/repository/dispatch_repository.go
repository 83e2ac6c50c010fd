package repository

import (
	"context"

	"github.com/jhoicas/dispatch-api/internal/domain/entity"
)

// DispatchRepository define el puerto de persistencia para ítems despachados (tabla dispatch).
type DispatchRepository interface {
	Create(ctx context.Context, item *entity.DispatchItem) error
	GetByID(ctx context.Context, id string) (*entity.DispatchItem, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.DispatchItem, error)
	// SetDeducted cambia el flag stock_deducted y la fecha de devolución.
	SetDeducted(ctx context.Context, item *entity.DispatchItem) error
	// CountDeducted cuenta los ítems de la orden que aún descuentan stock.
	CountDeducted(ctx context.Context, orderID string) (int, error)
}
