package repository

import (
	"context"

	"github.com/jhoicas/dispatch-api/internal/domain/entity"
)

// ReturnRepository define el puerto para los registros de devolución (order_return_items).
type ReturnRepository interface {
	Create(ctx context.Context, record *entity.ReturnRecord) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.ReturnRecord, error)
}
