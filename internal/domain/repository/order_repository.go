package repository

import (
	"context"

	"github.com/jhoicas/dispatch-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para órdenes (tabla neworder).
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate bloquea la fila de la orden hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, order *entity.Order) error
}
