package repository

import (
	"context"

	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockLedgerRepository define el puerto para el libro append-only de movimientos.
// La clase del ítem selecciona la tabla (product_stock o stock_list).
type StockLedgerRepository interface {
	Append(ctx context.Context, entry *entity.StockLedgerEntry) error
	ListByItem(ctx context.Context, companyID string, class entity.ItemClass, itemCode string, limit int) ([]*entity.StockLedgerEntry, error)
	// NetByItem devuelve la suma firmada (IN - OUT) de todos los movimientos de cada ítem de la clase.
	NetByItem(ctx context.Context, companyID string, class entity.ItemClass) (map[string]decimal.Decimal, error)
}
