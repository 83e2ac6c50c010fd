package inventory

import (
	"context"

	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/jhoicas/dispatch-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma conexión o transacción.
type Repos interface {
	Orders() repository.OrderRepository
	Dispatch() repository.DispatchRepository
	Ledger() repository.StockLedgerRepository
	Summaries() repository.StockSummaryRepository
	Returns() repository.ReturnRepository
	// Savepoint ejecuta fn en un savepoint: si fn falla solo se deshacen sus escrituras.
	Savepoint(ctx context.Context, fn func(Repos) error) error
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de stock.
type TxRunner interface {
	Run(ctx context.Context, fn func(Repos) error) error
}

// SummaryExporter genera un libro de cálculo con los resúmenes de una clase.
// godowns fija el orden de las columnas de bodega.
type SummaryExporter interface {
	ExportSummaries(class entity.ItemClass, godowns []string, summaries []*entity.StockSummary) ([]byte, error)
}
