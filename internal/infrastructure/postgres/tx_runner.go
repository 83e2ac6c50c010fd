package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/dispatch-api/internal/application/inventory"
	"github.com/jhoicas/dispatch-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and Store implements inventory.Repos.
var (
	_ inventory.TxRunner = (*TxRunner)(nil)
	_ inventory.Repos    = (*Store)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(inventory.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Store agrupa los repositorios sobre un mismo Querier (pool o tx).
type Store struct {
	q Querier
}

// NewStore construye los repositorios. Pasar pool o tx (Querier).
func NewStore(q Querier) *Store {
	return &Store{q: q}
}

func (s *Store) Orders() repository.OrderRepository           { return NewOrderRepository(s.q) }
func (s *Store) Dispatch() repository.DispatchRepository      { return NewDispatchRepository(s.q) }
func (s *Store) Ledger() repository.StockLedgerRepository     { return NewStockLedgerRepository(s.q) }
func (s *Store) Summaries() repository.StockSummaryRepository { return NewStockSummaryRepository(s.q) }
func (s *Store) Returns() repository.ReturnRepository         { return NewReturnRepository(s.q) }

// Savepoint abre una tx anidada (SAVEPOINT sobre una tx, transacción real sobre el pool);
// si fn falla hace ROLLBACK TO SAVEPOINT y la tx externa sigue utilizable.
func (s *Store) Savepoint(ctx context.Context, fn func(inventory.Repos) error) error {
	sp, err := s.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin savepoint: %w", err)
	}
	defer func() { _ = sp.Rollback(ctx) }()

	if err := fn(NewStore(sp)); err != nil {
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}
