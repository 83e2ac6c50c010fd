// Package memory implementa los repositorios y el TxRunner en memoria del proceso.
// Se usa con DB_DRIVER=memory (desarrollo) y en los tests de casos de uso.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/dispatch-api/internal/application/inventory"
	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/jhoicas/dispatch-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ inventory.TxRunner                = (*Store)(nil)
	_ inventory.Repos                   = (*repos)(nil)
	_ repository.OrderRepository        = orderRepo{}
	_ repository.DispatchRepository     = dispatchRepo{}
	_ repository.StockLedgerRepository  = ledgerRepo{}
	_ repository.StockSummaryRepository = summaryRepo{}
	_ repository.ReturnRepository       = returnRepo{}
)

type summaryKey struct {
	companyID string
	class     entity.ItemClass
	code      string
}

type state struct {
	orders        map[string]entity.Order
	dispatch      map[string]entity.DispatchItem
	dispatchOrder []string
	ledger        []entity.StockLedgerEntry
	summaries     map[summaryKey]entity.StockSummary
	returns       []entity.ReturnRecord
}

func newState() *state {
	return &state{
		orders:    make(map[string]entity.Order),
		dispatch:  make(map[string]entity.DispatchItem),
		summaries: make(map[summaryKey]entity.StockSummary),
	}
}

// clone copia el estado completo; se usa como snapshot para rollback y savepoints.
func (s *state) clone() *state {
	c := &state{
		orders:        make(map[string]entity.Order, len(s.orders)),
		dispatch:      make(map[string]entity.DispatchItem, len(s.dispatch)),
		dispatchOrder: append([]string(nil), s.dispatchOrder...),
		ledger:        append([]entity.StockLedgerEntry(nil), s.ledger...),
		summaries:     make(map[summaryKey]entity.StockSummary, len(s.summaries)),
		returns:       append([]entity.ReturnRecord(nil), s.returns...),
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.dispatch {
		c.dispatch[k] = copyItem(v)
	}
	for k, v := range s.summaries {
		c.summaries[k] = copySummary(v)
	}
	return c
}

// Store guarda todo el estado bajo un único mutex. Una transacción lo retiene completa,
// por lo que las transacciones quedan serializadas.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Repos devuelve repositorios fuera de transacción (cada llamada toma el lock).
func (s *Store) Repos() inventory.Repos {
	return &repos{store: s}
}

// Run ejecuta fn con el lock tomado; si fn falla el estado vuelve al snapshot inicial.
func (s *Store) Run(ctx context.Context, fn func(inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.st.clone()
	if err := fn(&repos{store: s, inTx: true}); err != nil {
		s.st = snap
		return err
	}
	return nil
}

type repos struct {
	store *Store
	inTx  bool
}

func (r *repos) do(fn func(st *state) error) error {
	if !r.inTx {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()
	}
	return fn(r.store.st)
}

func (r *repos) Orders() repository.OrderRepository           { return orderRepo{r} }
func (r *repos) Dispatch() repository.DispatchRepository      { return dispatchRepo{r} }
func (r *repos) Ledger() repository.StockLedgerRepository     { return ledgerRepo{r} }
func (r *repos) Summaries() repository.StockSummaryRepository { return summaryRepo{r} }
func (r *repos) Returns() repository.ReturnRepository         { return returnRepo{r} }

// Savepoint dentro de una transacción restaura solo las escrituras de fn si falla.
func (r *repos) Savepoint(ctx context.Context, fn func(inventory.Repos) error) error {
	if !r.inTx {
		return r.store.Run(ctx, fn)
	}
	snap := r.store.st.clone()
	if err := fn(r); err != nil {
		r.store.st = snap
		return err
	}
	return nil
}

func copyItem(it entity.DispatchItem) entity.DispatchItem {
	if it.ReturnedAt != nil {
		t := *it.ReturnedAt
		it.ReturnedAt = &t
	}
	return it
}

func copySummary(s entity.StockSummary) entity.StockSummary {
	locs := make(map[string]decimal.Decimal, len(s.Locations))
	for g, q := range s.Locations {
		locs[g] = q
	}
	s.Locations = locs
	return s
}

func touch(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}
