package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/jhoicas/dispatch-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockLedgerRepository = (*StockLedgerRepo)(nil)

// StockLedgerRepo libro append-only sobre product_stock (productos) y stock_list (repuestos).
type StockLedgerRepo struct {
	q Querier
}

// NewStockLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLedgerRepository(q Querier) *StockLedgerRepo {
	return &StockLedgerRepo{q: q}
}

// Append inserta un movimiento; nunca se actualizan ni borran filas del libro.
func (r *StockLedgerRepo) Append(ctx context.Context, e *entity.StockLedgerEntry) error {
	table, err := ledgerTable(e.ItemClass)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, company_id, item_code, item_name, godown, direction, quantity,
			location_after, total_after, reference, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, table)
	_, err = r.q.Exec(ctx, query,
		e.ID, e.CompanyID, e.ItemCode, e.ItemName, e.Godown, e.Direction, e.Quantity,
		e.LocationAfter, e.TotalAfter, e.Reference, e.Reason, e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		return wrapErr("append "+table, err)
	}
	return nil
}

// ListByItem lista los últimos movimientos de un ítem (más reciente primero).
func (r *StockLedgerRepo) ListByItem(ctx context.Context, companyID string, class entity.ItemClass, itemCode string, limit int) ([]*entity.StockLedgerEntry, error) {
	table, err := ledgerTable(class)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT id, company_id, item_code, item_name, godown, direction, quantity,
			location_after, total_after, reference, reason, created_by, created_at
		FROM %s
		WHERE company_id = $1 AND item_code = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3`, table)
	rows, err := r.q.Query(ctx, query, companyID, itemCode, limit)
	if err != nil {
		return nil, wrapErr("list "+table, err)
	}
	defer rows.Close()
	var list []*entity.StockLedgerEntry
	for rows.Next() {
		e := entity.StockLedgerEntry{ItemClass: class}
		if err := rows.Scan(
			&e.ID, &e.CompanyID, &e.ItemCode, &e.ItemName, &e.Godown, &e.Direction, &e.Quantity,
			&e.LocationAfter, &e.TotalAfter, &e.Reference, &e.Reason, &e.CreatedBy, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list "+table, err)
	}
	return list, nil
}

// NetByItem suma IN - OUT por ítem de la clase.
func (r *StockLedgerRepo) NetByItem(ctx context.Context, companyID string, class entity.ItemClass) (map[string]decimal.Decimal, error) {
	table, err := ledgerTable(class)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT item_code,
			COALESCE(SUM(CASE WHEN direction = 'OUT' THEN -quantity ELSE quantity END), 0)
		FROM %s
		WHERE company_id = $1
		GROUP BY item_code`, table)
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, wrapErr("net "+table, err)
	}
	defer rows.Close()
	net := make(map[string]decimal.Decimal)
	for rows.Next() {
		var code string
		var n decimal.Decimal
		if err := rows.Scan(&code, &n); err != nil {
			return nil, fmt.Errorf("scan net %s: %w", table, err)
		}
		net[code] = n
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("net "+table, err)
	}
	return net, nil
}
