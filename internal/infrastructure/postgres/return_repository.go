package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/jhoicas/dispatch-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo registros de devolución sobre order_return_items.
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

// Create persiste un registro de devolución.
func (r *ReturnRepo) Create(ctx context.Context, rec *entity.ReturnRecord) error {
	query := `
		INSERT INTO order_return_items (id, order_id, dispatch_id, item_code, godown, quantity, reason, returned_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.OrderID, rec.DispatchID, rec.ItemCode, rec.Godown,
		rec.Quantity, rec.Reason, rec.ReturnedBy, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert return item: %w", err)
	}
	return nil
}

// ListByOrder lista las devoluciones de una orden (más antigua primero).
func (r *ReturnRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.ReturnRecord, error) {
	query := `
		SELECT id, order_id, dispatch_id, item_code, godown, quantity, reason, returned_by, created_at
		FROM order_return_items WHERE order_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list return items: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReturnRecord
	for rows.Next() {
		var rec entity.ReturnRecord
		if err := rows.Scan(&rec.ID, &rec.OrderID, &rec.DispatchID, &rec.ItemCode, &rec.Godown,
			&rec.Quantity, &rec.Reason, &rec.ReturnedBy, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan return item: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
