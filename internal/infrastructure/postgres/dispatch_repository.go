package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/dispatch-api/internal/domain"
	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/jhoicas/dispatch-api/internal/domain/repository"
)

var _ repository.DispatchRepository = (*DispatchRepo)(nil)

// DispatchRepo implementación de DispatchRepository sobre PostgreSQL (tabla dispatch).
type DispatchRepo struct {
	q Querier
}

// NewDispatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDispatchRepository(q Querier) *DispatchRepo {
	return &DispatchRepo{q: q}
}

const dispatchColumns = `id, order_id, item_code, item_name, item_class, godown, quantity,
	stock_deducted, returned_at, created_at, updated_at`

// Create persiste un ítem despachado.
func (r *DispatchRepo) Create(ctx context.Context, item *entity.DispatchItem) error {
	query := `
		INSERT INTO dispatch (` + dispatchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.OrderID, item.ItemCode, item.ItemName, string(item.ItemClass),
		item.Godown, item.Quantity, item.StockDeducted, item.ReturnedAt,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dispatch: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem despachado (nil si no existe).
func (r *DispatchRepo) GetByID(ctx context.Context, id string) (*entity.DispatchItem, error) {
	query := `SELECT ` + dispatchColumns + ` FROM dispatch WHERE id = $1`
	item, err := scanDispatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispatch: %w", err)
	}
	return item, nil
}

// ListByOrder lista los ítems de una orden en orden de alta.
func (r *DispatchRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.DispatchItem, error) {
	query := `SELECT ` + dispatchColumns + ` FROM dispatch WHERE order_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list dispatch by order: %w", err)
	}
	defer rows.Close()
	var list []*entity.DispatchItem
	for rows.Next() {
		item, err := scanDispatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// SetDeducted actualiza stock_deducted y returned_at.
func (r *DispatchRepo) SetDeducted(ctx context.Context, item *entity.DispatchItem) error {
	query := `
		UPDATE dispatch SET stock_deducted = $2, returned_at = $3, updated_at = $4
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, item.ID, item.StockDeducted, item.ReturnedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update dispatch: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountDeducted cuenta los ítems de la orden con stock_deducted = true.
func (r *DispatchRepo) CountDeducted(ctx context.Context, orderID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM dispatch WHERE order_id = $1 AND stock_deducted`, orderID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count deducted: %w", err)
	}
	return n, nil
}

func scanDispatch(row pgx.Row) (*entity.DispatchItem, error) {
	var it entity.DispatchItem
	var class string
	if err := row.Scan(
		&it.ID, &it.OrderID, &it.ItemCode, &it.ItemName, &class, &it.Godown, &it.Quantity,
		&it.StockDeducted, &it.ReturnedAt, &it.CreatedAt, &it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	it.ItemClass = entity.ItemClass(class)
	return &it, nil
}
