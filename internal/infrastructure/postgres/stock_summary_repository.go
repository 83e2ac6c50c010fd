package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/jhoicas/dispatch-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockSummaryRepository = (*StockSummaryRepo)(nil)

// StockSummaryRepo filas resumen sobre product_stock_summary / stock_summary.
// Las cantidades por bodega viven en la columna JSONB locations.
type StockSummaryRepo struct {
	q Querier
}

// NewStockSummaryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockSummaryRepository(q Querier) *StockSummaryRepo {
	return &StockSummaryRepo{q: q}
}

// Get obtiene el resumen de un ítem (nil si no existe).
func (r *StockSummaryRepo) Get(ctx context.Context, companyID string, class entity.ItemClass, itemCode string) (*entity.StockSummary, error) {
	table, err := summaryTable(class)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT company_id, item_code, item_name, total, locations, updated_at
		FROM %s WHERE company_id = $1 AND item_code = $2`, table)
	s, err := scanSummary(r.q.QueryRow(ctx, query, companyID, itemCode), class)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get "+table, err)
	}
	return s, nil
}

// GetForUpdate garantiza que la fila exista (insert en cero si falta) y la bloquea
// (SELECT FOR UPDATE), así dos altas simultáneas del mismo ítem también se serializan.
func (r *StockSummaryRepo) GetForUpdate(ctx context.Context, companyID string, class entity.ItemClass, itemCode string) (*entity.StockSummary, error) {
	table, err := summaryTable(class)
	if err != nil {
		return nil, err
	}
	_, err = r.q.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (company_id, item_code) VALUES ($1, $2)
		ON CONFLICT (company_id, item_code) DO NOTHING`, table), companyID, itemCode)
	if err != nil {
		return nil, wrapErr("ensure "+table, err)
	}
	query := fmt.Sprintf(`
		SELECT company_id, item_code, item_name, total, locations, updated_at
		FROM %s WHERE company_id = $1 AND item_code = $2
		FOR UPDATE`, table)
	s, err := scanSummary(r.q.QueryRow(ctx, query, companyID, itemCode), class)
	if err != nil {
		return nil, fmt.Errorf("get %s for update: %w", table, err)
	}
	return s, nil
}

// Upsert guarda total y bodegas del resumen.
func (r *StockSummaryRepo) Upsert(ctx context.Context, s *entity.StockSummary) error {
	table, err := summaryTable(s.ItemClass)
	if err != nil {
		return err
	}
	locations, err := json.Marshal(s.Locations)
	if err != nil {
		return fmt.Errorf("encode locations: %w", err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (company_id, item_code, item_name, total, locations, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)
		ON CONFLICT (company_id, item_code)
		DO UPDATE SET item_name = EXCLUDED.item_name, total = EXCLUDED.total,
			locations = EXCLUDED.locations, updated_at = EXCLUDED.updated_at`, table)
	_, err = r.q.Exec(ctx, query, s.CompanyID, s.ItemCode, s.ItemName, s.Total, string(locations), s.UpdatedAt)
	if err != nil {
		return wrapErr("upsert "+table, err)
	}
	return nil
}

// List lista los resúmenes de la clase ordenados por código.
func (r *StockSummaryRepo) List(ctx context.Context, companyID string, class entity.ItemClass) ([]*entity.StockSummary, error) {
	table, err := summaryTable(class)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT company_id, item_code, item_name, total, locations, updated_at
		FROM %s WHERE company_id = $1 ORDER BY item_code`, table)
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, wrapErr("list "+table, err)
	}
	defer rows.Close()
	var list []*entity.StockSummary
	for rows.Next() {
		s, err := scanSummary(rows, class)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list "+table, err)
	}
	return list, nil
}

func scanSummary(row pgx.Row, class entity.ItemClass) (*entity.StockSummary, error) {
	s := entity.StockSummary{ItemClass: class}
	var locations []byte
	if err := row.Scan(&s.CompanyID, &s.ItemCode, &s.ItemName, &s.Total, &locations, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Locations = make(map[string]decimal.Decimal)
	if len(locations) > 0 {
		if err := json.Unmarshal(locations, &s.Locations); err != nil {
			return nil, fmt.Errorf("decode locations: %w", err)
		}
	}
	return &s, nil
}
