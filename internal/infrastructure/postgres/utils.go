package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/dispatch-api/internal/domain"
	"github.com/jhoicas/dispatch-api/internal/domain/entity"
)

// Querier es lo común entre *pgxpool.Pool y pgx.Tx; los repositorios funcionan con ambos.
// Begin sobre una pgx.Tx abre un savepoint.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isInvalidText indica un valor con formato inválido para la columna (22P02), p. ej. un id que no es UUID.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// wrapErr antepone la operación al error. Un valor mal formado (22P02), p. ej. un
// company_id del token que no es UUID, se reporta como domain.ErrInvalidInput.
func wrapErr(op string, err error) error {
	if isInvalidText(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Tablas por clase de ítem. Los nombres vienen de constantes, nunca del request.
func ledgerTable(class entity.ItemClass) (string, error) {
	switch class {
	case entity.ItemClassProduct:
		return "product_stock", nil
	case entity.ItemClassSpare:
		return "stock_list", nil
	}
	return "", fmt.Errorf("clase de ítem desconocida %q", class)
}

func summaryTable(class entity.ItemClass) (string, error) {
	switch class {
	case entity.ItemClassProduct:
		return "product_stock_summary", nil
	case entity.ItemClassSpare:
		return "stock_summary", nil
	}
	return "", fmt.Errorf("clase de ítem desconocida %q", class)
}
