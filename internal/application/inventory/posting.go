package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/jhoicas/dispatch-api/internal/domain/stock"
)

// ItemRef identifica el ítem cuyo stock se mueve.
type ItemRef struct {
	CompanyID string
	Class     entity.ItemClass
	Code      string
	Name      string
}

// PostMovement bloquea el resumen del ítem (SELECT FOR UPDATE), aplica el movimiento,
// guarda el resumen y agrega la fila al libro. Debe llamarse dentro de una transacción.
func PostMovement(ctx context.Context, repos Repos, item ItemRef, mv stock.Movement, now time.Time) (*entity.StockLedgerEntry, error) {
	summary, err := repos.Summaries().GetForUpdate(ctx, item.CompanyID, item.Class, item.Code)
	if err != nil {
		return nil, err
	}
	if summary.ItemName == "" {
		summary.ItemName = item.Name
	}
	entry, err := stock.Apply(summary, mv, now)
	if err != nil {
		return nil, err
	}
	if err := repos.Summaries().Upsert(ctx, summary); err != nil {
		return nil, err
	}
	entry.ID = uuid.New().String()
	if entry.ItemName == "" {
		entry.ItemName = item.Name
	}
	if err := repos.Ledger().Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
