package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/dispatch-api/internal/application/dto"
	"github.com/jhoicas/dispatch-api/internal/application/inventory"
	"github.com/jhoicas/dispatch-api/internal/domain"
	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/jhoicas/dispatch-api/internal/domain/stock"
	"github.com/jhoicas/dispatch-api/pkg/logger"
)

const defaultFullReturnReason = "full return"

// Motivos por los que un ítem de una devolución parcial se omite.
var (
	errItemNotInOrder      = errors.New("el ítem no pertenece a la orden")
	errItemAlreadyReversed = errors.New("el ítem ya no descuenta stock")
)

// ReconciliationUseCase mueve las órdenes entre estados de instalación/devolución y revierte
// el stock descontado por sus ítems despachados. Cada operación corre en una transacción con
// la fila de la orden bloqueada, por lo que dos devoluciones de la misma orden se serializan.
type ReconciliationUseCase struct {
	txRunner inventory.TxRunner
	log      *logger.Logger
}

// NewReconciliationUseCase construye el caso de uso.
func NewReconciliationUseCase(txRunner inventory.TxRunner, log *logger.Logger) *ReconciliationUseCase {
	return &ReconciliationUseCase{txRunner: txRunner, log: log}
}

// ActionInput entrada de POST /api/installation/action ya con la identidad del request.
type ActionInput struct {
	CompanyID string
	UserID    string
	OrderID   string
	Action    string
	Reason    string
	Items     []dto.ReturnItemRequest
}

// ApplyAction valida la entrada y despacha según la acción.
func (uc *ReconciliationUseCase) ApplyAction(ctx context.Context, in ActionInput) (*dto.ActionResultDTO, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	if in.OrderID == "" {
		return nil, domain.ErrInvalidInput
	}
	switch strings.ToUpper(strings.TrimSpace(in.Action)) {
	case dto.ActionInstalled:
		return uc.MarkInstalled(ctx, in.CompanyID, in.OrderID)
	case dto.ActionReturned:
		return uc.MarkReturned(ctx, in.CompanyID, in.UserID, in.OrderID, in.Reason)
	case dto.ActionPartialReturn:
		return uc.MarkPartialReturn(ctx, in.CompanyID, in.UserID, in.OrderID, in.Items)
	case "":
		return nil, domain.ErrInvalidInput
	default:
		return nil, domain.ErrInvalidAction
	}
}

// MarkInstalled marca la orden como instalada. No toca stock; repetirla no tiene efecto.
func (uc *ReconciliationUseCase) MarkInstalled(ctx context.Context, companyID, orderID string) (*dto.ActionResultDTO, error) {
	var order *entity.Order
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		var err error
		order, err = lockOrder(ctx, repos, companyID, orderID)
		if err != nil {
			return err
		}
		if order.IsInstalled() {
			return nil
		}
		order.InstallationStatus = entity.InstallationInstalled
		order.UpdatedAt = time.Now()
		return repos.Orders().UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", orderID).Msg("orden marcada como instalada")
	return newResult(order, dto.ActionInstalled, "orden marcada como instalada"), nil
}

// MarkReturned revierte todos los ítems que aún descuentan stock y marca la orden como
// devuelta por completo. Es atómica: si un ítem falla no se aplica ninguno.
func (uc *ReconciliationUseCase) MarkReturned(ctx context.Context, companyID, userID, orderID, reason string) (*dto.ActionResultDTO, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultFullReturnReason
	}

	var (
		order    *entity.Order
		returned []dto.ReturnedItemDTO
	)
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		returned = nil
		var err error
		order, err = lockOrder(ctx, repos, companyID, orderID)
		if err != nil {
			return err
		}
		items, err := repos.Dispatch().ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrNotFound
		}
		now := time.Now()
		for _, item := range items {
			if !item.StockDeducted {
				continue
			}
			out, err := reverseItem(ctx, repos, order, item, reason, userID, now)
			if err != nil {
				return err
			}
			returned = append(returned, *out)
		}
		order.ReturnStatus = entity.ReturnFull
		order.UpdatedAt = now
		return repos.Orders().UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("order_id", orderID).
		Int("reversed", len(returned)).
		Msg("orden devuelta por completo")
	res := newResult(order, dto.ActionReturned, "orden devuelta por completo")
	res.Returned = returned
	return res, nil
}

// MarkPartialReturn revierte solo los ítems indicados. Cada ítem corre en su propio
// savepoint: si falla se deshacen únicamente sus escrituras y se reporta como omitido.
// Al final la orden queda devuelta por completo si ningún ítem sigue descontando stock,
// o parcialmente devuelta en caso contrario.
func (uc *ReconciliationUseCase) MarkPartialReturn(ctx context.Context, companyID, userID, orderID string, items []dto.ReturnItemRequest) (*dto.ActionResultDTO, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range items {
		if strings.TrimSpace(it.DispatchID) == "" {
			return nil, domain.ErrInvalidInput
		}
	}

	var (
		order    *entity.Order
		returned []dto.ReturnedItemDTO
		skipped  []dto.SkippedItemDTO
	)
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		returned, skipped = nil, nil
		var err error
		order, err = lockOrder(ctx, repos, companyID, orderID)
		if err != nil {
			return err
		}
		all, err := repos.Dispatch().ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			return domain.ErrNotFound
		}

		now := time.Now()
		for _, req := range items {
			dispatchID := strings.TrimSpace(req.DispatchID)
			var out *dto.ReturnedItemDTO
			err := repos.Savepoint(ctx, func(sp inventory.Repos) error {
				item, err := sp.Dispatch().GetByID(ctx, dispatchID)
				if err != nil {
					return err
				}
				if item == nil || item.OrderID != order.ID {
					return errItemNotInOrder
				}
				if !item.StockDeducted {
					return errItemAlreadyReversed
				}
				out, err = reverseItem(ctx, sp, order, item, req.Reason, userID, now)
				return err
			})
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				uc.log.Warn().
					Err(err).
					Str("order_id", order.ID).
					Str("dispatch_id", dispatchID).
					Msg("ítem de devolución parcial omitido")
				skipped = append(skipped, dto.SkippedItemDTO{DispatchID: dispatchID, Reason: err.Error()})
				continue
			}
			returned = append(returned, *out)
		}

		remaining, err := repos.Dispatch().CountDeducted(ctx, order.ID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			order.ReturnStatus = entity.ReturnFull
		} else {
			order.ReturnStatus = entity.ReturnPartial
		}
		order.UpdatedAt = now
		return repos.Orders().UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	msg := "devolución parcial registrada"
	if order.ReturnStatus == entity.ReturnFull {
		msg = "todos los ítems devueltos, orden devuelta por completo"
	}
	uc.log.Info().
		Str("order_id", orderID).
		Int("reversed", len(returned)).
		Int("skipped", len(skipped)).
		Int("is_returned", order.ReturnStatus).
		Msg("devolución parcial procesada")

	res := newResult(order, dto.ActionPartialReturn, msg)
	res.Returned = returned
	res.Skipped = skipped
	return res, nil
}

// reverseItem devuelve al stock la cantidad del ítem, limpia su flag y registra la devolución.
func reverseItem(
	ctx context.Context,
	repos inventory.Repos,
	order *entity.Order,
	item *entity.DispatchItem,
	reason, userID string,
	now time.Time,
) (*dto.ReturnedItemDTO, error) {
	class := stock.ResolveClass(item.ItemClass, item.ItemCode)
	entry, err := inventory.PostMovement(ctx, repos, inventory.ItemRef{
		CompanyID: order.CompanyID,
		Class:     class,
		Code:      item.ItemCode,
		Name:      item.ItemName,
	}, stock.Movement{
		Direction: entity.DirectionIN,
		Godown:    item.Godown,
		Quantity:  item.Quantity,
		Reference: item.ID,
		Reason:    "return: " + reason,
		CreatedBy: userID,
	}, now)
	if err != nil {
		return nil, err
	}

	item.StockDeducted = false
	item.ReturnedAt = &now
	item.UpdatedAt = now
	if err := repos.Dispatch().SetDeducted(ctx, item); err != nil {
		return nil, err
	}
	if err := repos.Returns().Create(ctx, &entity.ReturnRecord{
		ID:         uuid.New().String(),
		OrderID:    order.ID,
		DispatchID: item.ID,
		ItemCode:   item.ItemCode,
		Godown:     item.Godown,
		Quantity:   item.Quantity,
		Reason:     reason,
		ReturnedBy: userID,
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}
	return &dto.ReturnedItemDTO{
		DispatchID:    item.ID,
		ItemCode:      item.ItemCode,
		ItemClass:     class.String(),
		Godown:        item.Godown,
		Quantity:      item.Quantity,
		LocationAfter: entry.LocationAfter,
		TotalAfter:    entry.TotalAfter,
	}, nil
}

// lockOrder bloquea la orden y verifica que pertenezca a la empresa.
func lockOrder(ctx context.Context, repos inventory.Repos, companyID, orderID string) (*entity.Order, error) {
	order, err := repos.Orders().GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func newResult(order *entity.Order, action, message string) *dto.ActionResultDTO {
	return &dto.ActionResultDTO{
		Success:            true,
		Message:            message,
		OrderID:            order.ID,
		Action:             action,
		InstallationStatus: order.InstallationStatus,
		IsReturned:         order.ReturnStatus,
	}
}
