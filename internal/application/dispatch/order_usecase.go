package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/dispatch-api/internal/application/dto"
	"github.com/jhoicas/dispatch-api/internal/application/inventory"
	"github.com/jhoicas/dispatch-api/internal/domain"
	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/jhoicas/dispatch-api/internal/domain/stock"
	"github.com/jhoicas/dispatch-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// OrderUseCase alta de órdenes e ítems despachados, descuento de stock al completar el
// despacho y consultas de orden/devoluciones.
type OrderUseCase struct {
	txRunner inventory.TxRunner
	repos    inventory.Repos
	log      *logger.Logger
}

// NewOrderUseCase construye el caso de uso. repos se usa para lecturas fuera de transacción.
func NewOrderUseCase(txRunner inventory.TxRunner, repos inventory.Repos, log *logger.Logger) *OrderUseCase {
	return &OrderUseCase{txRunner: txRunner, repos: repos, log: log}
}

// CreateOrder crea una orden sin instalar ni devolver.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, companyID string, in dto.CreateOrderRequest) (*dto.OrderDTO, error) {
	number := strings.TrimSpace(in.OrderNumber)
	if number == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	order := &entity.Order{
		ID:                 uuid.New().String(),
		CompanyID:          companyID,
		OrderNumber:        number,
		InstallationStatus: entity.InstallationPending,
		ReturnStatus:       entity.ReturnNone,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.repos.Orders().Create(ctx, order); err != nil {
		return nil, err
	}
	return toOrderDTO(order, nil), nil
}

// AddDispatchItem agrega un ítem despachado a la orden. El ítem no descuenta stock hasta
// que se completa el despacho.
func (uc *OrderUseCase) AddDispatchItem(ctx context.Context, companyID, orderID string, in dto.AddDispatchItemRequest) (*dto.DispatchItemDTO, error) {
	code := strings.TrimSpace(in.ItemCode)
	godown := strings.TrimSpace(in.Godown)
	if code == "" || godown == "" {
		return nil, domain.ErrInvalidInput
	}
	qty := decimal.NewFromInt(1)
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if !stock.ValidQuantity(qty) {
		return nil, domain.ErrInvalidInput
	}
	class, err := inventory.ParseClass(in.ItemClass, code)
	if err != nil {
		return nil, err
	}

	var item *entity.DispatchItem
	err = uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		order, err := lockOrder(ctx, repos, companyID, orderID)
		if err != nil {
			return err
		}
		if order.ReturnStatus != entity.ReturnNone {
			return domain.ErrConflict
		}
		now := time.Now()
		item = &entity.DispatchItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ItemCode:  code,
			ItemName:  strings.TrimSpace(in.ItemName),
			ItemClass: class,
			Godown:    godown,
			Quantity:  qty,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return repos.Dispatch().Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	out := toDispatchItemDTO(item)
	return &out, nil
}

// CompleteDispatch descuenta el stock de todos los ítems de la orden que aún no lo hicieron
// (ni fueron devueltos). Si alguna bodega quedaría en negativo no se descuenta nada.
// Una orden con devolución total o parcial ya no descuenta: ErrConflict.
func (uc *OrderUseCase) CompleteDispatch(ctx context.Context, companyID, userID, orderID string) (*dto.DeductionResultDTO, error) {
	var deducted []dto.ReturnedItemDTO
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		deducted = nil
		order, err := lockOrder(ctx, repos, companyID, orderID)
		if err != nil {
			return err
		}
		if order.ReturnStatus != entity.ReturnNone {
			return domain.ErrConflict
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
			if item.StockDeducted || item.ReturnedAt != nil {
				continue
			}
			class := stock.ResolveClass(item.ItemClass, item.ItemCode)
			entry, err := inventory.PostMovement(ctx, repos, inventory.ItemRef{
				CompanyID: order.CompanyID,
				Class:     class,
				Code:      item.ItemCode,
				Name:      item.ItemName,
			}, stock.Movement{
				Direction: entity.DirectionOUT,
				Godown:    item.Godown,
				Quantity:  item.Quantity,
				Reference: item.ID,
				Reason:    "dispatch",
				CreatedBy: userID,
			}, now)
			if err != nil {
				return err
			}
			item.StockDeducted = true
			item.UpdatedAt = now
			if err := repos.Dispatch().SetDeducted(ctx, item); err != nil {
				return err
			}
			deducted = append(deducted, dto.ReturnedItemDTO{
				DispatchID:    item.ID,
				ItemCode:      item.ItemCode,
				ItemClass:     class.String(),
				Godown:        item.Godown,
				Quantity:      item.Quantity,
				LocationAfter: entry.LocationAfter,
				TotalAfter:    entry.TotalAfter,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("order_id", orderID).
		Int("deducted", len(deducted)).
		Msg("despacho completado")
	if deducted == nil {
		deducted = []dto.ReturnedItemDTO{}
	}
	return &dto.DeductionResultDTO{
		Success:  true,
		Message:  "stock descontado",
		OrderID:  orderID,
		Deducted: deducted,
	}, nil
}

// GetOrder devuelve la orden con sus ítems despachados.
func (uc *OrderUseCase) GetOrder(ctx context.Context, companyID, orderID string) (*dto.OrderDTO, error) {
	order, err := uc.repos.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	items, err := uc.repos.Dispatch().ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return toOrderDTO(order, items), nil
}

// ListReturns devuelve el historial de devoluciones de la orden.
func (uc *OrderUseCase) ListReturns(ctx context.Context, companyID, orderID string) ([]dto.ReturnRecordDTO, error) {
	order, err := uc.repos.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	records, err := uc.repos.Returns().ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReturnRecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, dto.ReturnRecordDTO{
			ID:         r.ID,
			DispatchID: r.DispatchID,
			ItemCode:   r.ItemCode,
			Godown:     r.Godown,
			Quantity:   r.Quantity,
			Reason:     r.Reason,
			ReturnedBy: r.ReturnedBy,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}

func toOrderDTO(o *entity.Order, items []*entity.DispatchItem) *dto.OrderDTO {
	out := &dto.OrderDTO{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		InstallationStatus: o.InstallationStatus,
		IsReturned:         o.ReturnStatus,
		Items:              make([]dto.DispatchItemDTO, 0, len(items)),
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, toDispatchItemDTO(it))
	}
	return out
}

func toDispatchItemDTO(it *entity.DispatchItem) dto.DispatchItemDTO {
	return dto.DispatchItemDTO{
		ID:            it.ID,
		ItemCode:      it.ItemCode,
		ItemName:      it.ItemName,
		ItemClass:     stock.ResolveClass(it.ItemClass, it.ItemCode).String(),
		Godown:        it.Godown,
		Quantity:      it.Quantity,
		StockDeducted: it.StockDeducted,
		ReturnedAt:    it.ReturnedAt,
	}
}
