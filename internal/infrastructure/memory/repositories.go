package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/dispatch-api/internal/domain"
	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

type orderRepo struct{ r *repos }

func (o orderRepo) Create(_ context.Context, order *entity.Order) error {
	return o.r.do(func(st *state) error {
		if _, ok := st.orders[order.ID]; ok {
			return fmt.Errorf("insert order: id duplicado %s", order.ID)
		}
		for _, o := range st.orders {
			if o.CompanyID == order.CompanyID && o.OrderNumber == order.OrderNumber {
				return domain.ErrConflict
			}
		}
		touch(&order.CreatedAt)
		touch(&order.UpdatedAt)
		st.orders[order.ID] = *order
		return nil
	})
}

func (o orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := o.r.do(func(st *state) error {
		if v, ok := st.orders[id]; ok {
			out = &v
		}
		return nil
	})
	return out, err
}

func (o orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return o.GetByID(ctx, id)
}

func (o orderRepo) UpdateStatus(_ context.Context, order *entity.Order) error {
	return o.r.do(func(st *state) error {
		cur, ok := st.orders[order.ID]
		if !ok {
			return fmt.Errorf("update order status: orden %s no existe", order.ID)
		}
		cur.InstallationStatus = order.InstallationStatus
		cur.ReturnStatus = order.ReturnStatus
		cur.UpdatedAt = order.UpdatedAt
		st.orders[order.ID] = cur
		return nil
	})
}

type dispatchRepo struct{ r *repos }

func (d dispatchRepo) Create(_ context.Context, item *entity.DispatchItem) error {
	return d.r.do(func(st *state) error {
		if _, ok := st.dispatch[item.ID]; ok {
			return fmt.Errorf("insert dispatch: id duplicado %s", item.ID)
		}
		touch(&item.CreatedAt)
		touch(&item.UpdatedAt)
		st.dispatch[item.ID] = copyItem(*item)
		st.dispatchOrder = append(st.dispatchOrder, item.ID)
		return nil
	})
}

func (d dispatchRepo) GetByID(_ context.Context, id string) (*entity.DispatchItem, error) {
	var out *entity.DispatchItem
	err := d.r.do(func(st *state) error {
		if v, ok := st.dispatch[id]; ok {
			c := copyItem(v)
			out = &c
		}
		return nil
	})
	return out, err
}

func (d dispatchRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.DispatchItem, error) {
	var list []*entity.DispatchItem
	err := d.r.do(func(st *state) error {
		for _, id := range st.dispatchOrder {
			v := st.dispatch[id]
			if v.OrderID == orderID {
				c := copyItem(v)
				list = append(list, &c)
			}
		}
		return nil
	})
	return list, err
}

func (d dispatchRepo) SetDeducted(_ context.Context, item *entity.DispatchItem) error {
	return d.r.do(func(st *state) error {
		cur, ok := st.dispatch[item.ID]
		if !ok {
			return fmt.Errorf("update dispatch: ítem %s no existe", item.ID)
		}
		cur.StockDeducted = item.StockDeducted
		cur.ReturnedAt = item.ReturnedAt
		cur.UpdatedAt = item.UpdatedAt
		st.dispatch[item.ID] = copyItem(cur)
		return nil
	})
}

func (d dispatchRepo) CountDeducted(_ context.Context, orderID string) (int, error) {
	n := 0
	err := d.r.do(func(st *state) error {
		for _, v := range st.dispatch {
			if v.OrderID == orderID && v.StockDeducted {
				n++
			}
		}
		return nil
	})
	return n, err
}

type ledgerRepo struct{ r *repos }

func (l ledgerRepo) Append(_ context.Context, entry *entity.StockLedgerEntry) error {
	return l.r.do(func(st *state) error {
		touch(&entry.CreatedAt)
		st.ledger = append(st.ledger, *entry)
		return nil
	})
}

func (l ledgerRepo) ListByItem(_ context.Context, companyID string, class entity.ItemClass, itemCode string, limit int) ([]*entity.StockLedgerEntry, error) {
	var list []*entity.StockLedgerEntry
	err := l.r.do(func(st *state) error {
		for i := len(st.ledger) - 1; i >= 0; i-- {
			e := st.ledger[i]
			if e.CompanyID != companyID || e.ItemClass != class || e.ItemCode != itemCode {
				continue
			}
			list = append(list, &e)
			if limit > 0 && len(list) >= limit {
				break
			}
		}
		return nil
	})
	return list, err
}

func (l ledgerRepo) NetByItem(_ context.Context, companyID string, class entity.ItemClass) (map[string]decimal.Decimal, error) {
	net := make(map[string]decimal.Decimal)
	err := l.r.do(func(st *state) error {
		for i := range st.ledger {
			e := &st.ledger[i]
			if e.CompanyID != companyID || e.ItemClass != class {
				continue
			}
			net[e.ItemCode] = net[e.ItemCode].Add(e.Signed())
		}
		return nil
	})
	return net, err
}

type summaryRepo struct{ r *repos }

func (s summaryRepo) Get(_ context.Context, companyID string, class entity.ItemClass, itemCode string) (*entity.StockSummary, error) {
	var out *entity.StockSummary
	err := s.r.do(func(st *state) error {
		if v, ok := st.summaries[summaryKey{companyID, class, itemCode}]; ok {
			c := copySummary(v)
			out = &c
		}
		return nil
	})
	return out, err
}

func (s summaryRepo) GetForUpdate(ctx context.Context, companyID string, class entity.ItemClass, itemCode string) (*entity.StockSummary, error) {
	out, err := s.Get(ctx, companyID, class, itemCode)
	if err != nil || out != nil {
		return out, err
	}
	return &entity.StockSummary{
		CompanyID: companyID,
		ItemClass: class,
		ItemCode:  itemCode,
		Total:     decimal.Zero,
		Locations: map[string]decimal.Decimal{},
	}, nil
}

func (s summaryRepo) Upsert(_ context.Context, summary *entity.StockSummary) error {
	return s.r.do(func(st *state) error {
		touch(&summary.UpdatedAt)
		st.summaries[summaryKey{summary.CompanyID, summary.ItemClass, summary.ItemCode}] = copySummary(*summary)
		return nil
	})
}

func (s summaryRepo) List(_ context.Context, companyID string, class entity.ItemClass) ([]*entity.StockSummary, error) {
	var list []*entity.StockSummary
	err := s.r.do(func(st *state) error {
		for k, v := range st.summaries {
			if k.companyID == companyID && k.class == class {
				c := copySummary(v)
				list = append(list, &c)
			}
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ItemCode < list[j].ItemCode })
	return list, err
}

type returnRepo struct{ r *repos }

func (rr returnRepo) Create(_ context.Context, record *entity.ReturnRecord) error {
	return rr.r.do(func(st *state) error {
		touch(&record.CreatedAt)
		st.returns = append(st.returns, *record)
		return nil
	})
}

func (rr returnRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.ReturnRecord, error) {
	var list []*entity.ReturnRecord
	err := rr.r.do(func(st *state) error {
		for _, rec := range st.returns {
			if rec.OrderID == orderID {
				c := rec
				list = append(list, &c)
			}
		}
		return nil
	})
	return list, err
}
