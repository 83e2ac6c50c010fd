package stock_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dispatch-api/internal/domain"
	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/jhoicas/dispatch-api/internal/domain/stock"
)

func newSummary(locations map[string]int64) *entity.StockSummary {
	s := &entity.StockSummary{
		CompanyID: "c1",
		ItemClass: entity.ItemClassProduct,
		ItemCode:  "P1",
		ItemName:  "Purificador",
		Total:     decimal.Zero,
		Locations: map[string]decimal.Decimal{},
	}
	for g, q := range locations {
		s.Locations[g] = decimal.NewFromInt(q)
		s.Total = s.Total.Add(decimal.NewFromInt(q))
	}
	return s
}

func TestClassifyItemCode(t *testing.T) {
	cases := map[string]entity.ItemClass{
		"P1":     entity.ItemClassProduct,
		"RO-500": entity.ItemClassProduct,
		"12345":  entity.ItemClassSpare,
		"12-34":  entity.ItemClassSpare,
		"":       entity.ItemClassSpare,
	}
	for code, want := range cases {
		assert.Equal(t, want, stock.ClassifyItemCode(code), "código %q", code)
	}
}

func TestResolveClass_PrefiereClaseExplicita(t *testing.T) {
	assert.Equal(t, entity.ItemClassSpare, stock.ResolveClass(entity.ItemClassSpare, "ABC"))
	assert.Equal(t, entity.ItemClassProduct, stock.ResolveClass("", "ABC"))
	assert.Equal(t, entity.ItemClassSpare, stock.ResolveClass("otro", "999"))
}

func TestApply_INSumaBodegaYTotal(t *testing.T) {
	s := newSummary(map[string]int64{"Delhi": 2, "South": 3})
	now := time.Now()

	entry, err := stock.Apply(s, stock.Movement{
		Direction: entity.DirectionIN,
		Godown:    "Delhi",
		Quantity:  decimal.NewFromInt(1),
		Reference: "O1",
	}, now)
	require.NoError(t, err)

	assert.True(t, s.Location("Delhi").Equal(decimal.NewFromInt(3)))
	assert.True(t, s.Total.Equal(decimal.NewFromInt(6)))
	assert.True(t, entry.LocationAfter.Equal(decimal.NewFromInt(3)))
	assert.True(t, entry.TotalAfter.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, "O1", entry.Reference)
	assert.Equal(t, now, s.UpdatedAt)
}

func TestApply_OUTNoPermiteNegativo(t *testing.T) {
	s := newSummary(map[string]int64{"Delhi": 1, "South": 5})

	_, err := stock.Apply(s, stock.Movement{
		Direction: entity.DirectionOUT,
		Godown:    "Delhi",
		Quantity:  decimal.NewFromInt(2),
	}, time.Now())
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// el resumen no debe cambiar
	assert.True(t, s.Location("Delhi").Equal(decimal.NewFromInt(1)))
	assert.True(t, s.Total.Equal(decimal.NewFromInt(6)))
}

func TestApply_BodegaNuevaSeCrea(t *testing.T) {
	s := &entity.StockSummary{ItemCode: "9001", ItemClass: entity.ItemClassSpare, Total: decimal.Zero}

	_, err := stock.Apply(s, stock.Movement{
		Direction: entity.DirectionIN,
		Godown:    "North",
		Quantity:  decimal.NewFromInt(4),
	}, time.Now())
	require.NoError(t, err)
	assert.True(t, s.Location("North").Equal(decimal.NewFromInt(4)))
}

func TestApply_ValidaEntrada(t *testing.T) {
	s := newSummary(map[string]int64{"Delhi": 1})
	for _, mv := range []stock.Movement{
		{Direction: entity.DirectionIN, Godown: "", Quantity: decimal.NewFromInt(1)},
		{Direction: entity.DirectionIN, Godown: "Delhi", Quantity: decimal.Zero},
		{Direction: "MOVE", Godown: "Delhi", Quantity: decimal.NewFromInt(1)},
		{Direction: entity.DirectionIN, Godown: "Delhi", Quantity: decimal.RequireFromString("1.0005")},
		{Direction: entity.DirectionIN, Godown: "Delhi", Quantity: decimal.RequireFromString("0.0004")},
	} {
		_, err := stock.Apply(s, mv, time.Now())
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestValidQuantity_TresDecimales(t *testing.T) {
	assert.True(t, stock.ValidQuantity(decimal.RequireFromString("1.125")))
	assert.True(t, stock.ValidQuantity(decimal.RequireFromString("2.500000")))
	assert.False(t, stock.ValidQuantity(decimal.RequireFromString("1.0005")))
	assert.False(t, stock.ValidQuantity(decimal.RequireFromString("0.0001")))
	assert.False(t, stock.ValidQuantity(decimal.RequireFromString("-1")))
}

func TestCheck_DetectaDescuadre(t *testing.T) {
	s := newSummary(map[string]int64{"Delhi": 2, "South": 3})

	ok := stock.Check(s, decimal.NewFromInt(5))
	assert.True(t, ok.Consistent())

	s.Total = decimal.NewFromInt(7)
	bad := stock.Check(s, decimal.NewFromInt(5))
	assert.False(t, bad.Consistent())
	assert.True(t, bad.LocationSum.Equal(decimal.NewFromInt(5)))
}
