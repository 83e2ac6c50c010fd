package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dispatch-api/internal/application/inventory"
	"github.com/jhoicas/dispatch-api/internal/domain"
	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/jhoicas/dispatch-api/internal/infrastructure/memory"
	"github.com/jhoicas/dispatch-api/pkg/logger"
)

// fakeExporter captura lo que recibe el exportador.
type fakeExporter struct {
	class   entity.ItemClass
	godowns []string
	rows    int
}

func (e *fakeExporter) ExportSummaries(class entity.ItemClass, godowns []string, summaries []*entity.StockSummary) ([]byte, error) {
	e.class, e.godowns, e.rows = class, godowns, len(summaries)
	return []byte("xlsx"), nil
}

func setup(t *testing.T, godowns ...string) (*inventory.StockUseCase, *memory.Store, *fakeExporter) {
	t.Helper()
	store := memory.NewStore()
	exp := &fakeExporter{}
	return inventory.NewStockUseCase(store, store.Repos(), exp, godowns, logger.Nop()), store, exp
}

func inward(t *testing.T, uc *inventory.StockUseCase, code, class, godown string, n int64) {
	t.Helper()
	_, err := uc.RegisterInward(context.Background(), inventory.InwardInput{
		CompanyID: "c1", UserID: "u1", ItemCode: code, ItemName: code, ItemClass: class,
		Godown: godown, Quantity: decimal.NewFromInt(n), Reference: "GRN-1",
	})
	require.NoError(t, err)
}

func TestRegisterInward_SumaEnBodegaYLibro(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()
	inward(t, uc, "P1", "product", "Delhi", 4)
	inward(t, uc, "P1", "product", "South", 6)

	s, err := uc.GetSummary(ctx, "c1", "product", "P1")
	require.NoError(t, err)
	assert.True(t, s.Total.Equal(decimal.NewFromInt(10)))
	assert.True(t, s.Locations["Delhi"].Equal(decimal.NewFromInt(4)))
	assert.True(t, s.Locations["South"].Equal(decimal.NewFromInt(6)))

	entries, err := uc.ListLedger(ctx, "c1", "product", "P1", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "IN", entries[0].Direction)
	assert.Equal(t, "South", entries[0].Godown)
	assert.True(t, entries[0].TotalAfter.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "GRN-1", entries[0].Reference)

	_, err = uc.GetSummary(ctx, "otra", "product", "P1")
	assert.ErrorIs(t, err, domain.ErrNotFound, "los resúmenes son por empresa")
}

func TestRegisterInward_Validaciones(t *testing.T) {
	uc, _, _ := setup(t)
	ctx := context.Background()
	for name, in := range map[string]inventory.InwardInput{
		"sin código":        {Godown: "Delhi", Quantity: decimal.NewFromInt(1)},
		"sin bodega":        {ItemCode: "P1", Quantity: decimal.NewFromInt(1)},
		"cantidad cero":     {ItemCode: "P1", Godown: "Delhi"},
		"cantidad negativa": {ItemCode: "P1", Godown: "Delhi", Quantity: decimal.NewFromInt(-2)},
		"clase inválida":    {ItemCode: "P1", Godown: "Delhi", Quantity: decimal.NewFromInt(1), ItemClass: "tool"},
		"cuatro decimales":  {ItemCode: "P1", Godown: "Delhi", Quantity: decimal.RequireFromString("1.0005")},
	} {
		in.CompanyID = "c1"
		_, err := uc.RegisterInward(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

func TestVerifySummaries_DetectaDescuadre(t *testing.T) {
	uc, store, _ := setup(t)
	ctx := context.Background()
	inward(t, uc, "1001", "", "South", 5)
	inward(t, uc, "1002", "", "South", 3)

	report, err := uc.VerifySummaries(ctx, "c1", "spare")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Empty(t, report.Drifts)

	// Alteración directa del resumen sin pasar por el libro.
	s, err := store.Repos().Summaries().Get(ctx, "c1", entity.ItemClassSpare, "1002")
	require.NoError(t, err)
	s.Total = decimal.NewFromInt(7)
	require.NoError(t, store.Repos().Summaries().Upsert(ctx, s))

	report, err = uc.VerifySummaries(ctx, "c1", "spare")
	require.NoError(t, err)
	require.Len(t, report.Drifts, 1)
	d := report.Drifts[0]
	assert.Equal(t, "1002", d.ItemCode)
	assert.True(t, d.Total.Equal(decimal.NewFromInt(7)))
	assert.True(t, d.LocationSum.Equal(decimal.NewFromInt(3)))
	assert.True(t, d.LedgerNet.Equal(decimal.NewFromInt(3)))

	_, err = uc.VerifySummaries(ctx, "c1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la verificación exige clase")
}

func TestExportSummaries_OrdenDeBodegas(t *testing.T) {
	uc, _, exp := setup(t, "South", "Delhi")
	inward(t, uc, "P1", "product", "Delhi", 1)
	inward(t, uc, "P2", "product", "Mumbai", 1)
	inward(t, uc, "P3", "product", "Agra", 1)

	data, err := uc.ExportSummaries(context.Background(), "c1", "product")
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx"), data)
	assert.Equal(t, entity.ItemClassProduct, exp.class)
	assert.Equal(t, []string{"South", "Delhi", "Agra", "Mumbai"}, exp.godowns)
	assert.Equal(t, 3, exp.rows)
}

func TestGodownColumns_SinDuplicados(t *testing.T) {
	summaries := []*entity.StockSummary{
		{Locations: map[string]decimal.Decimal{"Delhi": decimal.Zero, "North": decimal.Zero}},
	}
	assert.Equal(t, []string{"Delhi", "South", "North"}, inventory.GodownColumns([]string{"Delhi", "", "South", "Delhi"}, summaries))
}

func TestParseClass(t *testing.T) {
	c, err := inventory.ParseClass("", "AB-12")
	require.NoError(t, err)
	assert.Equal(t, entity.ItemClassProduct, c)

	c, err = inventory.ParseClass("", "1234")
	require.NoError(t, err)
	assert.Equal(t, entity.ItemClassSpare, c)

	c, err = inventory.ParseClass(" Spare ", "AB-12")
	require.NoError(t, err)
	assert.Equal(t, entity.ItemClassSpare, c, "la clase explícita manda sobre el código")

	_, err = inventory.ParseClass("tool", "AB-12")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
