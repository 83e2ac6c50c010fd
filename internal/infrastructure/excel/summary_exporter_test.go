package excel

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/dispatch-api/internal/domain/entity"
)

func TestExportSummaries_ColumnasPorBodega(t *testing.T) {
	summaries := []*entity.StockSummary{
		{
			ItemCode: "P1",
			ItemName: "Purificador",
			Total:    decimal.NewFromInt(5),
			Locations: map[string]decimal.Decimal{
				"Delhi": decimal.NewFromInt(3),
				"South": decimal.NewFromInt(2),
			},
		},
		{
			ItemCode:  "P2",
			ItemName:  "Filtro",
			Total:     decimal.NewFromInt(4),
			Locations: map[string]decimal.Decimal{"North": decimal.NewFromInt(4)},
		},
	}

	data, err := NewSummaryExporter().ExportSummaries(entity.ItemClassProduct, []string{"Delhi", "South", "North"}, summaries)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, sheetName, f.GetSheetName(0))
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Código", "Nombre", "Delhi", "South", "North", "Total"}, rows[0])
	assert.Equal(t, []string{"P1", "Purificador", "3", "2", "0", "5"}, rows[1])
	assert.Equal(t, []string{"P2", "Filtro", "0", "0", "4", "4"}, rows[2])
}

func TestExportSummaries_SinFilas(t *testing.T) {
	data, err := NewSummaryExporter().ExportSummaries(entity.ItemClassSpare, nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Código", "Nombre", "Total"}, rows[0])
}
