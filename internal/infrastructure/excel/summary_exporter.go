package excel

import (
	"fmt"

	"github.com/jhoicas/dispatch-api/internal/application/inventory"
	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Stock"

// SummaryExporter genera el libro XLSX de resúmenes de stock:
// Código | Nombre | <una columna por bodega> | Total.
type SummaryExporter struct{}

// NewSummaryExporter construye el exportador.
func NewSummaryExporter() *SummaryExporter {
	return &SummaryExporter{}
}

var _ inventory.SummaryExporter = (*SummaryExporter)(nil)

// ExportSummaries escribe una fila por resumen; las bodegas sin stock quedan en 0.
func (e *SummaryExporter) ExportSummaries(class entity.ItemClass, godowns []string, summaries []*entity.StockSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
	}

	header := make([]interface{}, 0, len(godowns)+3)
	header = append(header, "Código", "Nombre")
	for _, g := range godowns {
		header = append(header, g)
	}
	header = append(header, "Total")
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("excel: encabezado: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return nil, fmt.Errorf("excel: columna: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("excel: estilo encabezado: %w", err)
	}

	for i, s := range summaries {
		row := make([]interface{}, 0, len(header))
		row = append(row, s.ItemCode, s.ItemName)
		for _, g := range godowns {
			row = append(row, s.Location(g).InexactFloat64())
		}
		row = append(row, s.Total.InexactFloat64())

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("excel: celda: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("excel: fila %s: %w", s.ItemCode, err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("Resumen de stock (%s)", class),
		Creator: "dispatch-api",
	}); err != nil {
		return nil, fmt.Errorf("excel: propiedades: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
