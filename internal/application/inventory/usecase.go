package inventory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/dispatch-api/internal/application/dto"
	"github.com/jhoicas/dispatch-api/internal/domain"
	"github.com/jhoicas/dispatch-api/internal/domain/entity"
	"github.com/jhoicas/dispatch-api/internal/domain/stock"
	"github.com/jhoicas/dispatch-api/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	defaultLedgerLimit = 50
	maxLedgerLimit     = 500
)

// StockUseCase entradas de stock, consultas de resúmenes/libro, verificación y exportación.
type StockUseCase struct {
	txRunner TxRunner
	repos    Repos
	exporter SummaryExporter
	godowns  []string
	log      *logger.Logger
}

// NewStockUseCase construye el caso de uso. repos se usa para lecturas fuera de transacción;
// godowns es el orden preferido de bodegas para la exportación.
func NewStockUseCase(txRunner TxRunner, repos Repos, exporter SummaryExporter, godowns []string, log *logger.Logger) *StockUseCase {
	return &StockUseCase{
		txRunner: txRunner,
		repos:    repos,
		exporter: exporter,
		godowns:  godowns,
		log:      log,
	}
}

// InwardInput entrada para registrar una entrada de stock.
type InwardInput struct {
	CompanyID string
	UserID    string
	ItemCode  string
	ItemName  string
	ItemClass string
	Godown    string
	Quantity  decimal.Decimal
	Reference string
}

// RegisterInward suma stock en una bodega y deja la fila IN en el libro, en una sola transacción.
func (uc *StockUseCase) RegisterInward(ctx context.Context, in InwardInput) (*dto.LedgerEntryDTO, error) {
	code := strings.TrimSpace(in.ItemCode)
	godown := strings.TrimSpace(in.Godown)
	if code == "" || godown == "" || !stock.ValidQuantity(in.Quantity) {
		return nil, domain.ErrInvalidInput
	}
	class, err := ParseClass(in.ItemClass, code)
	if err != nil {
		return nil, err
	}

	var entry *entity.StockLedgerEntry
	err = uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		entry, err = PostMovement(ctx, repos, ItemRef{
			CompanyID: in.CompanyID,
			Class:     class,
			Code:      code,
			Name:      in.ItemName,
		}, stock.Movement{
			Direction: entity.DirectionIN,
			Godown:    godown,
			Quantity:  in.Quantity,
			Reference: in.Reference,
			Reason:    "inward",
			CreatedBy: in.UserID,
		}, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("company_id", in.CompanyID).
		Str("item_code", code).
		Str("godown", godown).
		Str("quantity", in.Quantity.String()).
		Msg("entrada de stock registrada")
	return toLedgerEntryDTO(entry), nil
}

// GetSummary devuelve el resumen de un ítem; ErrNotFound si no tiene movimientos.
func (uc *StockUseCase) GetSummary(ctx context.Context, companyID, classParam, itemCode string) (*dto.StockSummaryDTO, error) {
	class, err := ParseClass(classParam, itemCode)
	if err != nil {
		return nil, err
	}
	s, err := uc.repos.Summaries().Get(ctx, companyID, class, itemCode)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return toSummaryDTO(s), nil
}

// ListSummaries lista los resúmenes de una clase.
func (uc *StockUseCase) ListSummaries(ctx context.Context, companyID, classParam string) ([]dto.StockSummaryDTO, error) {
	class, err := RequireClass(classParam)
	if err != nil {
		return nil, err
	}
	list, err := uc.repos.Summaries().List(ctx, companyID, class)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockSummaryDTO, 0, len(list))
	for _, s := range list {
		out = append(out, *toSummaryDTO(s))
	}
	return out, nil
}

// ListLedger devuelve los últimos movimientos de un ítem (más reciente primero).
func (uc *StockUseCase) ListLedger(ctx context.Context, companyID, classParam, itemCode string, limit int) ([]dto.LedgerEntryDTO, error) {
	class, err := ParseClass(classParam, itemCode)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultLedgerLimit
	}
	if limit > maxLedgerLimit {
		limit = maxLedgerLimit
	}
	entries, err := uc.repos.Ledger().ListByItem(ctx, companyID, class, itemCode, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, *toLedgerEntryDTO(e))
	}
	return out, nil
}

// VerifySummaries compara, para cada resumen de la clase, el total contra la suma de
// bodegas y contra el neto del libro. Los ítems con movimientos pero sin resumen también
// se reportan.
func (uc *StockUseCase) VerifySummaries(ctx context.Context, companyID, classParam string) (*dto.ReconciliationReportDTO, error) {
	class, err := RequireClass(classParam)
	if err != nil {
		return nil, err
	}
	summaries, err := uc.repos.Summaries().List(ctx, companyID, class)
	if err != nil {
		return nil, err
	}
	net, err := uc.repos.Ledger().NetByItem(ctx, companyID, class)
	if err != nil {
		return nil, err
	}

	report := &dto.ReconciliationReportDTO{ItemClass: class.String(), Drifts: []dto.DriftDTO{}}
	seen := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		seen[s.ItemCode] = true
		d := stock.Check(s, net[s.ItemCode])
		report.Checked++
		if !d.Consistent() {
			report.Drifts = append(report.Drifts, dto.DriftDTO{
				ItemCode:    s.ItemCode,
				Total:       d.Total,
				LocationSum: d.LocationSum,
				LedgerNet:   d.LedgerNet,
			})
		}
	}
	for code, n := range net {
		if seen[code] || n.IsZero() {
			continue
		}
		report.Checked++
		report.Drifts = append(report.Drifts, dto.DriftDTO{
			ItemCode:    code,
			Total:       decimal.Zero,
			LocationSum: decimal.Zero,
			LedgerNet:   n,
		})
	}
	sort.Slice(report.Drifts, func(i, j int) bool {
		return report.Drifts[i].ItemCode < report.Drifts[j].ItemCode
	})

	if len(report.Drifts) > 0 {
		uc.log.Warn().
			Str("company_id", companyID).
			Str("item_class", class.String()).
			Int("drifts", len(report.Drifts)).
			Msg("resúmenes de stock descuadrados")
	}
	return report, nil
}

// ExportSummaries genera el XLSX de resúmenes de una clase. Las bodegas configuradas van
// primero; las demás se agregan en orden alfabético.
func (uc *StockUseCase) ExportSummaries(ctx context.Context, companyID, classParam string) ([]byte, error) {
	class, err := RequireClass(classParam)
	if err != nil {
		return nil, err
	}
	list, err := uc.repos.Summaries().List(ctx, companyID, class)
	if err != nil {
		return nil, err
	}
	return uc.exporter.ExportSummaries(class, GodownColumns(uc.godowns, list), list)
}

// GodownColumns devuelve las bodegas configuradas seguidas de las encontradas en los resúmenes.
func GodownColumns(configured []string, summaries []*entity.StockSummary) []string {
	cols := make([]string, 0, len(configured))
	known := make(map[string]bool)
	for _, g := range configured {
		if g == "" || known[g] {
			continue
		}
		known[g] = true
		cols = append(cols, g)
	}
	var extra []string
	for _, s := range summaries {
		for g := range s.Locations {
			if !known[g] {
				known[g] = true
				extra = append(extra, g)
			}
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

// ParseClass interpreta la clase recibida; vacía = se deduce del código.
func ParseClass(raw, itemCode string) (entity.ItemClass, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return stock.ClassifyItemCode(itemCode), nil
	}
	return RequireClass(raw)
}

// RequireClass exige una clase explícita válida.
func RequireClass(raw string) (entity.ItemClass, error) {
	c := entity.ItemClass(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", domain.ErrInvalidInput
	}
	return c, nil
}

func toSummaryDTO(s *entity.StockSummary) *dto.StockSummaryDTO {
	locations := make(map[string]decimal.Decimal, len(s.Locations))
	for g, q := range s.Locations {
		locations[g] = q
	}
	return &dto.StockSummaryDTO{
		ItemCode:  s.ItemCode,
		ItemName:  s.ItemName,
		ItemClass: s.ItemClass.String(),
		Total:     s.Total,
		Locations: locations,
		UpdatedAt: s.UpdatedAt,
	}
}

func toLedgerEntryDTO(e *entity.StockLedgerEntry) *dto.LedgerEntryDTO {
	return &dto.LedgerEntryDTO{
		ID:            e.ID,
		Direction:     e.Direction,
		Godown:        e.Godown,
		Quantity:      e.Quantity,
		LocationAfter: e.LocationAfter,
		TotalAfter:    e.TotalAfter,
		Reference:     e.Reference,
		Reason:        e.Reason,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
	}
}
