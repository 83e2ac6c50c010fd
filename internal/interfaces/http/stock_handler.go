package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dispatch-api/internal/application/dto"
	"github.com/jhoicas/dispatch-api/internal/application/inventory"
	"github.com/jhoicas/dispatch-api/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StockHandler entradas, resúmenes, libro y verificación de stock (protegido).
type StockHandler struct {
	uc  *inventory.StockUseCase
	log *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{uc: uc, log: log}
}

// RegisterInward godoc
// @Summary      Registrar entrada de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterInwardRequest  true  "item_code, item_name, item_class, godown, quantity, reference"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/stock/inward [post]
func (h *StockHandler) RegisterInward(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.RegisterInwardRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	entry, err := h.uc.RegisterInward(c.Context(), inventory.InwardInput{
		CompanyID: companyID,
		UserID:    userID,
		ItemCode:  in.ItemCode,
		ItemName:  in.ItemName,
		ItemClass: in.ItemClass,
		Godown:    in.Godown,
		Quantity:  in.Quantity,
		Reference: in.Reference,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "entrada registrada", "entry": entry})
}

// ListSummaries godoc
// @Summary      Resúmenes de stock de una clase
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        class  query  string  true  "product | spare"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/stock/summary [get]
func (h *StockHandler) ListSummaries(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	list, err := h.uc.ListSummaries(c.Context(), companyID, c.Query("class"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "summaries": list})
}

// GetSummary godoc
// @Summary      Resumen de stock de un ítem
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        code   path   string  true   "Código del ítem"
// @Param        class  query  string  false  "product | spare (vacío = se deduce del código)"
// @Success      200    {object}  dto.StockSummaryDTO
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/stock/summary/{code} [get]
func (h *StockHandler) GetSummary(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetSummary(c.Context(), companyID, c.Query("class"), c.Params("code"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListLedger godoc
// @Summary      Movimientos de stock de un ítem
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        code   path   string  true   "Código del ítem"
// @Param        class  query  string  false  "product | spare (vacío = se deduce del código)"
// @Param        limit  query  int     false  "Máximo de filas (default 50, máx 500)"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/stock/ledger/{code} [get]
func (h *StockHandler) ListLedger(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	code := c.Params("code")
	list, err := h.uc.ListLedger(c.Context(), companyID, c.Query("class"), code, c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"item_code": code, "total": len(list), "entries": list})
}

// Reconciliation godoc
// @Summary      Verificar resúmenes contra el libro
// @Description  Reporta los ítems cuyo total no coincide con la suma de bodegas o con el neto del libro.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        class  query  string  true  "product | spare"
// @Success      200    {object}  dto.ReconciliationReportDTO
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/stock/reconciliation [get]
func (h *StockHandler) Reconciliation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	report, err := h.uc.VerifySummaries(c.Context(), companyID, c.Query("class"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(report)
}

// Export godoc
// @Summary      Exportar resúmenes de stock a XLSX
// @Tags         stock
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        class  query  string  true  "product | spare"
// @Success      200    {file}    file
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/stock/summary/export [get]
func (h *StockHandler) Export(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	class := c.Query("class")
	data, err := h.uc.ExportSummaries(c.Context(), companyID, class)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="stock_%s.xlsx"`, class))
	return c.Send(data)
}
