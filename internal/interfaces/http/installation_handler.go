package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dispatch-api/internal/application/dispatch"
	"github.com/jhoicas/dispatch-api/internal/application/dto"
	"github.com/jhoicas/dispatch-api/pkg/logger"
)

// InstallationHandler acciones de instalación y devolución sobre órdenes (protegido).
type InstallationHandler struct {
	uc  *dispatch.ReconciliationUseCase
	log *logger.Logger
}

// NewInstallationHandler construye el handler.
func NewInstallationHandler(uc *dispatch.ReconciliationUseCase, log *logger.Logger) *InstallationHandler {
	return &InstallationHandler{uc: uc, log: log}
}

// Action godoc
// @Summary      Aplicar acción de instalación o devolución
// @Description  INSTALLED marca la orden como instalada. RETURNED revierte el stock de todos los
// @Description  ítems despachados. PARTIAL_RETURN revierte solo los ítems listados y reporta los omitidos.
// @Tags         installation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                         false  "Clave de idempotencia (24h)"
// @Param        body             body    dto.InstallationActionRequest  true   "order_id, action, items"
// @Success      200  {object}  dto.ActionResultDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/installation/action [post]
func (h *InstallationHandler) Action(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.InstallationActionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.uc.ApplyAction(c.Context(), dispatch.ActionInput{
		CompanyID: companyID,
		UserID:    userID,
		OrderID:   in.OrderID,
		Action:    in.Action,
		Reason:    in.Reason,
		Items:     in.Items,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}
