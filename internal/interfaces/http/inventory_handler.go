package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-tracker/internal/application/inventory"
	"github.com/jhoicas/stock-tracker/internal/application/report"
)

// InventoryHandler vista de inventario actual, verificación contra el ledger e informe PDF.
type InventoryHandler struct {
	query         *inventory.InventoryQueryUseCase
	replenishment *inventory.ReplenishmentUseCase
	report        *report.StockReportUseCase
}

// NewInventoryHandler construye el handler. replenishment y report pueden ser nil.
func NewInventoryHandler(
	query *inventory.InventoryQueryUseCase,
	replenishment *inventory.ReplenishmentUseCase,
	report *report.StockReportUseCase,
) *InventoryHandler {
	return &InventoryHandler{query: query, replenishment: replenishment, report: report}
}

// List godoc
// @Summary      Stock actual de todos los productos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockLevelResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	out, err := h.query.ListCurrentStock(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Check godoc
// @Summary      Compara el stock de un producto con el recalculado desde el ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.LedgerBalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/check/{id} [get]
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "INVALID_ID", "id debe ser un entero positivo")
	}
	out, err := h.query.CheckProduct(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Productos cuyo contador difiere del ledger (no corrige)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconciliationResponse
// @Router       /api/inventory/reconciliation [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.query.Reconcile(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Replenishment godoc
// @Summary      Lista de reposición: productos bajo mínimo y pedido sugerido hasta el máximo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReplenishmentSuggestionResponse
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	if h.replenishment == nil {
		return c.SendStatus(fiber.StatusNotFound)
	}
	out, err := h.replenishment.GenerateReplenishmentList(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReportPDF godoc
// @Summary      Informe de stock actual en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/inventory/report.pdf [get]
func (h *InventoryHandler) ReportPDF(c *fiber.Ctx) error {
	if h.report == nil {
		return c.SendStatus(fiber.StatusNotFound)
	}
	out, err := h.report.GeneratePDF(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="inventario.pdf"`)
	return c.Send(out)
}
