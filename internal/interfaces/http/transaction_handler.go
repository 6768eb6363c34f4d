package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-tracker/internal/application/dto"
	"github.com/jhoicas/stock-tracker/internal/application/inventory"
	"github.com/jhoicas/stock-tracker/internal/application/usecase"
)

// TransactionHandler alta (vía motor de inventario) y consulta del ledger.
type TransactionHandler struct {
	apply  *inventory.ApplyTransactionUseCase
	ledger *usecase.TransactionUseCase
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(apply *inventory.ApplyTransactionUseCase, ledger *usecase.TransactionUseCase) *TransactionHandler {
	return &TransactionHandler{apply: apply, ledger: ledger}
}

// Apply godoc
// @Summary      Registrar transacción de stock (IN/OUT, todo o nada)
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyTransactionRequest  true  "Cabecera y líneas"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK"
// @Failure      503   {object}  dto.ErrorResponse  "TRANSIENT, se puede reintentar"
// @Router       /api/transactions [post]
func (h *TransactionHandler) Apply(c *fiber.Ctx) error {
	var in dto.ApplyTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.apply.ApplyFromRequest(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener transacción con sus detalles
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "INVALID_ID", "id debe ser un entero positivo")
	}
	out, err := h.ledger.GetByID(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar transacciones (más reciente primero)
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.TransactionListResponse
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	out, err := h.ledger.List(c.Context(), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
