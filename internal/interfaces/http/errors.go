package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-tracker/internal/application/dto"
	"github.com/jhoicas/stock-tracker/internal/domain"
)

// errorMapping tipo de error de dominio -> status HTTP y código estable para el cliente.
// El orden importa: se devuelve la primera coincidencia con errors.Is.
var errorMapping = []struct {
	kind   error
	status int
	code   string
}{
	{domain.ErrTransient, fiber.StatusServiceUnavailable, "TRANSIENT"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrReadOnlyField, fiber.StatusBadRequest, "READ_ONLY_FIELD"},
	{domain.ErrInvalidTransactionType, fiber.StatusBadRequest, "INVALID_TRANSACTION_TYPE"},
	{domain.ErrEmptyLineItems, fiber.StatusBadRequest, "EMPTY_LINE_ITEMS"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrInvalidUnitPrice, fiber.StatusBadRequest, "INVALID_UNIT_PRICE"},
	{domain.ErrDuplicateLineItem, fiber.StatusBadRequest, "DUPLICATE_LINE_ITEM"},
	{domain.ErrProductNotFound, fiber.StatusBadRequest, "PRODUCT_NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
}

// writeError traduce err a status + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.kind) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}
