package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrReadOnlyField     = errors.New("campo de solo lectura")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Errores del motor de transacciones de stock.
	ErrEmptyLineItems         = errors.New("la transacción no tiene líneas")
	ErrInvalidQuantity        = errors.New("cantidad inválida")
	ErrInvalidUnitPrice       = errors.New("precio unitario inválido")
	ErrDuplicateLineItem      = errors.New("producto repetido en la transacción")
	ErrProductNotFound        = errors.New("producto no encontrado")
	ErrInvalidTransactionType = errors.New("tipo de transacción inválido")

	// ErrTransient fallo de infraestructura (lock timeout, BD no disponible). El caller puede reintentar.
	ErrTransient = errors.New("fallo transitorio de almacenamiento")
)

// StockError describe un rechazo del motor asociado a una línea concreta.
// Unwrap devuelve el tipo (ErrInsufficientStock, ErrProductNotFound, ...) para usar errors.Is.
type StockError struct {
	Kind        error
	ProductID   int64
	ProductName string
	Available   int64
	Requested   int64
}

func (e *StockError) Error() string {
	switch e.Kind {
	case ErrInsufficientStock:
		return fmt.Sprintf("stock insuficiente para el producto '%s' (id %d): disponible %d, solicitado %d",
			e.ProductName, e.ProductID, e.Available, e.Requested)
	case ErrProductNotFound:
		return fmt.Sprintf("el producto con id %d no existe", e.ProductID)
	case ErrInvalidQuantity:
		if e.Available > 0 {
			return fmt.Sprintf("cantidad inválida %d para el producto '%s' (id %d): el stock actual %d no admite esa entrada",
				e.Requested, e.ProductName, e.ProductID, e.Available)
		}
		return fmt.Sprintf("cantidad inválida %d para el producto %d: debe ser mayor que cero y no superar el máximo por línea",
			e.Requested, e.ProductID)
	case ErrDuplicateLineItem:
		return fmt.Sprintf("el producto %d aparece más de una vez en la transacción", e.ProductID)
	case ErrInvalidUnitPrice:
		return fmt.Sprintf("precio unitario inválido para el producto %d", e.ProductID)
	default:
		return fmt.Sprintf("%v (producto %d)", e.Kind, e.ProductID)
	}
}

func (e *StockError) Unwrap() error { return e.Kind }

// IsValidation indica si err es un rechazo de negocio (no reintentable).
func IsValidation(err error) bool {
	for _, kind := range []error{
		ErrInvalidInput, ErrDuplicate, ErrNotFound, ErrConflict, ErrReadOnlyField,
		ErrInsufficientStock, ErrEmptyLineItems, ErrInvalidQuantity, ErrInvalidUnitPrice,
		ErrDuplicateLineItem, ErrProductNotFound, ErrInvalidTransactionType,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
