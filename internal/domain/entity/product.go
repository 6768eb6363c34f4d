package entity

import "time"

// Valores por defecto de los umbrales de un producto.
const (
	DefaultMinStock int64 = 0
	DefaultMaxStock int64 = 1000

	MaxNameLength = 100
	MaxSKULength  = 50
)

// Product representa un producto del inventario.
// CurrentStock es el saldo corriente mantenido por el motor de transacciones; nunca lo escribe un cliente.
type Product struct {
	ID           int64
	Name         string // único
	SKU          string // único
	Description  string
	CurrentStock int64
	MinStock     int64 // umbral de alerta inferior
	MaxStock     int64 // capacidad
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BelowMin indica si el stock actual está por debajo del mínimo.
func (p *Product) BelowMin() bool { return p.CurrentStock < p.MinStock }

// AboveMax indica si el stock actual supera la capacidad.
func (p *Product) AboveMax() bool { return p.CurrentStock > p.MaxStock }
