package dto

import "time"

// CreateProductRequest entrada para crear un producto. CurrentStock siempre inicia en 0.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	SKU         string `json:"sku" validate:"required,min=1,max=50"`
	Description string `json:"description"`
	MinStock    *int64 `json:"min_stock"` // nil = 0
	MaxStock    *int64 `json:"max_stock"` // nil = 1000
}

// UpdateProductRequest entrada para actualizar un producto.
// CurrentStock solo existe para detectar el intento de escribirlo y rechazarlo.
type UpdateProductRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	SKU          *string `json:"sku" validate:"omitempty,min=1,max=50"`
	Description  *string `json:"description"`
	MinStock     *int64  `json:"min_stock"`
	MaxStock     *int64  `json:"max_stock"`
	CurrentStock *int64  `json:"current_stock,omitempty"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Description  string    `json:"description"`
	CurrentStock int64     `json:"current_stock"`
	MinStock     int64     `json:"min_stock"`
	MaxStock     int64     `json:"max_stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
