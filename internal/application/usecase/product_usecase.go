package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-tracker/internal/application/dto"
	"github.com/jhoicas/stock-tracker/internal/domain"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
	"github.com/jhoicas/stock-tracker/internal/domain/repository"
)

// LevelsInvalidator invalida la vista de inventario cacheada (nombre, umbrales y estado salen del registro).
type LevelsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ProductUseCase registro de productos (CRUD). CurrentStock se maneja solo vía transacciones.
type ProductUseCase struct {
	repo  repository.ProductRepository
	cache LevelsInvalidator
	log   zerolog.Logger
}

// NewProductUseCase construye el caso de uso. cache puede ser nil.
func NewProductUseCase(repo repository.ProductRepository, cache LevelsInvalidator, log zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{repo: repo, cache: cache, log: log}
}

// invalidateLevels tras un cambio confirmado en el registro. Un fallo solo se registra: el TTL acota la obsolescencia.
func (uc *ProductUseCase) invalidateLevels(ctx context.Context, productID int64) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		uc.log.Warn().Err(err).Int64("product_id", productID).Msg("invalidar caché de inventario")
	}
}

// Create crea un producto con stock 0. Nombre o SKU repetido -> domain.ErrDuplicate.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	minStock, maxStock := entity.DefaultMinStock, entity.DefaultMaxStock
	if in.MinStock != nil {
		minStock = *in.MinStock
	}
	if in.MaxStock != nil {
		maxStock = *in.MaxStock
	}
	now := time.Now()
	product := &entity.Product{
		Name:         strings.TrimSpace(in.Name),
		SKU:          strings.TrimSpace(in.SKU),
		Description:  in.Description,
		CurrentStock: 0,
		MinStock:     minStock,
		MaxStock:     maxStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.invalidateLevels(ctx, product.ID)
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza los campos informados. Escribir current_stock -> domain.ErrReadOnlyField.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.CurrentStock != nil {
		return nil, fmt.Errorf("%w: current_stock lo mantienen las transacciones", domain.ErrReadOnlyField)
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.SKU != nil {
		product.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
	if in.MaxStock != nil {
		product.MaxStock = *in.MaxStock
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.invalidateLevels(ctx, product.ID)
	return toProductResponse(product), nil
}

// List lista productos ordenados por nombre con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Delete elimina un producto. Si algún detalle del ledger lo referencia -> domain.ErrConflict.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	referenced, err := uc.repo.HasDetails(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return fmt.Errorf("%w: el producto %d tiene transacciones registradas", domain.ErrConflict, id)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidateLevels(ctx, id)
	return nil
}

func validateProduct(p *entity.Product) error {
	switch {
	case p.Name == "" || p.SKU == "":
		return fmt.Errorf("%w: name y sku son requeridos", domain.ErrInvalidInput)
	case len(p.Name) > entity.MaxNameLength:
		return fmt.Errorf("%w: name supera %d caracteres", domain.ErrInvalidInput, entity.MaxNameLength)
	case len(p.SKU) > entity.MaxSKULength:
		return fmt.Errorf("%w: sku supera %d caracteres", domain.ErrInvalidInput, entity.MaxSKULength)
	case p.MinStock < 0:
		return fmt.Errorf("%w: min_stock no puede ser negativo", domain.ErrInvalidInput)
	case p.MaxStock < p.MinStock:
		return fmt.Errorf("%w: max_stock debe ser mayor o igual que min_stock", domain.ErrInvalidInput)
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		Description:  p.Description,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		MaxStock:     p.MaxStock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
