package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-tracker/internal/domain"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
	"github.com/jhoicas/stock-tracker/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, sku, description, current_stock, min_stock, max_stock, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Description,
		&p.CurrentStock, &p.MinStock, &p.MaxStock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto y asigna su ID.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (name, sku, description, current_stock, min_stock, max_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		product.Name, product.SKU, product.Description, product.CurrentStock,
		product.MinStock, product.MaxStock, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID. nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get product", err)
	}
	return p, nil
}

// Update actualiza los datos del registro. current_stock no se toca.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, sku = $3, description = $4, min_stock = $5, max_stock = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.SKU, product.Description,
		product.MinStock, product.MaxStock, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos ordenados por nombre.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY name, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, wrapErr("list products", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list products", err)
	}
	return list, nil
}

// Count total de productos registrados.
func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, wrapErr("count products", err)
	}
	return n, nil
}

// HasDetails indica si algún detalle del ledger referencia el producto.
func (r *ProductRepo) HasDetails(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transaction_details WHERE product_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, wrapErr("product has details", err)
	}
	return exists, nil
}

// Delete elimina un producto. La FK RESTRICT del ledger responde domain.ErrConflict.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el producto %d tiene transacciones registradas", domain.ErrConflict, id)
		}
		return wrapErr("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
