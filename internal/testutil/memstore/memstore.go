// Package memstore implementa los puertos de persistencia en memoria para pruebas unitarias.
// Run serializa las transacciones con un mutex global y confirma con copy-on-write:
// si fn devuelve error, nada de lo hecho dentro de la transacción es visible.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/stock-tracker/internal/domain"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
	"github.com/jhoicas/stock-tracker/internal/domain/repository"
)

var (
	_ repository.ProductRepository        = (*Store)(nil)
	_ repository.InventoryLevelRepository = (*Store)(nil)
)

// Store estado compartido en memoria.
type Store struct {
	txMu sync.Mutex // una transacción a la vez
	mu   sync.RWMutex

	products     map[int64]*entity.Product
	transactions []*entity.Transaction

	nextProductID int64
	nextTxID      int64
	nextDetailID  int64

	// FailCommit si no es nil, Run lo devuelve en lugar de confirmar (simula fallo de infraestructura).
	FailCommit error
	// Runs cuenta las transacciones confirmadas.
	Runs int

	Now func() time.Time
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		products: make(map[int64]*entity.Product),
		Now:      time.Now,
	}
}

// AddProduct atajo de pruebas: registra un producto con el stock indicado y devuelve su ID.
// No genera movimientos en el ledger.
func (s *Store) AddProduct(name, sku string, stock, minStock, maxStock int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProductID++
	now := s.Now()
	s.products[s.nextProductID] = &entity.Product{
		ID:           s.nextProductID,
		Name:         name,
		SKU:          sku,
		CurrentStock: stock,
		MinStock:     minStock,
		MaxStock:     maxStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.nextProductID
}

// SetStock sobrescribe el contador sin pasar por el motor (para provocar desajustes).
func (s *Store) SetStock(id, stock int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		p.CurrentStock = stock
	}
}

// Stock lectura directa del contador. -1 si el producto no existe.
func (s *Store) Stock(id int64) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.products[id]; ok {
		return p.CurrentStock
	}
	return -1
}

// TransactionCount número de transacciones confirmadas en el ledger.
func (s *Store) TransactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}

// ── ProductRepository ────────────────────────────────────────────────────────

func (s *Store) Create(_ context.Context, product *entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflictsLocked(product) {
		return domain.ErrDuplicate
	}
	s.nextProductID++
	product.ID = s.nextProductID
	cp := *product
	s.products[cp.ID] = &cp
	return nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *Store) Update(_ context.Context, product *entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.products[product.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if s.conflictsLocked(product) {
		return domain.ErrDuplicate
	}
	current.Name = product.Name
	current.SKU = product.SKU
	current.Description = product.Description
	current.MinStock = product.MinStock
	current.MaxStock = product.MaxStock
	current.UpdatedAt = product.UpdatedAt
	return nil
}

func (s *Store) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.sortedLocked()
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	out := make([]*entity.Product, 0, len(all))
	for _, p := range all {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products), nil
}

func (s *Store) HasDetails(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.referencedLocked(id), nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return domain.ErrNotFound
	}
	if s.referencedLocked(id) {
		return fmt.Errorf("%w: producto %d referenciado", domain.ErrConflict, id)
	}
	delete(s.products, id)
	return nil
}

func (s *Store) conflictsLocked(product *entity.Product) bool {
	for _, p := range s.products {
		if p.ID == product.ID {
			continue
		}
		if p.Name == product.Name || p.SKU == product.SKU {
			return true
		}
	}
	return false
}

func (s *Store) referencedLocked(productID int64) bool {
	for _, t := range s.transactions {
		for _, d := range t.Details {
			if d.ProductID == productID {
				return true
			}
		}
	}
	return false
}

func (s *Store) sortedLocked() []*entity.Product {
	all := make([]*entity.Product, 0, len(s.products))
	for _, p := range s.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	return all
}

// ── InventoryLevelRepository ─────────────────────────────────────────────────

func (s *Store) ListLevels(_ context.Context) ([]entity.StockLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.StockLevel
	for _, p := range s.sortedLocked() {
		out = append(out, entity.StockLevel{
			ProductID:    p.ID,
			Name:         p.Name,
			SKU:          p.SKU,
			CurrentStock: p.CurrentStock,
			MinStock:     p.MinStock,
			MaxStock:     p.MaxStock,
		})
	}
	return out, nil
}

func (s *Store) LedgerBalance(_ context.Context, productID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balanceLocked(productID), nil
}

func (s *Store) ListDrifts(_ context.Context) ([]entity.StockDrift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.StockDrift
	for _, p := range s.sortedLocked() {
		if ledger := s.balanceLocked(p.ID); ledger != p.CurrentStock {
			out = append(out, entity.StockDrift{
				ProductID:   p.ID,
				Name:        p.Name,
				SKU:         p.SKU,
				StoredStock: p.CurrentStock,
				LedgerStock: ledger,
			})
		}
	}
	return out, nil
}

func (s *Store) balanceLocked(productID int64) int64 {
	var balance int64
	for _, t := range s.transactions {
		for _, d := range t.Details {
			if d.ProductID != productID {
				continue
			}
			if t.Type == entity.TransactionTypeIN {
				balance += d.Quantity
			} else {
				balance -= d.Quantity
			}
		}
	}
	return balance
}
