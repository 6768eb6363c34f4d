package memstore

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-tracker/internal/domain"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
	"github.com/jhoicas/stock-tracker/internal/domain/repository"
)

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	ledgerRepo repository.TransactionRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	st := &staging{
		store:   s,
		saved:   make(map[int64]int64),
		nextTx:  s.counter(func() int64 { return s.nextTxID }),
		nextDet: s.counter(func() int64 { return s.nextDetailID }),
	}
	if err := fn(st, st); err != nil {
		return err
	}
	if s.FailCommit != nil {
		return s.FailCommit
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, stock := range st.saved {
		if p, ok := s.products[id]; ok {
			p.CurrentStock = stock
			p.UpdatedAt = s.Now()
		}
	}
	s.transactions = append(s.transactions, st.pending...)
	s.nextTxID = st.nextTx
	s.nextDetailID = st.nextDet
	s.Runs++
	return nil
}

func (s *Store) counter(get func() int64) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get()
}

// staging vista de una transacción en curso: nada se publica en Store hasta el commit.
type staging struct {
	store   *Store
	saved   map[int64]int64
	pending []*entity.Transaction
	nextTx  int64
	nextDet int64
}

func (st *staging) LockForUpdate(_ context.Context, productID int64) (*entity.Product, error) {
	st.store.mu.RLock()
	defer st.store.mu.RUnlock()
	p, ok := st.store.products[productID]
	if !ok {
		return nil, nil
	}
	cp := *p
	if stock, ok := st.saved[productID]; ok {
		cp.CurrentStock = stock
	}
	return &cp, nil
}

func (st *staging) SaveStock(_ context.Context, product *entity.Product) error {
	if product.CurrentStock < 0 {
		// Equivalente al CHECK (current_stock >= 0) de la tabla.
		return domain.ErrConflict
	}
	st.saved[product.ID] = product.CurrentStock
	return nil
}

func (st *staging) Append(_ context.Context, tx *entity.Transaction) error {
	st.store.mu.RLock()
	defer st.store.mu.RUnlock()

	seen := make(map[int64]struct{}, len(tx.Details))
	for _, d := range tx.Details {
		if _, ok := st.store.products[d.ProductID]; !ok {
			return &domain.StockError{Kind: domain.ErrProductNotFound, ProductID: d.ProductID}
		}
		if _, dup := seen[d.ProductID]; dup {
			return &domain.StockError{Kind: domain.ErrDuplicateLineItem, ProductID: d.ProductID}
		}
		seen[d.ProductID] = struct{}{}
	}

	st.nextTx++
	tx.ID = st.nextTx
	tx.Date = st.store.Now()
	for i := range tx.Details {
		st.nextDet++
		tx.Details[i].ID = st.nextDet
		tx.Details[i].TransactionID = tx.ID
	}
	st.pending = append(st.pending, cloneTransaction(tx))
	return nil
}

// GetByID dentro de la tx solo ve lo confirmado más lo propio.
func (st *staging) GetByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	for _, t := range st.pending {
		if t.ID == id {
			return cloneTransaction(t), nil
		}
	}
	return st.store.Ledger().GetByID(ctx, id)
}

func (st *staging) List(ctx context.Context, limit, offset int) ([]*entity.Transaction, error) {
	return st.store.Ledger().List(ctx, limit, offset)
}

func (st *staging) Count(ctx context.Context) (int, error) {
	n, err := st.store.Ledger().Count(ctx)
	return n + len(st.pending), err
}

// Ledger devuelve el repositorio de lectura del ledger confirmado.
func (s *Store) Ledger() repository.TransactionRepository {
	return ledger{s: s}
}

type ledger struct{ s *Store }

func (l ledger) Append(context.Context, *entity.Transaction) error {
	return domain.ErrConflict // el ledger solo se escribe dentro de Run
}

func (l ledger) GetByID(_ context.Context, id int64) (*entity.Transaction, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	for _, t := range l.s.transactions {
		if t.ID == id {
			return l.s.withProductData(cloneTransaction(t)), nil
		}
	}
	return nil, nil
}

func (l ledger) List(_ context.Context, limit, offset int) ([]*entity.Transaction, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	all := append([]*entity.Transaction(nil), l.s.transactions...)
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].ID > all[j].ID
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	out := make([]*entity.Transaction, 0, len(all))
	for _, t := range all {
		out = append(out, l.s.withProductData(cloneTransaction(t)))
	}
	return out, nil
}

func (l ledger) Count(_ context.Context) (int, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return len(l.s.transactions), nil
}

// withProductData completa nombre y SKU actuales (equivalente al JOIN con products).
func (s *Store) withProductData(t *entity.Transaction) *entity.Transaction {
	for i := range t.Details {
		if p, ok := s.products[t.Details[i].ProductID]; ok {
			t.Details[i].ProductName = p.Name
			t.Details[i].ProductSKU = p.SKU
		}
	}
	return t
}

func cloneTransaction(t *entity.Transaction) *entity.Transaction {
	cp := *t
	cp.Details = append([]entity.Detail(nil), t.Details...)
	return &cp
}
