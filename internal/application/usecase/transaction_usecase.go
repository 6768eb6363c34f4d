package usecase

import (
	"context"

	"github.com/jhoicas/stock-tracker/internal/application/dto"
	"github.com/jhoicas/stock-tracker/internal/domain"
	"github.com/jhoicas/stock-tracker/internal/domain/repository"
)

// TransactionUseCase lectura del ledger. Las altas pasan siempre por el motor de inventario.
type TransactionUseCase struct {
	repo repository.TransactionRepository
}

// NewTransactionUseCase construye el caso de uso.
func NewTransactionUseCase(repo repository.TransactionRepository) *TransactionUseCase {
	return &TransactionUseCase{repo: repo}
}

// GetByID obtiene una transacción con sus detalles.
func (uc *TransactionUseCase) GetByID(ctx context.Context, id int64) (*dto.TransactionResponse, error) {
	tx, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, domain.ErrNotFound
	}
	return dto.ToTransactionResponse(tx, nil), nil
}

// List lista el ledger, la transacción más reciente primero.
func (uc *TransactionUseCase) List(ctx context.Context, limit, offset int) (*dto.TransactionListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *dto.ToTransactionResponse(t, nil))
	}
	return &dto.TransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}
