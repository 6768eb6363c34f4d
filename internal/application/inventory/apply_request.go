package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-tracker/internal/application/dto"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
)

// ApplyFromRequest adapta el request HTTP al motor Apply(ctx, ApplyInput) y mapea la salida.
func (uc *ApplyTransactionUseCase) ApplyFromRequest(ctx context.Context, in dto.ApplyTransactionRequest) (*dto.TransactionResponse, error) {
	input := ApplyInput{
		Type:      entity.TransactionType(strings.ToUpper(strings.TrimSpace(in.Type))),
		Reference: strings.TrimSpace(in.Reference),
		Notes:     in.Notes,
		Lines:     make([]LineItem, 0, len(in.Details)),
	}
	for _, d := range in.Details {
		input.Lines = append(input.Lines, LineItem{
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
		})
	}
	res, err := uc.Apply(ctx, input)
	if err != nil {
		return nil, err
	}
	return dto.ToTransactionResponse(res.Transaction, res.Warnings), nil
}
