package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-tracker/internal/application/dto"
	"github.com/jhoicas/stock-tracker/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición: productos bajo su mínimo con la cantidad
// sugerida para volver a su máximo.
type ReplenishmentUseCase struct {
	levelRepo repository.InventoryLevelRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(levelRepo repository.InventoryLevelRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{levelRepo: levelRepo}
}

// GenerateReplenishmentList lee los contadores directamente (sin caché) y prioriza por déficit
// relativo al mínimo; a igual déficit, por nombre.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionResponse, error) {
	levels, err := uc.levelRepo.ListLevels(ctx)
	if err != nil {
		return nil, err
	}

	suggestions := make([]dto.ReplenishmentSuggestionResponse, 0)
	for _, l := range levels {
		if l.CurrentStock >= l.MinStock {
			continue
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionResponse{
			ProductID:         l.ProductID,
			Name:              l.Name,
			SKU:               l.SKU,
			CurrentStock:      l.CurrentStock,
			MinStock:          l.MinStock,
			MaxStock:          l.MaxStock,
			Deficit:           l.MinStock - l.CurrentStock,
			SuggestedOrderQty: l.MaxStock - l.CurrentStock,
		})
	}

	// MinStock > CurrentStock >= 0, el divisor nunca es cero.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ra := float64(a.Deficit) / float64(a.MinStock)
		rb := float64(b.Deficit) / float64(b.MinStock)
		if ra != rb {
			return ra > rb
		}
		return a.Name < b.Name
	})

	// 1 = más urgente
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
