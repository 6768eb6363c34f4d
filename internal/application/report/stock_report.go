// Package report arma el informe de stock actual para exportarlo (PDF).
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-tracker/internal/domain/entity"
)

// LevelsSource fuente de la vista de inventario actual (InventoryQueryUseCase).
type LevelsSource interface {
	Levels(ctx context.Context) ([]entity.StockLevel, error)
}

// StockReportGenerator puerto para renderizar el informe.
type StockReportGenerator interface {
	GenerateStockReport(ctx context.Context, report *StockReport) ([]byte, error)
}

// StockReport contenido del informe: filas ordenadas por nombre y resumen por estado.
type StockReport struct {
	Title       string
	GeneratedAt time.Time
	Levels      []entity.StockLevel
	TotalUnits  int64
	LowCount    int
	OverCount   int
}

// StockReportUseCase caso de uso del informe de inventario.
type StockReportUseCase struct {
	source    LevelsSource
	generator StockReportGenerator
	title     string
	now       func() time.Time
}

// NewStockReportUseCase construye el caso de uso. title aparece en la cabecera del documento.
func NewStockReportUseCase(source LevelsSource, generator StockReportGenerator, title string) *StockReportUseCase {
	if title == "" {
		title = "Inventario actual"
	}
	return &StockReportUseCase{source: source, generator: generator, title: title, now: time.Now}
}

// Build arma el informe sin renderizarlo.
func (uc *StockReportUseCase) Build(ctx context.Context) (*StockReport, error) {
	levels, err := uc.source.Levels(ctx)
	if err != nil {
		return nil, err
	}
	rep := &StockReport{Title: uc.title, GeneratedAt: uc.now(), Levels: levels}
	for _, l := range levels {
		rep.TotalUnits += l.CurrentStock
		switch l.Status() {
		case "LOW":
			rep.LowCount++
		case "OVER":
			rep.OverCount++
		}
	}
	return rep, nil
}

// GeneratePDF arma y renderiza el informe.
func (uc *StockReportUseCase) GeneratePDF(ctx context.Context) ([]byte, error) {
	rep, err := uc.Build(ctx)
	if err != nil {
		return nil, err
	}
	out, err := uc.generator.GenerateStockReport(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("generar informe de stock: %w", err)
	}
	return out, nil
}
