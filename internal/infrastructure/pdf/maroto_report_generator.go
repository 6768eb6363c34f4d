// Package pdf renderiza el informe de stock actual con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título                    │  Fecha de generación    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: productos / unidades / bajo mínimo / sobre máximo  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | SKU | Stock | Mín | Máx | Estado          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/stock-tracker/internal/application/report"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorLow     = &props.Color{Red: 180, Green: 30, Blue: 30}
	colorOver    = &props.Color{Red: 200, Green: 120, Blue: 0}
)

var _ report.StockReportGenerator = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa report.StockReportGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateStockReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateStockReport(_ context.Context, rep *report.StockReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(rep.Title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	if len(rep.Levels) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("No hay productos registrados.", props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	for _, r := range levelRows(rep.Levels) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(rep *report.StockReport) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(rep.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 2,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+rep.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 4, Color: colorGray,
			}),
		),
	)
}

func summaryRow(rep *report.StockReport) core.Row {
	cell := func(label, value string, color *props.Color) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Color: color, Top: 5, Align: align.Center}),
		)
	}
	return row.New(14).Add(
		cell("PRODUCTOS", strconv.Itoa(len(rep.Levels)), colorPrimary),
		cell("UNIDADES EN STOCK", formatThousands(rep.TotalUnits), colorPrimary),
		cell("BAJO MÍNIMO", strconv.Itoa(rep.LowCount), colorLow),
		cell("SOBRE MÁXIMO", strconv.Itoa(rep.OverCount), colorOver),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 4, align.Left),
		h("SKU", 2, align.Left),
		h("Stock", 2, align.Right),
		h("Mín.", 1, align.Right),
		h("Máx.", 1, align.Right),
		h("Estado", 2, align.Center),
	)
}

// levelRows una fila por producto; el estado se colorea si está fuera de umbral.
func levelRows(levels []entity.StockLevel) []core.Row {
	result := make([]core.Row, 0, len(levels))
	for _, l := range levels {
		status := l.Status()
		statusProps := props.Text{Size: 8, Align: align.Center, Top: 1, Style: fontstyle.Bold}
		switch status {
		case "LOW":
			statusProps.Color = colorLow
		case "OVER":
			statusProps.Color = colorOver
		default:
			statusProps.Color = colorGray
		}
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(l.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(l.SKU, props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New(formatThousands(l.CurrentStock), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(formatThousands(l.MinStock), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(formatThousands(l.MaxStock), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(status, statusProps)),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatThousands inserta puntos de miles. Ej: 25000 → "25.000".
func formatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
