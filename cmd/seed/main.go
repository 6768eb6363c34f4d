// seed vacía el inventario y lo repuebla con datos de demostración.
// Las transacciones pasan por el motor de inventario, así contadores y ledger quedan consistentes.
//
// Uso:
//
//	go run ./cmd/seed
//	go run ./cmd/seed -csv productos.csv [-latin1]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-tracker/internal/application/dto"
	"github.com/jhoicas/stock-tracker/internal/application/inventory"
	"github.com/jhoicas/stock-tracker/internal/application/usecase"
	"github.com/jhoicas/stock-tracker/internal/domain/entity"
	"github.com/jhoicas/stock-tracker/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-tracker/pkg/config"
	"github.com/jhoicas/stock-tracker/pkg/logger"
)

func demoProducts() []dto.CreateProductRequest {
	p := func(name, sku, desc string, minStock, maxStock int64) dto.CreateProductRequest {
		return dto.CreateProductRequest{Name: name, SKU: sku, Description: desc, MinStock: &minStock, MaxStock: &maxStock}
	}
	return []dto.CreateProductRequest{
		p("Laptop Pro 15-inch", "LAP-PRO-15-A", "High-performance laptop for professionals", 10, 100),
		p("Wireless Mouse", "ACC-MOUSE-WL", "Ergonomic wireless mouse with long battery life", 20, 200),
		p("Mechanical Keyboard", "ACC-KEY-MECH", "RGB mechanical keyboard with tactile switches", 5, 50),
		p("External SSD 1TB", "STO-SSD-1TB", "Portable 1TB SSD, USB-C", 15, 150),
		p("Monitor 27-inch 4K", "DIS-MON-27-4K", "UHD display for crisp visuals", 8, 80),
	}
}

type demoLine struct {
	sku   string
	qty   int64
	price string
}

type demoTransaction struct {
	typ       entity.TransactionType
	reference string
	notes     string
	lines     []demoLine
}

var demoTransactions = []demoTransaction{
	{entity.TransactionTypeIN, "PO2023001", "Initial stock arrival from vendor A", []demoLine{
		{"LAP-PRO-15-A", 50, "1200.00"}, {"ACC-MOUSE-WL", 100, "25.00"}, {"ACC-KEY-MECH", 30, "75.00"},
	}},
	{entity.TransactionTypeOUT, "SO2023005", "Sale to corporate client B", []demoLine{
		{"LAP-PRO-15-A", 5, "1300.00"}, {"ACC-MOUSE-WL", 10, "30.00"},
	}},
	{entity.TransactionTypeIN, "PO2023002", "New SSD stock from vendor C", []demoLine{
		{"STO-SSD-1TB", 75, "80.00"},
	}},
	{entity.TransactionTypeIN, "PO2023003", "Monitors arrived", []demoLine{
		{"DIS-MON-27-4K", 20, "350.00"},
	}},
	{entity.TransactionTypeOUT, "SO2023008", "Sale of Monitor to retail customer", []demoLine{
		{"DIS-MON-27-4K", 2, "400.00"},
	}},
}

func main() {
	csvPath := flag.String("csv", "", "CSV de productos (name,sku,description,min_stock,max_stock); sin él se usan los de demo")
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	products := demoProducts()
	if *csvPath != "" {
		f, err := os.Open(*csvPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *csvPath).Msg("abrir CSV")
		}
		products, err = readProductsCSV(f, *latin1)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Str("path", *csvPath).Msg("leer CSV")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.ResetInventory(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("vaciar inventario")
	}
	log.Info().Msg("inventario vaciado")

	productUC := usecase.NewProductUseCase(postgres.NewProductRepository(pool), nil, log.Component("products"))
	engine := inventory.NewApplyTransactionUseCase(
		postgres.NewTxRunner(pool, cfg.DB.LockTimeout), nil, nil, nil, log.Component("inventory"))

	if err := seed(ctx, productUC, engine, products, *csvPath == "", log.Component("seed")); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().Int("products", len(products)).Msg("seed completo")
}

// seed crea los productos y, si withTransactions, aplica las transacciones de demo.
// Una transacción rechazada se registra y no detiene las demás.
func seed(
	ctx context.Context,
	productUC *usecase.ProductUseCase,
	engine *inventory.ApplyTransactionUseCase,
	products []dto.CreateProductRequest,
	withTransactions bool,
	log zerolog.Logger,
) error {
	ids := make(map[string]int64, len(products))
	for _, req := range products {
		p, err := productUC.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("crear producto %s: %w", req.SKU, err)
		}
		ids[p.SKU] = p.ID
		log.Info().Int64("id", p.ID).Str("sku", p.SKU).Int64("min", p.MinStock).Int64("max", p.MaxStock).Msg("producto creado")
	}
	if !withTransactions {
		return nil
	}

	for _, dt := range demoTransactions {
		input := inventory.ApplyInput{Type: dt.typ, Reference: dt.reference, Notes: dt.notes}
		for _, l := range dt.lines {
			input.Lines = append(input.Lines, inventory.LineItem{
				ProductID: ids[l.sku],
				Quantity:  l.qty,
				UnitPrice: decimal.RequireFromString(l.price),
			})
		}
		res, err := engine.Apply(ctx, input)
		if err != nil {
			log.Error().Err(err).Str("reference", dt.reference).Msg("transacción de demo rechazada")
			continue
		}
		log.Info().
			Int64("id", res.Transaction.ID).
			Str("type", string(dt.typ)).
			Int64("total_items", res.Transaction.TotalItems()).
			Msg("transacción creada")
	}
	return nil
}
