// migrate aplica el esquema SQL embebido en el binario.
//
// Uso:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down
//	go run ./cmd/migrate steps -1
//	go run ./cmd/migrate version
//	go run ./cmd/migrate force 2
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/stock-tracker/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-tracker/pkg/config"
	"github.com/jhoicas/stock-tracker/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: migrate up|down|steps N|version|force V")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	migrator, err := postgres.NewMigrator(pool, log.Component("migrate"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer migrator.Close()

	if err := run(migrator, os.Args[1:]); err != nil {
		log.Error().Err(err).Str("cmd", os.Args[1]).Msg("migración fallida")
		migrator.Close()
		pool.Close()
		os.Exit(1)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		log.Fatal().Err(err).Msg("leer versión")
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("esquema")
}

func run(m *postgres.Migrator, args []string) error {
	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "version":
		return nil
	case "steps", "force":
		if len(args) < 2 {
			return fmt.Errorf("%s requiere un argumento numérico", args[0])
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%s: %q no es un número", args[0], args[1])
		}
		if args[0] == "steps" {
			return m.Steps(n)
		}
		return m.Force(n)
	default:
		return fmt.Errorf("comando desconocido %q", args[0])
	}
}
