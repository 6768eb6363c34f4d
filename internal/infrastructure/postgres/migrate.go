package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator aplica las migraciones embebidas en el binario (golang-migrate).
type Migrator struct {
	m   *migrate.Migrate
	log zerolog.Logger
}

// NewMigrator construye el migrador sobre el pool. Llamar Close al terminar, antes de cerrar el pool.
func NewMigrator(pool *pgxpool.Pool, log zerolog.Logger) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("abrir migraciones: %w", err)
	}
	driver, err := migratepgx.WithInstance(stdlib.OpenDBFromPool(pool), &migratepgx.Config{})
	if err != nil {
		return nil, fmt.Errorf("crear driver de migración: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return nil, fmt.Errorf("crear migrador: %w", err)
	}
	return &Migrator{m: m, log: log}, nil
}

// Up aplica todas las migraciones pendientes.
func (mg *Migrator) Up() error {
	err := mg.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info().Msg("sin migraciones pendientes")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration up: %w", err)
	}
	version, dirty, _ := mg.Version()
	mg.log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migraciones aplicadas")
	return nil
}

// Down revierte todas las migraciones.
func (mg *Migrator) Down() error {
	err := mg.m.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info().Msg("sin migraciones para revertir")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration down: %w", err)
	}
	mg.log.Info().Msg("migraciones revertidas")
	return nil
}

// Steps aplica n migraciones (positivo sube, negativo baja).
func (mg *Migrator) Steps(n int) error {
	err := mg.m.Steps(n)
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration steps %d: %w", n, err)
	}
	version, dirty, _ := mg.Version()
	mg.log.Info().Int("steps", n).Uint("version", version).Bool("dirty", dirty).Msg("migraciones aplicadas")
	return nil
}

// Version versión actual del esquema. 0 si nunca se migró.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migration version: %w", err)
	}
	return version, dirty, nil
}

// Force fija la versión sin ejecutar migraciones (para salir de un estado dirty).
func (mg *Migrator) Force(version int) error {
	mg.log.Warn().Int("version", version).Msg("forzando versión de migración")
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Close libera la fuente y el driver.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
