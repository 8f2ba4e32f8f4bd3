// Package migration applies the versioned schema with golang-migrate.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stockroute/backend/migrations"
	"go.uber.org/zap"
)

// Migrator drives the schema of one database. Closing it also closes the
// *sql.DB it was built on.
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// NewEmbedded reads the SQL files compiled into the binary.
func NewEmbedded(db *sql.DB, logger *zap.Logger) (*Migrator, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return &Migrator{m: m, logger: logger}, nil
}

// NewFromDir reads SQL files from a directory on disk, for iterating on
// migrations without rebuilding.
func NewFromDir(db *sql.DB, dir string, logger *zap.Logger) (*Migrator, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations dir: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migrate driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+abs, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return &Migrator{m: m, logger: logger.With(zap.String("migrations_dir", abs))}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up() error {
	return m.apply("up", m.m.Up)
}

// Down reverts every applied migration.
func (m *Migrator) Down() error {
	return m.apply("down", m.m.Down)
}

// Steps moves n migrations, forward when n is positive.
func (m *Migrator) Steps(n int) error {
	return m.apply(fmt.Sprintf("step %d", n), func() error { return m.m.Steps(n) })
}

// GoTo moves to the given version in whichever direction is needed.
func (m *Migrator) GoTo(version uint) error {
	return m.apply(fmt.Sprintf("goto %d", version), func() error { return m.m.Migrate(version) })
}

// Force records version as applied and clears the dirty flag without
// running any SQL.
func (m *Migrator) Force(version int) error {
	m.logger.Warn("forcing schema version", zap.Int("version", version))
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Version reports the applied version; 0 means an empty schema.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

// apply runs one migrate operation, treating "nothing to do" as success.
func (m *Migrator) apply(op string, run func() error) error {
	err := run()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("schema already current", zap.String("op", op))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Info("schema migrated",
		zap.String("op", op),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}
