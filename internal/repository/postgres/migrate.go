package postgres

import (
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"project-service/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies every pending up migration and returns the resulting
// schema version.
func Migrate(cfg *config.DatabaseConfig) (uint, error) {
	m, err := newMigrator(cfg)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, errFailedApplyMigrations(err)
	}

	return currentVersion(m)
}

// MigrateDown rolls back a single migration.
func MigrateDown(cfg *config.DatabaseConfig) (uint, error) {
	m, err := newMigrator(cfg)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, errFailedApplyMigrations(err)
	}

	return currentVersion(m)
}

func newMigrator(cfg *config.DatabaseConfig) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, migrationsDir)
	if err != nil {
		return nil, errFailedOpenMigrations(err)
	}

	m, err := migrate.NewWithSourceInstance(migrationsSourceName, source, cfg.MigrationURL())
	if err != nil {
		return nil, errFailedInitMigrations(err)
	}

	return m, nil
}

func currentVersion(m *migrate.Migrate) (uint, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, errFailedReadMigrationVersion(err)
	}
	if dirty {
		return version, errDirtyMigration(version)
	}
	return version, nil
}
