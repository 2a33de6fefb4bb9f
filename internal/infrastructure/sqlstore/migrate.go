package sqlstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/mysql/*.sql
var migrationsFS embed.FS

// RunMigrations aplica las migraciones pendientes del dialecto.
// Usa una conexión propia: m.Close cierra también la base que recibe el driver.
func RunMigrations(d Dialect, dsn string) error {
	migrateDB, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := d.migrationDriver(migrateDB)
	if err != nil {
		return fmt.Errorf("create %s driver: %w", d.Name, err)
	}

	src, err := iofs.New(migrationsFS, d.migrationsDir)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, d.Name, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
