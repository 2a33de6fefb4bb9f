// Package sqlstore guarda los registros de clientes en SQLite o MySQL vía database/sql.
// El esquema se versiona con golang-migrate (migraciones embebidas por dialecto).
package sqlstore

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "modernc.org/sqlite"
)

// Dialect diferencias entre motores: driver, migraciones y sintaxis de upsert.
type Dialect struct {
	Name       string // nombre del motor para golang-migrate
	DriverName string // nombre registrado en database/sql

	maxOpenConns    int
	migrationsDir   string
	upsertSQL       string
	prepareDSN      func(dsn string) (string, error)
	migrationDriver func(db *sql.DB) (database.Driver, error)
}

// SQLite archivo local (modernc.org/sqlite, sin cgo). Una sola conexión abierta:
// SQLite serializa las escrituras y así se evita "database is locked".
var SQLite = Dialect{
	Name:          "sqlite",
	DriverName:    "sqlite",
	maxOpenConns:  1,
	migrationsDir: "migrations/sqlite",
	upsertSQL: `
	INSERT INTO rental_customers (id, position, school, pickup_date, return_date, monthly_cost, num_items)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
	    position     = excluded.position,
	    school       = excluded.school,
	    pickup_date  = excluded.pickup_date,
	    return_date  = excluded.return_date,
	    monthly_cost = excluded.monthly_cost,
	    num_items    = excluded.num_items`,
	prepareDSN: sqlitePath,
	migrationDriver: func(db *sql.DB) (database.Driver, error) {
		return migratesqlite.WithInstance(db, &migratesqlite.Config{})
	},
}

// MySQL servidor MySQL/MariaDB (go-sql-driver/mysql).
var MySQL = Dialect{
	Name:          "mysql",
	DriverName:    "mysql",
	maxOpenConns:  10,
	migrationsDir: "migrations/mysql",
	upsertSQL: `
	INSERT INTO rental_customers (id, position, school, pickup_date, return_date, monthly_cost, num_items)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
	    position     = VALUES(position),
	    school       = VALUES(school),
	    pickup_date  = VALUES(pickup_date),
	    return_date  = VALUES(return_date),
	    monthly_cost = VALUES(monthly_cost),
	    num_items    = VALUES(num_items)`,
	prepareDSN: MySQLDSN,
	migrationDriver: func(db *sql.DB) (database.Driver, error) {
		return migratemysql.WithInstance(db, &migratemysql.Config{})
	},
}

// sqlitePath crea el directorio del archivo si hace falta.
func sqlitePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("sqlite: ruta vacía")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("sqlite: crear directorio: %w", err)
	}
	return path, nil
}

// MySQLDSN acepta mysql:// o mariadb:// además del formato nativo del driver
// (user:pass@tcp(host:3306)/db) y fija las opciones que necesita el store:
// fechas como texto (parseTime=false), UTC e interpolación de parámetros.
func MySQLDSN(dsn string) (string, error) {
	var (
		cfg *mysql.Config
		err error
	)
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		cfg, err = mysqlConfigFromURL(dsn)
	} else {
		cfg, err = mysql.ParseDSN(dsn)
	}
	if err != nil {
		return "", fmt.Errorf("mysql: dsn: %w", err)
	}
	cfg.ParseTime = false
	cfg.Loc = time.UTC
	cfg.InterpolateParams = true
	return cfg.FormatDSN(), nil
}

func mysqlConfigFromURL(dsn string) (*mysql.Config, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	cfg := mysql.NewConfig()
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if cfg.User == "" || cfg.Addr == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("dsn incompleto (user/host/db)")
	}
	if u.Port() == "" {
		cfg.Addr += ":3306"
	}
	return cfg, nil
}
