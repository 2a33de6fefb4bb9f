// seed carga un archivo customers.json en la tabla rental_customers.
//
// Uso: go run ./cmd/seed [--target postgres|sqlite|mysql] [--charset iso-8859-1] [ruta/customers.json]
// Por defecto lee DATA_FILE (./data/customers.json) y escribe en RECORDS_SOURCE
// (postgres si RECORDS_SOURCE=file). La conexión sale de la misma configuración que la API.
// La carga es una sola transacción que reemplaza la tabla completa: si un registro
// falla no queda nada a medias, y recargar el mismo archivo no duplica filas.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/pflag"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/greenbox-dashboard/internal/domain/repository"
	"github.com/jhoicas/greenbox-dashboard/internal/infrastructure/jsonfile"
	"github.com/jhoicas/greenbox-dashboard/internal/infrastructure/postgres"
	"github.com/jhoicas/greenbox-dashboard/internal/infrastructure/sqlstore"
	"github.com/jhoicas/greenbox-dashboard/pkg/config"
	"github.com/jhoicas/greenbox-dashboard/pkg/logger"
)

// recordRunner destino transaccional de la carga.
type recordRunner interface {
	RunRecords(ctx context.Context, fn func(w repository.CustomerRecordWriter) error) error
}

func main() {
	target := pflag.String("target", "", "destino: postgres | sqlite | mysql (por defecto RECORDS_SOURCE)")
	charset := pflag.String("charset", "utf-8", "codificación del archivo: utf-8 | iso-8859-1")
	timeout := pflag.Duration("timeout", 2*time.Minute, "tiempo máximo de la carga")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name}).Component("seed")

	path := cfg.Records.DataFile
	if pflag.NArg() > 0 {
		path = pflag.Arg(0)
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("abrir archivo de registros")
	}
	defer f.Close()

	in, err := decoderFor(*charset, f)
	if err != nil {
		log.Fatal().Err(err).Msg("--charset")
	}
	records, err := jsonfile.Decode(in)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("decodificar registros")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	dest := *target
	if dest == "" {
		dest = cfg.Records.Source
	}

	var runner recordRunner
	switch dest {
	case config.SourcePostgres, config.SourceFile:
		dest = config.SourcePostgres
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		runner = postgres.NewTxRunner(pool)
	case config.SourceSQLite, config.SourceMySQL:
		dialect, dsn := sqlstore.SQLite, cfg.Records.SQLitePath
		if dest == config.SourceMySQL {
			dialect, dsn = sqlstore.MySQL, cfg.Records.MySQLDSN
		}
		store, err := sqlstore.Open(ctx, dialect, dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("apertura del store SQL")
		}
		defer store.Close()
		runner = store
	default:
		log.Fatal().Str("target", dest).Msg("--target desconocido")
	}

	bar := progressbar.Default(int64(len(records)), "rental_customers")
	err = runner.RunRecords(ctx, func(w repository.CustomerRecordWriter) error {
		if err := w.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := w.ClearRecords(ctx); err != nil {
			return err
		}
		for i, r := range records {
			if err := w.UpsertRecord(ctx, i, r); err != nil {
				return fmt.Errorf("registro %d (%s): %w", i, r.ID, err)
			}
			_ = bar.Add(1)
		}
		return nil
	})
	_ = bar.Finish()
	if err != nil {
		log.Fatal().Err(err).Msg("carga de registros")
	}

	log.Info().Int("records", len(records)).Str("path", path).Str("target", dest).Msg("registros cargados")
}

// decoderFor envuelve r para que entregue UTF-8.
func decoderFor(charset string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("charset no soportado: %q", charset)
	}
}
