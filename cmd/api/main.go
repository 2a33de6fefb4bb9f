package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/text/language"

	appanalytics "github.com/jhoicas/greenbox-dashboard/internal/application/analytics"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/repository"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/rental"
	infraamqp "github.com/jhoicas/greenbox-dashboard/internal/infrastructure/amqp"
	"github.com/jhoicas/greenbox-dashboard/internal/infrastructure/jsonfile"
	infrapdf "github.com/jhoicas/greenbox-dashboard/internal/infrastructure/pdf"
	"github.com/jhoicas/greenbox-dashboard/internal/infrastructure/postgres"
	"github.com/jhoicas/greenbox-dashboard/internal/infrastructure/sqlstore"
	httpRouter "github.com/jhoicas/greenbox-dashboard/internal/interfaces/http"
	"github.com/jhoicas/greenbox-dashboard/pkg/config"
	"github.com/jhoicas/greenbox-dashboard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("records_source", cfg.Records.Source).
		Msg("iniciando aplicación")

	pickupOrder, err := rental.ParsePickupOrder(cfg.Report.PickupOrder)
	if err != nil {
		log.Fatal().Err(err).Msg("REPORT_PICKUP_ORDER")
	}

	ctx := context.Background()

	// Origen de registros: archivo estático, PostgreSQL, SQLite o MySQL.
	var repo repository.CustomerRecordRepository
	switch cfg.Records.Source {
	case config.SourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		repo = postgres.NewCustomerRecordRepository(pool)
	case config.SourceSQLite, config.SourceMySQL:
		dialect, dsn := sqlstore.SQLite, cfg.Records.SQLitePath
		if cfg.Records.Source == config.SourceMySQL {
			dialect, dsn = sqlstore.MySQL, cfg.Records.MySQLDSN
		}
		store, err := sqlstore.Open(ctx, dialect, dsn)
		if err != nil {
			log.Fatal().Err(err).Str("dialect", dialect.Name).Msg("apertura del store SQL")
		}
		defer store.Close()
		repo = store
	default:
		repo = jsonfile.NewLoader(cfg.Records.DataFile)
	}

	pdfGenerator := infrapdf.NewMarotoPDFGenerator(language.AmericanEnglish)
	dashboardUC := appanalytics.NewDashboardUseCase(
		repo, pdfGenerator, cfg.Report.DefaultSchool,
		appanalytics.Options{PickupOrder: pickupOrder, StrictDates: cfg.Report.StrictDates},
		log,
	)

	// Eventos de recálculo hacia RabbitMQ (opcional).
	if cfg.AMQP.URL != "" {
		publisher, err := infraamqp.NewReportPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a RabbitMQ")
		}
		defer publisher.Close()
		dashboardUC.Subscribe(publisher)
	}

	// Carga inicial: si falla, el servidor arranca igual y /api/dashboard responde 503
	// hasta el primer POST /api/dashboard/reload exitoso.
	loadCtx, cancelLoad := context.WithTimeout(ctx, 30*time.Second)
	if _, err := dashboardUC.Reload(loadCtx); err != nil {
		log.Warn().Err(err).Msg("carga inicial de registros")
	}
	cancelLoad()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: cfg.App.SwaggerFile,
		Path:     "docs",
		Title:    "Greenbox Dashboard API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": cfg.App.Name,
			"loaded":  dashboardUC.Current() != nil,
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		DashboardUC: dashboardUC,
		Log:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
