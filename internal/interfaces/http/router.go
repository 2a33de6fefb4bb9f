package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/greenbox-dashboard/internal/application/analytics"
	"github.com/jhoicas/greenbox-dashboard/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	DashboardUC *appanalytics.DashboardUseCase
	Log         *logger.Logger // opcional: registra cada petición
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	if deps.Log != nil {
		api.Use(RequestLogger(deps.Log))
	}

	dashboard := api.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard.Get("/", dashboardHandler.Current)
	dashboard.Get("/schools", dashboardHandler.Schools)
	dashboard.Get("/report", dashboardHandler.Report)
	dashboard.Get("/report.pdf", dashboardHandler.ReportPDF)
	dashboard.Put("/school", dashboardHandler.SetSchool)
	dashboard.Post("/reload", dashboardHandler.Reload)
}
