package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/greenbox-dashboard/internal/application/analytics"
	"github.com/jhoicas/greenbox-dashboard/internal/application/dto"
	"github.com/jhoicas/greenbox-dashboard/internal/domain"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/rental"
)

// DashboardHandler maneja los endpoints del dashboard de alquileres.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Schools godoc
// @Summary      Valores del selector de escuela
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.SchoolsDTO
// @Router       /api/dashboard/schools [get]
func (h *DashboardHandler) Schools(c *fiber.Ctx) error {
	return c.JSON(dto.SchoolsDTO{
		Schools:  rental.Schools(),
		Selected: h.uc.School(),
	})
}

// Current godoc
// @Summary      Reporte compartido vigente
// @Description  Último reporte publicado para el selector actual. 503 si aún no se cargaron registros.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.DashboardReportDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/dashboard [get]
func (h *DashboardHandler) Current(c *fiber.Ctx) error {
	report := h.uc.Current()
	if report == nil {
		return writeError(c, appanalytics.ErrNotLoaded)
	}
	return c.JSON(appanalytics.NewReportDTO(report))
}

// Report godoc
// @Summary      Reporte puntual para una escuela
// @Description  Calcula los tres agregados para el selector indicado sin modificar el reporte compartido.
// @Tags         dashboard
// @Produce      json
// @Param        school  query  string  false  "Escuela (default: All Schools)"
// @Success      200  {object}  dto.DashboardReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/dashboard/report [get]
func (h *DashboardHandler) Report(c *fiber.Ctx) error {
	var req dto.DashboardReportRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos",
		})
	}

	report, err := h.uc.ReportFor(c.UserContext(), strings.TrimSpace(req.School))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(appanalytics.NewReportDTO(report))
}

// SetSchool godoc
// @Summary      Cambiar el selector de escuela
// @Description  Recalcula los tres agregados con el nuevo selector y publica el reporte.
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetSchoolRequest  true  "Selector"
// @Success      200  {object}  dto.DashboardReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/dashboard/school [put]
func (h *DashboardHandler) SetSchool(c *fiber.Ctx) error {
	var req dto.SetSchoolRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_BODY", Message: "cuerpo de la petición inválido",
		})
	}

	report, err := h.uc.SetSchool(strings.TrimSpace(req.School))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(appanalytics.NewReportDTO(report))
}

// Reload godoc
// @Summary      Recargar registros desde el origen
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.DashboardReportDTO
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/dashboard/reload [post]
func (h *DashboardHandler) Reload(c *fiber.Ctx) error {
	report, err := h.uc.Reload(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(appanalytics.NewReportDTO(report))
}

// ReportPDF godoc
// @Summary      Exportar el reporte en PDF
// @Tags         dashboard
// @Produce      application/pdf
// @Param        school  query  string  false  "Escuela (default: All Schools)"
// @Success      200  {file}  binary
// @Failure      501  {object}  dto.ErrorResponse
// @Router       /api/dashboard/report.pdf [get]
func (h *DashboardHandler) ReportPDF(c *fiber.Ctx) error {
	var req dto.DashboardReportRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_PARAMS", Message: "parámetros de consulta inválidos",
		})
	}

	school := strings.TrimSpace(req.School)
	pdf, err := h.uc.ExportPDF(c.UserContext(), school)
	if err != nil {
		return writeError(c, err)
	}

	if school == "" {
		school = rental.AllSchools
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, pdfFilename(school)))
	return c.Send(pdf)
}

// writeError traduce los errores del caso de uso a códigos HTTP.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, appanalytics.ErrNotLoaded):
		status, code = fiber.StatusServiceUnavailable, "NOT_LOADED"
	case errors.Is(err, domain.ErrSourceUnavailable):
		status, code = fiber.StatusServiceUnavailable, "SOURCE_UNAVAILABLE"
	case errors.Is(err, domain.ErrInvalidDateRange):
		status, code = fiber.StatusUnprocessableEntity, "INVALID_DATE_RANGE"
	case errors.Is(err, appanalytics.ErrExportDisabled):
		status, code = fiber.StatusNotImplemented, "EXPORT_DISABLED"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

// pdfFilename "All Schools" → "dashboard-all-schools.pdf".
// El slug solo admite [a-z0-9-]: school viene del query string y termina en un header.
func pdfFilename(school string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(school) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.' || r == '\t':
			if s := b.String(); s != "" && !strings.HasSuffix(s, "-") {
				b.WriteByte('-')
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "report"
	}
	return "dashboard-" + slug + ".pdf"
}
