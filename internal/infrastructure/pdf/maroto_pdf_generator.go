// Package pdf genera la versión imprimible del dashboard de alquileres.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Greenbox Storage Widgets  │  Escuela + Fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONVERSIÓN: Reservas / Cuentas sin reserva / Tasa          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Mes | Ingreso mensual proyectado                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Clientes | Artículos                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: revisión del reporte                               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/greenbox-dashboard/internal/application/analytics"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/rental"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 38, Green: 110, Blue: 60}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorStripe  = &props.Color{Red: 236, Green: 244, Blue: 238}
)

const dashboardTitle = "Greenbox Storage Widgets"

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa analytics.ReportPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador. Las cifras se formatean con las
// convenciones de tag (language.AmericanEnglish si se pasa language.Und).
func NewMarotoPDFGenerator(tag language.Tag) *MarotoPDFGenerator {
	if tag == language.Und {
		tag = language.AmericanEnglish
	}
	return &MarotoPDFGenerator{printer: message.NewPrinter(tag)}
}

// GenerateReportPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateReportPDF(ctx context.Context, report *analytics.Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("pdf: reporte nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(dashboardTitle+" - "+report.School, true).
		WithAuthor(dashboardTitle, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.conversionRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitleRow("Monthly Revenue"))
	m.AddRows(tableHeaderRow(
		headerCell{"Month", 6, align.Left},
		headerCell{"Projected revenue", 6, align.Right},
	))
	m.AddRows(g.revenueRows(report.Revenue)...)
	m.AddRows(g.revenueTotalRow(report.Revenue))

	m.AddRows(line.NewRow(4))
	m.AddRows(sectionTitleRow("Pickups by date"))
	m.AddRows(tableHeaderRow(
		headerCell{"Date", 4, align.Left},
		headerCell{"Customers", 4, align.Right},
		headerCell{"Items", 4, align.Right},
	))
	m.AddRows(g.pickupRows(report.Pickups)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y escuela + fecha de generación (der).
func headerRow(report *analytics.Report) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(dashboardTitle, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New("Rental dashboard", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("SCHOOL", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(report.School, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Generated: "+report.GeneratedAt.Format("01/02/2006 15:04 MST"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// conversionRow: embudo de reservas en tres columnas.
func (g *MarotoPDFGenerator) conversionRow(report *analytics.Report) core.Row {
	block := func(label, value string) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center,
				Color: colorPrimary, Top: 2,
			}),
			text.New(value, props.Text{
				Style: fontstyle.Bold, Size: 13, Align: align.Center, Top: 8,
			}),
		)
	}
	return row.New(18).Add(
		block("Reservations", g.printer.Sprintf("%d", report.Conversion.Orders)),
		block("Accounts without Reservations", g.printer.Sprintf("%d", report.Conversion.WithoutOrder)),
		block("Conversion Rate", conversionLabel(report.ConversionRate)),
	)
}

func sectionTitleRow(title string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 2,
		}),
	))
}

type headerCell struct {
	label string
	size  int
	align align.Type
}

// tableHeaderRow: cabecera de tabla con fondo del color primario.
func tableHeaderRow(cells ...headerCell) core.Row {
	cols := make([]core.Col, 0, len(cells))
	for _, c := range cells {
		cols = append(cols, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// revenueRows: una fila por mes, en el orden del reporte.
func (g *MarotoPDFGenerator) revenueRows(buckets []rental.MonthBucket) []core.Row {
	if len(buckets) == 0 {
		return []core.Row{emptyRow("No projected revenue for this selection.")}
	}
	result := make([]core.Row, 0, len(buckets))
	for i, b := range buckets {
		r := row.New(7).Add(
			col.New(6).Add(text.New(b.Label, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(6).Add(text.New(g.money(b.Value), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
		)
		result = append(result, striped(r, i))
	}
	return result
}

func (g *MarotoPDFGenerator) revenueTotalRow(buckets []rental.MonthBucket) core.Row {
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.Value)
	}
	return row.New(8).Add(
		col.New(6).Add(text.New("Total", props.Text{
			Style: fontstyle.Bold, Size: 9, Top: 2, Left: 1, Color: colorPrimary,
		})),
		col.New(6).Add(text.New(g.money(total), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2, Right: 1, Color: colorPrimary,
		})),
	)
}

// pickupRows: una fila por fecha de recogida.
func (g *MarotoPDFGenerator) pickupRows(buckets []rental.PickupBucket) []core.Row {
	if len(buckets) == 0 {
		return []core.Row{emptyRow("No pickups for this selection.")}
	}
	result := make([]core.Row, 0, len(buckets))
	for i, b := range buckets {
		r := row.New(7).Add(
			col.New(4).Add(text.New(b.Date, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(g.printer.Sprintf("%d", b.Customers), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
			col.New(4).Add(text.New(g.printer.Sprintf("%d", b.Items), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
		)
		result = append(result, striped(r, i))
	}
	return result
}

func footerRow(report *analytics.Report) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Revision %s   |   %d records   |   pickup order: %s",
			report.Revision, report.RecordCount, report.PickupOrder,
		), props.Text{Size: 6.5, Color: colorGray, Top: 2}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func emptyRow(msg string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray}),
	))
}

func striped(r core.Row, i int) core.Row {
	if i%2 == 1 {
		return r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
	}
	return r
}

// money formatea con separador de miles y dos decimales: 1234.5 → "$1,234.50".
func (g *MarotoPDFGenerator) money(v decimal.Decimal) string {
	return "$" + g.printer.Sprintf("%.2f", v.Round(2).InexactFloat64())
}

func conversionLabel(p rental.Percent) string {
	return p.String() + "%"
}
