package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/greenbox-dashboard/internal/domain/entity"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/repository"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/rental"
	"github.com/jhoicas/greenbox-dashboard/pkg/logger"
)

var (
	// ErrNotLoaded se devuelve cuando aún no hay instantánea de registros cargada.
	ErrNotLoaded = errors.New("dashboard: registros aún no cargados")
	// ErrExportDisabled se devuelve cuando no hay generador de PDF configurado.
	ErrExportDisabled = errors.New("dashboard: exportación PDF no configurada")
)

// listenerTimeout tiempo máximo de cada aviso a un ReportListener.
const listenerTimeout = 5 * time.Second

// ReportListener recibe cada Report publicado en el estado compartido.
type ReportListener interface {
	ReportPublished(ctx context.Context, report *Report) error
}

// ReportPDFGenerator puerto de salida para exportar el reporte en PDF.
type ReportPDFGenerator interface {
	GenerateReportPDF(ctx context.Context, report *Report) ([]byte, error)
}

// DashboardUseCase mantiene el estado compartido del dashboard: la instantánea de
// registros, el selector de escuela y el último Report calculado.
//
// Cualquier cambio (registros o selector) recalcula los tres agregados desde cero y
// publica el nuevo Report con un único Store atómico: Current nunca ve una mezcla de
// resultados viejos y nuevos. Si el recálculo falla se conserva el Report anterior.
type DashboardUseCase struct {
	repo      repository.CustomerRecordRepository
	generator ReportPDFGenerator
	opts      Options
	log       *logger.Logger

	mu        sync.Mutex // serializa los escritores de records/school/listeners
	records   []entity.CustomerRecord
	school    string
	loaded    bool
	listeners []ReportListener

	current atomic.Pointer[Report]
	reloads singleflight.Group
}

// NewDashboardUseCase construye el caso de uso. generator puede ser nil (sin exportación PDF).
func NewDashboardUseCase(
	repo repository.CustomerRecordRepository,
	generator ReportPDFGenerator,
	defaultSchool string,
	opts Options,
	log *logger.Logger,
) *DashboardUseCase {
	if defaultSchool == "" {
		defaultSchool = rental.AllSchools
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardUseCase{
		repo:      repo,
		generator: generator,
		opts:      opts,
		log:       log.Component("dashboard"),
		school:    defaultSchool,
	}
}

// Subscribe registra un listener que se avisa tras cada recálculo publicado.
func (uc *DashboardUseCase) Subscribe(l ReportListener) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.listeners = append(uc.listeners, l)
}

// Reload vuelve a leer los registros del origen y recalcula el reporte.
// Las llamadas concurrentes se agrupan en una sola lectura.
func (uc *DashboardUseCase) Reload(ctx context.Context) (*Report, error) {
	v, err, _ := uc.reloads.Do("reload", func() (interface{}, error) {
		records, err := uc.repo.ListRecords(ctx)
		if err != nil {
			return nil, fmt.Errorf("dashboard: leer registros: %w", err)
		}
		return uc.ReplaceRecords(records)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

// ReplaceRecords sustituye la instantánea de registros y recalcula con el selector actual.
// Se guarda una copia: mutaciones posteriores del slice del caller no afectan al dashboard.
func (uc *DashboardUseCase) ReplaceRecords(records []entity.CustomerRecord) (*Report, error) {
	snapshot := make([]entity.CustomerRecord, len(records))
	copy(snapshot, records)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	report, err := uc.recompute(snapshot, uc.school)
	if err != nil {
		return nil, err
	}
	uc.records = snapshot
	uc.loaded = true
	return report, nil
}

// SetSchool cambia el selector y recalcula sobre la instantánea actual.
// Un selector desconocido no es un error: produce agregados vacíos.
func (uc *DashboardUseCase) SetSchool(school string) (*Report, error) {
	if school == "" {
		school = rental.AllSchools
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if !rental.IsKnownSchool(school) {
		uc.log.Warn().Str("school", school).Msg("selector de escuela desconocido: los agregados quedarán vacíos")
	}
	if !uc.loaded {
		uc.school = school
		return nil, ErrNotLoaded
	}
	report, err := uc.recompute(uc.records, school)
	if err != nil {
		return nil, err
	}
	uc.school = school
	return report, nil
}

// Current devuelve el último Report publicado (nil antes de la primera carga).
func (uc *DashboardUseCase) Current() *Report {
	return uc.current.Load()
}

// School devuelve el selector vigente.
func (uc *DashboardUseCase) School() string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.school
}

// ReportFor calcula un reporte puntual para otro selector sin tocar el estado compartido.
// Si todavía no hay instantánea, la carga desde el origen.
func (uc *DashboardUseCase) ReportFor(ctx context.Context, school string) (*Report, error) {
	if school == "" {
		school = rental.AllSchools
	}

	uc.mu.Lock()
	records, loaded := uc.records, uc.loaded
	uc.mu.Unlock()

	if !loaded {
		if _, err := uc.Reload(ctx); err != nil {
			return nil, err
		}
		uc.mu.Lock()
		records = uc.records
		uc.mu.Unlock()
	}
	return BuildReport(records, school, uc.opts)
}

// ExportPDF genera el PDF del reporte para el selector indicado.
func (uc *DashboardUseCase) ExportPDF(ctx context.Context, school string) ([]byte, error) {
	if uc.generator == nil {
		return nil, ErrExportDisabled
	}
	report, err := uc.ReportFor(ctx, school)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.generator.GenerateReportPDF(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("dashboard: generar PDF: %w", err)
	}
	return pdf, nil
}

// recompute debe llamarse con uc.mu tomado.
func (uc *DashboardUseCase) recompute(records []entity.CustomerRecord, school string) (*Report, error) {
	start := time.Now()
	report, err := BuildReport(records, school, uc.opts)
	if err != nil {
		uc.log.Warn().Err(err).Str("school", school).Msg("recálculo rechazado, se conserva el reporte anterior")
		return nil, err
	}
	uc.current.Store(report)
	uc.notify(report)

	uc.log.Info().
		Str("revision", report.Revision).
		Str("school", school).
		Int("records", len(records)).
		Int("revenue_buckets", len(report.Revenue)).
		Int("pickup_buckets", len(report.Pickups)).
		Dur("duration", time.Since(start)).
		Msg("reporte recalculado")
	return report, nil
}

// notify avisa a los listeners en segundo plano, cada uno con su propio timeout.
// Debe llamarse con uc.mu tomado.
func (uc *DashboardUseCase) notify(report *Report) {
	for _, l := range uc.listeners {
		go func(l ReportListener) {
			ctx, cancel := context.WithTimeout(context.Background(), listenerTimeout)
			defer cancel()
			if err := l.ReportPublished(ctx, report); err != nil {
				uc.log.Warn().Err(err).Str("revision", report.Revision).Msg("aviso de reporte fallido")
			}
		}(l)
	}
}
