package analytics_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/greenbox-dashboard/internal/application/analytics"
	"github.com/jhoicas/greenbox-dashboard/internal/domain"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/entity"
	"github.com/jhoicas/greenbox-dashboard/internal/domain/rental"
	"github.com/jhoicas/greenbox-dashboard/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test
// ──────────────────────────────────────────────────────────────────────────────

type fakeRepo struct {
	mu      sync.Mutex
	records []entity.CustomerRecord
	err     error
	calls   atomic.Int32
	gate    chan struct{} // si no es nil, ListRecords espera a que se cierre
}

func (f *fakeRepo) ListRecords(ctx context.Context) ([]entity.CustomerRecord, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakePDF struct {
	last *analytics.Report
}

func (f *fakePDF) GenerateReportPDF(_ context.Context, r *analytics.Report) ([]byte, error) {
	f.last = r
	return []byte("%PDF-fake"), nil
}

type chanListener struct {
	got chan *analytics.Report
	err error
}

func (l *chanListener) ReportPublished(_ context.Context, r *analytics.Report) error {
	l.got <- r
	return l.err
}

func newUseCase(repo *fakeRepo, opts analytics.Options) *analytics.DashboardUseCase {
	return analytics.NewDashboardUseCase(repo, &fakePDF{}, "", opts, logger.Nop())
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestDashboard_ReloadPublicaReporte(t *testing.T) {
	uc := newUseCase(&fakeRepo{records: fixtureRecords()}, analytics.Options{})
	assert.Nil(t, uc.Current(), "sin carga no hay reporte")

	report, err := uc.Reload(context.Background())
	require.NoError(t, err)

	assert.Same(t, report, uc.Current())
	assert.Equal(t, rental.AllSchools, report.School)
	assert.Equal(t, 2, report.Conversion.Orders)
	assert.Equal(t, 1, report.Conversion.WithoutOrder)
}

func TestDashboard_SetSchoolReemplazaTodo(t *testing.T) {
	uc := newUseCase(&fakeRepo{records: fixtureRecords()}, analytics.Options{})
	first, err := uc.Reload(context.Background())
	require.NoError(t, err)

	second, err := uc.SetSchool("Brown")
	require.NoError(t, err)

	assert.NotEqual(t, first.Revision, second.Revision)
	assert.Same(t, second, uc.Current())
	assert.Equal(t, "Brown", uc.School())
	assert.Equal(t, 1, second.Conversion.Accounts())
	// Brown: 31 ene -> 3 mar -> 3 abr
	require.Len(t, second.Revenue, 2)
	assert.Equal(t, "Mar 2023", second.Revenue[0].Label)
	assert.Equal(t, "Apr 2023", second.Revenue[1].Label)
}

func TestDashboard_SelectorDesconocidoNoEsError(t *testing.T) {
	uc := newUseCase(&fakeRepo{records: fixtureRecords()}, analytics.Options{})
	_, err := uc.Reload(context.Background())
	require.NoError(t, err)

	report, err := uc.SetSchool("Stanford")
	require.NoError(t, err)
	assert.Empty(t, report.Revenue)
	assert.Empty(t, report.Pickups)
	assert.Equal(t, "NaN", report.ConversionRate.String())
}

func TestDashboard_SetSchoolSinCarga(t *testing.T) {
	uc := newUseCase(&fakeRepo{}, analytics.Options{})

	_, err := uc.SetSchool("Yale")
	assert.ErrorIs(t, err, analytics.ErrNotLoaded)
	assert.Equal(t, "Yale", uc.School(), "el selector se recuerda para la primera carga")
}

func TestDashboard_ReplaceRecordsCopiaLaInstantanea(t *testing.T) {
	uc := newUseCase(&fakeRepo{}, analytics.Options{})
	records := fixtureRecords()

	_, err := uc.ReplaceRecords(records)
	require.NoError(t, err)

	records[0].School = "Harvard"
	report, err := uc.SetSchool("Yale")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Conversion.Accounts(), "mutar el slice del caller no afecta la instantánea")
}

func TestDashboard_FalloConservaReporteAnterior(t *testing.T) {
	uc := newUseCase(&fakeRepo{}, analytics.Options{StrictDates: true})
	previous, err := uc.ReplaceRecords(fixtureRecords())
	require.NoError(t, err)

	bad := append(fixtureRecords(), entity.CustomerRecord{ID: "x", School: "Yale"})
	_, err = uc.ReplaceRecords(bad)
	require.ErrorIs(t, err, domain.ErrInvalidDateRange)

	assert.Same(t, previous, uc.Current())
}

func TestDashboard_ReloadErrorDelOrigen(t *testing.T) {
	uc := newUseCase(&fakeRepo{err: domain.ErrSourceUnavailable}, analytics.Options{})

	_, err := uc.Reload(context.Background())
	assert.True(t, errors.Is(err, domain.ErrSourceUnavailable))
	assert.Nil(t, uc.Current())
}

func TestDashboard_ReloadConcurrenteSeAgrupa(t *testing.T) {
	repo := &fakeRepo{records: fixtureRecords(), gate: make(chan struct{})}
	uc := newUseCase(repo, analytics.Options{})

	const callers = 5
	var (
		wg      sync.WaitGroup
		started atomic.Int32
		reports [callers]*analytics.Report
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Add(1)
			r, err := uc.Reload(context.Background())
			assert.NoError(t, err)
			reports[i] = r
		}(i)
	}
	// La primera lectura queda bloqueada en gate; el resto debe sumarse al mismo vuelo.
	require.Eventually(t, func() bool {
		return started.Load() == callers && repo.calls.Load() == 1
	}, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(repo.gate)
	wg.Wait()

	assert.Equal(t, int32(1), repo.calls.Load(), "una sola lectura del origen para todas las llamadas")
	require.NotNil(t, uc.Current())
	for _, r := range reports {
		assert.Same(t, uc.Current(), r, "todas reciben el mismo Report")
	}
}

func TestDashboard_LecturasConcurrentesVenReportesCompletos(t *testing.T) {
	uc := newUseCase(&fakeRepo{records: fixtureRecords()}, analytics.Options{})
	_, err := uc.Reload(context.Background())
	require.NoError(t, err)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			r := uc.Current()
			// Cada reporte publicado es coherente con su propio selector.
			switch r.School {
			case "Yale":
				assert.Equal(t, 2, r.Conversion.Accounts())
			case "Brown":
				assert.Equal(t, 1, r.Conversion.Accounts())
			case rental.AllSchools:
				assert.Equal(t, 3, r.Conversion.Accounts())
			}
		}
	}()

	for i := 0; i < 50; i++ {
		for _, s := range []string{"Yale", "Brown", rental.AllSchools} {
			_, err := uc.SetSchool(s)
			require.NoError(t, err)
		}
	}
	close(stop)
	wg.Wait()
}

func TestDashboard_ReportForNoTocaElEstado(t *testing.T) {
	uc := newUseCase(&fakeRepo{records: fixtureRecords()}, analytics.Options{})

	report, err := uc.ReportFor(context.Background(), "Brown")
	require.NoError(t, err, "carga la instantánea si hace falta")
	assert.Equal(t, "Brown", report.School)

	current := uc.Current()
	require.NotNil(t, current)
	assert.Equal(t, rental.AllSchools, current.School)
	assert.NotEqual(t, report.Revision, current.Revision)
}

func TestDashboard_ExportPDF(t *testing.T) {
	gen := &fakePDF{}
	uc := analytics.NewDashboardUseCase(&fakeRepo{records: fixtureRecords()}, gen, "", analytics.Options{}, nil)

	pdf, err := uc.ExportPDF(context.Background(), "Yale")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), pdf)
	require.NotNil(t, gen.last)
	assert.Equal(t, "Yale", gen.last.School)

	noPDF := analytics.NewDashboardUseCase(&fakeRepo{}, nil, "", analytics.Options{}, nil)
	_, err = noPDF.ExportPDF(context.Background(), "Yale")
	assert.ErrorIs(t, err, analytics.ErrExportDisabled)
}

func TestDashboard_ListenersRecibenCadaPublicacion(t *testing.T) {
	uc := newUseCase(&fakeRepo{records: fixtureRecords()}, analytics.Options{})
	ok := &chanListener{got: make(chan *analytics.Report, 4)}
	failing := &chanListener{got: make(chan *analytics.Report, 4), err: errors.New("broker caído")}
	uc.Subscribe(ok)
	uc.Subscribe(failing)

	first, err := uc.Reload(context.Background())
	require.NoError(t, err)
	second, err := uc.SetSchool("Yale")
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case r := <-ok.got:
			seen[r.Revision] = true
		case <-time.After(time.Second):
			t.Fatal("el listener no recibió el reporte")
		}
	}
	assert.True(t, seen[first.Revision])
	assert.True(t, seen[second.Revision])

	// Un listener que falla no afecta al estado publicado.
	assert.Same(t, second, uc.Current())

	// ReportFor no publica: no hay avisos adicionales.
	_, err = uc.ReportFor(context.Background(), "Brown")
	require.NoError(t, err)
	select {
	case r := <-ok.got:
		t.Fatalf("aviso inesperado para %s", r.School)
	case <-time.After(50 * time.Millisecond):
	}
}
