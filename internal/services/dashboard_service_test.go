package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainpulse/internal/config"
	apierrors "trainpulse/internal/errors"
	"trainpulse/internal/infrastructure"
	"trainpulse/internal/ingest"
)

const coursesCSV = `Usuario,Curso,% de Progreso del Curso,Curso completado,Certificado obtenido,Info extra
Ana Torres,Seguridad Industrial,100,SI,SI,Operaciones
Luis Vega,Seguridad Industrial,50,NO,NO,Operaciones
Marta Ruiz,Atención al Cliente,0,NO,NO,Ventas
`

// recordingBroadcaster captures hub events for assertions.
type recordingBroadcaster struct {
	mu        sync.Mutex
	progress  []string
	completes []bool
	tabs      [][]string
}

func (r *recordingBroadcaster) BroadcastProgress(runID, stage string, progress int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, stage)
}

func (r *recordingBroadcaster) BroadcastComplete(runID string, success bool, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completes = append(r.completes, success)
}

func (r *recordingBroadcaster) BroadcastMetricsUpdated(tabs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tabs = append(r.tabs, tabs)
}

func newTestService(t *testing.T) (*DashboardService, *recordingBroadcaster) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	hub := &recordingBroadcaster{}
	svc := NewDashboardService(
		ingest.NewParser(logger),
		hub,
		infrastructure.NewMetrics(),
		config.Default().Upload,
		logger,
	)
	return svc, hub
}

func uploadCourses(t *testing.T, svc *DashboardService) *UploadResult {
	t.Helper()
	result, err := svc.Upload(context.Background(), strings.NewReader(coursesCSV), "cursos.csv")
	require.NoError(t, err)
	return result
}

func TestUploadComputesMetrics(t *testing.T) {
	svc, _ := newTestService(t)

	result := uploadCourses(t, svc)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "cursos.csv", result.Filename)
	assert.Equal(t, 3, result.RowCounts["courses"])
	assert.Contains(t, result.AvailableTabs, "general")

	metrics, err := svc.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, metrics.TotalEmployees)
	assert.NotEmpty(t, metrics.CompletionDistribution)
}

func TestUploadSetsActiveTab(t *testing.T) {
	svc, _ := newTestService(t)
	uploadCourses(t, svc)

	status := svc.Status()
	assert.True(t, status.HasMetrics)
	assert.Equal(t, "general", status.ActiveTab)
	assert.Equal(t, "cursos.csv", status.SourceFile)
	assert.False(t, status.Busy)
}

func TestUploadBroadcastsLifecycle(t *testing.T) {
	svc, hub := newTestService(t)
	uploadCourses(t, svc)

	hub.mu.Lock()
	defer hub.mu.Unlock()
	assert.Equal(t, []string{"received", "parsing", "aggregating", "complete"}, hub.progress)
	assert.Equal(t, []bool{true}, hub.completes)
	require.Len(t, hub.tabs, 1)
	assert.Contains(t, hub.tabs[0], "general")
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Upload(context.Background(), strings.NewReader("x"), "malware.exe")
	require.Error(t, err)

	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", apiErr.ErrorCode)
}

func TestUploadConflictWhileRunning(t *testing.T) {
	svc, _ := newTestService(t)

	svc.mu.Lock()
	svc.busy = true
	svc.mu.Unlock()

	_, err := svc.Upload(context.Background(), strings.NewReader(coursesCSV), "cursos.csv")
	assert.Equal(t, apierrors.ErrPipelineRunning, err)
}

func TestUploadLegacyWorkbookRejected(t *testing.T) {
	svc, hub := newTestService(t)

	// A well-formed OLE compound document. The workbook reader cannot open
	// the legacy format, so the extension is rejected up front instead of
	// failing mid-run.
	olePayload := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, []byte("workbook")...)
	_, err := svc.Upload(context.Background(), bytes.NewReader(olePayload), "report.xls")
	require.Error(t, err)

	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", apiErr.ErrorCode)

	// Rejected before the run starts: no lifecycle events at all.
	hub.mu.Lock()
	defer hub.mu.Unlock()
	assert.Empty(t, hub.progress)
	assert.Empty(t, hub.completes)
}

func TestUploadParseFailureBroadcastsFailure(t *testing.T) {
	svc, hub := newTestService(t)

	_, err := svc.Upload(context.Background(), bytes.NewReader([]byte("not a workbook")), "broken.xlsx")
	require.Error(t, err)

	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, "PARSE_FAILED", apiErr.ErrorCode)

	hub.mu.Lock()
	defer hub.mu.Unlock()
	assert.Equal(t, []bool{false}, hub.completes)

	// Busy flag released so a retry can proceed.
	assert.False(t, svc.Busy())
}

func TestMetricsBeforeUpload(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Metrics(context.Background())
	assert.Equal(t, apierrors.ErrMetricsNotFound, err)

	_, err = svc.Tabs(context.Background())
	assert.Equal(t, apierrors.ErrMetricsNotFound, err)

	_, err = svc.Datasets(context.Background())
	assert.Equal(t, apierrors.ErrMetricsNotFound, err)
}

func TestDatasetsAfterUpload(t *testing.T) {
	svc, _ := newTestService(t)
	uploadCourses(t, svc)

	ds, err := svc.Datasets(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Training, 3)
}

func TestSetActiveTab(t *testing.T) {
	svc, _ := newTestService(t)
	uploadCourses(t, svc)

	require.NoError(t, svc.SetActiveTab(context.Background(), "general"))
	assert.Equal(t, "general", svc.Status().ActiveTab)

	err := svc.SetActiveTab(context.Background(), "evaluations")
	require.Error(t, err, "courses-only upload has no evaluations tab")
}

func TestResetClearsMetrics(t *testing.T) {
	svc, _ := newTestService(t)
	uploadCourses(t, svc)

	status := svc.Reset(context.Background())
	assert.False(t, status.HasMetrics)
	assert.Empty(t, status.ActiveTab)

	_, err := svc.Metrics(context.Background())
	assert.Equal(t, apierrors.ErrMetricsNotFound, err)
}

func TestLoginLogout(t *testing.T) {
	svc, _ := newTestService(t)

	status := svc.Login(context.Background(), "ops")
	assert.True(t, status.Authenticated)
	assert.Equal(t, "ops", status.Username)

	uploadCourses(t, svc)

	status = svc.Logout(context.Background())
	assert.False(t, status.Authenticated)
	assert.False(t, status.HasMetrics, "logout clears loaded data")
}

func TestUploadReplacesPreviousSnapshot(t *testing.T) {
	svc, _ := newTestService(t)
	first := uploadCourses(t, svc)

	second, err := svc.Upload(context.Background(), strings.NewReader(coursesCSV), "cursos2.csv")
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, "cursos2.csv", svc.Status().SourceFile)
}
