package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"trainpulse/internal/analytics"
	"trainpulse/internal/config"
	apierrors "trainpulse/internal/errors"
	"trainpulse/internal/infrastructure"
	"trainpulse/internal/ingest"
	"trainpulse/internal/validation"
	"trainpulse/pkg/contracts/domain"
)

// Broadcaster publishes run lifecycle events to connected dashboard clients.
type Broadcaster interface {
	BroadcastProgress(runID, stage string, progress int, message string)
	BroadcastComplete(runID string, success bool, message string)
	BroadcastMetricsUpdated(tabs []string)
}

// UploadResult summarizes a completed ingestion run.
type UploadResult struct {
	RunID         string         `json:"run_id"`
	Filename      string         `json:"filename"`
	RowCounts     map[string]int `json:"row_counts"`
	AvailableTabs []string       `json:"available_tabs"`
	DurationMs    int64          `json:"duration_ms"`
}

// SessionStatus describes the current dashboard session.
type SessionStatus struct {
	Authenticated bool      `json:"authenticated"`
	Username      string    `json:"username,omitempty"`
	Busy          bool      `json:"busy"`
	HasMetrics    bool      `json:"has_metrics"`
	ActiveTab     string    `json:"active_tab,omitempty"`
	SourceFile    string    `json:"source_file,omitempty"`
	LastRunID     string    `json:"last_run_id,omitempty"`
	LoadedAt      time.Time `json:"loaded_at,omitempty"`
}

// DashboardService owns the session state: the parsed datasets, the computed
// metrics snapshot, the active tab, and the run-in-flight flag. All state
// transitions go through it; handlers never touch the snapshot directly.
type DashboardService struct {
	parser    *ingest.Parser
	validator *validation.UploadValidator
	hub       Broadcaster
	metrics   *infrastructure.Metrics
	uploadCfg config.UploadConfig
	logger    *slog.Logger

	mu            sync.RWMutex
	busy          bool
	authenticated bool
	username      string
	datasets      *domain.Datasets
	dashboard     *domain.DashboardMetrics
	activeTab     string
	sourceFile    string
	lastRunID     string
	loadedAt      time.Time
}

// NewDashboardService creates the dashboard service with injected dependencies.
func NewDashboardService(parser *ingest.Parser, hub Broadcaster, metrics *infrastructure.Metrics, uploadCfg config.UploadConfig, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		parser:    parser,
		validator: validation.NewUploadValidator(logger),
		hub:       hub,
		metrics:   metrics,
		uploadCfg: uploadCfg,
		logger:    logger.With(slog.String("component", "dashboard_service")),
	}
}

// Login marks the session as authenticated. There is no credential store;
// this mirrors the single-operator flow where login only gates the UI.
func (s *DashboardService) Login(ctx context.Context, username string) SessionStatus {
	s.mu.Lock()
	s.authenticated = true
	s.username = username
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session authenticated", slog.String("username", username))
	return s.Status()
}

// Logout drops authentication and clears all loaded data.
func (s *DashboardService) Logout(ctx context.Context) SessionStatus {
	s.mu.Lock()
	s.authenticated = false
	s.username = ""
	s.clearLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session closed")
	return s.Status()
}

// Upload runs the full ingestion pipeline: parse the uploaded workbook,
// compute the metrics snapshot, and replace the session state. Only one run
// may be in flight; a second upload is rejected with a conflict.
func (s *DashboardService) Upload(ctx context.Context, r io.Reader, filename string) (*UploadResult, error) {
	ext := filepath.Ext(filename)
	if !s.uploadCfg.ExtensionAllowed(ext) {
		return nil, apierrors.UnsupportedFileTypeError(ext)
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, apierrors.ErrPipelineRunning
	}
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	runID := uuid.New().String()
	start := time.Now()

	logger := s.logger.With(
		slog.String("run_id", runID),
		slog.String("filename", filename),
	)
	logger.InfoContext(ctx, "ingestion run started")
	s.broadcastProgress(runID, "received", 10, "upload received")

	fail := func(err error) error {
		s.recordRun("failed", start)
		logger.ErrorContext(ctx, "ingestion run failed",
			slog.String("error", err.Error()))
		s.broadcastComplete(runID, false, err.Error())
		return apierrors.ParseFailedError(err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fail(fmt.Errorf("failed to read upload: %w", err))
	}
	if err := s.validator.Validate(filename, data); err != nil {
		return nil, fail(err)
	}

	s.broadcastProgress(runID, "parsing", 40, "parsing workbook")
	datasets, err := s.parser.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fail(err)
	}

	s.broadcastProgress(runID, "aggregating", 75, "computing metrics")
	dashboard := analytics.Compute(datasets)

	s.mu.Lock()
	s.datasets = datasets
	s.dashboard = dashboard
	s.sourceFile = filename
	s.lastRunID = runID
	s.loadedAt = time.Now()
	tabs := dashboard.AvailableTabs()
	if len(tabs) > 0 {
		s.activeTab = tabs[0]
	} else {
		s.activeTab = ""
	}
	s.mu.Unlock()

	s.recordRun("success", start)
	s.recordRows(datasets)

	result := &UploadResult{
		RunID:         runID,
		Filename:      filename,
		RowCounts:     rowCounts(datasets),
		AvailableTabs: tabs,
		DurationMs:    time.Since(start).Milliseconds(),
	}

	logger.InfoContext(ctx, "ingestion run completed",
		slog.Int("courses", len(datasets.Training)),
		slog.Int("evaluations", len(datasets.Evaluations)),
		slog.Duration("duration", time.Since(start)))

	s.broadcastProgress(runID, "complete", 100, "metrics ready")
	s.broadcastComplete(runID, true, "metrics ready")
	if s.hub != nil {
		s.hub.BroadcastMetricsUpdated(tabs)
	}

	return result, nil
}

// Metrics returns the current snapshot, or a not-found error when no
// workbook has been loaded.
func (s *DashboardService) Metrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dashboard == nil {
		return nil, apierrors.ErrMetricsNotFound
	}
	return s.dashboard, nil
}

// Datasets returns the parsed record collections backing the snapshot, used
// by the CSV export endpoint.
func (s *DashboardService) Datasets(ctx context.Context) (*domain.Datasets, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.datasets == nil {
		return nil, apierrors.ErrMetricsNotFound
	}
	return s.datasets, nil
}

// Tabs returns the tabs that have data in the current snapshot.
func (s *DashboardService) Tabs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dashboard == nil {
		return nil, apierrors.ErrMetricsNotFound
	}
	return s.dashboard.AvailableTabs(), nil
}

// SetActiveTab switches the session's active tab. The tab must be one the
// snapshot can serve.
func (s *DashboardService) SetActiveTab(ctx context.Context, tab string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dashboard == nil {
		return apierrors.ErrMetricsNotFound
	}
	for _, available := range s.dashboard.AvailableTabs() {
		if available == tab {
			s.activeTab = tab
			return nil
		}
	}
	return apierrors.ErrValidation("tab", fmt.Sprintf("tab %q has no data", tab))
}

// Reset clears the loaded datasets and metrics while keeping the session
// authenticated.
func (s *DashboardService) Reset(ctx context.Context) SessionStatus {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dashboard reset")
	return s.Status()
}

// Status reports the current session state.
func (s *DashboardService) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionStatus{
		Authenticated: s.authenticated,
		Username:      s.username,
		Busy:          s.busy,
		HasMetrics:    s.dashboard != nil,
		ActiveTab:     s.activeTab,
		SourceFile:    s.sourceFile,
		LastRunID:     s.lastRunID,
		LoadedAt:      s.loadedAt,
	}
}

// Busy reports whether an ingestion run is in flight.
func (s *DashboardService) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

func (s *DashboardService) clearLocked() {
	s.datasets = nil
	s.dashboard = nil
	s.activeTab = ""
	s.sourceFile = ""
	s.lastRunID = ""
	s.loadedAt = time.Time{}
}

func (s *DashboardService) broadcastProgress(runID, stage string, progress int, message string) {
	if s.hub != nil {
		s.hub.BroadcastProgress(runID, stage, progress, message)
	}
}

func (s *DashboardService) broadcastComplete(runID string, success bool, message string) {
	if s.hub != nil {
		s.hub.BroadcastComplete(runID, success, message)
	}
}

func (s *DashboardService) recordRun(status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.PipelineRunsTotal.WithLabelValues(status).Inc()
	s.metrics.PipelineRunDuration.Observe(time.Since(start).Seconds())
}

func (s *DashboardService) recordRows(ds *domain.Datasets) {
	if s.metrics == nil {
		return
	}
	for dataset, count := range rowCounts(ds) {
		s.metrics.RowsIngestedTotal.WithLabelValues(dataset).Add(float64(count))
	}
}

func rowCounts(ds *domain.Datasets) map[string]int {
	return map[string]int{
		string(domain.DatasetCourses):        len(ds.Training),
		string(domain.DatasetEvaluations):    len(ds.Evaluations),
		string(domain.DatasetQuestions):      len(ds.Questions),
		string(domain.DatasetOpenSurvey):     len(ds.Surveys),
		string(domain.DatasetMultipleChoice): len(ds.MultipleChoice),
	}
}
