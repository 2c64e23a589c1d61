package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "trainpulse/internal/errors"
	"trainpulse/internal/exporter"
	"trainpulse/internal/services"
	"trainpulse/pkg/contracts/domain"
)

// DashboardHandler handles workbook upload and metrics retrieval with
// RFC 7807 compliant errors.
type DashboardHandler struct {
	service        *services.DashboardService
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service *services.DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *DashboardHandler {
	return &DashboardHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "dashboard_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the dashboard routes with proper Chi patterns
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/upload", h.Upload)
	r.Get("/metrics", h.Metrics)
	r.Get("/tabs", h.Tabs)
	r.Put("/tabs/{tab}", h.SetActiveTab)
	r.Get("/export/{dataset}", h.Export)
	r.Get("/status", h.Status)
	r.Delete("/", h.Reset)

	return r
}

// SessionRoutes returns the session routes.
func (h *DashboardHandler) SessionRoutes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	return r
}

// Upload handles POST /api/dashboard/upload. The multipart field name is
// "file"; size and extension limits come from the upload configuration.
func (h *DashboardHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.PayloadTooLargeError(h.maxUploadBytes))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	h.logger.InfoContext(r.Context(), "upload received",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	result, err := h.service.Upload(r.Context(), file, header.Filename)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "upload failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

// Metrics handles GET /api/dashboard/metrics
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.Metrics(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   metrics,
	})
}

// Tabs handles GET /api/dashboard/tabs
func (h *DashboardHandler) Tabs(w http.ResponseWriter, r *http.Request) {
	tabs, err := h.service.Tabs(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"tabs":       tabs,
			"active_tab": h.service.Status().ActiveTab,
		},
	})
}

// SetActiveTab handles PUT /api/dashboard/tabs/{tab}
func (h *DashboardHandler) SetActiveTab(w http.ResponseWriter, r *http.Request) {
	tab := strings.TrimSpace(chi.URLParam(r, "tab"))
	if tab == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("tab", "tab name is required"))
		return
	}

	if err := h.service.SetActiveTab(r.Context(), tab); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Status(),
	})
}

// Export handles GET /api/dashboard/export/{dataset}. It streams one record
// collection as a CSV attachment.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	dataset := domain.Dataset(chi.URLParam(r, "dataset"))

	datasets, err := h.service.Datasets(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	table, err := exporter.DatasetTable(datasets, dataset)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("dataset", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(dataset)+".csv"))

	if err := exporter.WriteCSV(w, table); err != nil {
		// Headers are already out; all we can do is log.
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("dataset", string(dataset)),
			slog.String("error", err.Error()))
	}
}

// Status handles GET /api/dashboard/status
func (h *DashboardHandler) Status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Status(),
	})
}

// Reset handles DELETE /api/dashboard
func (h *DashboardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "dashboard reset requested",
		slog.String("request_id", middleware.GetReqID(r.Context())))

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Reset(r.Context()),
	})
}

type loginRequest struct {
	Username string `json:"username"`
}

// Login handles POST /api/session/login
func (h *DashboardHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("username", "username is required"))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Login(r.Context(), strings.TrimSpace(req.Username)),
	})
}

// Logout handles POST /api/session/logout
func (h *DashboardHandler) Logout(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Logout(r.Context()),
	})
}
