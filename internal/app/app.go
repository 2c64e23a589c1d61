package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"trainpulse/internal/config"
	"trainpulse/internal/errors"
	"trainpulse/internal/infrastructure"
	"trainpulse/internal/ingest"
	custommw "trainpulse/internal/middleware"
	"trainpulse/internal/services"
	handlers "trainpulse/internal/transport/http"
	ws "trainpulse/internal/websocket"
)

const (
	// Version is overridable at build time with -ldflags.
	Version = "1.0.0"
	AppName = "TrainPulse"
)

// BuildTime is set at compile time
var BuildTime = time.Now().Format(time.RFC3339)

// Application is the main dependency container. Everything is wired in
// NewApplication and torn down in Stop.
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	Hub              *ws.Hub
	Metrics          *infrastructure.Metrics
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	Logger           *slog.Logger
}

// NewApplication loads configuration and wires all services, handlers and
// the HTTP router.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the service layer in dependency order.
func (a *Application) initializeServices() {
	hub := ws.NewHub(a.Logger, a.Metrics)
	hub.Start()
	a.Hub = hub

	parser := ingest.NewParser(a.Logger)

	a.DashboardService = services.NewDashboardService(
		parser,
		hub,
		a.Metrics,
		a.Config.Upload,
		a.Logger,
	)

	a.HealthService = services.NewHealthService(
		Version,
		BuildTime,
		a.DashboardService,
		hub,
		a.Logger,
	)
}

// setupRouter configures the HTTP router with all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware first; nothing here wraps the ResponseWriter, so
	// the WebSocket upgrade keeps working.
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	wsHandler := handlers.NewWebSocketHandler(
		a.Hub,
		a.Config.WebSocket,
		a.Config.Security.AllowedOrigins,
		a.Logger,
	)
	r.Get("/ws", wsHandler.ServeHTTP)

	// Prometheus endpoint stays outside the full middleware group so
	// scrapes are cheap and never rate limited.
	r.Handle("/metrics", a.Metrics.Handler())

	errorHandler := errors.NewErrorHandler(a.Logger, false)

	r.Group(func(r chi.Router) {
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.HTTPMetrics(a.Metrics))
		r.Use(custommw.SecurityHeaders)
		r.Use(custommw.Compress(5))

		if a.Config.Security.EnableCORS {
			r.Use(custommw.CORS(a.corsConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r, errorHandler)
	})

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures the API endpoints.
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *errors.ErrorHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommw.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		dashboardHandler := handlers.NewDashboardHandler(
			a.DashboardService,
			a.Logger,
			errorHandler,
			a.Config.Upload.MaxSizeBytes,
		)
		r.Mount("/dashboard", dashboardHandler.Routes())
		r.Mount("/session", dashboardHandler.SessionRoutes())
	})
}

// corsConfig builds the CORS policy from the security configuration.
func (a *Application) corsConfig() custommw.CORSConfig {
	return custommw.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run starts the server and blocks until the context is cancelled or an
// interrupt signal arrives, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("url", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the server, the hub and the log file.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Hub.Stop()
	infrastructure.CloseLogFile()

	a.Logger.Info("application shutdown complete")
	return nil
}
