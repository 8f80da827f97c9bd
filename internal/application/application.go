package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eugenenazirov/binpacking/internal/api"
	"github.com/eugenenazirov/binpacking/internal/benchmark"
	"github.com/eugenenazirov/binpacking/internal/config"
	"github.com/eugenenazirov/binpacking/internal/metrics"
	"github.com/eugenenazirov/binpacking/internal/packing"
	"github.com/eugenenazirov/binpacking/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage  storage.Storage
	packer   packing.Packer
	handler  *api.Handler
	router   http.Handler
	registry *prometheus.Registry
	logger   *zap.Logger
	server   *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.SetSettings(storage.Settings{Capacity: cfg.Capacity, Strategy: cfg.Strategy}); err != nil {
		return nil, fmt.Errorf("failed to apply initial settings: %w", err)
	}

	var (
		recorder metrics.Recorder = metrics.NewNop()
		registry *prometheus.Registry
		metricsH http.Handler
	)
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewPrometheus(registry, "")
		metricsH = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	packer := packing.New()
	harness := benchmark.New(packer, benchmark.WithLogger(logger.Named("benchmark")))
	handler := api.NewHandler(packer, store,
		api.WithMetrics(recorder),
		api.WithHarness(harness),
		api.WithBenchmarkLimits(api.BenchmarkLimits{
			MaxSizes:  cfg.Benchmark.MaxSizes,
			MaxItems:  cfg.Benchmark.MaxItems,
			MaxTrials: cfg.Benchmark.MaxTrials,
		}),
	)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	rootHandler := BuildRootHandler(apiRouter, cfg.MetricsPath, metricsH)

	return &App{
		storage:  store,
		packer:   packer,
		handler:  handler,
		router:   apiRouter,
		registry: registry,
		logger:   logger,
		server:   NewServer(cfg, rootHandler),
	}, nil
}

// BuildRootHandler constructs the root HTTP handler that routes API requests
// and, when metricsHandler is non-nil, serves it at metricsPath.
func BuildRootHandler(apiHandler http.Handler, metricsPath string, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	if metricsHandler != nil {
		mux.Handle("GET "+metricsPath, metricsHandler)
	}
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
