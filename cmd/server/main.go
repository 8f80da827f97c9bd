package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/binpacking/internal/application"
	"github.com/eugenenazirov/binpacking/internal/config"
	"github.com/eugenenazirov/binpacking/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("binpacking-server", "Bin Packing Service - packs fractional items into the fewest fixed-capacity bins")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	capacityFlag := kingpinApp.Flag("capacity", "Default bin capacity").Default("-1").Float64()
	strategy := kingpinApp.Flag("strategy", "Default packing strategy (next-fit, first-fit, best-fit, ffd, bfd, exact)").String()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *capacityFlag > 0 {
		overrides.Capacity = capacityFlag
	}

	if *strategy != "" {
		overrides.Strategy = strategy
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	logger.Info("packing defaults",
		zap.Float64("capacity", cfg.Capacity),
		zap.String("strategy", cfg.Strategy.String()),
		zap.Bool("metrics", cfg.MetricsEnabled),
	)

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("shutting down server", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
