package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/binpacking/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "binpacking-benchmark: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	kingpinApp := kingpin.New("binpacking-benchmark", "Measures packing strategies over sweeps of item counts")
	opts := registerFlags(kingpinApp)

	if _, err := kingpinApp.Parse(args); err != nil {
		return err
	}

	logger, err := logging.New(*opts.logLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := opts.config()
	if err != nil {
		return err
	}

	logger.Info("starting benchmark",
		zap.Ints("sizes", cfg.Sizes),
		zap.Int("trials", cfg.Trials),
		zap.Uint64("seed", cfg.Seed),
	)

	return execute(ctx, cfg, *opts.format, *opts.output, stdout, logger)
}
