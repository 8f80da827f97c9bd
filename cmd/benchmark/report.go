package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/binpacking/internal/benchmark"
	"github.com/eugenenazirov/binpacking/internal/packing"
)

var createReportFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func execute(ctx context.Context, cfg benchmark.Config, format, output string, stdout io.Writer, logger *zap.Logger) (err error) {
	harness := benchmark.New(packing.New(), benchmark.WithLogger(logger))
	report, err := harness.Run(ctx, cfg)
	if err != nil {
		return fmt.Errorf("run benchmark: %w", err)
	}
	logger.Info("benchmark completed", zap.Duration("elapsed", report.Elapsed))

	w := stdout
	if output != "" {
		f, createErr := createReportFile(output)
		if createErr != nil {
			return fmt.Errorf("create report file: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close report file: %w", closeErr)
			}
		}()
		w = f
	}

	return writeReport(w, report, format)
}

func writeReport(w io.Writer, report benchmark.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		return writeTable(w, report)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// writeTable prints one row per strategy and size.
func writeTable(w io.Writer, report benchmark.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "STRATEGY\tN\tMEAN TIME\tMEAN BINS\tUTILIZATION\n")
	for _, series := range report.Series {
		for _, p := range series.Points {
			if p.Skipped {
				fmt.Fprintf(tw, "%s\t%d\t-\t-\t-\n", series.Strategy, p.N)
				continue
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.4f\n",
				series.Strategy, p.N, p.MeanTime, strconv.FormatFloat(p.MeanBins, 'f', 2, 64), p.MeanUtilization)
		}
	}
	return tw.Flush()
}
