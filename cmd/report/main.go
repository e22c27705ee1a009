package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ecommerce-eda/internal/config"
	"ecommerce-eda/internal/dataset"
	"ecommerce-eda/internal/models"
	"ecommerce-eda/internal/observability"
	"ecommerce-eda/internal/pipeline"
	"ecommerce-eda/internal/render/charts"
	"ecommerce-eda/internal/render/notebook"
	"ecommerce-eda/internal/render/workbook"
)

var Version = "dev"

type reportFlags struct {
	data   string
	charts string
	xlsx   string
	top    int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Exploratory analysis report for an e-commerce orders file",
		Long: `Load an orders CSV or XLSX file, run the analysis pipeline and print
a notebook-style report. Optionally write PNG charts and an XLSX workbook.

Defaults for --data and --top come from CSV_FILE and REPORT_TOP_CUSTOMERS.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cmd.Flags().Changed("data") {
				flags.data = cfg.Data.File
			}
			if !cmd.Flags().Changed("top") {
				flags.top = cfg.Report.TopCustomers
			}
			logger := observability.NewLoggerTo(cmd.ErrOrStderr(), cfg.Logger)
			return runReport(cmd, flags, logger)
		},
	}

	cmd.Flags().StringVarP(&flags.data, "data", "d", "", "orders file (.csv, .xlsx or .xlsm)")
	cmd.Flags().StringVar(&flags.charts, "charts", "", "directory to write PNG charts into")
	cmd.Flags().StringVar(&flags.xlsx, "xlsx", "", "path of an XLSX workbook to write")
	cmd.Flags().IntVarP(&flags.top, "top", "n", pipeline.DefaultTopCustomers, "number of top customers to list")

	return cmd
}

func runReport(cmd *cobra.Command, flags reportFlags, logger *slog.Logger) error {
	if flags.top < 1 {
		return fmt.Errorf("--top must be at least 1, got %d", flags.top)
	}
	ctx := cmd.Context()
	start := time.Now()

	raw, err := dataset.LoadFile(ctx, flags.data)
	if err != nil {
		return fmt.Errorf("load %s: %w", flags.data, err)
	}

	opts := pipeline.DefaultOptions()
	opts.TopCustomers = flags.top
	report, err := pipeline.Analyze(raw, opts)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", flags.data, err)
	}
	report.GeneratedAt = time.Now()

	logger.Info("dataset analyzed",
		"file", flags.data,
		"records", report.RecordCount,
		"duration", time.Since(start),
	)

	if err := notebook.Render(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if flags.charts != "" {
		paths, err := charts.Write(ctx, flags.charts, report)
		if err != nil {
			return fmt.Errorf("write charts: %w", err)
		}
		logger.Info("charts written", "dir", flags.charts, "count", len(paths))
	}

	if flags.xlsx != "" {
		if err := writeWorkbook(flags.xlsx, report); err != nil {
			return err
		}
		logger.Info("workbook written", "path", flags.xlsx)
	}

	return nil
}

func writeWorkbook(path string, report *models.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()
	return workbook.Write(f, report)
}
