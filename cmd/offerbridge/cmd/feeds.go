package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"offerbridge/internal/app"
	"offerbridge/internal/logging"
	"offerbridge/internal/mapper"
	"offerbridge/internal/metrics"
	"offerbridge/internal/offer"
	"offerbridge/internal/parser"
)

type runFlags struct {
	workers     int
	stopOnError bool
}

func (f *runFlags) register(c *cobra.Command) {
	c.Flags().IntVar(&f.workers, "workers", 0, "rows in flight (default IMPORT_WORKERS)")
	c.Flags().BoolVar(&f.stopOnError, "stop-on-error", false, "stop at the first storage error")
}

func (f *runFlags) options(rec *metrics.Recorder) *app.RunOptions {
	opts := &app.RunOptions{
		Workers:         cfg.ImportWorkers,
		ContinueOnError: cfg.ImportContinueOnError && !f.stopOnError,
		Observer:        rec,
	}
	if f.workers > 0 {
		opts.Workers = f.workers
	}
	return opts
}

func flushMetrics(rec *metrics.Recorder) {
	rec.Finish()
	if cfg.MetricsTextfile == "" {
		return
	}
	if err := rec.WriteTextfile(cfg.MetricsTextfile); err != nil {
		logging.Default().Warn().Err(err).Msg("metrics not written")
	}
}

// openInput returns stdin for "-" or no argument.
func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(args[0])
}

func newIngestCmd() *cobra.Command {
	var (
		flags   runFlags
		project string
	)
	c := &cobra.Command{
		Use:   "ingest [file|-]",
		Short: "Apply live CRM rows (JSON array or NDJSON)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if project != "" {
				cfg.PrimaryProjectID = project
			}
			in, err := openInput(args)
			if err != nil {
				return err
			}
			defer in.Close()

			objects, err := parser.DecodeObjects(in)
			if err != nil {
				return err
			}
			rows := make([]mapper.Row, len(objects))
			for i, o := range objects {
				rows[i] = mapper.Row(o)
			}

			return withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				rec := metrics.NewRecorder(offer.SourcePrimary)
				defer flushMetrics(rec)
				stats, err := svc.IngestPrimary(ctx, rows, flags.options(rec))
				if perr := printJSON(cmd.OutOrStdout(), stats); perr != nil && err == nil {
					err = perr
				}
				return err
			})
		},
	}
	flags.register(c)
	c.Flags().StringVar(&project, "project", "", "project for rows that carry none (default PRIMARY_PROJECT_ID)")
	return c
}

func newImportCmd() *cobra.Command {
	var (
		flags      runFlags
		reportDate string
	)
	c := &cobra.Command{
		Use:   "import [file|-]",
		Short: "Import a weekly batch report (CSV or TSV)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(args)
			if err != nil {
				return err
			}
			defer in.Close()

			return withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				rec := metrics.NewRecorder(offer.SourceSecondary)
				defer flushMetrics(rec)
				res, err := svc.ImportSecondary(ctx, in, reportDate, flags.options(rec))
				if perr := printJSON(cmd.OutOrStdout(), res); perr != nil && err == nil {
					err = perr
				}
				return err
			})
		},
	}
	flags.register(c)
	c.Flags().StringVar(&reportDate, "report-date", "", "date stamped on every row (default REPORT_DATE, else today)")
	return c
}

func withService(ctx context.Context, fn func(context.Context, *app.Service) error) error {
	svc, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			logging.Default().Warn().Err(cerr).Msg("close")
		}
	}()
	return fn(ctx, svc)
}
