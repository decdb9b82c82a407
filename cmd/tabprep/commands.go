package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabprep/internal/pipeline"
	"github.com/ajitpratap0/tabprep/pkg/config"
	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
	"github.com/ajitpratap0/tabprep/pkg/impute"
	"github.com/ajitpratap0/tabprep/pkg/json"
	"github.com/ajitpratap0/tabprep/pkg/logger"
	"github.com/ajitpratap0/tabprep/pkg/metrics"
	"github.com/ajitpratap0/tabprep/pkg/observability"
	"github.com/ajitpratap0/tabprep/pkg/outlier"
	"github.com/ajitpratap0/tabprep/pkg/profile"
	"github.com/ajitpratap0/tabprep/pkg/scale"
	"github.com/ajitpratap0/tabprep/pkg/steps"
	"github.com/ajitpratap0/tabprep/pkg/tableio"
)

func (a *app) runCmd() *cobra.Command {
	var input, pipelineFile, output, report string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline over a table",
		Long: `Run loads a CSV or JSON table, applies the steps of a pipeline file and
writes the result. Compressed inputs and outputs (.gz, .zst, .sz, .s2, .lz4)
are handled by extension.

Example:
  tabprep run --input people.csv --pipeline prep.yaml --output clean.csv.gz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, input, pipelineFile, output, report)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input table (.csv, .tsv or .json, optionally compressed)")
	cmd.Flags().StringVarP(&pipelineFile, "pipeline", "p", "", "Pipeline YAML file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output table; defaults to CSV on stdout")
	cmd.Flags().StringVar(&report, "report", "", "Write a statistics report of the result as JSON")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("pipeline")
	return cmd
}

func (a *app) run(ctx context.Context, input, pipelineFile, output, report string) (err error) {
	def, err := config.LoadPipeline(pipelineFile)
	if err != nil {
		return err
	}
	if def.Logging.Level != "" && !a.v.IsSet(keyLogLevel) {
		if err := logger.Init(def.Logging); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid logging section")
		}
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	defer func() {
		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusFailure
		}
		collector.ObserveRun(status)
		if a.v.GetBool(keyMetrics) {
			a.writeMetrics(reg)
		}
	}()

	sinks := pipeline.MultiSink{
		pipeline.NewLoggerSink(logger.Get()),
		pipeline.NewMetricsSink(collector),
	}
	if a.v.GetBool(keyTrace) {
		tp, err := a.tracerProvider()
		if err != nil {
			return err
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()
		sinks = append(sinks, pipeline.NewTracingSink(observability.Tracer(tp)))
	}

	p, err := pipeline.New(def.Steps, pipeline.WithSink(sinks))
	if err != nil {
		return err
	}

	ds, err := a.load(input)
	if err != nil {
		return err
	}

	log := logger.Get().With(zap.String("pipeline", def.Name), zap.String("input", input))
	log.Info("executing pipeline", zap.Int("steps", p.Len()), zap.Int("rows", ds.NumRows()))

	res, err := p.Run(ctx, ds)
	if err != nil {
		return err
	}
	log = log.With(zap.String("run_id", res.RunID))
	for _, w := range res.Warnings() {
		fmt.Fprintf(a.errOut, "warning: %s\n", w)
	}

	if err := a.write(output, res.Dataset); err != nil {
		return err
	}
	if report != "" {
		if err := writeJSONFile(report, profile.New(res.Dataset).Report()); err != nil {
			return err
		}
	}
	log.Info("pipeline completed", zap.Int("rows", res.Dataset.NumRows()))
	return nil
}

func (a *app) profileCmd() *cobra.Command {
	var input, target string
	var sample int

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print column statistics of a table as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.load(input)
			if err != nil {
				return err
			}
			if sample > 0 {
				ds = profile.New(ds).Sample(sample)
			}
			out := profileOutput{}
			if target != "" {
				features, col, err := profile.New(ds).SplitTarget(target)
				if err != nil {
					return err
				}
				ds = features
				out.Target = &profileTarget{Name: col.Name(), Summary: profile.New(dataset.MustNew(col)).Describe()[0]}
			}
			out.Report = profile.New(ds).Report()
			return encodeJSON(a.out, out)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input table")
	cmd.Flags().StringVar(&target, "target", "", "Report this column separately from the features")
	cmd.Flags().IntVar(&sample, "sample", 0, "Profile a random sample of this many rows")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

type profileTarget struct {
	Name    string                `json:"name"`
	Summary profile.ColumnSummary `json:"summary"`
}

type profileOutput struct {
	profile.Report
	Target *profileTarget `json:"target,omitempty"`
}

func (a *app) strategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List step kinds and the strategies of every component",
		Run: func(cmd *cobra.Command, args []string) {
			list := func(title string, names []string) {
				fmt.Fprintf(a.out, "%s:\n", title)
				for _, n := range names {
					fmt.Fprintf(a.out, "  - %s\n", n)
				}
			}
			list("Step kinds", steps.KindNames())
			list("Impute strategies", impute.StrategyNames())
			list("Scale strategies", scale.StrategyNames())
			list("Outlier strategies", outlier.StrategyNames())
		},
	}
}

// load reads a table after checking it fits in memory
func (a *app) load(path string) (*dataset.Dataset, error) {
	if err := checkMemory(path, a.v.GetFloat64(keyMemoryLimit)); err != nil {
		return nil, err
	}
	return tableio.ReadFile(path, tableio.CSVOptions{})
}

func (a *app) write(path string, ds *dataset.Dataset) error {
	if path == "" {
		return tableio.WriteCSV(a.out, ds, tableio.CSVOptions{})
	}
	return tableio.WriteFile(path, ds, tableio.CSVOptions{})
}

func (a *app) tracerProvider() (*trace.TracerProvider, error) {
	cfg := observability.DefaultTracingConfig()
	cfg.ServiceVersion = version
	cfg.Exporter = observability.ExporterStdout
	cfg.Output = a.errOut
	tp, err := observability.NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	observability.Install(tp)
	return tp, nil
}

func (a *app) writeMetrics(g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		logger.Warn("failed to gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.errOut, mf); err != nil {
			logger.Warn("failed to write metrics", zap.Error(err))
			return
		}
	}
}

func writeJSONFile(path string, v interface{}) (err error) {
	f, err := os.Create(path) //nolint:gosec // G304: path is supplied by the operator
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create "+path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, errors.ErrorTypeFile, "failed to close "+path)
		}
	}()
	return encodeJSON(f, v)
}

func encodeJSON(w io.Writer, v interface{}) error {
	if err := json.EncodeIndent(w, v); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode json")
	}
	return nil
}
