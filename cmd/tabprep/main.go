package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/tabprep/pkg/logger"
)

var version = "0.1.0"

// Setting keys shared by flags, TABPREP_* environment variables and viper
const (
	keyLogLevel    = "log-level"
	keyLogEncoding = "log-encoding"
	keyTrace       = "trace"
	keyMetrics     = "metrics"
	keyMemoryLimit = "memory-fraction"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the settings and writers shared by every command
type app struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut}
	a.v.SetEnvPrefix("TABPREP")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "tabprep",
		Short: "tabprep - tabular data quality pipeline",
		Long: `tabprep profiles tabular data and prepares it for modeling.
It imputes missing values, removes outlier rows and scales numeric columns
through a pipeline described in YAML.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.String(keyLogLevel, "warn", "Log level (debug, info, warn, error)")
	flags.String(keyLogEncoding, "console", "Log encoding (json, console)")
	flags.Bool(keyTrace, false, "Write one OpenTelemetry span per step to stderr")
	flags.Bool(keyMetrics, false, "Print Prometheus metrics to stderr when the command ends")
	flags.Float64(keyMemoryLimit, 0.8, "Refuse inputs whose estimated size exceeds this fraction of available memory (0 disables)")
	_ = a.v.BindPFlags(flags)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "tabprep v%s\n", version)
			fmt.Fprintf(a.out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(a.out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(a.runCmd(), a.profileCmd(), a.strategiesCmd())
	return root
}

func (a *app) initLogger() error {
	cfg := logger.DefaultConfig()
	cfg.Level = a.v.GetString(keyLogLevel)
	cfg.Encoding = a.v.GetString(keyLogEncoding)
	return logger.Init(cfg)
}
