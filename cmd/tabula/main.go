package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/internal/cli"
	"github.com/ajitpratap0/tabula/pkg/logger"
	"github.com/ajitpratap0/tabula/pkg/metrics"
	"github.com/ajitpratap0/tabula/pkg/tracing"
)

var version = "0.1.0"

type app struct {
	v          *viper.Viper
	configFile string
	output     string
	engine     *cli.Engine
	shutdown   tracing.ShutdownFunc
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	err := a.rootCommand().ExecuteContext(ctx)
	a.finish()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *app {
	return &app{v: cli.NewViper()}
}

func newRootCommand() *cobra.Command {
	return newApp().rootCommand()
}

func (a *app) rootCommand() *cobra.Command {

	root := &cobra.Command{
		Use:   "tabula",
		Short: "Tabula - labelled two-dimensional tables",
		Long: `Tabula loads labelled tables from JSON documents, aligns them on their row
and column labels and runs arithmetic, reindexing, cumulative sums, shifts and
cross-sections over them.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&a.output, "output", "o", "table", "Output format (table, json, ndjson)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-encoding", "", "Log encoding (console, json)")
	flags.Bool("metrics", true, "Record Prometheus metrics")
	flags.Bool("trace", false, "Write an OpenTelemetry span per operation to stderr")
	flags.Int("max-rows", 0, "Rows shown by the table output before truncating (0 = unlimited)")
	flags.Int("precision", 0, "Decimals shown for float cells")

	bindings := map[string]string{
		cli.KeyLogLevel:       "log-level",
		cli.KeyLogEncoding:    "log-encoding",
		cli.KeyMetricsEnabled: "metrics",
		cli.KeyTracingEnabled: "trace",
		cli.KeyMaxRows:        "max-rows",
		cli.KeyPrecision:      "precision",
	}
	for key, name := range bindings {
		// only flags set on the command line take precedence over file and env
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		versionCommand(),
		a.showCommand(),
		a.combineCommand(),
		a.reindexCommand(),
		a.cumsumCommand(),
		a.transposeCommand(),
		a.shiftCommand(),
		a.xsCommand(),
		a.convertCommand(),
	)
	return root
}

// setup resolves configuration, initializes logging and metrics and builds
// the engine
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := cli.LoadConfig(a.v, a.configFile)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	metrics.SetEnabled(cfg.Metrics.Enabled)
	if cfg.Tracing.Enabled {
		a.shutdown, err = tracing.Init(tracing.Config{
			ServiceName:    cfg.Name,
			ServiceVersion: version,
			SamplingRate:   cfg.Tracing.SamplingRate,
			Output:         cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
	}

	a.engine, err = cli.NewEngine(cfg, a.output, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger.With(zap.String("component", "tabula-cli")).Debug("configuration resolved",
		zap.String("command", cmd.Name()),
		zap.String("fill_method", cfg.Alignment.FillMethod),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("tracing", cfg.Tracing.Enabled),
		zap.String("output", a.output))
	return nil
}

// finish flushes spans and logs once the command has run
func (a *app) finish() {
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdown(ctx); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
		a.shutdown = nil
	}
	_ = logger.Sync()
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tabula v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Load a table and print it",
		Long:  "Load a table document (\"-\" reads stdin) and write it in the selected output format.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.engine.Show(cmd.Context(), args[0])
		},
	}
}

func (a *app) combineCommand() *cobra.Command {
	var (
		op     string
		scalar string
	)
	cmd := &cobra.Command{
		Use:   "combine <left> [right]",
		Short: "Align two tables and combine them elementwise",
		Long: `Align two tables on the union of their rows and columns and apply an
arithmetic operation to every cell. Cells missing from either side are null.
With --scalar the single table is combined with a constant instead.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if scalar != "" {
				if len(args) != 1 {
					return fmt.Errorf("--scalar takes exactly one table")
				}
				value, err := strconv.ParseFloat(scalar, 64)
				if err != nil {
					return fmt.Errorf("invalid scalar %q: %w", scalar, err)
				}
				return a.engine.CombineScalar(cmd.Context(), args[0], value, op)
			}
			if len(args) != 2 {
				return fmt.Errorf("combine needs two tables or --scalar")
			}
			return a.engine.Combine(cmd.Context(), args[0], args[1], op)
		},
	}
	cmd.Flags().StringVar(&op, "op", "add", "Operation (add, sub, mul, div, pow)")
	cmd.Flags().StringVar(&scalar, "scalar", "", "Combine with a constant instead of a second table")
	return cmd
}

func (a *app) reindexCommand() *cobra.Command {
	var (
		rows   string
		method string
	)
	cmd := &cobra.Command{
		Use:   "reindex <file>",
		Short: "Conform a table to new row labels",
		Long: `Conform a table to the comma-separated --rows labels. Labels absent from the
table are null unless a fill method is given. The default method comes from
alignment.fill_method.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.engine.Reindex(cmd.Context(), args[0], cli.ParseLabels(rows), method)
		},
	}
	cmd.Flags().StringVar(&rows, "rows", "", "Comma-separated target row labels")
	cmd.Flags().StringVar(&method, "method", "", "Fill method (none, pad, backfill)")
	_ = cmd.MarkFlagRequired("rows")
	return cmd
}

func (a *app) cumsumCommand() *cobra.Command {
	var axis string
	cmd := &cobra.Command{
		Use:   "cumsum <file>",
		Short: "Cumulative sum of the numeric columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.engine.CumSum(cmd.Context(), args[0], axis)
		},
	}
	cmd.Flags().StringVar(&axis, "axis", "rows", "Axis to accumulate along (rows, columns)")
	return cmd
}

func (a *app) transposeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transpose <file>",
		Short: "Swap rows and columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.engine.Transpose(cmd.Context(), args[0])
		},
	}
}

func (a *app) shiftCommand() *cobra.Command {
	var (
		periods int
		freq    string
	)
	cmd := &cobra.Command{
		Use:   "shift <file>",
		Short: "Shift values along the rows",
		Long: `Move every value down by --periods rows (negative moves up). With --freq
the row labels are shifted instead, by a numeric step, a Go duration such as
"90m" or a calendar unit such as "3D", "M" or "Y".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.engine.Shift(cmd.Context(), args[0], periods, freq)
		},
	}
	cmd.Flags().IntVarP(&periods, "periods", "p", 1, "Number of periods to shift")
	cmd.Flags().StringVar(&freq, "freq", "", "Shift labels by this offset instead of moving values")
	return cmd
}

func (a *app) xsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "xs <file> <label>",
		Short: "Extract the row with the given label",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.engine.Xs(cmd.Context(), args[0], cli.ParseLabel(args[1]))
		},
	}
}

func (a *app) convertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <src> <dst>",
		Short: "Convert a table between storage formats",
		Long: `Load src and write it to dst. Both ends pick their format from the file
extension: .parquet, .avro, .ndjson or .jsonl records, or JSON documents, each
JSON form optionally compressed (.gz, .zst, .lz4, .sz, .s2).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.engine.Convert(cmd.Context(), args[0], args[1])
		},
	}
}
