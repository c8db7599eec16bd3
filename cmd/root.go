package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	cfgpkg "github.com/KaramelBytes/loanlens-cli/internal/config"
	"github.com/KaramelBytes/loanlens-cli/internal/dashboard"
	"github.com/KaramelBytes/loanlens-cli/internal/dataset"
	"github.com/KaramelBytes/loanlens-cli/internal/display"
	"github.com/KaramelBytes/loanlens-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Overrides applied on top of config if set
	flagLogLevel  string
	flagLogFormat string
	flagSeed      int64
	flagTestRatio float64
	flagBinWidth  float64
	flagNoColor   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	cacheOnce    sync.Once
	datasetCache *dataset.Cache
)

// errReported marks a failure already shown on the output surface.
var errReported = errors.New("failure reported above")

var rootCmd = &cobra.Command{
	Use:           "loanlens",
	Short:         "LoanLens CLI: explore a loan dataset and predict loan amounts by age",
	Long:          `LoanLens loads a loan CSV, summarises it, derives charts, fits a linear regression of loan amount on applicant age and predicts amounts. Run it from the terminal or serve the same dashboard over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "✗ Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.loanlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "train/test split seed (overrides config)")
	rootCmd.PersistentFlags().Float64Var(&flagTestRatio, "test-ratio", 0, "held-out fraction in (0,1) (overrides config)")
	rootCmd.PersistentFlags().Float64Var(&flagBinWidth, "bin-width", 0, "age histogram bin width (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable coloured messages")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") && flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if f.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if f.Changed("test-ratio") && flagTestRatio > 0 {
		cfg.TestRatio = flagTestRatio
	}
	if f.Changed("bin-width") && flagBinWidth > 0 {
		cfg.HistogramBinWidth = flagBinWidth
	}

	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
}

// sharedCache returns the process-wide dataset cache.
func sharedCache() *dataset.Cache {
	cacheOnce.Do(func() {
		datasetCache = dataset.NewCache(time.Duration(cfg.CacheTTLSec) * time.Second)
	})
	return datasetCache
}

// serviceOptions maps the effective configuration onto component options.
func serviceOptions() dashboard.Options {
	opts := dashboard.DefaultOptions()
	opts.DatasetPath = cfg.DatasetPath
	opts.Describe.SampleRows = cfg.SampleRows
	opts.Charts.BinWidth = cfg.HistogramBinWidth
	opts.Train.Seed = cfg.Seed
	opts.Train.TestRatio = cfg.TestRatio
	opts.ChartDir = cfg.ChartDir
	return opts
}

func newService(opts dashboard.Options) *dashboard.Service {
	return dashboard.NewService(sharedCache(), opts)
}

// datasetArg returns the optional positional file or the configured dataset path.
func datasetArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return cfg.DatasetPath
}

func newTerminal(w io.Writer) *display.Terminal {
	t := display.NewTerminal(w)
	t.Color = !flagNoColor && isTerminal(w)
	return t
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// renderTerminal runs one pass onto the command's stdout. Failures the pass
// reported itself come back as errReported.
func renderTerminal(ctx context.Context, cmd *cobra.Command, opts dashboard.Options, req dashboard.Request) (*dashboard.Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	oc, err := newService(opts).Render(ctx, req, newTerminal(cmd.OutOrStdout()))
	if err != nil {
		return nil, err
	}
	if oc.FileMissing || oc.TrainErr != nil {
		return oc, errReported
	}
	return oc, nil
}
