// Package main provides the CLI entrypoint for tsrescale.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tsrescale/internal/config"
	"github.com/verte-zerg/tsrescale/internal/model"
	"github.com/verte-zerg/tsrescale/internal/pipeline"
	"github.com/verte-zerg/tsrescale/internal/render"
	"github.com/verte-zerg/tsrescale/internal/rescale"
	"github.com/verte-zerg/tsrescale/internal/stats"
)

const (
	defaultDisplayFrom = pipeline.DefaultDisplayYear
	defaultYLimit      = pipeline.DefaultYLimit
	defaultEmptyYear   = string(model.EmptyPropagate)
)

var defaultYears = config.FormatYears(rescale.DefaultYears)

var (
	dataDir       string
	resultDir     string
	yearsFlag     string
	emptyYear     string
	displayFrom   int
	yLimit        float64
	chartWidth    int
	chartHeight   int
	exportParquet bool
	configPath    string
	verbose       bool

	previewWidth  int
	previewHeight int
)

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	log.SetLevel(log.InfoLevel)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tsrescale",
		Short:         "Rescale weekly and hourly series to a trusted monthly series",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
		RunE: runRescaleCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data-dir", config.DefaultDataDir, "directory with monthly_data.csv, weekly_data.csv and hourly_data.csv")
	pf.StringVar(&yearsFlag, "years", defaultYears, "years to rescale (e.g. 2018,2019 or 2018-2022)")
	pf.StringVar(&emptyYear, "empty-year", defaultEmptyYear, "policy for years without month-start samples: propagate, skip or fail")
	pf.IntVar(&displayFrom, "display-from", defaultDisplayFrom, "first year shown in charts and previews")
	pf.Float64Var(&yLimit, "ylim", defaultYLimit, "y-axis ceiling of the capped charts")
	pf.StringVar(&configPath, "config", "", "config file path (default: $XDG_CONFIG_HOME/tsrescale/config.toml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log per-year factors and written files")

	rootCmd.Flags().StringVar(&resultDir, "result-dir", config.DefaultResultDir, "directory for the rescaled CSV and charts")
	rootCmd.Flags().IntVar(&chartWidth, "width", render.DefaultWidth, "chart width in pixels")
	rootCmd.Flags().IntVar(&chartHeight, "height", render.DefaultHeight, "chart height in pixels")
	rootCmd.Flags().BoolVar(&exportParquet, "parquet", false, "also write Parquet copies of the rescaled data and factors")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newFactorsCmd())
	rootCmd.AddCommand(newPreviewCmd())

	return rootCmd
}

func runRescaleCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"data":   cfg.DataDir,
		"result": cfg.ResultDir,
		"years":  config.FormatYears(cfg.Years),
	}).Info("starting rescale")

	start := time.Now()
	res, err := pipeline.Run(cmd.Context(), cfg, log.StandardLogger())
	if err != nil {
		return err
	}
	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("rescale finished")

	summary := stats.BuildSummary(summaryInputs(res), res.Files)
	if err := stats.RenderSummary(cmd.OutOrStdout(), summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := resolveConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		log.WithField("path", path).Info("created config file")
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newFactorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "factors",
		Short: "Print the per-year weekly scale factors without writing files",
		Args:  cobra.NoArgs,
		RunE:  runFactorsCmd,
	}
}

func runFactorsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	in, err := pipeline.Load(cmd.Context(), cfg.DataDir)
	if err != nil {
		return err
	}
	factors, err := rescale.YearFactors(in.Monthly, in.Weekly, cfg.Years)
	if err != nil {
		return fmt.Errorf("failed to compute year factors: %w", err)
	}
	out := cmd.OutOrStdout()
	return stats.RenderYearFactors(out, factors, stats.ColorEnabled(out))
}

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Rescale and draw a terminal preview without writing files",
		Args:  cobra.NoArgs,
		RunE:  runPreviewCmd,
	}
	cmd.Flags().IntVar(&previewWidth, "cols", 0, "plot width in columns (default: fit terminal)")
	cmd.Flags().IntVar(&previewHeight, "rows", 0, "plot height in rows")
	return cmd
}

func runPreviewCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if previewWidth < 0 || previewHeight < 0 {
		return fmt.Errorf("--cols and --rows must be >= 0")
	}
	res, err := pipeline.Rescale(cmd.Context(), cfg, log.StandardLogger())
	if err != nil {
		return err
	}

	width := previewWidth
	if width == 0 {
		width = stats.TerminalPlotWidth()
	}
	from := pipeline.DisplayStart(cfg.DisplayFrom)
	monthly := res.Monthly.Since(from)
	to := lastTime(monthly, res.RescaledWeekly, res.RescaledHourly).Add(time.Nanosecond)
	bin := func(name string, times []time.Time, values []float64) stats.Series {
		return stats.Series{Name: name, Values: stats.BinByTime(times, values, from, to, width)}
	}
	plot := []stats.Series{
		bin("hourly", res.RescaledHourly.Times(), res.RescaledHourly.Values()),
		bin("weekly", res.RescaledWeekly.Times(), res.RescaledWeekly.Values()),
		bin("monthly", monthly.Times(), monthly.Values()),
	}

	out := cmd.OutOrStdout()
	opts := stats.PlotOptions{Width: width, Height: previewHeight}
	title := fmt.Sprintf("Rescaled data since %d", from.Year())
	if err := stats.PlotSeries(out, title, plot, opts); err != nil {
		return fmt.Errorf("failed to draw preview: %w", err)
	}
	opts.Ceiling = cfg.YLimit
	if err := stats.PlotSeries(out, title+fmt.Sprintf(" (0-%g)", cfg.YLimit), plot, opts); err != nil {
		return fmt.Errorf("failed to draw preview: %w", err)
	}
	return stats.RenderSummary(out, stats.BuildSummary(summaryInputs(res), nil))
}

type timed interface {
	Times() []time.Time
}

func lastTime(all ...timed) time.Time {
	var last time.Time
	for _, s := range all {
		for _, ts := range s.Times() {
			if ts.After(last) {
				last = ts
			}
		}
	}
	return last
}

func summaryInputs(res pipeline.Result) stats.Inputs {
	return stats.Inputs{
		Monthly:        res.Monthly,
		Weekly:         res.Weekly,
		Hourly:         res.Hourly,
		RescaledWeekly: res.RescaledWeekly,
		RescaledHourly: res.RescaledHourly,
		YearFactors:    res.YearFactors,
		AnchorFactors:  res.AnchorFactors,
	}
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(resolveConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "data-dir", &dataDir, fileCfg.Paths.DataDir)
	applyStringConfig(cmd, "result-dir", &resultDir, fileCfg.Paths.ResultDir)
	applyStringConfig(cmd, "years", &yearsFlag, fileCfg.Rescale.Years)
	applyStringConfig(cmd, "empty-year", &emptyYear, fileCfg.Rescale.EmptyYear)
	applyIntConfig(cmd, "display-from", &displayFrom, fileCfg.Render.DisplayFrom)
	applyFloatConfig(cmd, "ylim", &yLimit, fileCfg.Render.YLimit)
	applyIntConfig(cmd, "width", &chartWidth, fileCfg.Render.Width)
	applyIntConfig(cmd, "height", &chartHeight, fileCfg.Render.Height)
	applyBoolConfig(cmd, "parquet", &exportParquet, fileCfg.Export.Parquet)

	years, err := config.ParseYears(yearsFlag)
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid --years value: %w", err)
	}
	policy, err := model.ParseEmptyBucketPolicy(emptyYear)
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid --empty-year value: %w", err)
	}
	cfg := model.Config{
		DataDir:       dataDir,
		ResultDir:     resultDir,
		Years:         years,
		EmptyYear:     policy,
		DisplayFrom:   displayFrom,
		YLimit:        yLimit,
		ChartWidth:    chartWidth,
		ChartHeight:   chartHeight,
		ExportParquet: exportParquet,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// The apply helpers leave flags the user set explicitly untouched. Flags that
// a subcommand does not define are reported as unchanged.
func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tsrescale configuration
# Uncomment a value to enable it. CLI flags override config values.

[paths]
# data-dir = %q       # Directory with the monthly/weekly/hourly CSV files
# result-dir = %q  # Output directory for the rescaled CSV and charts

[rescale]
# years = %q           # Years to rescale (list or range)
# empty-year = %q       # Years without month-start samples: propagate, skip or fail

[render]
# display-from = %d          # First year shown in charts
# ylim = %.1f                # Ceiling of the capped charts
# width = %d                 # Chart width in pixels
# height = %d                 # Chart height in pixels

[export]
# parquet = false            # Also write Parquet files
`,
		config.DefaultDataDir,
		config.DefaultResultDir,
		defaultYears,
		defaultEmptyYear,
		defaultDisplayFrom,
		defaultYLimit,
		render.DefaultWidth,
		render.DefaultHeight,
	)
}

func validateConfig(cfg model.Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("--data-dir must not be empty")
	}
	if strings.TrimSpace(cfg.ResultDir) == "" {
		return fmt.Errorf("--result-dir must not be empty")
	}
	if len(cfg.Years) == 0 {
		return fmt.Errorf("--years must name at least one year")
	}
	if cfg.DisplayFrom < 1 || cfg.DisplayFrom > 9999 {
		return fmt.Errorf("--display-from must be a year between 1 and 9999")
	}
	if cfg.YLimit <= 0 {
		return fmt.Errorf("--ylim must be > 0")
	}
	if cfg.ChartWidth <= 0 || cfg.ChartHeight <= 0 {
		return fmt.Errorf("--width and --height must be > 0")
	}
	return nil
}
