package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dtkav/curvegrid/internal/analysis"
	"github.com/dtkav/curvegrid/internal/chart"
	"github.com/dtkav/curvegrid/internal/config"
	"github.com/dtkav/curvegrid/internal/grid"
	"github.com/dtkav/curvegrid/internal/sheetio"
)

// -------------------------
// Main
// -------------------------

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// flags are the command line overrides shared by every command.
type flags struct {
	config   string
	endpoint string
	sheet    string
	chart    string
	logFile  string
	logLevel string
	listen   string
	width    int
	height   int
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:          "curvegrid",
		Short:        "Edit tabular data in the terminal and fit smooth curves through it",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			return runTUI(cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", "curvegrid.yaml", "YAML config file")
	pf.StringVar(&f.endpoint, "endpoint", "", "analysis service URL")
	pf.StringVar(&f.sheet, "sheet", "", "workbook used by save and open")
	pf.StringVar(&f.chart, "png", "", "PNG file written by export")
	pf.StringVar(&f.logFile, "log-file", "", "append logs to this file")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	pf.IntVar(&f.width, "width", 0, "PNG width in pixels")
	pf.IntVar(&f.height, "height", 0, "PNG height in pixels")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the curve fitting service over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	serve.Flags().StringVar(&f.listen, "listen", "", "address to listen on")

	export := &cobra.Command{
		Use:   "export <workbook.xlsx>",
		Short: "Analyze a saved workbook and write the graph as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
		},
	}

	root.AddCommand(serve, export)
	return root
}

// load resolves the config and applies the flags that were set.
func (f *flags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return cfg, err
	}
	set := cmd.Flags().Changed
	if set("endpoint") {
		cfg.Endpoint = f.endpoint
	}
	if set("sheet") {
		cfg.SheetPath = f.sheet
	}
	if set("png") {
		cfg.ChartPath = f.chart
	}
	if set("log-file") {
		cfg.LogFile = f.logFile
	}
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set("width") {
		cfg.ChartWidth = f.width
	}
	if set("height") {
		cfg.ChartHeight = f.height
	}
	if cmd.Flags().Lookup("listen") != nil && set("listen") {
		cfg.Listen = f.listen
	}
	return cfg, cfg.Validate()
}

// newLogger writes to cfg.LogFile, or to fallback when no file is set.
// The returned closer releases the file.
func newLogger(cfg config.Config, fallback io.Writer) (*slog.Logger, func() error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	w, closer := fallback, func() error { return nil }
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = file, file.Close
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer, nil
}

// runTUI starts the editor on the sample data. The terminal belongs to
// the UI, so logs only go to a file.
func runTUI(cfg config.Config) error {
	logger, closeLog, err := newLogger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	client := analysis.NewClient(cfg.Endpoint, cfg.Timeout, logger)
	m := newModel(grid.NewDefault(), cfg, client, logger)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		logger.Error("program exited", "error", err)
		return err
	}
	return nil
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger, closeLog, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return analysis.ListenAndServe(ctx, cfg.Listen, logger)
}

// runExport loads a workbook, sends it for analysis and renders the reply.
func runExport(ctx context.Context, cfg config.Config, path string, out io.Writer) error {
	logger, closeLog, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	g, meta, err := sheetio.Load(path)
	if err != nil {
		return err
	}
	defaults := cfg.Meta()
	if meta.Title == "" {
		meta.Title = defaults.Title
	}
	if meta.XLabel == "" {
		meta.XLabel = defaults.XLabel
	}
	if meta.YLabel == "" {
		meta.YLabel = defaults.YLabel
	}

	req, err := analysis.BuildRequest(g, meta)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	resp, err := analysis.NewClient(cfg.Endpoint, cfg.Timeout, logger).Analyze(ctx, req)
	if err != nil {
		return err
	}

	file, err := os.Create(cfg.ChartPath)
	if err != nil {
		return err
	}
	opts := chart.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight}
	if err := chart.RenderPNG(file, resp, opts); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d series", cfg.ChartPath, len(resp.Series))
	if in := resp.Intersection; in != nil {
		fmt.Fprintf(out, ", intersection at time %g voltage %g", in.Time, in.Voltage)
	}
	fmt.Fprintln(out)
	return nil
}
