// Package config resolves curvegrid settings from defaults, an optional
// YAML file, a .env file and CURVEGRID_* environment variables, in that
// order of increasing precedence. Command line flags are applied on top by
// the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dtkav/curvegrid/internal/analysis"
	"github.com/dtkav/curvegrid/internal/chart"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CURVEGRID_"

// Config holds every tunable of the TUI, the export command and the service.
type Config struct {
	Endpoint    string        `yaml:"endpoint"`
	Timeout     time.Duration `yaml:"timeout"`
	Title       string        `yaml:"title"`
	XLabel      string        `yaml:"x_label"`
	YLabel      string        `yaml:"y_label"`
	ChartWidth  int           `yaml:"chart_width"`
	ChartHeight int           `yaml:"chart_height"`
	ChartPath   string        `yaml:"chart_path"`
	SheetPath   string        `yaml:"sheet_path"`
	LogFile     string        `yaml:"log_file"`
	LogLevel    string        `yaml:"log_level"`
	Listen      string        `yaml:"listen"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Endpoint:    analysis.DefaultEndpoint,
		Timeout:     60 * time.Second,
		Title:       "Graph",
		XLabel:      "Time",
		YLabel:      "Voltage",
		ChartWidth:  chart.DefaultWidth,
		ChartHeight: chart.DefaultHeight,
		ChartPath:   "curvegrid.png",
		SheetPath:   "curvegrid.xlsx",
		LogLevel:    "info",
		Listen:      ":8080",
	}
}

// Load starts from Default, merges the YAML file at path when it exists and
// applies environment overrides. An empty path skips the file. A .env file
// in the working directory is loaded first if present.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"ENDPOINT":   &cfg.Endpoint,
		"TITLE":      &cfg.Title,
		"X_LABEL":    &cfg.XLabel,
		"Y_LABEL":    &cfg.YLabel,
		"CHART_PATH": &cfg.ChartPath,
		"SHEET_PATH": &cfg.SheetPath,
		"LOG_FILE":   &cfg.LogFile,
		"LOG_LEVEL":  &cfg.LogLevel,
		"LISTEN":     &cfg.Listen,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CHART_WIDTH":  &cfg.ChartWidth,
		"CHART_HEIGHT": &cfg.ChartHeight,
	}
	for name, dst := range ints {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv(EnvPrefix + "TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Timeout = d
	}
	return nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		return fmt.Errorf("chart size must be positive, got %dx%d", c.ChartWidth, c.ChartHeight)
	}
	return nil
}

// Meta returns the chart labels as analysis metadata.
func (c Config) Meta() analysis.Meta {
	return analysis.Meta{Title: c.Title, XLabel: c.XLabel, YLabel: c.YLabel}
}
