// Package config loads and persists user configuration. Defaults are
// applied to missing keys and the result is validated before use, so
// the rest of the program can trust every field.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/contactkeval/volsuite/internal/logger"
)

// Config holds all user-tunable settings.
type Config struct {
	// DefaultTicker is loaded into the session at startup when set.
	DefaultTicker string `yaml:"default_ticker"`
	// DisplayMaxRows caps table output; 0 means unlimited.
	DisplayMaxRows int `yaml:"display_max_rows" default:"50" validate:"gte=0"`
	// ExportFolder receives CSV exports, relative to the working dir.
	ExportFolder string `yaml:"export_folder" default:"exports" validate:"required"`
	// HVRollingWindows are the rolling windows computed by the hv
	// command, in bars.
	HVRollingWindows []int `yaml:"hv_rolling_windows" default:"[5,10,20,50]" validate:"min=1,dive,gte=2"`
	// IVSurfaceRange is the moneyness half-range kept when rendering a
	// surface: 0.2 keeps strikes within 80%..120% of spot.
	IVSurfaceRange float64 `yaml:"iv_surface_range" default:"0.2" validate:"gt=0,lte=1"`
	// IVSurfaceRes is the rendering resolution of the surface plot.
	IVSurfaceRes int `yaml:"iv_surface_res" default:"25" validate:"gt=0"`
	// PlotGrid toggles the background grid of terminal plots.
	PlotGrid bool `yaml:"plot_grid"`
	// PlotLegend toggles the legend of terminal plots.
	PlotLegend bool `yaml:"plot_legend"`
}

var validate = validator.New()

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	return cfg
}

// Load reads the config file at path, applying defaults to missing keys
// and validating the result. A missing or unreadable file is replaced
// with a fresh default one, matching first-run behavior.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Infof("no config file found, creating default config at %s", path)
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Reset restores every key to its default value and persists the
// result.
func (c *Config) Reset(path string) error {
	*c = *Default()
	return c.Save(path)
}

// Keys lists the settable configuration keys, sorted.
func (c *Config) Keys() []string {
	keys := []string{
		"default_ticker",
		"display_max_rows",
		"export_folder",
		"hv_rolling_windows",
		"iv_surface_range",
		"iv_surface_res",
		"plot_grid",
		"plot_legend",
	}
	sort.Strings(keys)
	return keys
}

// Get returns the current value of a key as display text.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "default_ticker":
		return c.DefaultTicker, nil
	case "display_max_rows":
		return strconv.Itoa(c.DisplayMaxRows), nil
	case "export_folder":
		return c.ExportFolder, nil
	case "hv_rolling_windows":
		parts := make([]string, len(c.HVRollingWindows))
		for i, w := range c.HVRollingWindows {
			parts[i] = strconv.Itoa(w)
		}
		return "[" + strings.Join(parts, ",") + "]", nil
	case "iv_surface_range":
		return strconv.FormatFloat(c.IVSurfaceRange, 'g', -1, 64), nil
	case "iv_surface_res":
		return strconv.Itoa(c.IVSurfaceRes), nil
	case "plot_grid":
		return strconv.FormatBool(c.PlotGrid), nil
	case "plot_legend":
		return strconv.FormatBool(c.PlotLegend), nil
	default:
		return "", fmt.Errorf("%q is not a configurable variable", key)
	}
}

// Set parses value into the typed field for key and validates the
// resulting config, leaving it unchanged on failure.
func (c *Config) Set(key, value string) error {
	next := *c
	next.HVRollingWindows = append([]int(nil), c.HVRollingWindows...)

	var err error
	switch key {
	case "default_ticker":
		next.DefaultTicker = strings.ToUpper(value)
	case "display_max_rows":
		next.DisplayMaxRows, err = strconv.Atoi(value)
	case "export_folder":
		next.ExportFolder = value
	case "hv_rolling_windows":
		next.HVRollingWindows, err = parseIntList(value)
	case "iv_surface_range":
		next.IVSurfaceRange, err = strconv.ParseFloat(value, 64)
	case "iv_surface_res":
		next.IVSurfaceRes, err = strconv.Atoi(value)
	case "plot_grid":
		next.PlotGrid, err = strconv.ParseBool(value)
	case "plot_legend":
		next.PlotLegend, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("%q is not a configurable variable", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}

	if err := validate.Struct(&next); err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	*c = next
	return nil
}

// parseIntList accepts "[5,10,20]" or "5,10,20".
func parseIntList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}
