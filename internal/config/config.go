// Package config holds the settings shared by the CLI and the MCP server.
//
// Settings are resolved in layers: Default, then an optional YAML file (Load),
// then PDFDIFF_* environment variables (ApplyEnv), then command-line flags set
// by the caller. Validate is run once after the last layer.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/pdf-visual-diff/internal/detection"
	"github.com/ironsheep/pdf-visual-diff/internal/imaging"
)

// Environment variables read by ApplyEnv.
const (
	EnvDPI      = "PDFDIFF_DPI"
	EnvPadding  = "PDFDIFF_PADDING"
	EnvWorkers  = "PDFDIFF_WORKERS"
	EnvLogLevel = "PDFDIFF_LOG_LEVEL"
)

// DefaultDPI is the rasterization resolution for PDF pages.
const DefaultDPI = 200

// Config is the complete set of comparison settings.
type Config struct {
	// DPI is the resolution PDF pages are rasterized at.
	DPI int `yaml:"dpi"`

	// Padding is the margin in pixels added around each changed region before
	// clustering.
	Padding int `yaml:"padding"`

	// Threshold overrides the automatic Otsu threshold when set (0-255).
	Threshold *int `yaml:"threshold"`

	// BlurSigma enables a Gaussian pre-blur of both pages when > 0.
	BlurSigma float64 `yaml:"blur_sigma"`

	// Workers bounds the number of pages compared concurrently.
	Workers int `yaml:"workers"`

	// OutlineColor is the hex color of cluster outlines.
	OutlineColor string `yaml:"outline_color"`

	// OutlineWidth is the outline stroke width in pixels.
	OutlineWidth int `yaml:"outline_width"`

	// Backend selects the detection backend: "go" or "opencv".
	Backend string `yaml:"backend"`

	// OCR extracts the text under each changed cluster when enabled.
	OCR bool `yaml:"ocr"`

	// OCRLanguages are the Tesseract language codes used when OCR is enabled.
	OCRLanguages []string `yaml:"ocr_languages"`

	// Rasterizer is the path or name of the pdftoppm binary.
	Rasterizer string `yaml:"rasterizer"`

	// LogLevel is a logrus level name.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DPI:          DefaultDPI,
		Padding:      detection.DefaultPadding,
		Workers:      runtime.NumCPU(),
		OutlineColor: imaging.DefaultOutlineColor,
		OutlineWidth: imaging.DefaultOutlineWidth,
		Backend:      detection.BackendGo,
		OCRLanguages: []string{"eng"},
		Rasterizer:   "pdftoppm",
		LogLevel:     "info",
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from PDFDIFF_* environment variables.
// Unset or empty variables are ignored.
func (c *Config) ApplyEnv() error {
	ints := []struct {
		name string
		dst  *int
	}{
		{EnvDPI, &c.DPI},
		{EnvPadding, &c.Padding},
		{EnvWorkers, &c.Workers},
	}
	for _, v := range ints {
		raw := strings.TrimSpace(os.Getenv(v.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", v.name, raw, err)
		}
		*v.dst = n
	}
	if lvl := strings.TrimSpace(os.Getenv(EnvLogLevel)); lvl != "" {
		c.LogLevel = lvl
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DPI < 1 {
		errs = append(errs, fmt.Errorf("dpi must be at least 1, got %d", c.DPI))
	}
	if c.Padding < 0 {
		errs = append(errs, fmt.Errorf("padding must not be negative, got %d", c.Padding))
	}
	if c.Threshold != nil && (*c.Threshold < 0 || *c.Threshold > 255) {
		errs = append(errs, fmt.Errorf("threshold must be within 0-255, got %d", *c.Threshold))
	}
	if c.BlurSigma < 0 {
		errs = append(errs, fmt.Errorf("blur_sigma must not be negative, got %g", c.BlurSigma))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if _, err := imaging.NewOutlineStyle(c.OutlineColor, c.OutlineWidth); err != nil {
		errs = append(errs, err)
	}
	switch c.Backend {
	case detection.BackendGo, detection.BackendOpenCV:
	default:
		errs = append(errs, fmt.Errorf("backend must be %q or %q, got %q",
			detection.BackendGo, detection.BackendOpenCV, c.Backend))
	}
	if c.OCR && len(c.OCRLanguages) == 0 {
		errs = append(errs, errors.New("ocr_languages must not be empty when ocr is enabled"))
	}
	return errors.Join(errs...)
}

// MaskOptions returns the detection settings carried by c.
func (c *Config) MaskOptions() detection.MaskOptions {
	return detection.MaskOptions{Threshold: c.Threshold, BlurSigma: c.BlurSigma}
}

// OutlineStyle returns the overlay style carried by c. Call Validate first.
func (c *Config) OutlineStyle() imaging.OutlineStyle {
	style, err := imaging.NewOutlineStyle(c.OutlineColor, c.OutlineWidth)
	if err != nil {
		return imaging.DefaultOutlineStyle()
	}
	return style
}
