package main

import (
	"flag"
	"io"
	"strings"

	"github.com/ironsheep/pdf-visual-diff/internal/config"
)

// flagValues receives command-line settings before they are layered over the
// file and environment configuration.
type flagValues struct {
	configPath string
	out        string
	debug      bool

	dpi       int
	padding   int
	threshold int
	blur      float64
	workers   int
	color     string
	width     int
	backend   string
	ocr       bool
	languages string
}

func newFlagSet(output io.Writer, fv *flagValues) *flag.FlagSet {
	def := config.Default()

	fs := flag.NewFlagSet("pdf-visual-diff", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&fv.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&fv.out, "out", "", "report directory (default: timestamped directory in the working directory)")
	fs.BoolVar(&fv.debug, "debug", false, "enable debug mode with verbose logging")

	fs.IntVar(&fv.dpi, "dpi", def.DPI, "rasterization resolution")
	fs.IntVar(&fv.padding, "padding", def.Padding, "margin in pixels added around each changed region")
	fs.IntVar(&fv.threshold, "threshold", -1, "fixed difference threshold 0-255 (default: automatic)")
	fs.Float64Var(&fv.blur, "blur", def.BlurSigma, "Gaussian blur sigma applied before differencing")
	fs.IntVar(&fv.workers, "workers", def.Workers, "pages compared concurrently")
	fs.StringVar(&fv.color, "color", def.OutlineColor, "outline color as #RGB or #RRGGBB")
	fs.IntVar(&fv.width, "width", def.OutlineWidth, "outline width in pixels")
	fs.StringVar(&fv.backend, "backend", def.Backend, "detection backend: go or opencv")
	fs.BoolVar(&fv.ocr, "ocr", def.OCR, "recognize the text under each changed area")
	fs.StringVar(&fv.languages, "lang", strings.Join(def.OCRLanguages, "+"), "OCR languages joined with +")

	return fs
}

// loadConfig resolves the configuration: defaults, then the -config file,
// then environment variables, then flags given on the command line.
func loadConfig(fs *flag.FlagSet, fv *flagValues) (*config.Config, error) {
	cfg := config.Default()
	if fv.configPath != "" {
		var err error
		if cfg, err = config.Load(fv.configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dpi":
			cfg.DPI = fv.dpi
		case "padding":
			cfg.Padding = fv.padding
		case "threshold":
			if fv.threshold >= 0 {
				t := fv.threshold
				cfg.Threshold = &t
			} else {
				cfg.Threshold = nil
			}
		case "blur":
			cfg.BlurSigma = fv.blur
		case "workers":
			cfg.Workers = fv.workers
		case "color":
			cfg.OutlineColor = fv.color
		case "width":
			cfg.OutlineWidth = fv.width
		case "backend":
			cfg.Backend = fv.backend
		case "ocr":
			cfg.OCR = fv.ocr
		case "lang":
			cfg.OCRLanguages = strings.Split(fv.languages, "+")
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
