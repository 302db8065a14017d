package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/pdf-visual-diff/internal/compare"
	"github.com/ironsheep/pdf-visual-diff/internal/config"
	"github.com/ironsheep/pdf-visual-diff/internal/detection"
	"github.com/ironsheep/pdf-visual-diff/internal/document"
	"github.com/ironsheep/pdf-visual-diff/internal/ocr"
	"github.com/ironsheep/pdf-visual-diff/internal/report"
)

// DirLayout is the time layout of generated report directory names.
const DirLayout = "20060102150405"

// OutputDir returns a timestamped report directory under base.
func OutputDir(base string, now time.Time) string {
	return filepath.Join(base, now.Format(DirLayout))
}

// Request names the documents to compare.
type Request struct {
	// Original and Changed are PDF file paths.
	Original string
	Changed  string

	// OutputDir receives the report. Empty uses a timestamped directory in
	// the working directory.
	OutputDir string
}

// Result is a finished comparison.
type Result struct {
	Dir      string
	HTMLPath string
	Report   *report.Report

	// Pages keeps the per-page results, with images released.
	Pages []compare.PageResult
}

// Runner holds the collaborators of a comparison run.
type Runner struct {
	cfg        *config.Config
	rasterizer document.Rasterizer
	logger     logrus.FieldLogger
	now        func() time.Time
}

// New creates a Runner for cfg. A nil rasterizer uses pdftoppm from
// cfg.Rasterizer and a nil logger discards output.
func New(cfg *config.Config, rasterizer document.Rasterizer, logger logrus.FieldLogger) *Runner {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if rasterizer == nil {
		rasterizer = document.NewPoppler(cfg.Rasterizer, logger)
	}
	return &Runner{cfg: cfg, rasterizer: rasterizer, logger: logger, now: time.Now}
}

// Run compares two PDFs and writes the report.
//
// Parameters:
//   - ctx: Cancels rasterization and page comparison.
//   - req: Documents to compare and the report location.
//
// Returns:
//   - *Result: Report data and location. Individual page failures are recorded
//     in the report and do not make Run fail.
//   - error: Invalid settings, a document that cannot be rasterized, or a
//     report that cannot be written.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	started := r.now()
	dir := req.OutputDir
	if dir == "" {
		dir = OutputDir(".", started)
	}
	log := r.logger.WithFields(logrus.Fields{
		"original": req.Original,
		"changed":  req.Changed,
	})

	pagesA, pagesB, err := r.rasterizeBoth(ctx, req)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"pages_original": len(pagesA),
		"pages_changed":  len(pagesB),
	}).Info("Rasterized documents")

	opts, err := r.compareOptions()
	if err != nil {
		return nil, err
	}

	w, err := report.NewWriter(dir, r.logger)
	if err != nil {
		return nil, err
	}

	results, err := compare.CompareDocuments(ctx, pagesA, pagesB, opts, w.WritePage)
	if err != nil {
		return nil, err
	}

	rep, err := w.Finish(results, report.Meta{
		DocumentA:        req.Original,
		DocumentB:        req.Changed,
		TextChangedPages: r.textChangedPages(req, log),
		GeneratedAt:      started,
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"dir":      dir,
		"elapsed":  r.now().Sub(started).String(),
		"clusters": rep.Summary.TotalClusters,
	}).Info("Comparison finished")

	return &Result{Dir: dir, HTMLPath: w.HTMLPath(), Report: rep, Pages: results}, nil
}

func (r *Runner) rasterizeBoth(ctx context.Context, req Request) ([]image.Image, []image.Image, error) {
	var pagesA, pagesB []image.Image

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pagesA, err = r.rasterizer.Rasterize(ctx, req.Original, r.cfg.DPI)
		if err != nil {
			return fmt.Errorf("failed to rasterize %s: %w", req.Original, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		pagesB, err = r.rasterizer.Rasterize(ctx, req.Changed, r.cfg.DPI)
		if err != nil {
			return fmt.Errorf("failed to rasterize %s: %w", req.Changed, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return pagesA, pagesB, nil
}

func (r *Runner) compareOptions() (compare.Options, error) {
	finder, err := detection.NewFinder(r.cfg.Backend, r.cfg.MaskOptions())
	if err != nil {
		return compare.Options{}, err
	}

	opts := compare.Options{
		Padding: r.cfg.Padding,
		Mask:    r.cfg.MaskOptions(),
		Finder:  finder,
		Style:   r.cfg.OutlineStyle(),
		Workers: r.cfg.Workers,
		Logger:  r.logger,
	}
	if r.cfg.OCR {
		opts.Annotator = ocr.NewAnnotator(ocr.Options{
			Languages: r.cfg.OCRLanguages,
			Logger:    r.logger,
		})
	}
	return opts, nil
}

// textChangedPages compares the text layers. Documents without a readable
// text layer are skipped with a warning.
func (r *Runner) textChangedPages(req Request, log logrus.FieldLogger) []int {
	infoA, err := document.Inspect(req.Original)
	if err != nil {
		log.WithError(err).Warn("Skipping text comparison")
		return nil
	}
	infoB, err := document.Inspect(req.Changed)
	if err != nil {
		log.WithError(err).Warn("Skipping text comparison")
		return nil
	}
	return document.TextChangedPages(infoA, infoB)
}
