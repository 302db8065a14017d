package compare

import (
	"context"
	"fmt"
	"image"
	"io"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/pdf-visual-diff/internal/detection"
	"github.com/ironsheep/pdf-visual-diff/internal/document"
	"github.com/ironsheep/pdf-visual-diff/internal/imaging"
)

// Annotator attaches a description to every cluster of a page, for example
// the text found under it.
type Annotator interface {
	Annotate(ctx context.Context, img image.Image, clusters []detection.Cluster) ([]string, error)
}

// Options configures a comparison.
type Options struct {
	// Padding is the margin added around each region before clustering.
	Padding int

	// Mask tunes the difference mask. Ignored when Finder is set.
	Mask detection.MaskOptions

	// Finder overrides the detection backend. Nil uses the pure Go finder.
	Finder detection.RegionFinder

	// Style is the outline drawn around each cluster.
	Style imaging.OutlineStyle

	// Workers bounds concurrent page comparisons. Zero uses runtime.NumCPU().
	Workers int

	// Annotator, when set, describes each cluster of the changed page.
	Annotator Annotator

	// Logger receives per-page progress. Nil discards it.
	Logger logrus.FieldLogger
}

// DefaultOptions returns the stock comparison settings.
func DefaultOptions() Options {
	return Options{
		Padding: detection.DefaultPadding,
		Style:   imaging.DefaultOutlineStyle(),
	}
}

func (o Options) finder() detection.RegionFinder {
	if o.Finder != nil {
		return o.Finder
	}
	return detection.NewGoFinder(o.Mask)
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// PageResult is the outcome of comparing one page pair.
type PageResult struct {
	// Page is the 1-based page number. Zero for a standalone image pair.
	Page int `json:"page"`

	// Regions is the number of padded regions before clustering.
	Regions int `json:"regions"`

	// Clusters are the merged change areas, in detection order. Their bounds
	// are in the changed page's pixel coordinates.
	Clusters []detection.Cluster `json:"clusters"`

	// ChangedPixels is the number of changed mask pixels on the page. Each
	// pixel counts once, even when it lies inside several cluster bounds.
	ChangedPixels int `json:"changed_pixels"`

	// ClusterText holds one annotation per cluster when an Annotator ran.
	ClusterText []string `json:"cluster_text,omitempty"`

	// Original and Changed are the compared pages.
	Original image.Image `json:"-"`
	Changed  image.Image `json:"-"`

	// Overlay is Changed with every cluster outlined. Nil when Err is set.
	Overlay *image.RGBA `json:"-"`

	// Err is the failure that prevented this page from being compared.
	Err error `json:"-"`
}

// HasChanges reports whether any cluster was found.
func (r *PageResult) HasChanges() bool {
	return len(r.Clusters) > 0
}

// ClusterBounds returns the enclosing rectangle of each cluster.
func (r *PageResult) ClusterBounds() []image.Rectangle {
	return detection.ClusterBounds(r.Clusters)
}

// ComparePages runs the full detection pipeline on one image pair.
//
// Parameters:
//   - a: The original page.
//   - b: The changed page. Must have the same size as a.
//   - opts: Padding, detection backend and outline style.
//
// Returns:
//   - *PageResult: Clusters and the overlay image. Page is left at zero.
//   - error: detection.ErrDimensionMismatch, detection.ErrEmptyInput,
//     detection.ErrNegativePadding, or a backend failure.
//
// Comparing an image to itself yields no clusters and an overlay that is
// pixel-identical to the input.
func ComparePages(a, b image.Image, opts Options) (*PageResult, error) {
	changes, err := opts.finder().FindChanges(a, b, opts.Padding)
	if err != nil {
		return nil, err
	}

	clusters := detection.ClusterRects(changes.Regions)
	changed := 0
	if changes.Mask != nil {
		detection.CountChanged(changes.Mask, clusters)
		changed = detection.CountMask(changes.Mask)
	}

	return &PageResult{
		Regions:       len(changes.Regions),
		Clusters:      clusters,
		ChangedPixels: changed,
		Original:      a,
		Changed:       b,
		Overlay:       imaging.DrawOutlines(b, detection.ClusterBounds(clusters), opts.Style),
	}, nil
}

// PageSink consumes a finished page. It is called from worker goroutines,
// once per page and possibly concurrently.
type PageSink func(ctx context.Context, result *PageResult) error

// CompareDocuments compares two page sequences page by page.
//
// Parameters:
//   - ctx: Stops scheduling new pages when cancelled.
//   - pagesA: Pages of the original document.
//   - pagesB: Pages of the changed document.
//   - opts: Comparison settings shared by all pages.
//   - sink: Optional consumer for every finished page, including failed ones.
//
// Returns:
//   - []PageResult: One result per page of the longer document, in page order.
//     Pages that failed carry Err. When sink is set, page images are released
//     after the sink returns.
//   - error: A sink failure or context cancellation. Page failures are not
//     returned here.
func CompareDocuments(ctx context.Context, pagesA, pagesB []image.Image, opts Options, sink PageSink) ([]PageResult, error) {
	a, b := document.Equalize(pagesA, pagesB)
	results := make([]PageResult, len(a))

	if opts.Finder == nil {
		opts.Finder = opts.finder()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	log := opts.logger()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range a {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res := comparePage(ctx, i+1, a[i], b[i], opts, log)
			results[i] = *res

			if sink == nil {
				return nil
			}
			if err := sink(ctx, &results[i]); err != nil {
				return fmt.Errorf("failed to write page %d: %w", i+1, err)
			}
			results[i].Original, results[i].Changed, results[i].Overlay = nil, nil, nil
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

// comparePage compares one page pair, recording failures on the result.
func comparePage(ctx context.Context, page int, a, b image.Image, opts Options, log logrus.FieldLogger) *PageResult {
	entry := log.WithField("page", page)

	res, err := ComparePages(a, b, opts)
	if err != nil {
		entry.WithError(err).Warn("Page comparison failed")
		return &PageResult{Page: page, Original: a, Changed: b, Err: err}
	}
	res.Page = page

	if opts.Annotator != nil && res.HasChanges() {
		text, err := opts.Annotator.Annotate(ctx, b, res.Clusters)
		if err != nil {
			entry.WithError(err).Warn("Cluster annotation failed")
		} else {
			res.ClusterText = text
		}
	}

	entry.WithFields(logrus.Fields{
		"regions":  res.Regions,
		"clusters": len(res.Clusters),
	}).Debug("Compared page")

	return res
}
