package document

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/sirupsen/logrus"
)

var (
	// ErrRasterizerNotFound is returned when the pdftoppm binary is not on PATH.
	ErrRasterizerNotFound = errors.New("pdf rasterizer not found")

	// ErrNoPages is returned for a document that renders to zero pages.
	ErrNoPages = errors.New("document has no pages")
)

// DefaultRasterizer is the binary Poppler runs when none is configured.
const DefaultRasterizer = "pdftoppm"

// Rasterizer renders every page of a document to an image.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, dpi int) ([]image.Image, error)
}

// Poppler rasterizes PDF files with poppler-utils' pdftoppm.
type Poppler struct {
	// Binary is the pdftoppm executable name or path.
	Binary string

	logger logrus.FieldLogger
}

// NewPoppler creates a Poppler rasterizer. An empty binary selects
// DefaultRasterizer and a nil logger discards output.
func NewPoppler(binary string, logger logrus.FieldLogger) *Poppler {
	if binary == "" {
		binary = DefaultRasterizer
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Poppler{Binary: binary, logger: logger}
}

// Rasterize renders all pages of the PDF at path.
//
// Parameters:
//   - ctx: Cancels the pdftoppm subprocess.
//   - path: PDF file to render.
//   - dpi: Output resolution. Must be positive.
//
// Returns:
//   - []image.Image: One image per page, in page order.
//   - error: ErrRasterizerNotFound if the binary is missing, ErrNoPages if the
//     document produced no images, or the wrapped subprocess failure.
func (p *Poppler) Rasterize(ctx context.Context, path string, dpi int) ([]image.Image, error) {
	if dpi < 1 {
		return nil, fmt.Errorf("dpi must be positive, got %d", dpi)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}

	bin, err := exec.LookPath(p.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRasterizerNotFound, p.Binary, err)
	}

	dir, err := os.MkdirTemp("", "pdfdiff-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, bin, "-png", "-r", strconv.Itoa(dpi), path, prefix)

	p.logger.WithFields(logrus.Fields{
		"document": path,
		"dpi":      dpi,
	}).Debug("Rasterizing document")

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to rasterize %s: %w: %s", path, err, strings.TrimSpace(string(out)))
	}

	files, err := pageFiles(dir, "page")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPages, path)
	}

	pages := make([]image.Image, 0, len(files))
	for _, f := range files {
		img, err := imgio.Open(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode page %s: %w", filepath.Base(f), err)
		}
		pages = append(pages, img)
	}

	p.logger.WithFields(logrus.Fields{
		"document": path,
		"pages":    len(pages),
	}).Debug("Rasterized document")

	return pages, nil
}

// pageFiles lists the "<prefix>-<n>.png" files in dir ordered by page number.
// pdftoppm zero-pads n to the width of the last page number.
func pageFiles(dir, prefix string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"-*.png"))
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	type page struct {
		num  int
		path string
	}
	pages := make([]page, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".png")
		n, err := strconv.Atoi(strings.TrimPrefix(base, prefix+"-"))
		if err != nil {
			continue
		}
		pages = append(pages, page{num: n, path: m})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}
