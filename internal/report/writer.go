package report

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pdf-visual-diff/internal/compare"
	"github.com/ironsheep/pdf-visual-diff/internal/detection"
	"github.com/ironsheep/pdf-visual-diff/internal/imaging"
)

const (
	// ImagesDir is the report subdirectory holding page images.
	ImagesDir = "images"

	// HTMLFile and SummaryFile are written by Finish.
	HTMLFile    = "comparison.html"
	SummaryFile = "summary.json"
)

//go:embed templates/comparison.html
var templateFS embed.FS

var comparisonTmpl = template.Must(template.ParseFS(templateFS, "templates/comparison.html"))

// OriginalImage returns the report-relative path of an original page.
func OriginalImage(page int) string {
	return filepath.ToSlash(filepath.Join(ImagesDir, fmt.Sprintf("pdf1_page%d.png", page)))
}

// ChangedImage returns the report-relative path of a changed page.
func ChangedImage(page int) string {
	return filepath.ToSlash(filepath.Join(ImagesDir, fmt.Sprintf("pdf2_page%d.png", page)))
}

// OverlayImage returns the report-relative path of an outlined page.
func OverlayImage(page int) string {
	return filepath.ToSlash(filepath.Join(ImagesDir, fmt.Sprintf("output_page%d.png", page)))
}

// Meta describes the compared documents.
type Meta struct {
	DocumentA        string
	DocumentB        string
	TextChangedPages []int
	GeneratedAt      time.Time
}

// PageEntry is one page of the report.
type PageEntry struct {
	Page        int                 `json:"page"`
	Regions     int                 `json:"regions"`
	Clusters    []detection.Cluster `json:"clusters"`
	ClusterText []string            `json:"cluster_text,omitempty"`
	Error       string              `json:"error,omitempty"`

	OriginalImage string `json:"original_image"`
	ChangedImage  string `json:"changed_image"`
}

// Report is the content of summary.json and the data behind comparison.html.
type Report struct {
	DocumentA   string      `json:"document_a"`
	DocumentB   string      `json:"document_b"`
	GeneratedAt time.Time   `json:"generated_at"`
	Summary     Summary     `json:"summary"`
	Pages       []PageEntry `json:"pages"`
}

// Writer saves comparison results under a report directory.
type Writer struct {
	dir    string
	logger logrus.FieldLogger
}

// NewWriter creates dir and its images subdirectory.
//
// Parameters:
//   - dir: Report directory. Created if missing.
//   - logger: Receives one entry per written file. Nil discards logging.
//
// Returns:
//   - *Writer: Ready to receive pages.
//   - error: If the directories cannot be created.
func NewWriter(dir string, logger logrus.FieldLogger) (*Writer, error) {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if err := os.MkdirAll(filepath.Join(dir, ImagesDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &Writer{dir: dir, logger: logger}, nil
}

// Dir returns the report directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WritePage saves the page images of one result. It satisfies compare.PageSink
// and is safe for concurrent use, since every page writes its own files.
// Failed pages get their input images but no overlay.
func (w *Writer) WritePage(ctx context.Context, r *compare.PageResult) error {
	files := []struct {
		rel string
		img image.Image
	}{
		{OriginalImage(r.Page), r.Original},
		{ChangedImage(r.Page), r.Changed},
	}
	if r.Overlay != nil {
		files = append(files, struct {
			rel string
			img image.Image
		}{OverlayImage(r.Page), r.Overlay})
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.img == nil {
			continue
		}
		if err := imaging.SavePNG(filepath.Join(w.dir, f.rel), f.img); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.rel, err)
		}
	}

	w.logger.WithFields(logrus.Fields{
		"page":     r.Page,
		"clusters": len(r.Clusters),
	}).Debug("Wrote page images")
	return nil
}

// Build assembles the report data from page results without touching disk.
func Build(results []compare.PageResult, meta Meta) *Report {
	summary := Summarize(results)
	summary.TextChangedPages = meta.TextChangedPages

	rep := &Report{
		DocumentA:   meta.DocumentA,
		DocumentB:   meta.DocumentB,
		GeneratedAt: meta.GeneratedAt,
		Summary:     summary,
		Pages:       make([]PageEntry, 0, len(results)),
	}
	for i := range results {
		r := &results[i]
		entry := PageEntry{
			Page:          r.Page,
			Regions:       r.Regions,
			Clusters:      r.Clusters,
			ClusterText:   r.ClusterText,
			OriginalImage: OriginalImage(r.Page),
			ChangedImage:  OverlayImage(r.Page),
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
			entry.ChangedImage = ChangedImage(r.Page)
		}
		rep.Pages = append(rep.Pages, entry)
	}
	return rep
}

// Finish writes comparison.html and summary.json.
//
// Returns:
//   - *Report: The data written to both files.
//   - error: If either file cannot be written.
func (w *Writer) Finish(results []compare.PageResult, meta Meta) (*Report, error) {
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now()
	}
	rep := Build(results, meta)

	if err := w.writeHTML(rep); err != nil {
		return nil, err
	}
	if err := w.writeJSON(rep); err != nil {
		return nil, err
	}

	w.logger.WithFields(logrus.Fields{
		"dir":           w.dir,
		"pages":         rep.Summary.Pages,
		"changed_pages": rep.Summary.ChangedPages,
		"failed_pages":  rep.Summary.FailedPages,
	}).Info("Report written")
	return rep, nil
}

// HTMLPath returns the location of comparison.html.
func (w *Writer) HTMLPath() string {
	return filepath.Join(w.dir, HTMLFile)
}

func (w *Writer) writeHTML(rep *Report) error {
	f, err := os.Create(w.HTMLPath())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", HTMLFile, err)
	}
	defer f.Close()

	if err := RenderHTML(f, rep); err != nil {
		return err
	}
	return f.Close()
}

// RenderHTML renders the side-by-side comparison page.
func RenderHTML(out io.Writer, rep *Report) error {
	if err := comparisonTmpl.Execute(out, rep); err != nil {
		return fmt.Errorf("failed to render %s: %w", HTMLFile, err)
	}
	return nil
}

func (w *Writer) writeJSON(rep *Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, SummaryFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", SummaryFile, err)
	}
	return nil
}
