package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pdf-visual-diff/internal/detection"
	"github.com/ironsheep/pdf-visual-diff/internal/imaging"
)

// DefaultScale is the upscale applied to each crop before recognition.
const DefaultScale = 2.0

// ErrUnavailable is returned when the binary was built without Tesseract support.
var ErrUnavailable = errors.New("ocr support not compiled in (build with -tags ocr)")

// Options configures text recognition.
type Options struct {
	// Languages are Tesseract language codes, e.g. "eng" or "deu".
	Languages []string

	// Scale resizes each crop before recognition. Zero uses DefaultScale.
	Scale float64

	// TessdataPrefix overrides Tesseract's data directory. Empty uses the default.
	TessdataPrefix string

	// Logger receives per-cluster failures. Nil discards them.
	Logger logrus.FieldLogger
}

// recognizer reads text from an encoded image. One recognizer serves one
// goroutine.
type recognizer interface {
	Text(png []byte) (string, error)
	Close() error
}

// Annotator describes clusters by the text found under them.
type Annotator struct {
	opts          Options
	logger        logrus.FieldLogger
	newRecognizer func(Options) (recognizer, error)
}

// NewAnnotator creates an Annotator for the given languages.
func NewAnnotator(opts Options) *Annotator {
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"eng"}
	}
	if opts.Scale <= 0 {
		opts.Scale = DefaultScale
	}
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Annotator{opts: opts, logger: logger, newRecognizer: newTesseract}
}

// Annotate recognizes the text inside each cluster's bounds on img.
//
// Parameters:
//   - ctx: Checked between clusters.
//   - img: The page the clusters were found on.
//   - clusters: Change areas, in any order.
//
// Returns:
//   - []string: One entry per cluster, in cluster order, with whitespace
//     collapsed. A cluster whose recognition fails gets an empty entry.
//   - error: ErrUnavailable without Tesseract support, a client setup failure,
//     or context cancellation.
func (a *Annotator) Annotate(ctx context.Context, img image.Image, clusters []detection.Cluster) ([]string, error) {
	if len(clusters) == 0 {
		return []string{}, nil
	}

	rec, err := a.newRecognizer(a.opts)
	if err != nil {
		return nil, err
	}
	defer rec.Close()

	out := make([]string, len(clusters))
	for i, c := range clusters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := a.clusterText(rec, img, c.Bounds.Rectangle())
		if err != nil {
			a.logger.WithError(err).WithField("cluster", i).Debug("Cluster text recognition failed")
			continue
		}
		out[i] = text
	}
	return out, nil
}

func (a *Annotator) clusterText(rec recognizer, img image.Image, r image.Rectangle) (string, error) {
	// Padded bounds may reach past the page edge; Crop clips them.
	crop, err := imaging.Crop(img, r, a.opts.Scale)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, crop); err != nil {
		return "", fmt.Errorf("failed to encode crop: %w", err)
	}

	text, err := rec.Text(buf.Bytes())
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(text), " "), nil
}

// Info describes the OCR subsystem.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
	Backend   string `json:"backend"`
}
