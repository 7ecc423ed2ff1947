package engine

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/gen2brain/go-fitz"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

// renderDPI matches the fixed conversion density used by the dimension
// resolver, so a rasterized page lands near its physical size.
const renderDPI = 150.0

// EnhancedDecoder wraps the mupdf-backed go-fitz renderer. Beyond the
// baseline raster formats it rasterizes the first page of paginated
// documents (PDF, XPS, EPUB) when the conversion target is raster.
type EnhancedDecoder struct {
	baseline *BaselineDecoder
	logger   *slog.Logger
}

func NewEnhancedDecoder(logger *slog.Logger) *EnhancedDecoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnhancedDecoder{baseline: NewBaselineDecoder(), logger: logger}
}

func (d *EnhancedDecoder) Kind() domain.EngineKind {
	return domain.EngineEnhanced
}

func (d *EnhancedDecoder) Decode(data []byte, mediaType, filename string) (image.Image, error) {
	// Plain raster formats stay on the in-process path.
	if img, err := d.baseline.Decode(data, mediaType, filename); err == nil {
		return img, nil
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open %s with mupdf: %w", filename, err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("%s has no pages", filename)
	}

	img, err := doc.ImageDPI(0, renderDPI)
	if err != nil {
		return nil, fmt.Errorf("rasterize first page of %s: %w", filename, err)
	}
	d.logger.Debug("rasterized paginated source", "filename", filename, "pages", doc.NumPage())
	return img, nil
}

// minimalPDF is a one-page empty document used by the availability probe.
var minimalPDF = []byte("%PDF-1.4\n" +
	"1 0 obj<</Type/Catalog/Pages 2 0 R>>endobj\n" +
	"2 0 obj<</Type/Pages/Kids[3 0 R]/Count 1>>endobj\n" +
	"3 0 obj<</Type/Page/Parent 2 0 R/MediaBox[0 0 72 72]>>endobj\n" +
	"xref\n0 4\n0000000000 65535 f \n" +
	"trailer<</Size 4/Root 1 0 R>>\nstartxref\n0\n%%EOF\n")

// ProbeDecoder decides the engine variant exactly once per process. A
// failed probe logs the encoder-unavailable condition and substitutes the
// baseline decoder permanently; the substitution is deterministic and never
// retried per file.
func ProbeDecoder(forceBaseline bool, logger *slog.Logger) Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	if forceBaseline {
		logger.Info("conversion backend forced to baseline")
		return NewBaselineDecoder()
	}

	doc, err := fitz.NewFromMemory(minimalPDF)
	if err != nil {
		logger.Warn("enhanced backend probe failed, using baseline encoder",
			"error", domain.WrapError(domain.ErrEncoderUnavailable, "probe mupdf", err))
		return NewBaselineDecoder()
	}
	defer doc.Close()

	logger.Info("enhanced conversion backend available")
	return NewEnhancedDecoder(logger)
}
