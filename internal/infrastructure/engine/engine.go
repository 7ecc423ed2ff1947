// Package engine re-encodes documents until they satisfy an authority's
// specification. Raster targets are resized to the resolved dimensions and
// run through a descending quality search. Paginated formats pass through
// unmodified; the engine never edits their content.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

// Quality search bounds, in encoder percent. The search starts at 90 and
// descends in steps of 10 to the floor of 10, at most nine encodes.
const (
	qualityStart = 90
	qualityStep  = 10
	qualityFloor = 10
)

// Decoder turns source bytes into a raster image. The enhanced variant can
// additionally rasterize paginated formats.
type Decoder interface {
	Decode(data []byte, mediaType, filename string) (image.Image, error)
	Kind() domain.EngineKind
}

type Engine struct {
	decoder Decoder
	logger  *slog.Logger
}

func New(decoder Decoder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{decoder: decoder, logger: logger}
}

func (e *Engine) Kind() domain.EngineKind {
	return e.decoder.Kind()
}

// Convert produces output bytes satisfying spec, named
// {AUTHORITY}_{category}.{ext}. When the quality floor is reached with the
// budget still unmet, the best-effort bytes are returned alongside an
// ErrSizeExceeded error so callers can decide whether to keep them.
func (e *Engine) Convert(ctx context.Context, doc domain.Document, spec domain.Specification, category domain.DocumentCategory) (*domain.Conversion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "convert", err)
	}

	target := spec.TargetFormat()
	if isPDFSource(doc) && formatAllowed(spec, domain.FormatPDF) {
		target = domain.FormatPDF
	}

	if !domain.IsRasterFormat(target) {
		return e.passThrough(doc, spec, category, target)
	}
	return e.reencode(ctx, doc, spec, category, target)
}

// passThrough covers targets the engine cannot re-encode. Oversized input
// is a hard failure here: there is no recompression on this path.
func (e *Engine) passThrough(doc domain.Document, spec domain.Specification, category domain.DocumentCategory, target string) (*domain.Conversion, error) {
	if int64(len(doc.Bytes)) > spec.Size.Max {
		return nil, domain.WrapError(domain.ErrSizeExceeded, "pass through",
			fmt.Errorf("%d bytes over %d byte budget and %s cannot be recompressed",
				len(doc.Bytes), spec.Size.Max, target))
	}
	if spec.Size.Min > 0 && int64(len(doc.Bytes)) < spec.Size.Min {
		return nil, domain.WrapError(domain.ErrSizeExceeded, "pass through",
			fmt.Errorf("%d bytes below declared minimum %d", len(doc.Bytes), spec.Size.Min))
	}

	return &domain.Conversion{
		OutputName:  outputName(doc.AuthorityID, category, target),
		Format:      target,
		Bytes:       doc.Bytes,
		SizeBytes:   int64(len(doc.Bytes)),
		AppliedSpec: spec,
	}, nil
}

func (e *Engine) reencode(ctx context.Context, doc domain.Document, spec domain.Specification, category domain.DocumentCategory, target string) (*domain.Conversion, error) {
	src, err := e.decoder.Decode(doc.Bytes, doc.MediaType, doc.OriginalName)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "decode source", err)
	}

	bounds := src.Bounds()
	width, height, err := ResolveDimensions(bounds.Dx(), bounds.Dy(), spec)
	if err != nil {
		return nil, err
	}

	img := src
	if width != bounds.Dx() || height != bounds.Dy() {
		img = resize(src, width, height)
	}

	conv := &domain.Conversion{
		OutputName:  outputName(doc.AuthorityID, category, target),
		Format:      target,
		Width:       width,
		Height:      height,
		AppliedSpec: spec,
	}

	if domain.IsLossyFormat(target) {
		return e.qualitySearch(ctx, img, conv)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode %s: %w", target, err)
	}
	conv.Bytes = buf.Bytes()
	conv.SizeBytes = int64(buf.Len())
	return e.checkWindow(conv)
}

// qualitySearch encodes at descending quality until the byte budget is met
// or the floor is reached. Encoded size is monotonically non-increasing as
// quality drops, so the first fit is accepted; an already-compliant image
// therefore keeps the first tried quality with no unnecessary loss.
func (e *Engine) qualitySearch(ctx context.Context, img image.Image, conv *domain.Conversion) (*domain.Conversion, error) {
	var buf bytes.Buffer
	for quality := qualityStart; quality >= qualityFloor; quality -= qualityStep {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG at q=%d: %w", quality, err)
		}

		conv.Bytes = append([]byte(nil), buf.Bytes()...)
		conv.SizeBytes = int64(buf.Len())
		conv.Quality = float64(quality) / 100

		if conv.SizeBytes <= conv.AppliedSpec.Size.Max {
			return e.checkWindow(conv)
		}

		e.logger.Debug("over budget, lowering quality",
			"size_bytes", conv.SizeBytes,
			"max_bytes", conv.AppliedSpec.Size.Max,
			"next_quality", quality-qualityStep)
	}

	// Floor reached with the budget unmet: surface the violation, keep the
	// best-effort bytes on the outcome.
	return conv, domain.WrapError(domain.ErrSizeExceeded, "quality search",
		fmt.Errorf("%d bytes over %d byte budget at floor quality %.1f",
			conv.SizeBytes, conv.AppliedSpec.Size.Max, conv.Quality))
}

func (e *Engine) checkWindow(conv *domain.Conversion) (*domain.Conversion, error) {
	if conv.SizeBytes > conv.AppliedSpec.Size.Max {
		return conv, domain.WrapError(domain.ErrSizeExceeded, "size window",
			fmt.Errorf("%d bytes over %d byte budget for lossless %s",
				conv.SizeBytes, conv.AppliedSpec.Size.Max, conv.Format))
	}
	if min := conv.AppliedSpec.Size.Min; min > 0 && conv.SizeBytes < min {
		return conv, domain.WrapError(domain.ErrSizeExceeded, "size window",
			fmt.Errorf("%d bytes below declared minimum %d", conv.SizeBytes, min))
	}
	return conv, nil
}

// resize uses a single fixed interpolation policy for all conversions.
func resize(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func outputName(authorityID string, category domain.DocumentCategory, format string) string {
	return fmt.Sprintf("%s_%s.%s", strings.ToUpper(authorityID), category, domain.ExtensionFor(format))
}

func formatAllowed(spec domain.Specification, format string) bool {
	for _, f := range spec.Formats {
		if domain.NormalizeFormat(f) == format {
			return true
		}
	}
	return false
}

func isPDFSource(doc domain.Document) bool {
	if strings.EqualFold(doc.MediaType, "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(doc.OriginalName), ".pdf")
}
