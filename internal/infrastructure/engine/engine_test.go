package engine

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

// noiseImage is deliberately incompressible so quality actually matters.
func noiseImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	seed := uint32(0x9e3779b9)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			seed = seed*1664525 + 1013904223
			img.Set(x, y, color.RGBA{uint8(seed >> 8), uint8(seed >> 16), uint8(seed >> 24), 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func newTestEngine() *Engine {
	return New(NewBaselineDecoder(), nil)
}

func jpegSpec(minKB, maxKB int64) domain.Specification {
	return domain.Specification{
		Formats: []string{"JPEG"},
		Size:    domain.SizeWindow{Min: minKB * 1024, Max: maxKB * 1024},
	}
}

func TestConvertPDFPassThrough(t *testing.T) {
	doc := domain.Document{
		ID:           "f1",
		OriginalName: "marksheet.pdf",
		MediaType:    "application/pdf",
		AuthorityID:  "jee",
		Bytes:        []byte("%PDF-1.4 fake"),
	}
	spec := domain.Specification{Formats: []string{"PDF"}, Size: domain.SizeWindow{Max: 300 * 1024}}

	conv, err := newTestEngine().Convert(context.Background(), doc, spec, "marksheet")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !bytes.Equal(conv.Bytes, doc.Bytes) {
		t.Fatalf("pass-through modified bytes")
	}
	if conv.OutputName != "JEE_marksheet.pdf" {
		t.Fatalf("output name = %q, want JEE_marksheet.pdf", conv.OutputName)
	}
}

func TestConvertPDFPassThroughOverBudget(t *testing.T) {
	doc := domain.Document{
		OriginalName: "certificate.pdf",
		MediaType:    "application/pdf",
		AuthorityID:  "neet",
		Bytes:        make([]byte, 4096),
	}
	spec := domain.Specification{Formats: []string{"PDF"}, Size: domain.SizeWindow{Max: 1024}}

	_, err := newTestEngine().Convert(context.Background(), doc, spec, "class10_certificate")
	if !domain.IsKind(err, domain.ErrSizeExceeded) {
		t.Fatalf("error = %v, want ErrSizeExceeded", err)
	}
}

func TestConvertPDFPassThroughBelowMinimum(t *testing.T) {
	doc := domain.Document{
		OriginalName: "certificate.pdf",
		MediaType:    "application/pdf",
		AuthorityID:  "neet",
		Bytes:        []byte("%PDF-1.4 fake"),
	}
	spec := domain.Specification{Formats: []string{"PDF"}, Size: domain.SizeWindow{Min: 1024, Max: 300 * 1024}}

	_, err := newTestEngine().Convert(context.Background(), doc, spec, "class10_certificate")
	if !domain.IsKind(err, domain.ErrSizeExceeded) {
		t.Fatalf("error = %v, want ErrSizeExceeded", err)
	}
}

func TestConvertOutputBelowMinimumIsSizeExceeded(t *testing.T) {
	doc := domain.Document{
		OriginalName: "signature.jpg",
		MediaType:    "image/jpeg",
		AuthorityID:  "cat",
		Bytes:        encodeJPEG(t, noiseImage(80, 35), 90),
	}

	// A thumbnail-sized source cannot reach a 64KB minimum at any quality.
	conv, err := newTestEngine().Convert(context.Background(), doc, jpegSpec(64, 1024), "signature")
	if !domain.IsKind(err, domain.ErrSizeExceeded) {
		t.Fatalf("error = %v, want ErrSizeExceeded", err)
	}
	if conv == nil || len(conv.Bytes) == 0 {
		t.Fatalf("undersized outcome should carry the encoded bytes")
	}
}

func TestConvertResizesIntoSizeWindow(t *testing.T) {
	src := encodeJPEG(t, noiseImage(3000, 4000), 95)
	if len(src) < 2_000_000 {
		t.Fatalf("fixture too small to exercise the search: %d bytes", len(src))
	}

	doc := domain.Document{
		ID:           "f1",
		OriginalName: "photo.jpg",
		MediaType:    "image/jpeg",
		AuthorityID:  "gate",
		Bytes:        src,
	}
	spec := domain.Specification{
		Formats: []string{"JPEG"},
		Size:    domain.SizeWindow{Min: 5 * 1024, Max: 1024 * 1024},
		PixelRange: &domain.PixelRange{
			Min: domain.PixelSize{Width: 200, Height: 260},
			Max: domain.PixelSize{Width: 530, Height: 690},
		},
		AspectRatio: &domain.AspectRatio{Min: 0.66, Max: 0.89},
	}

	conv, err := newTestEngine().Convert(context.Background(), doc, spec, "photograph")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if conv.Width != 530 || conv.Height != 690 {
		t.Fatalf("resized to %dx%d, want 530x690", conv.Width, conv.Height)
	}
	if conv.SizeBytes > spec.Size.Max {
		t.Fatalf("output %d bytes over %d byte budget", conv.SizeBytes, spec.Size.Max)
	}
	if conv.OutputName != "GATE_photograph.jpg" {
		t.Fatalf("output name = %q", conv.OutputName)
	}
}

func TestConvertCompliantInputAcceptsFirstQuality(t *testing.T) {
	doc := domain.Document{
		OriginalName: "signature.jpg",
		MediaType:    "image/jpeg",
		AuthorityID:  "cat",
		Bytes:        encodeJPEG(t, noiseImage(80, 35), 90),
	}

	conv, err := newTestEngine().Convert(context.Background(), doc, jpegSpec(0, 1024), "signature")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if conv.Quality != 0.9 {
		t.Fatalf("quality = %v, want first tried 0.9", conv.Quality)
	}
}

func TestConvertQualityDropsMonotonicallyWithBudget(t *testing.T) {
	src := encodePNG(t, noiseImage(300, 300))
	budgets := []int64{256 * 1024, 64 * 1024, 32 * 1024}

	lastQuality := 1.0
	lastSize := int64(1 << 62)
	for _, max := range budgets {
		doc := domain.Document{
			OriginalName: "photo.png",
			MediaType:    "image/png",
			AuthorityID:  "upsc",
			Bytes:        src,
		}
		spec := domain.Specification{Formats: []string{"JPEG"}, Size: domain.SizeWindow{Max: max}}

		conv, err := newTestEngine().Convert(context.Background(), doc, spec, "photograph")
		if err != nil {
			t.Fatalf("budget %d: Convert() error = %v", max, err)
		}
		if conv.Quality > lastQuality {
			t.Fatalf("quality rose from %v to %v as budget shrank", lastQuality, conv.Quality)
		}
		if conv.SizeBytes > lastSize {
			t.Fatalf("size rose from %d to %d as budget shrank", lastSize, conv.SizeBytes)
		}
		lastQuality, lastSize = conv.Quality, conv.SizeBytes
	}
}

func TestConvertFloorQualityOverBudgetIsSizeExceeded(t *testing.T) {
	doc := domain.Document{
		OriginalName: "photo.png",
		MediaType:    "image/png",
		AuthorityID:  "upsc",
		Bytes:        encodePNG(t, noiseImage(300, 300)),
	}
	spec := domain.Specification{Formats: []string{"JPEG"}, Size: domain.SizeWindow{Max: 512}}

	conv, err := newTestEngine().Convert(context.Background(), doc, spec, "photograph")
	if !domain.IsKind(err, domain.ErrSizeExceeded) {
		t.Fatalf("error = %v, want ErrSizeExceeded", err)
	}
	if conv == nil || len(conv.Bytes) == 0 {
		t.Fatalf("floor-quality outcome should carry best-effort bytes")
	}
	if conv.Quality != 0.1 {
		t.Fatalf("quality = %v, want floor 0.1", conv.Quality)
	}
}

func TestConvertLosslessTargetSkipsQualitySearch(t *testing.T) {
	doc := domain.Document{
		OriginalName: "photo.jpg",
		MediaType:    "image/jpeg",
		AuthorityID:  "demo",
		Bytes:        encodeJPEG(t, noiseImage(120, 120), 90),
	}
	spec := domain.Specification{Formats: []string{"PNG"}, Size: domain.SizeWindow{Max: 1 << 20}}

	conv, err := newTestEngine().Convert(context.Background(), doc, spec, "photograph")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if conv.Quality != 0 {
		t.Fatalf("lossless conversion reported quality %v", conv.Quality)
	}
	if conv.OutputName != "DEMO_photograph.png" {
		t.Fatalf("output name = %q", conv.OutputName)
	}
}

func TestConvertPDFSourceWithRasterOnlyTargetOnBaseline(t *testing.T) {
	doc := domain.Document{
		OriginalName: "scan.pdf",
		MediaType:    "application/pdf",
		AuthorityID:  "gate",
		Bytes:        []byte("%PDF-1.4 fake"),
	}

	_, err := newTestEngine().Convert(context.Background(), doc, jpegSpec(0, 1024), "photograph")
	if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
	}
}
