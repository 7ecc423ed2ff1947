package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Canonical format names as they appear in authority requirement tables.
const (
	FormatJPEG = "JPEG"
	FormatPNG  = "PNG"
	FormatPDF  = "PDF"
)

type Unit string

const (
	UnitCM Unit = "cm"
	UnitMM Unit = "mm"
)

// SizeWindow is the allowed output size in bytes. Max is mandatory, Min is
// optional (zero means unbounded below).
type SizeWindow struct {
	Min int64 `json:"min,omitempty"`
	Max int64 `json:"max"`
}

type PixelSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PixelRange clamps source dimensions independently per axis.
type PixelRange struct {
	Min PixelSize `json:"min"`
	Max PixelSize `json:"max"`
}

// PhysicalSize is a printed size converted to pixels at a fixed density.
type PhysicalSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   Unit    `json:"unit"`
}

// AspectRatio bounds width/height of the resolved dimensions. Zero means
// unbounded on that side. Bounds are validation-only: violations are
// reported, never auto-corrected.
type AspectRatio struct {
	Min float64 `json:"min,omitempty"`
	Max float64 `json:"max,omitempty"`
}

// Specification is the declared constraint set an output file must satisfy
// for one authority and document category.
type Specification struct {
	Formats     []string      `json:"formats"`
	Size        SizeWindow    `json:"size"`
	Pixels      *PixelSize    `json:"pixels,omitempty"`
	PixelRange  *PixelRange   `json:"pixel_range,omitempty"`
	Physical    *PhysicalSize `json:"physical,omitempty"`
	AspectRatio *AspectRatio  `json:"aspect_ratio,omitempty"`
}

// TargetFormat is the default conversion target: the first allowed format.
func (s Specification) TargetFormat() string {
	if len(s.Formats) == 0 {
		return ""
	}
	return NormalizeFormat(s.Formats[0])
}

func (s Specification) Validate() error {
	if len(s.Formats) == 0 {
		return errors.New("formats must be non-empty")
	}
	if s.Size.Max <= 0 {
		return errors.New("size.max must be positive")
	}
	if s.Size.Min < 0 || s.Size.Min > s.Size.Max {
		return fmt.Errorf("size window [%d,%d] is inverted", s.Size.Min, s.Size.Max)
	}
	if s.Physical != nil && s.Physical.Unit != UnitCM && s.Physical.Unit != UnitMM {
		return fmt.Errorf("unknown physical unit %q", s.Physical.Unit)
	}
	return nil
}

// ExamProfile maps one authority's document types to their specifications.
// Read-only; the pipeline never mutates it.
type ExamProfile struct {
	AuthorityID string                             `json:"authority_id"`
	Formats     []string                           `json:"formats"`
	Specs       map[DocumentCategory]Specification `json:"specs"`
}

// NormalizeFormat maps aliases (jpg, jpeg) onto canonical names.
func NormalizeFormat(format string) string {
	switch strings.ToUpper(strings.TrimSpace(format)) {
	case "JPG", "JPEG":
		return FormatJPEG
	case "PNG":
		return FormatPNG
	case "PDF":
		return FormatPDF
	default:
		return strings.ToUpper(strings.TrimSpace(format))
	}
}

// IsRasterFormat reports whether the conversion engine can re-encode the
// format. Non-raster targets only pass through.
func IsRasterFormat(format string) bool {
	switch NormalizeFormat(format) {
	case FormatJPEG, FormatPNG:
		return true
	default:
		return false
	}
}

// IsLossyFormat reports whether the format has a meaningful quality
// parameter. Lossless targets skip the quality search.
func IsLossyFormat(format string) bool {
	return NormalizeFormat(format) == FormatJPEG
}

// ExtensionFor returns the output file extension for a format. JPEG
// normalizes to jpg.
func ExtensionFor(format string) string {
	switch NormalizeFormat(format) {
	case FormatJPEG:
		return "jpg"
	case FormatPNG:
		return "png"
	case FormatPDF:
		return "pdf"
	default:
		return strings.ToLower(NormalizeFormat(format))
	}
}
