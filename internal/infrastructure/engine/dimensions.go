package engine

import (
	"fmt"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

// Fixed conversion density for physical dimension constraints.
const pixelsPerInch = 150.0

const (
	cmPerInch = 2.54
	mmPerInch = 25.4
)

// ResolveDimensions computes the single target size in pixels for a
// specification. The priority order is total and deterministic; the first
// applicable rule wins:
//
//  1. exact pixel size
//  2. physical size at 150 px/inch
//  3. per-axis clamp into the pixel range
//  4. source dimensions unchanged
//
// Aspect-ratio bounds are validation-only: they are checked against the
// resolved result and reported, never auto-corrected.
func ResolveDimensions(srcWidth, srcHeight int, spec domain.Specification) (int, int, error) {
	width, height := srcWidth, srcHeight

	switch {
	case spec.Pixels != nil:
		width, height = spec.Pixels.Width, spec.Pixels.Height
	case spec.Physical != nil:
		perUnit := pixelsPerInch / cmPerInch
		if spec.Physical.Unit == domain.UnitMM {
			perUnit = pixelsPerInch / mmPerInch
		}
		width = int(spec.Physical.Width * perUnit)
		height = int(spec.Physical.Height * perUnit)
	case spec.PixelRange != nil:
		width = clampAxis(width, spec.PixelRange.Min.Width, spec.PixelRange.Max.Width)
		height = clampAxis(height, spec.PixelRange.Min.Height, spec.PixelRange.Max.Height)
	}

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	if ar := spec.AspectRatio; ar != nil {
		ratio := float64(width) / float64(height)
		if ar.Min > 0 && ratio < ar.Min {
			return 0, 0, domain.WrapError(domain.ErrDimensionUnresolvable, "resolve dimensions",
				fmt.Errorf("aspect ratio %.3f below bound %.3f at %dx%d", ratio, ar.Min, width, height))
		}
		if ar.Max > 0 && ratio > ar.Max {
			return 0, 0, domain.WrapError(domain.ErrDimensionUnresolvable, "resolve dimensions",
				fmt.Errorf("aspect ratio %.3f above bound %.3f at %dx%d", ratio, ar.Max, width, height))
		}
	}

	return width, height, nil
}

func clampAxis(v, min, max int) int {
	if min > 0 && v < min {
		return min
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
