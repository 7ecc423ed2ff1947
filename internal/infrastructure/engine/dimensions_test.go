package engine

import (
	"testing"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

func TestResolveDimensionsPriority(t *testing.T) {
	exact := &domain.PixelSize{Width: 200, Height: 230}
	physical := &domain.PhysicalSize{Width: 3.5, Height: 4.5, Unit: domain.UnitCM}
	rangeSpec := &domain.PixelRange{
		Min: domain.PixelSize{Width: 100, Height: 100},
		Max: domain.PixelSize{Width: 500, Height: 500},
	}

	tests := []struct {
		name             string
		spec             domain.Specification
		srcW, srcH       int
		wantW, wantH     int
	}{
		{
			// Exact pixels beat physical size regardless of which field was
			// populated first.
			name:  "exact wins over physical",
			spec:  domain.Specification{Formats: []string{"JPEG"}, Size: domain.SizeWindow{Max: 1 << 20}, Pixels: exact, Physical: physical},
			srcW:  3000, srcH: 4000,
			wantW: 200, wantH: 230,
		},
		{
			name:  "physical wins over range",
			spec:  domain.Specification{Formats: []string{"JPEG"}, Size: domain.SizeWindow{Max: 1 << 20}, Physical: physical, PixelRange: rangeSpec},
			srcW:  3000, srcH: 4000,
			wantW: 206, wantH: 265, // cm / 2.54 * 150, truncated
		},
		{
			name: "physical in millimetres",
			spec: domain.Specification{Formats: []string{"JPEG"}, Size: domain.SizeWindow{Max: 1 << 20},
				Physical: &domain.PhysicalSize{Width: 35, Height: 45, Unit: domain.UnitMM}},
			srcW:  100, srcH: 100,
			wantW: 206, wantH: 265, // mm / 25.4 * 150, truncated
		},
		{
			name:  "range clamps per axis",
			spec:  domain.Specification{Formats: []string{"JPEG"}, Size: domain.SizeWindow{Max: 1 << 20}, PixelRange: rangeSpec},
			srcW:  3000, srcH: 50,
			wantW: 500, wantH: 100,
		},
		{
			name:  "no constraint passes source through",
			spec:  domain.Specification{Formats: []string{"JPEG"}, Size: domain.SizeWindow{Max: 1 << 20}},
			srcW:  640, srcH: 480,
			wantW: 640, wantH: 480,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, h, err := ResolveDimensions(tc.srcW, tc.srcH, tc.spec)
			if err != nil {
				t.Fatalf("ResolveDimensions() error = %v", err)
			}
			if w != tc.wantW || h != tc.wantH {
				t.Fatalf("resolved %dx%d, want %dx%d", w, h, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestResolveDimensionsAspectRatioIsValidationOnly(t *testing.T) {
	spec := domain.Specification{
		Formats:     []string{"JPEG"},
		Size:        domain.SizeWindow{Max: 1 << 20},
		Pixels:      &domain.PixelSize{Width: 100, Height: 400},
		AspectRatio: &domain.AspectRatio{Min: 0.5, Max: 2.0},
	}

	_, _, err := ResolveDimensions(3000, 4000, spec)
	if !domain.IsKind(err, domain.ErrDimensionUnresolvable) {
		t.Fatalf("error = %v, want ErrDimensionUnresolvable", err)
	}

	// Within bounds the exact pixels survive untouched.
	spec.Pixels = &domain.PixelSize{Width: 300, Height: 400}
	w, h, err := ResolveDimensions(3000, 4000, spec)
	if err != nil {
		t.Fatalf("ResolveDimensions() error = %v", err)
	}
	if w != 300 || h != 400 {
		t.Fatalf("resolved %dx%d, want 300x400 (no correction)", w, h)
	}
}

func TestResolveDimensionsGatePhotographScenario(t *testing.T) {
	spec := domain.Specification{
		Formats: []string{"JPEG"},
		Size:    domain.SizeWindow{Min: 5 * 1024, Max: 1024 * 1024},
		PixelRange: &domain.PixelRange{
			Min: domain.PixelSize{Width: 200, Height: 260},
			Max: domain.PixelSize{Width: 530, Height: 690},
		},
		AspectRatio: &domain.AspectRatio{Min: 0.66, Max: 0.89},
	}

	w, h, err := ResolveDimensions(3000, 4000, spec)
	if err != nil {
		t.Fatalf("ResolveDimensions() error = %v", err)
	}
	if w != 530 || h != 690 {
		t.Fatalf("resolved %dx%d, want 530x690", w, h)
	}
}
