package catalog

import (
	"reflect"
	"testing"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"cat", "gate", "jee", "neet", "upsc"}
	if got := c.Authorities(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Authorities() = %v, want %v", got, want)
	}
}

func TestResolveIsPure(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	first, err := c.Resolve("gate", "photograph")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := c.Resolve("gate", "photograph")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different specifications")
	}
	if first.Size.Min != 5*1024 || first.Size.Max != 1024*1024 {
		t.Fatalf("gate photograph size window = %+v", first.Size)
	}
	if first.TargetFormat() != domain.FormatJPEG {
		t.Fatalf("gate photograph target = %q, want JPEG", first.TargetFormat())
	}
}

func TestResolveMissingCategoryIsSpecNotFound(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_, err = c.Resolve("upsc", "stamp")
	if !domain.IsKind(err, domain.ErrSpecNotFound) {
		t.Fatalf("Resolve(upsc, stamp) error = %v, want ErrSpecNotFound", err)
	}

	_, err = c.Resolve("nonexistent", "photograph")
	if !domain.IsKind(err, domain.ErrAuthorityUnknown) {
		t.Fatalf("unknown authority error = %v, want ErrAuthorityUnknown", err)
	}
}

func TestParseRejectsDualPhysicalUnits(t *testing.T) {
	raw := []byte(`
authorities:
  demo:
    formats: [JPEG]
    documents:
      photograph:
        formats: [JPEG]
        size_kb: {max: 100}
        dimensions_cm: {width: 3.5, height: 4.5}
        dimensions_mm: {width: 35, height: 45}
`)
	if _, err := Parse(raw); err == nil {
		t.Fatalf("expected error for spec with both cm and mm dimensions")
	}
}

func TestParseRejectsMissingMax(t *testing.T) {
	raw := []byte(`
authorities:
  demo:
    formats: [JPEG]
    documents:
      photograph:
        formats: [JPEG]
        size_kb: {min: 10}
`)
	if _, err := Parse(raw); err == nil {
		t.Fatalf("expected error for spec without size_kb.max")
	}
}
