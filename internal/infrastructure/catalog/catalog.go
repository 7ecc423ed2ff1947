// Package catalog loads authority requirement tables from YAML and resolves
// (authority, document category) pairs to their Specification. The catalog
// is read-only configuration; resolution is a pure lookup.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

//go:embed profiles.yaml
var defaultProfiles []byte

type Catalog struct {
	profiles map[string]*domain.ExamProfile
}

type catalogYAML struct {
	Authorities map[string]profileYAML `yaml:"authorities"`
}

type profileYAML struct {
	Formats   []string            `yaml:"formats"`
	Documents map[string]specYAML `yaml:"documents"`
}

type specYAML struct {
	Formats []string `yaml:"formats"`
	SizeKB  struct {
		Min int64 `yaml:"min"`
		Max int64 `yaml:"max"`
	} `yaml:"size_kb"`
	Pixels     *pixelYAML `yaml:"pixels"`
	PixelRange *struct {
		Min pixelYAML `yaml:"min"`
		Max pixelYAML `yaml:"max"`
	} `yaml:"pixel_range"`
	DimensionsCM *physicalYAML `yaml:"dimensions_cm"`
	DimensionsMM *physicalYAML `yaml:"dimensions_mm"`
	AspectRatio  *struct {
		Min float64 `yaml:"min"`
		Max float64 `yaml:"max"`
	} `yaml:"aspect_ratio"`
}

type pixelYAML struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type physicalYAML struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Load reads the catalog from path, or the embedded default when path is
// empty.
func Load(path string) (*Catalog, error) {
	raw := defaultProfiles
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		raw = data
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var doc catalogYAML
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	if len(doc.Authorities) == 0 {
		return nil, fmt.Errorf("catalog declares no authorities")
	}

	profiles := make(map[string]*domain.ExamProfile, len(doc.Authorities))
	for authority, p := range doc.Authorities {
		profile := &domain.ExamProfile{
			AuthorityID: authority,
			Formats:     p.Formats,
			Specs:       make(map[domain.DocumentCategory]domain.Specification, len(p.Documents)),
		}
		for docType, s := range p.Documents {
			spec, err := s.toDomain()
			if err != nil {
				return nil, fmt.Errorf("catalog %s/%s: %w", authority, docType, err)
			}
			profile.Specs[domain.DocumentCategory(docType)] = spec
		}
		profiles[authority] = profile
	}

	return &Catalog{profiles: profiles}, nil
}

func (s specYAML) toDomain() (domain.Specification, error) {
	if s.DimensionsCM != nil && s.DimensionsMM != nil {
		return domain.Specification{}, fmt.Errorf("both cm and mm dimensions declared")
	}

	spec := domain.Specification{
		Formats: s.Formats,
		Size: domain.SizeWindow{
			Min: s.SizeKB.Min * 1024,
			Max: s.SizeKB.Max * 1024,
		},
	}
	if s.Pixels != nil {
		spec.Pixels = &domain.PixelSize{Width: s.Pixels.Width, Height: s.Pixels.Height}
	}
	if s.PixelRange != nil {
		spec.PixelRange = &domain.PixelRange{
			Min: domain.PixelSize{Width: s.PixelRange.Min.Width, Height: s.PixelRange.Min.Height},
			Max: domain.PixelSize{Width: s.PixelRange.Max.Width, Height: s.PixelRange.Max.Height},
		}
	}
	if s.DimensionsCM != nil {
		spec.Physical = &domain.PhysicalSize{Width: s.DimensionsCM.Width, Height: s.DimensionsCM.Height, Unit: domain.UnitCM}
	}
	if s.DimensionsMM != nil {
		spec.Physical = &domain.PhysicalSize{Width: s.DimensionsMM.Width, Height: s.DimensionsMM.Height, Unit: domain.UnitMM}
	}
	if s.AspectRatio != nil {
		spec.AspectRatio = &domain.AspectRatio{Min: s.AspectRatio.Min, Max: s.AspectRatio.Max}
	}

	if err := spec.Validate(); err != nil {
		return domain.Specification{}, err
	}
	return spec, nil
}

// Authorities lists known authority ids in stable order.
func (c *Catalog) Authorities() []string {
	out := make([]string, 0, len(c.profiles))
	for id := range c.profiles {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Profile(authorityID string) (*domain.ExamProfile, error) {
	profile, ok := c.profiles[authorityID]
	if !ok {
		return nil, domain.WrapError(domain.ErrAuthorityUnknown, "resolve profile",
			fmt.Errorf("authority %q not in catalog", authorityID))
	}
	return profile, nil
}

// Resolve returns the Specification for (authority, category). A missing
// category is expected when the classifier's taxonomy is broader than the
// authority's requirements and is surfaced verbatim, never substituted.
func (c *Catalog) Resolve(authorityID string, category domain.DocumentCategory) (domain.Specification, error) {
	profile, err := c.Profile(authorityID)
	if err != nil {
		return domain.Specification{}, err
	}
	spec, ok := profile.Specs[category]
	if !ok {
		return domain.Specification{}, domain.WrapError(domain.ErrSpecNotFound, "resolve specification",
			fmt.Errorf("authority %q has no requirements for category %q", authorityID, category))
	}
	return spec, nil
}
