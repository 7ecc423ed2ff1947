package engine

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

// BaselineDecoder is the pure-Go in-process decoder. It handles the common
// raster formats and nothing paginated.
type BaselineDecoder struct{}

func NewBaselineDecoder() *BaselineDecoder {
	return &BaselineDecoder{}
}

func (d *BaselineDecoder) Kind() domain.EngineKind {
	return domain.EngineBaseline
}

func (d *BaselineDecoder) Decode(data []byte, mediaType, filename string) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s (%s): %w", filename, mediaType, err)
	}
	return img, nil
}
