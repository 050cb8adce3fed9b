// Package render rasterizes clipped areas of PDF pages.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/imaging"
	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/layout"
)

// BaseDPI is the PDF user-space resolution; zoom 1 renders at this density.
const BaseDPI = 72

// ErrEmptyClip is returned for clips that cover no pixels at the requested zoom
var ErrEmptyClip = errors.New("clip area is empty")

// Rasterizer renders a clipped area of a page at a given zoom. Pages are
// 1-based and clips are in page space.
type Rasterizer interface {
	Render(ctx context.Context, page int, clip layout.Rect, zoom float64) (image.Image, error)
}

// Factory returns a Rasterizer bound to one PDF file
type Factory func(pdfPath string) (Rasterizer, error)

// PixelRect converts a page-space clip into the pixel rectangle covered at
// the given zoom, rounding outward.
func PixelRect(clip layout.Rect, zoom float64) (image.Rectangle, error) {
	if zoom <= 0 {
		return image.Rectangle{}, fmt.Errorf("invalid zoom: %v", zoom)
	}
	r := image.Rect(
		int(math.Floor(clip.X0*zoom)),
		int(math.Floor(clip.Y0*zoom)),
		int(math.Ceil(clip.X1*zoom)),
		int(math.Ceil(clip.Y1*zoom)),
	)
	if clip.Empty() || r.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: %s", ErrEmptyClip, clip)
	}
	return r, nil
}

// SavePNG writes a rendered image, creating its directory when needed
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	return imaging.WritePNG(path, img)
}

// toRGBA converts any decoded image into an *image.RGBA anchored at the origin
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
