package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/layout"
)

// DefaultBinary is the poppler command used when none is configured
const DefaultBinary = "pdftoppm"

// Pdftoppm renders clips by invoking poppler's pdftoppm with crop arguments
type Pdftoppm struct {
	binary string
	path   string
}

// NewPdftoppm returns a rasterizer for the PDF at path
func NewPdftoppm(binary, path string) *Pdftoppm {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Pdftoppm{binary: binary, path: path}
}

// PdftoppmFactory returns a Factory that checks the binary is installed
// before binding it to a file.
func PdftoppmFactory(binary string) Factory {
	return func(pdfPath string) (Rasterizer, error) {
		r := NewPdftoppm(binary, pdfPath)
		if err := r.Available(); err != nil {
			return nil, err
		}
		return r, nil
	}
}

// Available reports whether the configured binary can be found
func (r *Pdftoppm) Available() error {
	if _, err := exec.LookPath(r.binary); err != nil {
		return fmt.Errorf("rasterizer %q not found: %w", r.binary, err)
	}
	return nil
}

// Args builds the pdftoppm command line for one clip
func (r *Pdftoppm) Args(page int, px image.Rectangle, zoom float64, outPrefix string) []string {
	dpi := strconv.FormatFloat(BaseDPI*zoom, 'f', -1, 64)
	return []string{
		"-png",
		"-r", dpi,
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-x", strconv.Itoa(px.Min.X),
		"-y", strconv.Itoa(px.Min.Y),
		"-W", strconv.Itoa(px.Dx()),
		"-H", strconv.Itoa(px.Dy()),
		"-singlefile",
		r.path,
		outPrefix,
	}
}

// Render rasterizes clip on the given 1-based page
func (r *Pdftoppm) Render(ctx context.Context, page int, clip layout.Rect, zoom float64) (image.Image, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page number: %d", page)
	}
	px, err := PixelRect(clip, zoom)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "quiz-render-")
	if err != nil {
		return nil, fmt.Errorf("failed to create render directory: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "clip")
	cmd := exec.CommandContext(ctx, r.binary, r.Args(page, px, zoom, prefix)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s failed on page %d: %w: %s", r.binary, page, err, msg)
		}
		return nil, fmt.Errorf("%s failed on page %d: %w", r.binary, page, err)
	}

	f, err := os.Open(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("rasterizer produced no image: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode rendered image: %w", err)
	}
	return toRGBA(img), nil
}
