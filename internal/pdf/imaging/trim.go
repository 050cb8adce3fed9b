// Package imaging post-processes rendered crops of exam pages.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// FilePerm is the mode of every image written by this package
const FilePerm = 0o644

// TrimStatus describes what Trim did to a file
type TrimStatus int

const (
	// TrimApplied means the file was cropped and rewritten.
	TrimApplied TrimStatus = iota
	// TrimUnchanged means the padded foreground already spans the image.
	TrimUnchanged
	// TrimNoForeground means the image is entirely white and was left alone.
	TrimNoForeground
	// TrimFailed means the file could not be read, decoded or written.
	TrimFailed
)

func (s TrimStatus) String() string {
	switch s {
	case TrimApplied:
		return "applied"
	case TrimUnchanged:
		return "unchanged"
	case TrimNoForeground:
		return "no_foreground"
	case TrimFailed:
		return "failed"
	default:
		return fmt.Sprintf("TrimStatus(%d)", int(s))
	}
}

// TrimResult reports the outcome of trimming one file. Failures are carried
// here and never returned as errors; callers keep the untrimmed image.
type TrimResult struct {
	Path   string
	Status TrimStatus
	Bounds image.Rectangle
	Err    error
}

// Trim crops the uniform white border around the image at path, keeping
// padding pixels of margin, and overwrites the file in place.
func Trim(path string, padding int) TrimResult {
	result := TrimResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Status = TrimFailed
		result.Err = fmt.Errorf("failed to read image: %w", err)
		return result
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		result.Status = TrimFailed
		result.Err = fmt.Errorf("failed to decode image: %w", err)
		return result
	}

	trimmed, crop, ok := TrimImage(img, padding)
	result.Bounds = crop
	switch {
	case !ok:
		result.Status = TrimNoForeground
		return result
	case crop == img.Bounds():
		result.Status = TrimUnchanged
		return result
	}

	if err := WritePNG(path, trimmed); err != nil {
		result.Status = TrimFailed
		result.Err = err
		return result
	}

	result.Status = TrimApplied
	return result
}

// TrimImage returns the image cropped to its non-white content expanded by
// padding and clamped to the image bounds. The second return value is the
// crop rectangle in the source's coordinates. It reports false when every
// pixel is white.
func TrimImage(img image.Image, padding int) (image.Image, image.Rectangle, bool) {
	fg, ok := ForegroundBounds(img)
	if !ok {
		return img, img.Bounds(), false
	}

	crop := image.Rect(fg.Min.X-padding, fg.Min.Y-padding, fg.Max.X+padding, fg.Max.Y+padding).
		Intersect(img.Bounds())
	if crop == img.Bounds() {
		return img, crop, true
	}

	dst := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Copy(dst, image.Point{}, img, crop, draw.Src, nil)
	return dst, crop, true
}

// ForegroundBounds returns the smallest rectangle holding every pixel whose
// colour differs from pure white. Alpha is ignored.
func ForegroundBounds(img image.Image) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	white := whiteTest(img)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if white(x, y) {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}

	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

func whiteTest(img image.Image) func(x, y int) bool {
	switch src := img.(type) {
	case *image.RGBA:
		return func(x, y int) bool {
			i := src.PixOffset(x, y)
			p := src.Pix[i : i+3 : i+3]
			return p[0] == 0xff && p[1] == 0xff && p[2] == 0xff
		}
	case *image.NRGBA:
		return func(x, y int) bool {
			i := src.PixOffset(x, y)
			p := src.Pix[i : i+3 : i+3]
			return p[0] == 0xff && p[1] == 0xff && p[2] == 0xff
		}
	case *image.Gray:
		return func(x, y int) bool {
			return src.GrayAt(x, y).Y == 0xff
		}
	default:
		return func(x, y int) bool {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			return c.R == 0xff && c.G == 0xff && c.B == 0xff
		}
	}
}

// WritePNG encodes img next to path and renames it into place, so readers
// never observe a partially written file.
func WritePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close image: %w", err)
	}
	if err := os.Chmod(tmpName, FilePerm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set image permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace image: %w", err)
	}
	return nil
}
