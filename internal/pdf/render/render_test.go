package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/layout"
)

func TestPixelRect(t *testing.T) {
	tests := []struct {
		name    string
		clip    layout.Rect
		zoom    float64
		want    image.Rectangle
		wantErr bool
	}{
		{
			name: "integral coordinates",
			clip: layout.Rect{X0: 10, Y0: 20, X1: 110, Y1: 70},
			zoom: 2,
			want: image.Rect(20, 40, 220, 140),
		},
		{
			name: "fractional coordinates round outward",
			clip: layout.Rect{X0: 10.2, Y0: 20.7, X1: 30.1, Y1: 40.4},
			zoom: 2,
			want: image.Rect(20, 41, 61, 81),
		},
		{
			name:    "inverted clip",
			clip:    layout.Rect{X0: 50, Y0: 20, X1: 40, Y1: 70},
			zoom:    2,
			wantErr: true,
		},
		{
			name:    "zero zoom",
			clip:    layout.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10},
			zoom:    0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PixelRect(tt.clip, tt.zoom)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := PixelRect(layout.Rect{X0: 5, Y0: 5, X1: 5, Y1: 9}, 2)
	assert.True(t, errors.Is(err, ErrEmptyClip))
}

func TestPdftoppmArgs(t *testing.T) {
	r := NewPdftoppm("", "/tmp/exam.pdf")
	args := r.Args(3, image.Rect(20, 40, 220, 140), 2, "/tmp/out/clip")

	assert.Equal(t, []string{
		"-png",
		"-r", "144",
		"-f", "3",
		"-l", "3",
		"-x", "20",
		"-y", "40",
		"-W", "200",
		"-H", "100",
		"-singlefile",
		"/tmp/exam.pdf",
		"/tmp/out/clip",
	}, args)
}

func TestPdftoppmRenderWithStubBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}

	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.png")
	src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	src.Set(1, 1, color.Black)
	f, err := os.Create(fixture)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	stub := filepath.Join(dir, "pdftoppm-stub")
	script := "#!/bin/sh\nfor a; do last=$a; done\ncp \"$QUIZ_RENDER_FIXTURE\" \"$last.png\"\n"
	require.NoError(t, os.WriteFile(stub, []byte(script), 0o755))
	t.Setenv("QUIZ_RENDER_FIXTURE", fixture)

	factory := PdftoppmFactory(stub)
	r, err := factory(filepath.Join(dir, "exam.pdf"))
	require.NoError(t, err)

	img, err := r.Render(context.Background(), 1, layout.Rect{X0: 0, Y0: 0, X1: 2, Y1: 1.5}, 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	_, ok := img.(*image.RGBA)
	assert.True(t, ok)
}

func TestPdftoppmRenderErrors(t *testing.T) {
	r := NewPdftoppm("definitely-not-a-real-binary", "exam.pdf")
	assert.Error(t, r.Available())

	_, err := r.Render(context.Background(), 0, layout.Rect{X1: 10, Y1: 10}, 2)
	assert.Error(t, err)

	_, err = r.Render(context.Background(), 1, layout.Rect{X0: 10, X1: 5, Y1: 10}, 2)
	assert.ErrorIs(t, err, ErrEmptyClip)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Render(ctx, 1, layout.Rect{X1: 10, Y1: 10}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSavePNGCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "5", "images", "q1.png")
	require.NoError(t, SavePNG(path, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
