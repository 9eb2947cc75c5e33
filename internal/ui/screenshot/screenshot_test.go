package screenshot

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, Save(path, solid(16, 15, color.RGBA{R: 0xFF, A: 0xFF}), 2))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 30), img.Bounds())

	// scaling filters, allow for rounding
	r, g, b, a := img.At(16, 15).RGBA()
	assert.InDelta(t, 0xFFFF, r, 0x200)
	assert.Zero(t, g)
	assert.Zero(t, b)
	assert.InDelta(t, 0xFFFF, a, 0x200)
}

func TestSave_Errors(t *testing.T) {
	img := solid(1, 1, color.RGBA{A: 0xFF})

	assert.Error(t, Save(filepath.Join(t.TempDir(), "frame.png"), img, 0))
	assert.Error(t, Save(filepath.Join(t.TempDir(), "missing", "frame.png"), img, 1))
}
