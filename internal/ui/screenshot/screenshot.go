// Package screenshot exports frames as PNG files.
package screenshot

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
)

// Save writes img to path as a PNG, scaled by scale.
func Save(path string, img image.Image, scale float64) error {
	if scale <= 0 {
		return fmt.Errorf("invalid scale %v", scale)
	}
	bounds := img.Bounds()
	dc := gg.NewContext(int(float64(bounds.Dx())*scale), int(float64(bounds.Dy())*scale))
	dc.Scale(scale, scale)
	dc.DrawImage(img, 0, 0)
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save screenshot %s: %w", path, err)
	}
	return nil
}
