package nes

import (
	"image"
	"image/color"
)

// DebugInfo returns the registers for the debug panel.
func (b *Bus) DebugInfo() CPUState {
	return b.CPUState()
}

func toRGBA(c uint32) color.RGBA {
	return color.RGBA{
		R: uint8(c >> 16),
		G: uint8(c >> 8),
		B: uint8(c),
		A: uint8(c >> 24),
	}
}

// PaletteColor returns color index (0-3) of palette (0-3 background,
// 4-7 sprites) as it is currently set in palette RAM.
func (b *Bus) PaletteColor(palette, index uint8) color.RGBA {
	addr := bgPaletteAddr | uint16(palette&0x07)<<2 | uint16(index&0x03)
	return toRGBA(colors[b.ppuMem.Read8(addr)&0x3F])
}

// PatternTable draws pattern table 0 or 1 as a 16x16 grid of tiles using
// the given palette.
func (b *Bus) PatternTable(palette, table uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 128, 128))
	base := uint16(table&0x1) * 0x1000

	for tileY := 0; tileY < 16; tileY++ {
		for tileX := 0; tileX < 16; tileX++ {
			offset := base + uint16(tileY*16+tileX)*16
			for row := 0; row < 8; row++ {
				lo := b.ppuMem.Read8(offset + uint16(row))
				hi := b.ppuMem.Read8(offset + uint16(row) + 8)
				for col := 0; col < 8; col++ {
					bit := 7 - col
					pixel := (lo>>bit)&1 | ((hi>>bit)&1)<<1
					img.SetRGBA(tileX*8+col, tileY*8+row, b.PaletteColor(palette, pixel))
				}
			}
		}
	}
	return img
}

// Screen copies the frame buffer into an image.
func (b *Bus) Screen() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	for i, c := range b.ppu.Frame() {
		p := toRGBA(c)
		j := i * 4
		img.Pix[j+0] = p.R
		img.Pix[j+1] = p.G
		img.Pix[j+2] = p.B
		img.Pix[j+3] = p.A
	}
	return img
}
