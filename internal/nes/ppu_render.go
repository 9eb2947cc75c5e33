package nes

// colors is the 2C02 master palette, packed as 0xAARRGGBB.
// http://www.thealmightyguru.com/Games/Hacking/Wiki/index.php/NES_Palette
var colors = [64]uint32{
	0xFF7C7C7C, 0xFF0000FC, 0xFF0000BC, 0xFF4428BC, 0xFF940084, 0xFFA80020, 0xFFA81000, 0xFF881400,
	0xFF503000, 0xFF007800, 0xFF006800, 0xFF005800, 0xFF004058, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFBCBCBC, 0xFF0078F8, 0xFF0058F8, 0xFF6844FC, 0xFFD800CC, 0xFFE40058, 0xFFF83800, 0xFFE45C10,
	0xFFAC7C00, 0xFF00B800, 0xFF00A800, 0xFF00A844, 0xFF008888, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFF8F8F8, 0xFF3CBCFC, 0xFF6888FC, 0xFF9878F8, 0xFFF878F8, 0xFFF85898, 0xFFF87858, 0xFFFCA044,
	0xFFF8B800, 0xFFB8F818, 0xFF58D854, 0xFF58F898, 0xFF00E8D8, 0xFF787878, 0xFF000000, 0xFF000000,
	0xFFFCFCFC, 0xFFA4E4FC, 0xFFB8B8F8, 0xFFD8B8F8, 0xFFF8B8F8, 0xFFF8A4C0, 0xFFF0D0B0, 0xFFFCE0A8,
	0xFFF8D878, 0xFFD8F878, 0xFFB8F8B8, 0xFFB8F8D8, 0xFF00FCFC, 0xFFF8D8F8, 0xFF000000, 0xFF000000,
}

const (
	bgPaletteAddr     = uint16(0x3F00)
	spritePaletteAddr = uint16(0x3F10)

	spriteAttrPalette = uint8(0x03)
	spriteAttrBehind  = uint8(1 << 5)
	spriteAttrFlipH   = uint8(1 << 6)
	spriteAttrFlipV   = uint8(1 << 7)
)

// color resolves a palette RAM address to a packed pixel.
func (p *PPU) color(paletteAddr uint16) uint32 {
	idx := p.mem.Read8(paletteAddr) & 0x3F
	if p.mask&maskGreyscale != 0 {
		idx &= 0x30
	}
	return colors[idx]
}

// renderPixel draws the pixel under the current cycle of a visible scanline.
func (p *PPU) renderPixel() {
	x := p.cycle
	y := p.scanline

	if !p.renderingEnabled() {
		p.frameBuf[y*ScreenWidth+x] = p.color(bgPaletteAddr)
		return
	}

	bgPixel, bgPalette := p.backgroundPixel()
	if p.mask&maskShowBg == 0 || (x < 8 && p.mask&maskShowLeftBg == 0) {
		bgPixel = 0
	}

	spPixel, spPalette, spAttr, spZero := p.spritePixel(x, y)
	if p.mask&maskShowSprites == 0 || (x < 8 && p.mask&maskShowLeftSprite == 0) {
		spPixel = 0
	}

	addr := bgPaletteAddr
	switch {
	case bgPixel == 0 && spPixel == 0:
	case bgPixel == 0:
		addr = spritePaletteAddr | uint16(spPalette)<<2 | uint16(spPixel)
	case spPixel == 0:
		addr = bgPaletteAddr | uint16(bgPalette)<<2 | uint16(bgPixel)
	default:
		if spZero && x != ScreenWidth-1 {
			p.status |= statusSpriteHit
		}
		if spAttr&spriteAttrBehind != 0 {
			addr = bgPaletteAddr | uint16(bgPalette)<<2 | uint16(bgPixel)
		} else {
			addr = spritePaletteAddr | uint16(spPalette)<<2 | uint16(spPixel)
		}
	}
	p.frameBuf[y*ScreenWidth+x] = p.color(addr)
}

// backgroundPixel fetches the background pixel at v and fine x, then moves
// one pixel right. It returns the 2 bit pattern value and the attribute
// palette.
func (p *PPU) backgroundPixel() (pixel uint8, palette uint8) {
	tile := uint16(p.mem.Read8(0x2000 | (p.v & 0x0FFF)))
	fineY := (p.v >> 12) & 0x07

	table := uint16(0)
	if p.ctrl&ctrlBackgroundTable != 0 {
		table = 0x1000
	}
	patternAddr := table + tile*16 + fineY
	lo := p.mem.Read8(patternAddr)
	hi := p.mem.Read8(patternAddr + 8)

	bit := 7 - p.xShift
	pixel = (lo>>bit)&1 | ((hi>>bit)&1)<<1

	// one attribute byte covers 4x4 tiles, 2 bits per 2x2 quadrant
	attrAddr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	shift := ((p.v >> 4) & 0x04) | (p.v & 0x02)
	palette = (p.mem.Read8(attrAddr) >> shift) & 0x03

	p.xShift++
	if p.xShift == 8 {
		p.xShift = 0
		p.incrementX()
	}
	return pixel, palette
}

// spritePixel returns the first opaque sprite pixel at x on scanline y.
// The buffer is in OAM order, so the first hit is the one on top.
func (p *PPU) spritePixel(x, y int) (pixel, palette, attr uint8, zero bool) {
	height := p.spriteHeight()
	for i := 0; i < p.spriteCount; i++ {
		s := p.sprites[i]
		col := x - int(s.x)
		if col < 0 || col > 7 {
			continue
		}
		row := y - int(s.y) - 1
		if row < 0 || row >= height {
			continue
		}

		if s.attr&spriteAttrFlipV != 0 {
			row = height - 1 - row
		}
		if s.attr&spriteAttrFlipH != 0 {
			col = 7 - col
		}

		addr := p.spritePatternAddr(s.tile, row)
		lo := p.mem.Read8(addr)
		hi := p.mem.Read8(addr + 8)
		bit := uint8(7 - col)
		px := (lo>>bit)&1 | ((hi>>bit)&1)<<1
		if px == 0 {
			continue
		}
		return px, s.attr & spriteAttrPalette, s.attr, s.index == 0
	}
	return 0, 0, 0, false
}

func (p *PPU) spritePatternAddr(tile uint8, row int) uint16 {
	if p.spriteHeight() == 8 {
		table := uint16(0)
		if p.ctrl&ctrlSpriteTable != 0 {
			table = 0x1000
		}
		return table + uint16(tile)*16 + uint16(row)
	}

	// 8x16 sprites take the table from bit 0 of the tile number
	table := uint16(tile&1) * 0x1000
	tile &^= 1
	if row >= 8 {
		tile++
		row -= 8
	}
	return table + uint16(tile)*16 + uint16(row)
}
