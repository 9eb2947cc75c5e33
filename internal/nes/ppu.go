package nes

import "fmt"

const (
	ScreenWidth  = 256
	ScreenHeight = 240

	ppuCyclesPerScanline = 341
	ppuPreRenderScanline = -1
	ppuPostRenderLine    = 240
	ppuVBlankLine        = 241
	ppuLastScanline      = 260

	oamSizeBytes      = 0x100
	maxSpritesPerLine = 8
)

// PPUCTRL ($2000)
const (
	ctrlNametable       = uint8(0x03) // base nametable, bits 10-11 of t
	ctrlIncrement32     = uint8(1 << 2)
	ctrlSpriteTable     = uint8(1 << 3)
	ctrlBackgroundTable = uint8(1 << 4)
	ctrlSpriteSize16    = uint8(1 << 5)
	ctrlNMI             = uint8(1 << 7)
)

// PPUMASK ($2001)
const (
	maskGreyscale      = uint8(1 << 0)
	maskShowLeftBg     = uint8(1 << 1)
	maskShowLeftSprite = uint8(1 << 2)
	maskShowBg         = uint8(1 << 3)
	maskShowSprites    = uint8(1 << 4)
)

// PPUSTATUS ($2002)
const (
	statusOverflow  = uint8(1 << 5)
	statusSpriteHit = uint8(1 << 6)
	statusVBlank    = uint8(1 << 7)
)

type ppuState uint8

const (
	ppuStatePreRender ppuState = iota
	ppuStateVisible
	ppuStateSpritePrefetch
	ppuStateHBlank
	ppuStatePostRender
	ppuStateVBlank
)

func (s ppuState) String() string {
	switch s {
	case ppuStatePreRender:
		return "pre-render"
	case ppuStateVisible:
		return "visible"
	case ppuStateSpritePrefetch:
		return "sprite-prefetch"
	case ppuStateHBlank:
		return "hblank"
	case ppuStatePostRender:
		return "post-render"
	case ppuStateVBlank:
		return "vblank"
	}
	return "???"
}

// sprite is one entry of the secondary OAM, filled for the next scanline.
type sprite struct {
	y     uint8
	tile  uint8
	attr  uint8
	x     uint8
	index uint8 // offset in OAM / 4, 0 is sprite zero
}

// PPUState is a snapshot of the PPU counters.
type PPUState struct {
	Cycle    int
	Scanline int
	Frame    uint64
	State    string
	V        uint16
	T        uint16
	Status   uint8
}

func (s PPUState) String() string {
	return fmt.Sprintf("PPU:%3d,%3d frame:%d %s", s.Scanline, s.Cycle, s.Frame, s.State)
}

type PPU struct {
	mem ReadWriter
	nmi func()

	// Registers
	ctrl   uint8
	mask   uint8
	status uint8

	oamAddr uint8
	oam     [oamSizeBytes]uint8

	// Internal registers:
	// v - current VRAM address, 15 bits
	// t - temporary VRAM address, the top left onscreen tile
	// fineX - fine X scroll, 3 bits
	// w - first or second write toggle for $2005/$2006
	v     uint16
	t     uint16
	fineX uint8
	w     bool

	// $2007 reads below the palettes come from here
	readBuffer uint8

	// last value put on the register bus
	dataLatch uint8

	cycle    int
	scanline int
	state    ppuState
	frame    uint64

	frameComplete bool

	// fine x of the pixel being drawn, in the tile addressed by v
	xShift uint8

	sprites     [maxSpritesPerLine]sprite
	spriteCount int

	frameBuf []uint32
}

// NewPPU returns a PPU reading its address space through mem. nmi is
// called whenever the PPU raises a non-maskable interrupt.
func NewPPU(mem ReadWriter, nmi func()) *PPU {
	p := &PPU{
		mem:      mem,
		nmi:      nmi,
		frameBuf: make([]uint32, ScreenWidth*ScreenHeight),
	}
	p.Reset()
	return p
}

func (p *PPU) Reset() {
	p.ctrl = 0
	p.mask = 0
	p.status = 0
	p.oamAddr = 0
	p.v = 0
	p.t = 0
	p.fineX = 0
	p.w = false
	p.readBuffer = 0
	p.dataLatch = 0
	p.cycle = 0
	p.scanline = ppuPreRenderScanline
	p.state = ppuStatePreRender
	p.frame = 0
	p.frameComplete = false
	p.xShift = 0
	p.spriteCount = 0
}

func (p *PPU) State() PPUState {
	return PPUState{
		Cycle:    p.cycle,
		Scanline: p.scanline,
		Frame:    p.frame,
		State:    p.state.String(),
		V:        p.v,
		T:        p.t,
		Status:   p.status,
	}
}

// Frame is the frame buffer, 256x240 pixels in raster order, each pixel
// packed as 0xAARRGGBB. The same slice is drawn into again after
// ClearFrameComplete.
func (p *PPU) Frame() []uint32 {
	return p.frameBuf
}

func (p *PPU) FrameComplete() bool {
	return p.frameComplete
}

func (p *PPU) ClearFrameComplete() {
	p.frameComplete = false
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&(maskShowBg|maskShowSprites) != 0
}

func (p *PPU) spriteHeight() int {
	if p.ctrl&ctrlSpriteSize16 != 0 {
		return 16
	}
	return 8
}

// Step runs one PPU cycle.
func (p *PPU) Step() {
	switch p.state {
	case ppuStatePreRender:
		p.preRender()
	case ppuStateVisible:
		p.renderPixel()
	case ppuStateSpritePrefetch:
		p.spritePrefetch()
	case ppuStateHBlank, ppuStatePostRender:
	case ppuStateVBlank:
		p.vblank()
	default:
		panic(fmt.Sprintf("nes: unknown ppu state %d", p.state))
	}
	p.advance()
}

func (p *PPU) advance() {
	p.cycle++
	switch {
	case p.cycle == ScreenWidth && p.scanline < ppuPostRenderLine:
		p.state = ppuStateSpritePrefetch
	case p.cycle == 320 && p.state == ppuStateSpritePrefetch:
		p.state = ppuStateHBlank
	case p.cycle == ppuCyclesPerScanline:
		p.cycle = 0
		p.nextScanline()
	}
}

func (p *PPU) nextScanline() {
	p.scanline++
	switch {
	case p.scanline < ppuPostRenderLine:
		p.state = ppuStateVisible
		p.xShift = p.fineX
	case p.scanline == ppuPostRenderLine:
		p.state = ppuStatePostRender
	case p.scanline <= ppuLastScanline:
		p.state = ppuStateVBlank
	default:
		p.scanline = ppuPreRenderScanline
		p.state = ppuStatePreRender
		p.frameComplete = true
		p.frame++
	}
}

func (p *PPU) preRender() {
	if p.cycle == 1 {
		p.status &^= statusVBlank | statusSpriteHit | statusOverflow
	}
}

// vblank raises the flag and the NMI at scanline 241 cycle 1, one line
// after the post-render line, where the hardware does it.
func (p *PPU) vblank() {
	if p.scanline == ppuVBlankLine && p.cycle == 1 {
		p.status |= statusVBlank
		if p.ctrl&ctrlNMI != 0 {
			p.nmi()
		}
	}
}

func (p *PPU) spritePrefetch() {
	if p.renderingEnabled() {
		switch {
		case p.cycle == 256:
			p.incrementY()
		case p.cycle == 257:
			p.copyX()
		case p.scanline == ppuPreRenderScanline && p.cycle >= 280 && p.cycle <= 304:
			p.copyY()
		}
	}
	if p.cycle == 257 {
		p.evaluateSprites()
	}
}

// Loopy register layout:
//
//	yyy NN YYYYY XXXXX
//	||| || ||||| +++++-- coarse X scroll
//	||| || +++++-------- coarse Y scroll
//	||| ++-------------- nametable select
//	+++----------------- fine Y scroll
func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
		return
	}
	p.v++
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | y<<5
}

func (p *PPU) copyX() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

func (p *PPU) copyY() {
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}

// evaluateSprites fills the sprite buffer with the sprites visible on the
// next scanline, in OAM order.
func (p *PPU) evaluateSprites() {
	p.spriteCount = 0
	if !p.renderingEnabled() {
		return
	}

	height := p.spriteHeight()
	for i := 0; i < oamSizeBytes/4; i++ {
		y := p.oam[i*4]
		// OAM holds the sprite top minus one, so the sprite covers the
		// next scanline when this one is within its height
		row := p.scanline - int(y)
		if row < 0 || row >= height {
			continue
		}
		if p.spriteCount == maxSpritesPerLine {
			p.status |= statusOverflow
			break
		}
		p.sprites[p.spriteCount] = sprite{
			y:     y,
			tile:  p.oam[i*4+1],
			attr:  p.oam[i*4+2],
			x:     p.oam[i*4+3],
			index: uint8(i),
		}
		p.spriteCount++
	}
}
