package nes

import (
	"github.com/nevisdale/nestic/internal/mirror"
)

type ReadWriter interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, data uint8)
}

// Cartridge is what the buses need from a cartridge. Both address spaces go
// through it, and the picture bus asks it how to mirror the nametables.
type Cartridge interface {
	CPURead(addr uint16) uint8
	CPUWrite(addr uint16, data uint8)
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, data uint8)
	Mirroring() mirror.Mode
	Reset()
}

// ioRegister is one memory mapped register. Either handler may be nil:
// a nil read returns the open bus value, a nil write is dropped.
type ioRegister struct {
	read  func() uint8
	write func(data uint8)
}

// $0000-$07FF: 2 KB of internal RAM
// $0800-$1FFF: Mirrors of $0000-$07FF
// $2000-$2007: PPU (Picture Processing Unit) registers
// $2008-$3FFF: Mirrors of $2000-$2007 (every 8 bytes)
// $4000-$4017: APU (Audio Processing Unit) and I/O registers
// $4018-$401F: APU and I/O functionality that is normally disabled
// $4020-$FFFF: Cartridge space, including PRG-ROM, PRG-RAM, and mapper registers
type cpuMemory struct {
	bus *Bus
}

func (b *Bus) newCpuMemory() *cpuMemory {
	return &cpuMemory{bus: b}
}

func (c *cpuMemory) Read8(addr uint16) uint8 {
	switch {
	// read from ram
	case addr < 0x2000:
		return c.bus.ram.Read8(addr)
	// read from ppu, apu and io
	case addr < 0x4020:
		reg, ok := c.bus.io[mirror.IO(addr)]
		if !ok || reg.read == nil {
			return c.bus.ppu.readOpenBus()
		}
		return reg.read()
	}

	// read from cartridge
	if c.bus.cart == nil {
		return 0
	}
	return c.bus.cart.CPURead(addr)
}

func (c *cpuMemory) Write8(addr uint16, data uint8) {
	switch {
	// write to ram
	case addr < 0x2000:
		c.bus.ram.Write8(addr, data)
		return
	// write to ppu, apu and io
	case addr < 0x4020:
		reg, ok := c.bus.io[mirror.IO(addr)]
		if ok && reg.write != nil {
			reg.write(data)
		}
		return
	}

	// write to cartridge
	if c.bus.cart != nil {
		c.bus.cart.CPUWrite(addr, data)
	}
}

// $0000-$0FFF: Pattern table 0
// $1000-$1FFF: Pattern table 1
// $2000-$23FF: Nametable 0
// $2400-$27FF: Nametable 1
// $2800-$2BFF: Nametable 2
// $2C00-$2FFF: Nametable 3
// $3000-$3EFF: Mirrors of $2000-$2FFF
// $3F00-$3F1F: Palette RAM indexes
// $3F20-$3FFF: Mirrors of $3F00-$3F1F
//
// Nametables get the full 4 KB so four-screen carts need no extra RAM on
// the cartridge side. The other mirroring modes only touch part of it.
type ppuMemory struct {
	cart       Cartridge
	nametables [0x1000]uint8
	palettes   [0x20]uint8
}

func newPpuMemory() *ppuMemory {
	return &ppuMemory{}
}

func (p *ppuMemory) Read8(addr uint16) uint8 {
	addr = mirror.PPU(addr)
	switch {
	case addr < 0x2000:
		if p.cart == nil {
			return 0
		}
		return p.cart.PPURead(addr)
	case addr < 0x3F00:
		return p.nametables[p.nametableOffset(addr)]
	}
	return p.palettes[mirror.PaletteIndex(addr)]
}

func (p *ppuMemory) Write8(addr uint16, data uint8) {
	addr = mirror.PPU(addr)
	switch {
	case addr < 0x2000:
		if p.cart != nil {
			p.cart.PPUWrite(addr, data)
		}
	case addr < 0x3F00:
		p.nametables[p.nametableOffset(addr)] = data
	default:
		p.palettes[mirror.PaletteIndex(addr)] = data
	}
}

func (p *ppuMemory) nametableOffset(addr uint16) uint16 {
	mode := mirror.Horizontal
	if p.cart != nil {
		mode = p.cart.Mirroring()
	}
	return mirror.NametableOffset(addr, mode)
}
