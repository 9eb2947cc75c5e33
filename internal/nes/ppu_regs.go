package nes

// Register access from the CPU side, $2000-$2007. Every access drives the
// register bus, so the value ends up in dataLatch.

func (p *PPU) readOpenBus() uint8 {
	return p.dataLatch
}

// $2000 PPUCTRL
func (p *PPU) writeCtrl(data uint8) {
	p.dataLatch = data
	nmiWasOn := p.ctrl&ctrlNMI != 0
	p.ctrl = data
	p.t = (p.t &^ 0x0C00) | uint16(data&ctrlNametable)<<10

	// turning NMI on during vblank fires it straight away
	if !nmiWasOn && data&ctrlNMI != 0 && p.status&statusVBlank != 0 {
		p.nmi()
	}
}

// $2001 PPUMASK
func (p *PPU) writeMask(data uint8) {
	p.dataLatch = data
	p.mask = data
}

// $2002 PPUSTATUS
//
// Only the top three bits are driven, the rest is whatever was on the bus.
func (p *PPU) readStatus() uint8 {
	r := (p.status & 0xE0) | (p.dataLatch & 0x1F)
	p.status &^= statusVBlank
	p.w = false
	p.dataLatch = r
	return r
}

// $2003 OAMADDR
func (p *PPU) writeOAMAddr(data uint8) {
	p.dataLatch = data
	p.oamAddr = data
}

// $2004 OAMDATA
func (p *PPU) readOAMData() uint8 {
	r := p.oam[p.oamAddr]
	p.dataLatch = r
	return r
}

func (p *PPU) writeOAMData(data uint8) {
	p.dataLatch = data
	p.oam[p.oamAddr] = data
	p.oamAddr++
}

// $2005 PPUSCROLL
func (p *PPU) writeScroll(data uint8) {
	p.dataLatch = data
	if !p.w {
		p.t = (p.t &^ 0x001F) | uint16(data>>3)
		p.fineX = data & 0x07
		p.w = true
		return
	}
	p.t = (p.t &^ 0x73E0) | uint16(data&0x07)<<12 | uint16(data>>3)<<5
	p.w = false
}

// $2006 PPUADDR, high byte first
func (p *PPU) writeAddr(data uint8) {
	p.dataLatch = data
	if !p.w {
		p.t = (p.t & 0x00FF) | uint16(data&0x3F)<<8
		p.w = true
		return
	}
	p.t = (p.t & 0xFF00) | uint16(data)
	p.v = p.t
	p.w = false
}

// $2007 PPUDATA
//
// Reads below the palettes return the buffered byte and refill the buffer,
// so the value shows up one read late. Palette reads are immediate, the
// buffer gets the nametable byte underneath instead.
func (p *PPU) readData() uint8 {
	addr := p.v & 0x3FFF
	var r uint8
	if addr < 0x3F00 {
		r = p.readBuffer
		p.readBuffer = p.mem.Read8(addr)
	} else {
		r = p.mem.Read8(addr)
		p.readBuffer = p.mem.Read8(addr &^ 0x1000)
	}
	p.incrementAddr()
	p.dataLatch = r
	return r
}

func (p *PPU) writeData(data uint8) {
	p.dataLatch = data
	p.mem.Write8(p.v&0x3FFF, data)
	p.incrementAddr()
}

func (p *PPU) incrementAddr() {
	if p.ctrl&ctrlIncrement32 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
}
