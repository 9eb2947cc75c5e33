package cart

import "github.com/nevisdale/nestic/internal/mirror"

// NROM is mapper 0: no bank switching at all.
//
// $6000-$7FFF: PRG RAM
// $8000-$BFFF: first 16 KB of PRG ROM
// $C000-$FFFF: last 16 KB of PRG ROM, or a mirror of the first for NROM-128
type NROM struct {
	cart *Cart
}

func (m *NROM) mapAddr(addr uint16) int {
	if m.cart.prgBanks() > 1 {
		return int(addr & 0x7FFF)
	}
	return int(addr & 0x3FFF)
}

func (m *NROM) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		return m.cart.prgMem[m.mapAddr(addr)]
	case addr >= 0x6000:
		return m.cart.readPrgRAM(addr)
	}
	return 0
}

func (m *NROM) CPUWrite(addr uint16, data uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.cart.writePrgRAM(addr, data)
	}
}

func (m *NROM) PPURead(addr uint16) uint8 {
	return m.cart.chrRead(addr)
}

func (m *NROM) PPUWrite(addr uint16, data uint8) {
	m.cart.chrWrite(addr, data)
}

func (m *NROM) Mirroring() mirror.Mode {
	return m.cart.header.Mirroring()
}

func (m *NROM) Reset() {}
