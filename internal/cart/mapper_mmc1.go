package cart

import "github.com/nevisdale/nestic/internal/mirror"

const (
	mmc1ShiftReset = 0x80
	mmc1ShiftWidth = 5
)

// MMC1 is mapper 1. The CPU programs its registers serially: five writes of
// bit 0 to $8000-$FFFF fill a shift register, and the fifth write stores the
// value into the register selected by the address of that write. A write
// with bit 7 set clears the shift register.
//
// $6000-$7FFF: PRG RAM
// $8000-$9FFF: control (mirroring, PRG bank mode, CHR bank mode)
// $A000-$BFFF: CHR bank 0
// $C000-$DFFF: CHR bank 1
// $E000-$FFFF: PRG bank
type MMC1 struct {
	cart *Cart

	shift      uint8
	shiftCount uint8

	control  uint8
	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8
}

// PRG bank mode, control bits 2-3:
//
//	0, 1: switch 32 KB at $8000, ignoring low bit of bank number
//	2: fix first bank at $8000 and switch 16 KB bank at $C000
//	3: fix last bank at $C000 and switch 16 KB bank at $8000
func (m *MMC1) prgMode() uint8 {
	return (m.control >> 2) & 0x3
}

// CHR bank mode, control bit 4: 0 switches 8 KB at a time, 1 switches two
// separate 4 KB banks.
func (m *MMC1) chrMode() uint8 {
	return (m.control >> 4) & 0x1
}

func (m *MMC1) prgOffset(addr uint16) int {
	banks := m.cart.prgBanks()
	bank := int(m.prgBank & 0x0F)

	switch m.prgMode() {
	case 0, 1:
		// a 32 KB window wraps around images with fewer or odd banks
		bank = (bank & 0x0E) % banks
		return (bank*prgBankSizeBytes + int(addr&0x7FFF)) % len(m.cart.prgMem)
	case 2:
		if addr < 0xC000 {
			return int(addr & 0x3FFF)
		}
	case 3:
		if addr >= 0xC000 {
			bank = banks - 1
		}
	}
	return (bank%banks)*prgBankSizeBytes + int(addr&0x3FFF)
}

func (m *MMC1) chrOffset(addr uint16) int {
	const chr4K = 0x1000
	if m.chrMode() == 0 {
		return int(m.chrBank0&0x1E)*chr4K + int(addr&0x1FFF)
	}
	if addr < 0x1000 {
		return int(m.chrBank0)*chr4K + int(addr&0x0FFF)
	}
	return int(m.chrBank1)*chr4K + int(addr&0x0FFF)
}

func (m *MMC1) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		return m.cart.prgMem[m.prgOffset(addr)]
	case addr >= 0x6000:
		return m.cart.readPrgRAM(addr)
	}
	return 0
}

func (m *MMC1) CPUWrite(addr uint16, data uint8) {
	switch {
	case addr >= 0x8000:
		m.writeShift(addr, data)
	case addr >= 0x6000:
		m.cart.writePrgRAM(addr, data)
	}
}

func (m *MMC1) writeShift(addr uint16, data uint8) {
	if data&mmc1ShiftReset != 0 {
		m.shift = 0
		m.shiftCount = 0
		m.control |= 0x0C
		return
	}

	m.shift >>= 1
	m.shift |= (data & 0x1) << (mmc1ShiftWidth - 1)
	m.shiftCount++
	if m.shiftCount < mmc1ShiftWidth {
		return
	}

	value := m.shift & 0x1F
	switch {
	case addr < 0xA000:
		m.control = value
	case addr < 0xC000:
		m.chrBank0 = value
	case addr < 0xE000:
		m.chrBank1 = value
	default:
		m.prgBank = value
	}
	m.shift = 0
	m.shiftCount = 0
}

func (m *MMC1) PPURead(addr uint16) uint8 {
	chr := m.cart.chrMem
	return chr[m.chrOffset(addr)%len(chr)]
}

func (m *MMC1) PPUWrite(addr uint16, data uint8) {
	if !m.cart.chrRAM {
		return
	}
	chr := m.cart.chrMem
	chr[m.chrOffset(addr)%len(chr)] = data
}

func (m *MMC1) Mirroring() mirror.Mode {
	switch m.control & 0x3 {
	case 0:
		return mirror.SingleLow
	case 1:
		return mirror.SingleHigh
	case 2:
		return mirror.Vertical
	default:
		return mirror.Horizontal
	}
}

func (m *MMC1) Reset() {
	m.shift = 0
	m.shiftCount = 0
	m.control = 0x1C
	m.chrBank0 = 0
	m.chrBank1 = 0
	m.prgBank = 0
}
