package cart

import "github.com/nevisdale/nestic/internal/mirror"

// UxROM is mapper 2: one switchable 16 KB bank and a fixed last bank.
//
// $8000-$BFFF: switchable bank, selected by any write to $8000-$FFFF
// $C000-$FFFF: fixed to the last bank
type UxROM struct {
	cart *Cart

	bankLo int
	bankHi int
}

func (m *UxROM) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0xC000:
		return m.cart.prgMem[m.bankHi*prgBankSizeBytes+int(addr&0x3FFF)]
	case addr >= 0x8000:
		return m.cart.prgMem[m.bankLo*prgBankSizeBytes+int(addr&0x3FFF)]
	case addr >= 0x6000:
		return m.cart.readPrgRAM(addr)
	}
	return 0
}

func (m *UxROM) CPUWrite(addr uint16, data uint8) {
	switch {
	case addr >= 0x8000:
		m.bankLo = int(data&0x0F) % m.cart.prgBanks()
	case addr >= 0x6000:
		m.cart.writePrgRAM(addr, data)
	}
}

func (m *UxROM) PPURead(addr uint16) uint8 {
	return m.cart.chrRead(addr)
}

func (m *UxROM) PPUWrite(addr uint16, data uint8) {
	m.cart.chrWrite(addr, data)
}

// Mirroring is hard-wired on UxROM boards.
func (m *UxROM) Mirroring() mirror.Mode {
	return m.cart.header.Mirroring()
}

func (m *UxROM) Reset() {
	m.bankLo = 0
	m.bankHi = m.cart.prgBanks() - 1
}
