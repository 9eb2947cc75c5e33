package cart

import (
	"fmt"

	"github.com/nevisdale/nestic/internal/mirror"
)

// Mapper translates CPU and PPU addresses into the cartridge memory blocks.
// New bank switching schemes plug in by implementing it and adding a case
// to newMapper.
type Mapper interface {
	CPURead(addr uint16) uint8
	CPUWrite(addr uint16, data uint8)
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, data uint8)
	Mirroring() mirror.Mode
	Reset()
}

func newMapper(id uint8, cart *Cart) (Mapper, error) {
	switch id {
	case 0:
		return &NROM{cart: cart}, nil
	case 1:
		return &MMC1{cart: cart}, nil
	case 2:
		return &UxROM{cart: cart}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, id)
}

// chrRead and chrWrite are shared by the mappers without CHR banking.
func (c *Cart) chrRead(addr uint16) uint8 {
	return c.chrMem[int(addr)%len(c.chrMem)]
}

func (c *Cart) chrWrite(addr uint16, data uint8) {
	if !c.chrRAM {
		return
	}
	c.chrMem[int(addr)%len(c.chrMem)] = data
}
