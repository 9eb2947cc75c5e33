package mirror

// Mode is the nametable mirroring policy reported by the cartridge.
type Mode uint8

const (
	// $2000 equals $2400 and $2800 equals $2C00
	Horizontal Mode = iota
	// $2000 equals $2800 and $2400 equals $2C00
	Vertical
	// all four nametables use the lower 1 KB of CIRAM
	SingleLow
	// all four nametables use the upper 1 KB of CIRAM
	SingleHigh
	// the cartridge provides 2 KB more, four independent nametables
	FourScreen
)

func (m Mode) String() string {
	switch m {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case SingleLow:
		return "single-low"
	case SingleHigh:
		return "single-high"
	case FourScreen:
		return "four-screen"
	}
	return "???"
}

// NametableOffset maps a nametable address to an offset in a 4 KB
// nametable store, according to the mirroring mode. Only FourScreen uses
// offsets above $07FF.
func NametableOffset(addr uint16, mode Mode) uint16 {
	addr = Nametables(addr) - 0x2000
	table := addr / 0x400
	offset := addr % 0x400

	switch mode {
	case Horizontal:
		table >>= 1
	case Vertical:
		table &= 1
	case SingleLow:
		table = 0
	case SingleHigh:
		table = 1
	case FourScreen:
	default:
		panic("mirror: unknown nametable mode")
	}
	return table*0x400 + offset
}
