// Package mirror reduces aliased NES addresses to a single canonical address.
//
// Most bytes on both buses are reachable through many addresses. Every
// access is folded with these functions first so the storage behind it is
// only ever indexed one way.
package mirror

// $0000-$07FF: 2 KB of internal RAM
// $0800-$1FFF: Mirrors of $0000-$07FF
func RAM(addr uint16) uint16 {
	return addr & 0x07FF
}

// $2000-$2007: PPU registers
// $2008-$3FFF: Mirrors of $2000-$2007 (every 8 bytes)
// $4000-$401F: APU and I/O registers, not mirrored
func IO(addr uint16) uint16 {
	if addr < 0x4000 {
		return (addr & 0x7) | 0x2000
	}
	return addr
}

// PPU folds the whole 16-bit PPU address space into $0000-$3FFF.
// It must be applied before any other PPU mirroring.
func PPU(addr uint16) uint16 {
	return addr & 0x3FFF
}

// $2000-$2FFF: Nametables
// $3000-$3EFF: Mirrors of $2000-$2EFF
func Nametables(addr uint16) uint16 {
	return (addr & 0x0FFF) | 0x2000
}

// $3F00-$3F1F: Palette RAM indexes
// $3F20-$3FFF: Mirrors of $3F00-$3F1F
func Palettes(addr uint16) uint16 {
	return (addr % 0x20) | 0x3F00
}

// PaletteIndex returns the index into the 32 bytes of palette RAM.
// $3F10/$3F14/$3F18/$3F1C are the same bytes as $3F00/$3F04/$3F08/$3F0C.
func PaletteIndex(addr uint16) uint16 {
	idx := addr % 0x20
	if idx >= 0x10 && idx%4 == 0 {
		idx -= 0x10
	}
	return idx
}
