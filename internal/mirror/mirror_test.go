package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_RAM(t *testing.T) {
	for addr := uint16(0); addr < 0x2000; addr++ {
		assert.Equal(t, addr%0x800, RAM(addr))
	}
}

func Test_IO(t *testing.T) {
	t.Run("ppu registers mirrored every 8 bytes", func(t *testing.T) {
		assert.Equal(t, uint16(0x2002), IO(0x2002))
		assert.Equal(t, uint16(0x2002), IO(0x200A))
		assert.Equal(t, uint16(0x2007), IO(0x3FFF))
	})

	t.Run("apu and io registers are not mirrored", func(t *testing.T) {
		assert.Equal(t, uint16(0x4014), IO(0x4014))
		assert.Equal(t, uint16(0x4016), IO(0x4016))
	})
}

func Test_PPU(t *testing.T) {
	assert.Equal(t, uint16(0x0000), PPU(0x4000))
	assert.Equal(t, uint16(0x3F00), PPU(0xFF00))
	assert.Equal(t, uint16(0x2123), PPU(0xA123))
}

func Test_Nametables(t *testing.T) {
	assert.Equal(t, uint16(0x2000), Nametables(0x3000))
	assert.Equal(t, uint16(0x2EFF), Nametables(0x3EFF))
	assert.Equal(t, uint16(0x2400), Nametables(0x2400))
}

func Test_Palettes(t *testing.T) {
	assert.Equal(t, uint16(0x3F00), Palettes(0x3F20))
	assert.Equal(t, uint16(0x3F1F), Palettes(0x3FFF))

	assert.Equal(t, uint16(0x00), PaletteIndex(0x3F10))
	assert.Equal(t, uint16(0x04), PaletteIndex(0x3F14))
	assert.Equal(t, uint16(0x0C), PaletteIndex(0x3F3C))
	assert.Equal(t, uint16(0x11), PaletteIndex(0x3F11))
	assert.Equal(t, uint16(0x04), PaletteIndex(0x3F04))
}

func Test_NametableOffset(t *testing.T) {
	type testArgs struct {
		mode     Mode
		addrs    [4]uint16
		expected [4]uint16
	}

	nt := [4]uint16{0x2001, 0x2401, 0x2801, 0x2C01}

	tests := map[string]testArgs{
		"horizontal":  {Horizontal, nt, [4]uint16{0x001, 0x001, 0x401, 0x401}},
		"vertical":    {Vertical, nt, [4]uint16{0x001, 0x401, 0x001, 0x401}},
		"single low":  {SingleLow, nt, [4]uint16{0x001, 0x001, 0x001, 0x001}},
		"single high": {SingleHigh, nt, [4]uint16{0x401, 0x401, 0x401, 0x401}},
		"four screen": {FourScreen, nt, [4]uint16{0x001, 0x401, 0x801, 0xC01}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			for i, addr := range tt.addrs {
				assert.Equal(t, tt.expected[i], NametableOffset(addr, tt.mode), "addr %04X", addr)
			}
		})
	}

	t.Run("mirror region", func(t *testing.T) {
		assert.Equal(t, NametableOffset(0x2C01, Vertical), NametableOffset(0x3C01, Vertical))
	})
}
