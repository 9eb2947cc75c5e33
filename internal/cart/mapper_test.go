package cart

import (
	"bytes"
	"testing"

	"github.com/nevisdale/nestic/internal/mirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestCart(t *testing.T, in romArgs) *Cart {
	t.Helper()
	c, err := Load(bytes.NewReader(buildROM(in)))
	require.NoError(t, err)
	return c
}

func Test_NROM(t *testing.T) {
	t.Run("16 KB mirrored twice", func(t *testing.T) {
		c := loadTestCart(t, romArgs{prgBanks: 1, chrBanks: 1, fill: stampBank})
		assert.Equal(t, c.CPURead(0x8000), c.CPURead(0xC000))
		assert.Equal(t, c.CPURead(0xBFFF), c.CPURead(0xFFFF))
	})

	t.Run("32 KB", func(t *testing.T) {
		c := loadTestCart(t, romArgs{prgBanks: 2, chrBanks: 1, fill: stampBank})
		assert.Equal(t, uint8(0), c.CPURead(0x8000))
		assert.Equal(t, uint8(1), c.CPURead(0xC000))
	})

	t.Run("PRG RAM", func(t *testing.T) {
		c := loadTestCart(t, romArgs{prgBanks: 1, chrBanks: 1})
		c.CPUWrite(0x6123, 0x42)
		assert.Equal(t, uint8(0x42), c.CPURead(0x6123))
	})

	t.Run("ROM is not writable", func(t *testing.T) {
		c := loadTestCart(t, romArgs{prgBanks: 1, chrBanks: 1, fill: stampBank})
		c.CPUWrite(0x8000, 0x42)
		c.PPUWrite(0x0000, 0x42)
		assert.Equal(t, uint8(0), c.CPURead(0x8000))
		assert.Equal(t, uint8(0xC0), c.PPURead(0x0000))
	})

	t.Run("CHR RAM", func(t *testing.T) {
		c := loadTestCart(t, romArgs{prgBanks: 1, chrBanks: 0})
		c.PPUWrite(0x1FFF, 0x42)
		assert.Equal(t, uint8(0x42), c.PPURead(0x1FFF))
	})
}

func Test_UxROM(t *testing.T) {
	c := loadTestCart(t, romArgs{prgBanks: 8, chrBanks: 0, flags6: 0x20 | 0x1, fill: stampBank})

	assert.Equal(t, uint8(0), c.CPURead(0x8000), "bank 0 after reset")
	assert.Equal(t, uint8(7), c.CPURead(0xC000), "last bank fixed")
	assert.Equal(t, mirror.Vertical, c.Mirroring())

	c.CPUWrite(0x8000, 0x05)
	assert.Equal(t, uint8(5), c.CPURead(0x8000))
	assert.Equal(t, uint8(5), c.CPURead(0xBFFF))
	assert.Equal(t, uint8(7), c.CPURead(0xFFFF))

	c.Reset()
	assert.Equal(t, uint8(0), c.CPURead(0x8000))

	c.PPUWrite(0x0010, 0x99)
	assert.Equal(t, uint8(0x99), c.PPURead(0x0010))
}

// writeMMC1 shifts a 5 bit value into the register selected by addr.
func writeMMC1(c *Cart, addr uint16, value uint8) {
	for i := 0; i < mmc1ShiftWidth; i++ {
		c.CPUWrite(addr, (value>>i)&0x1)
	}
}

func Test_MMC1(t *testing.T) {
	newCart := func(t *testing.T) *Cart {
		return loadTestCart(t, romArgs{prgBanks: 8, chrBanks: 2, flags6: 0x10, fill: stampBank})
	}

	t.Run("power on: last bank fixed at $C000", func(t *testing.T) {
		c := newCart(t)
		assert.Equal(t, uint8(0), c.CPURead(0x8000))
		assert.Equal(t, uint8(7), c.CPURead(0xFFFF))
		// control is $1C, mirroring bits 00
		assert.Equal(t, mirror.SingleLow, c.Mirroring())
	})

	t.Run("mode 3: switch $8000", func(t *testing.T) {
		c := newCart(t)
		writeMMC1(c, 0xE000, 3)
		assert.Equal(t, uint8(3), c.CPURead(0x8000))
		assert.Equal(t, uint8(7), c.CPURead(0xC000))
	})

	t.Run("mode 2: fix first, switch $C000", func(t *testing.T) {
		c := newCart(t)
		writeMMC1(c, 0x8000, 0x08)
		writeMMC1(c, 0xE000, 5)
		assert.Equal(t, uint8(0), c.CPURead(0x8000))
		assert.Equal(t, uint8(5), c.CPURead(0xC000))
	})

	t.Run("mode 0: 32 KB ignores low bit", func(t *testing.T) {
		c := newCart(t)
		writeMMC1(c, 0x8000, 0x00)
		writeMMC1(c, 0xE000, 5)
		assert.Equal(t, uint8(4), c.CPURead(0x8000))
		assert.Equal(t, uint8(5), c.CPURead(0xC000))
	})

	t.Run("mode 0: small images wrap", func(t *testing.T) {
		stampEnds := func(bank int, data []uint8) {
			data[0] = 0xA0 + uint8(bank)
			data[len(data)-1] = 0xB0 + uint8(bank)
		}

		c := loadTestCart(t, romArgs{prgBanks: 1, chrBanks: 1, flags6: 0x10, fill: stampEnds})
		writeMMC1(c, 0x8000, 0x00)
		require.NotPanics(t, func() { c.CPURead(0xFFFC) })
		assert.Equal(t, uint8(0xA0), c.CPURead(0x8000))
		assert.Equal(t, uint8(0xA0), c.CPURead(0xC000))
		assert.Equal(t, uint8(0xB0), c.CPURead(0xFFFF))

		c = loadTestCart(t, romArgs{prgBanks: 3, chrBanks: 1, flags6: 0x10, fill: stampEnds})
		writeMMC1(c, 0x8000, 0x00)
		writeMMC1(c, 0xE000, 2)
		require.NotPanics(t, func() { c.CPURead(0xFFFF) })
		assert.Equal(t, uint8(0xA2), c.CPURead(0x8000))
		assert.Equal(t, uint8(0xA0), c.CPURead(0xC000))
	})

	t.Run("mirroring control", func(t *testing.T) {
		c := newCart(t)
		expected := []mirror.Mode{mirror.SingleLow, mirror.SingleHigh, mirror.Vertical, mirror.Horizontal}
		for i, mode := range expected {
			writeMMC1(c, 0x8000, uint8(i))
			assert.Equal(t, mode, c.Mirroring())
		}
	})

	t.Run("reset bit clears the shift register", func(t *testing.T) {
		c := newCart(t)
		c.CPUWrite(0xE000, 1)
		c.CPUWrite(0xE000, 1)
		c.CPUWrite(0xE000, 0x80)
		writeMMC1(c, 0xE000, 2)
		assert.Equal(t, uint8(2), c.CPURead(0x8000))
	})

	t.Run("CHR 4 KB mode", func(t *testing.T) {
		c := newCart(t)
		writeMMC1(c, 0x8000, 0x10|0x0C)
		writeMMC1(c, 0xA000, 1)
		writeMMC1(c, 0xC000, 2)
		// CHR bank n of 8 KB is filled with 0xC0+n, so 4 KB bank 2 is in 8 KB bank 1
		assert.Equal(t, uint8(0xC0), c.PPURead(0x0000))
		assert.Equal(t, uint8(0xC1), c.PPURead(0x1000))
	})

	t.Run("CHR 8 KB mode", func(t *testing.T) {
		c := newCart(t)
		writeMMC1(c, 0x8000, 0x0C)
		writeMMC1(c, 0xA000, 3)
		assert.Equal(t, uint8(0xC1), c.PPURead(0x0000))
		assert.Equal(t, uint8(0xC1), c.PPURead(0x1FFF))
	})

	t.Run("PRG RAM bypasses the shift register", func(t *testing.T) {
		c := newCart(t)
		c.CPUWrite(0x7000, 0x55)
		assert.Equal(t, uint8(0x55), c.CPURead(0x7000))
		assert.Equal(t, uint8(0), c.CPURead(0x8000))
	})
}
