package cart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nevisdale/nestic/internal/mirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type romArgs struct {
	prgBanks uint8
	chrBanks uint8
	flags6   uint8
	flags7   uint8
	trainer  bool
	// fill is called for every PRG bank to stamp recognisable content
	fill func(bank int, data []uint8)
}

func buildROM(in romArgs) []uint8 {
	flags6 := in.flags6
	if in.trainer {
		flags6 |= 0x4
	}
	header := []uint8{'N', 'E', 'S', 0x1A, in.prgBanks, in.chrBanks, flags6, in.flags7, 0, 0, 0, 0, 0, 0, 0, 0}

	var buf bytes.Buffer
	buf.Write(header)
	if in.trainer {
		buf.Write(bytes.Repeat([]uint8{0xEE}, trainerSizeBytes))
	}
	for bank := 0; bank < int(in.prgBanks); bank++ {
		data := make([]uint8, prgBankSizeBytes)
		if in.fill != nil {
			in.fill(bank, data)
		}
		buf.Write(data)
	}
	for bank := 0; bank < int(in.chrBanks); bank++ {
		buf.Write(bytes.Repeat([]uint8{uint8(0xC0 + bank)}, chrBankSizeBytes))
	}
	return buf.Bytes()
}

// stampBank writes the bank number at the start and the end of a bank.
func stampBank(bank int, data []uint8) {
	data[0] = uint8(bank)
	data[len(data)-1] = uint8(bank)
}

func Test_Load(t *testing.T) {
	t.Run("nrom-128", func(t *testing.T) {
		c, err := Load(bytes.NewReader(buildROM(romArgs{prgBanks: 1, chrBanks: 1, flags6: 0x1})))
		require.NoError(t, err)

		assert.Equal(t, uint8(0), c.MapperID())
		assert.Equal(t, mirror.Vertical, c.Mirroring())
		assert.Len(t, c.prgMem, prgBankSizeBytes)
		assert.Len(t, c.chrMem, chrBankSizeBytes)
		assert.Len(t, c.prgRAM, ramBankSizeBytes, "zero PRG RAM size means one bank")
	})

	t.Run("trainer is skipped", func(t *testing.T) {
		c, err := Load(bytes.NewReader(buildROM(romArgs{prgBanks: 1, chrBanks: 1, trainer: true, fill: stampBank})))
		require.NoError(t, err)
		assert.Equal(t, uint8(0), c.CPURead(0x8000))
		assert.Equal(t, uint8(0xC0), c.PPURead(0x0000))
	})

	t.Run("mapper number from both nibbles", func(t *testing.T) {
		_, err := Load(bytes.NewReader(buildROM(romArgs{prgBanks: 1, chrBanks: 1, flags6: 0x40, flags7: 0x10})))
		assert.ErrorIs(t, err, ErrUnsupportedMapper)
		assert.ErrorContains(t, err, "20")
	})

	t.Run("bad magic", func(t *testing.T) {
		rom := buildROM(romArgs{prgBanks: 1, chrBanks: 1})
		rom[3] = 0
		_, err := Load(bytes.NewReader(rom))
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})

	t.Run("short header", func(t *testing.T) {
		_, err := Load(bytes.NewReader([]uint8{'N', 'E', 'S'}))
		assert.ErrorIs(t, err, ErrInvalidHeader)
	})

	t.Run("truncated PRG", func(t *testing.T) {
		rom := buildROM(romArgs{prgBanks: 2, chrBanks: 1})
		_, err := Load(bytes.NewReader(rom[:16+prgBankSizeBytes]))
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("truncated CHR", func(t *testing.T) {
		rom := buildROM(romArgs{prgBanks: 1, chrBanks: 1})
		_, err := Load(bytes.NewReader(rom[:len(rom)-1]))
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("four screen bit", func(t *testing.T) {
		c, err := Load(bytes.NewReader(buildROM(romArgs{prgBanks: 1, chrBanks: 1, flags6: 0x8})))
		require.NoError(t, err)
		assert.Equal(t, mirror.FourScreen, c.Mirroring())
	})
}

func Test_NewCartFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.nes")
	require.NoError(t, os.WriteFile(path, buildROM(romArgs{prgBanks: 2, chrBanks: 1, fill: stampBank}), 0o644))

	c, err := NewCartFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), c.CPURead(0xFFFF))

	_, err = NewCartFromFile(filepath.Join(t.TempDir(), "missing.nes"))
	assert.Error(t, err)
}
