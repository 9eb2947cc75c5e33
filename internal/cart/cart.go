package cart

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nevisdale/nestic/internal/mirror"
)

const (
	inesMagic        = 0x1a53454e // "NES" followed by MS-DOS end-of-file
	trainerSizeBytes = 512
	prgBankSizeBytes = 0x4000
	chrBankSizeBytes = 0x2000
	ramBankSizeBytes = 0x2000
)

var (
	ErrInvalidHeader     = errors.New("invalid iNES header")
	ErrTruncated         = errors.New("truncated rom image")
	ErrUnsupportedMapper = errors.New("unsupported mapper")
)

// Header is the 16 byte iNES header.
type Header struct {
	Magic      uint32
	PrgRomSize uint8 // in 16 KB units
	ChrRomSize uint8 // in 8 KB units
	Flags6     uint8
	Flags7     uint8
	PrgRamSize uint8 // in 8 KB units, 0 means one bank
	TVSystem1  uint8
	TVSystem2  uint8
	_          [5]uint8 // padding
}

// MapperID is split across the high nibbles of flags6 and flags7.
func (h Header) MapperID() uint8 {
	return (h.Flags7 & 0xf0) | (h.Flags6 >> 4)
}

func (h Header) hasTrainer() bool {
	return h.Flags6&0x4 != 0
}

func (h Header) HasBattery() bool {
	return h.Flags6&0x2 != 0
}

// Mirroring is the mode soldered on the board. Mappers that control
// mirroring themselves ignore it.
func (h Header) Mirroring() mirror.Mode {
	if h.Flags6&0x8 != 0 {
		return mirror.FourScreen
	}
	if h.Flags6&0x1 != 0 {
		return mirror.Vertical
	}
	return mirror.Horizontal
}

// Cart is a loaded cartridge: the memory blocks from the rom image and the
// mapper deciding which parts of them are visible.
type Cart struct {
	header Header

	prgMem []uint8
	chrMem []uint8
	prgRAM []uint8

	// CHR RAM replaces CHR ROM when the image has no CHR banks
	chrRAM bool

	mapper Mapper
}

// NewCartFromFile reads a .nes file and returns a Cart struct.
// Supported NES format: iNES
func NewCartFromFile(path string) (*Cart, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the file: %w", err)
	}
	defer file.Close()

	return Load(bufio.NewReader(file))
}

// Load reads an iNES image. The emulation must not start if it fails.
func Load(r io.Reader) (*Cart, error) {
	var header Header
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: couldn't read the header: %w", ErrInvalidHeader, err)
	}
	if header.Magic != inesMagic {
		return nil, fmt.Errorf("%w: bad magic %08X", ErrInvalidHeader, header.Magic)
	}
	if header.hasTrainer() {
		if _, err := io.CopyN(io.Discard, r, trainerSizeBytes); err != nil {
			return nil, fmt.Errorf("%w: couldn't skip the trainer: %w", ErrTruncated, err)
		}
	}

	prgRamBanks := int(header.PrgRamSize)
	if prgRamBanks == 0 {
		prgRamBanks = 1
	}

	cart := &Cart{
		header: header,
		prgMem: make([]uint8, int(header.PrgRomSize)*prgBankSizeBytes),
		chrMem: make([]uint8, int(header.ChrRomSize)*chrBankSizeBytes),
		prgRAM: make([]uint8, prgRamBanks*ramBankSizeBytes),
	}

	if _, err := io.ReadFull(r, cart.prgMem); err != nil {
		return nil, fmt.Errorf("%w: couldn't read PRG ROM (%d bytes): %w", ErrTruncated, len(cart.prgMem), err)
	}
	if _, err := io.ReadFull(r, cart.chrMem); err != nil {
		return nil, fmt.Errorf("%w: couldn't read CHR ROM (%d bytes): %w", ErrTruncated, len(cart.chrMem), err)
	}
	if header.ChrRomSize == 0 {
		cart.chrMem = make([]uint8, chrBankSizeBytes)
		cart.chrRAM = true
	}
	if len(cart.prgMem) == 0 {
		return nil, fmt.Errorf("%w: no PRG ROM", ErrInvalidHeader)
	}

	mapper, err := newMapper(header.MapperID(), cart)
	if err != nil {
		return nil, err
	}
	cart.mapper = mapper
	cart.mapper.Reset()

	return cart, nil
}

func (c *Cart) Header() Header {
	return c.header
}

func (c *Cart) MapperID() uint8 {
	return c.header.MapperID()
}

func (c *Cart) CPURead(addr uint16) uint8 {
	return c.mapper.CPURead(addr)
}

func (c *Cart) CPUWrite(addr uint16, data uint8) {
	c.mapper.CPUWrite(addr, data)
}

func (c *Cart) PPURead(addr uint16) uint8 {
	return c.mapper.PPURead(addr)
}

func (c *Cart) PPUWrite(addr uint16, data uint8) {
	c.mapper.PPUWrite(addr, data)
}

// Mirroring returns the nametable mirroring mode in effect right now.
// A four screen board overrides whatever the mapper says.
func (c *Cart) Mirroring() mirror.Mode {
	if c.header.Mirroring() == mirror.FourScreen {
		return mirror.FourScreen
	}
	return c.mapper.Mirroring()
}

// Reset puts the mapper back to its power-on banks. It must run before the
// CPU fetches the reset vector.
func (c *Cart) Reset() {
	c.mapper.Reset()
}

func (c *Cart) prgBanks() int {
	return len(c.prgMem) / prgBankSizeBytes
}

func (c *Cart) readPrgRAM(addr uint16) uint8 {
	return c.prgRAM[int(addr-0x6000)%len(c.prgRAM)]
}

func (c *Cart) writePrgRAM(addr uint16, data uint8) {
	c.prgRAM[int(addr-0x6000)%len(c.prgRAM)] = data
}
