package cart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nevisdale/nestic/internal/mirror"
)

var ErrInvalidCode = errors.New("invalid game genie code")

// genieLetters maps code letters to their 4 bit values, by position.
const genieLetters = "APZLGITYEOXUKSVN"

type board interface {
	CPURead(addr uint16) uint8
	CPUWrite(addr uint16, data uint8)
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, data uint8)
	Mirroring() mirror.Mode
	Reset()
}

// GenieCode replaces the byte the CPU reads at Addr. Eight letter codes
// only apply while the ROM holds Compare at that address, so they survive
// bank switching.
type GenieCode struct {
	Addr       uint16
	Data       uint8
	Compare    uint8
	HasCompare bool
}

func (c GenieCode) String() string {
	if c.HasCompare {
		return fmt.Sprintf("%04X?%02X:%02X", c.Addr, c.Compare, c.Data)
	}
	return fmt.Sprintf("%04X:%02X", c.Addr, c.Data)
}

// DecodeGenie decodes a 6 or 8 letter Game Genie code.
func DecodeGenie(code string) (GenieCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 6 && len(code) != 8 {
		return GenieCode{}, fmt.Errorf("%w: %q must have 6 or 8 letters", ErrInvalidCode, code)
	}

	n := make([]uint16, len(code))
	for i := range code {
		v := strings.IndexByte(genieLetters, code[i])
		if v < 0 {
			return GenieCode{}, fmt.Errorf("%w: %q has bad letter %q", ErrInvalidCode, code, code[i])
		}
		n[i] = uint16(v)
	}

	gc := GenieCode{
		Addr: 0x8000 |
			(n[3]&7)<<12 |
			(n[5]&7)<<8 | (n[4]&8)<<8 |
			(n[2]&7)<<4 | (n[1]&8)<<4 |
			(n[4] & 7) | (n[3] & 8),
	}
	data := (n[1]&7)<<4 | (n[0]&8)<<4 | (n[0] & 7)
	if len(code) == 6 {
		gc.Data = uint8(data | n[5]&8)
		return gc, nil
	}
	gc.Data = uint8(data | n[7]&8)
	gc.Compare = uint8((n[7]&7)<<4 | (n[6]&8)<<4 | (n[6] & 7) | (n[5] & 8))
	gc.HasCompare = true
	return gc, nil
}

// GameGenie sits between the console and a cartridge and patches CPU reads.
type GameGenie struct {
	board
	codes map[uint16]GenieCode
}

func NewGameGenie(b board, codes ...string) (*GameGenie, error) {
	g := &GameGenie{
		board: b,
		codes: make(map[uint16]GenieCode, len(codes)),
	}
	for _, code := range codes {
		gc, err := DecodeGenie(code)
		if err != nil {
			return nil, err
		}
		g.codes[gc.Addr] = gc
	}
	return g, nil
}

func (g *GameGenie) CPURead(addr uint16) uint8 {
	data := g.board.CPURead(addr)
	gc, ok := g.codes[addr]
	if !ok || (gc.HasCompare && gc.Compare != data) {
		return data
	}
	return gc.Data
}
