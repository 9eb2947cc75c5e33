package nes

import "fmt"

// disassemble decodes the instruction at pc. It returns the text and the
// instruction length in bytes. peek must be free of side effects.
func disassemble(peek func(addr uint16) uint8, pc uint16) (string, uint16) {
	in := instrs[peek(pc)]
	size := 1 + in.mode.operandBytes()

	lo := peek(pc + 1)
	abs := uint16(lo) | uint16(peek(pc+2))<<8

	name := in.op.String()
	switch in.mode {
	case addrModeIMM:
		return fmt.Sprintf("%s #$%02X", name, lo), size
	case addrModeZP:
		return fmt.Sprintf("%s $%02X", name, lo), size
	case addrModeZPX:
		return fmt.Sprintf("%s $%02X,X", name, lo), size
	case addrModeZPY:
		return fmt.Sprintf("%s $%02X,Y", name, lo), size
	case addrModeABS:
		return fmt.Sprintf("%s $%04X", name, abs), size
	case addrModeABSX:
		return fmt.Sprintf("%s $%04X,X", name, abs), size
	case addrModeABSY:
		return fmt.Sprintf("%s $%04X,Y", name, abs), size
	case addrModeIND:
		return fmt.Sprintf("%s ($%04X)", name, abs), size
	case addrModeINDX:
		return fmt.Sprintf("%s ($%02X,X)", name, lo), size
	case addrModeINDY:
		return fmt.Sprintf("%s ($%02X),Y", name, lo), size
	case addrModeREL:
		offset := uint16(lo)
		if offset&0x80 > 0 {
			offset |= 0xff00 // add leading 1 s to save the sign
		}
		return fmt.Sprintf("%s $%04X", name, pc+2+offset), size
	case addrModeACC:
		return name + " A", size
	}
	return name, size
}

// Disassemble returns a map of addresses and their corresponding instructions
// from 0x0000 to 0xffff
func (b *Bus) Disassemble() map[uint16]string {
	disasm := make(map[uint16]string, 0x10000)

	addr := uint32(0)
	for addr <= 0xFFFF {
		pc := uint16(addr)
		text, size := disassemble(b.Peek, pc)
		disasm[pc] = fmt.Sprintf("$%04X: %s {%s}", pc, text, instrs[b.Peek(pc)].mode)
		addr += uint32(size)
	}
	return disasm
}
