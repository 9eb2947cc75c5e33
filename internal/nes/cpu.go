package nes

import "fmt"

const (
	stackStartAddr = uint16(0x100)

	nmiVector   = uint16(0xfffa)
	resetVector = uint16(0xfffc)
	irqVector   = uint16(0xfffe)

	interruptCycles = 7
	resetCycles     = 7
)

const (
	flagC = uint8(1 << iota) // Carry
	flagZ                    // Zero
	flagI                    // Interrupt Disable
	flagD                    // Decimal Mode, never used by the 2A03
	flagB                    // Break Command
	flagU                    // Unused, always reads 1
	flagV                    // Overflow
	flagN                    // Negative
)

// CPUState is a snapshot of the register file.
type CPUState struct {
	PC     uint16
	A      uint8
	X      uint8
	Y      uint8
	P      uint8
	SP     uint8
	Cycles uint64
}

// StatusString shows the flags as NV-BDIZC, set flags in upper case.
func (s CPUState) StatusString() string {
	const names = "czidbuvn"
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		c := names[i]
		if s.P&(1<<i) != 0 {
			c -= 'a' - 'A'
		}
		out[7-i] = c
	}
	return string(out)
}

func (s CPUState) String() string {
	return fmt.Sprintf("PC:%04X A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d", s.PC, s.A, s.X, s.Y, s.P, s.SP, s.Cycles)
}

// CPU is the 6502 core of the 2A03. It runs one whole instruction per Step
// and reports how many cycles it took; the caller keeps the rest of the
// system in step with that count.
type CPU struct {
	a   uint8
	x   uint8
	y   uint8
	p   uint8
	sp  uint8
	pc  uint16
	mem ReadWriter

	// cycles spent by the current Step
	cycles      int
	totalCycles uint64

	addrMode    addrMode
	operandAddr uint16
	pageCrossed bool

	nmiPending bool
	irqPending bool
}

func isSameSign(a, b uint8) bool {
	return (a^b)&0x80 == 0
}

func isDiffPage(a, b uint16) bool {
	return a&0xff00 != b&0xff00
}

func NewCPU(mem ReadWriter) *CPU {
	return &CPU{
		mem: mem,
		p:   flagU | flagI,
		sp:  0xfd,
	}
}

func (c *CPU) read8(addr uint16) uint8 {
	return c.mem.Read8(addr)
}

func (c *CPU) read16(addr uint16) uint16 {
	return uint16(c.read8(addr)) | uint16(c.read8(addr+1))<<8
}

func (c *CPU) write8(addr uint16, data uint8) {
	c.mem.Write8(addr, data)
}

func (c *CPU) getFlag(flag uint8) bool {
	return c.p&flag > 0
}

func (c *CPU) setFlag(flag uint8, v bool) {
	if v {
		c.p |= flag
		return
	}
	c.p &= ^flag
}

func (c *CPU) setFlagsZN(value uint8) {
	c.setFlag(flagZ, value == 0)
	c.setFlag(flagN, value&flagN > 0)
}

func (c *CPU) stackPop8() uint8 {
	c.sp++
	return c.read8(stackStartAddr | uint16(c.sp))
}

func (c *CPU) stackPop16() uint16 {
	lo := uint16(c.stackPop8())
	hi := uint16(c.stackPop8())
	return lo | hi<<8
}

func (c *CPU) stackPush8(data uint8) {
	c.write8(stackStartAddr|uint16(c.sp), data)
	c.sp--
}

func (c *CPU) stackPush16(data uint16) {
	lo := uint8(data & 0xff)
	hi := uint8(data >> 8)
	c.stackPush8(hi)
	c.stackPush8(lo)
}

// Reset the CPU to its initial state. The cartridge must already be reset
// so the vector is read from the right bank.
func (c *CPU) Reset() {
	c.a = 0
	c.x = 0
	c.y = 0
	c.p = 0x00 | flagU | flagI
	c.sp = 0xfd
	c.pc = c.read16(resetVector)
	c.cycles = 0
	c.totalCycles = resetCycles
	c.nmiPending = false
	c.irqPending = false
}

// IRQ requests a maskable interrupt, serviced at the start of the next Step.
func (c *CPU) IRQ() {
	c.irqPending = true
}

// NMI requests a non-maskable interrupt, serviced at the start of the next Step.
func (c *CPU) NMI() {
	c.nmiPending = true
}

func (c *CPU) State() CPUState {
	return CPUState{
		PC:     c.pc,
		A:      c.a,
		X:      c.x,
		Y:      c.y,
		P:      c.p,
		SP:     c.sp,
		Cycles: c.totalCycles,
	}
}

func (c *CPU) interrupt(vector uint16) {
	c.stackPush16(c.pc)
	c.setFlag(flagB, false)
	c.setFlag(flagU|flagI, true)
	c.stackPush8(c.p)
	c.pc = c.read16(vector)
	c.cycles += interruptCycles
}

// Step services a pending interrupt, if any, then executes one instruction.
// It returns the number of cycles used by both.
func (c *CPU) Step() int {
	cycles := c.ServiceInterrupt()
	return cycles + c.StepInstruction()
}

// ServiceInterrupt enters the handler of a pending interrupt and returns
// the cycles it took, 0 when there was nothing to do.
//
// A pending NMI wins over a pending IRQ and the IRQ is dropped, not kept
// for later.
func (c *CPU) ServiceInterrupt() int {
	c.cycles = 0

	switch {
	case c.nmiPending:
		c.nmiPending = false
		c.irqPending = false
		c.interrupt(nmiVector)
	case c.irqPending:
		c.irqPending = false
		if !c.getFlag(flagI) {
			c.interrupt(irqVector)
		}
	}

	c.totalCycles += uint64(c.cycles)
	return c.cycles
}

// StepInstruction executes the instruction at PC and ignores pending
// interrupts.
func (c *CPU) StepInstruction() int {
	c.cycles = 0

	opcode := c.read8(c.pc)
	c.pc++
	in := instrs[opcode]
	c.fetch(in.mode)
	c.execute(in.op)
	c.cycles += int(in.cycles)
	c.totalCycles += uint64(c.cycles)

	c.addrMode = 0
	c.operandAddr = 0
	c.pageCrossed = false
	return c.cycles
}

// fetch resolves the effective address of the current instruction.
// The operand itself is read later, by the operations that need it, so
// stores never touch the target address before writing it.
func (c *CPU) fetch(addrMode addrMode) {
	c.addrMode = addrMode
	c.pageCrossed = false
	c.operandAddr = 0

	switch addrMode {
	case addrModeIMM:
		c.operandAddr = c.pc
		c.pc++

	case addrModeZP:
		c.operandAddr = uint16(c.read8(c.pc))
		c.pc++

	case addrModeZPX:
		c.operandAddr = uint16(c.read8(c.pc) + c.x)
		c.pc++

	case addrModeZPY:
		c.operandAddr = uint16(c.read8(c.pc) + c.y)
		c.pc++

	case addrModeABS:
		c.operandAddr = c.read16(c.pc)
		c.pc += 2

	case addrModeABSX:
		baseAddr := c.read16(c.pc)
		c.pc += 2
		c.operandAddr = baseAddr + uint16(c.x)
		c.pageCrossed = isDiffPage(baseAddr, c.operandAddr)

	case addrModeABSY:
		baseAddr := c.read16(c.pc)
		c.pc += 2
		c.operandAddr = baseAddr + uint16(c.y)
		c.pageCrossed = isDiffPage(baseAddr, c.operandAddr)

	case addrModeIND:
		addr := c.read16(c.pc)
		c.pc += 2

		lo := addr
		hi := addr + 1
		if lo&0xff == 0xff { // simulate 6502 bug
			hi = lo & 0xff00
		}
		c.operandAddr = uint16(c.read8(lo)) | uint16(c.read8(hi))<<8

	case addrModeINDX:
		addr := uint16(c.read8(c.pc))
		addr = addr + uint16(c.x)
		c.pc++
		lo := uint16(c.read8(addr & 0x00ff))
		hi := uint16(c.read8((addr + 1) & 0x00ff))
		c.operandAddr = lo | hi<<8

	case addrModeINDY:
		addr := uint16(c.read8(c.pc))
		c.pc++
		lo := uint16(c.read8(addr))
		hi := uint16(c.read8((addr + 1) & 0x00ff))
		addr = lo | hi<<8
		c.operandAddr = addr + uint16(c.y)
		c.pageCrossed = isDiffPage(addr, c.operandAddr)

	case addrModeREL:
		c.operandAddr = uint16(c.read8(c.pc))
		c.pc++
		if c.operandAddr&0x80 > 0 {
			c.operandAddr |= 0xff00 // add leading 1 s to save the sign
		}

	case addrModeACC, addrModeIMP:

	default:
		panic(fmt.Sprintf("nes: unknown addressing mode %d at %04X", addrMode, c.pc))
	}
}

// operand reads the value the current instruction works on.
func (c *CPU) operand() uint8 {
	if c.addrMode == addrModeACC {
		return c.a
	}
	return c.read8(c.operandAddr)
}

// store writes the result of a read-modify-write instruction back.
func (c *CPU) store(data uint8) {
	if c.addrMode == addrModeACC {
		c.a = data
		return
	}
	c.write8(c.operandAddr, data)
}

func (c *CPU) pageCrossCycle() {
	if c.pageCrossed {
		c.cycles++
	}
}

func (c *CPU) addWithCarry(value uint8) {
	r16 := uint16(c.a) + uint16(value)
	if c.getFlag(flagC) {
		r16++
	}
	r8 := uint8(r16)
	c.setFlag(flagC, r16 > 0xff)
	c.setFlagsZN(r8)
	c.setFlag(flagV, isSameSign(c.a, value) && !isSameSign(c.a, r8))
	c.a = r8
}

func (c *CPU) compare(reg, value uint8) {
	c.setFlag(flagC, reg >= value)
	c.setFlagsZN(reg - value)
}

func (c *CPU) adc() {
	c.addWithCarry(c.operand())
	c.pageCrossCycle()
}

func (c *CPU) and() {
	c.a &= c.operand()
	c.setFlagsZN(c.a)
	c.pageCrossCycle()
}

func (c *CPU) asl() {
	v := c.operand()
	c.setFlag(flagC, v&0x80 > 0)
	r8 := v << 1
	c.setFlagsZN(r8)
	c.store(r8)
}

func (c *CPU) jmpIf(condition bool) {
	if !condition {
		return
	}
	c.cycles++
	addr := c.pc + c.operandAddr
	if isDiffPage(c.pc, addr) {
		c.cycles++
	}
	c.pc = addr
}

func (c *CPU) bit() {
	v := c.operand()
	c.setFlag(flagZ, c.a&v == 0)
	c.setFlag(flagN, v&flagN > 0)
	c.setFlag(flagV, v&flagV > 0)
}

func (c *CPU) brk() {
	c.pc++
	c.stackPush16(c.pc)
	c.stackPush8(c.p | flagB | flagU)
	c.setFlag(flagI, true)
	c.pc = c.read16(irqVector)
}

func (c *CPU) dec() {
	r := c.operand() - 1
	c.setFlagsZN(r)
	c.write8(c.operandAddr, r)
}

func (c *CPU) eor() {
	c.a ^= c.operand()
	c.setFlagsZN(c.a)
	c.pageCrossCycle()
}

func (c *CPU) inc() {
	r := c.operand() + 1
	c.setFlagsZN(r)
	c.write8(c.operandAddr, r)
}

func (c *CPU) jsr() {
	// pc incremented by 2 after the fetch,
	// the return address is the last byte of the instruction
	c.pc--
	c.stackPush16(c.pc)
	c.pc = c.operandAddr
}

func (c *CPU) lda() {
	c.a = c.operand()
	c.setFlagsZN(c.a)
	c.pageCrossCycle()
}

func (c *CPU) ldx() {
	c.x = c.operand()
	c.setFlagsZN(c.x)
	c.pageCrossCycle()
}

func (c *CPU) ldy() {
	c.y = c.operand()
	c.setFlagsZN(c.y)
	c.pageCrossCycle()
}

func (c *CPU) lsr() {
	v := c.operand()
	c.setFlag(flagC, v&0x1 > 0)
	r := v >> 1
	c.setFlagsZN(r)
	c.store(r)
}

func (c *CPU) nop() {
	// multi-byte illegal NOPs still pay for the page cross
	c.pageCrossCycle()
}

func (c *CPU) ora() {
	c.a |= c.operand()
	c.setFlagsZN(c.a)
	c.pageCrossCycle()
}

func (c *CPU) php() {
	c.stackPush8(c.p | flagB | flagU)
}

func (c *CPU) pla() {
	c.a = c.stackPop8()
	c.setFlagsZN(c.a)
}

func (c *CPU) plp() {
	c.p = (c.stackPop8() | flagU) & ^flagB
}

func (c *CPU) rol() {
	v := c.operand()
	r := v << 1
	if c.getFlag(flagC) {
		r |= 0x1
	}
	c.setFlag(flagC, v&0x80 > 0)
	c.setFlagsZN(r)
	c.store(r)
}

func (c *CPU) ror() {
	v := c.operand()
	r := v >> 1
	if c.getFlag(flagC) {
		r |= 0x80
	}
	c.setFlag(flagC, v&0x1 > 0)
	c.setFlagsZN(r)
	c.store(r)
}

func (c *CPU) rti() {
	c.p = (c.stackPop8() | flagU) & ^flagB
	c.pc = c.stackPop16()
}

func (c *CPU) rts() {
	c.pc = c.stackPop16()
	c.pc++
}

func (c *CPU) sbc() {
	c.addWithCarry(^c.operand())
	c.pageCrossCycle()
}

func (c *CPU) lax() {
	v := c.operand()
	c.a = v
	c.x = v
	c.setFlagsZN(v)
	c.pageCrossCycle()
}

func (c *CPU) dcp() {
	v := c.operand() - 1
	c.write8(c.operandAddr, v)
	c.compare(c.a, v)
}

func (c *CPU) isc() {
	v := c.operand() + 1
	c.write8(c.operandAddr, v)
	c.addWithCarry(^v)
}

func (c *CPU) slo() {
	v := c.operand()
	c.setFlag(flagC, v&0x80 > 0)
	r := v << 1
	c.write8(c.operandAddr, r)
	c.a |= r
	c.setFlagsZN(c.a)
}

func (c *CPU) rla() {
	v := c.operand()
	r := v << 1
	if c.getFlag(flagC) {
		r |= 0x1
	}
	c.write8(c.operandAddr, r)
	c.setFlag(flagC, v&0x80 > 0)
	c.a &= r
	c.setFlagsZN(c.a)
}

func (c *CPU) sre() {
	v := c.operand()
	c.setFlag(flagC, v&0x1 > 0)
	r := v >> 1
	c.write8(c.operandAddr, r)
	c.a ^= r
	c.setFlagsZN(c.a)
}

func (c *CPU) rra() {
	v := c.operand()
	r := v >> 1
	if c.getFlag(flagC) {
		r |= 0x80
	}
	c.setFlag(flagC, v&0x1 > 0)
	c.write8(c.operandAddr, r)
	c.addWithCarry(r)
}

func (c *CPU) anc() {
	c.a &= c.operand()
	c.setFlagsZN(c.a)
	c.setFlag(flagC, c.a&0x80 > 0)
}

func (c *CPU) alr() {
	c.a &= c.operand()
	c.setFlag(flagC, c.a&0x1 > 0)
	c.a >>= 1
	c.setFlagsZN(c.a)
}

func (c *CPU) las() {
	r := c.operand() & c.sp
	c.a = r
	c.x = r
	c.sp = r
	c.setFlagsZN(r)
	c.pageCrossCycle()
}

// execute dispatches an operation. The table only holds operations listed
// here, anything else is a bug in the table.
func (c *CPU) execute(op operation) {
	switch op {
	case opADC:
		c.adc()
	case opAND:
		c.and()
	case opASL:
		c.asl()
	case opBCC:
		c.jmpIf(!c.getFlag(flagC))
	case opBCS:
		c.jmpIf(c.getFlag(flagC))
	case opBEQ:
		c.jmpIf(c.getFlag(flagZ))
	case opBIT:
		c.bit()
	case opBMI:
		c.jmpIf(c.getFlag(flagN))
	case opBNE:
		c.jmpIf(!c.getFlag(flagZ))
	case opBPL:
		c.jmpIf(!c.getFlag(flagN))
	case opBRK:
		c.brk()
	case opBVC:
		c.jmpIf(!c.getFlag(flagV))
	case opBVS:
		c.jmpIf(c.getFlag(flagV))
	case opCLC:
		c.setFlag(flagC, false)
	case opCLD:
		c.setFlag(flagD, false)
	case opCLI:
		c.setFlag(flagI, false)
	case opCLV:
		c.setFlag(flagV, false)
	case opCMP:
		c.compare(c.a, c.operand())
		c.pageCrossCycle()
	case opCPX:
		c.compare(c.x, c.operand())
	case opCPY:
		c.compare(c.y, c.operand())
	case opDEC:
		c.dec()
	case opDEX:
		c.x--
		c.setFlagsZN(c.x)
	case opDEY:
		c.y--
		c.setFlagsZN(c.y)
	case opEOR:
		c.eor()
	case opINC:
		c.inc()
	case opINX:
		c.x++
		c.setFlagsZN(c.x)
	case opINY:
		c.y++
		c.setFlagsZN(c.y)
	case opJMP:
		c.pc = c.operandAddr
	case opJSR:
		c.jsr()
	case opLDA:
		c.lda()
	case opLDX:
		c.ldx()
	case opLDY:
		c.ldy()
	case opLSR:
		c.lsr()
	case opNOP:
		c.nop()
	case opORA:
		c.ora()
	case opPHA:
		c.stackPush8(c.a)
	case opPHP:
		c.php()
	case opPLA:
		c.pla()
	case opPLP:
		c.plp()
	case opROL:
		c.rol()
	case opROR:
		c.ror()
	case opRTI:
		c.rti()
	case opRTS:
		c.rts()
	case opSBC:
		c.sbc()
	case opSEC:
		c.setFlag(flagC, true)
	case opSED:
		c.setFlag(flagD, true)
	case opSEI:
		c.setFlag(flagI, true)
	case opSTA:
		c.write8(c.operandAddr, c.a)
	case opSTX:
		c.write8(c.operandAddr, c.x)
	case opSTY:
		c.write8(c.operandAddr, c.y)
	case opTAX:
		c.x = c.a
		c.setFlagsZN(c.x)
	case opTAY:
		c.y = c.a
		c.setFlagsZN(c.y)
	case opTSX:
		c.x = c.sp
		c.setFlagsZN(c.x)
	case opTXA:
		c.a = c.x
		c.setFlagsZN(c.a)
	case opTXS:
		c.sp = c.x
	case opTYA:
		c.a = c.y
		c.setFlagsZN(c.a)

	case opLAX:
		c.lax()
	case opSAX:
		c.write8(c.operandAddr, c.a&c.x)
	case opDCP:
		c.dcp()
	case opISC:
		c.isc()
	case opSLO:
		c.slo()
	case opRLA:
		c.rla()
	case opSRE:
		c.sre()
	case opRRA:
		c.rra()
	case opANC:
		c.anc()
	case opALR:
		c.alr()
	case opLAS:
		c.las()

	case opXXX:
		// unimplemented opcode, burns its cycles and nothing else

	default:
		panic(fmt.Sprintf("nes: unknown operation %d", op))
	}
}
