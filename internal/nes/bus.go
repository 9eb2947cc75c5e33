package nes

import "fmt"

const ppuCyclesPerCPUCycle = 3

// Bus wires the console together. It owns the RAM and the register table,
// keeps the clock, and drives the PPU three cycles for every CPU cycle.
type Bus struct {
	cpu    *CPU
	ppu    *PPU
	ram    *RAM
	cpuMem *cpuMemory
	ppuMem *ppuMemory
	cart   Cartridge

	// registers in $2000-$401F keyed by their canonical address
	io map[uint16]ioRegister

	controllers [2]*Controller

	// CPU cycles since reset
	clock uint64

	observer Observer
}

func NewBus() *Bus {
	b := &Bus{}
	b.ram = NewRAM()
	b.cpuMem = b.newCpuMemory()
	b.ppuMem = newPpuMemory()
	b.cpu = NewCPU(b.cpuMem)
	b.ppu = NewPPU(b.ppuMem, b.cpu.NMI)
	b.controllers = [2]*Controller{NewController(), NewController()}
	b.io = b.registers()
	return b
}

func (b *Bus) registers() map[uint16]ioRegister {
	return map[uint16]ioRegister{
		0x2000: {write: b.ppu.writeCtrl},
		0x2001: {write: b.ppu.writeMask},
		0x2002: {read: b.ppu.readStatus},
		0x2003: {write: b.ppu.writeOAMAddr},
		0x2004: {read: b.ppu.readOAMData, write: b.ppu.writeOAMData},
		0x2005: {write: b.ppu.writeScroll},
		0x2006: {write: b.ppu.writeAddr},
		0x2007: {read: b.ppu.readData, write: b.ppu.writeData},
		0x4014: {write: b.oamDMA},
		0x4016: {read: b.controllers[0].read, write: b.writeStrobe},
		0x4017: {read: b.controllers[1].read},
	}
}

// both pads share the strobe line
func (b *Bus) writeStrobe(data uint8) {
	for _, c := range b.controllers {
		c.write(data)
	}
}

// LoadCart inserts the cartridge and resets the console.
func (b *Bus) LoadCart(cart Cartridge) {
	b.cart = cart
	b.ppuMem.cart = cart
	b.Reset()
}

// Reset resets the cartridge before the CPU so the reset vector is read
// from the right bank. The reset sequence takes 7 cycles.
func (b *Bus) Reset() {
	if b.cart != nil {
		b.cart.Reset()
	}
	b.ppu.Reset()
	b.clock = 0
	b.cpu.Reset()
	b.tick(resetCycles)
}

func (b *Bus) tick(cycles int) {
	for i := 0; i < cycles; i++ {
		b.clock++
		for j := 0; j < ppuCyclesPerCPUCycle; j++ {
			b.ppu.Step()
		}
	}
}

// Step runs one CPU instruction and catches the PPU up with it.
// It returns the CPU cycles used, interrupt entry and OAM DMA stalls
// included. A pending interrupt is entered first, so the observer sees
// the first instruction of the handler.
func (b *Bus) Step() int {
	start := b.clock
	b.tick(b.cpu.ServiceInterrupt())
	if b.observer != nil {
		b.observer.OnInstruction(b.CPUState())
	}
	b.tick(b.cpu.StepInstruction())
	return int(b.clock - start)
}

// StepFrame runs until the PPU has finished a frame.
func (b *Bus) StepFrame() {
	b.StepFrameUntil(nil)
}

// StepFrameUntil is StepFrame with a way out: it returns false as soon as
// stop reports true after an instruction that did not finish the frame.
// Calling it again carries on with the same frame.
func (b *Bus) StepFrameUntil(stop func() bool) bool {
	b.ppu.ClearFrameComplete()
	for !b.ppu.FrameComplete() {
		b.Step()
		if stop != nil && stop() && !b.ppu.FrameComplete() {
			return false
		}
	}
	if b.observer != nil {
		b.observer.OnFrame(b.ppu.frame)
	}
	return true
}

// RunFrames runs up to n frames and returns how many finished, and
// whether stop cut the run short.
func (b *Bus) RunFrames(n int, stop func() bool) (int, bool) {
	for i := 0; i < n; i++ {
		if !b.StepFrameUntil(stop) {
			return i, true
		}
	}
	return n, false
}

func (b *Bus) Frame() []uint32 {
	return b.ppu.Frame()
}

func (b *Bus) FrameComplete() bool {
	return b.ppu.FrameComplete()
}

func (b *Bus) ClearFrameComplete() {
	b.ppu.ClearFrameComplete()
}

// Cycles returns the CPU cycles since reset.
func (b *Bus) Cycles() uint64 {
	return b.clock
}

func (b *Bus) CPUState() CPUState {
	state := b.cpu.State()
	state.Cycles = b.clock
	return state
}

func (b *Bus) PPUState() PPUState {
	return b.ppu.State()
}

// SetObserver attaches an observer, nil detaches it.
func (b *Bus) SetObserver(o Observer) {
	b.observer = o
}

// Controller returns the pad plugged into port 0 or 1.
func (b *Bus) Controller(port int) *Controller {
	if port < 0 || port >= len(b.controllers) {
		panic(fmt.Sprintf("nes: no controller port %d", port))
	}
	return b.controllers[port]
}

// IRQ is the interrupt line for the cartridge and the APU.
func (b *Bus) IRQ() {
	b.cpu.IRQ()
}

func (b *Bus) NMI() {
	b.cpu.NMI()
}

// Peek reads CPU memory without side effects. Registers read as 0.
func (b *Bus) Peek(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram.Read8(addr)
	case addr < 0x4020:
		return 0
	}
	if b.cart == nil {
		return 0
	}
	return b.cart.CPURead(addr)
}
