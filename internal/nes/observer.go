package nes

import (
	"fmt"
	"io"
	"strings"
)

// Observer watches the console run. OnInstruction is called before every
// instruction with the registers about to be used, OnFrame after every
// finished frame. Observers must not touch the bus beyond Peek, so
// attaching one never changes timing.
type Observer interface {
	OnInstruction(state CPUState)
	OnFrame(frame uint64)
}

// Peeker reads memory without side effects.
type Peeker interface {
	Peek(addr uint16) uint8
}

// Tracer writes one line per instruction, in the layout of the nestest log:
//
//	C000  4C F5 C5  JMP $C5F5    A:00 X:00 Y:00 P:24 SP:FD CYC:7
type Tracer struct {
	w   io.Writer
	mem Peeker
	err error
}

func NewTracer(w io.Writer, mem Peeker) *Tracer {
	return &Tracer{w: w, mem: mem}
}

func (t *Tracer) OnInstruction(s CPUState) {
	if t.err != nil {
		return
	}
	text, size := disassemble(t.mem.Peek, s.PC)

	var raw strings.Builder
	for i := uint16(0); i < size; i++ {
		if i > 0 {
			raw.WriteByte(' ')
		}
		fmt.Fprintf(&raw, "%02X", t.mem.Peek(s.PC+i))
	}

	_, t.err = fmt.Fprintf(t.w, "%04X  %-8s  %-31s A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d\n",
		s.PC, raw.String(), text, s.A, s.X, s.Y, s.P, s.SP, s.Cycles)
}

func (t *Tracer) OnFrame(uint64) {}

// Err returns the first write error, tracing stops after it.
func (t *Tracer) Err() error {
	return t.err
}

// Breakpoints records when the CPU reaches one of the given addresses, so
// a run loop can stop right after that instruction.
type Breakpoints struct {
	addrs map[uint16]struct{}
	hit   bool
	at    uint16
}

func NewBreakpoints(addrs ...uint16) *Breakpoints {
	b := &Breakpoints{addrs: make(map[uint16]struct{}, len(addrs))}
	for _, addr := range addrs {
		b.addrs[addr] = struct{}{}
	}
	return b
}

func (b *Breakpoints) OnInstruction(s CPUState) {
	if _, ok := b.addrs[s.PC]; ok {
		b.hit = true
		b.at = s.PC
	}
}

func (b *Breakpoints) OnFrame(uint64) {}

// Hit reports whether a breakpoint was reached since the last call, and
// where.
func (b *Breakpoints) Hit() (uint16, bool) {
	hit := b.hit
	b.hit = false
	return b.at, hit
}

// Observers fans out to several observers in order.
type Observers []Observer

func (o Observers) OnInstruction(s CPUState) {
	for _, obs := range o {
		obs.OnInstruction(s)
	}
}

func (o Observers) OnFrame(frame uint64) {
	for _, obs := range o {
		obs.OnFrame(frame)
	}
}
