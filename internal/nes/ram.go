package nes

import "github.com/nevisdale/nestic/internal/mirror"

const ramSizeBytes = 0x800

// RAM is the 2 KB of work RAM. It answers the whole $0000-$1FFF window,
// folding the mirrors itself.
type RAM struct {
	data [ramSizeBytes]uint8
}

func NewRAM() *RAM {
	return &RAM{}
}

func (r *RAM) Read8(addr uint16) uint8 {
	return r.data[mirror.RAM(addr)]
}

func (r *RAM) Write8(addr uint16, data uint8) {
	r.data[mirror.RAM(addr)] = data
}
