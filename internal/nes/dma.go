package nes

const oamDMACycles = 1

// oamDMA copies page $XX00-$XXFF into OAM, starting at the current OAM
// address. The CPU is stalled for the whole copy while the clock keeps
// running: one wait cycle, one more on an odd cycle, then a read and a
// write cycle per byte.
func (b *Bus) oamDMA(page uint8) {
	stall := oamDMACycles
	if b.clock%2 == 1 {
		stall++
	}
	b.tick(stall)

	base := uint16(page) << 8
	for i := uint16(0); i < oamSizeBytes; i++ {
		data := b.cpuMem.Read8(base | i)
		b.tick(1)
		b.ppu.writeOAMData(data)
		b.tick(1)
	}
}
