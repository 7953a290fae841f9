package wd1772

// Memory is the host memory bus the DMA engine transfers into and out of.
// The controller never reads or writes outside a range the caller already
// validated via the address register masks (see DMA.address), matching
// the "never write outside a validated range" policy for the real bus.
type Memory interface {
	ReadByte(addr uint32) uint8
	WriteByte(addr uint32, b uint8)
	// SafeCopy copies data into host memory starting at dst. Implementations
	// must not panic on out-of-range addresses; they should clip or ignore,
	// since the FDC core relies on this for burst DMA writes.
	SafeCopy(dst uint32, data []byte)
	// SafeCopyFrom reads n bytes of host memory starting at src into a new
	// slice, used by the DMA pull path (RAM -> disk).
	SafeCopyFrom(src uint32, n int) []byte
}

// IRQController is the interrupt controller collaborator. The controller
// calls RaiseIRQ or ClearIRQ every time it raises or clears its own
// latch, without checking whether the latch already had that value (a
// status-register read, for example, calls ClearIRQ each time), so
// repeated calls of either are normal.
type IRQController interface {
	RaiseIRQ()
	ClearIRQ()
}

// DiskImage is the disk-image collaborator: everything the controller
// needs from "the currently inserted floppy." drive is 0 or 1. track and
// side are zero-based; sector is the 1-based WD1772 sector number.
//
// The imagestore package provides a concrete implementation backed by an
// afero.Fs; tests typically provide a smaller hand-written fake.
type DiskImage interface {
	ReadSector(drive, track, side, sector int, buf []byte) (int, error)
	WriteSector(drive, track, side, sector int, buf []byte) error
	DiskDetails(drive int) (sectorsPerTrack, sides int, err error)
	IsWriteProtected(drive int) bool
}

// RandomSource is the injectable uniform random source spec §9 requires
// for the initial index-pulse offset and the "missing side" track fill,
// so tests can seed it deterministically.
type RandomSource interface {
	// Uint64N returns a uniform random value in [0, n). Behavior is
	// undefined for n == 0.
	Uint64N(n uint64) uint64
}
