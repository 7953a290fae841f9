package wd1772

import (
	"errors"
	"testing"
)

// testClock is a single-callback CPU-cycle clock harness: it records the
// one pending callback Clock.Arm schedules and lets tests fire it
// on demand, advancing the notional CPU clock to the deadline first.
type testClock struct {
	cpuNow    int64
	pending   func()
	pendingAt int64
}

func (t *testClock) now() uint64 { return uint64(t.cpuNow) }

func (t *testClock) scheduleIn(cpuCycles int64, cb func()) {
	t.pendingAt = t.cpuNow + cpuCycles
	t.pending = cb
}

func (t *testClock) runStep() bool {
	if t.pending == nil {
		return false
	}
	t.cpuNow = t.pendingAt
	cb := t.pending
	t.pending = nil
	cb()
	return true
}

// runUntilIdle fires pending callbacks until none remain or max is hit,
// returning the number of fires actually used; max bounds a runaway
// loop.
func (t *testClock) runUntilIdle(max int) int {
	n := 0
	for n < max && t.runStep() {
		n++
	}
	return n
}

type fakeIRQ struct {
	raised, cleared int
}

func (f *fakeIRQ) RaiseIRQ() { f.raised++ }
func (f *fakeIRQ) ClearIRQ() { f.cleared++ }

type fakeRandom struct{}

func (fakeRandom) Uint64N(n uint64) uint64 { return 0 }

type fakeDisk struct {
	sectorsPerTrack, sides int
	writeProtected         bool
	sectors                map[[3]int][]byte // [track,side,sector] -> 512 bytes
	missing                map[int]bool      // sectors that never resolve (RNF)
}

func newFakeDisk(spt, sides int) *fakeDisk {
	return &fakeDisk{
		sectorsPerTrack: spt,
		sides:           sides,
		sectors:         make(map[[3]int][]byte),
		missing:         make(map[int]bool),
	}
}

func (d *fakeDisk) put(track, side, sector int, data []byte) {
	buf := make([]byte, 512)
	copy(buf, data)
	d.sectors[[3]int{track, side, sector}] = buf
}

func (d *fakeDisk) ReadSector(drive, track, side, sector int, buf []byte) (int, error) {
	if d.missing[sector] {
		return 0, errors.New("fake: sector not found")
	}
	data, ok := d.sectors[[3]int{track, side, sector}]
	if !ok {
		data = make([]byte, 512)
	}
	return copy(buf, data), nil
}

func (d *fakeDisk) WriteSector(drive, track, side, sector int, buf []byte) error {
	if d.writeProtected {
		return ErrWriteProtected
	}
	d.put(track, side, sector, buf)
	return nil
}

func (d *fakeDisk) DiskDetails(drive int) (int, int, error) {
	return d.sectorsPerTrack, d.sides, nil
}

func (d *fakeDisk) IsWriteProtected(drive int) bool {
	return d.writeProtected
}

// harness bundles a Controller with everything needed to drive its
// command state machine by hand from a test.
type harness struct {
	clock *testClock
	ctrl  *Controller
	irq   *fakeIRQ
	disk  *fakeDisk
	ram   *FlatRAM
}

func newHarness(spt, sides int) *harness {
	tc := &testClock{}
	model := MachineModel{CPUFreqHz: 8_000_000}
	clock := NewClock(model, tc.now, tc.scheduleIn)
	irq := &fakeIRQ{}
	disk := newFakeDisk(spt, sides)
	ram := NewFlatRAM(1 << 16)
	ctrl := NewController(model, clock, ram, irq, disk, fakeRandom{})
	ctrl.Drive(0).Enabled = true
	ctrl.Drive(0).DiskInserted = true
	ctrl.SetDriveSelect(0)
	return &harness{clock: tc, ctrl: ctrl, irq: irq, disk: disk, ram: ram}
}

func (h *harness) issue(cr uint8) {
	h.ctrl.sel = selCommandStatus
	h.ctrl.writeCommandRegister(cr)
	h.clock.runUntilIdle(4096)
}

func TestRestoreFromTrack5(t *testing.T) {
	h := newHarness(9, 2)
	h.ctrl.Drive(0).HeadTrack = 5
	h.issue(0x0B) // Restore, spin-up disabled, no verify, fast step rate

	if got := h.ctrl.Drive(0).HeadTrack; got != 0 {
		t.Fatalf("head track = %d, want 0", got)
	}
	if h.ctrl.TR != 0 {
		t.Fatalf("TR = %d, want 0", h.ctrl.TR)
	}
	if h.ctrl.STR&strBusy != 0 {
		t.Fatalf("BUSY still set after completion")
	}
	if h.irq.raised == 0 {
		t.Fatalf("expected completion IRQ")
	}
}

func TestSeekToTrack40(t *testing.T) {
	h := newHarness(9, 2)
	h.ctrl.Drive(0).HeadTrack = 0
	h.ctrl.TR = 0
	h.ctrl.DR = 40
	h.issue(0x1B) // Seek, spin-up disabled, fast rate

	if got := h.ctrl.Drive(0).HeadTrack; got != 40 {
		t.Fatalf("head track = %d, want 40", got)
	}
	if h.ctrl.TR != 40 {
		t.Fatalf("TR = %d, want 40", h.ctrl.TR)
	}
}

func TestReadSector3OfTrack40(t *testing.T) {
	h := newHarness(9, 2)
	want := make([]byte, 512)
	for i := range want {
		want[i] = byte(i)
	}
	h.disk.put(40, 0, 3, want)

	h.ctrl.TR = 40
	h.ctrl.SR = 3
	h.ctrl.dma.SectorCount = 1
	h.ctrl.dma.BytesInSector = 512
	h.ctrl.dma.SetAddress(0x1000)

	h.issue(0x88) // Read Sector(s), spin-up disabled

	if h.ctrl.STR&strRNF != 0 {
		t.Fatalf("unexpected RNF")
	}
	got := h.ram.SafeCopyFrom(0x1000, 512)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %02x, want %02x", i, got[i], want[i])
		}
	}
}

func TestReadSectorNonexistentSetsRNF(t *testing.T) {
	h := newHarness(9, 2)
	h.ctrl.TR = 40
	h.ctrl.SR = 99
	h.ctrl.dma.SectorCount = 1
	h.ctrl.dma.BytesInSector = 512

	h.issue(0x88)

	if h.ctrl.STR&strRNF == 0 {
		t.Fatalf("expected RNF for nonexistent sector")
	}
	if h.ctrl.STR&strBusy != 0 {
		t.Fatalf("BUSY should be clear after failure")
	}
}

func TestWriteSectorWriteProtected(t *testing.T) {
	h := newHarness(9, 2)
	h.disk.writeProtected = true
	h.ctrl.TR = 40
	h.ctrl.SR = 1
	h.ctrl.dma.SectorCount = 1
	h.ctrl.dma.BytesInSector = 512

	h.issue(0xA8) // Write Sector(s), spin-up disabled

	if h.ctrl.STR&strWPRT == 0 {
		t.Fatalf("expected WPRT set")
	}
}

func TestForceInterruptImmediateDuringRestore(t *testing.T) {
	h := newHarness(9, 2)
	h.ctrl.Drive(0).HeadTrack = 5
	h.ctrl.sel = selCommandStatus
	h.ctrl.writeCommandRegister(0x03) // Restore, spin-up enabled this time: slow path

	// Don't run to completion; interrupt it immediately.
	h.ctrl.writeCommandRegister(0xD8) // Force Interrupt, immediate bit

	if h.ctrl.STR&strBusy != 0 {
		t.Fatalf("BUSY should clear immediately on Force Interrupt")
	}
	if h.irq.raised == 0 {
		t.Fatalf("expected immediate IRQ")
	}
}

func TestMultiSectorReadAdvancesSR(t *testing.T) {
	h := newHarness(9, 2)
	for s := 1; s <= 3; s++ {
		buf := make([]byte, 512)
		buf[0] = byte(s)
		h.disk.put(10, 0, s, buf)
	}
	h.ctrl.TR = 10
	h.ctrl.SR = 1
	h.ctrl.dma.SectorCount = 3
	h.ctrl.dma.BytesInSector = 512
	h.ctrl.CR = 0x18 // multi-sector and spin-up-disabled bits only; startCommand latches the full 0x98 below

	h.ctrl.sel = selCommandStatus
	h.ctrl.writeCommandRegister(0x98) // Read Sectors, multi-sector, spin-up disabled
	h.clock.runUntilIdle(8192)

	if h.ctrl.SR != 4 {
		t.Fatalf("SR after multi-sector read = %d, want 4", h.ctrl.SR)
	}
	if h.ctrl.dma.SectorCount != 0 {
		t.Fatalf("sector_count after 3-sector transfer = %d, want 0", h.ctrl.dma.SectorCount)
	}
}

func TestMotorOffStopsIndexTicks(t *testing.T) {
	h := newHarness(9, 2)
	d := h.ctrl.Drive(0)
	pulses := d.tickIndex(1_000_000_000, false, false, fakeRandom{})
	if pulses != 0 {
		t.Fatalf("motor off should never report index pulses, got %d", pulses)
	}
}
