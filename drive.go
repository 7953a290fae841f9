package wd1772

// indexPulseLengthFDCCycles is FDC_DELAY_US_INDEX_PULSE_LENGTH (3.71 ms)
// pre-converted to FDC cycles at the 8 MHz reference, per spec §9's
// "fixed-point vs floating" note: this is the one delay expressed in
// microseconds in the original design, converted once at compile time
// rather than carrying floating point into the hot path.
const indexPulseLengthFDCCycles = int64(3.71 * 1000 * fdcClockHz / 1_000_000)

// refreshIndexPulseFDCCycles is the original controller's index-pulse
// refresh interval. The dispatcher does not poll on it: the index engine
// is ticked only when the timer fires for a sub-state's own delay, and
// tickIndex then counts every revolution that passed since the last tick.
const refreshIndexPulseFDCCycles = 500

// waitNoDriveFloppyFDCCycles is the poll interval used while waiting for
// a drive/disk to become available, to avoid busy-polling every tick.
const waitNoDriveFloppyFDCCycles = 50000

// motorOffIndexPulses is how many index pulses the drive keeps spinning
// after the last command before the motor is turned off.
const motorOffIndexPulses = 9

// spinUpIndexPulses is how many index pulses a freshly-started motor must
// see before a command may proceed past spin-up.
const spinUpIndexPulses = 6

// Density is a byte-rate multiplier: double/high/extended density.
type Density int

const (
	DensityDD Density = 1
	DensityHD Density = 2
	DensityED Density = 4
)

// maxHeadTrack is the physical limit of the drive's head travel; steps
// beyond it, like steps below track 0, leave the head where it is.
const maxHeadTrack = 90

// Drive holds per-drive state: whether it is enabled and has a disk
// inserted, its speed and density, the physical head position, and the
// wall-clock reference of its last index pulse.
type Drive struct {
	Enabled       bool
	DiskInserted  bool
	RPM           uint32 // x1000 applied, e.g. 300000 for 300 RPM
	Density       Density
	HeadTrack     int
	indexPulseRef uint64 // 0 = unknown

	// transition models the eject/insert WPRT transition window (spec
	// SPEC_FULL supplement, grounded on fdc.c's "Detecting disk changes").
	transition      wpTransition
	transitionProbe int
	writeProtected  bool
}

type wpTransition int

const (
	transitionNone wpTransition = iota
	transitionEjecting
	transitionInserting
)

// transitionSteps is how many status-read "probes" the WPT transition
// window lasts, loosely matching the several-VBL window the original
// describes without tying this package to a VBL concept.
const transitionSteps = 8

// SetInserted starts an eject or insert transition and sets whether the
// newly-inserted disk (if any) reports write-protected once the
// transition completes. Changing drive state clears the index-pulse
// reference, per spec §3 ("drive changes" invariant).
func (d *Drive) SetInserted(inserted bool, writeProtected bool) {
	if inserted && !d.DiskInserted {
		d.transition = transitionInserting
		d.transitionProbe = transitionSteps
	} else if !inserted && d.DiskInserted {
		d.transition = transitionEjecting
		d.transitionProbe = transitionSteps
	}
	d.DiskInserted = inserted
	d.writeProtected = writeProtected
	d.indexPulseRef = 0
}

// wprtSignal returns the instantaneous WPT line level: true = protected.
// With no disk inserted, including straight after an eject, it reads
// protected. During an insert transition the signal is forced through
// 1 then 0 before settling on the disk's real protect state (1,0,X); the
// eject sequence the original documents (X,0,1) is not observable here,
// since an ejected drive reads protected at once.
func (d *Drive) wprtSignal() bool {
	if !d.DiskInserted {
		return true // no disk: light unobstructed, reads as protected
	}
	if d.transition != transitionNone && d.transitionProbe > 0 {
		d.transitionProbe--
		switch d.transition {
		case transitionEjecting:
			if d.transitionProbe > transitionSteps/2 {
				return d.writeProtected
			}
			if d.transitionProbe > 0 {
				return false
			}
			d.transition = transitionNone
			return true
		case transitionInserting:
			if d.transitionProbe > transitionSteps/2 {
				return true
			}
			if d.transitionProbe > 0 {
				return false
			}
			d.transition = transitionNone
			return d.writeProtected
		}
	}
	return d.writeProtected
}

// cyclesPerRev returns the FDC-cycle duration of one full revolution at
// this drive's configured RPM, halved for the 16 MHz FDC variant.
func (d *Drive) cyclesPerRev(fdc16MHz bool) int64 {
	cycles := int64(fdcClockHz) * 60000 / int64(d.RPM)
	if fdc16MHz {
		cycles /= 2
	}
	return cycles
}

// tickIndex advances the index-pulse reference if one or more full
// revolutions have elapsed since it was last observed, returning the
// number of pulses that occurred (normally 0 or 1; more if more than a
// revolution passed since the last tick). It is a no-op unless the motor is on, the drive is enabled, and
// a disk is present, matching "motor off => no index ticks."
func (d *Drive) tickIndex(now uint64, motorOn bool, fdc16MHz bool, rnd RandomSource) (pulses uint32) {
	if !motorOn || !d.Enabled || !d.DiskInserted {
		return 0
	}
	period := d.cyclesPerRev(fdc16MHz)
	if period <= 0 {
		return 0
	}
	if d.indexPulseRef == 0 {
		offset := rnd.Uint64N(uint64(period))
		ref := now - offset
		if ref == 0 {
			ref = 1
		}
		d.indexPulseRef = ref
		return 0
	}
	for now-d.indexPulseRef >= uint64(period) {
		d.indexPulseRef += uint64(period)
		pulses++
	}
	return pulses
}

// indexSignal reports the instantaneous INDEX line: true while within
// indexPulseLengthFDCCycles of the last pulse.
func (d *Drive) indexSignal(now uint64, motorOn bool) bool {
	if !motorOn || !d.Enabled || !d.DiskInserted || d.indexPulseRef == 0 {
		return false
	}
	return now-d.indexPulseRef < uint64(indexPulseLengthFDCCycles)
}

// nextIndexDelay returns the FDC-cycle delay until the next index pulse.
// Per spec §4.C, a remaining gap of <= 1 cycle returns a full revolution
// instead of (almost) zero, so "force interrupt on index" loops never
// spin on a zero-length wait.
func (d *Drive) nextIndexDelay(now uint64, fdc16MHz bool) int64 {
	period := d.cyclesPerRev(fdc16MHz)
	if d.indexPulseRef == 0 {
		return period
	}
	remaining := period - int64(now-d.indexPulseRef)
	if remaining <= 1 {
		return period
	}
	return remaining
}

// trackZero reports whether the head is physically at track 0.
func (d *Drive) trackZero() bool {
	return d.HeadTrack == 0
}

// stepHead moves the physical head by delta, clamped to [0, maxHeadTrack].
func (d *Drive) stepHead(delta int) {
	d.HeadTrack += delta
	if d.HeadTrack < 0 {
		d.HeadTrack = 0
	}
	if d.HeadTrack > maxHeadTrack {
		d.HeadTrack = maxHeadTrack
	}
}
