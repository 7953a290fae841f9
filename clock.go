package wd1772

// MachineModel carries the machine-specific toggles that change FDC
// timing and addressing without changing the command state machine
// itself: the FDC reference clock variant, the host CPU clock used to
// convert delays, and the 4 MB DMA address mask. These are explicit
// constructor parameters rather than environment-driven configuration,
// matching how the teacher's emu.NewMemory/NewSMSIO take explicit struct
// arguments instead of reading global config.
type MachineModel struct {
	// CPUFreqHz is the host CPU's clock rate, used to convert FDC cycles
	// (always expressed at an 8 MHz reference) to CPU cycles.
	CPUFreqHz uint64
	// FDC16MHz selects the 16 MHz FDC variant; delays are halved relative
	// to the 8 MHz reference after unit conversion.
	FDC16MHz bool
	// FastFloppy divides scheduled FDC delays by 10 whenever a delay
	// exceeds 10 FDC cycles, trading timing fidelity for faster emulated
	// disk access.
	FastFloppy bool
	// FourMB masks DMA address bits 22-23 to zero, matching machines with
	// at most 4 MB of address space.
	FourMB bool
}

// fdcClockHz is the WD1772 datasheet's reference clock; all FDC-cycle
// delays in this package are expressed against it.
const fdcClockHz = 8_000_000

// Clock converts between FDC cycles (8 MHz reference) and CPU cycles, and
// owns the single pending deferred callback the dispatcher re-arms on
// every command tick. now and scheduleIn are the external collaborators
// (global cycle clock and deferred-callback timer, spec §1) the host
// emulator supplies.
type Clock struct {
	model      MachineModel
	now        func() uint64
	scheduleIn func(cpuCycles int64, cb func())

	deadlineCPU  uint64
	pendingOver  int64 // FDC cycles of overshoot carried into the next Arm
	armed        bool
}

// NewClock creates a Clock. now reports the current CPU cycle count;
// scheduleIn arranges for cb to run after cpuCycles have elapsed.
func NewClock(model MachineModel, now func() uint64, scheduleIn func(cpuCycles int64, cb func())) *Clock {
	return &Clock{model: model, now: now, scheduleIn: scheduleIn}
}

// FDCToCPU converts a duration in FDC (8 MHz reference) cycles to CPU
// cycles, rounding to the nearest cycle and halving for the 16 MHz FDC
// variant.
func (c *Clock) FDCToCPU(fdcCycles int64) int64 {
	cpu := roundDiv(fdcCycles*int64(c.model.CPUFreqHz), fdcClockHz)
	if c.model.FDC16MHz {
		cpu /= 2
	}
	return cpu
}

// CPUToFDC is the inverse of FDCToCPU.
func (c *Clock) CPUToFDC(cpuCycles int64) int64 {
	if c.model.FDC16MHz {
		cpuCycles *= 2
	}
	return roundDiv(cpuCycles*fdcClockHz, int64(c.model.CPUFreqHz))
}

func roundDiv(num, den int64) int64 {
	if den == 0 {
		return 0
	}
	if (num < 0) != (den < 0) {
		return (num - den/2) / den
	}
	return (num + den/2) / den
}

// Arm schedules cb to run after delayFDC FDC cycles, applying the
// fast-floppy divisor and subtracting any overshoot carried from the
// previous fire so that cadence stays accurate across many re-arms.
// Re-arming (calling Arm again before the previous callback fires) hands
// scheduleIn a new callback without cancelling the earlier one; a single
// callback stays pending only when scheduleIn itself replaces whatever it
// scheduled before.
func (c *Clock) Arm(delayFDC int64, cb func()) {
	if c.model.FastFloppy && delayFDC > 10 {
		delayFDC /= 10
	}
	delayFDC -= c.pendingOver
	c.pendingOver = 0
	if delayFDC < 1 {
		delayFDC = 1
	}

	delayCPU := c.FDCToCPU(delayFDC)
	c.deadlineCPU = c.now() + uint64(delayCPU)
	c.armed = true

	c.scheduleIn(delayCPU, func() {
		actual := c.now()
		if over := int64(actual) - int64(c.deadlineCPU); over > 0 {
			c.pendingOver = c.CPUToFDC(over)
		}
		c.armed = false
		cb()
	})
}

// Disarm marks the facade as having no pending callback. It does not
// cancel a callback already handed to scheduleIn; the dispatcher only
// calls Disarm when it intends never to observe that fire (e.g. after a
// snapshot restore re-arms a fresh one).
func (c *Clock) Disarm() {
	c.armed = false
	c.pendingOver = 0
}

// Armed reports whether a callback is currently pending.
func (c *Clock) Armed() bool {
	return c.armed
}

// Now returns the current CPU cycle count from the injected clock source.
func (c *Clock) Now() uint64 {
	return c.now()
}

// NowFDC returns the current time expressed in FDC (8 MHz reference)
// cycles, the unit the index-pulse engine and track geometry operate in.
func (c *Clock) NowFDC() uint64 {
	return uint64(c.CPUToFDC(int64(c.now())))
}
