package wd1772

// Controller is the single process-wide aggregate of FDC registers, DMA
// engine, and per-drive state (spec §3/§9: "all state is naturally a
// single owning aggregate with interior method dispatch"). Collaborators
// (disk image, memory, IRQ, clock, randomness) are injected explicitly at
// construction, never reached for as globals.
type Controller struct {
	clock   *Clock
	mem     Memory
	irq     IRQController
	image   DiskImage
	rnd     RandomSource
	model   MachineModel
	drives  [2]*Drive
	dma     *DMA

	// Registers (spec §3).
	DR, TR, SR, CR, STR uint8
	stepDirection       int8
	sideSignal          uint8
	driveSelect         int // -1 = none

	command      Command
	subState     int
	commandType  CommandType

	replaceCommandPossible bool
	statusIsTypeI          bool
	indexPulseCounter      uint32
	nextSectorIDSR         uint8
	interruptCond          uint8

	motorStopPulses  int
	stepRemaining    int // Restore's remaining step-out attempts (spec §4.G/§9)
	searchBudget     int // remaining ID-field checks before a Type I verify or Type II search gives up

	irqLatched bool

	// scratch is the per-operation working buffer (sector payload, or a
	// full synthesized track for Read Track), kept across the ticks of one
	// transfer; Read/Write Sector allocate a fresh one for each sector.
	scratch    []byte
	scratchPos int

	// sel selects which of command/track/sector/data is addressed by
	// $ff8604 (spec §4.F register-select decode).
	sel registerSelect

	irqHistory bool // true once any IRQ has been raised; clearIRQ does not reset it
}

type registerSelect int

const (
	selCommandStatus registerSelect = iota
	selTrack
	selSector
	selData
	selSectorCount
)

// NewController creates a Controller with both drive slots present but
// disabled/empty. Callers enable drives and insert disks via Drive
// fields and Controller.SetDriveSelect/SetSideSelect.
func NewController(model MachineModel, clock *Clock, mem Memory, irq IRQController, image DiskImage, rnd RandomSource) *Controller {
	c := &Controller{
		clock:       clock,
		mem:         mem,
		irq:         irq,
		image:       image,
		rnd:         rnd,
		model:       model,
		dma:         NewDMA(model.FourMB),
		driveSelect: -1,
	}
	for i := range c.drives {
		c.drives[i] = &Drive{RPM: 300000, Density: DensityDD}
	}
	c.STR = 0
	return c
}

// Drive returns drive 0 or 1 for direct inspection/configuration in
// tests and machine setup code.
func (c *Controller) Drive(n int) *Drive {
	return c.drives[n]
}

// DMA returns the DMA engine for direct inspection (snapshotting, tests).
func (c *Controller) DMA() *DMA {
	return c.dma
}

// selectedDrive returns the currently selected drive, or nil if none is
// selected.
func (c *Controller) selectedDrive() *Drive {
	if c.driveSelect < 0 {
		return nil
	}
	return c.drives[c.driveSelect]
}

// SetDriveSelect updates the drive-select signal (PSG port A bits 1-2,
// active low upstream; callers pass the already-decoded drive index or
// -1 for none). Changing drives clears the previously-selected drive's
// index-pulse reference (spec §3).
func (c *Controller) SetDriveSelect(drive int) {
	if drive == c.driveSelect {
		return
	}
	if old := c.selectedDrive(); old != nil {
		old.indexPulseRef = 0
	}
	c.driveSelect = drive
}

// SetSideSelect updates the side-select signal (PSG port A bit 0).
func (c *Controller) SetSideSelect(side uint8) {
	c.sideSignal = side & 1
}

// motorOn reports the MOTOR_ON bit of STR.
func (c *Controller) motorOn() bool {
	return c.STR&strMotorOn != 0
}

// raiseIRQ latches and forwards an interrupt to the collaborator.
func (c *Controller) raiseIRQ() {
	c.irqLatched = true
	c.irqHistory = true
	c.irq.RaiseIRQ()
}

// clearIRQ drops the latch and forwards the clear to the collaborator.
func (c *Controller) clearIRQ() {
	c.irqLatched = false
	c.irq.ClearIRQ()
}
