package wd1772

// forceInterrupt implements the Type IV Force Interrupt command. Unlike
// Type I-III, it is always accepted immediately regardless of BUSY
// (spec §4.G): if a command was running it simply clears BUSY; if idle,
// it forces status_is_type_i so subsequent status reads use the Type I
// bit layout. It stores the requested interrupt condition, optionally
// raises IRQ immediately, and in all cases enters the motor-off sequence.
func (c *Controller) forceInterrupt(cr uint8) {
	cond := cr & 0x0F
	wasBusy := c.STR&strBusy != 0

	if wasBusy {
		c.STR &^= strBusy
	} else {
		c.statusIsTypeI = true
	}
	c.replaceCommandPossible = false

	c.interruptCond = cond
	if cond&intCondImmediate != 0 {
		c.raiseIRQ()
	} else {
		c.clearIRQ()
	}

	c.command = CmdMotorStop
	c.motorStopPulses = motorOffIndexPulses
	c.subState = commandEntryState
	c.runLoop()
}
