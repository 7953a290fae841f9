package wd1772

// subPrelude is the shared first sub-state of every Type I/II/III
// command: wait for a drive+disk to exist, then for motor spin-up, before
// handing off to the command's own state machine (spec §4.G "every
// command shares a prelude").
const subPrelude = 0

// startCommand begins a Type I/II/III command: latches CR, raises BUSY,
// resets the status bits that only make sense for a previous command,
// and enters the shared prelude.
func (c *Controller) startCommand(cmd Command, typ CommandType, cr uint8) {
	c.command = cmd
	c.commandType = typ
	c.CR = cr
	// Briefly true: a same-type command written while this one is still
	// in its prelude replaces it outright (SPEC_FULL supplement, citing a
	// demo that depends on this). Both prelude paths clear it once the
	// command-specific state machine actually begins.
	c.replaceCommandPossible = true
	c.statusIsTypeI = typ == TypeI
	c.STR |= strBusy
	c.STR &^= strRNF
	if typ != TypeI {
		c.STR &^= strLostData | strRecordType
	}
	c.subState = subPrelude
	c.runLoop()
}

// runLoop drives the command state machine to its next wait point: it
// repeatedly executes the current sub-state while it reports no delay,
// then arms the clock for the first nonzero delay it sees. When idle
// (no command running) it either disarms entirely or, if a Type IV
// "interrupt on index pulse" condition is outstanding, keeps a minimal
// poll alive so that condition can still fire.
func (c *Controller) runLoop() {
	for {
		if c.command == CmdNone {
			if c.interruptCond&intCondIndexPulse != 0 {
				if d := c.selectedDrive(); d != nil && c.motorOn() {
					c.clock.Arm(d.nextIndexDelay(c.clock.NowFDC(), c.model.FDC16MHz), c.onTimer)
					return
				}
			}
			c.clock.Disarm()
			return
		}
		next, delay := c.runSubState()
		c.subState = next
		if delay == 0 {
			continue
		}
		c.clock.Arm(delay, c.onTimer)
		return
	}
}

// onTimer is the single callback the dispatcher ever arms: tick the
// index-pulse engine for every drive once, then resume the state
// machine (spec §4.H "tick the index engine, then execute the current
// sub-state").
func (c *Controller) onTimer() {
	c.tickIndexAll()
	c.runLoop()
}

// tickIndexAll calls tickIndex on every drive. Only the selected drive
// counts as spinning, so only its index-pulse reference advances; its
// pulses count toward index_pulse_counter and raise an IRQ if a Force
// Interrupt "on index pulse" condition is outstanding.
func (c *Controller) tickIndexAll() {
	now := c.clock.NowFDC()
	for i, d := range c.drives {
		motorOn := c.motorOn() && i == c.driveSelect
		pulses := d.tickIndex(now, motorOn, c.model.FDC16MHz, c.rnd)
		if i != c.driveSelect {
			continue
		}
		c.indexPulseCounter += pulses
		if pulses > 0 && c.interruptCond&intCondIndexPulse != 0 {
			c.raiseIRQ()
		}
	}
}

// subSpinUpWait is the prelude's motor spin-up wait. It is negative so it
// can never collide with a command-specific sub-state, all of which are
// >= commandEntryState.
const subSpinUpWait = -1

// runSubState executes exactly one step of the currently running
// command's state machine, returning the next sub-state and the FDC-cycle
// delay before it should run again (0 = run again immediately, within
// the same timer fire).
func (c *Controller) runSubState() (next int, delay int64) {
	if c.subState == subPrelude {
		return c.runPrelude()
	}
	if c.subState == subSpinUpWait {
		return c.runSpinUpWait()
	}
	switch c.command {
	case CmdRestore, CmdSeek, CmdStep:
		return c.typeIStep()
	case CmdReadSectors, CmdWriteSectors:
		return c.typeIIStep()
	case CmdReadAddress, CmdReadTrack, CmdWriteTrack:
		return c.typeIIIStep()
	case CmdMotorStop:
		return c.motorStopStep()
	}
	return subPrelude, 0
}

// runPrelude waits for a drive with a disk, then either starts the motor
// spin-up wait (CR's spin-up-enabled bit clear and the motor was not
// already on) or skips straight to the command-specific state machine
// (spec §4.G "common prelude for I/II/III").
func (c *Controller) runPrelude() (int, int64) {
	d := c.selectedDrive()
	if d == nil || !d.Enabled || !d.DiskInserted {
		return subPrelude, waitNoDriveFloppyFDCCycles
	}
	if c.CR&crBitSpinUpDis == 0 && !c.motorOn() {
		c.STR &^= strSpinUp
		c.indexPulseCounter = 0
		c.STR |= strMotorOn
		return subSpinUpWait, d.nextIndexDelay(c.clock.NowFDC(), c.model.FDC16MHz)
	}
	c.STR |= strMotorOn
	c.STR |= strSpinUp
	c.replaceCommandPossible = false
	return commandEntryState, 0
}

// runSpinUpWait holds the command in the prelude until index_pulse_counter
// (reset to 0 when the wait began) reaches spinUpIndexPulses revolutions.
func (c *Controller) runSpinUpWait() (int, int64) {
	d := c.selectedDrive()
	if d == nil {
		return subPrelude, waitNoDriveFloppyFDCCycles
	}
	if c.indexPulseCounter >= spinUpIndexPulses {
		c.STR |= strSpinUp
		c.replaceCommandPossible = false
		return commandEntryState, 0
	}
	return subSpinUpWait, d.nextIndexDelay(c.clock.NowFDC(), c.model.FDC16MHz)
}

// commandEntryState is the sub-state value every command-specific state
// machine starts from once the shared prelude completes.
const commandEntryState = 1

// completeCommand finalizes the running command: drops BUSY, updates the
// Type I status bits if applicable, raises the completion IRQ, and
// schedules the motor-off countdown.
func (c *Controller) completeCommand() (int, int64) {
	c.STR &^= strBusy
	if c.commandType == TypeI {
		c.updateTypeIStatus()
	}
	c.raiseIRQ()
	c.command = CmdNone
	c.replaceCommandPossible = false
	return c.scheduleMotorStop()
}

// updateTypeIStatus refreshes the Type I TR00 status bit from the
// selected drive's physical head position, as every Type I command does
// on completion (spec §4.G). SPIN_UP is left as it is.
func (c *Controller) updateTypeIStatus() {
	d := c.selectedDrive()
	if d == nil {
		return
	}
	if d.trackZero() {
		c.STR |= strTR00
	} else {
		c.STR &^= strTR00
	}
}

// scheduleMotorStop starts (or restarts) the motorOffIndexPulses
// countdown after which the motor is switched off, unless a later
// command write supersedes it first.
func (c *Controller) scheduleMotorStop() (int, int64) {
	c.command = CmdMotorStop
	c.motorStopPulses = motorOffIndexPulses
	d := c.selectedDrive()
	if d == nil {
		c.command = CmdNone
		c.STR &^= strMotorOn
		return subPrelude, 0
	}
	return commandEntryState, d.nextIndexDelay(c.clock.NowFDC(), c.model.FDC16MHz)
}
