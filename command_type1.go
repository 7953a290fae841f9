package wd1772

// Type I (Restore/Seek/Step) sub-states. Each value is only meaningful
// relative to the command currently running (c.command), so Restore,
// Seek and Step can and do reuse the same numbers for different steps of
// their own sequences.
const (
	t1StepLoop     = commandEntryState + 1
	t1VerifySettle = commandEntryState + 2
	t1VerifyWait   = commandEntryState + 3
	t1StepPerform  = commandEntryState + 4
)

func (c *Controller) typeIStep() (int, int64) {
	switch c.command {
	case CmdRestore:
		return c.restoreStep()
	case CmdSeek:
		return c.seekStep()
	case CmdStep:
		return c.stepStep()
	}
	return c.completeCommand()
}

// restoreStep drives the head to track 0, up to 255 step pulses, setting
// TR to 0 whichever way it ends (spec §4.G; the 255-attempt bound and
// "TR overwrites mid-count if the command is replaced" nuance are
// preserved by never resetting stepRemaining except at a fresh
// startCommand).
func (c *Controller) restoreStep() (int, int64) {
	d := c.selectedDrive()
	switch c.subState {
	case commandEntryState:
		c.TR = 0xFF
		c.stepRemaining = 255
		c.stepDirection = -1
		return t1StepLoop, 0

	case t1StepLoop:
		if d == nil {
			c.STR |= strRNF
			return c.completeCommand()
		}
		if d.trackZero() {
			c.TR = 0
			return c.verifyStart()
		}
		if c.stepRemaining <= 0 {
			c.TR = 0
			c.STR |= strRNF
			return c.verifyStart()
		}
		d.stepHead(-1)
		c.stepRemaining--
		return t1StepLoop, stepRateFDCCycles(c.CR)

	case t1VerifySettle:
		return c.verifySettleDone()

	case t1VerifyWait:
		return c.verifyWaitStep()
	}
	return c.completeCommand()
}

// seekStep steps the head, one step per stepRate delay, until TR equals
// the target track already latched into DR.
func (c *Controller) seekStep() (int, int64) {
	d := c.selectedDrive()
	switch c.subState {
	case commandEntryState:
		return t1StepLoop, 0

	case t1StepLoop:
		if d == nil {
			c.STR |= strRNF
			return c.completeCommand()
		}
		if c.TR == c.DR {
			return c.verifyStart()
		}
		if c.TR < c.DR {
			c.stepDirection = 1
		} else {
			c.stepDirection = -1
		}
		d.stepHead(int(c.stepDirection))
		c.TR = uint8(int(c.TR) + int(c.stepDirection))
		return t1StepLoop, stepRateFDCCycles(c.CR)

	case t1VerifySettle:
		return c.verifySettleDone()

	case t1VerifyWait:
		return c.verifyWaitStep()
	}
	return c.completeCommand()
}

// stepStep performs a single step pulse in the direction forced by
// Step-In/Step-Out, or the last direction for plain Step, optionally
// updating TR.
func (c *Controller) stepStep() (int, int64) {
	d := c.selectedDrive()
	switch c.subState {
	case commandEntryState:
		if dir, forced := stepKindOf(c.CR); forced {
			c.stepDirection = int8(dir)
		}
		return t1StepPerform, 0

	case t1StepPerform:
		if d != nil {
			d.stepHead(int(c.stepDirection))
		}
		if c.CR&crBitUpdateTrack != 0 {
			c.TR = uint8(int(c.TR) + int(c.stepDirection))
		}
		return c.verifyStart()

	case t1VerifySettle:
		return c.verifySettleDone()

	case t1VerifyWait:
		return c.verifyWaitStep()
	}
	return c.completeCommand()
}

// verifyStart enters the post-step verify sequence when CR's verify bit
// is set, otherwise completes immediately.
func (c *Controller) verifyStart() (int, int64) {
	if c.CR&crBitVerify == 0 {
		return c.completeCommand()
	}
	return t1VerifySettle, headSettleFDCCycles
}

// verifySettleDone starts the up-to-5-revolution ID-field scan once the
// head-settle delay has elapsed.
func (c *Controller) verifySettleDone() (int, int64) {
	d := c.selectedDrive()
	if d == nil || !d.DiskInserted {
		c.STR |= strRNF
		return c.completeCommand()
	}
	_, spt := c.trackLayout(c.driveSelect)
	c.searchBudget = 5 * spt
	return t1VerifyWait, c.advanceToNextID(c.driveSelect)
}

// verifyWaitStep compares the track number of the ID field most recently
// scanned (the drive's actual physical track, since synthesized tracks
// always carry the head's own position) against TR; a match clears RNF,
// exhausting the 5-revolution search budget without one sets it.
func (c *Controller) verifyWaitStep() (int, int64) {
	d := c.selectedDrive()
	if d == nil {
		c.STR |= strRNF
		return c.completeCommand()
	}
	if d.HeadTrack == int(c.TR) {
		c.STR &^= strRNF
		return c.completeCommand()
	}
	c.searchBudget--
	if c.searchBudget <= 0 {
		c.STR |= strRNF
		return c.completeCommand()
	}
	return t1VerifyWait, c.advanceToNextID(c.driveSelect)
}
