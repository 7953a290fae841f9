package wd1772

// motorStopStep counts down motorOffIndexPulses index pulses, then turns
// the motor off and returns to idle. Any new command register write
// supersedes this by calling startCommand directly, which overwrites
// c.command before this state machine is consulted again.
func (c *Controller) motorStopStep() (int, int64) {
	c.motorStopPulses--
	if c.motorStopPulses > 0 {
		d := c.selectedDrive()
		if d == nil {
			c.command = CmdNone
			return subPrelude, 0
		}
		return commandEntryState, d.nextIndexDelay(c.clock.NowFDC(), c.model.FDC16MHz)
	}
	c.STR &^= strMotorOn
	c.command = CmdNone
	return subPrelude, 0
}
