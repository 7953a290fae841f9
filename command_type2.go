package wd1772

// Type II (Read/Write Sectors) sub-states.
const (
	t2HeadSettle    = commandEntryState + 1
	t2SearchWait    = commandEntryState + 2
	t2TransferEntry = commandEntryState + 3
	t2TransferByte  = commandEntryState + 4
)

func (c *Controller) typeIIStep() (int, int64) {
	switch c.subState {
	case commandEntryState:
		if c.CR&crBitHeadLoad != 0 {
			return t2HeadSettle, headLoadSettleFDCCycles
		}
		return c.typeIIBeginSearch()
	case t2HeadSettle:
		return c.typeIIBeginSearch()
	case t2SearchWait:
		return c.typeIISearchStep()
	case t2TransferEntry:
		return c.typeIIBeginTransfer()
	case t2TransferByte:
		return c.typeIITransferByte()
	}
	return c.completeCommand()
}

// trackOf returns the physical track Read/Write Sectors addresses: the
// Track Register, which the CPU is expected to have loaded (via a Seek
// or Restore) to match the head's actual position.
func (c *Controller) trackOf() int {
	return int(c.TR)
}

// typeIIBeginSearch starts (or restarts, for multi-sector transfers) the
// ID-field scan for the sector number latched in SR.
func (c *Controller) typeIIBeginSearch() (int, int64) {
	d := c.selectedDrive()
	if d == nil || !d.DiskInserted {
		c.STR |= strRNF
		return c.completeCommand()
	}
	_, spt := c.trackLayout(c.driveSelect)
	c.searchBudget = 5 * spt
	return t2SearchWait, c.advanceToNextID(c.driveSelect)
}

// typeIISearchStep checks the ID field most recently advanced to; on a
// match it proceeds to the data field, otherwise it keeps scanning for
// up to 5 revolutions' worth of sectors before giving up with RNF (spec
// §4.G Type II step 2).
func (c *Controller) typeIISearchStep() (int, int64) {
	if c.nextSectorIDSR == c.SR {
		return t2TransferEntry, bytesToFDCCycles(transferEntryBytes, c.drives[c.driveSelect].Density)
	}
	c.searchBudget--
	if c.searchBudget <= 0 {
		c.STR |= strRNF
		return c.completeCommand()
	}
	return t2SearchWait, c.advanceToNextID(c.driveSelect)
}

// typeIIBeginTransfer prepares the sector payload buffer: for reads it
// pulls the sector from the disk image up front (the image collaborator
// has no notion of partial reads); for writes it checks write-protect
// before any byte is accepted from the DMA.
func (c *Controller) typeIIBeginTransfer() (int, int64) {
	c.STR |= strDRQ
	drive := c.driveSelect

	if c.command == CmdWriteSectors && c.image.IsWriteProtected(drive) {
		c.STR |= strWPRT
		c.STR &^= strDRQ
		return c.completeCommand()
	}

	c.scratch = make([]byte, 512)
	c.scratchPos = 0

	if c.command == CmdReadSectors {
		n, err := c.image.ReadSector(drive, c.trackOf(), int(c.sideSignal), int(c.SR), c.scratch)
		if err != nil {
			c.STR |= strRNF
			c.STR &^= strDRQ
			return c.completeCommand()
		}
		c.scratch = c.scratch[:n]
	}

	return t2TransferByte, bytesToFDCCycles(1, c.drives[drive].Density)
}

// typeIITransferByte moves one byte between the DMA FIFO and the sector
// scratch buffer, advancing one MFM-byte-time per call.
func (c *Controller) typeIITransferByte() (int, int64) {
	drive := c.driveSelect
	switch c.command {
	case CmdReadSectors:
		if c.scratchPos < len(c.scratch) {
			c.dma.PushByte(c.mem, c.scratch[c.scratchPos])
			c.scratchPos++
			if c.scratchPos < len(c.scratch) {
				return t2TransferByte, bytesToFDCCycles(1, c.drives[drive].Density)
			}
		}
		return c.typeIISectorDone()

	case CmdWriteSectors:
		if c.scratchPos < len(c.scratch) {
			c.scratch[c.scratchPos] = c.dma.PullByte(c.mem)
			c.scratchPos++
			if c.scratchPos < len(c.scratch) {
				return t2TransferByte, bytesToFDCCycles(1, c.drives[drive].Density)
			}
		}
		if err := c.image.WriteSector(drive, c.trackOf(), int(c.sideSignal), int(c.SR), c.scratch); err != nil {
			c.STR |= strRNF
			return c.completeCommand()
		}
		return c.typeIISectorDone()
	}
	return c.completeCommand()
}

// typeIISectorDone finishes the current sector's transfer, continuing to
// the next sector number when CR's multi-sector bit is set.
func (c *Controller) typeIISectorDone() (int, int64) {
	c.STR &^= strDRQ
	if c.CR&crBitMultiSector != 0 {
		c.SR++
		return c.typeIIBeginSearch()
	}
	return c.completeCommand()
}
