package wd1772

import (
	"context"

	"github.com/user-none/go-chip-wd1772/geometry"
)

// Type III (Read Address/Read Track/Write Track) sub-states.
const (
	t3HeadSettle = commandEntryState + 1
	t3WaitIndex  = commandEntryState + 2
	t3SearchWait = commandEntryState + 3
	t3Transfer   = commandEntryState + 4
)

func (c *Controller) typeIIIStep() (int, int64) {
	switch c.subState {
	case commandEntryState:
		if c.CR&crBitHeadLoad != 0 {
			return t3HeadSettle, headLoadSettleFDCCycles
		}
		return c.typeIIIBegin()
	case t3HeadSettle:
		return c.typeIIIBegin()
	case t3WaitIndex:
		return c.typeIIIAfterIndex()
	case t3SearchWait:
		return c.typeIIIReadAddressFound()
	case t3Transfer:
		return c.typeIIITransferByte()
	}
	return c.completeCommand()
}

// typeIIIBegin routes to each command's own starting wait: Read Address
// scans for the very next ID field, while Read/Write Track both need the
// head positioned at the start of the track, i.e. right after an index
// pulse.
func (c *Controller) typeIIIBegin() (int, int64) {
	d := c.selectedDrive()
	if d == nil || !d.DiskInserted {
		c.STR |= strRNF
		return c.completeCommand()
	}
	switch c.command {
	case CmdReadAddress:
		return t3SearchWait, c.advanceToNextID(c.driveSelect)
	case CmdReadTrack, CmdWriteTrack:
		return t3WaitIndex, d.nextIndexDelay(c.clock.NowFDC(), c.model.FDC16MHz)
	}
	return c.completeCommand()
}

// typeIIIReadAddressFound loads the 6 trailing bytes of the just-found ID
// field (track, side, sector, length code, CRC hi, CRC lo) into the
// transfer buffer.
func (c *Controller) typeIIIReadAddressFound() (int, int64) {
	drive := c.driveSelect
	id := geometry.IDField(byte(c.trackOf()), c.sideSignal, c.nextSectorIDSR)
	c.scratch = append([]byte{}, id[4:]...)
	c.scratchPos = 0
	c.STR |= strDRQ
	return t3Transfer, bytesToFDCCycles(1, c.drives[drive].Density)
}

// typeIIIAfterIndex builds the full-track transfer buffer once the head
// has reached the index mark: a synthesized IBM-layout track for Read
// Track, filling with random bytes instead of failing when the side
// doesn't exist on the image, or (for Write Track) completes immediately
// with RNF set, since this core has nowhere to persist arbitrary raw
// track content (see DESIGN.md).
func (c *Controller) typeIIIAfterIndex() (int, int64) {
	drive := c.driveSelect
	switch c.command {
	case CmdReadTrack:
		layout, _ := c.trackLayout(drive)
		track, side := c.trackOf(), int(c.sideSignal)
		buf, err := layout.SynthesizeTrack(context.Background(), track, side, func(sector int) ([]byte, error) {
			data := make([]byte, 512)
			if _, err := c.image.ReadSector(drive, track, side, sector, data); err != nil {
				for i := range data {
					data[i] = byte(c.rnd.Uint64N(256))
				}
			}
			return data, nil
		})
		if err != nil {
			c.STR |= strRNF
			return c.completeCommand()
		}
		c.scratch = buf
	case CmdWriteTrack:
		c.STR |= strRNF
		return c.completeCommand()
	}
	c.scratchPos = 0
	c.STR |= strDRQ
	return t3Transfer, bytesToFDCCycles(1, c.drives[drive].Density)
}

// typeIIITransferByte moves one byte of the track/ID-field buffer through
// the DMA engine per MFM-byte-time.
func (c *Controller) typeIIITransferByte() (int, int64) {
	drive := c.driveSelect
	switch c.command {
	case CmdReadAddress, CmdReadTrack:
		if c.scratchPos < len(c.scratch) {
			c.dma.PushByte(c.mem, c.scratch[c.scratchPos])
			if c.command == CmdReadAddress && c.scratchPos == 0 {
				// The Sector Register is loaded with the track number
				// just read, a documented WD1772 Read Address quirk.
				c.SR = c.scratch[0]
			}
			c.scratchPos++
			if c.scratchPos < len(c.scratch) {
				return t3Transfer, bytesToFDCCycles(1, c.drives[drive].Density)
			}
		}
		c.STR &^= strDRQ
		return c.completeCommand()

	case CmdWriteTrack:
		if c.scratchPos < len(c.scratch) {
			c.scratch[c.scratchPos] = c.dma.PullByte(c.mem)
			c.scratchPos++
			if c.scratchPos < len(c.scratch) {
				return t3Transfer, bytesToFDCCycles(1, c.drives[drive].Density)
			}
		}
		c.STR &^= strDRQ
		return c.completeCommand()
	}
	return c.completeCommand()
}
