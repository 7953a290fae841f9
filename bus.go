package wd1772

// Register addresses (spec §6). Only these eight word/byte-sized locations
// are decoded; anything else is the caller's responsibility to route
// here in the first place.
const (
	AddrDataOrCount = 0xFF8604
	AddrDMAMode     = 0xFF8606
	AddrDMAAddrHigh = 0xFF8609
	AddrDMAAddrMid  = 0xFF860B
	AddrDMAAddrLow  = 0xFF860D
	AddrFalconMode  = 0xFF860F
	AddrPSGPortA    = 0xFF8800
	AddrPSGPortA2   = 0xFF8802
)

// ReadWord services a word-sized CPU read at one of the FDC/DMA
// registers. Byte-sized reads of the two word-only registers must use
// ReadByte instead, which reports BusError.
func (c *Controller) ReadWord(addr uint32) uint16 {
	switch addr {
	case AddrDataOrCount:
		v := c.readFF8604()
		if c.sel != selSectorCount {
			// FDC registers are 8 bits wide; the unused upper byte echoes
			// the most recent $ff8604 access.
			v |= c.dma.RecentEcho() & 0xFF00
		}
		c.dma.NoteFF8604Access(v)
		return v
	case AddrDMAMode:
		return c.readDMAStatus()
	}
	return 0
}

// WriteWord services a word-sized CPU write.
func (c *Controller) WriteWord(addr uint32, v uint16) {
	switch addr {
	case AddrDataOrCount:
		c.dma.NoteFF8604Access(v)
		c.writeFF8604(v)
	case AddrDMAMode:
		c.dma.SetMode(v)
		c.updateRegisterSelect()
	}
}

// ReadByte services byte-sized CPU reads, including the three DMA
// address bytes, the Falcon mode stub, and a BusError for the two
// word-only registers.
func (c *Controller) ReadByte(addr uint32) (uint8, error) {
	switch addr {
	case AddrDataOrCount, AddrDMAMode:
		return 0, &BusError{Addr: addr}
	case AddrDMAAddrHigh:
		return c.dma.AddressByte(0), nil
	case AddrDMAAddrMid:
		return c.dma.AddressByte(1), nil
	case AddrDMAAddrLow:
		return c.dma.AddressByte(2), nil
	case AddrFalconMode:
		return 0x80, nil
	}
	return 0, nil
}

// WriteByte services byte-sized CPU writes.
func (c *Controller) WriteByte(addr uint32, v uint8) error {
	switch addr {
	case AddrDataOrCount, AddrDMAMode:
		return &BusError{Addr: addr}
	case AddrDMAAddrHigh:
		if c.model.FourMB {
			v &= 0x3F
		}
		c.dma.SetAddressHigh(v)
	case AddrDMAAddrMid:
		c.dma.SetAddressMid(v)
	case AddrDMAAddrLow:
		c.dma.SetAddressLow(v & 0xFE)
	case AddrFalconMode:
		// Acknowledged, no state kept (spec §6).
	case AddrPSGPortA, AddrPSGPortA2:
		c.writePSGPortA(v)
	}
	return nil
}

// updateRegisterSelect recomputes which register $ff8604 currently
// addresses, from the DMA mode register's select bits (spec §4.F).
func (c *Controller) updateRegisterSelect() {
	if c.dma.Mode&0x10 != 0 {
		c.sel = selSectorCount
		return
	}
	switch (c.dma.Mode >> 1) & 0x3 {
	case 0:
		c.sel = selCommandStatus
	case 1:
		c.sel = selTrack
	case 2:
		c.sel = selSector
	case 3:
		c.sel = selData
	}
}

// readFF8604 returns the currently-selected register or the DMA sector
// count, per the register-select state.
func (c *Controller) readFF8604() uint16 {
	switch c.sel {
	case selCommandStatus:
		return uint16(c.readSTR())
	case selTrack:
		return uint16(c.TR)
	case selSector:
		return uint16(c.SR)
	case selData:
		return uint16(c.DR)
	case selSectorCount:
		return c.dma.SectorCount
	}
	return 0
}

// writeFF8604 writes the currently-selected register or the DMA sector
// count (which also resets bytes_in_sector to 512, spec §4.E).
func (c *Controller) writeFF8604(v uint16) {
	switch c.sel {
	case selCommandStatus:
		c.writeCommandRegister(uint8(v))
	case selTrack:
		c.TR = uint8(v)
	case selSector:
		c.SR = uint8(v)
	case selData:
		c.DR = uint8(v)
	case selSectorCount:
		c.dma.SectorCount = v
		c.dma.BytesInSector = 512
	}
}

// readSTR implements the Type I live-signal recompute and the
// read-clears-IRQ-unless-immediate rule (spec §4.F).
func (c *Controller) readSTR() uint8 {
	if c.statusIsTypeI {
		d := c.selectedDrive()
		if d == nil || d.wprtSignal() {
			c.STR |= strWPRT
		} else {
			c.STR &^= strWPRT
		}
		if d != nil {
			if d.trackZero() {
				c.STR |= strTR00
			} else {
				c.STR &^= strTR00
			}
			if d.indexSignal(c.clock.NowFDC(), c.motorOn()) {
				c.STR |= strIndex
			} else {
				c.STR &^= strIndex
			}
		}
	}
	if c.interruptCond&intCondImmediate == 0 {
		c.clearIRQ()
	}
	return c.STR
}

// readDMAStatus implements the $ff8606 read-side encoding: low 3 bits
// carry error/sector-count-nonzero/DRQ, the rest echo recent_ff8604_val.
func (c *Controller) readDMAStatus() uint16 {
	var low uint16
	if !c.dma.ErrorBit() {
		low |= 1 << 0
	}
	if c.dma.SectorCount != 0 {
		low |= 1 << 1
	}
	echo := c.dma.RecentEcho() &^ 0x7
	return low | echo
}

// writeCommandRegister implements the command-register acceptance rules
// of spec §4.F: Type IV is always accepted; a same-type Type I/II write
// while BUSY and replace_command_possible replaces the running command;
// anything else while BUSY is silently dropped.
func (c *Controller) writeCommandRegister(cr uint8) {
	cmd, typ := classifyCommand(cr)
	if typ == TypeIV {
		c.forceInterrupt(cr)
		return
	}
	if c.STR&strBusy != 0 {
		if c.replaceCommandPossible && (typ == TypeI || typ == TypeII) && typ == c.commandType {
			c.startCommand(cmd, typ, cr)
		}
		return
	}
	c.startCommand(cmd, typ, cr)
}

// writePSGPortA forwards the PSG port A side-select (bit 0, active low)
// and drive-select (bits 1-2, active low) signals to the FDC (spec §6).
func (c *Controller) writePSGPortA(v uint8) {
	c.SetSideSelect(^v & 1)
	switch (^v >> 1) & 0x3 {
	case 0x1:
		c.SetDriveSelect(0)
	case 0x2:
		c.SetDriveSelect(1)
	default:
		c.SetDriveSelect(-1)
	}
}
