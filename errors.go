package wd1772

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, mapped to STR bits rather than raised through
// these as Go errors during normal command execution (spec §7); they
// exist for callers that want to classify a failed ReadSector/WriteSector
// from the DiskImage collaborator.
var (
	ErrNotFound       = errors.New("wd1772: sector, track or ID field not found")
	ErrWriteProtected = errors.New("wd1772: drive is write-protected")
	ErrDMAUnderrun    = errors.New("wd1772: DMA transfer attempted with sector_count == 0")
)

// BusError is returned by Controller.ReadByte/WriteByte for byte-sized
// accesses to the FDC's word-only registers ($ff8604/$ff8606). Callers
// are expected to forward it to their CPU's own bus-error facility; no
// FDC/DMA state changes as a result of the access.
type BusError struct {
	Addr uint32
}

func (e *BusError) Error() string {
	return fmt.Sprintf("wd1772: bus error: byte access to word-only register at 0x%06X", e.Addr)
}
