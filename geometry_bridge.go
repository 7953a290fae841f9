package wd1772

import "github.com/user-none/go-chip-wd1772/geometry"

// mfmByteCycles is how many FDC cycles one MFM byte takes to read/write
// at double density (256 cycles at the 8 MHz reference); higher
// densities pack more bytes into the same rotation time.
const mfmByteCycles = 256

func bytesToFDCCycles(n int, density Density) int64 {
	return int64(n) * mfmByteCycles / int64(density)
}

func fdcCyclesToBytes(cycles int64, density Density) int {
	return int(cycles * int64(density) / mfmByteCycles)
}

// trackLayout returns the geometry.Layout for the given drive, consulting
// the disk-image collaborator for sectors/track and falling back to a
// standard 9-sectors/2-sides layout if no disk details are available
// (e.g. while waiting for a drive/disk to appear).
func (c *Controller) trackLayout(driveIdx int) (*geometry.Layout, int) {
	spt, _, err := c.image.DiskDetails(driveIdx)
	if err != nil || spt <= 0 {
		spt = 9
	}
	return geometry.Build(int(c.drives[driveIdx].Density), spt), spt
}

// currentByteOffset returns the drive's angular position, in synthesized
// track bytes, since the last index pulse.
func (c *Controller) currentByteOffset(driveIdx int) int {
	d := c.drives[driveIdx]
	if d.indexPulseRef == 0 {
		return 0
	}
	sinceIndex := int64(c.clock.NowFDC() - d.indexPulseRef)
	if sinceIndex < 0 {
		sinceIndex = 0
	}
	return fdcCyclesToBytes(sinceIndex, d.Density)
}

// searchAdvanceBytes is how many MFM bytes pass while the controller
// reads enough of an ID field's header to learn its sector number,
// before deciding whether it matches (spec §4.G step 2: "header + 7
// bytes").
const searchAdvanceBytes = 7

// transferEntryBytes is how many MFM bytes pass between recognizing a
// matching ID field and the start of its data field: the remainder of
// the header, GAP3a, GAP3b, SYNC and the data address mark (spec §4.G
// step 2: "rest of header + GAP3a + GAP3b + SYNC + DAM = 41 bytes").
const transferEntryBytes = 41

// advanceToNextID moves the given drive to its next sector-ID field,
// recording the sector number found there in nextSectorIDSR, and returns
// the FDC-cycle delay to get there plus far enough into the header to
// read the sector number.
func (c *Controller) advanceToNextID(driveIdx int) int64 {
	layout, _ := c.trackLayout(driveIdx)
	offset := c.currentByteOffset(driveIdx)
	bytesAway, sectorID := layout.NextSectorID(offset)
	c.nextSectorIDSR = byte(sectorID)
	return bytesToFDCCycles(bytesAway+searchAdvanceBytes, c.drives[driveIdx].Density)
}
