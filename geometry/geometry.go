// Package geometry computes the synthesized IBM track layout the FDC core
// assumes for every supported disk image: fixed gap sizes, one raw 512-byte
// sector occupying 614 MFM bytes, and a CRC-16 good enough to stamp
// synthesized ID and track fields (it is never used to reject a sector).
package geometry

import "github.com/hashicorp/golang-lru/v2"

// Standard IBM layout gap sizes, in MFM bytes, as used by the WD1772
// at double density. Bytes/track and sector spacing scale linearly with
// density (1 = DD, 2 = HD, 4 = ED).
const (
	Gap1        = 60
	Gap2        = 12
	Gap3a       = 22
	Gap3b       = 12
	Gap4        = 40
	RawSector   = 614 // one 512-byte sector plus its framing, in MFM bytes
	TrackBaseDD = 6268
)

// BytesPerTrack returns the size of a synthesized track at the given density.
func BytesPerTrack(density int) int {
	return TrackBaseDD * density
}

// Layout describes the byte offsets of every sector-ID field on a track,
// for a given density and sector count. It is immutable once built and
// safe to share across drives.
type Layout struct {
	Density        int
	SectorsPerTrack int
	// idOffset[i] is the byte offset (from the index pulse) of sector i+1's
	// ID field.
	idOffset []int
	bytesPerTrack int
}

// key identifies a layout in the cache.
type key struct {
	density         int
	sectorsPerTrack int
}

const cacheSize = 16

var cache *lru.Cache[key, *Layout]

func init() {
	c, err := lru.New[key, *Layout](cacheSize)
	if err != nil {
		// cacheSize is a compile-time positive constant; New only fails for n<=0.
		panic("geometry: lru.New: " + err.Error())
	}
	cache = c
}

// Build returns the Layout for (density, sectorsPerTrack), computing and
// caching it on first use. Concurrent callers may race to build the same
// key; the cache converges on whichever build finished last, which is
// harmless since layouts for the same key are always identical.
func Build(density, sectorsPerTrack int) *Layout {
	k := key{density, sectorsPerTrack}
	if l, ok := cache.Get(k); ok {
		return l
	}

	l := &Layout{
		Density:         density,
		SectorsPerTrack: sectorsPerTrack,
		bytesPerTrack:   BytesPerTrack(density),
		idOffset:        make([]int, sectorsPerTrack),
	}
	for i := 0; i < sectorsPerTrack; i++ {
		l.idOffset[i] = (Gap1 + Gap2 + i*RawSector) * density
	}
	cache.Add(k, l)
	return l
}

// BytesPerTrack returns the total synthesized track size for this layout.
func (l *Layout) BytesPerTrack() int {
	return l.bytesPerTrack
}

// NextSectorID finds the next sector-ID field strictly after currentOffset
// (byte offset from the index pulse). It returns the byte distance to that
// field and the 1-based sector number that will be found there, wrapping
// around the index pulse if none remains ahead of currentOffset.
func (l *Layout) NextSectorID(currentOffset int) (bytesAway int, sectorID int) {
	for i, off := range l.idOffset {
		if off > currentOffset {
			return off - currentOffset, i + 1
		}
	}
	// Wrap: distance to the end of the track, then back to the first ID field.
	wrap := l.bytesPerTrack - currentOffset + (Gap1+Gap2)*l.Density
	return wrap, 1
}
