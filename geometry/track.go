package geometry

import "context"

// SectorReader reads one 512-byte sector's payload. It is supplied by the
// caller (normally backed by the disk-image collaborator).
type SectorReader func(sector int) ([]byte, error)

// SynthesizeTrack builds a full IBM-layout track image: GAP1, then for each
// sector GAP2 + a 10-byte ID field (with CRC) + GAP3a + GAP3b + a sync+FB
// data-mark header + the 512-byte payload + a CRC over the sync bytes,
// mark and payload + GAP4, followed by a
// GAP5 fill of 0x4E to pad out to BytesPerTrack. track and side are stamped
// into every ID field; read is called once per sector in the layout, in
// order, since the disk-image collaborator is not expected to be safe for
// concurrent access and the single-threaded model this controller emulates
// never reads two sectors at once either.
func (l *Layout) SynthesizeTrack(ctx context.Context, track, side int, read SectorReader) ([]byte, error) {
	n := l.SectorsPerTrack
	payloads := make([][]byte, n)

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := read(i + 1)
		if err != nil {
			return nil, err
		}
		payloads[i] = data
	}

	buf := make([]byte, 0, l.bytesPerTrack)
	buf = append(buf, fillBytes(Gap1*l.Density, 0x4E)...)

	for i := 0; i < n; i++ {
		buf = append(buf, fillBytes(Gap2*l.Density, 0x4E)...)
		buf = append(buf, idField(byte(track), byte(side), byte(i+1))...)
		buf = append(buf, fillBytes(Gap3a*l.Density, 0x4E)...)
		buf = append(buf, fillBytes(Gap3b*l.Density, 0x00)...)
		buf = append(buf, SyncMarks[:]...)
		buf = append(buf, 0xFB)
		buf = append(buf, payloads[i]...)
		crc := CRC16(append(append(append([]byte{}, SyncMarks[:]...), 0xFB), payloads[i]...))
		buf = append(buf, byte(crc>>8), byte(crc))
		buf = append(buf, fillBytes(Gap4*l.Density, 0x4E)...)
	}

	if len(buf) < l.bytesPerTrack {
		buf = append(buf, fillBytes(l.bytesPerTrack-len(buf), 0x4E)...)
	}
	return buf[:l.bytesPerTrack], nil
}

// idField synthesizes the 10-byte sector-ID field: three sync bytes, the
// 0xFE address mark, track/side/sector/size-code, and a CRC-16 over the
// first eight bytes (sync bytes included, as the real controller does).
func idField(track, side, sector byte) []byte {
	return IDField(track, side, sector)
}

// IDField synthesizes the 10-byte sector-ID field the same way
// SynthesizeTrack does, for callers (Read Address) that need to produce
// one outside of a full track build.
func IDField(track, side, sector byte) []byte {
	const sizeCode512 = 0x02
	header := append(append([]byte{}, SyncMarks[:]...), 0xFE, track, side, sector, sizeCode512)
	crc := CRC16(header)
	return append(header, byte(crc>>8), byte(crc))
}

func fillBytes(n int, b byte) []byte {
	if n <= 0 {
		return nil
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}
