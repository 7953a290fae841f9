package imagestore

import (
	"encoding/binary"
	"fmt"
)

// Image is a decoded disk image: a flat byte-per-byte dump, ordered
// track-major (track 0 side 0, track 0 side 1, track 1 side 0, ...), of
// every 512-byte sector on the disk. This is the representation the
// wd1772 core's collaborator interface operates on; no MFM encoding is
// modeled, per spec.
type Image struct {
	data            []byte
	sectorsPerTrack int
	sides           int
	tracks          int
	writeProtected  bool
}

const sectorSize = 512

// msaMagic is the big-endian 0x0E0F signature at the start of every MSA
// image.
const msaMagic = 0x0E0F
const msaRLEEscape = 0xE5

// decodeDisk turns a raw image file's bytes into an Image, detecting the
// .MSA container (by magic) and otherwise assuming a raw .ST/.DIM dump.
func decodeDisk(raw []byte, writeProtected bool) (*Image, error) {
	if len(raw) >= 2 && binary.BigEndian.Uint16(raw[0:2]) == msaMagic {
		return decodeMSA(raw, writeProtected)
	}
	return decodeRawST(raw, writeProtected)
}

// decodeRawST treats the file as a flat dump and recovers geometry from
// its size: standard ST layouts are 1 or 2 sides, 80 (sometimes 82/83)
// tracks, and 9, 10 or 11 sectors/track. Layouts of 80-90 tracks are
// tried first; 40-79 tracks are accepted only when none of those fits.
func decodeRawST(raw []byte, writeProtected bool) (*Image, error) {
	if len(raw)%sectorSize != 0 || len(raw) == 0 {
		return nil, fmt.Errorf("imagestore: raw image size %d is not a non-zero multiple of %d", len(raw), sectorSize)
	}
	totalSectors := len(raw) / sectorSize

	best := geometryGuess{}
search:
	for _, minTracks := range []int{80, 40} {
		for _, sides := range []int{2, 1} {
			for _, spt := range []int{9, 10, 11, 8} {
				if totalSectors%(sides*spt) != 0 {
					continue
				}
				tracks := totalSectors / (sides * spt)
				if tracks < minTracks || tracks > 90 {
					continue
				}
				best = geometryGuess{sides: sides, spt: spt, tracks: tracks}
				break search
			}
		}
	}
	if best.spt == 0 {
		return nil, fmt.Errorf("imagestore: could not derive geometry from %d sectors", totalSectors)
	}

	return &Image{
		data:            raw,
		sectorsPerTrack: best.spt,
		sides:           best.sides,
		tracks:          best.tracks,
		writeProtected:  writeProtected,
	}, nil
}

type geometryGuess struct {
	sides, spt, tracks int
}

// decodeMSA decompresses an MSA image: a 10-byte header followed by one
// run-length-encoded (or literal) block per track, track-major across
// sides, lowest side first.
func decodeMSA(raw []byte, writeProtected bool) (*Image, error) {
	if len(raw) < 10 {
		return nil, fmt.Errorf("imagestore: MSA header truncated")
	}
	sectorsPerTrack := int(binary.BigEndian.Uint16(raw[2:4]))
	sidesField := int(binary.BigEndian.Uint16(raw[4:6]))
	startTrack := int(binary.BigEndian.Uint16(raw[6:8]))
	endTrack := int(binary.BigEndian.Uint16(raw[8:10]))
	sides := sidesField + 1
	tracks := endTrack - startTrack + 1

	if sectorsPerTrack <= 0 || sides <= 0 || sides > 2 || tracks <= 0 {
		return nil, fmt.Errorf("imagestore: implausible MSA geometry (spt=%d sides=%d tracks=%d)", sectorsPerTrack, sides, tracks)
	}

	trackSize := sectorsPerTrack * sectorSize
	out := make([]byte, 0, trackSize*tracks*sides)

	pos := 10
	for t := 0; t < tracks; t++ {
		for s := 0; s < sides; s++ {
			if pos+2 > len(raw) {
				return nil, fmt.Errorf("imagestore: MSA truncated at track %d side %d", t, s)
			}
			blockLen := int(binary.BigEndian.Uint16(raw[pos : pos+2]))
			pos += 2
			if pos+blockLen > len(raw) {
				return nil, fmt.Errorf("imagestore: MSA block overruns file at track %d side %d", t, s)
			}
			block := raw[pos : pos+blockLen]
			pos += blockLen

			var track []byte
			if blockLen == trackSize {
				track = block
			} else {
				var err error
				track, err = msaRLEDecode(block, trackSize)
				if err != nil {
					return nil, fmt.Errorf("imagestore: MSA track %d side %d: %w", t, s, err)
				}
			}
			out = append(out, track...)
		}
	}

	return &Image{
		data:            out,
		sectorsPerTrack: sectorsPerTrack,
		sides:           sides,
		tracks:          tracks,
		writeProtected:  writeProtected,
	}, nil
}

// msaRLEDecode expands MSA's run-length encoding: 0xE5 <byte> <hi> <lo>
// means "repeat byte, 16-bit big-endian count times"; any other byte is
// literal.
func msaRLEDecode(block []byte, wantLen int) ([]byte, error) {
	out := make([]byte, 0, wantLen)
	for i := 0; i < len(block); {
		b := block[i]
		if b != msaRLEEscape {
			out = append(out, b)
			i++
			continue
		}
		if i+4 > len(block) {
			return nil, fmt.Errorf("truncated RLE escape")
		}
		value := block[i+1]
		count := int(binary.BigEndian.Uint16(block[i+2 : i+4]))
		for n := 0; n < count; n++ {
			out = append(out, value)
		}
		i += 4
	}
	if len(out) != wantLen {
		return nil, fmt.Errorf("decoded track length %d, want %d", len(out), wantLen)
	}
	return out, nil
}

// DiskDetails returns the sector count per track and number of sides.
func (img *Image) DiskDetails() (sectorsPerTrack, sides int) {
	return img.sectorsPerTrack, img.sides
}

// Tracks returns the number of tracks recorded in the image.
func (img *Image) Tracks() int {
	return img.tracks
}

// IsWriteProtected reports whether writes to this image should be rejected.
func (img *Image) IsWriteProtected() bool {
	return img.writeProtected
}

func (img *Image) offset(track, side, sector int) (int, error) {
	if side < 0 || side >= img.sides {
		return 0, fmt.Errorf("imagestore: side %d out of range (image has %d side(s))", side, img.sides)
	}
	if track < 0 || track >= img.tracks {
		return 0, fmt.Errorf("imagestore: track %d out of range (image has %d tracks)", track, img.tracks)
	}
	if sector < 1 || sector > img.sectorsPerTrack {
		return 0, fmt.Errorf("imagestore: sector %d out of range (image has %d sectors/track)", sector, img.sectorsPerTrack)
	}
	trackIndex := track*img.sides + side
	return trackIndex*img.sectorsPerTrack*sectorSize + (sector-1)*sectorSize, nil
}

// ReadSector copies the 512-byte sector (track, side, sector) into buf,
// returning the number of bytes copied (always sectorSize on success).
func (img *Image) ReadSector(track, side, sector int, buf []byte) (int, error) {
	off, err := img.offset(track, side, sector)
	if err != nil {
		return 0, err
	}
	n := copy(buf, img.data[off:off+sectorSize])
	return n, nil
}

// WriteSector writes buf (exactly 512 bytes) into sector (track, side, sector).
func (img *Image) WriteSector(track, side, sector int, buf []byte) error {
	if img.writeProtected {
		return fmt.Errorf("imagestore: image is write-protected")
	}
	off, err := img.offset(track, side, sector)
	if err != nil {
		return err
	}
	if len(buf) != sectorSize {
		return fmt.Errorf("imagestore: write of %d bytes, want %d", len(buf), sectorSize)
	}
	copy(img.data[off:off+sectorSize], buf)
	return nil
}
