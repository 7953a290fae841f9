package imagestore

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func buildMSA(sides, spt, tracks int, trackFill byte) []byte {
	var buf bytes.Buffer
	header := make([]byte, 10)
	binary.BigEndian.PutUint16(header[0:2], msaMagic)
	binary.BigEndian.PutUint16(header[2:4], uint16(spt))
	binary.BigEndian.PutUint16(header[4:6], uint16(sides-1))
	binary.BigEndian.PutUint16(header[6:8], 0)
	binary.BigEndian.PutUint16(header[8:10], uint16(tracks-1))
	buf.Write(header)

	trackSize := spt * sectorSize
	for t := 0; t < tracks; t++ {
		for s := 0; s < sides; s++ {
			// Encode as a single RLE run covering the whole track.
			block := []byte{msaRLEEscape, trackFill, 0, 0}
			binary.BigEndian.PutUint16(block[2:4], uint16(trackSize))
			var lenField [2]byte
			binary.BigEndian.PutUint16(lenField[:], uint16(len(block)))
			buf.Write(lenField[:])
			buf.Write(block)
		}
	}
	return buf.Bytes()
}

func TestDecodeMSARoundTrip(t *testing.T) {
	raw := buildMSA(2, 9, 80, 0x55)
	img, err := decodeDisk(raw, false)
	if err != nil {
		t.Fatalf("decodeDisk: %v", err)
	}
	spt, sides := img.DiskDetails()
	if spt != 9 || sides != 2 {
		t.Fatalf("DiskDetails = (%d, %d), want (9, 2)", spt, sides)
	}
	buf := make([]byte, sectorSize)
	if _, err := img.ReadSector(40, 1, 3, buf); err != nil {
		t.Fatalf("ReadSector: %v", err)
	}
	for _, b := range buf {
		if b != 0x55 {
			t.Fatalf("decoded MSA sector byte = %#x, want 0x55", b)
		}
	}
}

func TestMSARLEDecodeLiteralAndRun(t *testing.T) {
	block := []byte{0x01, 0x02, msaRLEEscape, 0x09, 0x00, 0x03}
	out, err := msaRLEDecode(block, 5)
	if err != nil {
		t.Fatalf("msaRLEDecode: %v", err)
	}
	want := []byte{0x01, 0x02, 0x09, 0x09, 0x09}
	if !bytes.Equal(out, want) {
		t.Errorf("msaRLEDecode = %v, want %v", out, want)
	}
}
