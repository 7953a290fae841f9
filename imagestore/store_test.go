package imagestore

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/spf13/afero"
)

func rawST(sides, spt, tracks int) []byte {
	data := make([]byte, sides*spt*tracks*sectorSize)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestStoreInsertRawST(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "disk.st", rawST(2, 9, 80), 0o644)

	s := NewStore(fs)
	if err := s.Insert(0, "disk.st"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	spt, sides, err := s.DiskDetails(0)
	if err != nil {
		t.Fatalf("DiskDetails: %v", err)
	}
	if spt != 9 || sides != 2 {
		t.Fatalf("DiskDetails = (%d, %d), want (9, 2)", spt, sides)
	}

	buf := make([]byte, sectorSize)
	n, err := s.ReadSector(0, 3, 1, 2, buf)
	if err != nil {
		t.Fatalf("ReadSector: %v", err)
	}
	if n != sectorSize {
		t.Fatalf("ReadSector returned %d bytes, want %d", n, sectorSize)
	}
}

func TestStoreWriteThenReadRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "disk.st", rawST(1, 9, 80), 0o644)

	s := NewStore(fs)
	if err := s.Insert(0, "disk.st"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	payload := bytes.Repeat([]byte{0xAB}, sectorSize)
	if err := s.WriteSector(0, 10, 0, 5, payload); err != nil {
		t.Fatalf("WriteSector: %v", err)
	}

	buf := make([]byte, sectorSize)
	if _, err := s.ReadSector(0, 10, 0, 5, buf); err != nil {
		t.Fatalf("ReadSector: %v", err)
	}
	if !bytes.Equal(buf, payload) {
		t.Error("read-back payload does not match what was written")
	}
}

func TestStoreEjectClearsDisk(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "disk.st", rawST(1, 9, 80), 0o644)
	s := NewStore(fs)
	_ = s.Insert(0, "disk.st")
	s.Eject(0)

	if _, _, err := s.DiskDetails(0); err == nil {
		t.Error("DiskDetails should fail after Eject")
	}
	if !s.IsWriteProtected(0) {
		t.Error("an empty drive should report write-protected")
	}
}

func TestStoreInsertFromZip(t *testing.T) {
	fs := afero.NewMemMapFs()

	var zbuf bytes.Buffer
	zw := zip.NewWriter(&zbuf)
	w, err := zw.Create("game.st")
	if err != nil {
		t.Fatalf("zip.Create: %v", err)
	}
	if _, err := w.Write(rawST(1, 9, 80)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip.Close: %v", err)
	}
	afero.WriteFile(fs, "game.zip", zbuf.Bytes(), 0o644)

	s := NewStore(fs)
	if err := s.Insert(0, "game.zip"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if spt, sides, err := s.DiskDetails(0); err != nil || spt != 9 || sides != 1 {
		t.Fatalf("DiskDetails = (%d, %d, %v), want (9, 1, nil)", spt, sides, err)
	}
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name   string
		header []byte
		want   formatType
	}{
		{"a.zip", magicZIP, formatZIP},
		{"a.7z", magic7z, format7z},
		{"a.gz", magicGzip, formatGzip},
		{"a.rar", magicRAR, formatRAR},
		{"a.xz", magicXZ, formatXZ},
		{"a.zst", magicZstd, formatZstd},
		{"a.st", []byte{0, 0}, formatRaw},
	}
	for _, c := range cases {
		if got := detectFormat(c.header, c.name); got != c.want {
			t.Errorf("detectFormat(%s) = %v, want %v", c.name, got, c.want)
		}
	}
}
