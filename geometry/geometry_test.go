package geometry

import (
	"context"
	"testing"
)

func TestBytesPerTrack(t *testing.T) {
	cases := []struct {
		density int
		want    int
	}{
		{1, 6268},
		{2, 12536},
		{4, 25072},
	}
	for _, c := range cases {
		if got := BytesPerTrack(c.density); got != c.want {
			t.Errorf("BytesPerTrack(%d) = %d, want %d", c.density, got, c.want)
		}
	}
}

func TestBuildCaches(t *testing.T) {
	a := Build(1, 9)
	b := Build(1, 9)
	if a != b {
		t.Error("Build should return the cached layout for the same key")
	}
	c := Build(1, 10)
	if a == c {
		t.Error("Build should not share layouts across different sector counts")
	}
}

func TestNextSectorID(t *testing.T) {
	l := Build(1, 9)

	away, id := l.NextSectorID(0)
	wantAway := (Gap1 + Gap2) * 1
	if away != wantAway || id != 1 {
		t.Errorf("NextSectorID(0) = (%d, %d), want (%d, 1)", away, id, wantAway)
	}

	// At the last byte of the track, past every ID field: must wrap to sector 1.
	_, id = l.NextSectorID(l.bytesPerTrack - 1)
	if id != 1 {
		t.Errorf("NextSectorID should wrap to sector 1, got %d", id)
	}
}

func TestCRC16KnownValue(t *testing.T) {
	// CRC-16/CCITT-FALSE of the ASCII bytes "123456789" is well known.
	got := CRC16([]byte("123456789"))
	const want = 0x29B1
	if got != want {
		t.Errorf("CRC16(123456789) = %#04x, want %#04x", got, want)
	}
}

func TestSynthesizeTrackSize(t *testing.T) {
	l := Build(1, 9)
	read := func(sector int) ([]byte, error) {
		return make([]byte, 512), nil
	}
	data, err := l.SynthesizeTrack(context.Background(), 5, 0, read)
	if err != nil {
		t.Fatalf("SynthesizeTrack: %v", err)
	}
	if len(data) != l.BytesPerTrack() {
		t.Errorf("synthesized track length = %d, want %d", len(data), l.BytesPerTrack())
	}
}
