package imagestore

import (
	"bytes"
	"strings"
)

// formatType identifies how an image file's bytes are packaged. The raw
// disk format (.ST / .MSA) is detected independently afterward by
// decodeDisk once the container, if any, has been stripped away.
type formatType int

const (
	formatRaw formatType = iota
	formatZIP
	format7z
	formatGzip
	formatRAR
	formatXZ
	formatZstd
)

var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06}
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21}
	magicXZ     = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
	magicZstd   = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

// detectFormat classifies a file by magic bytes first, falling back to its
// extension, exactly as romloader.detectFormat does for ROM archives.
func detectFormat(header []byte, name string) formatType {
	ext := strings.ToLower(extOf(name))

	switch {
	case len(header) >= 4 && (bytes.HasPrefix(header, magicZIP) || bytes.HasPrefix(header, magicZIPEnd)):
		return formatZIP
	case len(header) >= 4 && bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case len(header) >= 6 && bytes.HasPrefix(header, magic7z):
		return format7z
	case len(header) >= 6 && bytes.HasPrefix(header, magicXZ):
		return formatXZ
	case len(header) >= 4 && bytes.HasPrefix(header, magicZstd):
		return formatZstd
	case len(header) >= 2 && bytes.HasPrefix(header, magicGzip):
		return formatGzip
	}

	switch ext {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	case ".xz":
		return formatXZ
	case ".zst":
		return formatZstd
	}
	return formatRaw
}

func extOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i:]
}

// isDiskImage reports whether name looks like a raw disk image, used to
// pick the right member out of a multi-file archive.
func isDiskImage(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".st") || strings.HasSuffix(lower, ".msa") || strings.HasSuffix(lower, ".dim")
}
