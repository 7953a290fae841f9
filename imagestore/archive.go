package imagestore

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/zstd"
	"github.com/nwaples/rardecode/v2"
	"github.com/ulikunitz/xz"
)

// maxImageSize guards against decompression bombs: no supported floppy
// image (even ED, 4x density) exceeds a few MB.
const maxImageSize = 16 * 1024 * 1024

// ErrNoDiskImage is returned when an archive contains no recognizable
// .ST/.MSA/.DIM member.
var ErrNoDiskImage = errors.New("imagestore: no disk image found in archive")

func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, maxImageSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("imagestore: archive member exceeds %d bytes", maxImageSize)
	}
	return data, nil
}

// extractContainer returns the raw (still disk-format-encoded) bytes of
// the first matching disk image found in the container, plus its name.
func extractContainer(format formatType, raw []byte, outerName string) ([]byte, string, error) {
	switch format {
	case formatZIP:
		return extractZIP(raw)
	case format7z:
		return extract7z(raw)
	case formatGzip:
		return extractGzip(raw, outerName)
	case formatRAR:
		return extractRAR(raw)
	case formatXZ:
		return extractXZ(raw, outerName)
	case formatZstd:
		return extractZstd(raw, outerName)
	default:
		return raw, outerName, nil
	}
}

func extractZIP(raw []byte) ([]byte, string, error) {
	r, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, "", fmt.Errorf("imagestore: open zip: %w", err)
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isDiskImage(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, "", fmt.Errorf("imagestore: open %s: %w", f.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", err
		}
		return data, filepath.Base(f.Name), nil
	}
	return nil, "", ErrNoDiskImage
}

func extract7z(raw []byte) ([]byte, string, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, "", fmt.Errorf("imagestore: open 7z: %w", err)
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isDiskImage(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, "", fmt.Errorf("imagestore: open %s: %w", f.Name, err)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", err
		}
		return data, filepath.Base(f.Name), nil
	}
	return nil, "", ErrNoDiskImage
}

func extractRAR(raw []byte) ([]byte, string, error) {
	r, err := rardecode.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("imagestore: open rar: %w", err)
	}
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("imagestore: read rar entry: %w", err)
		}
		if header.IsDir || !isDiskImage(header.Name) {
			continue
		}
		data, err := limitedRead(r)
		if err != nil {
			return nil, "", err
		}
		return data, filepath.Base(header.Name), nil
	}
	return nil, "", ErrNoDiskImage
}

func extractGzip(raw []byte, outerName string) ([]byte, string, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("imagestore: open gzip: %w", err)
	}
	defer zr.Close()
	data, err := limitedRead(zr)
	if err != nil {
		return nil, "", err
	}
	return data, trimCompressionSuffix(outerName, ".gz"), nil
}

func extractXZ(raw []byte, outerName string) ([]byte, string, error) {
	zr, err := xz.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("imagestore: open xz: %w", err)
	}
	data, err := limitedRead(zr)
	if err != nil {
		return nil, "", err
	}
	return data, trimCompressionSuffix(outerName, ".xz"), nil
}

func extractZstd(raw []byte, outerName string) ([]byte, string, error) {
	zr, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("imagestore: open zstd: %w", err)
	}
	defer zr.Close()
	data, err := limitedRead(zr)
	if err != nil {
		return nil, "", err
	}
	return data, trimCompressionSuffix(outerName, ".zst"), nil
}

func trimCompressionSuffix(name, suffix string) string {
	base := filepath.Base(name)
	if len(base) > len(suffix) && base[len(base)-len(suffix):] == suffix {
		return base[:len(base)-len(suffix)]
	}
	return base
}
