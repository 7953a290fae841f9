package imagestore

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/afero"
)

// Store loads disk images from a filesystem, transparently stripping any
// container (zip/7z/rar/gzip/xz/zstd) and decoding the raw .ST/.MSA/.DIM
// payload inside. It is the wd1772 core's default disk-image collaborator.
//
// Store is safe for concurrent use: Insert/Eject/image lookups are guarded
// by a mutex, since the image directory may be browsed from a UI goroutine
// while the FDC core's single-threaded dispatch loop is mid-command.
type Store struct {
	fs Fs

	mu     sync.Mutex
	loaded [2]*Image // per-drive currently inserted image, nil if empty
	paths  [2]string
}

// Fs is the subset of afero.Fs the store needs; satisfied directly by
// afero.Fs so callers can pass afero.NewOsFs() or afero.NewMemMapFs().
type Fs = afero.Fs

// NewStore creates a Store backed by fs. Passing afero.NewOsFs() gives
// normal filesystem access; tests typically pass afero.NewMemMapFs().
func NewStore(fs Fs) *Store {
	return &Store{fs: fs}
}

// Insert loads the image at path into drive (0 or 1), replacing whatever
// was previously inserted.
func (s *Store) Insert(drive int, path string) error {
	if drive < 0 || drive > 1 {
		return fmt.Errorf("imagestore: invalid drive %d", drive)
	}
	img, err := s.load(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.loaded[drive] = img
	s.paths[drive] = path
	s.mu.Unlock()
	return nil
}

// Eject removes whatever image is in drive, if any.
func (s *Store) Eject(drive int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if drive < 0 || drive > 1 {
		return
	}
	s.loaded[drive] = nil
	s.paths[drive] = ""
}

// Path returns the source path of the image currently inserted in drive,
// or "" if none.
func (s *Store) Path(drive int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if drive < 0 || drive > 1 {
		return ""
	}
	return s.paths[drive]
}

func (s *Store) image(drive int) (*Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if drive < 0 || drive > 1 || s.loaded[drive] == nil {
		return nil, fmt.Errorf("imagestore: no disk in drive %d", drive)
	}
	return s.loaded[drive], nil
}

func (s *Store) load(path string) (*Image, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imagestore: open %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("imagestore: read header of %s: %w", path, err)
	}
	header = header[:n]
	format := detectFormat(header, path)

	raw, err := limitedRead(io.MultiReader(bytes.NewReader(header), f))
	if err != nil {
		return nil, fmt.Errorf("imagestore: read %s: %w", path, err)
	}

	payload, _, err := extractContainer(format, raw, path)
	if err != nil {
		return nil, err
	}

	writeProtected := false
	if wp, ok := s.fs.(interface{ IsWriteProtected(string) bool }); ok {
		writeProtected = wp.IsWriteProtected(path)
	}
	return decodeDisk(payload, writeProtected)
}

// ReadSector implements the FDC core's disk-image collaborator read path
// for drive.
func (s *Store) ReadSector(drive, track, side, sector int, buf []byte) (int, error) {
	img, err := s.image(drive)
	if err != nil {
		return 0, err
	}
	return img.ReadSector(track, side, sector, buf)
}

// WriteSector implements the FDC core's disk-image collaborator write path
// for drive.
func (s *Store) WriteSector(drive, track, side, sector int, buf []byte) error {
	img, err := s.image(drive)
	if err != nil {
		return err
	}
	return img.WriteSector(track, side, sector, buf)
}

// DiskDetails implements the FDC core's geometry lookup for drive.
func (s *Store) DiskDetails(drive int) (sectorsPerTrack, sides int, err error) {
	img, err := s.image(drive)
	if err != nil {
		return 0, 0, err
	}
	spt, sd := img.DiskDetails()
	return spt, sd, nil
}

// IsWriteProtected implements the FDC core's write-protect query for drive.
// A drive with no disk reads as write-protected, matching real hardware's
// WPT behavior when the light path is unobstructed (spec §4.F).
func (s *Store) IsWriteProtected(drive int) bool {
	img, err := s.image(drive)
	if err != nil {
		return true
	}
	return img.IsWriteProtected()
}
