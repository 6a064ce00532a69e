package registry

import (
	"fmt"
	"os"
)

// MemStore is an in-memory device erased to 0xFF. Used by tests and the
// simulator.
type MemStore struct {
	buf []byte
}

// NewMemStore allocates an erased image for the given slot count.
func NewMemStore(slots int) *MemStore {
	buf := make([]byte, slots*SlotSize)
	for i := range buf {
		buf[i] = emptyByte
	}
	return &MemStore{buf: buf}
}

// ReadAt implements Device.
func (m *MemStore) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || int(off)+len(p) > len(m.buf) {
		return 0, fmt.Errorf("registry: read out of range at %d", off)
	}
	return copy(p, m.buf[off:]), nil
}

// WriteAt implements Device.
func (m *MemStore) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || int(off)+len(p) > len(m.buf) {
		return 0, fmt.Errorf("registry: write out of range at %d", off)
	}
	return copy(m.buf[off:], p), nil
}

// FileStore keeps the registry image in a flat file, created 0xFF-filled
// like an erased part. The file never shrinks; a larger existing image keeps
// its extra slots untouched.
type FileStore struct {
	f *os.File
}

// OpenFileStore opens or creates the image at path sized for slots.
func OpenFileStore(path string, slots int) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("registry: open image %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("registry: stat image %s: %w", path, err)
	}
	want := int64(slots * SlotSize)
	if info.Size() < want {
		blank := make([]byte, want-info.Size())
		for i := range blank {
			blank[i] = emptyByte
		}
		if _, err := f.WriteAt(blank, info.Size()); err != nil {
			f.Close()
			return nil, fmt.Errorf("registry: erase image %s: %w", path, err)
		}
	}
	return &FileStore{f: f}, nil
}

// ReadAt implements Device.
func (s *FileStore) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

// WriteAt implements Device.
func (s *FileStore) WriteAt(p []byte, off int64) (int, error) {
	return s.f.WriteAt(p, off)
}

// Close releases the underlying file.
func (s *FileStore) Close() error {
	return s.f.Close()
}
