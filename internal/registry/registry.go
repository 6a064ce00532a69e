// Package registry persists known RFID tags in fixed-size slots matching
// the EEPROM image of the original device: one length byte, ten UID bytes
// and sixteen name bytes per slot, with the all-bits-set byte in the length
// position marking a slot empty. An erased device reads all 0xFF, so a
// fresh image is born fully empty.
package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Slot geometry. Fixed by the stored image; changing any of these breaks
// every existing registry file.
const (
	MaxUIDLen  = 10
	MaxNameLen = 16
	SlotSize   = 1 + MaxUIDLen + MaxNameLen

	emptyByte = 0xFF
)

// Domain errors.
var (
	ErrFull     = errors.New("registry: no free slot")
	ErrUIDSize  = errors.New("registry: uid must be 1 to 10 bytes")
	ErrNameSize = errors.New("registry: name must be 1 to 16 bytes")
)

// Device is the random-access byte store behind a registry: a flat file
// standing in for the EEPROM, or memory in tests.
type Device interface {
	io.ReaderAt
	io.WriterAt
}

// Registry looks tags up and stores them. Lookup and allocation are linear
// scans; there is no deletion and no compaction.
type Registry struct {
	dev   Device
	slots int
}

// New wraps a device holding the given number of slots.
func New(dev Device, slots int) *Registry {
	return &Registry{dev: dev, slots: slots}
}

// Slots returns the capacity.
func (r *Registry) Slots() int {
	return r.slots
}

// Lookup scans for the UID and returns its stored name.
func (r *Registry) Lookup(uid []byte) (string, bool, error) {
	for i := 0; i < r.slots; i++ {
		raw, err := r.readSlot(i)
		if err != nil {
			return "", false, err
		}
		slotUID, name, empty := decodeSlot(raw)
		if empty {
			continue
		}
		if bytes.Equal(slotUID, uid) {
			return name, true, nil
		}
	}
	return "", false, nil
}

// Store writes the tag into the first free slot, or rewrites the tag's
// existing slot in place when the UID is already known.
func (r *Registry) Store(uid []byte, name string) error {
	if len(uid) == 0 || len(uid) > MaxUIDLen {
		return ErrUIDSize
	}
	if len(name) == 0 || len(name) > MaxNameLen {
		return ErrNameSize
	}
	free := -1
	for i := 0; i < r.slots; i++ {
		raw, err := r.readSlot(i)
		if err != nil {
			return err
		}
		slotUID, _, empty := decodeSlot(raw)
		if empty {
			if free < 0 {
				free = i
			}
			continue
		}
		if bytes.Equal(slotUID, uid) {
			return r.writeSlot(i, uid, name)
		}
	}
	if free < 0 {
		return ErrFull
	}
	return r.writeSlot(free, uid, name)
}

func (r *Registry) readSlot(i int) ([SlotSize]byte, error) {
	var raw [SlotSize]byte
	if _, err := r.dev.ReadAt(raw[:], int64(i*SlotSize)); err != nil {
		return raw, fmt.Errorf("registry: read slot %d: %w", i, err)
	}
	return raw, nil
}

func (r *Registry) writeSlot(i int, uid []byte, name string) error {
	raw := encodeSlot(uid, name)
	if _, err := r.dev.WriteAt(raw[:], int64(i*SlotSize)); err != nil {
		return fmt.Errorf("registry: write slot %d: %w", i, err)
	}
	return nil
}

// encodeSlot lays a record out exactly as stored: length byte, zero-padded
// UID, zero-padded name.
func encodeSlot(uid []byte, name string) [SlotSize]byte {
	var raw [SlotSize]byte
	raw[0] = byte(len(uid))
	copy(raw[1:1+MaxUIDLen], uid)
	copy(raw[1+MaxUIDLen:], name)
	return raw
}

// decodeSlot reads a record back. A length byte past capacity marks the
// slot unreadable and it is treated as empty rather than aborting the scan.
func decodeSlot(raw [SlotSize]byte) (uid []byte, name string, empty bool) {
	n := int(raw[0])
	if raw[0] == emptyByte || n == 0 || n > MaxUIDLen {
		return nil, "", true
	}
	uid = append(uid, raw[1:1+n]...)
	nameBytes := raw[1+MaxUIDLen:]
	end := bytes.IndexByte(nameBytes, 0)
	if end < 0 {
		end = MaxNameLen
	}
	return uid, string(nameBytes[:end]), false
}
