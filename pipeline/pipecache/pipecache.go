// Package pipecache persists pipeline cache blobs between runs and refuses to
// hand back a blob written by a different device or driver.
//
// A pipeline cache blob starts with a header laid out least significant byte
// first:
//
//	offset  size  meaning
//	     0     4  header length in bytes
//	     4     4  header version
//	     8     4  vendor ID
//	    12     4  device ID
//	    16    16  pipeline cache UUID
package pipecache

import (
	"bytes"
	"encoding/binary"
	"io/fs"
	"log"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

const (
	HeaderVersionOne uint32 = 1
	HeaderSize              = 32
)

// ErrStale marks blobs that cannot be fed to the current device.
var ErrStale = errors.New("stale pipeline cache")

// Identity is what a cache header must match to be accepted.
type Identity struct {
	VendorID  uint32
	DeviceID  uint32
	CacheUUID uuid.UUID
}

type Header struct {
	Length  uint32
	Version uint32
	Identity
}

func ParseHeader(data []byte) (Header, error) {
	var header Header
	if len(data) < HeaderSize {
		return header, errors.Mark(errors.Newf("pipeline cache is %d bytes, shorter than its header", len(data)), ErrStale)
	}

	reader := bytes.NewReader(data[:HeaderSize])
	for _, field := range []any{&header.Length, &header.Version, &header.VendorID, &header.DeviceID, &header.CacheUUID} {
		err := binary.Read(reader, binary.LittleEndian, field)
		if err != nil {
			return header, errors.Wrap(err, "failed to read pipeline cache header")
		}
	}

	return header, nil
}

// Bytes encodes the header in its on-disk layout.
func (h Header) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	_ = binary.Write(buf, binary.LittleEndian, h.Length)
	_ = binary.Write(buf, binary.LittleEndian, h.Version)
	_ = binary.Write(buf, binary.LittleEndian, h.VendorID)
	_ = binary.Write(buf, binary.LittleEndian, h.DeviceID)
	buf.Write(h.CacheUUID[:])
	return buf.Bytes()
}

// Validate reports every way the header disagrees with expected. The
// returned error is marked with ErrStale.
func (h Header) Validate(expected Identity) error {
	var err error

	if h.Length == 0 {
		err = errors.CombineErrors(err, errors.Newf("bad header length 0x%x", h.Length))
	}
	if h.Version != HeaderVersionOne {
		err = errors.CombineErrors(err, errors.Newf("unsupported header version 0x%x", h.Version))
	}
	if h.VendorID != expected.VendorID {
		err = errors.CombineErrors(err, errors.Newf("vendor ID mismatch: cache contains 0x%x, driver expects 0x%x", h.VendorID, expected.VendorID))
	}
	if h.DeviceID != expected.DeviceID {
		err = errors.CombineErrors(err, errors.Newf("device ID mismatch: cache contains 0x%x, driver expects 0x%x", h.DeviceID, expected.DeviceID))
	}
	if h.CacheUUID != expected.CacheUUID {
		err = errors.CombineErrors(err, errors.Newf("UUID mismatch: cache contains %s, driver expects %s", h.CacheUUID, expected.CacheUUID))
	}

	if err != nil {
		return errors.Mark(err, ErrStale)
	}
	return nil
}

// Load returns the blob stored at path if it was written for expected. A
// missing file yields no data. A stale file is deleted so the next Save
// repopulates it.
func Load(path string, expected Identity) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to read pipeline cache %s", path)
	}

	header, err := ParseHeader(data)
	if err == nil {
		err = header.Validate(expected)
	}
	if errors.Is(err, ErrStale) {
		log.Printf("pipecache: discarding %s: %v", path, err)
		_ = os.Remove(path)
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return data, nil
}

func Save(path string, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return errors.Wrapf(os.WriteFile(path, data, 0666), "failed to write pipeline cache %s", path)
}
