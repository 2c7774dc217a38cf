package pipecache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var device = Identity{
	VendorID:  0x10de,
	DeviceID:  0x2484,
	CacheUUID: uuid.MustParse("6f3b0c1e-8d2a-4b7e-9c41-2a5d7e90b113"),
}

func blob(header Header, payload ...byte) []byte {
	return append(header.Bytes(), payload...)
}

func TestParseHeader(t *testing.T) {
	data := blob(Header{Length: HeaderSize, Version: HeaderVersionOne, Identity: device}, 1, 2, 3)

	header, err := ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, uint32(HeaderSize), header.Length)
	require.Equal(t, HeaderVersionOne, header.Version)
	require.Equal(t, device, header.Identity)
	require.NoError(t, header.Validate(device))
}

func TestParseHeader_LittleEndian(t *testing.T) {
	data := blob(Header{Length: HeaderSize, Version: HeaderVersionOne, Identity: device})
	require.Equal(t, []byte{0xde, 0x10, 0, 0}, data[8:12])
}

func TestParseHeader_Short(t *testing.T) {
	_, err := ParseHeader(make([]byte, HeaderSize-1))
	require.True(t, errors.Is(err, ErrStale))
}

func TestValidate(t *testing.T) {
	other := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	testCases := []struct {
		name   string
		header Header
		want   string
	}{
		{"zero length", Header{Length: 0, Version: HeaderVersionOne, Identity: device}, "bad header length"},
		{"version", Header{Length: HeaderSize, Version: 2, Identity: device}, "unsupported header version"},
		{"vendor", Header{Length: HeaderSize, Version: HeaderVersionOne, Identity: Identity{VendorID: 0x1002, DeviceID: device.DeviceID, CacheUUID: device.CacheUUID}}, "vendor ID mismatch"},
		{"device", Header{Length: HeaderSize, Version: HeaderVersionOne, Identity: Identity{VendorID: device.VendorID, DeviceID: 1, CacheUUID: device.CacheUUID}}, "device ID mismatch"},
		{"uuid", Header{Length: HeaderSize, Version: HeaderVersionOne, Identity: Identity{VendorID: device.VendorID, DeviceID: device.DeviceID, CacheUUID: other}}, "UUID mismatch"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.header.Validate(device)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrStale))
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	data, err := Load(filepath.Join(t.TempDir(), "pipeline_cache.bin"), device)
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_cache.bin")
	want := blob(Header{Length: HeaderSize, Version: HeaderVersionOne, Identity: device}, 9, 9, 9)

	require.NoError(t, Save(path, want))

	data, err := Load(path, device)
	require.NoError(t, err)
	require.Equal(t, want, data)
}

func TestLoad_StaleIsDeleted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_cache.bin")
	stale := blob(Header{Length: HeaderSize, Version: HeaderVersionOne, Identity: Identity{VendorID: 0x8086}})
	require.NoError(t, os.WriteFile(path, stale, 0666))

	data, err := Load(path, device)
	require.NoError(t, err)
	require.Nil(t, data)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestSave_EmptyIsSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_cache.bin")
	require.NoError(t, Save(path, nil))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
