package format

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/far/testutil"
)

func readAll(t *testing.T, data []byte) ([]Record, error) {
	t.Helper()
	src := bytes.NewReader(data)
	h, err := ReadHeader(src, src.Size())
	if err != nil {
		return nil, err
	}
	return ReadDirectory(src, src.Size(), h)
}

func TestReadHeader(t *testing.T) {
	data := testutil.BuildArchive(testutil.File{Name: "a.txt", Data: []byte("hello")})
	src := bytes.NewReader(data)

	h, err := ReadHeader(src, src.Size())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), h.Version)
	assert.Equal(t, uint32(HeaderSize+5), h.DirOffset)
}

func TestReadHeaderRejectsCorruptContainers(t *testing.T) {
	valid := testutil.BuildArchive(testutil.File{Name: "a.txt", Data: []byte("hello")})

	tests := []struct {
		name    string
		mutate  func(data []byte) []byte
		wantErr error
	}{
		{
			name:    "empty file",
			mutate:  func(_ []byte) []byte { return nil },
			wantErr: ErrTruncated,
		},
		{
			name:    "truncated header",
			mutate:  func(data []byte) []byte { return data[:10] },
			wantErr: ErrTruncated,
		},
		{
			name: "bad signature",
			mutate: func(data []byte) []byte {
				copy(data, "ZIPPITYDO")
				return data
			},
			wantErr: ErrNotFAR,
		},
		{
			name: "unsupported version",
			mutate: func(data []byte) []byte {
				binary.LittleEndian.PutUint32(data[8:12], 3)
				return data
			},
			wantErr: ErrNotFAR,
		},
		{
			name: "directory pointer past end of file",
			mutate: func(data []byte) []byte {
				binary.LittleEndian.PutUint32(data[12:16], uint32(len(data)+100))
				return data
			},
			wantErr: ErrTruncated,
		},
		{
			name: "directory pointer inside header",
			mutate: func(data []byte) []byte {
				binary.LittleEndian.PutUint32(data[12:16], 4)
				return data
			},
			wantErr: ErrTruncated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.mutate(bytes.Clone(valid))
			src := bytes.NewReader(data)
			_, err := ReadHeader(src, src.Size())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			var ferr *FormatError
			assert.ErrorAs(t, err, &ferr)
		})
	}
}

func TestReadDirectoryPreservesOrderAndFields(t *testing.T) {
	data := testutil.BuildArchive(
		testutil.File{Name: "b.txt", Data: []byte("second file")},
		testutil.File{Name: `Music\Modes\a.xa`, Data: []byte("x")},
		testutil.File{Name: "a.txt", Data: []byte("third")},
	)

	records, err := readAll(t, data)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "b.txt", records[0].Name)
	assert.Equal(t, uint32(11), records[0].Size)
	assert.Equal(t, uint32(11), records[0].CompressedSize)
	assert.Equal(t, uint32(HeaderSize), records[0].Offset)

	assert.Equal(t, `Music\Modes\a.xa`, records[1].Name)
	assert.Equal(t, uint32(HeaderSize+11), records[1].Offset)

	assert.Equal(t, "a.txt", records[2].Name)
	assert.Equal(t, uint32(5), records[2].Size)
}

func TestReadDirectoryEmptyArchive(t *testing.T) {
	records, err := readAll(t, testutil.BuildArchive())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadDirectorySecondLengthFieldRetained(t *testing.T) {
	payload := []byte("payload")
	data := testutil.BuildContainer(payload, []testutil.Record{
		{Size: 7, CompressedSize: 3, Offset: 16, Name: "f.dat"},
	})

	records, err := readAll(t, data)
	require.NoError(t, err)
	require.Len(t, records, 1)
	// Mismatched copies are suspicious but not fatal; both are surfaced.
	assert.Equal(t, uint32(7), records[0].Size)
	assert.Equal(t, uint32(3), records[0].CompressedSize)
}

func TestReadDirectoryRejectsCorruptDirectories(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(data []byte) []byte
	}{
		{
			name: "count claims more entries than fit",
			mutate: func(data []byte) []byte {
				dirOff := binary.LittleEndian.Uint32(data[12:16])
				binary.LittleEndian.PutUint32(data[dirOff:dirOff+4], 1000)
				return data
			},
		},
		{
			name: "record cut off mid-fields",
			mutate: func(data []byte) []byte {
				// Keep the count but drop the tail of the last record.
				return data[:len(data)-8]
			},
		},
		{
			name: "name length runs past end of file",
			mutate: func(data []byte) []byte {
				// The name length word sits 4 bytes before the name,
				// which occupies the last 5 bytes of the container.
				nameLenOff := len(data) - 5 - 4
				binary.LittleEndian.PutUint32(data[nameLenOff:nameLenOff+4], 60000)
				return data
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid := testutil.BuildArchive(testutil.File{Name: "a.txt", Data: []byte("hello")})
			data := tt.mutate(bytes.Clone(valid))

			_, err := readAll(t, data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTruncated)
		})
	}
}

func TestReadDirectoryMissingCount(t *testing.T) {
	// Directory pointer lands exactly at end of file: no room for a count.
	data := testutil.BuildArchive()
	data = data[:HeaderSize]
	binary.LittleEndian.PutUint32(data[12:16], HeaderSize)

	_, err := readAll(t, data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		offset  int64
		length  int64
		dataEnd int64
		wantErr bool
	}{
		{"inside region", 16, 100, 200, false},
		{"touches region end", 100, 100, 200, false},
		{"zero length at end", 200, 0, 200, false},
		{"runs past region", 150, 100, 200, true},
		{"starts past region", 300, 0, 200, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange("e", tt.offset, tt.length, tt.dataEnd)
			if tt.wantErr {
				var ferr *FormatError
				require.ErrorAs(t, err, &ferr)
				assert.Equal(t, "e", ferr.Name)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
