package far

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/far/testutil"
)

func TestReadManifest(t *testing.T) {
	path := testutil.WriteArchive(t,
		testutil.File{Name: "intro.bmp", Data: bytes.Repeat([]byte{0xAB}, 64)},
		testutil.File{Name: `UIGraphics\cpanel.bmp`, Data: []byte("panel bytes")},
		testutil.File{Name: "readme.txt", Data: []byte("hi")},
	)

	m, err := ReadManifest(path)
	require.NoError(t, err)
	require.Equal(t, 3, m.Len())

	// Directory order is preserved.
	assert.Equal(t, "intro.bmp", m.Entries[0].Name)
	assert.Equal(t, `UIGraphics\cpanel.bmp`, m.Entries[1].Name)
	assert.Equal(t, "readme.txt", m.Entries[2].Name)

	assert.Equal(t, uint32(64), m.Entries[0].Size)
	assert.Equal(t, uint32(16), m.Entries[0].Offset)
	assert.Equal(t, uint32(11), m.Entries[1].Size)
	assert.Equal(t, uint32(16+64), m.Entries[1].Offset)

	// The directory starts where the data region ends.
	assert.Equal(t, uint32(16+64+11+2), m.DirOffset)

	// Normalized view.
	assert.Equal(t, "UIGraphics/cpanel.bmp", m.Entries[1].Path())
}

func TestReadManifestEmptyArchive(t *testing.T) {
	m, err := ReadManifest(testutil.WriteArchive(t))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Entries)
}

func TestReadManifestMissingFile(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "missing.far"))
	require.Error(t, err)

	// Not a structural problem: no FormatError involved.
	var ferr *FormatError
	assert.False(t, errors.As(err, &ferr))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadManifestCorruptDirectory(t *testing.T) {
	data := testutil.BuildArchive(testutil.File{Name: "a.txt", Data: []byte("hello")})
	dirOff := binary.LittleEndian.Uint32(data[12:16])
	binary.LittleEndian.PutUint32(data[dirOff:dirOff+4], 9999)

	_, err := ReadManifest(testutil.WriteContainer(t, data))
	require.Error(t, err)

	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReadManifestNotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notfar.bin")
	require.NoError(t, os.WriteFile(path, []byte("this is just some text, not an archive"), 0o644))

	_, err := ReadManifest(path)
	require.ErrorIs(t, err, ErrNotFAR)
}

func TestDecodeManifestFromMemory(t *testing.T) {
	data := testutil.BuildArchive(testutil.File{Name: "x", Data: []byte("abc")})

	m, err := DecodeManifest(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())
	assert.Equal(t, uint32(3), m.Entries[0].Size)
	assert.Equal(t, uint32(3), m.Entries[0].CompressedSize)
}
