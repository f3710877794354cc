// Package testutil builds synthetic FAR containers for tests.
//
// The builders write the v1 wire layout directly so tests can construct
// both well-formed containers and deliberately corrupt ones; they are test
// infrastructure, not archive-creation support.
package testutil

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// File is one stored file for BuildArchive.
type File struct {
	Name string
	Data []byte
}

// Record is one directory record for BuildContainer, in wire order.
type Record struct {
	Size           uint32
	CompressedSize uint32
	Offset         uint32
	Name           string
}

const headerSize = 16

// BuildArchive builds a well-formed container holding the given files in
// order. Payloads are laid out contiguously after the header; both length
// fields of each record carry the payload length, as v1 archives do.
func BuildArchive(files ...File) []byte {
	records := make([]Record, len(files))
	var payload bytes.Buffer
	for i, f := range files {
		records[i] = Record{
			Size:           uint32(len(f.Data)),
			CompressedSize: uint32(len(f.Data)),
			Offset:         uint32(headerSize + payload.Len()),
			Name:           f.Name,
		}
		payload.Write(f.Data)
	}
	return BuildContainer(payload.Bytes(), records)
}

// BuildContainer assembles a container from a raw data region and
// directory records. Records are written as given, so offsets pointing
// outside the data region or lengths that lie produce exactly the corrupt
// layouts the reader must reject.
func BuildContainer(payload []byte, records []Record) []byte {
	var buf bytes.Buffer
	buf.WriteString("FAR!byAZ")
	le := binary.LittleEndian
	var word [4]byte

	le.PutUint32(word[:], 1) // version
	buf.Write(word[:])
	le.PutUint32(word[:], uint32(headerSize+len(payload))) // directory offset
	buf.Write(word[:])

	buf.Write(payload)

	le.PutUint32(word[:], uint32(len(records)))
	buf.Write(word[:])
	for _, r := range records {
		le.PutUint32(word[:], r.Size)
		buf.Write(word[:])
		le.PutUint32(word[:], r.CompressedSize)
		buf.Write(word[:])
		le.PutUint32(word[:], r.Offset)
		buf.Write(word[:])
		le.PutUint32(word[:], uint32(len(r.Name)))
		buf.Write(word[:])
		buf.WriteString(r.Name)
	}
	return buf.Bytes()
}

// WriteArchive writes a well-formed container to a temp file and returns
// its path.
func WriteArchive(tb testing.TB, files ...File) string {
	tb.Helper()
	return WriteContainer(tb, BuildArchive(files...))
}

// WriteContainer writes raw container bytes to a temp file and returns
// its path.
func WriteContainer(tb testing.TB, data []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "test.far")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write container: %v", err)
	}
	return path
}
