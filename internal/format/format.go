// Package format decodes the FAR v1 container layout.
//
// The layout is fixed by the game engine: a 16-byte header, a data region
// of concatenated payloads, and a trailing directory. All integers are
// little-endian. Entry records are length-prefixed; names are never
// NUL-terminated.
package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// Signature is the 8-byte magic at offset 0 of every FAR container.
	Signature = "FAR!byAZ"

	// Version is the only directory revision this package reads.
	Version = 1

	// HeaderSize is the fixed size of the container header.
	HeaderSize = 16

	// recordFixedSize is the size of an entry record before its name bytes:
	// size, size2, offset, and name length, each uint32.
	recordFixedSize = 16
)

// Sentinel errors wrapped by FormatError.
var (
	// ErrNotFAR is returned when the signature or version does not match.
	ErrNotFAR = errors.New("far: not a recognized archive")

	// ErrTruncated is returned when a structure extends past end of file.
	ErrTruncated = errors.New("far: truncated container")
)

// FormatError describes a structural problem in a container.
//
// Offset is the byte offset in the container where the problem was found.
// Name is the entry name when the problem is scoped to one entry.
type FormatError struct {
	Offset int64
	Name   string
	Msg    string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("far: entry %q: %s (offset %d)", e.Name, e.Msg, e.Offset)
	}
	return fmt.Sprintf("far: %s (offset %d)", e.Msg, e.Offset)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Header holds the decoded container header.
type Header struct {
	// Version is the directory revision declared by the container.
	Version uint32

	// DirOffset is the absolute byte offset of the directory section.
	// Everything before it (past the header) is the data region.
	DirOffset uint32
}

// Record is one decoded directory record, in wire order.
type Record struct {
	// Size is the payload length in bytes.
	Size uint32

	// CompressedSize is the second length field. FAR v1 stores the payload
	// length twice; later revisions repurpose this copy for compressed
	// size. It is retained as decoded and not required to equal Size.
	CompressedSize uint32

	// Offset is the absolute byte offset of the payload in the container.
	Offset uint32

	// Name is the stored path. Separators may be '\' or '/'; the bytes are
	// kept as decoded.
	Name string
}

// ReadHeader reads and validates the container header.
//
// The signature and version must match and the directory offset must lie
// inside the file, at or past the header.
func ReadHeader(src io.ReaderAt, size int64) (Header, error) {
	if size < HeaderSize {
		return Header{}, &FormatError{Offset: 0, Msg: "truncated header", Err: ErrTruncated}
	}

	var buf [HeaderSize]byte
	n, err := src.ReadAt(buf[:], 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return Header{}, fmt.Errorf("far: read header: %w", err)
	}
	if n != HeaderSize {
		return Header{}, &FormatError{Offset: 0, Msg: "truncated header", Err: ErrTruncated}
	}

	if string(buf[:len(Signature)]) != Signature {
		return Header{}, &FormatError{Offset: 0, Msg: "bad signature", Err: ErrNotFAR}
	}

	h := Header{
		Version:   binary.LittleEndian.Uint32(buf[8:12]),
		DirOffset: binary.LittleEndian.Uint32(buf[12:16]),
	}
	if h.Version != Version {
		return Header{}, &FormatError{
			Offset: 8,
			Msg:    fmt.Sprintf("unsupported version %d", h.Version),
			Err:    ErrNotFAR,
		}
	}
	if int64(h.DirOffset) < HeaderSize || int64(h.DirOffset) > size {
		return Header{}, &FormatError{Offset: 12, Msg: "corrupt directory pointer", Err: ErrTruncated}
	}
	return h, nil
}

// ReadDirectory reads the directory section at h.DirOffset and decodes its
// records in wire order.
//
// The entry count is checked against the bytes actually remaining before
// any record is decoded, so an implausible count fails up front instead of
// producing a partial result.
func ReadDirectory(src io.ReaderAt, size int64, h Header) ([]Record, error) {
	dirLen := size - int64(h.DirOffset)
	if dirLen < 4 {
		return nil, &FormatError{Offset: int64(h.DirOffset), Msg: "truncated directory", Err: ErrTruncated}
	}

	data := make([]byte, dirLen)
	n, err := src.ReadAt(data, int64(h.DirOffset))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("far: read directory: %w", err)
	}
	if int64(n) != dirLen {
		return nil, &FormatError{Offset: int64(h.DirOffset), Msg: "truncated directory", Err: ErrTruncated}
	}

	count := binary.LittleEndian.Uint32(data[:4])
	remaining := dirLen - 4
	if int64(count) > remaining/recordFixedSize {
		return nil, &FormatError{
			Offset: int64(h.DirOffset),
			Msg:    fmt.Sprintf("corrupt entry count %d", count),
			Err:    ErrTruncated,
		}
	}

	records := make([]Record, 0, count)
	pos := int64(4)
	for i := uint32(0); i < count; i++ {
		recOff := int64(h.DirOffset) + pos
		if dirLen-pos < recordFixedSize {
			return nil, &FormatError{Offset: recOff, Msg: "truncated entry record", Err: ErrTruncated}
		}
		rec := Record{
			Size:           binary.LittleEndian.Uint32(data[pos : pos+4]),
			CompressedSize: binary.LittleEndian.Uint32(data[pos+4 : pos+8]),
			Offset:         binary.LittleEndian.Uint32(data[pos+8 : pos+12]),
		}
		nameLen := int64(binary.LittleEndian.Uint32(data[pos+12 : pos+16]))
		pos += recordFixedSize
		if nameLen > dirLen-pos {
			return nil, &FormatError{Offset: recOff, Msg: "truncated entry name", Err: ErrTruncated}
		}
		rec.Name = string(data[pos : pos+nameLen])
		pos += nameLen
		records = append(records, rec)
	}
	return records, nil
}

// ValidateRange checks that a payload range lies inside the data region,
// which ends where the directory begins.
func ValidateRange(name string, offset, length, dataEnd int64) error {
	if offset > dataEnd || offset+length > dataEnd {
		return &FormatError{
			Offset: offset,
			Name:   name,
			Msg:    fmt.Sprintf("payload range [%d, %d) outside data region of %d bytes", offset, offset+length, dataEnd),
		}
	}
	return nil
}
