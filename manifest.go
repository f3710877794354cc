package far

import (
	"fmt"
	"os"

	"github.com/meigma/far/internal/format"
)

// Entry describes one stored file, as decoded from its directory record.
//
// Fields are a direct decode of untrusted container bytes; Name may
// contain backslash separators or traversal elements. Offset and Size are
// validated against the data region when the entry is read or extracted,
// not at decode time.
type Entry struct {
	// Name is the stored path, as decoded.
	Name string

	// Size is the payload length in bytes.
	Size uint32

	// CompressedSize is the directory's second length field. FAR v1
	// stores the length twice; later revisions repurpose the copy for
	// compressed size. Equal to Size in every known v1 archive.
	CompressedSize uint32

	// Offset is the absolute byte offset of the payload in the container.
	Offset uint32
}

// Path returns the entry's normalized slash-separated path.
func (e Entry) Path() string {
	return NormalizeName(e.Name)
}

// Manifest is the decoded directory of a container: every stored file's
// descriptor, in directory order.
//
// Manifest is a plain value. It can be inspected or filtered before being
// handed to extraction, and is never mutated by this package after
// creation.
type Manifest struct {
	// Entries holds one descriptor per stored file, in directory order.
	// Order is significant: duplicate names resolve last-write-wins.
	Entries []Entry

	// DirOffset is the absolute byte offset of the directory section.
	// The data region ends here; no payload may extend past it.
	DirOffset uint32
}

// Len returns the number of entries in the manifest.
func (m *Manifest) Len() int {
	return len(m.Entries)
}

// ReadManifest opens the container at path and decodes its manifest.
//
// A *FormatError is returned when the container cannot be recognized or
// its directory is structurally inconsistent; plain open/read failures
// are returned as wrapped I/O errors.
func ReadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("far: open container: %w", err)
	}
	defer f.Close()

	src, err := newFileSource(f)
	if err != nil {
		return nil, err
	}
	return DecodeManifest(src)
}

// DecodeManifest decodes a manifest from an in-memory or on-disk source.
//
// *bytes.Reader satisfies ByteSource, so a container held in memory can
// be decoded directly.
func DecodeManifest(src ByteSource) (*Manifest, error) {
	size := src.Size()
	h, err := format.ReadHeader(src, size)
	if err != nil {
		return nil, err
	}
	records, err := format.ReadDirectory(src, size, h)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(records))
	for i, rec := range records {
		entries[i] = Entry{
			Name:           rec.Name,
			Size:           rec.Size,
			CompressedSize: rec.CompressedSize,
			Offset:         rec.Offset,
		}
	}
	return &Manifest{Entries: entries, DirOffset: h.DirOffset}, nil
}
