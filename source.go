package far

import (
	"fmt"
	"io"
	"os"
)

// ByteSource provides random access to container bytes.
//
// *bytes.Reader satisfies the interface; local files are wrapped by Open
// and ReadManifest.
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// fileSource wraps *os.File to implement ByteSource.
// os.File has ReadAt but not Size, so the size is cached at construction.
type fileSource struct {
	file *os.File
	size int64
}

// newFileSource creates a fileSource from an open file.
func newFileSource(f *os.File) (*fileSource, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("far: stat container: %w", err)
	}
	return &fileSource{file: f, size: info.Size()}, nil
}

// ReadAt implements io.ReaderAt.
func (fs *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return fs.file.ReadAt(p, off)
}

// Size returns the total size of the file.
func (fs *fileSource) Size() int64 {
	return fs.size
}

// ArchiveFile wraps an Archive with its underlying container file handle.
// Close must be called to release the handle.
type ArchiveFile struct {
	*Archive
	file *os.File
}

// Close closes the underlying container file.
func (af *ArchiveFile) Close() error {
	if af.file == nil {
		return nil
	}
	err := af.file.Close()
	af.file = nil
	return err
}

// Open opens the container at path, decodes its manifest, and returns an
// Archive holding the container open for random access.
//
// The returned ArchiveFile must be closed to release the file handle.
func Open(path string, opts ...Option) (*ArchiveFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("far: open container: %w", err)
	}

	src, err := newFileSource(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	m, err := DecodeManifest(src)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &ArchiveFile{
		Archive: New(m, src, opts...),
		file:    f,
	}, nil
}
