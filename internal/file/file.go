// Package file provides fs.File, fs.FileInfo, and fs.DirEntry
// implementations for archive entries and synthetic directories.
//
// FAR containers store no per-file metadata beyond name, size, and offset,
// so file infos report a fixed mode and a zero modification time, and
// directories are synthesized from entry paths.
package file

import (
	"io"
	"io/fs"
	"time"
)

// File adapts a bounded section of the container to fs.File.
//
// It also implements io.Seeker and io.ReaderAt; payloads are stored raw,
// so random access needs no decoding step.
type File struct {
	*io.SectionReader
	info fs.FileInfo
}

// New creates a File reading from section with the given info.
func New(section *io.SectionReader, info fs.FileInfo) *File {
	return &File{SectionReader: section, info: info}
}

// Stat implements fs.File.
func (f *File) Stat() (fs.FileInfo, error) {
	return f.info, nil
}

// Close implements fs.File. The container handle is owned by the archive,
// so Close is a no-op.
func (f *File) Close() error {
	return nil
}

// Info implements fs.FileInfo for regular archive entries.
type Info struct {
	name string
	size int64
}

// NewInfo creates an Info with the given base name and payload size.
func NewInfo(name string, size int64) *Info {
	return &Info{name: name, size: size}
}

func (fi *Info) Name() string       { return fi.name }
func (fi *Info) Size() int64        { return fi.size }
func (fi *Info) Mode() fs.FileMode  { return 0o644 }
func (fi *Info) ModTime() time.Time { return time.Time{} }
func (fi *Info) IsDir() bool        { return false }
func (fi *Info) Sys() any           { return nil }

// DirInfo implements fs.FileInfo for synthetic directories.
type DirInfo struct {
	name string
}

// NewDirInfo creates a DirInfo with the given name.
func NewDirInfo(name string) *DirInfo {
	return &DirInfo{name: name}
}

func (di *DirInfo) Name() string       { return di.name }
func (di *DirInfo) Size() int64        { return 0 }
func (di *DirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o755 }
func (di *DirInfo) ModTime() time.Time { return time.Time{} }
func (di *DirInfo) IsDir() bool        { return true }
func (di *DirInfo) Sys() any           { return nil }

// DirEntry implements fs.DirEntry by wrapping fs.FileInfo.
type DirEntry struct {
	info fs.FileInfo
}

// NewDirEntry creates a DirEntry wrapping the given FileInfo.
func NewDirEntry(info fs.FileInfo) *DirEntry {
	return &DirEntry{info: info}
}

func (de *DirEntry) Name() string               { return de.info.Name() }
func (de *DirEntry) IsDir() bool                { return de.info.IsDir() }
func (de *DirEntry) Type() fs.FileMode          { return de.info.Mode().Type() }
func (de *DirEntry) Info() (fs.FileInfo, error) { return de.info, nil }
