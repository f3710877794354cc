package far

import (
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"sort"
	"strings"

	"github.com/meigma/far/internal/file"
	"github.com/meigma/far/internal/format"
	"github.com/meigma/far/internal/pathutil"
)

// Interface compliance.
var (
	_ fs.FS         = (*Archive)(nil)
	_ fs.StatFS     = (*Archive)(nil)
	_ fs.ReadFileFS = (*Archive)(nil)
	_ fs.ReadDirFS  = (*Archive)(nil)
)

// Archive provides random access to the files of a container.
//
// Archive implements fs.FS, fs.StatFS, fs.ReadFileFS, and fs.ReadDirFS
// for compatibility with the standard library. Lookups use normalized
// slash-separated paths; when the manifest holds duplicate names, the
// later entry wins, matching the extraction policy.
type Archive struct {
	manifest *Manifest
	source   ByteSource
	logger   *slog.Logger

	// byPath maps normalized paths to manifest entry indices; paths holds
	// the same keys sorted, for directory prefix scans.
	byPath map[string]int
	paths  []string
}

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the logger for archive operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

// New creates an Archive over a decoded manifest and a byte source for the
// same container.
//
// Entries whose normalized name is not a valid slash path (traversal
// elements, empty names) are kept in the manifest but are not addressable
// through the fs surface; extraction rejects them explicitly.
func New(m *Manifest, source ByteSource, opts ...Option) *Archive {
	a := &Archive{
		manifest: m,
		source:   source,
		byPath:   make(map[string]int, len(m.Entries)),
	}
	for _, opt := range opts {
		opt(a)
	}
	for i, e := range m.Entries {
		p := e.Path()
		if p == "." || !fs.ValidPath(p) {
			a.log().Debug("entry not addressable by path", "name", e.Name)
			continue
		}
		if _, dup := a.byPath[p]; !dup {
			a.paths = append(a.paths, p)
		}
		a.byPath[p] = i
	}
	sort.Strings(a.paths)
	return a
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// Manifest returns the decoded manifest backing this archive.
func (a *Archive) Manifest() *Manifest {
	return a.manifest
}

// Len returns the number of entries in the archive.
func (a *Archive) Len() int {
	return len(a.manifest.Entries)
}

// Size returns the total size of the container in bytes.
func (a *Archive) Size() int64 {
	return a.source.Size()
}

// Entry returns the entry for the given name, matched after
// normalization. When the manifest holds duplicates, the later entry is
// returned.
func (a *Archive) Entry(name string) (Entry, bool) {
	i, ok := a.byPath[NormalizeName(name)]
	if !ok {
		return Entry{}, false
	}
	return a.manifest.Entries[i], true
}

// Entries returns an iterator over all entries in directory order.
func (a *Archive) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range a.manifest.Entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Open implements fs.FS.
//
// The returned file reads the payload bytes directly from the container;
// it also supports ReadAt and Seek. The payload range is validated
// against the data region before the file is returned.
func (a *Archive) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	if i, ok := a.byPath[name]; ok {
		entry := a.manifest.Entries[i]
		section, err := a.sectionReader(entry)
		if err != nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}
		return file.New(section, file.NewInfo(pathutil.Base(name), int64(entry.Size))), nil
	}

	if a.isDir(name) {
		return &openDir{archive: a, name: name}, nil
	}

	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Stat implements fs.StatFS.
//
// For directories (paths that are prefixes of other entries), Stat
// returns synthetic directory info.
func (a *Archive) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}

	if i, ok := a.byPath[name]; ok {
		entry := a.manifest.Entries[i]
		return file.NewInfo(pathutil.Base(name), int64(entry.Size)), nil
	}

	if a.isDir(name) {
		return file.NewDirInfo(pathutil.Base(name)), nil
	}

	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadFile implements fs.ReadFileFS.
//
// ReadFile reads and returns the entire payload of the named file,
// exactly Size bytes. A payload that cannot be read in full is a
// *FormatError, never a silent truncation.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}

	i, ok := a.byPath[name]
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}
	entry := a.manifest.Entries[i]

	section, err := a.sectionReader(entry)
	if err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}

	content := make([]byte, entry.Size)
	if _, err := io.ReadFull(section, content); err != nil {
		return nil, &format.FormatError{
			Offset: int64(entry.Offset),
			Name:   entry.Name,
			Msg:    "short payload read",
			Err:    ErrTruncated,
		}
	}
	return content, nil
}

// ReadDir implements fs.ReadDirFS.
//
// ReadDir returns directory entries for the named directory, sorted by
// name. Directory entries are synthesized from file paths; the format
// does not store directories explicitly.
func (a *Archive) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}

	di := newDirIter(a, pathutil.DirPrefix(name))
	entries := make([]fs.DirEntry, 0)
	for {
		entry, ok := di.Next()
		if !ok {
			break
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 && name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	return entries, nil
}

// sectionReader returns a bounded reader over an entry's payload after
// validating the range against the data region.
func (a *Archive) sectionReader(entry Entry) (*io.SectionReader, error) {
	dataEnd := int64(a.manifest.DirOffset)
	if err := format.ValidateRange(entry.Name, int64(entry.Offset), int64(entry.Size), dataEnd); err != nil {
		return nil, err
	}
	return io.NewSectionReader(a.source, int64(entry.Offset), int64(entry.Size)), nil
}

// isDir checks if name is a directory (has entries under it).
func (a *Archive) isDir(name string) bool {
	if name == "." {
		return len(a.paths) > 0
	}
	prefix := name + "/"
	i := sort.SearchStrings(a.paths, prefix)
	return i < len(a.paths) && strings.HasPrefix(a.paths[i], prefix)
}

// openDir implements fs.File and fs.ReadDirFile for synthetic directories.
type openDir struct {
	archive *Archive
	name    string
	iter    *dirIter
}

func (d *openDir) Read(_ []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *openDir) Stat() (fs.FileInfo, error) {
	return file.NewDirInfo(pathutil.Base(d.name)), nil
}

func (d *openDir) Close() error {
	d.iter = nil
	return nil
}

func (d *openDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.iter == nil {
		d.iter = newDirIter(d.archive, pathutil.DirPrefix(d.name))
	}

	if n <= 0 {
		entries := make([]fs.DirEntry, 0)
		for {
			entry, ok := d.iter.Next()
			if !ok {
				return entries, nil
			}
			entries = append(entries, entry)
		}
	}

	entries := make([]fs.DirEntry, 0, n)
	for len(entries) < n {
		entry, ok := d.iter.Next()
		if !ok {
			if len(entries) == 0 {
				return nil, io.EOF
			}
			return entries, nil
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// dirIter walks the sorted path list under a prefix, deduplicating
// children that share a directory component and synthesizing directory
// entries for nested paths.
type dirIter struct {
	archive  *Archive
	prefix   string
	pos      int
	lastName string
}

func newDirIter(a *Archive, prefix string) *dirIter {
	return &dirIter{
		archive: a,
		prefix:  prefix,
		pos:     sort.SearchStrings(a.paths, prefix),
	}
}

func (it *dirIter) Next() (fs.DirEntry, bool) {
	for it.pos < len(it.archive.paths) {
		path := it.archive.paths[it.pos]
		if !strings.HasPrefix(path, it.prefix) {
			return nil, false
		}
		it.pos++

		childName, isSubDir := pathutil.Child(path, it.prefix)
		if childName == it.lastName {
			continue
		}
		it.lastName = childName

		if isSubDir {
			return file.NewDirEntry(file.NewDirInfo(childName)), true
		}
		entry := it.archive.manifest.Entries[it.archive.byPath[path]]
		return file.NewDirEntry(file.NewInfo(childName, int64(entry.Size))), true
	}
	return nil, false
}
