package extract

import "io"

// Entry is one payload scheduled for extraction.
type Entry struct {
	// Name is the stored entry name, kept for error context.
	Name string

	// Path is the normalized slash-separated destination path,
	// already validated with fs.ValidPath.
	Path string

	// Offset is the absolute byte offset of the payload in the container.
	Offset int64

	// Size is the payload length in bytes.
	Size int64
}

// Sink receives extracted entry content.
type Sink interface {
	// ShouldProcess reports whether the entry should be extracted at all.
	// Entries rejected here are counted as skipped, not failed.
	ShouldProcess(entry Entry) bool

	// Writer returns a Committer for the entry's content. The caller must
	// call exactly one of Commit or Discard.
	Writer(entry Entry) (Committer, error)
}

// Committer accumulates content for one entry and finalizes it atomically.
//
// Commit makes the content visible at its final destination; Discard
// removes all trace of it. Until Commit returns, the destination never
// holds a partially written file.
type Committer interface {
	io.Writer
	Commit() error
	Discard() error
}
