package extract

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes entries into a destination directory.
//
// Content is written to a temporary file in the final file's directory and
// renamed into place on Commit, so a partially written file is never
// visible at the destination path. All paths are resolved inside an
// os.Root, which refuses to follow escapes out of the destination.
type FileSink struct {
	destDir      string
	root         *os.Root
	skipExisting bool
	makeDirs     bool
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithSkipExisting leaves files that already exist at their destination
// untouched. By default existing files are overwritten.
func WithSkipExisting(skip bool) FileSinkOption {
	return func(s *FileSink) {
		s.skipExisting = skip
	}
}

// WithMakeDirs controls creation of intermediate directories implied by
// entry paths. Enabled by default; when disabled, entries whose parent
// directory does not exist fail.
func WithMakeDirs(enabled bool) FileSinkOption {
	return func(s *FileSink) {
		s.makeDirs = enabled
	}
}

// NewFileSink creates a FileSink rooted at destDir, creating destDir if
// needed. Close must be called to release the root handle.
func NewFileSink(destDir string, opts ...FileSinkOption) (*FileSink, error) {
	s := &FileSink{
		destDir:  destDir,
		makeDirs: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create destination %s: %w", destDir, err)
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return nil, fmt.Errorf("open destination root %s: %w", destDir, err)
	}
	s.root = root
	return s, nil
}

// Close releases the destination root handle.
func (s *FileSink) Close() error {
	if s.root == nil {
		return nil
	}
	err := s.root.Close()
	s.root = nil
	return err
}

// ShouldProcess returns false when the destination exists and existing
// files are being kept.
func (s *FileSink) ShouldProcess(entry Entry) bool {
	if !s.skipExisting {
		return true
	}
	_, err := os.Stat(filepath.Join(s.destDir, filepath.FromSlash(entry.Path)))
	return os.IsNotExist(err)
}

// Writer returns a Committer that stages the entry in a temp file and
// renames it to the final path on Commit.
func (s *FileSink) Writer(entry Entry) (Committer, error) {
	destRel := filepath.FromSlash(entry.Path)
	dir := filepath.Dir(destRel)

	if s.makeDirs && dir != "." {
		// MkdirAll is idempotent and safe under concurrent creation of
		// the same directory by parallel workers.
		if err := s.root.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", filepath.Join(s.destDir, dir), err)
		}
	}

	tempFile, tempRel, err := createTempFile(s.root, dir, ".far-")
	if err != nil {
		return nil, fmt.Errorf("create temp file for %s: %w", destRel, err)
	}

	return &fileCommitter{
		destRel:  destRel,
		tempFile: tempFile,
		tempRel:  tempRel,
		root:     s.root,
	}, nil
}

// fileCommitter writes to a temp file and renames on Commit.
type fileCommitter struct {
	destRel  string
	tempFile *os.File
	tempRel  string
	root     *os.Root
}

// Write implements io.Writer.
func (c *fileCommitter) Write(p []byte) (int, error) {
	return c.tempFile.Write(p)
}

// Commit closes the temp file and renames it to the final path,
// replacing any existing file.
func (c *fileCommitter) Commit() error {
	if err := c.tempFile.Close(); err != nil {
		_ = c.root.Remove(c.tempRel)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := c.root.Rename(c.tempRel, c.destRel); err != nil {
		_ = c.root.Remove(c.tempRel)
		return fmt.Errorf("rename to %s: %w", c.destRel, err)
	}
	return nil
}

// Discard closes and removes the temp file.
func (c *fileCommitter) Discard() error {
	_ = c.tempFile.Close()
	return c.root.Remove(c.tempRel)
}

func createTempFile(root *os.Root, dir, prefix string) (*os.File, string, error) {
	const attempts = 10
	for range attempts {
		name, err := randomSuffix()
		if err != nil {
			return nil, "", err
		}
		relPath := filepath.Join(dir, prefix+name)
		f, err := root.OpenFile(relPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return f, relPath, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", errors.New("create temp file: exhausted retries")
}

func randomSuffix() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
